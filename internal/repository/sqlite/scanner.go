package sqlite

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// ScanTask scans a single task from a database row
func ScanTask(scanner Scanner) (*TaskRow, error) {
	task := &TaskRow{}
	err := scanner.Scan(
		&task.ID,
		&task.Title,
		&task.Done,
		&task.Status,
		&task.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ScanTasks scans multiple tasks from database rows
func ScanTasks(rows Rows) ([]*TaskRow, error) {
	tasks := []*TaskRow{}
	for rows.Next() {
		task, err := ScanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

// ScanStatusCounts scans the rows of the grouped count query
func ScanStatusCounts(rows Rows) ([]*StatusCount, error) {
	counts := []*StatusCount{}
	for rows.Next() {
		count := &StatusCount{}
		if err := rows.Scan(&count.Status, &count.Done, &count.Count); err != nil {
			return nil, err
		}
		counts = append(counts, count)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}
