package domain

// Stats holds aggregate task counts. Pending counts todo tasks.
type Stats struct {
	Total      int `json:"total"`
	Done       int `json:"done"`
	InProgress int `json:"in_progress"`
	Pending    int `json:"pending"`
}

// Add counts n tasks with the given status.
func (s *Stats) Add(status Status, n int) {
	switch status {
	case StatusDone:
		s.Done += n
	case StatusInProgress:
		s.InProgress += n
	default:
		s.Pending += n
	}
	s.Total += n
}

// Board is everything the task list page shows.
type Board struct {
	Tasks []*Task
	Stats Stats
}
