package web

import (
	"bytes"
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/config"
	"taskboard/internal/domain"
	"taskboard/internal/errors"
	"taskboard/internal/logging"
	"taskboard/internal/repository/sqlite"
)

// countingStore wraps a real store and tracks sessions that were not closed.
type countingStore struct {
	*sqlite.Store
	open atomic.Int64
}

func (s *countingStore) Acquire(ctx context.Context) (sqlite.Session, error) {
	session, err := s.Store.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	s.open.Add(1)
	return &countingSession{Session: session, store: s}, nil
}

type countingSession struct {
	sqlite.Session
	store *countingStore
}

func (s *countingSession) Close() error {
	s.store.open.Add(-1)
	return s.Session.Close()
}

type brokenStore struct{}

func (brokenStore) Acquire(context.Context) (sqlite.Session, error) {
	return nil, errors.NewDatabaseError("acquire connection", stderrors.New("disk I/O error"))
}

func (brokenStore) Ping(context.Context) error {
	return errors.NewDatabaseError("ping", stderrors.New("disk I/O error"))
}

func setupTestServer(t *testing.T) (*Server, *countingStore) {
	t.Helper()
	return setupTestServerWithLogger(t, logging.Discard())
}

func setupTestServerWithLogger(t *testing.T, logger *log.Logger) (*Server, *countingStore) {
	t.Helper()

	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "todo.db"), logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	_, err = store.Migrate(context.Background())
	require.NoError(t, err)

	counting := &countingStore{Store: store}
	srv, err := New(counting, config.NewConfig(), logger)
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.Equal(t, int64(0), counting.open.Load(), "storage sessions leaked")
	})
	return srv, counting
}

func do(srv *Server, method, path string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func assertRedirectHome(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
}

func getStats(t *testing.T, srv *Server) domain.Stats {
	t.Helper()
	rec := do(srv, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)

	var stats domain.Stats
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &stats))
	return stats
}

func addTask(t *testing.T, srv *Server, title string) {
	t.Helper()
	assertRedirectHome(t, do(srv, http.MethodPost, "/add", url.Values{"title": {title}}))
}

func TestIndex_Empty(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := do(srv, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/html")
	assert.Contains(t, rec.Body.String(), "No tasks yet.")
	assert.Contains(t, rec.Body.String(), `<strong id="stat-total">0</strong>`)
}

func TestIndex_ListsTasksNewestFirst(t *testing.T) {
	srv, _ := setupTestServer(t)
	addTask(t, srv, "first")
	addTask(t, srv, "second")

	body := do(srv, http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, body, `<strong id="stat-total">2</strong>`)
	assert.Less(t, strings.Index(body, "second"), strings.Index(body, "first"))
	assert.Contains(t, body, `action="/toggle/2"`)
	assert.Contains(t, body, `<option value="todo" selected>To do</option>`)
}

func TestIndex_EscapesTitles(t *testing.T) {
	srv, _ := setupTestServer(t)
	addTask(t, srv, "<script>alert(1)</script>")

	body := do(srv, http.MethodGet, "/", nil).Body.String()
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestAdd_ThenStats(t *testing.T) {
	srv, _ := setupTestServer(t)
	addTask(t, srv, "buy milk")

	assert.Equal(t, domain.Stats{Total: 1, Pending: 1}, getStats(t, srv))
}

func TestAdd_BlankTitleIsIgnored(t *testing.T) {
	srv, _ := setupTestServer(t)

	addTask(t, srv, "   ")
	assertRedirectHome(t, do(srv, http.MethodPost, "/add", url.Values{}))

	assert.Equal(t, domain.Stats{}, getStats(t, srv))
}

func TestScenario_AddToggleDelete(t *testing.T) {
	srv, _ := setupTestServer(t)

	addTask(t, srv, "buy milk")
	assert.Equal(t, domain.Stats{Total: 1, Pending: 1}, getStats(t, srv))
	assert.Contains(t, do(srv, http.MethodGet, "/", nil).Body.String(), "buy milk")

	assertRedirectHome(t, do(srv, http.MethodPost, "/toggle/1", nil))
	assert.Equal(t, domain.Stats{Total: 1, Done: 1}, getStats(t, srv))

	assertRedirectHome(t, do(srv, http.MethodPost, "/delete/1", nil))
	assert.Equal(t, domain.Stats{}, getStats(t, srv))
}

func TestUpdateStatus(t *testing.T) {
	srv, _ := setupTestServer(t)
	addTask(t, srv, "write report")
	addTask(t, srv, "call mom")

	assertRedirectHome(t, do(srv, http.MethodPost, "/update_status/1", url.Values{"status": {"in_progress"}}))
	assertRedirectHome(t, do(srv, http.MethodPost, "/update_status/2", url.Values{"status": {"done"}}))

	stats := getStats(t, srv)
	assert.Equal(t, domain.Stats{Total: 2, Done: 1, InProgress: 1}, stats)
	assert.Equal(t, stats.Total, stats.Done+stats.InProgress+stats.Pending)
}

func TestUpdateStatus_InvalidIsNoop(t *testing.T) {
	srv, _ := setupTestServer(t)
	addTask(t, srv, "write report")

	assertRedirectHome(t, do(srv, http.MethodPost, "/update_status/1", url.Values{"status": {"in_progress"}}))
	assertRedirectHome(t, do(srv, http.MethodPost, "/update_status/1", url.Values{"status": {"archived"}}))
	assertRedirectHome(t, do(srv, http.MethodPost, "/update_status/1", url.Values{"status": {""}}))
	assertRedirectHome(t, do(srv, http.MethodPost, "/update_status/1", url.Values{"status": {"Done"}}))

	assert.Equal(t, domain.Stats{Total: 1, InProgress: 1}, getStats(t, srv))
}

func TestUpdateStatus_MissingFieldMeansTodo(t *testing.T) {
	srv, _ := setupTestServer(t)
	addTask(t, srv, "write report")
	assertRedirectHome(t, do(srv, http.MethodPost, "/toggle/1", nil))
	require.Equal(t, domain.Stats{Total: 1, Done: 1}, getStats(t, srv))

	assertRedirectHome(t, do(srv, http.MethodPost, "/update_status/1", url.Values{}))
	assert.Equal(t, domain.Stats{Total: 1, Pending: 1}, getStats(t, srv))

	assertRedirectHome(t, do(srv, http.MethodPost, "/toggle/1", nil))
	assertRedirectHome(t, do(srv, http.MethodPost, "/update_status/1", nil))
	assert.Equal(t, domain.Stats{Total: 1, Pending: 1}, getStats(t, srv))
}

func TestUpdateStatus_QueryStringIsNotTheForm(t *testing.T) {
	srv, _ := setupTestServer(t)
	addTask(t, srv, "write report")

	assertRedirectHome(t, do(srv, http.MethodPost, "/update_status/1?status=done", url.Values{}))
	assert.Equal(t, domain.Stats{Total: 1, Pending: 1}, getStats(t, srv))
}

func TestMutations_UnknownOrMalformedID(t *testing.T) {
	srv, _ := setupTestServer(t)
	addTask(t, srv, "keep")

	for _, path := range []string{
		"/toggle/999", "/toggle/abc", "/toggle/-1",
		"/update_status/999", "/update_status/1.5",
		"/delete/999", "/delete/abc",
	} {
		t.Run(path, func(t *testing.T) {
			assertRedirectHome(t, do(srv, http.MethodPost, path, url.Values{"status": {"done"}}))
		})
	}

	assert.Equal(t, domain.Stats{Total: 1, Pending: 1}, getStats(t, srv))
}

func TestDelete(t *testing.T) {
	srv, _ := setupTestServer(t)
	addTask(t, srv, "a")
	addTask(t, srv, "b")

	assertRedirectHome(t, do(srv, http.MethodPost, "/delete/1", nil))
	assert.Equal(t, 1, getStats(t, srv).Total)

	body := do(srv, http.MethodGet, "/", nil).Body.String()
	assert.NotContains(t, body, `action="/delete/1"`)
	assert.Contains(t, body, `action="/delete/2"`)
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := do(srv, http.MethodGet, "/toggle/1", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestID(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := do(srv, http.MethodGet, "/api/stats", nil)
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)
}

func TestHealthz(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := do(srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetrics(t *testing.T) {
	srv, _ := setupTestServer(t)
	addTask(t, srv, "buy milk")
	addTask(t, srv, "")
	do(srv, http.MethodPost, "/toggle/42", nil)
	do(srv, http.MethodPost, "/toggle/abc", nil)

	rec := do(srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `task_mutations_total{operation="create",outcome="ok"} 1`)
	assert.Contains(t, body, `task_mutations_total{operation="create",outcome="validation"} 1`)
	assert.Contains(t, body, `task_mutations_total{operation="toggle",outcome="not_found"} 1`)
	assert.Contains(t, body, `task_mutations_total{operation="toggle",outcome="invalid_input"} 1`)
	assert.Contains(t, body, `http_request_duration_seconds_count{method="POST",route="/add",status="303"} 2`)
}

func newBrokenServer(t *testing.T) *Server {
	t.Helper()
	srv, err := New(brokenStore{}, config.NewConfig(), logging.Discard())
	require.NoError(t, err)
	return srv
}

func TestStorageFailure_HTMLRoutesStillRespond(t *testing.T) {
	srv := newBrokenServer(t)

	rec := do(srv, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No tasks yet.")

	assertRedirectHome(t, do(srv, http.MethodPost, "/add", url.Values{"title": {"x"}}))
	assertRedirectHome(t, do(srv, http.MethodPost, "/toggle/1", nil))
	assertRedirectHome(t, do(srv, http.MethodPost, "/update_status/1", url.Values{"status": {"done"}}))
	assertRedirectHome(t, do(srv, http.MethodPost, "/delete/1", nil))
}

func TestStorageFailure_StatsAPI(t *testing.T) {
	srv := newBrokenServer(t)

	rec := do(srv, http.MethodGet, "/api/stats", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"A database error occurred. Please try again."}`, rec.Body.String())
}

func TestStorageFailure_Healthz(t *testing.T) {
	srv := newBrokenServer(t)

	rec := do(srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp healthResponse
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unavailable", resp.Status)
	assert.NotEmpty(t, resp.Error)
}

func TestLogFailure_ErrorCodes(t *testing.T) {
	var logs bytes.Buffer
	logger := logging.New(logging.Options{Level: "debug", Format: "json", Output: &logs})

	srv, _ := setupTestServerWithLogger(t, logger)
	assertRedirectHome(t, do(srv, http.MethodPost, "/toggle/abc", nil))

	line := logs.String()
	assert.Contains(t, line, `"level":"debug"`)
	assert.Contains(t, line, `"error_code":"INVALID_INPUT"`)
	assert.Contains(t, line, `"field":"task_id"`)
	assert.Contains(t, line, `"value":"abc"`)

	logs.Reset()
	broken, err := New(brokenStore{}, config.NewConfig(), logger)
	require.NoError(t, err)
	do(broken, http.MethodGet, "/api/stats", nil)

	line = logs.String()
	assert.Contains(t, line, `"level":"error"`)
	assert.Contains(t, line, `"error_code":"DATABASE_ERROR"`)
}
