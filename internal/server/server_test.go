package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmanager/internal/controller"
	"taskmanager/internal/logging"
	"taskmanager/internal/models"
	"taskmanager/internal/storage/memory"
)

type testServer struct {
	srv   *Server
	ctrl  *controller.Controller
	store *memory.Store
}

func newTestServer(t *testing.T, staticDir string) *testServer {
	t.Helper()
	store := memory.New()
	ctrl := controller.New(store, logging.Discard())
	return &testServer{
		srv:   New(ctrl, logging.Discard(), staticDir),
		ctrl:  ctrl,
		store: store,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	ts.srv.Engine().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (ts *testServer) create(t *testing.T, title, due string) models.Task {
	t.Helper()
	rec := ts.do(t, http.MethodPut, "/api/form", formRequest{Title: title, DueDate: due})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodPost, "/api/form/submit", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	state := decode[controller.State](t, rec)
	return state.Tasks[len(state.Tasks)-1]
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, "")
	rec := ts.do(t, http.MethodGet, "/api/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateAndList(t *testing.T) {
	ts := newTestServer(t, "")
	task := ts.create(t, "Buy milk", "2024-06-01")
	assert.Equal(t, models.StatusPending, task.Status)

	rec := ts.do(t, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Tasks []models.Task `json:"tasks"`
		Count int           `json:"count"`
	}](t, rec)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, task.ID, body.Tasks[0].ID)
}

func TestSubmitValidationError(t *testing.T) {
	ts := newTestServer(t, "")
	ts.do(t, http.MethodPut, "/api/form", formRequest{Title: "No date"})

	rec := ts.do(t, http.MethodPost, "/api/form/submit", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[map[string]string](t, rec)
	assert.Equal(t, "dueDate", body["field"])
	assert.NotEmpty(t, body["error"])
}

func TestEditFlow(t *testing.T) {
	ts := newTestServer(t, "")
	task := ts.create(t, "Draft", "2024-06-01")

	rec := ts.do(t, http.MethodPost, "/api/tasks/"+task.ID+"/edit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[controller.State](t, rec)
	assert.True(t, state.Editing)
	assert.Equal(t, "Draft", state.Form.Title)

	ts.do(t, http.MethodPut, "/api/form", formRequest{Title: "Final", DueDate: "2024-06-02"})
	rec = ts.do(t, http.MethodPost, "/api/form/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	state = decode[controller.State](t, rec)
	assert.False(t, state.Editing)
	require.Len(t, state.Tasks, 1)
	assert.Equal(t, "Final", state.Tasks[0].Title)
	assert.Equal(t, "2024-06-02", state.Tasks[0].DueDate)
}

func TestToggleStatusAndChecked(t *testing.T) {
	ts := newTestServer(t, "")
	task := ts.create(t, "Laundry", "2024-06-01")

	rec := ts.do(t, http.MethodPost, "/api/tasks/"+task.ID+"/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[struct {
		Task models.Task `json:"task"`
	}](t, rec)
	assert.Equal(t, models.StatusCompleted, got.Task.Status)

	rec = ts.do(t, http.MethodPost, "/api/tasks/"+task.ID+"/checked", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[struct {
		Task models.Task `json:"task"`
	}](t, rec)
	assert.True(t, got.Task.IsChecked)
	assert.Equal(t, models.StatusCompleted, got.Task.Status)
}

func TestActionLabelFollowsStatus(t *testing.T) {
	ts := newTestServer(t, "")
	task := ts.create(t, "Laundry", "2024-06-01")

	rec := ts.do(t, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Tasks []map[string]any `json:"tasks"`
	}](t, rec)
	require.Len(t, list.Tasks, 1)
	assert.Equal(t, "Check", list.Tasks[0]["actionLabel"])
	assert.Equal(t, "Jun 1, 2024", list.Tasks[0]["dueLabel"])

	rec = ts.do(t, http.MethodPost, "/api/tasks/"+task.ID+"/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[struct {
		Task map[string]any `json:"task"`
	}](t, rec)
	assert.Equal(t, "Completed", got.Task["status"])
	assert.Equal(t, "Uncheck", got.Task["actionLabel"])
}

func TestUnknownTaskIs404(t *testing.T) {
	ts := newTestServer(t, "")
	for _, path := range []string{"/api/tasks/nope/status", "/api/tasks/nope/checked", "/api/tasks/nope/edit"} {
		rec := ts.do(t, http.MethodPost, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestDeleteTask(t *testing.T) {
	ts := newTestServer(t, "")
	task := ts.create(t, "Temp", "2024-06-01")

	rec := ts.do(t, http.MethodDelete, "/api/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodDelete, "/api/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Empty(t, ts.ctrl.Snapshot().Tasks)
}

func TestDeleteAll(t *testing.T) {
	ts := newTestServer(t, "")
	a := ts.create(t, "a", "2024-06-01")
	b := ts.create(t, "b", "2024-06-02")

	rec := ts.do(t, http.MethodDelete, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Deleted []string        `json:"deleted"`
		Failed  []deleteFailure `json:"failed"`
	}](t, rec)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, body.Deleted)
	assert.Empty(t, body.Failed)
}

func TestDeleteAllPartialFailure(t *testing.T) {
	ts := newTestServer(t, "")
	a := ts.create(t, "a", "2024-06-01")
	b := ts.create(t, "b", "2024-06-02")

	ts.store.SetFault(func(op memory.Op, id string) error {
		if op == memory.OpDelete && id == a.ID {
			return errors.New("quota exceeded")
		}
		return nil
	})

	rec := ts.do(t, http.MethodDelete, "/api/tasks", nil)
	require.Equal(t, http.StatusMultiStatus, rec.Code)

	body := decode[struct {
		Deleted []string        `json:"deleted"`
		Failed  []deleteFailure `json:"failed"`
	}](t, rec)
	assert.Equal(t, []string{b.ID}, body.Deleted)
	require.Len(t, body.Failed, 1)
	assert.Equal(t, a.ID, body.Failed[0].ID)
	assert.Contains(t, body.Failed[0].Error, "quota exceeded")
}

func TestStoreFailureIs500(t *testing.T) {
	ts := newTestServer(t, "")
	ts.store.SetFault(func(op memory.Op, _ string) error {
		if op == memory.OpList {
			return errors.New("unavailable")
		}
		return nil
	})

	rec := ts.do(t, http.MethodPost, "/api/refresh", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStaticFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>tasks</h1>"), 0o644))

	ts := newTestServer(t, dir)

	rec := ts.do(t, http.MethodGet, "/some/client/route", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tasks")

	rec = ts.do(t, http.MethodGet, "/api/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"endpoint not found"}`, rec.Body.String())
}
