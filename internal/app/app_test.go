package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"learnhub_backend/internal/config"
	"learnhub_backend/pkg/event"
	"learnhub_backend/pkg/storage"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T, backend storage.Backend, seed bool) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Type = config.StorageMemory
	cfg.Content.SeedDefaultCourses = seed
	if backend == nil {
		backend = storage.NewMemory(0)
	}
	a, err := newApp(context.Background(), cfg, backend, event.NewMockPublisher())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func doRequest(t *testing.T, a *App, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env
}

func createCourse(t *testing.T, a *App, title string, lessons int) int64 {
	t.Helper()
	input := map[string]interface{}{
		"title":    title,
		"category": "Programming",
		"tags":     []string{"go", "backend"},
	}
	var ls []map[string]interface{}
	for i := 0; i < lessons; i++ {
		ls = append(ls, map[string]interface{}{
			"title":    fmt.Sprintf("Lesson %d", i+1),
			"type":     "video",
			"duration": 10,
		})
	}
	input["lessons"] = ls

	w := doRequest(t, a, http.MethodPost, "/api/courses", input)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var course struct {
		ID int64 `json:"id"`
	}
	decode(t, w, &course)
	require.NotZero(t, course.ID)
	return course.ID
}

func TestHealthCheck(t *testing.T) {
	a := newTestApp(t, nil, false)

	w := doRequest(t, a, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestSeededCourseIsListed(t *testing.T) {
	a := newTestApp(t, nil, true)

	w := doRequest(t, a, http.MethodGet, "/api/courses", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		List []struct {
			Title string `json:"title"`
		} `json:"list"`
		Total int `json:"total"`
	}
	decode(t, w, &list)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "JavaScript Basics", list.List[0].Title)
}

func TestCourseLifecycle(t *testing.T) {
	a := newTestApp(t, nil, false)
	id := createCourse(t, a, "Go Services", 2)

	w := doRequest(t, a, http.MethodGet, fmt.Sprintf("/api/courses/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Title   string `json:"title"`
		Lessons []struct {
			ID int64 `json:"id"`
		} `json:"lessons"`
	}
	decode(t, w, &detail)
	assert.Equal(t, "Go Services", detail.Title)
	require.Len(t, detail.Lessons, 2)

	path := fmt.Sprintf("/api/courses/%d/lessons/%d/complete", id, detail.Lessons[0].ID)
	w = doRequest(t, a, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		AlreadyDone bool `json:"alreadyDone"`
		Progress    int  `json:"progress"`
	}
	decode(t, w, &res)
	assert.False(t, res.AlreadyDone)
	assert.Equal(t, 50, res.Progress)

	w = doRequest(t, a, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &res)
	assert.True(t, res.AlreadyDone)

	w = doRequest(t, a, http.MethodPost, fmt.Sprintf("/api/courses/%d/duplicate", id), nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, a, http.MethodDelete, fmt.Sprintf("/api/courses/%d", id), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, a, http.MethodGet, fmt.Sprintf("/api/courses/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvalidRequests(t *testing.T) {
	a := newTestApp(t, nil, false)

	cases := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"bad id", http.MethodGet, "/api/courses/abc", nil, http.StatusBadRequest},
		{"unknown course", http.MethodGet, "/api/courses/999", nil, http.StatusNotFound},
		{"missing title", http.MethodPost, "/api/courses", map[string]string{"category": "x"}, http.StatusBadRequest},
		{"goal too large", http.MethodPut, "/api/goal", map[string]int{"target": 11}, http.StatusBadRequest},
		{"invalid theme", http.MethodPut, "/api/theme", map[string]string{"theme": "blue"}, http.StatusBadRequest},
		{"empty comment", http.MethodPost, "/api/courses/1/comments", map[string]string{"text": ""}, http.StatusBadRequest},
		{"timer not running", http.MethodPost, "/api/timer/stop", nil, http.StatusConflict},
		{"unknown notification", http.MethodDelete, "/api/notifications/nope", nil, http.StatusNotFound},
		{"unknown achievement type", http.MethodPost, "/api/achievements", map[string]interface{}{"title": "Hacker", "type": "hacker", "reward": 10}, http.StatusBadRequest},
		{"xp too large", http.MethodPost, "/api/profile/xp", map[string]int{"points": math.MaxInt64}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(t, a, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
		})
	}
}

func TestExportAndImport(t *testing.T) {
	a := newTestApp(t, nil, false)
	createCourse(t, a, "Exported", 1)

	w := doRequest(t, a, http.MethodGet, "/api/data/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "learnhub-backup-")
	exported := w.Body.Bytes()

	w = doRequest(t, a, http.MethodDelete, "/api/data", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/data/import", bytes.NewReader(exported))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	w = doRequest(t, a, http.MethodGet, "/api/courses", nil)
	var list struct {
		Total int `json:"total"`
	}
	decode(t, w, &list)
	assert.Equal(t, 1, list.Total)

	req = httptest.NewRequest(http.MethodPost, "/api/data/import", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestThemeToggle(t *testing.T) {
	a := newTestApp(t, nil, false)

	w := doRequest(t, a, http.MethodPost, "/api/theme/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Theme string `json:"theme"`
	}
	decode(t, w, &body)
	assert.Equal(t, "dark", body.Theme)

	w = doRequest(t, a, http.MethodGet, "/api/theme", nil)
	decode(t, w, &body)
	assert.Equal(t, "dark", body.Theme)
}

func TestQuotaExceededMapsTo507(t *testing.T) {
	a := newTestApp(t, storage.NewMemory(64), false)

	w := doRequest(t, a, http.MethodPost, "/api/courses", map[string]interface{}{
		"title":    "Too big",
		"category": "Programming",
	})

	assert.Equal(t, http.StatusInsufficientStorage, w.Code, w.Body.String())
}

func TestConfigCallbacksApplied(t *testing.T) {
	a := newTestApp(t, nil, false)
	var got string
	a.RegisterConfigCallback(func(c *config.Config) { got = c.Server.Mode })

	cfg := config.Default()
	cfg.Server.Mode = "release"
	a.applyConfig(cfg)

	assert.Equal(t, "release", got)
}
