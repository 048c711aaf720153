package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeTracker struct {
	calls int
	err   error
}

func (f *fakeTracker) UpdateStreak(context.Context) (int, error) {
	f.calls++
	return f.calls, f.err
}

func serve(r *gin.Engine) int {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	return w.Code
}

func TestActivityMiddlewareChecksInOncePerDay(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local)
	tracker := &fakeTracker{}

	r := gin.New()
	r.Use(ActivityMiddleware(tracker, func() time.Time { return now }))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r))
	serve(r)
	assert.Equal(t, 1, tracker.calls)

	now = now.AddDate(0, 0, 1)
	serve(r)
	assert.Equal(t, 2, tracker.calls)
}

func TestActivityMiddlewareRetriesAfterFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracker := &fakeTracker{err: errors.New("storage down")}

	r := gin.New()
	r.Use(ActivityMiddleware(tracker, nil))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r))
	serve(r)
	assert.Equal(t, 2, tracker.calls)
}

func TestRecoveryReturns500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(), RequestLogger())
	r.GET("/ping", func(c *gin.Context) { panic("boom") })

	assert.Equal(t, http.StatusInternalServerError, serve(r))
}
