package service

import (
	"context"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/pkg/event"
	"learnhub_backend/pkg/storage"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClock 可手动推进的时钟，计时器的 ticker 会并发读取
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	clock     *testClock
	backend   storage.Backend
	store     *repository.StateStore
	courses   *repository.CourseRepository
	notifier  *NotificationService
	publisher *event.MockPublisher
	game      *GamificationService
	progress  *ProgressService
}

func newTestEnv(t *testing.T, backend storage.Backend) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, backend, config.Default())
}

func newTestEnvWithConfig(t *testing.T, backend storage.Backend, cfg *config.Config) *testEnv {
	t.Helper()
	if backend == nil {
		backend = storage.NewMemory(0)
	}
	clock := &testClock{now: time.Date(2024, time.March, 10, 9, 30, 0, 0, time.Local)}
	ids := model.NewIDGenerator()
	ids.Now = clock.Now

	store := repository.NewStateStore(backend, cfg, ids)
	store.Now = clock.Now

	publisher := event.NewMockPublisher()
	notifier := NewNotificationService(5*time.Second, publisher)
	notifier.Now = clock.Now

	return &testEnv{
		clock:     clock,
		backend:   backend,
		store:     store,
		courses:   repository.NewCourseRepository(store),
		notifier:  notifier,
		publisher: publisher,
		game:      NewGamificationService(store, notifier),
		progress:  NewProgressService(store, notifier),
	}
}

func (e *testEnv) messages() []string {
	var out []string
	for _, n := range e.notifier.Active() {
		out = append(out, n.Message)
	}
	return out
}

// createCourse 创建带若干课时的课程
func (e *testEnv) createCourse(t *testing.T, title string, lessons ...string) *model.Course {
	t.Helper()
	in := model.CourseInput{Title: title, Category: "Programming"}
	for _, l := range lessons {
		in.Lessons = append(in.Lessons, model.LessonInput{Title: l, Type: model.LessonVideo, Duration: 10})
	}
	c, _, err := e.courses.Create(context.Background(), in)
	require.NoError(t, err)
	return c
}

func TestNotificationsExpire(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)

	env.notifier.Success(ctx, "saved")
	env.notifier.Notify(ctx, "bogus", "fallback")
	assert.Equal(t, []string{"saved", "fallback"}, env.messages())
	assert.Equal(t, model.NotifyInfo, env.notifier.Active()[1].Kind)

	env.clock.Advance(5 * time.Second)
	assert.Empty(t, env.notifier.Active())

	published := env.publisher.Published()
	require.Len(t, published, 2)
	assert.Equal(t, "success", published[0].Kind)
}

func TestNotificationDismiss(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)

	n := env.notifier.Warning(ctx, "careful")
	env.notifier.Info(ctx, "hello")
	assert.True(t, env.notifier.Dismiss(n.ID))
	assert.False(t, env.notifier.Dismiss(n.ID))
	assert.Equal(t, []string{"hello"}, env.messages())
}

func TestNotificationDismissAfterReload(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)

	env.notifier.SetDismissAfter(time.Minute)
	env.notifier.SetDismissAfter(0)
	n := env.notifier.Error(ctx, "boom")
	assert.Equal(t, env.clock.Now().Add(time.Minute), n.ExpiresAt)
}
