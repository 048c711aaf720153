package service

import (
	"context"
	"learnhub_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTimer(env *testEnv) *StudyTimer {
	timer := NewStudyTimer(env.game)
	timer.Now = env.clock.Now
	timer.Interval = 10 * time.Millisecond
	return timer
}

func TestStudyTimerPauseResumeStop(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	timer := newTestTimer(env)

	status := timer.Start()
	assert.True(t, status.Running)
	assert.True(t, timer.Start().Running)

	env.clock.Advance(4 * time.Minute)
	status = timer.Pause()
	assert.False(t, status.Running)
	assert.Equal(t, 240, status.Elapsed)
	assert.Equal(t, "00:04:00", status.Display)

	// 暂停期间不计时
	env.clock.Advance(time.Hour)
	assert.Equal(t, 240, timer.Elapsed())

	timer.Start()
	env.clock.Advance(90*time.Second + 500*time.Millisecond)
	assert.Equal(t, 330, timer.Elapsed())

	session, err := timer.Stop(ctx, 7, 8)
	require.NoError(t, err)
	assert.Equal(t, 330, session.Duration)
	assert.Equal(t, int64(7), session.CourseID)
	assert.Equal(t, int64(8), session.LessonID)

	assert.Equal(t, 0, timer.Elapsed())
	assert.False(t, timer.Status().Running)
	assert.Equal(t, 330, env.game.Profile(ctx).TotalStudyTime)
	assert.Equal(t, 66, env.game.Profile(ctx).XP)
}

func TestStudyTimerStopWithoutTime(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	timer := newTestTimer(env)

	_, err := timer.Stop(ctx, 1, 1)
	assert.ErrorIs(t, err, util.ErrTimerNotRunning)

	timer.Start()
	_, err = timer.Stop(ctx, 1, 1)
	assert.ErrorIs(t, err, util.ErrTimerNotRunning)
	assert.Empty(t, env.store.Load(ctx).StudyHistory)
}

func TestStudyTimerTickerRefreshesDisplay(t *testing.T) {
	env := newTestEnv(t, nil)
	timer := newTestTimer(env)

	timer.Start()
	env.clock.Advance(65 * time.Second)
	assert.Eventually(t, func() bool {
		return timer.Status().Display == "00:01:05"
	}, time.Second, 5*time.Millisecond)
	timer.Pause()
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "00:00:00", formatElapsed(0))
	assert.Equal(t, "01:01:01", formatElapsed(3661))
}
