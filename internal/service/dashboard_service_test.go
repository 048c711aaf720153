package service

import (
	"context"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDashboard(env *testEnv) *DashboardService {
	return NewDashboardService(env.store, env.courses, env.progress, env.notifier)
}

func TestDailyGoalResetsOnNewDay(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	dash := newTestDashboard(env)

	goal, err := dash.DailyGoal(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultDailyGoalTarget, goal.Target)
	assert.Equal(t, 0, goal.Completed)
	require.NotNil(t, env.store.Load(ctx).DailyGoal)

	goal, err = dash.MarkGoalProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, goal.Completed)

	env.clock.Advance(24 * time.Hour)
	goal, err = dash.DailyGoal(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, goal.Completed)
	assert.True(t, goal.Date.Is(env.clock.Now()))
}

func TestMarkGoalProgressRewardsOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	dash := newTestDashboard(env)

	_, err := dash.SetDailyGoalTarget(ctx, 2)
	require.NoError(t, err)
	assert.Contains(t, env.messages(), "Daily goal set to 2 lessons!")

	_, err = dash.MarkGoalProgress(ctx)
	require.NoError(t, err)
	goal, err := dash.MarkGoalProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, goal.Completed)
	assert.Contains(t, env.messages(), "🎉 Daily goal completed! +25 XP")
	assert.Equal(t, model.RewardDailyGoal, env.game.Profile(ctx).XP)

	// 达成后不再增加，也不重复奖励
	goal, err = dash.MarkGoalProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, goal.Completed)
	assert.Equal(t, model.RewardDailyGoal, env.game.Profile(ctx).XP)
}

func TestSetDailyGoalTargetRange(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	dash := newTestDashboard(env)

	for _, target := range []int{0, -1, 11} {
		_, err := dash.SetDailyGoalTarget(ctx, target)
		assert.ErrorIs(t, err, util.ErrInvalidGoal, "target %d", target)
	}
	goal, err := dash.SetDailyGoalTarget(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, goal.Target)
}

func TestStudyChartCoversLastDays(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	dash := newTestDashboard(env)

	_, err := env.game.RecordStudySession(ctx, 1, 1, 1800)
	require.NoError(t, err)
	env.clock.Advance(48 * time.Hour)
	_, err = env.game.RecordStudySession(ctx, 1, 1, 659)
	require.NoError(t, err)

	chart := dash.StudyChart(ctx, 0)
	require.Len(t, chart, util.DefaultStudyChartDays)
	last := chart[len(chart)-1]
	assert.Equal(t, env.clock.Now().Format(util.DateFormat), last.Date)
	assert.Equal(t, 10, last.Minutes)
	assert.Equal(t, 0, chart[len(chart)-2].Minutes)
	assert.Equal(t, 30, chart[len(chart)-3].Minutes)
}

func TestMyCoursesStatsAndTheme(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	dash := newTestDashboard(env)

	assert.Equal(t, MyCoursesStats{}, dash.MyCoursesStats(ctx))

	a := env.createCourse(t, "A", "1", "2")
	env.createCourse(t, "B", "1")
	_, err := env.progress.MarkLessonComplete(ctx, a.ID, a.Lessons[0].ID)
	require.NoError(t, err)

	stats := dash.MyCoursesStats(ctx)
	assert.Equal(t, 2, stats.TotalCourses)
	assert.Equal(t, 3, stats.TotalLessons)
	assert.Equal(t, 25, stats.AverageProgress)

	assert.Equal(t, model.ThemeLight, dash.Theme(ctx))
	theme, err := dash.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ThemeDark, theme)
	assert.Equal(t, model.ThemeDark, dash.Theme(ctx))

	_, err = dash.SetTheme(ctx, "sepia")
	assert.ErrorIs(t, err, util.ErrInvalidTheme)
}

func TestGetDashboard(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	dash := newTestDashboard(env)
	course := env.createCourse(t, "Go", "1")

	_, err := env.progress.MarkLessonComplete(ctx, course.ID, course.Lessons[0].ID)
	require.NoError(t, err)

	d, err := dash.GetDashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Stats.TotalCourses)
	require.Len(t, d.RecentCourses, 1)
	assert.Equal(t, 100, d.RecentCourses[0].Progress)
	require.Len(t, d.RecentProgress, 1)
	assert.Equal(t, model.DefaultDailyGoalTarget, d.DailyGoal.Target)
	assert.Len(t, d.Achievements, 3)
}
