package service

import (
	"context"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/storage"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddXPLevelsUpRepeatedly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)

	user, err := env.game.AddXP(ctx, 250)
	require.NoError(t, err)
	assert.Equal(t, 3, user.Level)
	assert.Equal(t, 0, user.XP)
	assert.Equal(t, 225, user.MaxXP)

	achievements := env.game.Achievements(ctx)
	require.Len(t, achievements, 2)
	assert.Equal(t, "Level 2 Reached!", achievements[0].Title)
	assert.Equal(t, "Level 3 Reached!", achievements[1].Title)
	assert.Equal(t, model.AchievementLevelUp, achievements[0].Type)
	assert.Equal(t, "fas fa-trophy", achievements[0].Icon)

	msgs := env.messages()
	assert.Contains(t, msgs, "🎉 Level Up! You're now Level 2")
	assert.Contains(t, msgs, "🎉 Level Up! You're now Level 3")
	for _, m := range msgs {
		assert.NotContains(t, m, "Achievement Unlocked: Level")
	}
}

func TestAddXPBelowThreshold(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)

	user, err := env.game.AddXP(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, 1, user.Level)
	assert.Equal(t, 99, user.XP)

	user, err = env.game.AddXP(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 99, user.XP)
	assert.Empty(t, env.game.Achievements(ctx))
}

func TestAddXPWithCreditedLevelUpBonus(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Gamification.LevelUpBonusCredited = true
	env := newTestEnvWithConfig(t, nil, cfg)

	user, err := env.game.AddXP(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, user.Level)
	assert.Equal(t, 50, user.XP)
	assert.Equal(t, 150, user.MaxXP)
}

func TestUpdateStreak(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)

	streak, err := env.game.UpdateStreak(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)

	// 同一天重复签到不变
	env.clock.Advance(2 * time.Hour)
	streak, err = env.game.UpdateStreak(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)

	env.clock.Advance(24 * time.Hour)
	streak, err = env.game.UpdateStreak(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, streak)
	assert.Contains(t, env.messages(), "🔥 2 Day Streak! Keep it up!")

	env.clock.Advance(24 * time.Hour)
	streak, err = env.game.UpdateStreak(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, streak)

	profile := env.game.Profile(ctx)
	assert.Equal(t, 25, profile.XP)
	achievements := env.game.Achievements(ctx)
	require.Len(t, achievements, 1)
	assert.Equal(t, model.TitleThreeDayStreak, achievements[0].Title)
	assert.Equal(t, model.AchievementStreak, achievements[0].Type)

	// 中断两天后重置
	env.clock.Advance(72 * time.Hour)
	streak, err = env.game.UpdateStreak(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
	require.NotNil(t, env.game.Profile(ctx).LastLogin)
	assert.True(t, env.game.Profile(ctx).LastLogin.Equal(env.clock.Now()))
}

func TestRecordStudySessionGrantsXPPerFiveSeconds(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)

	session, err := env.game.RecordStudySession(ctx, 1, 2, 60)
	require.NoError(t, err)
	assert.Equal(t, 60, session.Duration)
	assert.True(t, session.Date.Equal(env.clock.Now()))

	user := env.game.Profile(ctx)
	assert.Equal(t, 12, user.XP)
	assert.Equal(t, 60, user.TotalStudyTime)

	// 899 秒 = 179 XP，累计 191 XP 升到 2 级
	_, err = env.game.RecordStudySession(ctx, 1, 2, 899)
	require.NoError(t, err)
	user = env.game.Profile(ctx)
	assert.Equal(t, 2, user.Level)
	assert.Equal(t, 91, user.XP)
	assert.Equal(t, 150, user.MaxXP)
	assert.Equal(t, 959, user.TotalStudyTime)
}

func TestRecentStudySessionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)

	for i := 0; i < 3; i++ {
		_, err := env.game.RecordStudySession(ctx, int64(i), 0, 60)
		require.NoError(t, err)
		env.clock.Advance(time.Minute)
	}
	sessions := env.game.RecentStudySessions(ctx, 2)
	require.Len(t, sessions, 2)
	assert.Equal(t, int64(2), sessions[0].CourseID)
	assert.Equal(t, int64(1), sessions[1].CourseID)
}

func TestUnlockAchievementRejectsUnknownType(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)

	ok, err := env.game.UnlockAchievement(ctx, "Hacker", model.AchievementType("hacker"), 30)
	assert.ErrorIs(t, err, util.ErrInvalidAchievement)
	assert.False(t, ok)
	assert.Empty(t, env.game.Achievements(ctx))
	assert.Equal(t, 0, env.game.Profile(ctx).XP)
}

func TestUnlockAchievementOnlyOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)

	ok, err := env.game.UnlockAchievement(ctx, "Quick Learner", model.AchievementQuickLearner, 30)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, env.messages(), "🏆 Achievement Unlocked: Quick Learner! +30 XP")

	ok, err = env.game.UnlockAchievement(ctx, "Quick Learner", model.AchievementQuickLearner, 30)
	require.NoError(t, err)
	assert.False(t, ok)

	user := env.game.Profile(ctx)
	assert.Equal(t, 30, user.XP)
	assert.Equal(t, []model.AchievementType{model.AchievementQuickLearner}, user.Badges)
}

func TestStorageQuotaProducesErrorNotification(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, storage.NewMemory(0))
	env.store.Load(ctx)

	env.store.Backend = storage.WithQuota(storage.NewMemory(0), 10)
	_, err := env.game.AddXP(ctx, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrQuotaExceeded)
	assert.ErrorIs(t, err, util.ErrStorageFailure)
	assert.Contains(t, env.messages(), "Storage quota exceeded. Export your data and remove unused courses.")
}
