package service

import (
	"context"
	"fmt"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/monitoring"
	"sort"
)

type GamificationService struct {
	Store    *repository.StateStore
	Notifier *NotificationService
}

// NewGamificationService 注册奖励监听，所有组件产生的升级与成就都在这里统一提示
func NewGamificationService(store *repository.StateStore, notifier *NotificationService) *GamificationService {
	s := &GamificationService{Store: store, Notifier: notifier}
	store.Subscribe(s.announce)
	return s
}

func (s *GamificationService) announce(ctx context.Context, ledger *model.RewardLedger) {
	monitoring.XPAwarded.Add(float64(ledger.XPGained))
	monitoring.LevelUps.Add(float64(len(ledger.LevelUps)))
	for _, a := range ledger.Unlocked {
		monitoring.AchievementsUnlocked.WithLabelValues(string(a.Type)).Inc()
	}
	if s.Notifier == nil {
		return
	}
	for _, a := range ledger.Unlocked {
		if a.Type == model.AchievementLevelUp {
			continue
		}
		s.Notifier.Success(ctx, fmt.Sprintf("🏆 Achievement Unlocked: %s! +%d XP", a.Title, a.XPReward))
	}
	for _, level := range ledger.LevelUps {
		s.Notifier.Success(ctx, fmt.Sprintf("🎉 Level Up! You're now Level %d", level))
	}
}

// Profile 当前用户信息
func (s *GamificationService) Profile(ctx context.Context) model.User {
	return s.Store.Load(ctx).User
}

// AddXP 增加经验，必要时连续升级
func (s *GamificationService) AddXP(ctx context.Context, points int) (model.User, error) {
	var user model.User
	_, err := s.Store.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		doc.GrantXP(l, points)
		user = doc.User
		return nil
	})
	return user, s.reportStorage(ctx, err)
}

// UpdateStreak 每日首次调用时更新连续学习天数
func (s *GamificationService) UpdateStreak(ctx context.Context) (int, error) {
	var (
		streak  int
		changed bool
	)
	_, err := s.Store.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		streak, changed = doc.CheckIn(l)
		return nil
	})
	if err != nil {
		return 0, s.reportStorage(ctx, err)
	}
	if changed && streak > 1 && s.Notifier != nil {
		s.Notifier.Success(ctx, fmt.Sprintf("🔥 %d Day Streak! Keep it up!", streak))
	}
	return streak, nil
}

// RecordStudySession 记录一次学习，每 5 秒奖励 1 XP
func (s *GamificationService) RecordStudySession(ctx context.Context, courseID, lessonID int64, seconds int) (*model.StudySession, error) {
	var session model.StudySession
	_, err := s.Store.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		session = doc.RecordStudySession(l, courseID, lessonID, seconds)
		return nil
	})
	if err != nil {
		return nil, s.reportStorage(ctx, err)
	}
	return &session, nil
}

// UnlockAchievement 按标题去重解锁成就，返回是否新解锁
func (s *GamificationService) UnlockAchievement(ctx context.Context, title string, typ model.AchievementType, reward int) (bool, error) {
	if !typ.Valid() {
		return false, util.ErrInvalidAchievement
	}
	unlocked := false
	_, err := s.Store.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		_, unlocked = doc.UnlockAchievement(l, title, typ, reward)
		return nil
	})
	return unlocked, s.reportStorage(ctx, err)
}

// Achievements 已解锁的成就，按解锁顺序
func (s *GamificationService) Achievements(ctx context.Context) []model.Achievement {
	return s.Store.Load(ctx).Achievements
}

// RecentStudySessions 最近的学习记录，按时间倒序
func (s *GamificationService) RecentStudySessions(ctx context.Context, limit int) []model.StudySession {
	if limit <= 0 {
		limit = util.DefaultRecentSessionsLimit
	}
	sessions := s.Store.Load(ctx).StudyHistory
	sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].Date.After(sessions[j].Date) })
	if len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions
}

// reportStorage 存储失败时提示用户，错误原样返回
func (s *GamificationService) reportStorage(ctx context.Context, err error) error {
	return notifyFailure(ctx, s.Notifier, err)
}
