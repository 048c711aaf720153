package service

import (
	"context"
	"errors"
	"fmt"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"math"
)

type DashboardService struct {
	Store      *repository.StateStore
	CourseRepo *repository.CourseRepository
	Progress   *ProgressService
	Notifier   *NotificationService
}

func NewDashboardService(
	store *repository.StateStore,
	courseRepo *repository.CourseRepository,
	progress *ProgressService,
	notifier *NotificationService,
) *DashboardService {
	return &DashboardService{
		Store:      store,
		CourseRepo: courseRepo,
		Progress:   progress,
		Notifier:   notifier,
	}
}

type Dashboard struct {
	User           model.User              `json:"user"`
	Stats          AggregateStats          `json:"stats"`
	RecentProgress []RecentProgress        `json:"recentProgress"`
	DailyGoal      model.DailyGoal         `json:"dailyGoal"`
	TodayStudyTime int                     `json:"todayStudyTime"`
	Achievements   []model.Achievement     `json:"achievements"`
	PopularTags    []repository.TagCount   `json:"popularTags"`
	RecentCourses  []repository.CourseView `json:"recentCourses"`
}

type ChartPoint struct {
	Date    string `json:"date"`
	Label   string `json:"label"`
	Minutes int    `json:"minutes"`
}

type MyCoursesStats struct {
	TotalCourses    int `json:"totalCourses"`
	TotalLessons    int `json:"totalLessons"`
	AverageProgress int `json:"averageProgress"`
	TotalStudyTime  int `json:"totalStudyTime"`
}

// GetDashboard 首页数据
func (s *DashboardService) GetDashboard(ctx context.Context) (*Dashboard, error) {
	goal, err := s.DailyGoal(ctx)
	if err != nil {
		return nil, err
	}
	doc := s.Store.Load(ctx)

	recent := make([]repository.CourseView, 0, len(doc.RecentCourses))
	for _, id := range doc.RecentCourses {
		if c, _ := doc.FindCourse(id); c != nil {
			recent = append(recent, repository.CourseView{Course: *c, Progress: doc.CourseProgressPercent(id)})
		}
	}

	return &Dashboard{
		User:           doc.User,
		Stats:          s.Progress.AggregateStats(ctx),
		RecentProgress: s.Progress.RecentProgress(ctx, util.DefaultRecentProgressLimit),
		DailyGoal:      goal,
		TodayStudyTime: studySecondsOn(doc, s.Store.Now()),
		Achievements:   doc.Achievements,
		PopularTags:    s.CourseRepo.PopularTags(ctx, util.DefaultPopularTagsLimit),
		RecentCourses:  recent,
	}, nil
}

// DailyGoal 今日目标，跨天时重置并保存
func (s *DashboardService) DailyGoal(ctx context.Context) (model.DailyGoal, error) {
	var goal model.DailyGoal
	_, err := s.Store.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		stale := doc.DailyGoal == nil || doc.DailyGoal.Target <= 0 || !doc.DailyGoal.Date.Is(l.Now)
		goal = *doc.TodayGoal(l)
		if !stale {
			return errNoChange
		}
		return nil
	})
	if err != nil && !errors.Is(err, errNoChange) {
		return model.DailyGoal{}, notifyFailure(ctx, s.Notifier, err)
	}
	return goal, nil
}

// SetDailyGoalTarget 设置每日完成课时目标，范围 1-10
func (s *DashboardService) SetDailyGoalTarget(ctx context.Context, target int) (model.DailyGoal, error) {
	if target < 1 || target > util.MaxDailyGoalTarget {
		return model.DailyGoal{}, util.ErrInvalidGoal
	}
	var goal model.DailyGoal
	_, err := s.Store.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		g := doc.TodayGoal(l)
		g.Target = target
		if g.Completed > target {
			g.Completed = target
		}
		goal = *g
		return nil
	})
	if err != nil {
		return model.DailyGoal{}, notifyFailure(ctx, s.Notifier, err)
	}
	if s.Notifier != nil {
		s.Notifier.Success(ctx, fmt.Sprintf("Daily goal set to %d lessons!", target))
	}
	return goal, nil
}

// MarkGoalProgress 今日目标进度加一，达成时奖励经验
func (s *DashboardService) MarkGoalProgress(ctx context.Context) (model.DailyGoal, error) {
	var (
		goal    model.DailyGoal
		reached bool
	)
	_, err := s.Store.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		goal, reached = doc.AdvanceDailyGoal(l)
		return nil
	})
	if err != nil {
		return model.DailyGoal{}, notifyFailure(ctx, s.Notifier, err)
	}
	if reached && s.Notifier != nil {
		s.Notifier.Success(ctx, fmt.Sprintf("🎉 Daily goal completed! +%d XP", model.RewardDailyGoal))
	}
	return goal, nil
}

// StudyChart 最近 days 天每天的学习分钟数，最早的在前
func (s *DashboardService) StudyChart(ctx context.Context, days int) []ChartPoint {
	if days <= 0 {
		days = util.DefaultStudyChartDays
	}
	doc := s.Store.Load(ctx)
	today := model.StartOfDay(s.Store.Now())

	points := make([]ChartPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		points = append(points, ChartPoint{
			Date:    day.Format(util.DateFormat),
			Label:   day.Format("Mon"),
			Minutes: studySecondsOn(doc, day) / 60,
		})
	}
	return points
}

// MyCoursesStats 课程列表页顶部的统计
func (s *DashboardService) MyCoursesStats(ctx context.Context) MyCoursesStats {
	doc := s.Store.Load(ctx)
	stats := MyCoursesStats{
		TotalCourses:   len(doc.Courses),
		TotalStudyTime: doc.User.TotalStudyTime,
	}
	sum := 0
	for _, c := range doc.Courses {
		stats.TotalLessons += len(c.Lessons)
		sum += doc.CourseProgressPercent(c.ID)
	}
	if len(doc.Courses) > 0 {
		stats.AverageProgress = int(math.Round(float64(sum) / float64(len(doc.Courses))))
	}
	return stats
}

func (s *DashboardService) Theme(ctx context.Context) model.Theme {
	return s.Store.Load(ctx).Theme
}

// ToggleTheme 在浅色与深色之间切换
func (s *DashboardService) ToggleTheme(ctx context.Context) (model.Theme, error) {
	var theme model.Theme
	_, err := s.Store.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		doc.Theme = doc.Theme.Toggle()
		theme = doc.Theme
		return nil
	})
	return theme, notifyFailure(ctx, s.Notifier, err)
}

// SetTheme 直接设置主题
func (s *DashboardService) SetTheme(ctx context.Context, theme model.Theme) (model.Theme, error) {
	if !theme.Valid() {
		return "", util.ErrInvalidTheme
	}
	_, err := s.Store.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		doc.Theme = theme
		return nil
	})
	return theme, notifyFailure(ctx, s.Notifier, err)
}
