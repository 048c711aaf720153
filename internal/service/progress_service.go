package service

import (
	"context"
	"errors"
	"fmt"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"math"
	"sort"
	"time"
)

// errNoChange 让 Mutate 放弃写入，不视为失败
var errNoChange = errors.New("no change")

type ProgressService struct {
	Store    *repository.StateStore
	Notifier *NotificationService
}

func NewProgressService(store *repository.StateStore, notifier *NotificationService) *ProgressService {
	return &ProgressService{Store: store, Notifier: notifier}
}

// CompletionResult 完成课时后的状态
type CompletionResult struct {
	CourseID        int64 `json:"courseId"`
	LessonID        int64 `json:"lessonId"`
	AlreadyDone     bool  `json:"alreadyDone"`
	Progress        int   `json:"progress"`
	CourseCompleted bool  `json:"courseCompleted"`
	XPGained        int   `json:"xpGained"`
}

// RecentProgress 最近学习的课程
type RecentProgress struct {
	CourseID        int64     `json:"courseId"`
	Title           string    `json:"title"`
	Progress        int       `json:"progress"`
	LastAccessed    time.Time `json:"lastAccessed"`
	LastLessonIndex int       `json:"lastLessonIndex"`
}

type AggregateStats struct {
	Level            int `json:"level"`
	XP               int `json:"xp"`
	MaxXP            int `json:"maxXP"`
	Streak           int `json:"streak"`
	TotalCourses     int `json:"totalCourses"`
	TotalLessons     int `json:"totalLessons"`
	CompletedLessons int `json:"completedLessons"`
	CompletionRate   int `json:"completionRate"`
	Badges           int `json:"badges"`
	TotalStudyTime   int `json:"totalStudyTime"`
}

type CourseStatistics struct {
	CourseID         int64      `json:"courseId"`
	TotalLessons     int        `json:"totalLessons"`
	CompletedLessons int        `json:"completedLessons"`
	Progress         int        `json:"progress"`
	TotalDuration    int        `json:"totalDuration"`
	LastAccessed     *time.Time `json:"lastAccessed"`
}

// CourseProgressPercent 课程完成百分比
func (s *ProgressService) CourseProgressPercent(ctx context.Context, courseID int64) int {
	return s.Store.Load(ctx).CourseProgressPercent(courseID)
}

// MarkLessonComplete 标记课时完成，重复调用不产生任何变化。
// 首次完成奖励 10 XP，课程刚好达到 100% 时解锁 "Course Completed!"。
func (s *ProgressService) MarkLessonComplete(ctx context.Context, courseID, lessonID int64) (*CompletionResult, error) {
	res := &CompletionResult{CourseID: courseID, LessonID: lessonID}

	ledger, err := s.Store.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		course, _ := doc.FindCourse(courseID)
		if course == nil {
			return util.ErrCourseNotFound
		}
		if course.LessonIndex(lessonID) < 0 {
			return util.ErrLessonNotFound
		}
		p := doc.EnsureProgress(courseID, l.Now)
		if !p.MarkCompleted(lessonID) {
			res.AlreadyDone = true
			res.Progress = doc.CourseProgressPercent(courseID)
			return errNoChange
		}
		p.LastAccessed = l.Now
		doc.TouchRecentCourse(courseID)
		doc.GrantXP(l, model.XPPerLesson)

		res.Progress = doc.CourseProgressPercent(courseID)
		if res.Progress == 100 {
			res.CourseCompleted = true
			doc.UnlockAchievement(l, model.TitleCourseCompleted, model.AchievementCourseComplete, model.RewardCourseComplete)
		}
		return nil
	})
	if errors.Is(err, errNoChange) {
		return res, nil
	}
	if err != nil {
		return nil, notifyFailure(ctx, s.Notifier, err)
	}
	res.XPGained = ledger.XPGained

	if s.Notifier != nil {
		if res.CourseCompleted {
			s.Notifier.Success(ctx, "🎓 Course Completed! Great job!")
		} else {
			s.Notifier.Success(ctx, fmt.Sprintf("✅ Lesson marked as completed! +%d XP", model.XPPerLesson))
		}
	}
	return res, nil
}

// SaveLastAccessed 记录最后打开的课时下标
func (s *ProgressService) SaveLastAccessed(ctx context.Context, courseID int64, lessonIndex int) error {
	_, err := s.Store.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		course, _ := doc.FindCourse(courseID)
		if course == nil {
			return util.ErrCourseNotFound
		}
		if lessonIndex < 0 || lessonIndex >= len(course.Lessons) {
			return util.ErrLessonNotFound
		}
		p := doc.EnsureProgress(courseID, l.Now)
		p.LastAccessed = l.Now
		p.LastLessonIndex = lessonIndex
		doc.TouchRecentCourse(courseID)
		return nil
	})
	return notifyFailure(ctx, s.Notifier, err)
}

// RecentProgress 按最后访问时间倒序，忽略已删除的课程
func (s *ProgressService) RecentProgress(ctx context.Context, limit int) []RecentProgress {
	if limit <= 0 {
		limit = util.DefaultRecentProgressLimit
	}
	doc := s.Store.Load(ctx)
	out := make([]RecentProgress, 0, len(doc.Progress))
	for id, p := range doc.Progress {
		course, _ := doc.FindCourse(id)
		if course == nil || p.LastAccessed.IsZero() {
			continue
		}
		out = append(out, RecentProgress{
			CourseID:        id,
			Title:           course.Title,
			Progress:        doc.CourseProgressPercent(id),
			LastAccessed:    p.LastAccessed,
			LastLessonIndex: p.LastLessonIndex,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastAccessed.Equal(out[j].LastAccessed) {
			return out[i].LastAccessed.After(out[j].LastAccessed)
		}
		return out[i].CourseID < out[j].CourseID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// DailyStudyTime 指定本地日期的学习秒数
func (s *ProgressService) DailyStudyTime(ctx context.Context, date time.Time) int {
	return studySecondsOn(s.Store.Load(ctx), date)
}

func studySecondsOn(doc *model.Document, date time.Time) int {
	total := 0
	for _, session := range doc.StudyHistory {
		if model.SameDay(session.Date, date, date.Location()) {
			total += session.Duration
		}
	}
	return total
}

// AggregateStats 汇总统计。已完成课时数由各课程百分比反推，
// 四舍五入后的百分比会让结果与真实完成数略有偏差。
func (s *ProgressService) AggregateStats(ctx context.Context) AggregateStats {
	doc := s.Store.Load(ctx)
	stats := AggregateStats{
		Level:          doc.User.Level,
		XP:             doc.User.XP,
		MaxXP:          doc.User.MaxXP,
		Streak:         doc.User.Streak,
		TotalCourses:   len(doc.Courses),
		Badges:         len(doc.User.Badges),
		TotalStudyTime: doc.User.TotalStudyTime,
	}
	for _, c := range doc.Courses {
		total := len(c.Lessons)
		stats.TotalLessons += total
		percent := doc.CourseProgressPercent(c.ID)
		stats.CompletedLessons += int(math.Floor(float64(percent) / 100 * float64(total)))
	}
	if stats.TotalLessons > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.CompletedLessons) / float64(stats.TotalLessons) * 100))
	}
	return stats
}

// CourseStatistics 单门课程的统计，完成数为真实计数
func (s *ProgressService) CourseStatistics(ctx context.Context, courseID int64) (*CourseStatistics, error) {
	doc := s.Store.Load(ctx)
	course, _ := doc.FindCourse(courseID)
	if course == nil {
		return nil, util.ErrCourseNotFound
	}
	stats := &CourseStatistics{
		CourseID:      courseID,
		TotalLessons:  len(course.Lessons),
		Progress:      doc.CourseProgressPercent(courseID),
		TotalDuration: course.TotalDuration(),
	}
	if p, ok := doc.Progress[courseID]; ok {
		stats.CompletedLessons = p.CompletedIn(course)
		accessed := p.LastAccessed
		stats.LastAccessed = &accessed
	}
	return stats, nil
}

// CompletedLessons 课程中已完成的课时 ID
func (s *ProgressService) CompletedLessons(ctx context.Context, courseID int64) []int64 {
	doc := s.Store.Load(ctx)
	if p, ok := doc.Progress[courseID]; ok {
		return append([]int64{}, p.CompletedLessons...)
	}
	return []int64{}
}
