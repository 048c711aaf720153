package model

import (
	"fmt"
	"time"
)

// Achievement 一次性解锁的成就，按标题去重，只追加不修改
type Achievement struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Type     AchievementType `json:"type"`
	XPReward int             `json:"xpReward"`
	Date     time.Time       `json:"date"`
	Icon     string          `json:"icon"`
}

// 内置成就标题与奖励
const (
	TitleCourseCompleted = "Course Completed!"
	TitleFirstCourse     = "First Course Created!"
	TitleNoteTaker       = "Note Taker"
	TitleFirstComment    = "First Comment"
	TitleThreeDayStreak  = "3-Day Streak!"
	TitleWeeklyWarrior   = "Weekly Warrior!"
	TitleMonthlyMaster   = "Monthly Master!"

	RewardLevelUp        = 50
	RewardCourseComplete = 100
	RewardFirstCourse    = 25
	RewardNoteTaker      = 25
	RewardFirstComment   = 15
	RewardDailyGoal      = 25

	MaxXPPerGrant         = 1000000
	XPPerLesson           = 10
	StudySecondsPerXP     = 5
	MaxRecentCourses      = 5
	ReadingWordsPerMinute = 200
)

// LevelUpTitle 升级成就标题，包含新等级
func LevelUpTitle(level int) string {
	return fmt.Sprintf("Level %d Reached!", level)
}

// streakMilestone 连续学习天数对应的成就
type streakMilestone struct {
	Days   int
	Title  string
	Reward int
}

var streakMilestones = []streakMilestone{
	{Days: 3, Title: TitleThreeDayStreak, Reward: 25},
	{Days: 7, Title: TitleWeeklyWarrior, Reward: 50},
	{Days: 30, Title: TitleMonthlyMaster, Reward: 100},
}

func (d *Document) HasAchievement(title string) bool {
	for _, a := range d.Achievements {
		if a.Title == title {
			return true
		}
	}
	return false
}
