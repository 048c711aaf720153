package model

type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

func (d Difficulty) Valid() bool {
	switch d {
	case Beginner, Intermediate, Advanced:
		return true
	}
	return false
}

// LessonType 课时类型，决定 Content 字段的含义
type LessonType string

const (
	LessonVideo    LessonType = "video"    // Content 为视频 ID
	LessonArticle  LessonType = "article"  // Content 为正文
	LessonLink     LessonType = "link"     // Content 为外部链接
	LessonExercise LessonType = "exercise" // Content 为练习说明
)

func (t LessonType) Valid() bool {
	switch t {
	case LessonVideo, LessonArticle, LessonLink, LessonExercise:
		return true
	}
	return false
}

func (t LessonType) Icon() string {
	switch t {
	case LessonVideo:
		return "fas fa-play-circle"
	case LessonArticle:
		return "fas fa-file-alt"
	case LessonLink:
		return "fas fa-link"
	case LessonExercise:
		return "fas fa-code"
	}
	return "fas fa-file"
}

type ResourceType string

const (
	ResourcePDF   ResourceType = "pdf"
	ResourceLink  ResourceType = "link"
	ResourceCode  ResourceType = "code"
	ResourceVideo ResourceType = "video"
	ResourceOther ResourceType = "other"
)

func (t ResourceType) Valid() bool {
	switch t {
	case ResourcePDF, ResourceLink, ResourceCode, ResourceVideo, ResourceOther:
		return true
	}
	return false
}

func (t ResourceType) Icon() string {
	switch t {
	case ResourcePDF:
		return "fas fa-file-pdf"
	case ResourceLink:
		return "fas fa-external-link-alt"
	case ResourceCode:
		return "fas fa-code"
	case ResourceVideo:
		return "fas fa-video"
	case ResourceOther:
		return "fas fa-file"
	}
	return "fas fa-file"
}

// AchievementType 成就类型，同时作为徽章记录在用户信息中
type AchievementType string

const (
	AchievementLevelUp        AchievementType = "level-up"
	AchievementStreak         AchievementType = "streak"
	AchievementCourseComplete AchievementType = "course-complete"
	AchievementFirstLesson    AchievementType = "first-lesson"
	AchievementNoteTaker      AchievementType = "note-taker"
	AchievementQuickLearner   AchievementType = "quick-learner"
	AchievementStudyMarathon  AchievementType = "study-marathon"
	AchievementFirstCourse    AchievementType = "first-course"
	AchievementSocial         AchievementType = "social"
)

func (t AchievementType) Valid() bool {
	switch t {
	case AchievementLevelUp, AchievementStreak, AchievementCourseComplete, AchievementFirstLesson,
		AchievementNoteTaker, AchievementQuickLearner, AchievementStudyMarathon, AchievementFirstCourse,
		AchievementSocial:
		return true
	}
	return false
}

func (t AchievementType) Icon() string {
	switch t {
	case AchievementLevelUp:
		return "fas fa-trophy"
	case AchievementStreak:
		return "fas fa-fire"
	case AchievementCourseComplete:
		return "fas fa-graduation-cap"
	case AchievementFirstLesson:
		return "fas fa-star"
	case AchievementNoteTaker:
		return "fas fa-sticky-note"
	case AchievementQuickLearner:
		return "fas fa-bolt"
	case AchievementStudyMarathon:
		return "fas fa-brain"
	case AchievementFirstCourse:
		return "fas fa-book"
	case AchievementSocial:
		return "fas fa-comments"
	}
	return "fas fa-award"
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Toggle 切换明暗主题，未知值按 light 处理
func (t Theme) Toggle() Theme {
	switch t {
	case ThemeDark:
		return ThemeLight
	case ThemeLight:
		return ThemeDark
	}
	return ThemeDark
}

// NotificationKind 通知类型
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
	NotifyWarning NotificationKind = "warning"
	NotifyInfo    NotificationKind = "info"
)

func (k NotificationKind) Valid() bool {
	switch k {
	case NotifySuccess, NotifyError, NotifyWarning, NotifyInfo:
		return true
	}
	return false
}

// ProgressFilter 按完成度筛选课程
type ProgressFilter string

const (
	ProgressNotStarted ProgressFilter = "not-started"
	ProgressInProgress ProgressFilter = "in-progress"
	ProgressCompleted  ProgressFilter = "completed"
)

// Match 判断百分比是否属于该筛选区间，空值或未知值不过滤
func (f ProgressFilter) Match(percent int) bool {
	switch f {
	case ProgressNotStarted:
		return percent == 0
	case ProgressInProgress:
		return percent > 0 && percent < 100
	case ProgressCompleted:
		return percent == 100
	}
	return true
}
