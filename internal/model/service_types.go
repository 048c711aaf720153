package model

import (
	"math"
	"strings"
)

// CourseInput 创建课程的输入
type CourseInput struct {
	Title       string        `json:"title" binding:"required,max=100"`
	Description string        `json:"description" binding:"max=1000"`
	Category    string        `json:"category" binding:"required,max=50"`
	Difficulty  Difficulty    `json:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
	Color       string        `json:"color" binding:"omitempty,hexcolor"`
	Icon        string        `json:"icon" binding:"max=50"`
	Tags        []string      `json:"tags"`
	Lessons     []LessonInput `json:"lessons" binding:"dive"`
}

// CoursePatch 更新课程，只合并非 nil 字段
type CoursePatch struct {
	Title       *string     `json:"title" binding:"omitempty,min=1,max=100"`
	Description *string     `json:"description" binding:"omitempty,max=1000"`
	Category    *string     `json:"category" binding:"omitempty,min=1,max=50"`
	Difficulty  *Difficulty `json:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
	Color       *string     `json:"color" binding:"omitempty,hexcolor"`
	Icon        *string     `json:"icon" binding:"omitempty,max=50"`
	Tags        *[]string   `json:"tags"`
}

// LessonInput 新增课时的输入，Order 为 0 时追加到末尾
type LessonInput struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Type        LessonType `json:"type" binding:"required,oneof=video article link exercise"`
	Content     string     `json:"content"`
	Duration    Minutes    `json:"duration" binding:"gte=0"`
	Order       int        `json:"order" binding:"gte=0"`
	Description string     `json:"description" binding:"max=1000"`
}

type LessonPatch struct {
	Title       *string     `json:"title" binding:"omitempty,min=1,max=200"`
	Type        *LessonType `json:"type" binding:"omitempty,oneof=video article link exercise"`
	Content     *string     `json:"content"`
	Duration    *Minutes    `json:"duration" binding:"omitempty,gte=0"`
	Description *string     `json:"description" binding:"omitempty,max=1000"`
}

type ResourceInput struct {
	Title string       `json:"title" binding:"required,max=200"`
	URL   string       `json:"url" binding:"required,max=2048"`
	Type  ResourceType `json:"type" binding:"omitempty,oneof=pdf link code video other"`
}

// CourseFilters 课程搜索条件，空字段不参与过滤
type CourseFilters struct {
	Category   string         `form:"category"`
	Difficulty Difficulty     `form:"difficulty"`
	Tag        string         `form:"tag"`
	Progress   ProgressFilter `form:"progress"`
}

// ReadingTime 按每分钟 200 词估算阅读时长，向上取整
func ReadingTime(text string) Minutes {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return Minutes(math.Ceil(float64(words) / ReadingWordsPerMinute))
}
