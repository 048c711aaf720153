package model

import "time"

const (
	DefaultCourseIcon  = "fas fa-book"
	DefaultCourseColor = "#4361ee"
	MaxTagsPerCourse   = 10
)

// Course 用户创建的课程
type Course struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Difficulty  Difficulty `json:"difficulty"`
	Color       string     `json:"color"`
	Icon        string     `json:"icon"`
	Tags        []string   `json:"tags"`
	Lessons     []Lesson   `json:"lessons"`
	Resources   []Resource `json:"resources"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type Lesson struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Type        LessonType `json:"type"`
	Content     string     `json:"content"`
	Duration    Minutes    `json:"duration"`
	Order       int        `json:"order"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type Resource struct {
	ID    int64        `json:"id"`
	Title string       `json:"title"`
	URL   string       `json:"url"`
	Type  ResourceType `json:"type"`
	Added time.Time    `json:"added"`
}

func (c *Course) normalize() {
	if c.Lessons == nil {
		c.Lessons = []Lesson{}
	}
	if c.Resources == nil {
		c.Resources = []Resource{}
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Icon == "" {
		c.Icon = DefaultCourseIcon
	}
	if c.Color == "" {
		c.Color = DefaultCourseColor
	}
	if !c.Difficulty.Valid() {
		c.Difficulty = Beginner
	}
}

// LessonIndex 返回课时下标，不存在时为 -1
func (c *Course) LessonIndex(lessonID int64) int {
	for i := range c.Lessons {
		if c.Lessons[i].ID == lessonID {
			return i
		}
	}
	return -1
}

// Renumber 按当前位置重写所有课时的 Order（从 1 开始）
func (c *Course) Renumber() {
	for i := range c.Lessons {
		c.Lessons[i].Order = i + 1
	}
}

// TotalDuration 所有课时时长之和（分钟）
func (c *Course) TotalDuration() int {
	total := 0
	for _, l := range c.Lessons {
		total += int(l.Duration)
	}
	return total
}

func (c *Course) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
