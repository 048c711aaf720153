package model

import (
	"encoding/json"
	"time"
)

// CourseProgress 单门课程的学习进度，首次访问或完成课时时创建
type CourseProgress struct {
	CompletedLessons []int64   `json:"completedLessons"`
	LastAccessed     time.Time `json:"lastAccessed"`
	LastLessonIndex  int       `json:"lastLessonIndex"`
}

func (p *CourseProgress) IsCompleted(lessonID int64) bool {
	for _, id := range p.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

// MarkCompleted 记录课时完成，已完成时返回 false
func (p *CourseProgress) MarkCompleted(lessonID int64) bool {
	if p.IsCompleted(lessonID) {
		return false
	}
	p.CompletedLessons = append(p.CompletedLessons, lessonID)
	return true
}

// CompletedIn 统计仍属于课程的已完成课时数（课时删除后不再计入）
func (p *CourseProgress) CompletedIn(c *Course) int {
	n := 0
	for _, id := range p.CompletedLessons {
		if c.LessonIndex(id) >= 0 {
			n++
		}
	}
	return n
}

// DailyGoal 每日完成课时目标
type DailyGoal struct {
	Target    int          `json:"target"`
	Completed int          `json:"completed"`
	Date      CalendarDate `json:"date"`
}

const DefaultDailyGoalTarget = 3

// StudySession 一次计时学习记录，只追加
type StudySession struct {
	ID       int64     `json:"id"`
	CourseID int64     `json:"courseId"`
	LessonID int64     `json:"lessonId"`
	Duration int       `json:"duration"` // 秒
	Date     time.Time `json:"date"`
}

func (s *StudySession) UnmarshalJSON(data []byte) error {
	type plain StudySession
	aux := struct {
		*plain
		CourseID FlexID `json:"courseId"`
		LessonID FlexID `json:"lessonId"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.CourseID, s.LessonID = int64(aux.CourseID), int64(aux.LessonID)
	return nil
}

// Comment 课程讨论区留言
type Comment struct {
	ID       int64     `json:"id"`
	Text     string    `json:"text"`
	Author   string    `json:"author"`
	Date     time.Time `json:"date"`
	CourseID int64     `json:"courseId"`
}

func (c *Comment) UnmarshalJSON(data []byte) error {
	type plain Comment
	aux := struct {
		*plain
		CourseID FlexID `json:"courseId"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.CourseID = int64(aux.CourseID)
	return nil
}
