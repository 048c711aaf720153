package model

import (
	"encoding/json"
	"math"
	"time"
)

// Document 持久化的根文档，保存全部应用状态
type Document struct {
	User          User                       `json:"user"`
	Progress      map[int64]*CourseProgress  `json:"progress"`
	CourseNotes   map[int64]map[int64]string `json:"courseNotes"`
	RecentCourses []int64                    `json:"recentCourses"`
	Achievements  []Achievement              `json:"achievements"`
	Theme         Theme                      `json:"theme"`
	Courses       []Course                   `json:"userCourses"`
	StudyHistory  []StudySession             `json:"studyHistory"`
	Comments      map[int64][]Comment        `json:"comments"`
	DailyGoal     *DailyGoal                 `json:"dailyGoal,omitempty"`
	LastUpdated   time.Time                  `json:"lastUpdated"`
}

// UnmarshalJSON 兼容 recentCourses 中的字符串 ID
func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	aux := struct {
		*plain
		RecentCourses []FlexID `json:"recentCourses"`
	}{plain: (*plain)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.RecentCourses != nil {
		d.RecentCourses = flexIDs(aux.RecentCourses)
	}
	return nil
}

// NewDocument 新用户的默认文档
func NewDocument(now time.Time) *Document {
	doc := &Document{
		User:        DefaultUser(),
		Theme:       ThemeLight,
		LastUpdated: now,
	}
	doc.Normalize()
	return doc
}

// Normalize 补齐缺失的集合并修正越界字段。
// 加载时调用一次，之后各组件无需再做存在性判断。
func (d *Document) Normalize() {
	d.User.normalize()
	if d.Progress == nil {
		d.Progress = map[int64]*CourseProgress{}
	}
	for id, p := range d.Progress {
		if p == nil {
			delete(d.Progress, id)
			continue
		}
		if p.CompletedLessons == nil {
			p.CompletedLessons = []int64{}
		}
	}
	if d.CourseNotes == nil {
		d.CourseNotes = map[int64]map[int64]string{}
	}
	if d.RecentCourses == nil {
		d.RecentCourses = []int64{}
	}
	if d.Achievements == nil {
		d.Achievements = []Achievement{}
	}
	if !d.Theme.Valid() {
		d.Theme = ThemeLight
	}
	if d.Courses == nil {
		d.Courses = []Course{}
	}
	for i := range d.Courses {
		d.Courses[i].normalize()
	}
	if d.StudyHistory == nil {
		d.StudyHistory = []StudySession{}
	}
	if d.Comments == nil {
		d.Comments = map[int64][]Comment{}
	}
}

// MaxID 文档中出现过的最大 ID，用于让 ID 生成器跳过旧数据
func (d *Document) MaxID() int64 {
	var max int64
	see := func(id int64) {
		if id > max {
			max = id
		}
	}
	for _, c := range d.Courses {
		see(c.ID)
		for _, l := range c.Lessons {
			see(l.ID)
		}
		for _, r := range c.Resources {
			see(r.ID)
		}
	}
	for _, a := range d.Achievements {
		see(a.ID)
	}
	for _, s := range d.StudyHistory {
		see(s.ID)
	}
	for _, list := range d.Comments {
		for _, c := range list {
			see(c.ID)
		}
	}
	return max
}

// FindCourse 返回课程及其下标，不存在时返回 nil, -1
func (d *Document) FindCourse(id int64) (*Course, int) {
	for i := range d.Courses {
		if d.Courses[i].ID == id {
			return &d.Courses[i], i
		}
	}
	return nil, -1
}

// EnsureProgress 懒创建课程进度记录
func (d *Document) EnsureProgress(courseID int64, now time.Time) *CourseProgress {
	p, ok := d.Progress[courseID]
	if !ok {
		p = &CourseProgress{CompletedLessons: []int64{}, LastAccessed: now}
		d.Progress[courseID] = p
	}
	return p
}

// CourseProgressPercent 课程完成百分比，四舍五入到整数
func (d *Document) CourseProgressPercent(courseID int64) int {
	p, ok := d.Progress[courseID]
	if !ok {
		return 0
	}
	c, _ := d.FindCourse(courseID)
	if c == nil || len(c.Lessons) == 0 {
		return 0
	}
	return roundPercent(p.CompletedIn(c), len(c.Lessons))
}

// TouchRecentCourse 将课程移到最近访问列表首位，最多保留 5 个
func (d *Document) TouchRecentCourse(courseID int64) {
	recent := make([]int64, 0, MaxRecentCourses)
	recent = append(recent, courseID)
	for _, id := range d.RecentCourses {
		if id != courseID && len(recent) < MaxRecentCourses {
			recent = append(recent, id)
		}
	}
	d.RecentCourses = recent
}

// RemoveCourseData 删除课程关联的进度、笔记、评论与最近访问记录
func (d *Document) RemoveCourseData(courseID int64) {
	delete(d.Progress, courseID)
	delete(d.CourseNotes, courseID)
	delete(d.Comments, courseID)
	recent := d.RecentCourses[:0]
	for _, id := range d.RecentCourses {
		if id != courseID {
			recent = append(recent, id)
		}
	}
	d.RecentCourses = recent
}

func roundPercent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
