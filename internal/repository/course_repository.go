package repository

import (
	"context"
	"fmt"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
	"strings"

	"github.com/go-playground/validator/v10"
)

type CourseRepository struct {
	Store    *StateStore
	validate *validator.Validate
}

// NewCourseRepository 创建课程仓库，校验规则与 gin 绑定共用 binding 标签
func NewCourseRepository(store *StateStore) *CourseRepository {
	v := validator.New()
	v.SetTagName("binding")
	return &CourseRepository{Store: store, validate: v}
}

// List 返回全部课程
func (r *CourseRepository) List(ctx context.Context) []model.Course {
	return r.Store.Load(ctx).Courses
}

// FindByID 查询单个课程
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*model.Course, error) {
	c, _ := r.Store.Load(ctx).FindCourse(id)
	if c == nil {
		return nil, util.ErrCourseNotFound
	}
	return c, nil
}

// Create 创建课程并分配 ID；课程总数变为 1 时解锁首个课程成就
func (r *CourseRepository) Create(ctx context.Context, in model.CourseInput) (*model.Course, *model.RewardLedger, error) {
	if err := r.validate.Struct(in); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", util.ErrInvalidCourse, err)
	}
	tags, err := NormalizeTags(in.Tags)
	if err != nil {
		return nil, nil, err
	}

	var created model.Course
	ledger, err := r.Store.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		course := model.Course{
			ID:          l.IDs.NextID(),
			Title:       strings.TrimSpace(in.Title),
			Description: strings.TrimSpace(in.Description),
			Category:    strings.TrimSpace(in.Category),
			Difficulty:  in.Difficulty,
			Color:       in.Color,
			Icon:        in.Icon,
			Tags:        tags,
			Lessons:     []model.Lesson{},
			Resources:   []model.Resource{},
			CreatedAt:   l.Now,
			UpdatedAt:   l.Now,
		}
		for _, li := range in.Lessons {
			course.Lessons = append(course.Lessons, newLesson(l, li, len(course.Lessons)))
		}
		course.Renumber()
		if err := normalizeCourse(&course); err != nil {
			return err
		}

		doc.Courses = append(doc.Courses, course)
		if len(doc.Courses) == 1 {
			doc.UnlockAchievement(l, model.TitleFirstCourse, model.AchievementFirstCourse, model.RewardFirstCourse)
		}
		created = course
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &created, ledger, nil
}

// Update 合并非 nil 字段并刷新 updatedAt
func (r *CourseRepository) Update(ctx context.Context, id int64, patch model.CoursePatch) (*model.Course, error) {
	if err := r.validate.Struct(patch); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidCourse, err)
	}
	var tags []string
	if patch.Tags != nil {
		var err error
		if tags, err = NormalizeTags(*patch.Tags); err != nil {
			return nil, err
		}
	}

	var updated model.Course
	_, err := r.Store.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		c, _ := doc.FindCourse(id)
		if c == nil {
			return util.ErrCourseNotFound
		}
		if patch.Title != nil {
			c.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			c.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.Category != nil {
			c.Category = strings.TrimSpace(*patch.Category)
		}
		if patch.Difficulty != nil {
			c.Difficulty = *patch.Difficulty
		}
		if patch.Color != nil {
			c.Color = *patch.Color
		}
		if patch.Icon != nil {
			c.Icon = *patch.Icon
		}
		if patch.Tags != nil {
			c.Tags = tags
		}
		if err := normalizeCourse(c); err != nil {
			return err
		}
		c.UpdatedAt = l.Now
		updated = *c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete 删除课程及其进度、笔记、评论与最近访问记录，返回是否删除
func (r *CourseRepository) Delete(ctx context.Context, id int64) (bool, error) {
	removed := false
	_, err := r.Store.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		_, idx := doc.FindCourse(id)
		if idx < 0 {
			return nil
		}
		doc.Courses = append(doc.Courses[:idx], doc.Courses[idx+1:]...)
		doc.RemoveCourseData(id)
		removed = true
		return nil
	})
	return removed, err
}

// AddLesson 新增课时，Order 缺省为末尾位置
func (r *CourseRepository) AddLesson(ctx context.Context, courseID int64, in model.LessonInput) (*model.Lesson, error) {
	if err := r.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidLesson, err)
	}

	var added model.Lesson
	_, err := r.Store.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		c, _ := doc.FindCourse(courseID)
		if c == nil {
			return util.ErrCourseNotFound
		}
		added = newLesson(l, in, len(c.Lessons))
		c.Lessons = append(c.Lessons, added)
		c.UpdatedAt = l.Now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// UpdateLesson 合并课时字段
func (r *CourseRepository) UpdateLesson(ctx context.Context, courseID, lessonID int64, patch model.LessonPatch) (*model.Lesson, error) {
	if err := r.validate.Struct(patch); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidLesson, err)
	}

	var updated model.Lesson
	_, err := r.Store.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		c, _ := doc.FindCourse(courseID)
		if c == nil {
			return util.ErrCourseNotFound
		}
		idx := c.LessonIndex(lessonID)
		if idx < 0 {
			return util.ErrLessonNotFound
		}
		lesson := &c.Lessons[idx]
		if patch.Title != nil {
			lesson.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Type != nil {
			lesson.Type = *patch.Type
		}
		if patch.Content != nil {
			lesson.Content = *patch.Content
		}
		if patch.Duration != nil {
			lesson.Duration = *patch.Duration
		}
		if patch.Description != nil {
			lesson.Description = *patch.Description
		}
		c.UpdatedAt = l.Now
		updated = *lesson
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteLesson 删除课时，返回是否删除
func (r *CourseRepository) DeleteLesson(ctx context.Context, courseID, lessonID int64) (bool, error) {
	removed := false
	_, err := r.Store.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		c, _ := doc.FindCourse(courseID)
		if c == nil {
			return util.ErrCourseNotFound
		}
		idx := c.LessonIndex(lessonID)
		if idx < 0 {
			return nil
		}
		c.Lessons = append(c.Lessons[:idx], c.Lessons[idx+1:]...)
		c.Renumber()
		c.UpdatedAt = l.Now
		removed = true
		return nil
	})
	return removed, err
}

type MoveDirection string

const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)

// ReorderLesson 与相邻课时交换位置，并将所有课时 Order 重写为下标+1
func (r *CourseRepository) ReorderLesson(ctx context.Context, courseID int64, index int, dir MoveDirection) ([]model.Lesson, error) {
	var target int
	switch dir {
	case MoveUp:
		target = index - 1
	case MoveDown:
		target = index + 1
	default:
		return nil, util.ErrInvalidDirection
	}

	var lessons []model.Lesson
	_, err := r.Store.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		c, _ := doc.FindCourse(courseID)
		if c == nil {
			return util.ErrCourseNotFound
		}
		if index < 0 || index >= len(c.Lessons) {
			return util.ErrLessonNotFound
		}
		if target < 0 || target >= len(c.Lessons) {
			return util.ErrMoveOutOfBounds
		}
		c.Lessons[index], c.Lessons[target] = c.Lessons[target], c.Lessons[index]
		c.Renumber()
		c.UpdatedAt = l.Now
		lessons = append([]model.Lesson(nil), c.Lessons...)
		return nil
	})
	return lessons, err
}

// AddResource 为课程添加学习资源，缺少协议的链接补全为 https://
func (r *CourseRepository) AddResource(ctx context.Context, courseID int64, in model.ResourceInput) (*model.Resource, error) {
	if err := r.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidResource, err)
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.URL) == "" {
		return nil, fmt.Errorf("%w: title and url are required", util.ErrInvalidResource)
	}

	var added model.Resource
	_, err := r.Store.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		c, _ := doc.FindCourse(courseID)
		if c == nil {
			return util.ErrCourseNotFound
		}
		typ := in.Type
		if !typ.Valid() {
			typ = model.ResourceLink
		}
		added = model.Resource{
			ID:    l.IDs.NextID(),
			Title: strings.TrimSpace(in.Title),
			URL:   NormalizeURL(in.URL),
			Type:  typ,
			Added: l.Now,
		}
		c.Resources = append(c.Resources, added)
		c.UpdatedAt = l.Now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// DeleteResource 删除课程资源
func (r *CourseRepository) DeleteResource(ctx context.Context, courseID, resourceID int64) (bool, error) {
	removed := false
	_, err := r.Store.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		c, _ := doc.FindCourse(courseID)
		if c == nil {
			return util.ErrCourseNotFound
		}
		for i := range c.Resources {
			if c.Resources[i].ID == resourceID {
				c.Resources = append(c.Resources[:i], c.Resources[i+1:]...)
				c.UpdatedAt = l.Now
				removed = true
				return nil
			}
		}
		return nil
	})
	return removed, err
}

// NormalizeURL 没有 http/https 前缀时补 https://
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(u), "http") {
		return u
	}
	return "https://" + u
}

func newLesson(l *model.RewardLedger, in model.LessonInput, position int) model.Lesson {
	duration := in.Duration
	if duration == 0 && in.Type == model.LessonArticle {
		duration = model.ReadingTime(in.Content)
	}
	order := in.Order
	if order <= 0 {
		order = position + 1
	}
	return model.Lesson{
		ID:          l.IDs.NextID(),
		Title:       strings.TrimSpace(in.Title),
		Type:        in.Type,
		Content:     in.Content,
		Duration:    duration,
		Order:       order,
		Description: in.Description,
		CreatedAt:   l.Now,
	}
}

func normalizeCourse(c *model.Course) error {
	if c.Title == "" || c.Category == "" {
		return fmt.Errorf("%w: title and category are required", util.ErrInvalidCourse)
	}
	if c.Difficulty == "" {
		c.Difficulty = model.Beginner
	}
	if c.Icon == "" {
		c.Icon = model.DefaultCourseIcon
	}
	if c.Color == "" {
		c.Color = model.DefaultCourseColor
	}
	return nil
}

// Duplicate 复制课程，标题追加 " (Copy)"，课时与资源重新分配 ID，不复制进度
func (r *CourseRepository) Duplicate(ctx context.Context, id int64) (*model.Course, error) {
	var copied model.Course
	_, err := r.Store.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		src, _ := doc.FindCourse(id)
		if src == nil {
			return util.ErrCourseNotFound
		}
		copied = *src
		copied.ID = l.IDs.NextID()
		copied.Title = src.Title + " (Copy)"
		copied.CreatedAt = l.Now
		copied.UpdatedAt = l.Now
		copied.Tags = append([]string{}, src.Tags...)
		copied.Lessons = make([]model.Lesson, len(src.Lessons))
		for i, lesson := range src.Lessons {
			lesson.ID = l.IDs.NextID()
			copied.Lessons[i] = lesson
		}
		copied.Resources = make([]model.Resource, len(src.Resources))
		for i, res := range src.Resources {
			res.ID = l.IDs.NextID()
			copied.Resources[i] = res
		}
		doc.Courses = append(doc.Courses, copied)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &copied, nil
}

// ResetProgress 清除课程的完成记录与笔记，课程本身保留
func (r *CourseRepository) ResetProgress(ctx context.Context, id int64) error {
	_, err := r.Store.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		if c, _ := doc.FindCourse(id); c == nil {
			return util.ErrCourseNotFound
		}
		delete(doc.Progress, id)
		delete(doc.CourseNotes, id)
		return nil
	})
	return err
}
