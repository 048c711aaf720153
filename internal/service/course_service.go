package service

import (
	"context"
	"encoding/json"
	"errors"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"regexp"
	"strings"
)

var unsafeFileChars = regexp.MustCompile(`[^a-z0-9]`)

type CourseService struct {
	Repo     *repository.CourseRepository
	Notifier *NotificationService
}

func NewCourseService(repo *repository.CourseRepository, notifier *NotificationService) *CourseService {
	return &CourseService{Repo: repo, Notifier: notifier}
}

// CourseDetail 课程详情页数据
type CourseDetail struct {
	repository.CourseView
	CompletedLessons []int64 `json:"completedLessons"`
	LastLessonIndex  int     `json:"lastLessonIndex"`
}

func (s *CourseService) List(ctx context.Context, query string, filters model.CourseFilters, sortKey repository.SortKey) []repository.CourseView {
	views := s.Repo.Search(ctx, query, filters)
	if sortKey == "" {
		return views
	}
	return repository.SortCourses(views, sortKey)
}

func (s *CourseService) Get(ctx context.Context, id int64) (*CourseDetail, error) {
	doc := s.Repo.Store.Load(ctx)
	c, _ := doc.FindCourse(id)
	if c == nil {
		return nil, util.ErrCourseNotFound
	}
	detail := &CourseDetail{
		CourseView:       repository.CourseView{Course: *c, Progress: doc.CourseProgressPercent(id)},
		CompletedLessons: []int64{},
	}
	if p, ok := doc.Progress[id]; ok {
		detail.CompletedLessons = append(detail.CompletedLessons, p.CompletedLessons...)
		detail.LastLessonIndex = p.LastLessonIndex
	}
	return detail, nil
}

// Create 创建课程
func (s *CourseService) Create(ctx context.Context, in model.CourseInput) (*model.Course, error) {
	course, _, err := s.Repo.Create(ctx, in)
	if err != nil {
		return nil, s.reportInput(ctx, err)
	}
	s.success(ctx, "Course created successfully!")
	return course, nil
}

func (s *CourseService) Update(ctx context.Context, id int64, patch model.CoursePatch) (*model.Course, error) {
	course, err := s.Repo.Update(ctx, id, patch)
	if err != nil {
		return nil, s.reportInput(ctx, err)
	}
	s.success(ctx, "Course updated successfully!")
	return course, nil
}

// Delete 删除课程，课程不存在时返回 ErrCourseNotFound
func (s *CourseService) Delete(ctx context.Context, id int64) error {
	removed, err := s.Repo.Delete(ctx, id)
	if err != nil {
		if s.Notifier != nil {
			s.Notifier.Error(ctx, "Failed to delete course")
		}
		return err
	}
	if !removed {
		return util.ErrCourseNotFound
	}
	s.success(ctx, "Course deleted successfully")
	return nil
}

func (s *CourseService) Duplicate(ctx context.Context, id int64) (*model.Course, error) {
	course, err := s.Repo.Duplicate(ctx, id)
	if err != nil {
		return nil, notifyFailure(ctx, s.Notifier, err)
	}
	s.success(ctx, "Course duplicated successfully!")
	return course, nil
}

// ExportCourse 单个课程的 JSON，文件名由标题生成
func (s *CourseService) ExportCourse(ctx context.Context, id int64) (*ExportFile, error) {
	course, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(course, "", "  ")
	if err != nil {
		return nil, err
	}
	name := unsafeFileChars.ReplaceAllString(strings.ToLower(course.Title), "_") + "_course" + util.ExportFileSuffix
	s.success(ctx, "Course exported successfully!")
	return &ExportFile{Filename: name, Data: data}, nil
}

func (s *CourseService) ResetProgress(ctx context.Context, id int64) error {
	if err := s.Repo.ResetProgress(ctx, id); err != nil {
		return notifyFailure(ctx, s.Notifier, err)
	}
	s.success(ctx, "Course progress reset")
	return nil
}

func (s *CourseService) AddLesson(ctx context.Context, courseID int64, in model.LessonInput) (*model.Lesson, error) {
	lesson, err := s.Repo.AddLesson(ctx, courseID, in)
	if err != nil {
		return nil, s.reportInput(ctx, err)
	}
	s.success(ctx, "Lesson added successfully!")
	return lesson, nil
}

func (s *CourseService) UpdateLesson(ctx context.Context, courseID, lessonID int64, patch model.LessonPatch) (*model.Lesson, error) {
	lesson, err := s.Repo.UpdateLesson(ctx, courseID, lessonID, patch)
	if err != nil {
		return nil, s.reportInput(ctx, err)
	}
	s.success(ctx, "Lesson updated")
	return lesson, nil
}

func (s *CourseService) DeleteLesson(ctx context.Context, courseID, lessonID int64) error {
	removed, err := s.Repo.DeleteLesson(ctx, courseID, lessonID)
	if err != nil {
		return notifyFailure(ctx, s.Notifier, err)
	}
	if !removed {
		return util.ErrLessonNotFound
	}
	s.success(ctx, "Lesson deleted")
	return nil
}

func (s *CourseService) ReorderLesson(ctx context.Context, courseID int64, index int, dir repository.MoveDirection) ([]model.Lesson, error) {
	lessons, err := s.Repo.ReorderLesson(ctx, courseID, index, dir)
	return lessons, notifyFailure(ctx, s.Notifier, err)
}

func (s *CourseService) AddResource(ctx context.Context, courseID int64, in model.ResourceInput) (*model.Resource, error) {
	res, err := s.Repo.AddResource(ctx, courseID, in)
	if err != nil {
		return nil, s.reportInput(ctx, err)
	}
	s.success(ctx, "Resource added!")
	return res, nil
}

func (s *CourseService) DeleteResource(ctx context.Context, courseID, resourceID int64) error {
	removed, err := s.Repo.DeleteResource(ctx, courseID, resourceID)
	if err != nil {
		return notifyFailure(ctx, s.Notifier, err)
	}
	if !removed {
		return util.ErrResourceNotFound
	}
	return nil
}

func (s *CourseService) Tags(ctx context.Context) []string {
	return s.Repo.AllTags(ctx)
}

func (s *CourseService) PopularTags(ctx context.Context, limit int) []repository.TagCount {
	return s.Repo.PopularTags(ctx, limit)
}

func (s *CourseService) Categories(ctx context.Context) []string {
	return s.Repo.Categories(ctx)
}

func (s *CourseService) success(ctx context.Context, message string) {
	if s.Notifier != nil {
		s.Notifier.Success(ctx, message)
	}
}

// reportInput 输入错误给出警告，存储错误给出错误提示
func (s *CourseService) reportInput(ctx context.Context, err error) error {
	if s.Notifier == nil {
		return err
	}
	switch {
	case errors.Is(err, util.ErrInvalidTag):
		s.Notifier.Warning(ctx, "Tags must be 2-20 characters")
	case errors.Is(err, util.ErrTooManyTags):
		s.Notifier.Warning(ctx, "Maximum 10 tags allowed")
	case errors.Is(err, util.ErrInvalidCourse), errors.Is(err, util.ErrInvalidLesson), errors.Is(err, util.ErrInvalidResource):
		s.Notifier.Error(ctx, "Please fill all required fields")
	case errors.Is(err, util.ErrCourseNotFound):
		s.Notifier.Error(ctx, "Course not found")
	default:
		return notifyFailure(ctx, s.Notifier, err)
	}
	return err
}
