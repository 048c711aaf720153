package util

import "errors"

var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrInvalidCourse      = errors.New("invalid course")
	ErrInvalidLesson      = errors.New("invalid lesson")
	ErrInvalidTag         = errors.New("invalid tag")
	ErrTooManyTags        = errors.New("a course can have at most 10 tags")
	ErrInvalidImport      = errors.New("invalid import file")
	ErrInvalidResource    = errors.New("invalid resource")
	ErrResourceNotFound   = errors.New("resource not found")
	ErrEmptyComment       = errors.New("comment text is required")
	ErrInvalidGoal        = errors.New("daily goal must be between 1 and 10 lessons")
	ErrTimerNotRunning    = errors.New("study timer is not running")
	ErrStorageFailure     = errors.New("storage failure")
	ErrLegacyCorrupted    = errors.New("legacy data is corrupted")
	ErrMoveOutOfBounds    = errors.New("lesson cannot be moved further")
	ErrInvalidDirection   = errors.New("direction must be up or down")
	ErrInvalidTheme       = errors.New("theme must be light or dark")
	ErrInvalidAchievement = errors.New("unknown achievement type")
)
