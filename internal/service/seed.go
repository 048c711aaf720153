package service

import (
	"context"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/pkg/logger"

	"go.uber.org/zap"
)

// DefaultCourses 首次启动时提供的示例课程
func DefaultCourses() []model.CourseInput {
	return []model.CourseInput{
		{
			Title:       "JavaScript Basics",
			Description: "Learn the fundamentals of JavaScript programming",
			Category:    "Programming",
			Difficulty:  model.Beginner,
			Icon:        "fab fa-js",
			Color:       "#f0db4f",
			Tags:        []string{"javascript", "programming", "web", "beginner"},
			Lessons: []model.LessonInput{
				{
					Title:       "Introduction to JavaScript",
					Type:        model.LessonVideo,
					Content:     "PkZNo7MFNFg",
					Duration:    15,
					Order:       1,
					Description: "What is JavaScript and why it's important",
				},
				{
					Title:       "Variables and Data Types",
					Type:        model.LessonArticle,
					Content:     "Learn about variables, strings, numbers, booleans, and other data types in JavaScript.",
					Duration:    20,
					Order:       2,
					Description: "Understanding JavaScript data types",
				},
			},
		},
	}
}

// SeedDefaultCourses 课程列表为空时写入示例课程，返回创建数量
func SeedDefaultCourses(ctx context.Context, repo *repository.CourseRepository) (int, error) {
	if len(repo.List(ctx)) > 0 {
		return 0, nil
	}
	created := 0
	for _, in := range DefaultCourses() {
		if _, _, err := repo.Create(ctx, in); err != nil {
			return created, err
		}
		created++
	}
	logger.Log.Info("Loaded default courses", zap.Int("count", created))
	return created, nil
}
