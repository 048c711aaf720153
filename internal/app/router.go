package app

import (
	"learnhub_backend/internal/middleware"
	"learnhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services) {
	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	api := router.Group("/api")
	api.Use(middleware.ActivityMiddleware(s.gamification, nil))
	{
		a.registerCourseRoutes(api, c)
		a.registerLearningRoutes(api, c)
		a.registerGamificationRoutes(api, c)
		a.registerDashboardRoutes(api, c)
		a.registerDataRoutes(api, c)
	}
}

func (a *App) registerCourseRoutes(api *gin.RouterGroup, c *controllers) {
	api.GET("/tags", c.course.GetTags)
	api.GET("/categories", c.course.GetCategories)

	courses := api.Group("/courses")
	{
		courses.GET("", c.course.ListCourses)
		courses.POST("", c.course.CreateCourse)
		courses.GET("/:id", c.course.GetCourse)
		courses.PUT("/:id", c.course.UpdateCourse)
		courses.DELETE("/:id", c.course.DeleteCourse)
		courses.POST("/:id/duplicate", c.course.DuplicateCourse)
		courses.GET("/:id/export", c.course.ExportCourse)
		courses.DELETE("/:id/progress", c.course.ResetProgress)
		courses.GET("/:id/stats", c.course.GetCourseStats)

		courses.POST("/:id/lessons", c.course.AddLesson)
		courses.POST("/:id/lesson-order", c.course.ReorderLesson)
		courses.PUT("/:id/lessons/:lessonId", c.course.UpdateLesson)
		courses.DELETE("/:id/lessons/:lessonId", c.course.DeleteLesson)

		courses.POST("/:id/resources", c.course.AddResource)
		courses.DELETE("/:id/resources/:resourceId", c.course.DeleteResource)
	}
}

func (a *App) registerLearningRoutes(api *gin.RouterGroup, c *controllers) {
	courses := api.Group("/courses/:id")
	{
		courses.GET("/progress", c.progress.GetCompletedLessons)
		courses.PUT("/progress/last-accessed", c.progress.SaveLastAccessed)
		courses.POST("/lessons/:lessonId/complete", c.progress.CompleteLesson)

		courses.GET("/lessons/:lessonId/notes", c.note.GetNotes)
		courses.PUT("/lessons/:lessonId/notes", c.note.SaveNotes)
		courses.DELETE("/lessons/:lessonId/notes", c.note.ClearNotes)

		courses.GET("/comments", c.note.GetComments)
		courses.POST("/comments", c.note.PostComment)
	}

	progress := api.Group("/progress")
	{
		progress.GET("/recent", c.progress.GetRecentProgress)
		progress.GET("/stats", c.progress.GetStats)
		progress.GET("/study-time", c.progress.GetDailyStudyTime)
	}
}

func (a *App) registerGamificationRoutes(api *gin.RouterGroup, c *controllers) {
	api.GET("/profile", c.gamification.GetProfile)
	api.POST("/profile/xp", c.gamification.AddXP)
	api.POST("/streak/check-in", c.gamification.CheckIn)

	api.GET("/achievements", c.gamification.GetAchievements)
	api.POST("/achievements", c.gamification.UnlockAchievement)

	api.GET("/study-sessions", c.gamification.GetStudySessions)
	api.POST("/study-sessions", c.gamification.RecordStudySession)

	timer := api.Group("/timer")
	{
		timer.GET("", c.gamification.TimerStatus)
		timer.POST("/start", c.gamification.StartTimer)
		timer.POST("/pause", c.gamification.PauseTimer)
		timer.POST("/stop", c.gamification.StopTimer)
	}

	api.GET("/notifications", c.notification.List)
	api.DELETE("/notifications/:id", c.notification.Dismiss)
}

func (a *App) registerDashboardRoutes(api *gin.RouterGroup, c *controllers) {
	api.GET("/dashboard", c.dashboard.GetDashboard)
	api.GET("/dashboard/chart", c.dashboard.GetStudyChart)
	api.GET("/dashboard/my-courses", c.dashboard.GetMyCoursesStats)

	goal := api.Group("/goal")
	{
		goal.GET("", c.dashboard.GetDailyGoal)
		goal.PUT("", c.dashboard.SetDailyGoal)
		goal.POST("/progress", c.dashboard.MarkGoalProgress)
	}

	theme := api.Group("/theme")
	{
		theme.GET("", c.dashboard.GetTheme)
		theme.PUT("", c.dashboard.SetTheme)
		theme.POST("/toggle", c.dashboard.ToggleTheme)
	}
}

func (a *App) registerDataRoutes(api *gin.RouterGroup, c *controllers) {
	data := api.Group("/data")
	{
		data.GET("/export", c.data.Export)
		data.GET("/export/progress", c.data.ExportProgress)
		data.POST("/import", c.data.Import)
		data.DELETE("", c.data.Clear)
		data.GET("/integrity", c.data.Integrity)
	}
}
