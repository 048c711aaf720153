package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	BackupFilePrefix   = "learnhub-backup-"
	ProgressFilePrefix = "learnhub-progress-"
	ExportFileSuffix   = ".json"
	MimeJSON           = "application/json"
)

const (
	DefaultRecentProgressLimit = 3
	DefaultRecentSessionsLimit = 10
	DefaultPopularTagsLimit    = 20
	DefaultStudyChartDays      = 7
	MaxDailyGoalTarget         = 10
)
