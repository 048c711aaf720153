package repository

import (
	"context"
	"encoding/json"
	"errors"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/storage"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.March, 10, 9, 30, 0, 0, time.Local)

func newTestStore(t *testing.T, backend storage.Backend) *StateStore {
	t.Helper()
	if backend == nil {
		backend = storage.NewMemory(0)
	}
	ids := model.NewIDGenerator()
	ids.Now = func() time.Time { return testNow }
	s := NewStateStore(backend, config.Default(), ids)
	s.Now = func() time.Time { return testNow }
	return s
}

// flakyBackend 在指定操作上返回错误
type flakyBackend struct {
	*storage.Memory
	getErr error
	setErr error
}

func (f *flakyBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Memory.Get(ctx, key)
}

func (f *flakyBackend) Set(ctx context.Context, key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Memory.Set(ctx, key, value)
}

func TestLoadInitializesDefaultDocument(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory(0)
	s := newTestStore(t, mem)

	doc := s.Load(ctx)
	assert.Equal(t, "Learner", doc.User.Name)
	assert.Equal(t, 1, doc.User.Level)
	assert.Equal(t, 0, doc.User.XP)
	assert.Equal(t, 100, doc.User.MaxXP)
	assert.Equal(t, model.ThemeLight, doc.Theme)
	assert.Empty(t, doc.Courses)
	assert.NotNil(t, doc.Progress)
	assert.NotNil(t, doc.Achievements)

	raw, err := mem.Get(ctx, config.DefaultStorageKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"userCourses":[]`)
}

func TestLoadReinitializesUnreadableDocument(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory(0)
	require.NoError(t, mem.Set(ctx, config.DefaultStorageKey, []byte("{not json")))
	s := newTestStore(t, mem)

	doc := s.Load(ctx)
	assert.Equal(t, "Learner", doc.User.Name)

	kept, err := mem.Get(ctx, config.DefaultStorageKey+"_corrupt")
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(kept))
}

func TestLoadWithoutUserSection(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory(0)
	require.NoError(t, mem.Set(ctx, config.DefaultStorageKey, []byte(`{"userCourses":[{"id":1,"title":"x"}]}`)))
	s := newTestStore(t, mem)

	doc := s.Load(ctx)
	assert.Empty(t, doc.Courses)
}

func TestLoadReadFailureDoesNotOverwrite(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory(0)
	require.NoError(t, mem.Set(ctx, config.DefaultStorageKey, []byte(`{"user":{"name":"Ada","level":4,"xp":5,"maxXP":337}}`)))
	backend := &flakyBackend{Memory: mem, getErr: errors.New("connection refused")}
	s := newTestStore(t, backend)

	doc := s.Load(ctx)
	assert.Equal(t, "Learner", doc.User.Name)

	_, err := s.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		doc.User.Name = "Bob"
		return nil
	})
	assert.ErrorIs(t, err, util.ErrStorageFailure)

	raw, err := mem.Get(ctx, config.DefaultStorageKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Ada")
}

func TestSaveStampsLastUpdated(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	doc := s.Load(ctx)
	doc.LastUpdated = time.Time{}
	doc.User.Name = "Grace"

	require.NoError(t, s.Save(ctx, doc))
	assert.True(t, doc.LastUpdated.Equal(testNow))
	assert.Equal(t, "Grace", s.Load(ctx).User.Name)
}

func TestMutateErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	s.Load(ctx)

	boom := errors.New("boom")
	_, err := s.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		doc.User.Name = "Changed"
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "Learner", s.Load(ctx).User.Name)
}

func TestMutateNotifiesListenersAfterSave(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)

	var got *model.RewardLedger
	s.Subscribe(func(ctx context.Context, l *model.RewardLedger) {
		// 监听器在锁外执行，可以再次读取文档
		assert.Len(t, s.Load(ctx).Achievements, 1)
		got = l
	})

	_, err := s.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		doc.UnlockAchievement(l, model.TitleNoteTaker, model.AchievementNoteTaker, model.RewardNoteTaker)
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 25, got.XPGained)
	require.Len(t, got.Unlocked, 1)
	assert.Equal(t, "fas fa-sticky-note", got.Unlocked[0].Icon)
}

func TestMutateQuotaExceededKeepsPreviousState(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory(2048))
	s.Load(ctx)

	_, err := s.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		doc.CourseNotes[1] = map[int64]string{1: string(make([]byte, 4096))}
		return nil
	})
	assert.ErrorIs(t, err, storage.ErrQuotaExceeded)
	assert.Empty(t, s.Load(ctx).CourseNotes)
}

func TestMigrateLegacy(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory(0)
	legacy := `{
		"user": {"name": "Old Learner", "level": 2, "xp": 30, "maxXP": 150, "streak": 4, "lastLogin": null, "badges": ["streak"], "totalStudyTime": 600},
		"userCourses": [{"id": 1700000000000, "title": "Go", "category": "Programming", "lessons": [{"id": 1700000000001, "title": "Intro", "type": "video", "duration": "15"}]}],
		"progress": {"1700000000000": {"completedLessons": [1700000000001], "lastAccessed": "2024-03-09T10:00:00.000Z", "lastLessonIndex": 0}},
		"dailyGoal": {"target": 3, "completed": 1, "date": "Sat Mar 09 2024"}
	}`
	require.NoError(t, mem.Set(ctx, config.DefaultLegacyKey, []byte(legacy)))
	s := newTestStore(t, mem)

	migrated, err := s.MigrateLegacy(ctx)
	require.NoError(t, err)
	assert.True(t, migrated)

	_, err = mem.Get(ctx, config.DefaultLegacyKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	doc := s.Load(ctx)
	assert.Equal(t, "Old Learner", doc.User.Name)
	assert.Equal(t, 4, doc.User.Streak)
	require.Len(t, doc.Courses, 1)
	assert.Equal(t, model.Minutes(15), doc.Courses[0].Lessons[0].Duration)
	assert.Equal(t, 100, doc.CourseProgressPercent(1700000000000))
	assert.Empty(t, doc.Achievements)
	require.NotNil(t, doc.DailyGoal)
	assert.Equal(t, 9, doc.DailyGoal.Date.Day())

	// 迁移后新 ID 跳过旧数据
	assert.Greater(t, s.IDs.NextID(), int64(1700000000001))
}

func TestMigrateLegacyCorruptedLeavesKeys(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory(0)
	require.NoError(t, mem.Set(ctx, config.DefaultLegacyKey, []byte("{broken")))
	require.NoError(t, mem.Set(ctx, config.DefaultStorageKey, []byte(`{"user":{"name":"Keep"}}`)))
	s := newTestStore(t, mem)

	migrated, err := s.MigrateLegacy(ctx)
	assert.False(t, migrated)
	assert.ErrorIs(t, err, util.ErrLegacyCorrupted)

	raw, err := mem.Get(ctx, config.DefaultLegacyKey)
	require.NoError(t, err)
	assert.Equal(t, "{broken", string(raw))
	assert.Equal(t, "Keep", s.Load(ctx).User.Name)
}

func TestMigrateLegacyNothingToDo(t *testing.T) {
	s := newTestStore(t, nil)
	migrated, err := s.MigrateLegacy(context.Background())
	require.NoError(t, err)
	assert.False(t, migrated)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	s.Load(ctx)

	name, data, err := s.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, "learnhub-backup-2024-03-10.json", name)

	var sections map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &sections))
	for _, key := range []string{"user", "userCourses", "progress", "achievements", "theme"} {
		assert.Contains(t, sections, key)
	}

	name, data, err = s.ExportProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, "learnhub-progress-2024-03-10.json", name)
	sections = nil
	require.NoError(t, json.Unmarshal(data, &sections))
	assert.Contains(t, sections, "exportedAt")
	assert.Contains(t, sections, "studyHistory")
	assert.NotContains(t, sections, "userCourses")
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	_, err := s.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		doc.User.Name = "Round Trip"
		doc.Courses = append(doc.Courses, model.Course{ID: 42, Title: "Go", Category: "Programming"})
		return nil
	})
	require.NoError(t, err)
	_, data, err := s.Export(ctx)
	require.NoError(t, err)

	other := newTestStore(t, nil)
	require.NoError(t, other.Import(ctx, data))
	doc := other.Load(ctx)
	assert.Equal(t, "Round Trip", doc.User.Name)
	require.Len(t, doc.Courses, 1)
	assert.Equal(t, int64(42), doc.Courses[0].ID)
}

// 浏览器端导出的文档中，来自页面参数的课程 ID 是字符串
const browserExport = `{
  "user": {"name": "Ada", "level": 2, "xp": 40, "maxXP": 150, "streak": 3,
           "lastLogin": "2024-03-09T08:00:00.000Z", "badges": ["level-up"], "totalStudyTime": 600},
  "progress": {"1001": {"completedLessons": [1001001], "lastAccessed": "2024-03-09T08:10:00.000Z", "lastLessonIndex": 0}},
  "completedLessons": {},
  "courseNotes": {"1001": {"1001001": "closures capture variables"}},
  "recentCourses": ["1001"],
  "achievements": [],
  "theme": "dark",
  "userCourses": [{
    "id": 1001, "title": "JavaScript Basics", "category": "Programming", "difficulty": "beginner",
    "tags": ["javascript"], "createdAt": "2024-03-01T10:00:00.000Z",
    "lessons": [
      {"id": 1001001, "title": "Intro", "type": "video", "duration": 15},
      {"id": 1001002, "title": "Variables", "type": "article", "duration": "20"}
    ],
    "resources": []
  }],
  "studyHistory": [{"id": 1709971800000, "courseId": "1001", "lessonId": 1001001, "duration": 600,
                    "date": "2024-03-09T08:10:00.000Z"}],
  "comments": {"1001": [{"id": 1709971900000, "text": "Great intro", "author": "You",
                         "date": "2024-03-09T08:11:40.000Z", "courseId": "1001"}]},
  "resources": {},
  "dailyGoals": {},
  "dailyGoal": {"target": 3, "completed": 1, "date": "Sat Mar 09 2024"},
  "lastUpdated": "2024-03-09T08:11:40.000Z"
}`

func TestImportBrowserExportWithStringCourseIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)

	require.NoError(t, s.Import(ctx, []byte(browserExport)))

	doc := s.Load(ctx)
	assert.Equal(t, "Ada", doc.User.Name)
	assert.Equal(t, []int64{1001}, doc.RecentCourses)
	require.Len(t, doc.StudyHistory, 1)
	assert.Equal(t, int64(1001), doc.StudyHistory[0].CourseID)
	assert.Equal(t, int64(1001001), doc.StudyHistory[0].LessonID)
	require.Len(t, doc.Comments[1001], 1)
	assert.Equal(t, int64(1001), doc.Comments[1001][0].CourseID)
	assert.Equal(t, 50, doc.CourseProgressPercent(1001))
	assert.Equal(t, "closures capture variables", doc.CourseNotes[1001][1001001])

	// 重新导出后 ID 统一为数字
	_, data, err := s.Export(ctx)
	require.NoError(t, err)
	var exported struct {
		RecentCourses []interface{} `json:"recentCourses"`
	}
	require.NoError(t, json.Unmarshal(data, &exported))
	assert.Equal(t, []interface{}{float64(1001)}, exported.RecentCourses)
}

func TestMigrateLegacyBrowserDocument(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory(0)
	require.NoError(t, mem.Set(ctx, config.DefaultLegacyKey, []byte(browserExport)))
	s := newTestStore(t, mem)

	migrated, err := s.MigrateLegacy(ctx)
	require.NoError(t, err)
	assert.True(t, migrated)
	assert.Equal(t, []int64{1001}, s.Load(ctx).RecentCourses)
}

func TestImportRejectsIncompleteData(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	_, err := s.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		doc.User.Name = "Before"
		return nil
	})
	require.NoError(t, err)

	cases := map[string]string{
		"not json":         "{oops",
		"missing courses":  `{"user":{"name":"After"}}`,
		"null user":        `{"user":null,"userCourses":[]}`,
		"wrong field type": `{"user":{"name":"After"},"userCourses":"nope"}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			err := s.Import(ctx, []byte(payload))
			assert.ErrorIs(t, err, util.ErrInvalidImport)
			assert.Equal(t, "Before", s.Load(ctx).User.Name)
		})
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	_, err := s.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		doc.User.XP = 50
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, s.Clear(ctx))
	assert.Equal(t, 0, s.Load(ctx).User.XP)
}

func TestCheckIntegrity(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory(0)
	s := newTestStore(t, mem)

	report := s.CheckIntegrity(ctx)
	assert.False(t, report.Valid)

	s.Load(ctx)
	report = s.CheckIntegrity(ctx)
	assert.True(t, report.Valid)
	assert.Empty(t, report.Missing)

	require.NoError(t, mem.Set(ctx, config.DefaultStorageKey, []byte(`{"user":{},"userCourses":[]}`)))
	report = s.CheckIntegrity(ctx)
	assert.False(t, report.Valid)
	assert.ElementsMatch(t, []string{"progress", "achievements"}, report.Missing)
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory(0)
	s := newTestStore(t, mem)
	s.Load(ctx)

	n, err := s.Snapshot(ctx, "learnhub_backup_2024-03-10")
	require.NoError(t, err)
	assert.Positive(t, n)

	original, _ := mem.Get(ctx, config.DefaultStorageKey)
	copied, _ := mem.Get(ctx, "learnhub_backup_2024-03-10")
	assert.Equal(t, original, copied)
}
