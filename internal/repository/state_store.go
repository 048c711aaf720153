package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"
	"learnhub_backend/pkg/storage"
	"learnhub_backend/pkg/tracing"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// RewardFunc 变更提交成功后接收本次产生的奖励
type RewardFunc func(ctx context.Context, ledger *model.RewardLedger)

// StateStore 持有唯一的持久化文档。
// 所有写操作都经过 Mutate：加锁、读取、修改、保存，保证同一时间只有一个读改写在进行。
type StateStore struct {
	Backend   storage.Backend
	Key       string
	LegacyKey string
	IDs       *model.IDGenerator
	Rules     model.RewardRules
	Now       func() time.Time

	mu        sync.Mutex
	listeners []RewardFunc
}

// NewStateStore 创建文档仓库
func NewStateStore(backend storage.Backend, cfg *config.Config, ids *model.IDGenerator) *StateStore {
	key := cfg.Storage.Key
	if key == "" {
		key = config.DefaultStorageKey
	}
	legacy := cfg.Storage.LegacyKey
	if legacy == "" {
		legacy = config.DefaultLegacyKey
	}
	if ids == nil {
		ids = model.NewIDGenerator()
	}
	return &StateStore{
		Backend:   backend,
		Key:       key,
		LegacyKey: legacy,
		IDs:       ids,
		Rules:     model.RewardRules{LevelUpBonusCredited: cfg.Gamification.LevelUpBonusCredited},
		Now:       time.Now,
	}
}

// Subscribe 注册奖励监听
func (s *StateStore) Subscribe(fn RewardFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Load 读取文档，从不返回错误。
// 不存在、无法解析或缺少 user 时写入并返回默认文档；介质读取失败时只返回默认文档，不覆盖已有数据。
func (s *StateStore) Load(ctx context.Context) *model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load(ctx)
	if err != nil {
		logger.Log.Warn("Storage unavailable, using default document", zap.Error(err))
	}
	return doc
}

// Save 整体保存文档并更新 lastUpdated
func (s *StateStore) Save(ctx context.Context, doc *model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, doc)
}

// Mutate 在锁内完成一次读改写。fn 返回错误时不写入任何内容。
// 奖励监听在释放锁之后调用。
func (s *StateStore) Mutate(ctx context.Context, fn func(doc *model.Document, ledger *model.RewardLedger) error) (*model.RewardLedger, error) {
	ledger, listeners, err := s.mutateLocked(ctx, fn)
	if err != nil {
		return nil, err
	}
	if !ledger.Empty() {
		for _, notify := range listeners {
			notify(ctx, ledger)
		}
	}
	return ledger, nil
}

func (s *StateStore) mutateLocked(ctx context.Context, fn func(*model.Document, *model.RewardLedger) error) (_ *model.RewardLedger, _ []RewardFunc, err error) {
	ctx, span := tracing.StartSpan(ctx, "store.mutate", attribute.String("store.backend", s.Backend.Name()))
	defer func() { tracing.EndSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	ledger := model.NewRewardLedger(s.Now(), s.IDs, s.Rules)
	if err := fn(doc, ledger); err != nil {
		return nil, nil, err
	}
	if err := s.save(ctx, doc); err != nil {
		return nil, nil, err
	}
	return ledger, append([]RewardFunc(nil), s.listeners...), nil
}

func (s *StateStore) load(ctx context.Context) (*model.Document, error) {
	raw, err := s.Backend.Get(ctx, s.Key)
	if errors.Is(err, storage.ErrNotFound) {
		return s.initialize(ctx), nil
	}
	if err != nil {
		return model.NewDocument(s.Now()), fmt.Errorf("%w: %v", util.ErrStorageFailure, err)
	}

	doc, err := decodeDocument(raw)
	if err != nil {
		logger.Log.Error("Stored document is unreadable, reinitializing", zap.Error(err))
		// 保留原始内容，便于人工恢复
		if err := s.Backend.Set(ctx, s.Key+"_corrupt", raw); err != nil {
			logger.Log.Warn("Failed to keep corrupt document", zap.Error(err))
		}
		return s.initialize(ctx), nil
	}
	s.IDs.Observe(doc.MaxID())
	return doc, nil
}

func (s *StateStore) initialize(ctx context.Context) *model.Document {
	doc := model.NewDocument(s.Now())
	if err := s.save(ctx, doc); err != nil {
		logger.Log.Error("Failed to persist default document", zap.Error(err))
	}
	return doc
}

func (s *StateStore) save(ctx context.Context, doc *model.Document) error {
	doc.LastUpdated = s.Now()
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := s.Backend.Set(ctx, s.Key, data); err != nil {
		return fmt.Errorf("%w: save document: %w", util.ErrStorageFailure, err)
	}
	return nil
}

// decodeDocument 解析文档，缺少 user 视为无效
func decodeDocument(raw []byte) (*model.Document, error) {
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(raw, &sections); err != nil {
		return nil, err
	}
	if !present(sections, "user") {
		return nil, errors.New("document has no user section")
	}
	var doc model.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	doc.Normalize()
	return &doc, nil
}

func present(sections map[string]json.RawMessage, key string) bool {
	v, ok := sections[key]
	return ok && len(v) > 0 && !bytes.Equal(v, []byte("null"))
}

// MigrateLegacy 将旧版本键下的数据迁移到当前键，并删除旧键。
// 旧数据无法解析时两个键都保持不变。
func (s *StateStore) MigrateLegacy(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.Backend.Get(ctx, s.LegacyKey)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", util.ErrStorageFailure, err)
	}

	var legacy model.Document
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return false, fmt.Errorf("%w: %v", util.ErrLegacyCorrupted, err)
	}

	doc := model.NewDocument(s.Now())
	var sections map[string]json.RawMessage
	_ = json.Unmarshal(raw, &sections)
	if present(sections, "user") {
		doc.User = legacy.User
	}
	if legacy.Progress != nil {
		doc.Progress = legacy.Progress
	}
	if legacy.CourseNotes != nil {
		doc.CourseNotes = legacy.CourseNotes
	}
	if legacy.RecentCourses != nil {
		doc.RecentCourses = legacy.RecentCourses
	}
	if legacy.Achievements != nil {
		doc.Achievements = legacy.Achievements
	}
	if legacy.Theme != "" {
		doc.Theme = legacy.Theme
	}
	if legacy.Courses != nil {
		doc.Courses = legacy.Courses
	}
	if legacy.StudyHistory != nil {
		doc.StudyHistory = legacy.StudyHistory
	}
	if legacy.Comments != nil {
		doc.Comments = legacy.Comments
	}
	doc.DailyGoal = legacy.DailyGoal
	doc.Normalize()

	if err := s.save(ctx, doc); err != nil {
		return false, err
	}
	if err := s.Backend.Remove(ctx, s.LegacyKey); err != nil {
		logger.Log.Warn("Failed to remove legacy key", zap.String("key", s.LegacyKey), zap.Error(err))
	}
	s.IDs.Observe(doc.MaxID())
	logger.Log.Info("Migrated legacy document", zap.String("from", s.LegacyKey), zap.String("to", s.Key))
	return true, nil
}

// ProgressExport 仅包含学习进度的导出格式
type ProgressExport struct {
	User         model.User                      `json:"user"`
	Progress     map[int64]*model.CourseProgress `json:"progress"`
	Achievements []model.Achievement             `json:"achievements"`
	StudyHistory []model.StudySession            `json:"studyHistory"`
	ExportedAt   time.Time                       `json:"exportedAt"`
}

// Export 导出完整文档，返回建议的文件名
func (s *StateStore) Export(ctx context.Context) (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load(ctx)
	if err != nil {
		return "", nil, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", nil, err
	}
	return s.exportName(util.BackupFilePrefix), data, nil
}

// ExportProgress 导出进度子集
func (s *StateStore) ExportProgress(ctx context.Context) (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load(ctx)
	if err != nil {
		return "", nil, err
	}
	data, err := json.MarshalIndent(ProgressExport{
		User:         doc.User,
		Progress:     doc.Progress,
		Achievements: doc.Achievements,
		StudyHistory: doc.StudyHistory,
		ExportedAt:   s.Now(),
	}, "", "  ")
	if err != nil {
		return "", nil, err
	}
	return s.exportName(util.ProgressFilePrefix), data, nil
}

func (s *StateStore) exportName(prefix string) string {
	return prefix + s.Now().Format(util.DateFormat) + util.ExportFileSuffix
}

// Import 用导入的数据替换整个文档，必须同时包含 user 与 userCourses。
// 任何失败都不改变已保存的状态。
func (s *StateStore) Import(ctx context.Context, data []byte) error {
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return fmt.Errorf("%w: %v", util.ErrInvalidImport, err)
	}
	if !present(sections, "user") || !present(sections, "userCourses") {
		return fmt.Errorf("%w: user and userCourses are required", util.ErrInvalidImport)
	}
	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", util.ErrInvalidImport, err)
	}
	doc.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(ctx, &doc); err != nil {
		return err
	}
	s.IDs.Observe(doc.MaxID())
	return nil
}

// Clear 删除文档并恢复默认值
func (s *StateStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Backend.Remove(ctx, s.Key); err != nil {
		return fmt.Errorf("%w: %v", util.ErrStorageFailure, err)
	}
	return s.save(ctx, model.NewDocument(s.Now()))
}

// IntegrityReport 存储文档的完整性检查结果
type IntegrityReport struct {
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing,omitempty"`
	Error   string   `json:"error,omitempty"`
}

var requiredSections = []string{"user", "userCourses", "progress", "achievements"}

// CheckIntegrity 检查原始文档是否包含全部必需部分
func (s *StateStore) CheckIntegrity(ctx context.Context) IntegrityReport {
	s.mu.Lock()
	raw, err := s.Backend.Get(ctx, s.Key)
	s.mu.Unlock()
	if err != nil {
		return IntegrityReport{Valid: false, Error: err.Error()}
	}

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(raw, &sections); err != nil {
		return IntegrityReport{Valid: false, Error: err.Error()}
	}
	report := IntegrityReport{Valid: true}
	for _, key := range requiredSections {
		if !present(sections, key) {
			report.Valid = false
			report.Missing = append(report.Missing, key)
		}
	}
	return report
}

// Snapshot 将当前文档原样复制到 target 键
func (s *StateStore) Snapshot(ctx context.Context, target string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := s.Backend.Get(ctx, s.Key)
	if err != nil {
		return 0, err
	}
	if err := s.Backend.Set(ctx, target, raw); err != nil {
		return 0, err
	}
	return len(raw), nil
}
