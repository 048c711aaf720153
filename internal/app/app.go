package app

import (
	"context"
	"errors"
	"fmt"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/controller"
	"learnhub_backend/internal/jobs"
	"learnhub_backend/internal/middleware"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/service"
	"learnhub_backend/pkg/configwatcher"
	"learnhub_backend/pkg/event"
	"learnhub_backend/pkg/logger"
	"learnhub_backend/pkg/monitoring"
	"learnhub_backend/pkg/security"
	"learnhub_backend/pkg/storage"
	"learnhub_backend/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

type App struct {
	Config    *config.Config
	Router    *gin.Engine
	Backend   storage.Backend
	Store     *repository.StateStore
	Publisher event.Publisher

	repos           *repositories
	services        *services
	scheduler       *cron.Cron
	tracer          *sdktrace.TracerProvider
	lifetime        context.Context
	cancel          context.CancelFunc
	cfgMu           sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	store  *repository.StateStore
	course *repository.CourseRepository
}

type services struct {
	notification *service.NotificationService
	gamification *service.GamificationService
	progress     *service.ProgressService
	course       *service.CourseService
	note         *service.NoteService
	dashboard    *service.DashboardService
	data         *service.DataService
	timer        *service.StudyTimer
}

type controllers struct {
	course       *controller.CourseController
	progress     *controller.ProgressController
	note         *controller.NoteController
	gamification *controller.GamificationController
	dashboard    *controller.DashboardController
	data         *controller.DataController
	notification *controller.NotificationController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.cfgMu.Lock()
	defer a.cfgMu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	a.cfgMu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.cfgMu.Unlock()
	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(backend storage.Backend) *repositories {
	store := repository.NewStateStore(backend, a.Config, nil)
	return &repositories{
		store:  store,
		course: repository.NewCourseRepository(store),
	}
}

func (a *App) initServices(r *repositories, publisher event.Publisher) *services {
	notifier := service.NewNotificationService(a.Config.Notification.DismissAfter(), publisher)
	gamification := service.NewGamificationService(r.store, notifier)
	progress := service.NewProgressService(r.store, notifier)
	return &services{
		notification: notifier,
		gamification: gamification,
		progress:     progress,
		course:       service.NewCourseService(r.course, notifier),
		note:         service.NewNoteService(r.store, notifier),
		dashboard:    service.NewDashboardService(r.store, r.course, progress, notifier),
		data:         service.NewDataService(r.store, notifier),
		timer:        service.NewStudyTimer(gamification),
	}
}

func (a *App) initControllers(s *services, r *repositories) *controllers {
	return &controllers{
		course:       controller.NewCourseController(s.course, s.progress),
		progress:     controller.NewProgressController(s.progress),
		note:         controller.NewNoteController(s.note),
		gamification: controller.NewGamificationController(s.gamification, s.timer),
		dashboard:    controller.NewDashboardController(s.dashboard),
		data:         controller.NewDataController(s.data),
		notification: controller.NewNotificationController(s.notification),
		health:       controller.NewHealthController(r.store.Backend, r.store.Key),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if cfg.RateLimit.MaxRequests > 0 && window > 0 {
		router.Use(security.RateLimiter(a.lifetime, cfg.RateLimit.MaxRequests, window))
	}

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// prepareStore 迁移旧数据并在首次启动时写入示例课程
func (a *App) prepareStore(ctx context.Context, r *repositories) {
	migrated, err := r.store.MigrateLegacy(ctx)
	if err != nil {
		logger.Log.Error("Legacy data migration failed", zap.Error(err))
	} else if migrated {
		logger.Log.Info("Legacy data migrated", zap.String("from", r.store.LegacyKey), zap.String("to", r.store.Key))
	}

	if !a.Config.Content.SeedDefaultCourses {
		return
	}
	n, err := service.SeedDefaultCourses(ctx, r.course)
	if err != nil {
		logger.Log.Error("Failed to seed default courses", zap.Error(err))
		return
	}
	if n > 0 {
		logger.Log.Info("Default courses seeded", zap.Int("count", n))
	}
}

func (a *App) startBackgroundTasks(r *repositories) error {
	if a.Config.Backup.Enabled {
		a.scheduler = cron.New()
		job := jobs.NewBackupJob(r.store, a.Config.Backup.KeyPrefix)
		if _, err := jobs.Schedule(a.scheduler, a.Config.Backup.Schedule, job); err != nil {
			return fmt.Errorf("schedule backup: %w", err)
		}
		a.scheduler.Start()
		logger.Log.Info("Backup job scheduled", zap.String("schedule", a.Config.Backup.Schedule))
	}

	if a.Config.ConfigPath != "" {
		go func() {
			if err := configwatcher.WatchConfig(a.lifetime, a.Config.ConfigPath, a.applyConfig); err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}
	return nil
}

// NewApp 组装存储、服务与路由；任何基础设施初始化失败都直接返回错误
func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(ginMode(cfg.Server.Mode))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	publisher, err := event.NewEventPublisher(cfg.Notification.AMQPURI, cfg.Notification.Exchange)
	if err != nil {
		// 通知推送不是必需的
		logger.Log.Warn("AMQP unavailable, notification publishing disabled", zap.Error(err))
		publisher, _ = event.NewEventPublisher("", cfg.Notification.Exchange)
	}

	app, err := newApp(ctx, cfg, backend, publisher)
	if err != nil {
		backend.Close()
		publisher.Close()
		return nil, err
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	if err := app.startBackgroundTasks(app.repos); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// newApp 不启动任何后台任务，测试直接使用
func newApp(ctx context.Context, cfg *config.Config, backend storage.Backend, publisher event.Publisher) (*App, error) {
	app := &App{
		Config:    cfg,
		Backend:   backend,
		Publisher: publisher,
	}
	app.lifetime, app.cancel = context.WithCancel(context.Background())

	app.repos = app.initRepositories(backend)
	app.Store = app.repos.store
	app.services = app.initServices(app.repos, publisher)
	ctrls := app.initControllers(app.services, app.repos)

	app.prepareStore(ctx, app.repos)

	app.RegisterConfigCallback(func(c *config.Config) {
		logger.SetMode(c.Server.Mode)
		app.services.notification.SetDismissAfter(c.Notification.DismissAfter())
	})

	// 监控初始化
	monitoring.Init()

	router := gin.New()
	app.Router = router
	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, ctrls, app.services)

	return app, nil
}

func ginMode(mode string) string {
	switch mode {
	case gin.ReleaseMode, gin.TestMode:
		return mode
	default:
		return gin.DebugMode
	}
}

// Close 停止后台任务并释放存储与消息连接
func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.scheduler != nil {
		<-a.scheduler.Stop().Done()
	}
	if a.services != nil {
		a.services.timer.Pause()
	}
	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
		cancel()
	}
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			logger.Log.Warn("Failed to close publisher", zap.Error(err))
		}
	}
	if a.Backend != nil {
		if err := a.Backend.Close(); err != nil {
			logger.Log.Warn("Failed to close storage", zap.Error(err))
		}
	}
}

func (a *App) Run() error {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	errCh := make(chan error, 1)
	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		a.Close()
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(ctx)
	a.Close()
	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Log.Info("Server exiting")
	_ = logger.Log.Sync()
	return nil
}
