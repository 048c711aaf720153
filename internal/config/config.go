package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Storage      StorageConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Mongo        MongoConfig
	Gamification GamificationConfig `mapstructure:"gamification"`
	Notification NotificationConfig `mapstructure:"notification"`
	Backup       BackupConfig       `mapstructure:"backup"`
	Content      ContentConfig      `mapstructure:"content"`
	Tracing      TracingConfig      `mapstructure:"tracing"`
	CORS         CORSConfig         `mapstructure:"cors"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ConfigPath string `mapstructure:"-"`
}

type ServerConfig struct {
	Port    string
	Mode    string
	LogFile string `mapstructure:"log_file"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

// StorageConfig 文档存储介质
type StorageConfig struct {
	Type       string `mapstructure:"type"`
	Key        string `mapstructure:"key"`
	LegacyKey  string `mapstructure:"legacy_key"`
	QuotaBytes int64  `mapstructure:"quota_bytes"`

	LocalPath string `mapstructure:"local_path"`

	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	MinioUseSSL   bool   `mapstructure:"minio_use_ssl"`

	OSSEndpoint  string `mapstructure:"oss_endpoint"`
	OSSAccessKey string `mapstructure:"oss_access_key"`
	OSSSecretKey string `mapstructure:"oss_secret_key"`
	OSSBucket    string `mapstructure:"oss_bucket"`

	SQLitePath string `mapstructure:"sqlite_path"`
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type GamificationConfig struct {
	LevelUpBonusCredited bool `mapstructure:"level_up_bonus_credited"`
}

type NotificationConfig struct {
	DismissSeconds int    `mapstructure:"dismiss_seconds"`
	AMQPURI        string `mapstructure:"amqp_uri"`
	Exchange       string `mapstructure:"exchange"`
}

// DismissAfter 通知自动消失时间
func (c NotificationConfig) DismissAfter() time.Duration {
	if c.DismissSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.DismissSeconds) * time.Second
}

type BackupConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Schedule  string `mapstructure:"schedule"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type ContentConfig struct {
	SeedDefaultCourses bool `mapstructure:"seed_default_courses"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

const (
	StorageMemory = "memory"
	StorageLocal  = "local"
	StorageRedis  = "redis"
	StorageMinio  = "minio"
	StorageOSS    = "oss"
	StorageSQLite = "sqlite"
	StorageMySQL  = "mysql"
	StorageMongo  = "mongo"

	DefaultStorageKey = "learnhub_data_v2"
	DefaultLegacyKey  = "learnhub_user"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.log_file", "logs/app.log")

	v.SetDefault("storage.type", StorageLocal)
	v.SetDefault("storage.key", DefaultStorageKey)
	v.SetDefault("storage.legacy_key", DefaultLegacyKey)
	v.SetDefault("storage.local_path", "data")
	v.SetDefault("storage.minio_bucket", "learnhub")
	v.SetDefault("storage.sqlite_path", "data/learnhub.db")

	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)

	v.SetDefault("mongo.database", "learnhub")
	v.SetDefault("mongo.collection", "documents")

	v.SetDefault("notification.dismiss_seconds", 5)
	v.SetDefault("notification.exchange", "learnhub.notifications")

	v.SetDefault("backup.schedule", "@daily")
	v.SetDefault("backup.key_prefix", "learnhub_backup")

	v.SetDefault("content.seed_default_courses", true)

	v.SetDefault("rate_limit.max_requests", 600)
	v.SetDefault("rate_limit.window_minutes", 1)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("LEARNHUB")
	v.AutomaticEnv()
	setDefaults(v)

	// Server
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.mode", "SERVER_MODE")

	// Storage
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.local_path", "STORAGE_LOCAL_PATH")
	v.BindEnv("storage.sqlite_path", "SQLITE_PATH")
	v.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	v.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	v.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")
	v.BindEnv("storage.oss_bucket", "OSS_BUCKET")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Database
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Mongo
	v.BindEnv("mongo.uri", "MONGO_URI")

	// Notification
	v.BindEnv("notification.amqp_uri", "AMQP_URI")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		// 没有配置文件时使用默认值 + 环境变量
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Storage.Type == StorageLocal {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}

// Default 只包含默认值的配置，不读取文件与环境变量
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate 校验必须成对出现的配置
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageMemory, StorageLocal, StorageRedis, StorageSQLite, StorageMySQL:
	case StorageMinio:
		if c.Storage.MinioEndpoint == "" {
			return fmt.Errorf("storage.minio_endpoint is required for storage type %q", c.Storage.Type)
		}
	case StorageOSS:
		if c.Storage.OSSEndpoint == "" || c.Storage.OSSBucket == "" {
			return fmt.Errorf("storage.oss_endpoint and storage.oss_bucket are required for storage type %q", c.Storage.Type)
		}
	case StorageMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("mongo.uri is required for storage type %q", c.Storage.Type)
		}
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("storage.key must not be empty")
	}
	if c.Storage.Key == c.Storage.LegacyKey {
		return fmt.Errorf("storage.key and storage.legacy_key must differ")
	}
	return nil
}
