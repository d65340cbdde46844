package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
	BackendMongo  = "mongo"
)

const (
	ReadFailureReturnEmpty = "return_empty"
	ReadFailurePropagate   = "propagate"
)

type AppInfo struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
}

type ServerConfig struct {
	Port                   string `yaml:"port"`
	CORSOrigins            string `yaml:"cors_origins"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type MySQLConfig struct {
	Address                string `yaml:"address"`
	Username               string `yaml:"username"`
	Password               string `yaml:"password"`
	Database               string `yaml:"database"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeSeconds int    `yaml:"conn_max_lifetime_seconds"`
}

type MongoConfig struct {
	URI            string `yaml:"uri"`
	Database       string `yaml:"database"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type StoreConfig struct {
	Backend       string       `yaml:"backend"`
	OnReadFailure string       `yaml:"on_read_failure"`
	SQLite        SQLiteConfig `yaml:"sqlite"`
	MySQL         MySQLConfig  `yaml:"mysql"`
	Mongo         MongoConfig  `yaml:"mongo"`
}

// ObjectStoreConfig points at the S3-compatible server holding model
// artifacts referenced as s3:// or minio:// paths.
type ObjectStoreConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
}

type ModelConfig struct {
	Path        string            `yaml:"path"`
	ObjectStore ObjectStoreConfig `yaml:"object_store"`
}

type AuthConfig struct {
	Secret         string `yaml:"secret"`
	Required       bool   `yaml:"required"`
	DefaultOwnerID uint   `yaml:"default_owner_id"`
}

type Config struct {
	App    AppInfo      `yaml:"app"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Store  StoreConfig  `yaml:"store"`
	Model  ModelConfig  `yaml:"model"`
	Auth   AuthConfig   `yaml:"auth"`
}

func Default() *Config {
	return &Config{
		App: AppInfo{Name: "EndoCare", Environment: "development"},
		Server: ServerConfig{
			Port:                   "8080",
			CORSOrigins:            "*",
			ShutdownTimeoutSeconds: 10,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 28,
		},
		Store: StoreConfig{
			Backend:       BackendSQLite,
			OnReadFailure: ReadFailureReturnEmpty,
			SQLite:        SQLiteConfig{Path: "data/endocare.db"},
			MySQL: MySQLConfig{
				Address:                "127.0.0.1:3306",
				Database:               "endocare",
				MaxOpenConns:           10,
				MaxIdleConns:           5,
				ConnMaxLifetimeSeconds: 300,
			},
			Mongo: MongoConfig{
				URI:            "mongodb://127.0.0.1:27017",
				Database:       "endocare",
				TimeoutSeconds: 10,
			},
		},
		Model: ModelConfig{Path: "models/flare_model.json"},
		Auth:  AuthConfig{DefaultOwnerID: 1},
	}
}

// Load reads the YAML file at path on top of the defaults and applies
// environment overrides. An empty path or a missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.App.Environment = getEnv("APP_ENV", cfg.App.Environment)
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Store.SQLite.Path = getEnv("DB_PATH", cfg.Store.SQLite.Path)
	cfg.Store.Backend = getEnv("STORE_BACKEND", cfg.Store.Backend)
	cfg.Store.OnReadFailure = getEnv("STORE_ON_READ_FAILURE", cfg.Store.OnReadFailure)
	cfg.Store.MySQL.Address = getEnv("MYSQL_ADDRESS", cfg.Store.MySQL.Address)
	cfg.Store.MySQL.Username = getEnv("MYSQL_USER", cfg.Store.MySQL.Username)
	cfg.Store.MySQL.Password = getEnv("MYSQL_PASSWORD", cfg.Store.MySQL.Password)
	cfg.Store.MySQL.Database = getEnv("MYSQL_DATABASE", cfg.Store.MySQL.Database)
	cfg.Store.Mongo.URI = getEnv("MONGO_URI", cfg.Store.Mongo.URI)
	cfg.Store.Mongo.Database = getEnv("MONGO_DATABASE", cfg.Store.Mongo.Database)
	cfg.Model.Path = getEnv("MODEL_PATH", cfg.Model.Path)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)
	cfg.Auth.Secret = getEnv("AUTH_SECRET", cfg.Auth.Secret)
	if raw := getEnv("AUTH_REQUIRED", ""); raw != "" {
		if required, err := strconv.ParseBool(raw); err == nil {
			cfg.Auth.Required = required
		}
	}
}

func (cfg *Config) Validate() error {
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	switch cfg.Store.Backend {
	case BackendSQLite:
		if strings.TrimSpace(cfg.Store.SQLite.Path) == "" {
			return errors.New("store.sqlite.path is required for the sqlite backend")
		}
	case BackendMySQL:
		if strings.TrimSpace(cfg.Store.MySQL.Address) == "" || strings.TrimSpace(cfg.Store.MySQL.Database) == "" {
			return errors.New("store.mysql.address and store.mysql.database are required for the mysql backend")
		}
	case BackendMongo:
		if strings.TrimSpace(cfg.Store.Mongo.URI) == "" || strings.TrimSpace(cfg.Store.Mongo.Database) == "" {
			return errors.New("store.mongo.uri and store.mongo.database are required for the mongo backend")
		}
	default:
		return fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}

	cfg.Store.OnReadFailure = strings.ToLower(strings.TrimSpace(cfg.Store.OnReadFailure))
	if cfg.Store.OnReadFailure != ReadFailureReturnEmpty && cfg.Store.OnReadFailure != ReadFailurePropagate {
		return fmt.Errorf("unsupported store.on_read_failure %q", cfg.Store.OnReadFailure)
	}

	if strings.TrimSpace(cfg.Model.Path) == "" {
		return errors.New("model.path is required")
	}
	if cfg.Auth.DefaultOwnerID == 0 {
		return errors.New("auth.default_owner_id must be positive")
	}
	if cfg.Auth.Required && strings.TrimSpace(cfg.Auth.Secret) == "" {
		return errors.New("auth.secret is required when auth.required is set")
	}
	if cfg.Server.ShutdownTimeoutSeconds <= 0 {
		cfg.Server.ShutdownTimeoutSeconds = 10
	}
	return nil
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
