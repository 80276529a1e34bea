// Package config loads process settings from the environment, an optional
// .env file and an optional config.yaml, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	Env    string       `mapstructure:"env"`
	Log    LogConfig    `mapstructure:"log"`
	Server ServerConfig `mapstructure:"server"`
	DB     DBConfig     `mapstructure:"db"`
	Data   DataConfig   `mapstructure:"data"`
	Minio  MinioConfig  `mapstructure:"minio"`
	JWT    JWTConfig    `mapstructure:"jwt"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	BodyLimit       int           `mapstructure:"body_limit"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DBConfig selects the database. Driver "sqlite" uses Path; "postgres" uses
// the host/user/password/name/port fields.
type DBConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	Port            string        `mapstructure:"port"`
	SSLMode         string        `mapstructure:"sslmode"`
	ConnectAttempts uint          `mapstructure:"connect_attempts"`
	ConnectDelay    time.Duration `mapstructure:"connect_delay"`
}

// DataConfig locates the CSV exports. Source is "dir" (DirPath/Subdir on
// disk) or "minio" (the bucket in MinioConfig).
type DataConfig struct {
	DirPath string `mapstructure:"dir_path"`
	Subdir  string `mapstructure:"subdir"`
	Source  string `mapstructure:"source"`
}

func (d DataConfig) Dir() string {
	return filepath.Join(d.DirPath, d.Subdir)
}

type MinioConfig struct {
	InternalEndpoint string `mapstructure:"internal_endpoint"`
	AccessKey        string `mapstructure:"access_key"`
	SecretKey        string `mapstructure:"secret_key"`
	Bucket           string `mapstructure:"bucket"`
	Prefix           string `mapstructure:"prefix"`
	UseSSL           bool   `mapstructure:"use_ssl"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

var defaults = map[string]any{
	"env":                     "development",
	"log.level":               "info",
	"server.port":             "8000",
	"server.cors_origins":     []string{"http://localhost:5173"},
	"server.body_limit":       4 * 1024 * 1024,
	"server.shutdown_timeout": 30 * time.Second,
	"db.driver":               "sqlite",
	"db.path":                 "catalog.db",
	"db.host":                 "localhost",
	"db.user":                 "",
	"db.password":             "",
	"db.name":                 "",
	"db.port":                 "5432",
	"db.sslmode":              "disable",
	"db.connect_attempts":     10,
	"db.connect_delay":        2 * time.Second,
	"data.dir_path":           "data",
	"data.subdir":             "youtubers_programacio",
	"data.source":             "dir",
	"minio.internal_endpoint": "",
	"minio.access_key":        "",
	"minio.secret_key":        "",
	"minio.bucket":            "ytcatalog-data",
	"minio.prefix":            "",
	"minio.use_ssl":           false,
	"jwt.secret":              "",
	"jwt.ttl":                 time.Hour,
}

// Load reads the configuration and validates it. Environment keys are the
// upper-cased setting paths with dots replaced by underscores (DB_HOST,
// DATA_DIR_PATH, JWT_SECRET, ...).
func Load(log *zap.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("could not read .env file", zap.Error(err))
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		log.Info("using config file", zap.String("path", v.ConfigFileUsed()))
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.DB.Driver {
	case "sqlite":
		if c.DB.Path == "" {
			errs = append(errs, errors.New("DB_PATH is required for the sqlite driver"))
		}
	case "postgres":
		if c.DB.Host == "" || c.DB.User == "" || c.DB.Name == "" {
			errs = append(errs, errors.New("DB_HOST, DB_USER and DB_NAME are required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DB.Driver))
	}
	if c.DB.ConnectAttempts == 0 {
		errs = append(errs, errors.New("DB_CONNECT_ATTEMPTS must be at least 1"))
	}

	switch c.Data.Source {
	case "dir":
	case "minio":
		if c.Minio.InternalEndpoint == "" || c.Minio.Bucket == "" {
			errs = append(errs, errors.New("MINIO_INTERNAL_ENDPOINT and MINIO_BUCKET are required when DATA_SOURCE=minio"))
		}
	default:
		errs = append(errs, fmt.Errorf("DATA_SOURCE must be dir or minio, got %q", c.Data.Source))
	}

	if c.JWT.Secret == "" && c.Env == "production" {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}

	return errors.Join(errs...)
}

// TokenSecret returns the signing secret, falling back to a development-only
// value outside production.
func (c *Config) TokenSecret() string {
	if c.JWT.Secret != "" {
		return c.JWT.Secret
	}
	return "development-secret"
}
