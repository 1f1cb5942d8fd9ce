package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Mongo struct {
		URI    string `yaml:"uri"`
		DBName string `yaml:"db_name"`
	} `yaml:"mongo"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Storage struct {
		FolderPath string `yaml:"folder_path"`
	} `yaml:"storage"`

	Session struct {
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"session"`

	Worker struct {
		Concurrency      int           `yaml:"concurrency"`
		ThumbnailTimeout time.Duration `yaml:"thumbnail_timeout"`
		MaxAttempts      int           `yaml:"max_attempts"`
	} `yaml:"worker"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	var cfg Config
	cfg.Server.Port = "5000"
	cfg.Server.Env = "development"
	cfg.Mongo.URI = "mongodb://localhost:27017"
	cfg.Mongo.DBName = "files_manager"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Storage.FolderPath = filepath.Join(os.TempDir(), "files_manager")
	cfg.Session.TTL = 24 * time.Hour
	cfg.Worker.Concurrency = 2
	cfg.Worker.ThumbnailTimeout = 30 * time.Second
	cfg.Worker.MaxAttempts = 3
	return &cfg
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_PATH and the environment, in that order of precedence (lowest first).
// A .env file in the working directory is loaded into the environment first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.Env, "APP_ENV")
	setString(&cfg.Mongo.URI, "MONGO_URI")
	setString(&cfg.Mongo.DBName, "DB_NAME")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Storage.FolderPath, "FOLDER_PATH")

	if err := setInt(&cfg.Redis.DB, "REDIS_DB"); err != nil {
		return err
	}
	if err := setInt(&cfg.Worker.Concurrency, "WORKER_CONCURRENCY"); err != nil {
		return err
	}
	if err := setInt(&cfg.Worker.MaxAttempts, "JOB_MAX_ATTEMPTS"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Session.TTL, "SESSION_TTL"); err != nil {
		return err
	}
	return setDuration(&cfg.Worker.ThumbnailTimeout, "THUMBNAIL_TIMEOUT")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}
