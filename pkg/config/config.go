package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location.
const ConfigPath = "config.yaml"

// EnvPath is the optional dotenv file read before the config.
const EnvPath = ".env"

const (
	StorageMinio = "minio"
	StorageDir   = "dir"
)

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port            string   `yaml:"port"`
	LogLevel        string   `yaml:"logLevel"`
	DatabaseDriver  string   `yaml:"databaseDriver"`
	DatabaseURL     string   `yaml:"databaseURL"`
	DBMaxRetries    int      `yaml:"dbMaxRetries"`
	SeedUsers       []string `yaml:"seedUsers"`
	StorageBackend  string   `yaml:"storageBackend"`
	StorageDir      string   `yaml:"storageDir"`
	MediaURL        string   `yaml:"mediaURL"`
	MinioEndpoint   string   `yaml:"minioEndpoint"`
	MinioAccessKey  string   `yaml:"minioAccessKey"`
	MinioSecretKey  string   `yaml:"minioSecretKey"`
	MinioBucket     string   `yaml:"minioBucket"`
	MinioUseSSL     bool     `yaml:"minioUseSSL"`
	MaxUploadBytes  int64    `yaml:"maxUploadBytes"`
	PresignExpiry   string   `yaml:"presignExpiry"`
	RedisAddr       string   `yaml:"redisAddr"`
	RedisPassword   string   `yaml:"redisPassword"`
	RateLimit       int      `yaml:"rateLimit"`
	RateLimitWindow string   `yaml:"rateLimitWindow"`
	BreakerFailures int      `yaml:"breakerFailures"`
	BreakerTimeout  string   `yaml:"breakerTimeout"`
}

// Load reads config from path (defaults to config.yaml) and applies
// environment overrides.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadEnvFile exports the variables of a dotenv file that are not already
// set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = EnvPath
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func applyEnv(cfg *FileConfig) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.DatabaseDriver = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("SEED_USERS"); v != "" {
		cfg.SeedUsers = splitCSV(v)
	}
	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		cfg.StorageBackend = v
	}
	if v := os.Getenv("STORAGE_DIR"); v != "" {
		cfg.StorageDir = v
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.MinioEndpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.MinioAccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.MinioSecretKey = v
	}
	if v := os.Getenv("MINIO_BUCKET"); v != "" {
		cfg.MinioBucket = v
	}
	if v := os.Getenv("MINIO_USE_SSL"); v == "true" {
		cfg.MinioUseSSL = true
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit = n
		}
	}
}

func applyDefaults(cfg *FileConfig) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DatabaseDriver == "" {
		cfg.DatabaseDriver = "postgres"
	}
	if cfg.DBMaxRetries <= 0 {
		cfg.DBMaxRetries = 10
	}
	if cfg.StorageBackend == "" {
		cfg.StorageBackend = StorageMinio
	}
	if cfg.MediaURL == "" {
		cfg.MediaURL = "/media"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 50 * 1024 * 1024
	}
	if cfg.PresignExpiry == "" {
		cfg.PresignExpiry = "15m"
	}
	if cfg.RateLimitWindow == "" {
		cfg.RateLimitWindow = "1m"
	}
	if cfg.BreakerFailures <= 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerTimeout == "" {
		cfg.BreakerTimeout = "30s"
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("config: databaseURL is required (set in config.yaml or DATABASE_URL)")
	}
	if cfg.DatabaseDriver != "postgres" && cfg.DatabaseDriver != "sqlite" {
		return fmt.Errorf("config: unsupported databaseDriver %q", cfg.DatabaseDriver)
	}
	switch cfg.StorageBackend {
	case StorageMinio:
		if cfg.MinioEndpoint == "" {
			return errors.New("config: minioEndpoint is required (set in config.yaml)")
		}
		if cfg.MinioAccessKey == "" {
			return errors.New("config: minioAccessKey is required (set in config.yaml)")
		}
		if cfg.MinioSecretKey == "" {
			return errors.New("config: minioSecretKey is required (set in config.yaml)")
		}
		if cfg.MinioBucket == "" {
			return errors.New("config: minioBucket is required (set in config.yaml)")
		}
	case StorageDir:
		if cfg.StorageDir == "" {
			return errors.New("config: storageDir is required for the dir storage backend")
		}
	default:
		return fmt.Errorf("config: unsupported storageBackend %q", cfg.StorageBackend)
	}
	for name, value := range map[string]string{
		"presignExpiry":   cfg.PresignExpiry,
		"rateLimitWindow": cfg.RateLimitWindow,
		"breakerTimeout":  cfg.BreakerTimeout,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("config: invalid %s %q: %w", name, value, err)
		}
	}
	if cfg.RedisAddr != "" && cfg.RateLimit <= 0 {
		return errors.New("config: rateLimit must be positive when redisAddr is set")
	}
	return nil
}

// Duration parses a duration field that Load already validated.
func Duration(value string) time.Duration {
	d, _ := time.ParseDuration(value)
	return d
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
