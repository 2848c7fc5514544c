package config

import (
	"flag"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Storage providers
const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageS3    = "s3"
)

type Config struct {
	// Server-side settings
	DatabaseDSN string `env:"DATABASE_URI"`
	AuthSecret  string `env:"AUTH_SECRET"`
	UploadMaxMB int    `env:"UPLOAD_MAX_MB"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`
	ServerURL   string `env:"-"`

	// Blob storage
	StorageProvider string `env:"STORAGE_PROVIDER"`
	StoragePath     string `env:"STORAGE_PATH"`
	PublicURLPrefix string `env:"PUBLIC_URL_PREFIX"`

	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL"`

	Bucket     string `env:"STORAGE_BUCKET"`
	S3Region   string `env:"S3_REGION"`
	S3Endpoint string `env:"S3_ENDPOINT"`

	Version bool `env:"-"` // show version and exit (flag only)
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (postgres DSN или sqlite:<path>)")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.IntVar(&cfg.UploadMaxMB, "upload-max-mb", cfg.UploadMaxMB, "максимальный размер загружаемого файла, МБ")
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "address:port for the HTTP server")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS scheme in generated URLs")
	flag.StringVar(&cfg.StorageProvider, "storage", cfg.StorageProvider, "blob storage provider: local|minio|s3")
	flag.StringVar(&cfg.StoragePath, "storage-path", cfg.StoragePath, "directory for local blob storage")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show version and exit")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

var hostPortRe = regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)

func (cfg *Config) applyDefaults() {
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.UploadMaxMB <= 0 {
		cfg.UploadMaxMB = 50
	}
	// BaseURL: только "address:port" (без схемы и пути), иначе дефолт
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}
	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	switch strings.ToLower(cfg.StorageProvider) {
	case StorageMinio, StorageS3:
		cfg.StorageProvider = strings.ToLower(cfg.StorageProvider)
	default:
		cfg.StorageProvider = StorageLocal
	}
	if cfg.StoragePath == "" {
		cfg.StoragePath = "uploads"
	}
	if cfg.PublicURLPrefix == "" {
		cfg.PublicURLPrefix = "/uploads/"
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "portfolio-media"
	}
	if cfg.S3Region == "" {
		cfg.S3Region = "us-east-1"
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "sqlite:portfolio.db"
	}
}

// UploadMaxBytes лимит размера одного файла в байтах.
func (cfg *Config) UploadMaxBytes() int64 {
	return int64(cfg.UploadMaxMB) * 1024 * 1024
}
