package config

import (
	"os"
	"strconv"
	"strings"
)

// DefaultDatabaseURL points at a local PostgreSQL instance.
const DefaultDatabaseURL = "postgres://postgres@localhost:5432/docsearch?sslmode=disable"

// DefaultSizeThreshold is the byte size above which uploads go to the blob store.
const DefaultSizeThreshold int64 = 16 << 20

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	URL                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// BlobConfig selects and tunes the large-file store.
type BlobConfig struct {
	// Backend is "minio" or "postgres".
	Backend string
	// ChunkSize is the size of each stored chunk (postgres) or multipart part (minio).
	ChunkSize int64
	// SearchMode is "index", "scan" or "off".
	SearchMode string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Port              string
	SizeThreshold     int64
	BodyLimit         int
	DocumentMatchMode string
	LogTimezone       string
	Database          DatabaseConfig
	Blob              BlobConfig
	MinIO             MinIOConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		Port:              getEnv("PORT", "3000"),
		SizeThreshold:     getEnvInt64("SIZE_THRESHOLD_BYTES", DefaultSizeThreshold),
		BodyLimit:         getEnvInt("BODY_LIMIT_BYTES", 64<<20),
		DocumentMatchMode: strings.ToLower(getEnv("DOCUMENT_MATCH_MODE", "substring")),
		LogTimezone:       getEnv("LOG_TIMEZONE", "UTC"),
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", DefaultDatabaseURL),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Blob: BlobConfig{
			Backend:    strings.ToLower(getEnv("BLOB_BACKEND", "minio")),
			ChunkSize:  getEnvInt64("BLOB_CHUNK_SIZE", 255<<10),
			SearchMode: strings.ToLower(getEnv("BLOB_SEARCH_MODE", "index")),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "docsearch"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil && i > 0 {
			return i
		}
	}
	return def
}
