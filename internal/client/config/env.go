package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with SCANSYNC_* environment variables. A .env file
// in the working directory is loaded first; variables already present in the
// process environment take precedence over it.
//
// Panics on malformed numeric or duration values.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	setString(&cfg.ServerURL, "SCANSYNC_SERVER_URL")
	setString(&cfg.DatabasePath, "SCANSYNC_DB_PATH")
	setString(&cfg.LogLevel, "SCANSYNC_LOG_LEVEL")
	setString(&cfg.BlobBackend, "SCANSYNC_BLOB_BACKEND")
	setString(&cfg.BlobDir, "SCANSYNC_BLOB_DIR")
	setString(&cfg.S3Bucket, "SCANSYNC_S3_BUCKET")
	setString(&cfg.S3Region, "SCANSYNC_S3_REGION")
	setString(&cfg.S3BaseEndpoint, "SCANSYNC_S3_ENDPOINT")
	setString(&cfg.S3AccessKey, "SCANSYNC_S3_ACCESS_KEY")
	setString(&cfg.S3SecretKey, "SCANSYNC_S3_SECRET_KEY")

	if v, ok := os.LookupEnv("SCANSYNC_REQUEST_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.RequestTimeout = d
	}
	if v, ok := os.LookupEnv("SCANSYNC_FOLDER_HISTORY_COUNT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		cfg.FolderHistoryCount = n
	}
	if v, ok := os.LookupEnv("SCANSYNC_MAX_CONCURRENT_PAGES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		cfg.MaxConcurrentPages = n
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
