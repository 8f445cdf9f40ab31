package config

import (
	"encoding/json"
	"maps"
	"os"

	"github.com/dmitrijs2005/scansync/internal/flagx"
	"github.com/dmitrijs2005/scansync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent fields
// leave the corresponding Config values untouched.
type JsonConfig struct {
	ServerURL          string            `json:"server_url"`
	DatabasePath       string            `json:"database_path"`
	RequestTimeout     *timex.Duration   `json:"request_timeout"`
	FolderHistoryCount *int              `json:"folder_history_count"`
	MaxConcurrentPages *int              `json:"max_concurrent_pages"`
	BlobBackend        string            `json:"blob_backend"`
	BlobDir            string            `json:"blob_dir"`
	S3Bucket           string            `json:"s3_bucket"`
	S3Region           string            `json:"s3_region"`
	S3BaseEndpoint     string            `json:"s3_base_endpoint"`
	S3AccessKey        string            `json:"s3_access_key"`
	S3SecretKey        string            `json:"s3_secret_key"`
	DefaultHeaders     map[string]string `json:"default_headers"`
	LogLevel           string            `json:"log_level"`
}

// parseJson overlays Config with values from the JSON file named by -c or
// -config. Without either flag nothing is loaded.
//
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	overlay := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	overlay(&cfg.ServerURL, jc.ServerURL)
	overlay(&cfg.DatabasePath, jc.DatabasePath)
	overlay(&cfg.BlobBackend, jc.BlobBackend)
	overlay(&cfg.BlobDir, jc.BlobDir)
	overlay(&cfg.S3Bucket, jc.S3Bucket)
	overlay(&cfg.S3Region, jc.S3Region)
	overlay(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	overlay(&cfg.S3AccessKey, jc.S3AccessKey)
	overlay(&cfg.S3SecretKey, jc.S3SecretKey)
	overlay(&cfg.LogLevel, jc.LogLevel)

	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.FolderHistoryCount != nil {
		cfg.FolderHistoryCount = *jc.FolderHistoryCount
	}
	if jc.MaxConcurrentPages != nil {
		cfg.MaxConcurrentPages = *jc.MaxConcurrentPages
	}
	if len(jc.DefaultHeaders) > 0 {
		if cfg.DefaultHeaders == nil {
			cfg.DefaultHeaders = make(map[string]string, len(jc.DefaultHeaders))
		}
		maps.Copy(cfg.DefaultHeaders, jc.DefaultHeaders)
	}
}
