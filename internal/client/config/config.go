package config

import (
	"maps"
	"time"
)

const (
	BlobBackendFS = "fs"
	BlobBackendS3 = "s3"
)

// Config holds runtime settings for the scansync client.
type Config struct {
	// ServerURL is the base URL every endpoint path is resolved against.
	ServerURL string
	// DatabasePath is the SQLite file holding documents, pages and statuses.
	DatabasePath string
	// RequestTimeout bounds every HTTP exchange with the remote service.
	RequestTimeout time.Duration
	// FolderHistoryCount is how many recently used folders the lookup shows.
	FolderHistoryCount int
	// MaxConcurrentPages limits parallel page uploads within one document.
	MaxConcurrentPages int

	BlobBackend    string
	BlobDir        string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string

	// DefaultHeaders are merged into every request; request headers win.
	DefaultHeaders map[string]string

	LogLevel string
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080/api"
	c.DatabasePath = "scansync.db"
	c.RequestTimeout = 30 * time.Second
	c.FolderHistoryCount = 5
	c.MaxConcurrentPages = 4
	c.BlobBackend = BlobBackendFS
	c.BlobDir = "images"
	c.S3Bucket = "scans"
	c.S3Region = "us-east-1"
	c.DefaultHeaders = map[string]string{"Accept": "application/json"}
	c.LogLevel = "info"
}

// LoadConfig constructs a Config from defaults, environment, JSON and flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// Headers returns a copy of the default headers.
func (c *Config) Headers() map[string]string {
	return maps.Clone(c.DefaultHeaders)
}
