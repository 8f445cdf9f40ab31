// Package config loads runtime configuration for the scansync client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: a .env file in the working directory (if present) and
//     SCANSYNC_* variables (see parseEnv).
//  3. Optional JSON file selected with -c or -config (see parseJson).
//  4. Command-line flags (see parseFlags).
//
// Later sources override earlier ones.
//
// Supported flags
//
//	-a string   base URL of the remote document service
//	-d string   path of the local SQLite database
//	-t int      request timeout (seconds)
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
// Durations accept strings like "30s" or integer nanoseconds:
//
//	{
//	  "server_url": "https://scan.example.org/api",
//	  "database_path": "scansync.db",
//	  "request_timeout": "30s",
//	  "folder_history_count": 5,
//	  "max_concurrent_pages": 4,
//	  "blob_backend": "s3",
//	  "blob_dir": "images",
//	  "s3_bucket": "scans",
//	  "s3_region": "us-east-1",
//	  "s3_base_endpoint": "http://127.0.0.1:9000",
//	  "default_headers": {"X-Client": "scansync"},
//	  "log_level": "debug"
//	}
package config
