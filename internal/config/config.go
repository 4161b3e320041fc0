package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Upload
		Sessions
		Log
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Upload struct {
		MaxFileSizeBytes int64
		MaxFilesPerBatch int
	}
	Sessions struct {
		TTL             time.Duration
		CleanupSchedule string // Cron format: "*/15 * * * *" = every 15 minutes
	}
	Log struct {
		Level  string
		Format string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", DefaultPort)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("upload_max_file_size_bytes", DefaultMaxFileSizeBytes)
	v.SetDefault("upload_max_files_per_batch", DefaultMaxFilesPerBatch)
	v.SetDefault("session_ttl", DefaultSessionTTL)
	v.SetDefault("session_cleanup_schedule", "*/15 * * * *")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("port"),
			Host: v.GetString("host"),
		},
		Upload: Upload{
			MaxFileSizeBytes: v.GetInt64("upload_max_file_size_bytes"),
			MaxFilesPerBatch: v.GetInt("upload_max_files_per_batch"),
		},
		Sessions: Sessions{
			TTL:             v.GetDuration("session_ttl"),
			CleanupSchedule: v.GetString("session_cleanup_schedule"),
		},
		Log: Log{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("shutdown_timeout_in_seconds"),
		},
	}
}
