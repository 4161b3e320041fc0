package config

import "time"

const (
	DefaultPort = 8188

	// Chat exports run large; Facebook JSON files are capped at 10 MB
	// per thread by the exporter itself.
	DefaultMaxFileSizeBytes = 20 * 1024 * 1024
	DefaultMaxFilesPerBatch = 20

	DefaultSessionTTL = 2 * time.Hour
)
