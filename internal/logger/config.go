package logger

import (
	"os"
	"strings"

	"github.com/caarlos0/env"
)

// LogConfig chứa cấu hình cho hệ thống logging
type LogConfig struct {
	// Log Level: trace, debug, info, warn, error, fatal
	Level string `env:"LOG_LEVEL"`

	// Log Format: json, text
	Format string `env:"LOG_FORMAT"`

	// Log Output: file, stdout, both
	Output string `env:"LOG_OUTPUT"`

	// Log Rotation
	MaxSize    int  `env:"LOG_MAX_SIZE"`    // MB
	MaxBackups int  `env:"LOG_MAX_BACKUPS"` // Số file cũ giữ lại
	MaxAge     int  `env:"LOG_MAX_AGE"`     // Số ngày giữ lại
	Compress   bool `env:"LOG_COMPRESS"`    // Nén file cũ

	// Log Paths
	LogPath         string `env:"LOG_PATH"`
	AppFile         string `env:"LOG_APP_FILE"`
	AuditFile       string `env:"LOG_AUDIT_FILE"`
	PerformanceFile string `env:"LOG_PERF_FILE"`
	ErrorFile       string `env:"LOG_ERROR_FILE"`

	// Log Filters (danh sách phân tách bởi dấu phẩy, rỗng hoặc "*" = cho phép tất cả)
	FilterModules     string `env:"LOG_FILTER_MODULES"`
	FilterCollections string `env:"LOG_FILTER_COLLECTIONS"`
	FilterEndpoints   string `env:"LOG_FILTER_ENDPOINTS"`
	FilterMethods     string `env:"LOG_FILTER_METHODS"`
	FilterLogTypes    string `env:"LOG_FILTER_LOG_TYPES"`
}

// DefaultConfig trả về cấu hình mặc định theo môi trường (GO_ENV),
// sau đó cho phép environment variables override từng trường.
func DefaultConfig() *LogConfig {
	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" {
		goEnv = "development"
	}

	config := &LogConfig{
		Level:           "info",
		Format:          "json",
		Output:          "both",
		MaxSize:         100,
		MaxBackups:      7,
		MaxAge:          7,
		Compress:        true,
		LogPath:         "./logs",
		AppFile:         "app.log",
		AuditFile:       "audit.log",
		PerformanceFile: "performance.log",
		ErrorFile:       "error.log",
	}

	// Development: mức debug, format text cho dễ đọc trên console
	if goEnv == "development" {
		config.Level = "debug"
		config.Format = "text"
	}

	// Override từ environment variables (env tags ở trên)
	if err := env.Parse(config); err == nil {
		config.Level = strings.ToLower(config.Level)
		config.Format = strings.ToLower(config.Format)
		config.Output = strings.ToLower(config.Output)
	}

	return config
}
