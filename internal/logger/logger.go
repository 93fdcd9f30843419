// Package logger quản lý hệ thống logging nhiều kênh (app, audit, performance, error)
// trên logrus: ghi file có rotation (lumberjack) và stdout qua async hook, lọc entry qua filter hook.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Tên các kênh log. Mỗi kênh là một logger riêng ghi ra file riêng.
const (
	ChannelApp         = "app"
	ChannelAudit       = "audit"
	ChannelPerformance = "performance"
	ChannelError       = "error"
)

// asyncBufferSize là số entry tối đa chờ ghi trong buffer của mỗi kênh
const asyncBufferSize = 1000

var (
	loggers   = make(map[string]*logrus.Logger)
	loggersMu sync.Mutex

	// asyncHooks giữ các hook đã tạo để Close() flush được lúc shutdown
	asyncHooks []*AsyncHook

	// config chứa cấu hình logging
	config *LogConfig

	// rootDir lưu đường dẫn gốc của project
	rootDir string
)

// Init khởi tạo hệ thống logging với cấu hình
func Init(cfg *LogConfig) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	config = cfg

	if err := initRootDir(); err != nil {
		return fmt.Errorf("failed to initialize root directory: %w", err)
	}

	// Tạo thư mục logs nếu chưa tồn tại
	if err := os.MkdirAll(logDir(), 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	return nil
}

// Close đóng các async hook và đợi entry còn trong buffer được ghi hết.
// Gọi một lần lúc shutdown; log ghi sau đó sẽ ghi đồng bộ trực tiếp.
func Close() {
	loggersMu.Lock()
	hooks := asyncHooks
	asyncHooks = nil
	loggersMu.Unlock()

	for _, hook := range hooks {
		_ = hook.Close()
	}
}

// initRootDir xác định thư mục gốc project, thử lần lượt: env LOG_ROOT_DIR,
// vị trí binary, rồi đi lên từ working directory.
func initRootDir() error {
	if rootDir != "" {
		return nil
	}

	if dir := rootDirFromEnv(); dir != "" {
		rootDir = dir
		return nil
	}

	if dir := rootDirFromExecutable(); dir != "" {
		rootDir = dir
		return nil
	}

	dir, err := rootDirFromWorkingDir()
	if err != nil {
		return err
	}
	rootDir = dir
	return nil
}

// rootDirFromEnv đọc LOG_ROOT_DIR (ưu tiên cao nhất), resolve symlink nếu được
func rootDirFromEnv() string {
	envRootDir := os.Getenv("LOG_ROOT_DIR")
	if envRootDir == "" {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(envRootDir); err == nil {
		return resolved
	}
	return envRootDir
}

// rootDirFromExecutable suy ra thư mục gốc từ vị trí binary: 2 cấp trên thư mục
// chứa binary (ví dụ /path/to/print_commerce/cmd/server/server -> /path/to/print_commerce).
// Trả về rỗng nếu thư mục suy ra không giống thư mục project.
func rootDirFromExecutable() string {
	executable, err := os.Executable()
	if err != nil {
		return ""
	}

	// Resolve symlinks, quan trọng khi chạy qua systemd
	if resolved, err := filepath.EvalSymlinks(executable); err == nil {
		executable = resolved
	}

	dir := filepath.Dir(filepath.Dir(filepath.Dir(executable)))
	if isProjectRoot(dir) {
		return dir
	}
	return ""
}

// rootDirFromWorkingDir đi lên từ working directory tìm thư mục project,
// tối đa 5 cấp; không thấy thì lấy 2 cấp trên working directory.
func rootDirFromWorkingDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("could not get executable or working directory: %v", err)
	}

	dir := wd
	for i := 0; i < 5; i++ {
		if isProjectRoot(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // Đã đến root của filesystem
		}
		dir = parent
	}

	return filepath.Dir(filepath.Dir(wd)), nil
}

// isProjectRoot nhận diện thư mục gốc project qua thư mục logs hoặc config
func isProjectRoot(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, "logs")); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(dir, "config")); err == nil {
		return true
	}
	return false
}

// GetLogger trả về logger theo tên kênh, tạo mới nếu chưa có
func GetLogger(name string) *logrus.Logger {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	// Nếu chưa init, init với config mặc định
	if config == nil {
		if err := Init(nil); err != nil {
			panic(fmt.Sprintf("Failed to initialize logger: %v", err))
		}
	}

	if logger, ok := loggers[name]; ok {
		return logger
	}

	logger := createLogger(name)
	loggers[name] = logger

	return logger
}

// createLogger dựng một logger kênh mới: level + formatter theo config,
// filter hook rồi async hook ghi ra các writer.
func createLogger(name string) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetFormatter(newFormatter(config.Format))

	// FilterHook phải đứng trước AsyncHook: entry cần được đánh dấu lọc
	// trước khi vào async queue
	logger.AddHook(NewFilterHook(config))

	// Tách file writer và stdout writer, ghi qua async hook. Nếu dùng
	// MultiWriter trực tiếp, file I/O chậm sẽ block cả stdout lẫn request handling.
	if writers := buildWriters(name); len(writers) > 0 {
		asyncHook := NewAsyncHook(writers, asyncBufferSize)
		logger.AddHook(asyncHook)
		asyncHooks = append(asyncHooks, asyncHook)
		// Không set output trực tiếp để tránh ghi trùng; hook xử lý toàn bộ
		logger.SetOutput(io.Discard)
	}

	logger.SetReportCaller(true)

	// Thêm service name vào mỗi log entry
	logger = logger.WithField("service", name).Logger

	logger.WithFields(logrus.Fields{
		"log_file": logFilePath(name),
		"level":    logger.GetLevel().String(),
		"format":   config.Format,
		"output":   config.Output,
	}).Info("Logger initialized successfully")

	return logger
}

// newFormatter chọn formatter theo config: json có field map chuẩn cho môi trường
// chạy thật, text kèm caller rút gọn cho console dev.
func newFormatter(format string) logrus.Formatter {
	if format == "json" {
		return &logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
				logrus.FieldKeyFunc:  "function",
				logrus.FieldKeyFile:  "file",
			},
		}
	}

	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			s := strings.Split(f.Function, ".")
			funcName := s[len(s)-1]
			return funcName, fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
		},
	}
}

// buildWriters dựng danh sách writer theo config.Output: file có rotation
// (lumberjack), stdout, hoặc cả hai
func buildWriters(name string) []io.Writer {
	var writers []io.Writer

	if config.Output == "file" || config.Output == "both" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   logFilePath(name),
			MaxSize:    config.MaxSize,    // MB
			MaxBackups: config.MaxBackups, // Số file cũ giữ lại
			MaxAge:     config.MaxAge,     // Số ngày
			Compress:   config.Compress,   // Nén file cũ
		})
	}

	if config.Output == "stdout" || config.Output == "both" {
		writers = append(writers, os.Stdout)
	}

	return writers
}

// logDir trả về thư mục chứa file log (tuyệt đối, hoặc tương đối so với rootDir)
func logDir() string {
	if filepath.IsAbs(config.LogPath) {
		return config.LogPath
	}
	return filepath.Join(rootDir, config.LogPath)
}

// logFilePath trả về đường dẫn file log của một kênh
func logFilePath(name string) string {
	var filename string
	switch name {
	case ChannelApp:
		filename = config.AppFile
	case ChannelAudit:
		filename = config.AuditFile
	case ChannelPerformance:
		filename = config.PerformanceFile
	case ChannelError:
		filename = config.ErrorFile
	default:
		filename = name + ".log"
	}
	return filepath.Join(logDir(), filename)
}

// GetAppLogger trả về logger chính của ứng dụng
func GetAppLogger() *logrus.Logger {
	return GetLogger(ChannelApp)
}

// GetAuditLogger trả về logger ghi audit trail (đơn hàng, hóa đơn)
func GetAuditLogger() *logrus.Logger {
	return GetLogger(ChannelAudit)
}

// GetPerformanceLogger trả về logger ghi timing của request
func GetPerformanceLogger() *logrus.Logger {
	return GetLogger(ChannelPerformance)
}

// GetErrorLogger trả về logger ghi lỗi hệ thống
func GetErrorLogger() *logrus.Logger {
	return GetLogger(ChannelError)
}
