package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"print_commerce/internal/database"
	"print_commerce/internal/global"
	"print_commerce/internal/logger"
	"print_commerce/internal/worker"
)

// initLogger khởi tạo hệ thống logging cho toàn bộ ứng dụng.
// Cấu hình đọc từ environment variables (LOG_LEVEL, LOG_OUTPUT...).
func initLogger() {
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	logger.GetAppLogger().Info("Logger system initialized successfully")
}

// runServer chạy Fiber server trên main thread cho đến khi server dừng
// (lỗi listen hoặc nhận shutdown signal).
func runServer() {
	app := InitFiberApp()

	cfg := global.MongoDB_ServerConfig
	address := cfg.Address
	log := logger.GetAppLogger()

	log.Info("Starting Fiber server...")

	// SIGINT/SIGTERM: dừng server để flush log và dừng worker gọn gàng
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		log.Info("Shutdown signal received, stopping server...")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	if cfg.EnableTLS && cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		listener, certPath, keyPath := buildTLSListener(log, address)

		log.WithFields(logrus.Fields{
			"address": address,
			"cert":    certPath,
			"key":     keyPath,
		}).Info("Starting server with HTTPS/TLS")

		if err := app.Listener(listener); err != nil {
			log.Fatalf("Error in Fiber Listener with TLS: %v", err)
		}
		return
	}

	log.WithFields(logrus.Fields{
		"address":  address,
		"protocol": "HTTP",
	}).Info("Starting server with HTTP")

	if err := app.Listen(address, fiber.ListenConfig{}); err != nil {
		log.Fatalf("Error in Fiber Listen: %v", err)
	}
}

// buildTLSListener load certificate + key và trả về TCP listener đã wrap TLS.
// File thiếu hoặc certificate hỏng là lỗi cấu hình, dừng server luôn.
func buildTLSListener(log *logrus.Logger, address string) (net.Listener, string, string) {
	cfg := global.MongoDB_ServerConfig

	certPath := resolveProjectPath(cfg.TLSCertFile)
	keyPath := resolveProjectPath(cfg.TLSKeyFile)

	if _, err := os.Stat(certPath); os.IsNotExist(err) {
		log.Fatalf("TLS certificate file not found: %s (resolved from: %s)", certPath, cfg.TLSCertFile)
	}
	if _, err := os.Stat(keyPath); os.IsNotExist(err) {
		log.Fatalf("TLS key file not found: %s (resolved from: %s)", keyPath, cfg.TLSKeyFile)
	}

	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		log.Fatalf("Error loading TLS certificate: %v", err)
	}

	ln, err := net.Listen("tcp", address)
	if err != nil {
		log.Fatalf("Error creating listener: %v", err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	return tls.NewListener(ln, tlsConfig), certPath, keyPath
}

// resolveProjectPath đổi đường dẫn tương đối thành tuyệt đối so với thư mục
// gốc project (nhận diện qua config/env), để chạy được từ bất kỳ working
// directory nào. Đường dẫn tuyệt đối giữ nguyên.
func resolveProjectPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return path
	}

	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(currentDir, path)
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return path
		}
		currentDir = parentDir
	}
}

// startMailWorkers khởi động worker gửi hóa đơn và janitor dọn hàng đợi.
// Chỉ chạy khi SMTP được cấu hình; thiếu SMTP thì các yêu cầu gửi email vẫn
// nằm pending trong hàng đợi và được xử lý khi bật SMTP rồi khởi động lại.
func startMailWorkers(ctx context.Context) {
	log := logger.GetAppLogger()
	cfg := global.MongoDB_ServerConfig

	if cfg.SMTPHost == "" {
		log.Info("📨 [RECEIPT_MAIL] SMTP_HOST not configured, receipt mail worker disabled")
		return
	}

	mailWorker, err := worker.NewReceiptMailWorker(30*time.Second, 20)
	if err != nil {
		log.WithError(err).Error("Failed to create receipt mail worker, continuing without mail worker")
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(logrus.Fields{
					"panic": r,
				}).Error("📨 [RECEIPT_MAIL] Worker goroutine panic")
			}
		}()
		mailWorker.Start(ctx)
	}()
	log.Info("📨 [RECEIPT_MAIL] Receipt Mail Worker started successfully")

	janitor, err := worker.NewReceiptMailJanitor(24*time.Hour, 30)
	if err != nil {
		log.WithError(err).Error("Failed to create receipt mail janitor, continuing without janitor")
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(logrus.Fields{
					"panic": r,
				}).Error("🧹 [RECEIPT_MAIL_JANITOR] Janitor goroutine panic")
			}
		}()
		janitor.Start(ctx)
	}()
	log.Info("🧹 [RECEIPT_MAIL_JANITOR] Receipt Mail Janitor started successfully")
}

// Hàm main
func main() {
	// Khởi tạo logger
	initLogger()
	defer logger.Close()

	// Khởi tạo các biến toàn cục
	InitGlobal()

	// Khởi tạo registry
	InitRegistry()

	// Khởi tạo dữ liệu mặc định
	InitDefaultData()

	// Khởi tạo và chạy các worker nền (gửi hóa đơn qua email)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	startMailWorkers(ctx)

	// Chạy Fiber server trên main thread; trở về đây khi server dừng
	runServer()

	if global.MongoDB_Session != nil {
		_ = database.CloseInstance(global.MongoDB_Session)
	}
	_ = database.CloseRedisInstance(global.RedisClient)

	logger.GetAppLogger().Info("Server stopped")
}
