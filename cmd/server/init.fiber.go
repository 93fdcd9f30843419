package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	catalogrouter "print_commerce/internal/api/catalog/router"
	"print_commerce/internal/api/middleware"
	orderrouter "print_commerce/internal/api/order/router"
	apirouter "print_commerce/internal/api/router"
	"print_commerce/internal/common"
	"print_commerce/internal/global"
	"print_commerce/internal/logger"
)

// slowRequestThreshold: request xử lý lâu hơn ngưỡng này được log Warn trên kênh performance
const slowRequestThreshold = 2 * time.Second

// InitFiberApp khởi tạo ứng dụng Fiber: cấu hình server, middleware stack và routes
func InitFiberApp() *fiber.App {
	app := fiber.New(fiberConfig())

	registerMiddleware(app)

	// Khởi tạo routes của từng domain
	if err := apirouter.SetupRoutes(app, catalogrouter.Register, orderrouter.Register); err != nil {
		logger.GetAppLogger().Fatalf("Failed to setup routes: %v", err)
	}

	return app
}

// fiberConfig dựng cấu hình server: giới hạn body/timeout và error handler chung
func fiberConfig() fiber.Config {
	return fiber.Config{
		AppName:       "Print Commerce API",
		ServerHeader:  "Print Commerce API",
		StrictRouting: true, // /foo và /foo/ là khác nhau
		CaseSensitive: true, // /Foo và /foo là khác nhau
		UnescapePath:  true, // Tự động decode URL-encoded paths
		Immutable:     false,

		BodyLimit:       10 * 1024 * 1024, // Max size của request body (10MB)
		Concurrency:     256 * 1024,
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,

		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,

		ErrorHandler: handleServerError,
	}
}

// handleServerError trả lỗi về client theo format envelope thống nhất và ghi
// vào kênh error. Riêng lỗi TLS handshake (client gọi https:// vào HTTP server)
// không log để tránh nhiễu, chỉ trả message hướng dẫn.
func handleServerError(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	errorCode := common.ErrCodeInternalServer.Code

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
		switch code {
		case fiber.StatusBadRequest:
			errorCode = common.ErrCodeValidationInput.Code
		case fiber.StatusNotFound, fiber.StatusConflict:
			errorCode = common.ErrCodeDatabaseQuery.Code
		}
	}

	if isTLSHandshakeError(err) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code":    common.ErrCodeValidationInput.Code,
			"message": "Server chỉ hỗ trợ HTTP. Vui lòng sử dụng http:// thay vì https://",
			"status":  "error",
			"details": fiber.Map{
				"protocol":   "HTTP only",
				"suggestion": "Sử dụng URL: http://localhost" + global.MongoDB_ServerConfig.Address,
			},
		})
	}

	logger.GetErrorLogger().
		WithFields(logger.RequestFields(c)).
		WithFields(map[string]interface{}{
			"code":      code,
			"errorCode": errorCode,
			"message":   message,
		}).Error("Request error")

	return c.Status(code).JSON(fiber.Map{
		"code":    errorCode,
		"message": message,
		"status":  "error",
	})
}

// isTLSHandshakeError nhận diện client bắn TLS handshake vào HTTP server:
// handshake bắt đầu bằng bytes 0x16 0x03 0x01, fasthttp báo thành lỗi
// "unsupported http request method"
func isTLSHandshakeError(err error) bool {
	errMsg := err.Error()
	return strings.Contains(errMsg, "unsupported http request method") &&
		(strings.Contains(errMsg, "\\x16\\x03\\x01") ||
			strings.Contains(errMsg, "\x16\x03\x01") ||
			strings.Contains(errMsg, "error when reading request headers"))
}

// registerMiddleware đăng ký middleware stack theo thứ tự:
// request ID -> CORS (phải trước các middleware khác để xử lý preflight)
// -> security headers -> timing -> rate limit -> recover
func registerMiddleware(app *fiber.App) {
	// Request ID để trace request qua các log channels
	app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return fmt.Sprintf("%d", time.Now().UnixNano())
		},
	}))

	app.Use(cors.New(corsConfig()))

	// Security headers
	app.Use(func(c fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		// Chỉ set HSTS nếu dùng HTTPS
		// c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		return c.Next()
	})

	// Timing ghi vào kênh performance; đặt trước rate limit để đo cả request bị chặn
	app.Use(middleware.RequestTiming(slowRequestThreshold))

	registerRateLimiter(app)

	app.Use(recover.New(recover.Config{
		EnableStackTrace:  true,
		StackTraceHandler: logPanic,
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/health" ||
				c.Path() == "/metrics" ||
				c.Path() == "/api/v1/system/health"
		},
	}))
}

// corsConfig dựng cấu hình CORS từ server config.
// X-Client-ID nằm trong allow/expose headers vì storefront dùng nó để
// nhớ lựa chọn thuộc tính của từng trình duyệt.
func corsConfig() cors.Config {
	corsOrigins := global.MongoDB_ServerConfig.CORS_Origins
	var allowOrigins []string
	if corsOrigins == "*" {
		// Development mode: cho phép tất cả
		allowOrigins = []string{"*"}
	} else {
		allowOrigins = strings.Split(corsOrigins, ",")
		for i, origin := range allowOrigins {
			allowOrigins[i] = strings.TrimSpace(origin)
		}
	}

	return cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"X-Request-ID",
			"X-Requested-With",
			"X-Client-ID",
		},
		AllowCredentials: global.MongoDB_ServerConfig.CORS_AllowCredentials,
		ExposeHeaders:    []string{"Content-Length", "Content-Range", "Content-Disposition", "X-Request-ID", "X-Client-ID"},
		MaxAge:           24 * 60 * 60, // Cache preflight requests 24 giờ
	}
}

// registerRateLimiter bật rate limit theo IP nếu được cấu hình.
// Health check và OPTIONS (preflight) không bị giới hạn.
func registerRateLimiter(app *fiber.App) {
	log := logger.GetAppLogger()
	cfg := global.MongoDB_ServerConfig

	if !cfg.RateLimit_Enabled || cfg.RateLimit_Max <= 0 {
		log.Info("Rate limiting disabled")
		return
	}

	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit_Max,
		Expiration: time.Duration(cfg.RateLimit_Window) * time.Second,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"code":    common.ErrCodeBusinessOperation.Code,
				"message": "Quá nhiều yêu cầu, vui lòng thử lại sau",
				"status":  "error",
			})
		},
		SkipFailedRequests:     false,
		SkipSuccessfulRequests: false,
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/health" ||
				c.Path() == "/api/v1/system/health" ||
				c.Method() == "OPTIONS"
		},
	}))

	log.Infof("Rate limiting enabled: %d requests per %d seconds", cfg.RateLimit_Max, cfg.RateLimit_Window)
}

// logPanic ghi panic kèm stack trace vào kênh error và trả response 500
func logPanic(c fiber.Ctx, e interface{}) {
	logger.GetErrorLogger().
		WithFields(logger.RequestFields(c)).
		WithFields(map[string]interface{}{
			"panic":   e,
			"headers": c.GetReqHeaders(),
			"body":    string(c.Body()),
		}).Error("Panic recovered")

	c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"code":    fiber.StatusInternalServerError,
		"message": "Internal Server Error",
		"error":   fmt.Sprintf("%v", e),
		"time":    time.Now().Format(time.RFC3339),
	})
}
