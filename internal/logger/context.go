package logger

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// RequestFields gom các field nhận dạng một request Fiber (method, path, IP,
// request_id, client_id) để gắn vào entry của bất kỳ kênh log nào.
func RequestFields(c fiber.Ctx) logrus.Fields {
	fields := logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"ip":     c.IP(),
	}

	// Request ID: middleware requestid của Fiber set vào Locals hoặc header
	requestID := localsString(c, "requestid")
	if requestID == "" {
		requestID = c.Get("X-Request-ID")
	}
	if requestID == "" {
		requestID = c.GetRespHeader("X-Request-ID")
	}
	if requestID != "" {
		fields["request_id"] = requestID
	}

	// Client ID: middleware client context set vào Locals
	if clientID := localsString(c, "client_id"); clientID != "" {
		fields["client_id"] = clientID
	}

	return fields
}

// WithRequest trả về entry của app logger kèm thông tin request
func WithRequest(c fiber.Ctx) *logrus.Entry {
	return GetAppLogger().WithContext(context.Background()).WithFields(RequestFields(c))
}

// WithModule trả về entry của app logger kèm module name
// (ví dụ: "catalog", "order", "sanitize", "pricing", "receipt")
func WithModule(module string) *logrus.Entry {
	return GetAppLogger().WithField("module", module)
}

// localsString đọc một giá trị string từ Locals; thiếu hoặc sai kiểu trả về rỗng
func localsString(c fiber.Ctx, key string) string {
	if v := c.Locals(key); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
