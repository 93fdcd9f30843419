package logger

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// LogAction ghi một hành động của client vào kênh audit, kèm IP, user agent,
// client_id (middleware client context set vào Locals) và request_id nếu có.
func LogAction(action string, c fiber.Ctx, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	if requestID := c.Get("X-Request-ID"); requestID != "" {
		details["request_id"] = requestID
	}

	GetAuditLogger().WithFields(logrus.Fields{
		"action":     action,
		"client_id":  localsString(c, "client_id"),
		"ip":         c.IP(),
		"user_agent": c.Get("User-Agent"),
		"details":    details,
		"timestamp":  time.Now(),
	}).Info("Audit log")
}

// LogCheckout ghi audit cho thao tác checkout tạo đơn hàng
func LogCheckout(orderID string, c fiber.Ctx, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["order_id"] = orderID

	LogAction("checkout", c, details)
}

// LogReceipt ghi audit cho các thao tác trên hóa đơn (xem, tải, gửi email)
func LogReceipt(action string, orderID string, c fiber.Ctx, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["order_id"] = orderID

	LogAction("receipt_"+action, c, details)
}
