package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"print_commerce/internal/logger"
)

// RequestTiming đo thời gian xử lý từng request và ghi vào kênh performance.
// Request chậm hơn slowThreshold được nâng lên mức Warn để dễ soi endpoint chậm;
// slowThreshold <= 0 thì mọi request chỉ ghi ở mức Debug.
func RequestTiming(slowThreshold time.Duration) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		entry := logger.GetPerformanceLogger().
			WithFields(logger.RequestFields(c)).
			WithFields(logrus.Fields{
				"status":      c.Response().StatusCode(),
				"duration_ms": float64(elapsed.Microseconds()) / 1000.0,
			})

		if slowThreshold > 0 && elapsed >= slowThreshold {
			entry.Warn("Slow request")
		} else {
			entry.Debug("Request completed")
		}

		return err
	}
}
