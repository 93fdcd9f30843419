package basehdl

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"print_commerce/internal/common"
	"print_commerce/internal/global"
)

// SystemHandler xử lý các route hệ thống (health probe).
type SystemHandler struct {
	*BaseHandler[interface{}, interface{}, interface{}]
}

// NewSystemHandler tạo một instance mới của SystemHandler
func NewSystemHandler() (*SystemHandler, error) {
	return &SystemHandler{
		BaseHandler: &BaseHandler[interface{}, interface{}, interface{}]{},
	}, nil
}

// HandleHealth trả về tình trạng API, database và cache. Database ping lỗi
// là 503; các suy giảm khác (chưa init, cache lỗi) vẫn trả 200 kèm
// status "degraded" để probe phân biệt được sự cố cứng và mềm.
func (h *SystemHandler) HandleHealth(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	services := fiber.Map{"api": "ok"}
	data := fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"services":  services,
	}

	if global.MongoDB_Session == nil {
		data["status"] = "degraded"
		services["database"] = "not_initialized"
	} else if err := global.MongoDB_Session.Ping(ctx, nil); err != nil {
		data["status"] = "degraded"
		services["database"] = "error"
		data["database_error"] = err.Error()
		return c.Status(common.StatusServiceUnavailable).JSON(fiber.Map{
			"code":    common.StatusServiceUnavailable,
			"message": "Hệ thống đang gặp sự cố",
			"data":    data,
			"status":  "error",
		})
	} else {
		services["database"] = "ok"
	}

	// Redis nil nghĩa là chạy cache trong bộ nhớ, không tính là degraded
	if global.RedisClient == nil {
		services["cache"] = "in_memory"
	} else if err := global.RedisClient.Ping(ctx).Err(); err != nil {
		data["status"] = "degraded"
		services["cache"] = "error"
		data["cache_error"] = err.Error()
	} else {
		services["cache"] = "ok"
	}

	return c.Status(common.StatusOK).JSON(fiber.Map{
		"code":    common.StatusOK,
		"message": common.MsgSuccess,
		"data":    data,
		"status":  "success",
	})
}
