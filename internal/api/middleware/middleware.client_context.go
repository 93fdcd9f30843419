package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// ClientContextHeader là header chứa định danh client của storefront.
// Storefront gửi lại giá trị này ở các request sau để giữ selection session.
const ClientContextHeader = "X-Client-ID"

// ClientContextMiddleware middleware quản lý định danh client cho selection session.
// - Đọc X-Client-ID từ header (storefront tự sinh và lưu lại, thường trong localStorage)
// - Nếu không có hoặc rỗng, server sinh UUID mới cho request này
// - Lưu client_id vào context để handler dùng làm key lưu selection
// - Echo lại X-Client-ID vào response header để storefront biết định danh đang dùng
func ClientContextMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		clientID := c.Get(ClientContextHeader)
		if clientID == "" {
			// Không có header, sinh định danh mới cho client
			clientID = uuid.NewString()
		}

		// Lưu vào context cho handler
		c.Locals("client_id", clientID)

		// Echo lại để storefront lưu và gửi kèm các request sau
		c.Set(ClientContextHeader, clientID)

		return c.Next()
	}
}

// GetClientID lấy định danh client từ context.
// Trả về chuỗi rỗng nếu middleware chưa chạy (route đăng ký ngoài nhóm có middleware).
func GetClientID(c fiber.Ctx) string {
	if clientID, ok := c.Locals("client_id").(string); ok {
		return clientID
	}
	return ""
}
