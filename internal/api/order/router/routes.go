// Package router đăng ký các route thuộc domain đơn hàng: checkout, đọc đơn
// và dòng hàng, các route hóa đơn.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"print_commerce/internal/api/middleware"
	orderhdl "print_commerce/internal/api/order/handler"
	apirouter "print_commerce/internal/api/router"
)

// Register đăng ký tất cả route đơn hàng lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	orderHandler, err := orderhdl.NewOrderHandler()
	if err != nil {
		return fmt.Errorf("tạo OrderHandler: %w", err)
	}
	detailHandler, err := orderhdl.NewOrderItemDetailHandler()
	if err != nil {
		return fmt.Errorf("tạo OrderItemDetailHandler: %w", err)
	}

	clientCtxMiddleware := middleware.ClientContextMiddleware()
	middlewares := []fiber.Handler{clientCtxMiddleware}

	// POST /orders/checkout — tạo đơn, server tính lại toàn bộ giá. Body: khối khách hàng + items
	apirouter.RegisterRouteWithMiddleware(v1, "/orders", "POST", "/checkout", middlewares, orderHandler.HandleCheckout)

	// GET /orders/:id/receipt — hóa đơn dựng lại: document có cấu trúc + bản text
	apirouter.RegisterRouteWithMiddleware(v1, "/orders", "GET", "/:id/receipt", middlewares, orderHandler.HandleReceiptView)

	// GET /orders/:id/receipt/download — cùng bản text, trả về dạng file đính kèm
	apirouter.RegisterRouteWithMiddleware(v1, "/orders", "GET", "/:id/receipt/download", middlewares, orderHandler.HandleReceiptDownload)

	// POST /orders/:id/receipt/email — đưa yêu cầu gửi hóa đơn vào hàng đợi. Body: {email} (tùy chọn)
	apirouter.RegisterRouteWithMiddleware(v1, "/orders", "POST", "/:id/receipt/email", middlewares, orderHandler.HandleReceiptEmail)

	// Đơn chỉ được tạo qua checkout và bất biến sau đó — CRUD giới hạn ở đọc,
	// mở thêm mỗi xóa theo id (đi qua DeleteById đã ghi đè: chặn khi còn mail
	// chờ gửi, xóa kèm dữ liệu phụ thuộc).
	orderConfig := apirouter.ReadOnlyConfig
	orderConfig.DelById = true
	r.RegisterCRUDRoutes(v1, "/orders", orderHandler, orderConfig)

	r.RegisterCRUDRoutes(v1, "/order-item-details", detailHandler, apirouter.ReadOnlyConfig)

	return nil
}
