// Package router đăng ký các route thuộc domain catalog: CRUD sản phẩm,
// trang sản phẩm storefront, báo giá biến thể.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	cataloghdl "print_commerce/internal/api/catalog/handler"
	"print_commerce/internal/api/middleware"
	apirouter "print_commerce/internal/api/router"
)

// Register đăng ký tất cả route catalog lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	productHandler, err := cataloghdl.NewCatalogProductHandler()
	if err != nil {
		return fmt.Errorf("tạo CatalogProductHandler: %w", err)
	}

	clientCtxMiddleware := middleware.ClientContextMiddleware()
	middlewares := []fiber.Handler{clientCtxMiddleware}

	// GET /catalog-products/:id/view — trang sản phẩm: catalog chuẩn hóa + selection ban đầu + giá khởi điểm
	apirouter.RegisterRouteWithMiddleware(v1, "/catalog-products", "GET", "/:id/view", middlewares, productHandler.HandleView)

	// POST /catalog-products/:id/quote — báo giá cấu hình. Body: {selection, quantity}
	apirouter.RegisterRouteWithMiddleware(v1, "/catalog-products", "POST", "/:id/quote", middlewares, productHandler.HandleQuote)

	// PUT /catalog-products/:id/status — bật/tắt bày bán. Body: {isActive}
	apirouter.RegisterRouteWithMiddleware(v1, "/catalog-products", "PUT", "/:id/status", middlewares, productHandler.HandleSetStatus)

	r.RegisterCRUDRoutes(v1, "/catalog-products", productHandler, apirouter.ReadWriteConfig)

	return nil
}
