package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "print_commerce/internal/api/base/handler"
	"print_commerce/internal/api/middleware"
)

// ⚠️ QUAN TRỌNG — cách đăng ký middleware trên Fiber v3:
//
// Fiber v3 KHÔNG gọi middleware khi đăng ký trực tiếp trong route:
//
//	❌ router.Get("/path", middleware.ClientContextMiddleware(), handler) // middleware bị bỏ qua!
//	✅ RegisterRouteWithMiddleware(router, "/prefix", "GET", "/path", []fiber.Handler{clientCtx}, handler)
//
// Middleware phải gắn qua .Use() trên group. Route nào đăng ký theo cách
// trực tiếp phải sửa thành RegisterRouteWithMiddleware.

// CRUDHandler là tập endpoint CRUD mà một handler collection phải có
// để đăng ký qua RegisterCRUDRoutes.
type CRUDHandler interface {
	// Create
	InsertOne(c fiber.Ctx) error
	InsertMany(c fiber.Ctx) error

	// Read
	Find(c fiber.Ctx) error
	FindOne(c fiber.Ctx) error
	FindOneById(c fiber.Ctx) error
	FindManyByIds(c fiber.Ctx) error
	FindWithPagination(c fiber.Ctx) error

	// Update
	UpdateOne(c fiber.Ctx) error
	UpdateMany(c fiber.Ctx) error
	UpdateById(c fiber.Ctx) error
	FindOneAndUpdate(c fiber.Ctx) error

	// Delete
	DeleteOne(c fiber.Ctx) error
	DeleteMany(c fiber.Ctx) error
	DeleteById(c fiber.Ctx) error
	FindOneAndDelete(c fiber.Ctx) error

	// Other
	CountDocuments(c fiber.Ctx) error
	Distinct(c fiber.Ctx) error
	Upsert(c fiber.Ctx) error
	UpsertMany(c fiber.Ctx) error
	DocumentExists(c fiber.Ctx) error
}

// Router quản lý việc định tuyến cho API
type Router struct {
	app *fiber.App
}

// CRUDConfig cấu hình các operation được phép cho mỗi collection
type CRUDConfig struct {
	// Create
	InsOne  bool // Insert One
	InsMany bool // Insert Many

	// Read
	Find     bool // Find All
	FindOne  bool // Find One
	FindById bool // Find By Id
	FindIds  bool // Find Many By Ids
	Paginate bool // Find With Pagination

	// Update
	UpdOne  bool // Update One
	UpdMany bool // Update Many
	UpdById bool // Update By Id
	FindUpd bool // Find One And Update

	// Delete
	DelOne  bool // Delete One
	DelMany bool // Delete Many
	DelById bool // Delete By Id
	FindDel bool // Find One And Delete

	// Other
	Count    bool // Count Documents
	Distinct bool // Distinct
	Upsert   bool // Upsert One
	UpsMany  bool // Upsert Many
	Exists   bool // Document Exists
}

// Config cho từng collection. Các domain dùng chung: ReadOnlyConfig, ReadWriteConfig.
var (
	// ReadOnlyConfig chỉ cho phép đọc (find, find-one, count, distinct, exists).
	// Dùng cho collection chỉ được ghi qua nghiệp vụ riêng (đơn hàng, dòng hàng, hàng đợi mail).
	ReadOnlyConfig = CRUDConfig{
		InsOne: false, InsMany: false,
		Find: true, FindOne: true, FindById: true,
		FindIds: true, Paginate: true,
		UpdOne: false, UpdMany: false, UpdById: false,
		FindUpd: false,
		DelOne:  false, DelMany: false, DelById: false,
		FindDel: false,
		Count:   true, Distinct: true,
		Upsert: false, UpsMany: false, Exists: true,
	}

	// ReadWriteConfig cho phép đầy đủ CRUD. Dùng cho collection quản trị trực tiếp (sản phẩm catalog).
	ReadWriteConfig = CRUDConfig{
		InsOne: true, InsMany: true,
		Find: true, FindOne: true, FindById: true,
		FindIds: true, Paginate: true,
		UpdOne: true, UpdMany: true, UpdById: true,
		FindUpd: true,
		DelOne:  true, DelMany: true, DelById: true,
		FindDel: true,
		Count:   true, Distinct: true,
		Upsert: true, UpsMany: true, Exists: true,
	}
)

// RoutePrefix chứa các prefix cơ bản cho API
type RoutePrefix struct {
	Base string // Prefix cơ bản (/api)
	V1   string // Prefix cho API version 1 (/api/v1)
}

// NewRoutePrefix tạo mới một instance của RoutePrefix với các giá trị mặc định
func NewRoutePrefix() RoutePrefix {
	base := "/api"
	return RoutePrefix{
		Base: base,
		V1:   base + "/v1",
	}
}

// NewRouter tạo mới một instance của Router
func NewRouter(app *fiber.App) *Router {
	return &Router{
		app: app,
	}
}

// RegisterRouteWithMiddleware đăng ký một route lẻ với middleware gắn qua
// .Use() trên group (xem cảnh báo Fiber v3 ở đầu file). Path truyền vào là
// path tương đối, prefix đã nằm trong group.
func RegisterRouteWithMiddleware(router fiber.Router, prefix string, method string, path string, middlewares []fiber.Handler, handler fiber.Handler) {
	routeGroup := router.Group(prefix)
	for _, mw := range middlewares {
		routeGroup.Use(mw)
	}
	addRoute(routeGroup, method, path, handler)
}

// addRoute đăng ký handler theo HTTP method trên một group đã có middleware
func addRoute(group fiber.Router, method string, path string, handler fiber.Handler) {
	switch method {
	case "GET":
		group.Get(path, handler)
	case "POST":
		group.Post(path, handler)
	case "PUT":
		group.Put(path, handler)
	case "DELETE":
		group.Delete(path, handler)
	}
}

// crudRoute là một dòng trong bảng route CRUD của RegisterCRUDRoutes
type crudRoute struct {
	enabled bool
	method  string
	path    string
	handler fiber.Handler
}

// RegisterCRUDRoutes đăng ký các route CRUD cho một collection theo config.
// Mọi route đều đi qua ClientContextMiddleware để có client_id trong context.
func (r *Router) RegisterCRUDRoutes(router fiber.Router, prefix string, h CRUDHandler, config CRUDConfig) {
	routes := []crudRoute{
		// Create
		{config.InsOne, "POST", "/insert-one", h.InsertOne},
		{config.InsMany, "POST", "/insert-many", h.InsertMany},

		// Read
		{config.Find, "GET", "/find", h.Find},
		{config.FindOne, "GET", "/find-one", h.FindOne},
		{config.FindById, "GET", "/find-by-id/:id", h.FindOneById},
		{config.FindIds, "POST", "/find-by-ids", h.FindManyByIds},
		{config.Paginate, "GET", "/find-with-pagination", h.FindWithPagination},

		// Update
		{config.UpdOne, "PUT", "/update-one", h.UpdateOne},
		{config.UpdMany, "PUT", "/update-many", h.UpdateMany},
		{config.UpdById, "PUT", "/update-by-id/:id", h.UpdateById},
		{config.FindUpd, "PUT", "/find-one-and-update", h.FindOneAndUpdate},

		// Delete
		{config.DelOne, "DELETE", "/delete-one", h.DeleteOne},
		{config.DelMany, "DELETE", "/delete-many", h.DeleteMany},
		{config.DelById, "DELETE", "/delete-by-id/:id", h.DeleteById},
		{config.FindDel, "DELETE", "/find-one-and-delete", h.FindOneAndDelete},

		// Other
		{config.Count, "GET", "/count", h.CountDocuments},
		{config.Distinct, "GET", "/distinct/:field", h.Distinct},
		{config.Upsert, "POST", "/upsert-one", h.Upsert},
		{config.UpsMany, "POST", "/upsert-many", h.UpsertMany},
		{config.Exists, "GET", "/exists", h.DocumentExists},
	}

	group := router.Group(prefix)
	group.Use(middleware.ClientContextMiddleware())

	for _, rt := range routes {
		if rt.enabled {
			addRoute(group, rt.method, rt.path, rt.handler)
		}
	}
}

// Các hàm đăng ký route theo domain nằm trong: internal/api/catalog/router, internal/api/order/router

// RegisterFunc là hàm đăng ký route của một domain (do domain/router export).
type RegisterFunc func(v1 fiber.Router, r *Router) error

// SetupRoutes thiết lập tất cả các route cho ứng dụng. Caller truyền lần lượt Register của từng domain để tránh import cycle.
func SetupRoutes(app *fiber.App, regs ...RegisterFunc) error {
	prefix := NewRoutePrefix()
	v1 := app.Group(prefix.V1)
	r := NewRouter(app)

	// Route hệ thống dùng chung (không thuộc domain nào)
	systemHandler, err := basehdl.NewSystemHandler()
	if err != nil {
		return fmt.Errorf("tạo SystemHandler: %w", err)
	}
	v1.Get("/system/health", systemHandler.HandleHealth)

	for _, reg := range regs {
		if err := reg(v1, r); err != nil {
			return err
		}
	}
	return nil
}
