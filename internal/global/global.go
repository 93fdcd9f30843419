package global

import (
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"print_commerce/config"
	"print_commerce/internal/registry"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB
type MongoDB_CollectionName struct {
	CatalogProducts  string // Tên collection cho sản phẩm in ấn (kèm thuộc tính biến thể)
	Orders           string // Tên collection cho đơn hàng
	OrderItemDetails string // Tên collection cho bản ghi chi tiết dòng hàng (phục vụ dựng lại hóa đơn)
	ReceiptMailQueue string // Tên collection cho hàng đợi gửi hóa đơn qua email
}

// Các biến toàn cục
var Validate *validator.Validate                    // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client                   // Phiên kết nối tới MongoDB
var MongoDB_ServerConfig *config.Configuration      // Cấu hình của server
var MongoDB_ColNames = *new(MongoDB_CollectionName) // Tên các collection
var RedisClient *redis.Client                       // Kết nối Redis (nil = dùng cache trong bộ nhớ)

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
