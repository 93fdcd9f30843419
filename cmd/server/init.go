package main

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"print_commerce/config"
	catalogmodels "print_commerce/internal/api/catalog/models"
	ordermodels "print_commerce/internal/api/order/models"
	"print_commerce/internal/database"
	"print_commerce/internal/global"
	"print_commerce/internal/sanitize"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initColNames()         // Khởi tạo tên các collection trong database
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initSanitizer()        // Khởi tạo bộ làm sạch nội dung
	initDatabase_MongoDB() // Khởi tạo kết nối database
	initRedis()            // Khởi tạo kết nối Redis (optional)
}

// Hàm khởi tạo tên các collection trong database
func initColNames() {
	global.MongoDB_ColNames.CatalogProducts = "catalog_products"
	global.MongoDB_ColNames.Orders = "orders"
	global.MongoDB_ColNames.OrderItemDetails = "order_item_details"
	global.MongoDB_ColNames.ReceiptMailQueue = "receipt_mail_queue"

	logrus.Info("Initialized collection names") // Ghi log thông báo đã khởi tạo tên các collection
}

// Hàm khởi tạo validator (dùng global.InitValidator để đăng ký custom validators: no_xss, exists)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator") // Ghi log thông báo đã khởi tạo validator
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.MongoDB_ServerConfig = config.NewConfig()
	if global.MongoDB_ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil") // Ghi log lỗi nếu khởi tạo cấu hình thất bại
	}
	logrus.Info("Initialized server config") // Ghi log thông báo đã khởi tạo cấu hình server
}

// Hàm khởi tạo bộ làm sạch nội dung. Danh sách từ cần che lấy từ CENSOR_WORDS
// (phân cách bằng dấu phẩy), để trống thì dùng danh sách mặc định của package.
func initSanitizer() {
	raw := global.MongoDB_ServerConfig.CensorWords
	if raw == "" {
		logrus.Info("Initialized sanitizer with default censor words")
		return
	}

	words := strings.Split(raw, ",")
	for i := range words {
		words[i] = strings.TrimSpace(words[i])
	}
	sanitize.Init(words)
	logrus.Infof("Initialized sanitizer with %d censor words", len(words))
}

// Hàm khởi tạo kết nối database
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err) // Ghi log lỗi nếu kết nối database thất bại
	}
	logrus.Info("Connected to MongoDB") // Ghi log thông báo đã kết nối database thành công

	// Khởi tạo các db và collections nếu chưa có
	database.EnsureDatabaseAndCollections(global.MongoDB_Session)
	logrus.Info("Ensured database and collections") // Ghi log thông báo đã đảm bảo database và các collection

	// Khởi tạo các index cho các collection
	dbName := global.MongoDB_ServerConfig.MongoDB_DBName
	db := global.MongoDB_Session.Database(dbName)
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.CatalogProducts), catalogmodels.CatalogProduct{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Orders), ordermodels.Order{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.OrderItemDetails), ordermodels.OrderItemDetail{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.ReceiptMailQueue), ordermodels.ReceiptMailQueue{})

	// Index bổ sung không diễn đạt được qua model tags (text index nhiều field)
	if err := database.CreateCatalogAdditionalIndexes(context.TODO(), db); err != nil {
		logrus.Warnf("Failed to create additional catalog indexes: %v", err)
	}
}

// Hàm khởi tạo kết nối Redis. Redis là optional: không cấu hình hoặc kết nối
// thất bại thì các tầng cache tự chuyển sang bộ nhớ trong process.
func initRedis() {
	client, err := database.GetRedisInstance(global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Warnf("Failed to connect to Redis, falling back to in-memory cache: %v", err)
		return
	}
	global.RedisClient = client
}
