// Package config đọc cấu hình tĩnh của ứng dụng từ file env chọn theo GO_ENV.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration gom toàn bộ cấu hình tĩnh của server, đọc từ env.
type Configuration struct {
	InitMode              bool   `env:"INITMODE" envDefault:"false"`               // Chế độ khởi tạo dữ liệu mẫu
	Address               string `env:"ADDRESS" envDefault:":8080"`                // Địa chỉ server
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"`           // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME,required"`                   // Tên cơ sở dữ liệu
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`           // Số request tối đa trong window (0 = disable rate limit)
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`         // Thời gian window (giây)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`      // Bật/tắt rate limiting
	// Redis Configuration (cache catalog + lựa chọn đã nhớ của client)
	RedisAddress  string `env:"REDIS_ADDRESS"`           // Địa chỉ Redis (để trống = dùng cache trong bộ nhớ)
	RedisPassword string `env:"REDIS_PASSWORD"`          // Mật khẩu Redis (optional)
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"` // Redis database index
	// SMTP Configuration (gửi hóa đơn qua email)
	SMTPHost     string `env:"SMTP_HOST"`                                        // SMTP host (để trống = tắt gửi email)
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`                       // SMTP port
	SMTPUsername string `env:"SMTP_USERNAME"`                                    // SMTP username
	SMTPPassword string `env:"SMTP_PASSWORD"`                                    // SMTP password
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"receipts@printcommerce.vn"` // Địa chỉ gửi
	// Storefront Configuration
	DefaultCurrency      string `env:"DEFAULT_CURRENCY" envDefault:"USD"`     // Mã tiền tệ ISO cho dòng Total của hóa đơn
	CensorWords          string `env:"CENSOR_WORDS"`                          // Danh sách từ cần che phân cách bằng dấu phẩy (để trống = dùng danh sách mặc định)
	SelectionTTL_Minutes int    `env:"SELECTION_TTL_MINUTES" envDefault:"60"` // TTL (phút) cho lựa chọn thuộc tính đã nhớ của client
	CatalogCacheTTL      int    `env:"CATALOG_CACHE_TTL" envDefault:"300"`    // TTL (giây) cho cache catalog chuẩn hóa
	// Frontend URL
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"` // URL frontend
	// TLS/HTTPS Configuration
	EnableTLS   bool   `env:"ENABLE_TLS" envDefault:"false"` // Bật HTTPS
	TLSCertFile string `env:"TLS_CERT_FILE"`                 // Đường dẫn đến file certificate (.crt hoặc .pem)
	TLSKeyFile  string `env:"TLS_KEY_FILE"`                  // Đường dẫn đến file private key (.key)
}

// envFilePath tìm file env của môi trường hiện tại: đi ngược từ working
// directory lên tới khi gặp thư mục config/env. GO_ENV trống coi là
// development. Không tìm thấy thì trả về chuỗi rỗng.
// Logger chưa init được ở bước này nên lỗi in thẳng qua fmt.Printf.
func envFilePath() string {
	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" {
		goEnv = "development"
	}

	dir, err := os.Getwd()
	if err != nil {
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	for {
		envDir := filepath.Join(dir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, goEnv+".env")
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// NewConfig load file env của môi trường hiện tại rồi parse thành
// Configuration. Mọi bước fail đều trả nil; caller quyết định dừng hay không.
func NewConfig() *Configuration {
	envPath := envFilePath()
	if envPath == "" {
		fmt.Printf("Không tìm thấy thư mục config/env\n")
		return nil
	}

	if err := godotenv.Load(envPath); err != nil {
		fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		return nil
	}

	var cfg Configuration
	if err := env.Parse(&cfg); err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}

	return &cfg
}
