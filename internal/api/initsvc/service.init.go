// Package initsvc chứa InitService dùng để khởi tạo dữ liệu mẫu ban đầu (sản phẩm in ấn demo).
// Tách ra package riêng để tránh import cycle giữa catalog/service và cmd.
package initsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	basesvc "print_commerce/internal/api/base/service"
	catalogmodels "print_commerce/internal/api/catalog/models"
	catalogsvc "print_commerce/internal/api/catalog/service"
	"print_commerce/internal/logger"
)

// InitService là cấu trúc chứa các phương thức khởi tạo dữ liệu ban đầu cho hệ thống.
// Bản cài mới cần catalog có sẵn sản phẩm để luồng xem/báo giá/checkout chạy được ngay.
type InitService struct {
	catalogProductService *catalogsvc.CatalogProductService // Service xử lý sản phẩm catalog
}

// NewInitService tạo mới một đối tượng InitService
// Khởi tạo các service con cần thiết cho quá trình seed dữ liệu
func NewInitService() (*InitService, error) {
	catalogProductService, err := catalogsvc.NewCatalogProductService()
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog product service: %v", err)
	}

	return &InitService{
		catalogProductService: catalogProductService,
	}, nil
}

// InitCatalogProducts seed bộ sản phẩm in ấn mẫu khi collection catalog_products còn trống.
// Sản phẩm mẫu mang IsSystem = true nên không sửa/xóa được qua API thường; chạy lại init
// không tạo trùng vì đã có guard đếm số lượng ở đầu.
func (h *InitService) InitCatalogProducts() error {
	log := logger.GetAppLogger()

	// Context cho phép ghi system data trong quá trình init
	ctx := basesvc.WithSystemDataWriteAllowed(context.TODO())

	count, err := h.catalogProductService.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to count catalog products: %v", err)
	}
	if count > 0 {
		log.Infof("✅ [INIT] Catalog đã có %d sản phẩm, bỏ qua seed dữ liệu mẫu", count)
		return nil
	}

	log.Info("🔄 [INIT] Catalog trống, bắt đầu seed sản phẩm in ấn mẫu...")

	for _, product := range sampleCatalogProducts() {
		created, err := h.catalogProductService.InsertOne(ctx, product)
		if err != nil {
			return fmt.Errorf("failed to create sample product %s: %v", product.Slug, err)
		}
		log.Infof("✅ [INIT] Đã tạo sản phẩm mẫu: %s (slug=%s, id=%s)", created.Name, created.Slug, created.ID.Hex())
	}

	log.Info("✅ [INIT] Seed catalog hoàn tất")
	return nil
}

// delta trả về con trỏ tới v, dùng cho PriceDelta trong dữ liệu mẫu.
func delta(v float64) *float64 { return &v }

// sampleCatalogProducts trả về bộ sản phẩm mẫu cho bản cài mới.
// Option mặc định không chênh lệch giá: PriceDelta nil và 0 đều được chuẩn hóa về 0,
// dữ liệu mẫu có cả hai dạng (và một delta âm cho in đen trắng).
func sampleCatalogProducts() []catalogmodels.CatalogProduct {
	return []catalogmodels.CatalogProduct{
		{
			Name:        "Danh thiếp",
			Slug:        "danh-thiep",
			Description: "<p>Danh thiếp in offset, hộp 100 tấm. Bản in sắc nét, giao trong 48 giờ.</p>",
			BasePrice:   12.50,
			Currency:    "USD",
			Attributes: []catalogmodels.Attribute{
				{
					ID:   "paper",
					Name: "Loại giấy",
					Options: []catalogmodels.AttributeOption{
						{ID: "couche", Label: "Giấy couche", PriceDelta: nil, IsDefault: true},
						{ID: "my-thuat", Label: "Giấy mỹ thuật", PriceDelta: delta(2.5), Description: "<p>Định lượng 300gsm, bề mặt sần nhẹ.</p>"},
						{ID: "bristol", Label: "Giấy bristol", PriceDelta: delta(1.5)},
					},
				},
				{
					ID:   "finish",
					Name: "Hoàn thiện",
					Options: []catalogmodels.AttributeOption{
						{ID: "khong-can", Label: "Không cán", PriceDelta: delta(0), IsDefault: true},
						{ID: "can-mo", Label: "Cán mờ", PriceDelta: delta(1.0)},
						{ID: "can-bong", Label: "Cán bóng", PriceDelta: delta(1.25)},
					},
				},
				{
					ID:   "corner",
					Name: "Bo góc",
					Options: []catalogmodels.AttributeOption{
						{ID: "goc-vuong", Label: "Góc vuông", PriceDelta: nil, IsDefault: true},
						{ID: "goc-tron", Label: "Bo góc tròn", PriceDelta: delta(0.75)},
					},
				},
			},
			IsActive: true,
			IsSystem: true,
		},
		{
			Name:        "Cốc sứ in hình",
			Slug:        "coc-su-in-hinh",
			Description: "<p>Cốc sứ 350ml in hình theo yêu cầu, mực in an toàn thực phẩm.</p>",
			BasePrice:   9.00,
			Currency:    "USD",
			Attributes: []catalogmodels.Attribute{
				{
					ID:   "color",
					Name: "Màu lòng cốc",
					Options: []catalogmodels.AttributeOption{
						{ID: "trang", Label: "Trắng", PriceDelta: nil, IsDefault: true},
						{ID: "den", Label: "Đen", PriceDelta: delta(0.8)},
						{ID: "do", Label: "Đỏ", PriceDelta: delta(1.0)},
					},
				},
				{
					ID:   "box",
					Name: "Hộp đựng",
					Options: []catalogmodels.AttributeOption{
						{ID: "hop-thuong", Label: "Hộp carton thường", PriceDelta: delta(0), IsDefault: true},
						{ID: "hop-qua", Label: "Hộp quà cứng", PriceDelta: delta(2.25)},
					},
				},
			},
			IsActive: true,
			IsSystem: true,
		},
		{
			Name:        "Poster",
			Slug:        "poster",
			Description: "<p>Poster in kỹ thuật số, mực chống phai, phù hợp treo trong nhà.</p>",
			BasePrice:   20.00,
			Currency:    "USD",
			Sizes:       []string{"A5", "A4", "A3"},
			Attributes: []catalogmodels.Attribute{
				{
					ID:   "paper",
					Name: "Loại giấy",
					Options: []catalogmodels.AttributeOption{
						{ID: "couche", Label: "Giấy couche", PriceDelta: nil, IsDefault: true},
						{ID: "anh-bong", Label: "Giấy ảnh bóng", PriceDelta: delta(5.5)},
					},
				},
				{
					ID:   "color",
					Name: "Chế độ in",
					Options: []catalogmodels.AttributeOption{
						{ID: "mau", Label: "In màu (CMYK)", PriceDelta: delta(0), IsDefault: true},
						{ID: "den-trang", Label: "In đen trắng", PriceDelta: delta(-4.0)},
					},
				},
				{
					ID:   "finish",
					Name: "Cán màng",
					Options: []catalogmodels.AttributeOption{
						{ID: "khong-can", Label: "Không cán", PriceDelta: nil, IsDefault: true},
						{ID: "can-mo", Label: "Cán mờ", PriceDelta: delta(3.0)},
						{ID: "can-bong", Label: "Cán bóng", PriceDelta: delta(3.5)},
					},
				},
			},
			IsActive: true,
			IsSystem: true,
		},
	}
}
