// Package catalogdto chứa các DTO cho domain catalog: sản phẩm in ấn,
// báo giá biến thể và lựa chọn thuộc tính của client.
package catalogdto

import (
	catalogmodels "print_commerce/internal/api/catalog/models"
	"print_commerce/internal/pricing"
)

// CatalogProductCreateInput dữ liệu đầu vào khi tạo sản phẩm catalog.
// Name/Slug là text thuần nên chặn XSS ngay từ validate; Description là rich
// text, đi qua bộ làm sạch HTML ở tầng service thay vì validator.
type CatalogProductCreateInput struct {
	Name        string                    `json:"name" validate:"required,no_xss"`
	Slug        string                    `json:"slug" validate:"required,no_xss"`
	SKU         string                    `json:"sku,omitempty" validate:"omitempty,no_xss"`
	Description string                    `json:"description,omitempty"`
	BasePrice   float64                   `json:"basePrice" validate:"min=0"`
	Currency    string                    `json:"currency,omitempty" transform:"string,default=USD"`
	ImageURL    string                    `json:"imageUrl,omitempty"`
	Sizes       []string                  `json:"sizes,omitempty"`
	Attributes  []catalogmodels.Attribute `json:"attributes,omitempty"`
	IsActive    bool                      `json:"isActive"`
}

// CatalogProductUpdateInput dữ liệu đầu vào khi cập nhật sản phẩm catalog.
// Update là partial: field zero value sẽ không được ghi đè. Đổi isActive dùng
// route /status riêng.
type CatalogProductUpdateInput struct {
	Name        string                    `json:"name,omitempty" validate:"omitempty,no_xss"`
	Slug        string                    `json:"slug,omitempty" validate:"omitempty,no_xss"`
	SKU         string                    `json:"sku,omitempty" validate:"omitempty,no_xss"`
	Description string                    `json:"description,omitempty"`
	BasePrice   float64                   `json:"basePrice,omitempty" validate:"omitempty,min=0"`
	Currency    string                    `json:"currency,omitempty"`
	ImageURL    string                    `json:"imageUrl,omitempty"`
	Sizes       []string                  `json:"sizes,omitempty"`
	Attributes  []catalogmodels.Attribute `json:"attributes,omitempty"`
}

// CatalogProductStatusInput dữ liệu đầu vào khi bật/tắt bày bán sản phẩm.
// Tách route riêng vì partial update bỏ qua zero value — không set false được.
type CatalogProductStatusInput struct {
	IsActive bool `json:"isActive"`
}

// QuoteInput dữ liệu đầu vào khi báo giá một cấu hình sản phẩm.
// Selection phải phủ đúng các thuộc tính của sản phẩm; Quantity nguyên dương.
type QuoteInput struct {
	Selection catalogmodels.Selection `json:"selection" validate:"required"`
	Quantity  int                     `json:"quantity" validate:"required,min=1"`
}

// QuoteResponse kết quả báo giá cho một cấu hình.
type QuoteResponse struct {
	ProductID        string                  `json:"productId"`
	Selection        catalogmodels.Selection `json:"selection"`
	Breakdown        *pricing.PriceBreakdown `json:"breakdown"`
	VariantSignature string                  `json:"variantSignature"`
	Currency         string                  `json:"currency"`
}

// ProductViewResponse là dữ liệu trang sản phẩm storefront: catalog đã chuẩn
// hóa (tên/nhãn đã strip, mô tả đã làm sạch và che từ cấm), selection ban đầu
// và giá khởi điểm ở số lượng 1.
//
// Selection ưu tiên lựa chọn client đã lưu từ phiên trước (nếu còn hợp lệ với
// catalog hiện tại), không thì dùng mặc định của catalog.
type ProductViewResponse struct {
	ID               string                    `json:"id"`
	Name             string                    `json:"name"`
	Slug             string                    `json:"slug"`
	Description      string                    `json:"description,omitempty"`
	BasePrice        float64                   `json:"basePrice"`
	Currency         string                    `json:"currency"`
	ImageURL         string                    `json:"imageUrl,omitempty"`
	Sizes            []string                  `json:"sizes,omitempty"`
	Attributes       []catalogmodels.Attribute `json:"attributes"`
	Selection        catalogmodels.Selection   `json:"selection"`
	SelectionSource  string                    `json:"selectionSource"` // "remembered" | "default"
	Breakdown        *pricing.PriceBreakdown   `json:"breakdown"`
	VariantSignature string                    `json:"variantSignature"`
}
