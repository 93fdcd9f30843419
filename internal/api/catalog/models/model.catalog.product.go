package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AttributeOption là một lựa chọn trong thuộc tính cấu hình của sản phẩm in.
type AttributeOption struct {
	ID          string   `json:"id" bson:"id"`                                       // ID option, duy nhất trong attribute
	Label       string   `json:"label" bson:"label"`                                 // Nhãn hiển thị (ví dụ: "Xanh dương")
	ImageURL    string   `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`       // Ảnh minh họa option
	PriceDelta  *float64 `json:"priceDelta" bson:"priceDelta"`                       // Chênh lệch giá so với giá gốc; null được coi là 0
	IsDefault   bool     `json:"isDefault" bson:"isDefault"`                         // Option được chọn sẵn khi mở trang sản phẩm
	Description string   `json:"description,omitempty" bson:"description,omitempty"` // Mô tả rich text (HTML), được làm sạch khi chuẩn hóa
}

// Attribute là một thuộc tính cấu hình của sản phẩm (màu sắc, chất liệu, hoàn thiện...).
// Invariant: có ít nhất một option.
type Attribute struct {
	ID      string            `json:"id" bson:"id"`           // ID attribute, duy nhất trong sản phẩm
	Name    string            `json:"name" bson:"name"`       // Tên hiển thị (ví dụ: "Màu sắc")
	Options []AttributeOption `json:"options" bson:"options"` // Danh sách option; thứ tự trong catalog là thứ tự hiển thị
}

// Selection là lựa chọn hiện tại của client: map attribute id → option id.
// Mỗi attribute có đúng một option được chọn; mọi attribute đều bắt buộc
// (không có trạng thái "chưa chọn" — mặc định được gán ngay khi load catalog).
type Selection map[string]string

// CatalogProduct lưu sản phẩm in ấn cùng các thuộc tính biến thể
type CatalogProduct struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`                        // ID của sản phẩm trong MongoDB
	Name           string             `json:"name" bson:"name"`                                         // Tên sản phẩm
	Slug           string             `json:"slug" bson:"slug" index:"unique"`                          // Slug duy nhất cho URL
	SKU            string             `json:"sku,omitempty" bson:"sku,omitempty" index:"unique,sparse"` // Mã SKU của merchant, để trống nếu chưa gán
	Description    string             `json:"description,omitempty" bson:"description,omitempty"`       // Mô tả rich text (HTML)
	BasePrice      float64            `json:"basePrice" bson:"basePrice"`                               // Giá gốc trước chênh lệch option
	Currency       string             `json:"currency" bson:"currency" default:"USD"`                   // Mã tiền tệ hiển thị trên hóa đơn
	ImageURL       string             `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`             // Ảnh đại diện
	Sizes          []string           `json:"sizes,omitempty" bson:"sizes,omitempty"`                   // Danh sách size (A5/A4/A3...), không ảnh hưởng giá
	Attributes     []Attribute        `json:"attributes" bson:"attributes"`                             // Thuộc tính cấu hình, theo thứ tự catalog
	IsActive       bool               `json:"isActive" bson:"isActive" index:"single:1"`                // Sản phẩm đang được bày bán
	IsSystem       bool               `json:"isSystem" bson:"isSystem"`                                 // Sản phẩm mẫu do hệ thống seed, không cho sửa/xóa qua API
	CreatedAt      int64              `json:"createdAt" bson:"createdAt" index:"single:-1"`             // Thời gian tạo
	UpdatedAt      int64              `json:"updatedAt" bson:"updatedAt"`                               // Thời gian cập nhật
	_Relationships struct{}           `relationship:"collection:order_item_details,field:productId,message:Không thể xóa sản phẩm vì có %d dòng hàng đã đặt tham chiếu tới sản phẩm này. Hóa đơn cũ cần dữ liệu sản phẩm để đối chiếu."`
}
