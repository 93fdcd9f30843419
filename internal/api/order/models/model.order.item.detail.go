package models

import (
	catalogmodels "print_commerce/internal/api/catalog/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SelectedAttribute là một cặp thuộc tính/option đã chọn ở dạng người đọc
// được, chụp lại tại thời điểm checkout. AttributeOrder/OptionOrder đánh số
// từ 1 theo thứ tự catalog lúc đặt hàng; bản ghi cũ không có hai field này
// (giá trị 0) vẫn render được, khi đó giữ nguyên thứ tự mảng.
type SelectedAttribute struct {
	AttributeID    string  `json:"attributeId" bson:"attributeId"`                           // ID thuộc tính trong catalog lúc đặt
	OptionID       string  `json:"optionId" bson:"optionId"`                                 // ID option đã chọn
	AttributeName  string  `json:"attributeName" bson:"attributeName"`                       // Tên thuộc tính đã làm sạch (ví dụ: "Chất liệu giấy")
	OptionLabel    string  `json:"optionLabel" bson:"optionLabel"`                           // Nhãn option đã làm sạch (ví dụ: "Giấy mỹ thuật")
	PriceDelta     float64 `json:"priceDelta" bson:"priceDelta"`                             // Chênh lệch giá của option, null trong catalog đã quy về 0
	AttributeOrder int     `json:"attributeOrder,omitempty" bson:"attributeOrder,omitempty"` // Vị trí thuộc tính trong catalog, đánh số từ 1
	OptionOrder    int     `json:"optionOrder,omitempty" bson:"optionOrder,omitempty"`       // Vị trí option trong thuộc tính, đánh số từ 1
}

// PriceMath là phần toán giá server đã xác nhận cho một dòng hàng: giá gốc và
// các chênh lệch theo thứ tự thuộc tính trong catalog (giữ cả delta bằng 0 để
// mảng thẳng hàng với danh sách thuộc tính).
type PriceMath struct {
	Base   float64   `json:"base" bson:"base"`     // Giá gốc sản phẩm lúc đặt
	Deltas []float64 `json:"deltas" bson:"deltas"` // Chênh lệch từng thuộc tính, theo thứ tự catalog
}

// OrderItemDetail lưu chi tiết cấu hình biến thể của một dòng hàng, đủ để dựng
// lại hóa đơn nhiều năm sau mà không cần catalog còn nguyên vẹn
type OrderItemDetail struct {
	ID                      primitive.ObjectID      `json:"id,omitempty" bson:"_id,omitempty"`                                         // ID của bản ghi trong MongoDB
	OrderID                 primitive.ObjectID      `json:"orderId" bson:"orderId" index:"single:1,compound:order_product_unique"`     // Đơn hàng chứa dòng này
	ProductID               primitive.ObjectID      `json:"productId" bson:"productId" index:"single:1,compound:order_product_unique"` // Sản phẩm của dòng này; mỗi đơn mỗi sản phẩm một bản ghi
	ProductName             string                  `json:"productName" bson:"productName"`                                            // Tên sản phẩm đã làm sạch lúc đặt
	Quantity                int                     `json:"quantity" bson:"quantity"`                                                  // Số lượng, nguyên dương
	UnitPrice               float64                 `json:"unitPrice" bson:"unitPrice"`                                                // Đơn giá server xác nhận, làm tròn 2 chữ số TRƯỚC khi nhân
	TotalPrice              float64                 `json:"totalPrice" bson:"totalPrice"`                                              // Đơn giá × số lượng
	Selection               catalogmodels.Selection `json:"selection" bson:"selection"`                                                // Lựa chọn gốc: map attribute id → option id
	VariantSignature        string                  `json:"variantSignature" bson:"variantSignature" index:"single:1"`                 // Chữ ký biến thể chuẩn hóa (attr:opt nối bằng |, sort theo attr id)
	SelectedSize            string                  `json:"selectedSize,omitempty" bson:"selectedSize,omitempty"`                      // Size đã chọn, không ảnh hưởng giá
	SelectedAttributesHuman []SelectedAttribute     `json:"selectedAttributesHuman" bson:"selectedAttributesHuman"`                    // Lựa chọn dạng người đọc được, theo thứ tự catalog lúc đặt
	Math                    *PriceMath              `json:"math,omitempty" bson:"math,omitempty"`                                      // Toán giá đã xác nhận; nil với bản ghi cũ thiếu dữ liệu
	CreatedAt               int64                   `json:"createdAt" bson:"createdAt" index:"single:-1"`                              // Thời gian tạo
	UpdatedAt               int64                   `json:"updatedAt" bson:"updatedAt"`                                                // Thời gian cập nhật
}
