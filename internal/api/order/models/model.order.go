package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái đơn hàng. Hệ thống không có máy trạng thái: đơn được tạo ở
// trạng thái confirmed và giữ nguyên; field tồn tại để hiển thị trên hóa đơn.
const (
	OrderStatusConfirmed = "confirmed"
)

// OrderItem là dòng hàng phẳng chụp lại tại thời điểm checkout. Đây là nguồn
// fallback khi dựng lại hóa đơn mà bản ghi chi tiết tương ứng bị thiếu, nên
// phải tự chứa đủ số liệu giá.
type OrderItem struct {
	ProductID   primitive.ObjectID `json:"productId" bson:"productId"`     // ID sản phẩm tại thời điểm đặt
	ProductName string             `json:"productName" bson:"productName"` // Tên sản phẩm đã làm sạch
	Quantity    int                `json:"quantity" bson:"quantity"`       // Số lượng, nguyên dương
	UnitPrice   float64            `json:"unitPrice" bson:"unitPrice"`     // Đơn giá đã làm tròn 2 chữ số
	TotalPrice  float64            `json:"totalPrice" bson:"totalPrice"`   // Đơn giá × số lượng
}

// Order lưu đơn hàng đã xác nhận cùng snapshot dòng hàng phẳng
type Order struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`               // ID của đơn hàng trong MongoDB
	Code            string             `json:"code" bson:"code" index:"unique"`                 // Mã đơn dạng ORD-YYYYMMDD-xxxxxx, hiển thị cho khách
	CustomerName    string             `json:"customerName" bson:"customerName" index:"text"`   // Tên khách, để trống sẽ hiển thị placeholder trên hóa đơn
	CustomerEmail   string             `json:"customerEmail" bson:"customerEmail" index:"text"` // Email khách, dùng làm địa chỉ mặc định khi gửi hóa đơn
	CustomerAddress string             `json:"customerAddress" bson:"customerAddress"`          // Địa chỉ giao hàng
	Status          string             `json:"status" bson:"status"`                            // Trạng thái hiển thị (confirmed)
	Currency        string             `json:"currency" bson:"currency"`                        // Mã tiền tệ ISO cho dòng Total
	Items           []OrderItem        `json:"items" bson:"items"`                              // Snapshot dòng hàng phẳng
	TotalAmount     float64            `json:"totalAmount" bson:"totalAmount"`                  // Tổng tiền server đã xác nhận, làm tròn 2 chữ số
	CreatedAt       int64              `json:"createdAt" bson:"createdAt" index:"single:-1"`    // Thời gian tạo
	UpdatedAt       int64              `json:"updatedAt" bson:"updatedAt"`                      // Thời gian cập nhật
	_Relationships  struct{}           `relationship:"collection:receipt_mail_queue,field:orderId,message:Không thể xóa đơn hàng vì có %d email hóa đơn đang chờ gửi cho đơn hàng này."`
}
