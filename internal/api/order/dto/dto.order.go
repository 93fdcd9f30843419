package orderdto

import (
	catalogmodels "print_commerce/internal/api/catalog/models"
	ordermodels "print_commerce/internal/api/order/models"
	"print_commerce/internal/receipt"
)

// CheckoutItemInput là một dòng hàng trong giỏ khi checkout. Giá client đã
// thấy ở bước báo giá không được gửi lên, server tự tính lại toàn bộ.
type CheckoutItemInput struct {
	ProductID    string                  `json:"productId" validate:"required"`      // ID sản phẩm (hex ObjectID)
	Quantity     int                     `json:"quantity" validate:"required,min=1"` // Số lượng, nguyên dương
	Selection    catalogmodels.Selection `json:"selection" validate:"required"`      // Lựa chọn đầy đủ: attribute id → option id
	SelectedSize string                  `json:"selectedSize,omitempty"`             // Size đã chọn (nếu sản phẩm có size)
}

// CheckoutInput là dữ liệu đầu vào để tạo đơn hàng
type CheckoutInput struct {
	CustomerName    string              `json:"customerName" validate:"omitempty,no_xss"`    // Tên khách, để trống sẽ hiển thị placeholder trên hóa đơn
	CustomerEmail   string              `json:"customerEmail" validate:"omitempty,email"`    // Email khách, dùng làm địa chỉ mặc định khi gửi hóa đơn
	CustomerAddress string              `json:"customerAddress" validate:"omitempty,no_xss"` // Địa chỉ giao hàng
	Items           []CheckoutItemInput `json:"items" validate:"required,min=1,dive"`        // Giỏ hàng, ít nhất một dòng
}

// CheckoutResponse trả về đơn hàng đã tạo cùng các bản ghi chi tiết dòng hàng.
type CheckoutResponse struct {
	Order   *ordermodels.Order            `json:"order"`   // Đơn hàng với snapshot dòng hàng phẳng
	Details []ordermodels.OrderItemDetail `json:"details"` // Bản ghi chi tiết phục vụ dựng lại hóa đơn
}

// ReceiptEmailInput là dữ liệu đầu vào khi yêu cầu gửi hóa đơn qua email.
// Email để trống thì gửi về email khách đã lưu trên đơn.
type ReceiptEmailInput struct {
	Email string `json:"email" validate:"omitempty,email"` // Địa chỉ nhận, ghi đè email trên đơn
}

// ReceiptEmailResponse trả về trạng thái yêu cầu gửi hóa đơn đã vào hàng đợi.
type ReceiptEmailResponse struct {
	QueueID string `json:"queueId"` // ID yêu cầu trong hàng đợi
	OrderID string `json:"orderId"` // Đơn hàng cần gửi
	Email   string `json:"email"`   // Địa chỉ sẽ nhận hóa đơn
	Status  string `json:"status"`  // Trạng thái hàng đợi (pending)
}

// ReceiptResponse trả về hóa đơn dựng lại từ dữ liệu đã lưu: tài liệu có cấu
// trúc cho client render tùy ý và bản text đã render sẵn. Text ở đây, ở
// đường tải file và trong email là cùng một chuỗi byte.
type ReceiptResponse struct {
	Document *receipt.Document `json:"document"` // Tài liệu hóa đơn có cấu trúc
	Text     string            `json:"text"`     // Bản render text đầy đủ
	Filename string            `json:"filename"` // Tên file gợi ý khi tải về
}
