package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái của một yêu cầu gửi hóa đơn trong hàng đợi.
const (
	MailStatusPending = "pending" // Chờ worker gửi
	MailStatusSent    = "sent"    // Đã gửi thành công
	MailStatusFailed  = "failed"  // Gửi thất bại sau khi hết số lần thử
)

// MailMaxAttempts là số lần gửi tối đa cho một yêu cầu trước khi chuyển sang failed.
const MailMaxAttempts = 3

// ReceiptMailQueue lưu yêu cầu gửi hóa đơn qua email, được worker xử lý nền
type ReceiptMailQueue struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`              // ID của yêu cầu trong MongoDB
	OrderID   primitive.ObjectID `json:"orderId" bson:"orderId" index:"single:1"`        // Đơn hàng cần gửi hóa đơn
	Email     string             `json:"email" bson:"email"`                             // Địa chỉ nhận
	Status    string             `json:"status" bson:"status" index:"single:1"`          // pending / sent / failed
	Attempts  int                `json:"attempts" bson:"attempts"`                       // Số lần đã thử gửi
	LastError string             `json:"lastError,omitempty" bson:"lastError,omitempty"` // Lỗi của lần gửi gần nhất
	SentAt    int64              `json:"sentAt,omitempty" bson:"sentAt,omitempty"`       // Thời điểm gửi thành công
	CreatedAt int64              `json:"createdAt" bson:"createdAt" index:"single:-1"`   // Thời gian tạo
	UpdatedAt int64              `json:"updatedAt" bson:"updatedAt"`                     // Thời gian cập nhật
}
