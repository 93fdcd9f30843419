package ordersvc

import (
	"context"
	"fmt"

	basesvc "print_commerce/internal/api/base/service"
	ordermodels "print_commerce/internal/api/order/models"
	"print_commerce/internal/common"
	"print_commerce/internal/global"
	"print_commerce/internal/utility"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReceiptMailService là cấu trúc chứa các phương thức liên quan đến hàng đợi
// gửi hóa đơn qua email. Handler chỉ enqueue; việc gửi do worker nền xử lý.
type ReceiptMailService struct {
	*basesvc.BaseServiceMongoImpl[ordermodels.ReceiptMailQueue]
}

// NewReceiptMailService tạo mới ReceiptMailService.
func NewReceiptMailService() (*ReceiptMailService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ReceiptMailQueue)
	if !exist {
		return nil, fmt.Errorf("failed to get receipt_mail_queue collection: %v", common.ErrNotFound)
	}
	return &ReceiptMailService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[ordermodels.ReceiptMailQueue](collection),
	}, nil
}

// Enqueue thêm yêu cầu gửi hóa đơn của một đơn hàng vào hàng đợi. Email để
// trống thì dùng email khách trên đơn; đơn không có email khách thì báo lỗi
// để client nhập địa chỉ nhận.
func (s *ReceiptMailService) Enqueue(ctx context.Context, order ordermodels.Order, email string) (ordermodels.ReceiptMailQueue, error) {
	if email == "" {
		email = order.CustomerEmail
	}
	if email == "" {
		return ordermodels.ReceiptMailQueue{}, common.NewError(
			common.ErrCodeValidationInput,
			"Đơn hàng không có email khách, cần truyền địa chỉ nhận hóa đơn",
			common.StatusBadRequest,
			nil,
		)
	}
	if err := utility.ValidateEmail(email); err != nil {
		return ordermodels.ReceiptMailQueue{}, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Địa chỉ email '%s' không hợp lệ", email),
			common.StatusBadRequest,
			nil,
		)
	}

	item := ordermodels.ReceiptMailQueue{
		OrderID: order.ID,
		Email:   email,
		Status:  ordermodels.MailStatusPending,
	}
	return s.InsertOne(ctx, item)
}

// FindPending trả về các yêu cầu đang chờ gửi, cũ nhất trước, tối đa limit bản ghi.
func (s *ReceiptMailService) FindPending(ctx context.Context, limit int64) ([]ordermodels.ReceiptMailQueue, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}).SetLimit(limit)
	return s.Find(ctx, bson.M{"status": ordermodels.MailStatusPending}, opts)
}

// MarkSent đánh dấu yêu cầu đã gửi thành công.
func (s *ReceiptMailService) MarkSent(ctx context.Context, id primitive.ObjectID, attempts int) error {
	_, err := s.UpdateById(ctx, id, &basesvc.UpdateData{Set: map[string]interface{}{
		"status":   ordermodels.MailStatusSent,
		"attempts": attempts,
		"sentAt":   utility.CurrentTimeInMilli(),
	}})
	return err
}

// MarkFailed ghi nhận một lần gửi thất bại. Chưa vượt số lần thử tối đa thì
// giữ pending để worker thử lại ở chu kỳ sau, vượt rồi thì chuyển failed.
func (s *ReceiptMailService) MarkFailed(ctx context.Context, id primitive.ObjectID, attempts int, sendErr error) error {
	status := ordermodels.MailStatusPending
	if attempts >= ordermodels.MailMaxAttempts {
		status = ordermodels.MailStatusFailed
	}
	_, err := s.UpdateById(ctx, id, &basesvc.UpdateData{Set: map[string]interface{}{
		"status":    status,
		"attempts":  attempts,
		"lastError": sendErr.Error(),
	}})
	return err
}

// DeleteByOrderID xóa mọi bản ghi hàng đợi của một đơn (cascade khi xóa đơn).
func (s *ReceiptMailService) DeleteByOrderID(ctx context.Context, orderID primitive.ObjectID) (int64, error) {
	return s.DeleteMany(ctx, bson.M{"orderId": orderID})
}

// DeleteProcessedBefore xóa các bản ghi đã xử lý xong (sent/failed) có updatedAt
// trước mốc cutoff (mili giây). Bản ghi pending không bị đụng tới.
func (s *ReceiptMailService) DeleteProcessedBefore(ctx context.Context, cutoffMs int64) (int64, error) {
	filter := bson.M{
		"status":    bson.M{"$in": []string{ordermodels.MailStatusSent, ordermodels.MailStatusFailed}},
		"updatedAt": bson.M{"$lt": cutoffMs},
	}
	return s.DeleteMany(ctx, filter)
}
