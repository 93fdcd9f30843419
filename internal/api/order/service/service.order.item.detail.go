package ordersvc

import (
	"context"
	"fmt"

	basesvc "print_commerce/internal/api/base/service"
	ordermodels "print_commerce/internal/api/order/models"
	"print_commerce/internal/common"
	"print_commerce/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderItemDetailService là cấu trúc chứa các phương thức liên quan đến bản ghi
// chi tiết dòng hàng. Bản ghi do checkout tạo ra và bất biến sau đó: API ngoài
// chỉ đọc, xóa duy nhất qua cascade khi xóa đơn.
type OrderItemDetailService struct {
	*basesvc.BaseServiceMongoImpl[ordermodels.OrderItemDetail]
}

// NewOrderItemDetailService tạo mới OrderItemDetailService.
func NewOrderItemDetailService() (*OrderItemDetailService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.OrderItemDetails)
	if !exist {
		return nil, fmt.Errorf("failed to get order_item_details collection: %v", common.ErrNotFound)
	}
	return &OrderItemDetailService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[ordermodels.OrderItemDetail](collection),
	}, nil
}

// FindByOrderID trả về toàn bộ bản ghi chi tiết của một đơn, theo thứ tự tạo.
func (s *OrderItemDetailService) FindByOrderID(ctx context.Context, orderID primitive.ObjectID) ([]ordermodels.OrderItemDetail, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return s.Find(ctx, bson.M{"orderId": orderID}, opts)
}

// DeleteByOrderID xóa toàn bộ bản ghi chi tiết của một đơn (cascade khi xóa đơn).
func (s *OrderItemDetailService) DeleteByOrderID(ctx context.Context, orderID primitive.ObjectID) (int64, error) {
	return s.DeleteMany(ctx, bson.M{"orderId": orderID})
}
