package orderhdl

import (
	"fmt"

	basehdl "print_commerce/internal/api/base/handler"
	ordermodels "print_commerce/internal/api/order/models"
	ordersvc "print_commerce/internal/api/order/service"
)

// OrderItemDetailHandler xử lý các yêu cầu đọc bản ghi chi tiết dòng hàng.
// Bản ghi do checkout tạo và bất biến nên không có input riêng, dùng thẳng
// model làm tham số kiểu (các route ghi không được đăng ký).
type OrderItemDetailHandler struct {
	*basehdl.BaseHandler[ordermodels.OrderItemDetail, ordermodels.OrderItemDetail, ordermodels.OrderItemDetail]
	OrderItemDetailService *ordersvc.OrderItemDetailService
}

// NewOrderItemDetailHandler khởi tạo OrderItemDetailHandler mới
func NewOrderItemDetailHandler() (*OrderItemDetailHandler, error) {
	service, err := ordersvc.NewOrderItemDetailService()
	if err != nil {
		return nil, fmt.Errorf("failed to create order item detail service: %v", err)
	}
	hdl := &OrderItemDetailHandler{OrderItemDetailService: service}
	hdl.BaseHandler = basehdl.NewBaseHandler[ordermodels.OrderItemDetail, ordermodels.OrderItemDetail, ordermodels.OrderItemDetail](service)
	return hdl, nil
}
