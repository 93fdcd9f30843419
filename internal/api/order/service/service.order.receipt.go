package ordersvc

import (
	"context"

	ordermodels "print_commerce/internal/api/order/models"
	"print_commerce/internal/receipt"
	"print_commerce/internal/utility"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BuildReceipt dựng lại hóa đơn của một đơn hàng từ dữ liệu đã lưu. Mọi đường
// xuất hóa đơn (xem, tải file, gửi email) đều đi qua đây rồi render từ cùng
// một Document nên cho ra cùng một chuỗi byte.
func (s *OrderService) BuildReceipt(ctx context.Context, orderID primitive.ObjectID) (*receipt.Document, error) {
	order, err := s.FindOneById(ctx, orderID)
	if err != nil {
		return nil, err
	}
	details, err := s.detailService.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return BuildReceiptFromRecords(order, details), nil
}

// BuildReceiptFromRecords ánh xạ đơn hàng và các bản ghi chi tiết đã lưu sang
// tài liệu hóa đơn. Hàm thuần: dòng hàng thiếu bản ghi chi tiết do formatter
// tự rơi về hiển thị tối giản, ở đây chỉ ánh xạ những gì có.
func BuildReceiptFromRecords(order ordermodels.Order, details []ordermodels.OrderItemDetail) *receipt.Document {
	displayID := order.Code
	if displayID == "" {
		displayID = order.ID.Hex()
	}

	items := make([]receipt.OrderItemRef, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, receipt.OrderItemRef{
			ProductID:  item.ProductID.Hex(),
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		})
	}

	detailByProductID := make(map[string]*receipt.ItemDetail, len(details))
	for i := range details {
		detail := toReceiptDetail(details[i])
		detailByProductID[detail.ProductID] = detail
	}

	info := receipt.OrderInfo{
		ID:     displayID,
		Status: order.Status,
		Customer: receipt.Customer{
			Name:    order.CustomerName,
			Email:   order.CustomerEmail,
			Address: order.CustomerAddress,
		},
		Currency: order.Currency,
		Items:    items,
		Total:    order.TotalAmount,
	}
	if order.CreatedAt > 0 {
		info.Date = utility.TimeFromMilli(order.CreatedAt)
	}

	return receipt.BuildReceiptDocument(info, detailByProductID)
}

// toReceiptDetail chuyển một bản ghi chi tiết dòng hàng sang dạng formatter dùng.
func toReceiptDetail(detail ordermodels.OrderItemDetail) *receipt.ItemDetail {
	qualifiers := make([]receipt.Qualifier, 0, len(detail.SelectedAttributesHuman))
	for _, sel := range detail.SelectedAttributesHuman {
		qualifiers = append(qualifiers, receipt.Qualifier{
			AttributeName:  sel.AttributeName,
			OptionLabel:    sel.OptionLabel,
			AttributeOrder: sel.AttributeOrder,
			OptionOrder:    sel.OptionOrder,
		})
	}

	out := &receipt.ItemDetail{
		ProductID:    detail.ProductID.Hex(),
		ProductName:  detail.ProductName,
		Quantity:     detail.Quantity,
		UnitPrice:    detail.UnitPrice,
		TotalPrice:   detail.TotalPrice,
		SelectedSize: detail.SelectedSize,
		Qualifiers:   qualifiers,
	}
	if detail.Math != nil {
		out.Math = &receipt.PriceMath{
			Base:   detail.Math.Base,
			Deltas: detail.Math.Deltas,
		}
	}
	return out
}
