package ordersvc

import (
	"context"
	"fmt"
	"strings"
	"time"

	basesvc "print_commerce/internal/api/base/service"
	catalogmodels "print_commerce/internal/api/catalog/models"
	catalogsvc "print_commerce/internal/api/catalog/service"
	ordermodels "print_commerce/internal/api/order/models"
	"print_commerce/internal/common"
	"print_commerce/internal/global"
	"print_commerce/internal/logger"
	"print_commerce/internal/pricing"
	"print_commerce/internal/utility"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckoutItem là một dòng hàng checkout sau khi binding: product id đã parse,
// selection nguyên dạng client gửi lên. Giá không nằm ở đây, server tự tính.
type CheckoutItem struct {
	ProductID    primitive.ObjectID
	Quantity     int
	Selection    catalogmodels.Selection
	SelectedSize string
}

// CheckoutParams là toàn bộ dữ liệu đầu vào của một lần checkout.
type CheckoutParams struct {
	CustomerName    string
	CustomerEmail   string
	CustomerAddress string
	Items           []CheckoutItem
}

// CheckoutResult là kết quả checkout: đơn đã ghi cùng các bản ghi chi tiết.
type CheckoutResult struct {
	Order   ordermodels.Order
	Details []ordermodels.OrderItemDetail
}

// OrderService là cấu trúc chứa các phương thức liên quan đến đơn hàng
type OrderService struct {
	*basesvc.BaseServiceMongoImpl[ordermodels.Order]
	detailService *OrderItemDetailService
	mailService   *ReceiptMailService
	loader        *catalogsvc.CatalogLoader
}

// NewOrderService tạo mới OrderService.
func NewOrderService() (*OrderService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Orders)
	if !exist {
		return nil, fmt.Errorf("failed to get orders collection: %v", common.ErrNotFound)
	}
	detailService, err := NewOrderItemDetailService()
	if err != nil {
		return nil, err
	}
	mailService, err := NewReceiptMailService()
	if err != nil {
		return nil, err
	}
	catalogService, err := catalogsvc.NewCatalogProductService()
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog product service: %v", err)
	}

	return &OrderService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[ordermodels.Order](collection),
		detailService:        detailService,
		mailService:          mailService,
		loader:               catalogsvc.NewCatalogLoader(catalogService, 0),
	}, nil
}

// Checkout tạo đơn hàng với tính giá authoritative phía server: với từng dòng
// hàng tải catalog sản phẩm (qua cache chuẩn hóa), kiểm tra selection, tính
// lại breakdown và chữ ký biến thể rồi ghi đơn cùng một bản ghi chi tiết cho
// mỗi dòng. Giá client đã thấy ở bước báo giá không tham gia vào kết quả.
func (s *OrderService) Checkout(ctx context.Context, params CheckoutParams) (*CheckoutResult, error) {
	if len(params.Items) == 0 {
		return nil, common.NewError(
			common.ErrCodeValidationInput,
			"Giỏ hàng trống, cần ít nhất một dòng hàng",
			common.StatusBadRequest,
			nil,
		)
	}

	// Mỗi đơn mỗi sản phẩm một bản ghi chi tiết (unique index orderId+productId),
	// nên giỏ có sản phẩm lặp phải chặn từ đầu.
	seen := make(map[primitive.ObjectID]bool, len(params.Items))
	for _, item := range params.Items {
		if seen[item.ProductID] {
			return nil, common.NewError(
				common.ErrCodeValidationInput,
				fmt.Sprintf("Sản phẩm '%s' xuất hiện nhiều lần trong giỏ, mỗi sản phẩm chỉ được một dòng", item.ProductID.Hex()),
				common.StatusBadRequest,
				nil,
			)
		}
		seen[item.ProductID] = true
	}

	items := make([]ordermodels.OrderItem, 0, len(params.Items))
	details := make([]ordermodels.OrderItemDetail, 0, len(params.Items))
	currency := ""
	total := 0.0

	for _, item := range params.Items {
		view, err := s.loader.GetCatalog(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		product := view.Product

		if item.SelectedSize != "" && len(product.Sizes) > 0 && !utility.Contains(product.Sizes, item.SelectedSize) {
			return nil, fmt.Errorf("size %q không có trong danh sách size của sản phẩm %q: %w",
				item.SelectedSize, product.Name, common.ErrInvalidSelection)
		}

		if err := catalogsvc.ValidateSelection(product.Attributes, item.Selection); err != nil {
			return nil, err
		}

		breakdown, err := pricing.ComputePrice(product.BasePrice, product.Attributes, item.Selection, item.Quantity)
		if err != nil {
			return nil, err
		}

		itemCurrency := product.Currency
		if itemCurrency == "" && global.MongoDB_ServerConfig != nil {
			itemCurrency = global.MongoDB_ServerConfig.DefaultCurrency
		}
		if currency == "" {
			currency = itemCurrency
		} else if itemCurrency != "" && itemCurrency != currency {
			return nil, common.NewError(
				common.ErrCodeBusinessOperation,
				fmt.Sprintf("Các sản phẩm trong giỏ không cùng đơn vị tiền tệ (%s và %s)", currency, itemCurrency),
				common.StatusBadRequest,
				nil,
			)
		}

		items = append(items, ordermodels.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    breakdown.Quantity,
			UnitPrice:   breakdown.UnitPrice,
			TotalPrice:  breakdown.TotalPrice,
		})
		details = append(details, buildItemDetail(product, item, breakdown))
		total += breakdown.TotalPrice
	}

	order := ordermodels.Order{
		Code:            newOrderCode(time.Now()),
		CustomerName:    params.CustomerName,
		CustomerEmail:   params.CustomerEmail,
		CustomerAddress: params.CustomerAddress,
		Status:          ordermodels.OrderStatusConfirmed,
		Currency:        currency,
		Items:           items,
		TotalAmount:     utility.Round2(total),
	}

	created, err := s.InsertOne(ctx, order)
	if err != nil {
		return nil, err
	}

	for i := range details {
		details[i].OrderID = created.ID
	}
	insertedDetails, err := s.detailService.InsertMany(ctx, details)
	if err != nil {
		// Không có transaction trên Mongo standalone: gỡ đơn vừa ghi để không
		// để lại đơn thiếu chi tiết, gỡ không được thì ghi log để xử lý tay.
		if delErr := s.DeleteById(ctx, created.ID); delErr != nil {
			logger.WithModule("order").WithFields(logrus.Fields{
				"order_id": created.ID.Hex(),
				"error":    delErr.Error(),
			}).Error("Ghi chi tiết dòng hàng thất bại và không gỡ được đơn đã tạo")
		}
		return nil, err
	}

	logger.WithModule("order").WithFields(logrus.Fields{
		"order_id": created.ID.Hex(),
		"code":     created.Code,
		"items":    len(created.Items),
		"total":    created.TotalAmount,
	}).Info("Đã tạo đơn hàng")

	return &CheckoutResult{Order: created, Details: insertedDetails}, nil
}

// DeleteOrderById xóa một đơn hàng cùng dữ liệu phụ thuộc. Còn email hóa đơn
// đang chờ gửi thì chặn lại; bản ghi chi tiết và lịch sử hàng đợi mail của
// đơn được xóa theo (cascade).
func (s *OrderService) DeleteOrderById(ctx context.Context, id primitive.ObjectID) error {
	if err := basesvc.ValidateBeforeDeleteOrder(ctx, id); err != nil {
		return err
	}

	mailCount, err := s.mailService.DeleteByOrderID(ctx, id)
	if err != nil {
		return err
	}
	detailCount, err := s.detailService.DeleteByOrderID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.BaseServiceMongoImpl.DeleteById(ctx, id); err != nil {
		return err
	}

	logger.WithModule("order").WithFields(logrus.Fields{
		"order_id":      id.Hex(),
		"details_freed": detailCount,
		"mails_freed":   mailCount,
	}).Info("Đã xóa đơn hàng cùng dữ liệu phụ thuộc")
	return nil
}

// buildItemDetail chụp lại cấu hình biến thể của một dòng hàng: selection gốc,
// chữ ký, nhãn người đọc được theo thứ tự catalog và phần toán giá đã xác nhận.
func buildItemDetail(product catalogmodels.CatalogProduct, item CheckoutItem, breakdown *pricing.PriceBreakdown) ordermodels.OrderItemDetail {
	selected := catalogsvc.DescribeSelection(product.Attributes, item.Selection)
	human := make([]ordermodels.SelectedAttribute, 0, len(selected))
	for _, sel := range selected {
		human = append(human, ordermodels.SelectedAttribute{
			AttributeID:    sel.AttributeID,
			OptionID:       sel.OptionID,
			AttributeName:  sel.AttributeName,
			OptionLabel:    sel.OptionLabel,
			PriceDelta:     sel.PriceDelta,
			AttributeOrder: sel.AttributeOrder,
			OptionOrder:    sel.OptionOrder,
		})
	}

	return ordermodels.OrderItemDetail{
		ProductID:               product.ID,
		ProductName:             product.Name,
		Quantity:                breakdown.Quantity,
		UnitPrice:               breakdown.UnitPrice,
		TotalPrice:              breakdown.TotalPrice,
		Selection:               item.Selection,
		VariantSignature:        pricing.GenerateVariantSignature(item.Selection),
		SelectedSize:            item.SelectedSize,
		SelectedAttributesHuman: human,
		Math: &ordermodels.PriceMath{
			Base:   breakdown.Base,
			Deltas: breakdown.Deltas,
		},
	}
}

// newOrderCode sinh mã đơn dạng ORD-YYYYMMDD-xxxxxx với hậu tố lấy từ UUID.
// Mã có unique index; xác suất trùng trong cùng một ngày đủ nhỏ để không cần
// vòng retry.
func newOrderCode(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix)
}
