// Package orderhdl xử lý các yêu cầu HTTP cho domain đơn hàng: checkout,
// đọc đơn (qua base handler) và các route hóa đơn: xem, tải file, gửi email.
package orderhdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basehdl "print_commerce/internal/api/base/handler"
	orderdto "print_commerce/internal/api/order/dto"
	ordermodels "print_commerce/internal/api/order/models"
	ordersvc "print_commerce/internal/api/order/service"
	"print_commerce/internal/common"
	"print_commerce/internal/logger"
)

// OrderHandler xử lý các yêu cầu liên quan đến đơn hàng
type OrderHandler struct {
	*basehdl.BaseHandler[ordermodels.Order, orderdto.CheckoutInput, orderdto.CheckoutInput]
	OrderService *ordersvc.OrderService
	MailService  *ordersvc.ReceiptMailService
}

// NewOrderHandler khởi tạo OrderHandler mới
func NewOrderHandler() (*OrderHandler, error) {
	service, err := ordersvc.NewOrderService()
	if err != nil {
		return nil, fmt.Errorf("failed to create order service: %v", err)
	}
	mailService, err := ordersvc.NewReceiptMailService()
	if err != nil {
		return nil, fmt.Errorf("failed to create receipt mail service: %v", err)
	}

	hdl := &OrderHandler{
		OrderService: service,
		MailService:  mailService,
	}
	// Dùng full service để CRUD đi qua BaseServiceMongoImpl (đã tích hợp EmitDataChanged)
	hdl.BaseHandler = basehdl.NewBaseHandler[ordermodels.Order, orderdto.CheckoutInput, orderdto.CheckoutInput](service)
	return hdl, nil
}

// HandleCheckout tạo đơn hàng từ giỏ của client. Server tính lại toàn bộ giá
// từ catalog hiện tại. Breakdown client đã thấy ở bước báo giá chỉ để hiển
// thị, không được gửi lên và không ảnh hưởng kết quả.
func (h *OrderHandler) HandleCheckout(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		input := new(orderdto.CheckoutInput)
		if err := h.ParseRequestBody(c, input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		params, err := toCheckoutParams(input)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		result, err := h.OrderService.Checkout(c.Context(), params)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		logger.LogCheckout(result.Order.ID.Hex(), c, map[string]interface{}{
			"code":  result.Order.Code,
			"items": len(result.Order.Items),
			"total": result.Order.TotalAmount,
		})
		h.HandleResponse(c, &orderdto.CheckoutResponse{
			Order:   &result.Order,
			Details: result.Details,
		}, nil)
		return nil
	})
}

// HandleReceiptView trả về hóa đơn của đơn hàng: tài liệu có cấu trúc kèm bản
// text đã render. Text ở đây giống từng byte với bản tải về và bản gửi email.
func (h *OrderHandler) HandleReceiptView(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		orderID, err := h.parseOrderID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		doc, err := h.OrderService.BuildReceipt(c.Context(), orderID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		logger.LogReceipt("view", orderID.Hex(), c, nil)
		h.HandleResponse(c, &orderdto.ReceiptResponse{
			Document: doc,
			Text:     doc.Render(),
			Filename: doc.Filename(),
		}, nil)
		return nil
	})
}

// HandleReceiptDownload trả về hóa đơn dưới dạng file text đính kèm.
func (h *OrderHandler) HandleReceiptDownload(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		orderID, err := h.parseOrderID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		doc, err := h.OrderService.BuildReceipt(c.Context(), orderID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		logger.LogReceipt("download", orderID.Hex(), c, map[string]interface{}{
			"filename": doc.Filename(),
		})
		c.Set("Content-Type", "text/plain; charset=utf-8")
		c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename()))
		return c.Status(common.StatusOK).SendString(doc.Render())
	})
}

// HandleReceiptEmail đưa yêu cầu gửi hóa đơn vào hàng đợi để worker xử lý.
// Body có thể bỏ trống, khi đó gửi về email khách đã lưu trên đơn.
func (h *OrderHandler) HandleReceiptEmail(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		orderID, err := h.parseOrderID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		input := new(orderdto.ReceiptEmailInput)
		if len(c.Body()) > 0 {
			if err := h.ParseRequestBody(c, input); err != nil {
				h.HandleResponse(c, nil, err)
				return nil
			}
		}

		order, err := h.OrderService.FindOneById(c.Context(), orderID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		item, err := h.MailService.Enqueue(c.Context(), order, input.Email)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		logger.LogReceipt("email", orderID.Hex(), c, map[string]interface{}{
			"email": item.Email,
		})
		h.HandleResponse(c, &orderdto.ReceiptEmailResponse{
			QueueID: item.ID.Hex(),
			OrderID: orderID.Hex(),
			Email:   item.Email,
			Status:  item.Status,
		}, nil)
		return nil
	})
}

// DeleteById ghi đè handler xóa mặc định: chặn khi còn email hóa đơn chờ gửi
// và xóa kèm bản ghi chi tiết cùng lịch sử hàng đợi mail của đơn.
func (h *OrderHandler) DeleteById(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		orderID, err := h.parseOrderID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err = h.OrderService.DeleteOrderById(c.Context(), orderID)
		h.HandleResponse(c, nil, err)
		return nil
	})
}

// parseOrderID lấy và kiểm tra order id từ URL params.
func (h *OrderHandler) parseOrderID(c fiber.Ctx) (primitive.ObjectID, error) {
	id := h.GetIDFromContext(c)
	if id == "" {
		return primitive.NilObjectID, common.NewError(
			common.ErrCodeValidationFormat,
			"ID không được để trống trong URL params",
			common.StatusBadRequest,
			nil,
		)
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("ID '%s' không đúng định dạng MongoDB ObjectID (phải là chuỗi hex 24 ký tự)", id),
			common.StatusBadRequest,
			nil,
		)
	}
	return objectID, nil
}

// toCheckoutParams chuyển input đã validate sang tham số service: parse các
// product id hex sang ObjectID, báo lỗi định dạng theo từng dòng.
func toCheckoutParams(input *orderdto.CheckoutInput) (ordersvc.CheckoutParams, error) {
	items := make([]ordersvc.CheckoutItem, 0, len(input.Items))
	for i, item := range input.Items {
		productID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return ordersvc.CheckoutParams{}, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dòng hàng thứ %d: product id '%s' không đúng định dạng MongoDB ObjectID", i+1, item.ProductID),
				common.StatusBadRequest,
				nil,
			)
		}
		items = append(items, ordersvc.CheckoutItem{
			ProductID:    productID,
			Quantity:     item.Quantity,
			Selection:    item.Selection,
			SelectedSize: item.SelectedSize,
		})
	}
	return ordersvc.CheckoutParams{
		CustomerName:    input.CustomerName,
		CustomerEmail:   input.CustomerEmail,
		CustomerAddress: input.CustomerAddress,
		Items:           items,
	}, nil
}
