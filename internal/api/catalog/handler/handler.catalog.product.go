// Package cataloghdl xử lý các yêu cầu HTTP cho domain catalog: CRUD sản
// phẩm (qua base handler) và các route storefront: xem sản phẩm, báo giá
// biến thể, bật/tắt bày bán.
package cataloghdl

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basehdl "print_commerce/internal/api/base/handler"
	catalogdto "print_commerce/internal/api/catalog/dto"
	catalogmodels "print_commerce/internal/api/catalog/models"
	catalogsvc "print_commerce/internal/api/catalog/service"
	"print_commerce/internal/api/middleware"
	"print_commerce/internal/common"
	"print_commerce/internal/global"
	"print_commerce/internal/kvstore"
	"print_commerce/internal/logger"
	"print_commerce/internal/pricing"
)

// selectionSourceDefault / selectionSourceRemembered đánh dấu nguồn selection
// trả về trên trang sản phẩm.
const (
	selectionSourceDefault    = "default"
	selectionSourceRemembered = "remembered"
)

// CatalogProductHandler xử lý các yêu cầu liên quan đến sản phẩm catalog
type CatalogProductHandler struct {
	*basehdl.BaseHandler[catalogmodels.CatalogProduct, catalogdto.CatalogProductCreateInput, catalogdto.CatalogProductUpdateInput]
	CatalogProductService *catalogsvc.CatalogProductService
	Loader                *catalogsvc.CatalogLoader
	Selections            kvstore.Store
	selectionTTL          time.Duration
}

// NewCatalogProductHandler khởi tạo CatalogProductHandler mới
func NewCatalogProductHandler() (*CatalogProductHandler, error) {
	service, err := catalogsvc.NewCatalogProductService()
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog product service: %v", err)
	}

	selectionTTL := 60 * time.Minute
	if global.MongoDB_ServerConfig != nil && global.MongoDB_ServerConfig.SelectionTTL_Minutes > 0 {
		selectionTTL = time.Duration(global.MongoDB_ServerConfig.SelectionTTL_Minutes) * time.Minute
	}

	hdl := &CatalogProductHandler{
		CatalogProductService: service,
		Loader:                catalogsvc.NewCatalogLoader(service, 0),
		Selections:            kvstore.NewStore(global.RedisClient),
		selectionTTL:          selectionTTL,
	}
	hdl.BaseHandler = basehdl.NewBaseHandler[catalogmodels.CatalogProduct, catalogdto.CatalogProductCreateInput, catalogdto.CatalogProductUpdateInput](service)
	return hdl, nil
}

// HandleView trả về dữ liệu trang sản phẩm: catalog đã chuẩn hóa, selection
// ban đầu (lựa chọn đã nhớ của client nếu còn hợp lệ, không thì mặc định) và
// giá khởi điểm ở số lượng 1.
//
// Tải catalog theo latest-wins: client bấm nhanh sang sản phẩm khác thì lần
// xem trước bị hủy và trả về 409 — client bỏ response đó, chỉ render lần mới.
func (h *CatalogProductHandler) HandleView(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		productID, err := h.parseProductID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		clientID := middleware.GetClientID(c)
		view, err := h.Loader.Load(c.Context(), clientID, productID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		// Selection ban đầu: ưu tiên lựa chọn client đã lưu, fallback mặc định
		selection := make(catalogmodels.Selection, len(view.Defaults))
		for attrID, optionID := range view.Defaults {
			selection[attrID] = optionID
		}
		source := selectionSourceDefault
		if remembered, ok := h.rememberedSelection(c, clientID, productID, view); ok {
			selection = remembered
			source = selectionSourceRemembered
		}

		breakdown, err := pricing.ComputePrice(view.Product.BasePrice, view.Product.Attributes, selection, 1)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		h.HandleResponse(c, &catalogdto.ProductViewResponse{
			ID:               view.Product.ID.Hex(),
			Name:             view.Product.Name,
			Slug:             view.Product.Slug,
			Description:      view.Product.Description,
			BasePrice:        view.Product.BasePrice,
			Currency:         view.Product.Currency,
			ImageURL:         view.Product.ImageURL,
			Sizes:            view.Product.Sizes,
			Attributes:       view.Product.Attributes,
			Selection:        selection,
			SelectionSource:  source,
			Breakdown:        breakdown,
			VariantSignature: pricing.GenerateVariantSignature(selection),
		}, nil)
		return nil
	})
}

// HandleQuote báo giá một cấu hình sản phẩm: validate selection với catalog,
// tính PriceBreakdown + chữ ký biến thể, đồng thời nhớ lại selection cho
// client để lần mở trang sau khôi phục đúng cấu hình đang xem.
func (h *CatalogProductHandler) HandleQuote(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		productID, err := h.parseProductID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		input := new(catalogdto.QuoteInput)
		if err := h.ParseRequestBody(c, input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		view, err := h.Loader.GetCatalog(c.Context(), productID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		if err := catalogsvc.ValidateSelection(view.Product.Attributes, input.Selection); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		breakdown, err := pricing.ComputePrice(view.Product.BasePrice, view.Product.Attributes, input.Selection, input.Quantity)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		h.rememberSelection(c, middleware.GetClientID(c), productID, input.Selection)

		h.HandleResponse(c, &catalogdto.QuoteResponse{
			ProductID:        productID.Hex(),
			Selection:        input.Selection,
			Breakdown:        breakdown,
			VariantSignature: pricing.GenerateVariantSignature(input.Selection),
			Currency:         view.Product.Currency,
		}, nil)
		return nil
	})
}

// HandleSetStatus bật/tắt bày bán sản phẩm.
func (h *CatalogProductHandler) HandleSetStatus(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		productID, err := h.parseProductID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		input := new(catalogdto.CatalogProductStatusInput)
		if err := h.ParseRequestBody(c, input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		data, err := h.CatalogProductService.SetActive(c.Context(), productID, input.IsActive)
		h.HandleResponse(c, data, err)
		return nil
	})
}

// DeleteById xóa sản phẩm theo id, chặn khi còn dòng hàng tham chiếu (hóa đơn
// cũ cần dữ liệu sản phẩm để đối chiếu). Che route delete-by-id của base.
func (h *CatalogProductHandler) DeleteById(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		productID, err := h.parseProductID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err = h.CatalogProductService.DeleteProductById(c.Context(), productID)
		h.HandleResponse(c, nil, err)
		return nil
	})
}

// parseProductID lấy và kiểm tra product id từ URL params.
func (h *CatalogProductHandler) parseProductID(c fiber.Ctx) (primitive.ObjectID, error) {
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

// selectionKey là key kvstore cho lựa chọn đã nhớ của một client trên một sản phẩm.
func selectionKey(clientID string, productID primitive.ObjectID) string {
	return "selection:" + clientID + ":" + productID.Hex()
}

// rememberedSelection đọc lựa chọn đã lưu của client và kiểm tra còn hợp lệ
// với catalog hiện tại không. Catalog đã đổi làm lựa chọn cũ không khớp thì
// xóa khỏi store và coi như chưa có.
func (h *CatalogProductHandler) rememberedSelection(c fiber.Ctx, clientID string, productID primitive.ObjectID, view *catalogsvc.ProductCatalogView) (catalogmodels.Selection, bool) {
	if clientID == "" {
		return nil, false
	}

	key := selectionKey(clientID, productID)
	raw, exists, err := h.Selections.Get(c.Context(), key)
	if err != nil {
		logger.WithModule("catalog").WithError(err).Warn("Không đọc được lựa chọn đã lưu của client")
		return nil, false
	}
	if !exists {
		return nil, false
	}

	var selection catalogmodels.Selection
	if err := json.Unmarshal([]byte(raw), &selection); err != nil {
		_ = h.Selections.Remove(c.Context(), key)
		return nil, false
	}

	if err := catalogsvc.ValidateSelection(view.Product.Attributes, selection); err != nil {
		// Catalog đã đổi từ lần lưu, lựa chọn cũ không còn dùng được
		logger.WithModule("catalog").WithFields(logrus.Fields{
			"client_id":  clientID,
			"product_id": productID.Hex(),
		}).Info("Lựa chọn đã lưu không còn khớp catalog, dùng mặc định")
		_ = h.Selections.Remove(c.Context(), key)
		return nil, false
	}
	return selection, true
}

// rememberSelection lưu lựa chọn của client với TTL cấu hình. Lưu thất bại
// chỉ ghi log — đây là tiện ích UX, không được chặn báo giá.
func (h *CatalogProductHandler) rememberSelection(c fiber.Ctx, clientID string, productID primitive.ObjectID, selection catalogmodels.Selection) {
	if clientID == "" {
		return
	}
	raw, err := json.Marshal(selection)
	if err != nil {
		return
	}
	if err := h.Selections.Set(c.Context(), selectionKey(clientID, productID), string(raw), h.selectionTTL); err != nil {
		logger.WithModule("catalog").WithError(err).Warn("Không lưu được lựa chọn của client")
	}
}
