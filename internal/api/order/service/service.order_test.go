// Package ordersvc - Test phần thuần của checkout: mã đơn, snapshot chi tiết
// dòng hàng và các guard không chạm database.
package ordersvc

import (
	"context"
	"errors"
	"testing"
	"time"

	catalogmodels "print_commerce/internal/api/catalog/models"
	"print_commerce/internal/common"
	"print_commerce/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func deltaPtr(v float64) *float64 {
	return &v
}

func TestNewOrderCode_Format(t *testing.T) {
	now := time.Date(2026, 8, 25, 14, 30, 0, 0, time.UTC)

	code := newOrderCode(now)

	require.Regexp(t, `^ORD-20260825-[0-9a-f]{6}$`, code,
		"mã đơn phải có dạng ORD-YYYYMMDD-xxxxxx với hậu tố hex từ UUID")
}

func TestNewOrderCode_UsesUTCDate(t *testing.T) {
	// 5h sáng 25/08 ở UTC+7 vẫn là 22h ngày 24/08 theo UTC, phần ngày phải theo UTC.
	loc := time.FixedZone("UTC+7", 7*3600)
	now := time.Date(2026, 8, 25, 5, 0, 0, 0, loc)

	code := newOrderCode(now)

	assert.Contains(t, code, "ORD-20260824-", "phần ngày của mã đơn phải tính theo UTC")
}

func TestBuildItemDetail_SnapshotsSelectionInCatalogOrder(t *testing.T) {
	product := catalogmodels.CatalogProduct{
		ID:        primitive.NewObjectID(),
		Name:      "Poster",
		BasePrice: 20,
		Attributes: []catalogmodels.Attribute{
			{
				ID:   "a-paper",
				Name: "Chất liệu giấy",
				Options: []catalogmodels.AttributeOption{
					{ID: "o-couche", Label: "Couche"},
					{ID: "o-art", Label: "Mỹ thuật", PriceDelta: deltaPtr(5.5)},
				},
			},
			{
				ID:   "a-color",
				Name: "Màu in",
				Options: []catalogmodels.AttributeOption{
					{ID: "o-black", Label: "Đen trắng"},
					{ID: "o-cmyk", Label: "CMYK", PriceDelta: deltaPtr(0)},
				},
			},
		},
	}
	item := CheckoutItem{
		ProductID:    product.ID,
		Quantity:     2,
		Selection:    catalogmodels.Selection{"a-color": "o-black", "a-paper": "o-art"},
		SelectedSize: "A4",
	}
	breakdown := &pricing.PriceBreakdown{
		Base:       20,
		Deltas:     []float64{5.5, 0},
		UnitPrice:  25.50,
		TotalPrice: 51.00,
		Quantity:   2,
	}

	detail := buildItemDetail(product, item, breakdown)

	assert.Equal(t, product.ID, detail.ProductID)
	assert.Equal(t, "Poster", detail.ProductName)
	assert.Equal(t, 2, detail.Quantity)
	assert.Equal(t, 25.50, detail.UnitPrice)
	assert.Equal(t, 51.00, detail.TotalPrice)
	assert.Equal(t, item.Selection, detail.Selection, "selection gốc phải được giữ nguyên dạng")
	assert.Equal(t, pricing.GenerateVariantSignature(item.Selection), detail.VariantSignature)
	assert.Equal(t, "A4", detail.SelectedSize)

	require.Len(t, detail.SelectedAttributesHuman, 2)
	first, second := detail.SelectedAttributesHuman[0], detail.SelectedAttributesHuman[1]
	assert.Equal(t, "a-paper", first.AttributeID, "nhãn phải theo thứ tự catalog, không theo thứ tự map")
	assert.Equal(t, "Mỹ thuật", first.OptionLabel)
	assert.Equal(t, 5.5, first.PriceDelta)
	assert.Equal(t, 1, first.AttributeOrder)
	assert.Equal(t, 2, first.OptionOrder)
	assert.Equal(t, "a-color", second.AttributeID)
	assert.Equal(t, "Đen trắng", second.OptionLabel)
	assert.Equal(t, 0.0, second.PriceDelta)
	assert.Equal(t, 2, second.AttributeOrder)
	assert.Equal(t, 1, second.OptionOrder)

	require.NotNil(t, detail.Math)
	assert.Equal(t, 20.0, detail.Math.Base)
	assert.Equal(t, []float64{5.5, 0}, detail.Math.Deltas,
		"deltas phải giữ cả giá trị 0 để thẳng hàng với thứ tự thuộc tính")
}

func TestCheckout_EmptyCartRejected(t *testing.T) {
	svc := &OrderService{}

	_, err := svc.Checkout(context.Background(), CheckoutParams{})

	require.Error(t, err)
	var customErr *common.Error
	require.True(t, errors.As(err, &customErr))
	assert.Equal(t, common.ErrCodeValidationInput, customErr.Code)
	assert.Equal(t, common.StatusBadRequest, customErr.StatusCode)
}

func TestCheckout_DuplicateProductRejected(t *testing.T) {
	svc := &OrderService{}
	productID := primitive.NewObjectID()
	params := CheckoutParams{
		Items: []CheckoutItem{
			{ProductID: productID, Quantity: 1, Selection: catalogmodels.Selection{}},
			{ProductID: productID, Quantity: 2, Selection: catalogmodels.Selection{}},
		},
	}

	_, err := svc.Checkout(context.Background(), params)

	require.Error(t, err)
	var customErr *common.Error
	require.True(t, errors.As(err, &customErr))
	assert.Equal(t, common.ErrCodeValidationInput, customErr.Code)
	assert.Contains(t, customErr.Message, productID.Hex())
}
