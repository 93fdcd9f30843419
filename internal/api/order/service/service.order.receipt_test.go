// Package ordersvc - Test ánh xạ đơn hàng đã lưu sang tài liệu hóa đơn.
package ordersvc

import (
	"testing"
	"time"

	ordermodels "print_commerce/internal/api/order/models"
	"print_commerce/internal/receipt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// sampleOrder dựng một đơn hai dòng hàng: dòng đầu có bản ghi chi tiết đầy đủ,
// dòng sau cố tình không có để kiểm tra đường fallback.
func sampleOrder(t *testing.T) (ordermodels.Order, []ordermodels.OrderItemDetail) {
	t.Helper()

	cardID, err := primitive.ObjectIDFromHex("65f0a1b2c3d4e5f6a7b8c9d0")
	require.NoError(t, err)
	mugID, err := primitive.ObjectIDFromHex("65f0a1b2c3d4e5f6a7b8c9d1")
	require.NoError(t, err)

	order := ordermodels.Order{
		ID:            primitive.NewObjectID(),
		Code:          "ORD-20260315-ab12cd",
		CustomerName:  "Trần Thị B",
		CustomerEmail: "b@example.com",
		Status:        ordermodels.OrderStatusConfirmed,
		Currency:      "USD",
		Items: []ordermodels.OrderItem{
			{ProductID: cardID, ProductName: "Business Cards", Quantity: 10, UnitPrice: 12.50, TotalPrice: 125.00},
			{ProductID: mugID, ProductName: "Mug", Quantity: 2, UnitPrice: 14.50, TotalPrice: 29.00},
		},
		TotalAmount: 154.00,
		CreatedAt:   time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC).UnixMilli(),
	}
	details := []ordermodels.OrderItemDetail{
		{
			OrderID:     order.ID,
			ProductID:   cardID,
			ProductName: "Business Cards",
			Quantity:    10,
			UnitPrice:   12.50,
			TotalPrice:  125.00,
			SelectedAttributesHuman: []ordermodels.SelectedAttribute{
				{AttributeID: "a-paper", OptionID: "o-premium", AttributeName: "Paper", OptionLabel: "Premium", PriceDelta: 2.5, AttributeOrder: 1, OptionOrder: 2},
			},
			Math: &ordermodels.PriceMath{Base: 10, Deltas: []float64{2.5}},
		},
	}
	return order, details
}

func TestBuildReceiptFromRecords_MapsStoredRecords(t *testing.T) {
	order, details := sampleOrder(t)

	doc := BuildReceiptFromRecords(order, details)

	require.NotNil(t, doc)
	assert.Equal(t, "ORD-20260315-ab12cd", doc.OrderID, "hóa đơn hiển thị mã đơn, không phải ObjectID")
	assert.Equal(t, "2026-03-15 09:30", doc.Date, "ngày lấy từ CreatedAt của đơn, format UTC")
	assert.Equal(t, "confirmed", doc.Status)
	assert.Equal(t, "Trần Thị B", doc.Customer.Name)
	assert.Equal(t, "b@example.com", doc.Customer.Email)
	assert.Equal(t, receipt.Placeholder, doc.Customer.Address, "trường khách để trống phải thành placeholder")

	require.Len(t, doc.Lines, 2)
	assert.Equal(t, "Business Cards (Paper: Premium): 10 x $(10.00 + 2.50) = $125.00", doc.Lines[0],
		"dòng có bản ghi chi tiết phải render đủ qualifier và biểu thức giá")
	assert.Equal(t, "Total: USD 154.00", doc.TotalLine)
}

func TestBuildReceiptFromRecords_MissingDetailFallsBack(t *testing.T) {
	order, details := sampleOrder(t)

	doc := BuildReceiptFromRecords(order, details)

	require.Len(t, doc.Lines, 2)
	// Dòng Mug không có bản ghi chi tiết: tên rơi về product id, giá lấy từ
	// snapshot phẳng, không qualifier. Hóa đơn vẫn render đầy đủ.
	assert.Equal(t, "65f0a1b2c3d4e5f6a7b8c9d1: 2 x $(14.50) = $29.00", doc.Lines[1])
}

func TestBuildReceiptFromRecords_RenderIsFixedPoint(t *testing.T) {
	order, details := sampleOrder(t)

	doc := BuildReceiptFromRecords(order, details)
	first := doc.Render()
	second := doc.Render()

	assert.Equal(t, first, second, "render nhiều lần phải cho cùng một chuỗi byte")

	expected := "Receipt\n" +
		"=======\n" +
		"Order: ORD-20260315-ab12cd\n" +
		"Date: 2026-03-15 09:30\n" +
		"Status: confirmed\n" +
		"\n" +
		"Customer: Trần Thị B\n" +
		"Email: b@example.com\n" +
		"Address: " + receipt.Placeholder + "\n" +
		"\n" +
		"Items:\n" +
		"  - Business Cards (Paper: Premium): 10 x $(10.00 + 2.50) = $125.00\n" +
		"  - 65f0a1b2c3d4e5f6a7b8c9d1: 2 x $(14.50) = $29.00\n" +
		"\n" +
		"Total: USD 154.00\n"
	assert.Equal(t, expected, first, "bản text dùng chung cho xem, tải file và email")
}

func TestBuildReceiptFromRecords_FallsBackToHexWithoutCode(t *testing.T) {
	order, details := sampleOrder(t)
	order.Code = ""

	doc := BuildReceiptFromRecords(order, details)

	assert.Equal(t, order.ID.Hex(), doc.OrderID, "đơn cũ không có mã thì hiển thị ObjectID")
}

func TestBuildReceiptFromRecords_ZeroCreatedAtGivesPlaceholderDate(t *testing.T) {
	order, details := sampleOrder(t)
	order.CreatedAt = 0

	doc := BuildReceiptFromRecords(order, details)

	assert.Equal(t, receipt.Placeholder, doc.Date)
}
