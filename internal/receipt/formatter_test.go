// Package receipt - Test grammar dòng chi tiết và dựng tài liệu hóa đơn.
package receipt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDetailLine_SizeAndAttribute(t *testing.T) {
	detail := ItemDetail{
		ProductName:  "Mug",
		SelectedSize: "Large",
		Qualifiers: []Qualifier{
			{AttributeName: "Color", OptionLabel: "Blue"},
		},
		Math: &PriceMath{Base: 25, Deltas: []float64{}},
	}

	got := BuildDetailLine("Mug", detail, 2, 25.00, 50.00)
	assert.Equal(t, "Mug (Size: Large, Color: Blue): 2 x $(25.00) = $50.00", got,
		"dòng chi tiết phải khớp grammar từng byte")
}

func TestBuildDetailLine_NoQualifiers(t *testing.T) {
	detail := ItemDetail{
		ProductName: "Business Cards",
		Math:        &PriceMath{Base: 9.99},
	}

	got := BuildDetailLine("Business Cards", detail, 1, 9.99, 9.99)
	assert.Equal(t, "Business Cards: 1 x $(9.99) = $9.99", got,
		"không có size và không có thuộc tính thì bỏ hẳn phần ngoặc")
}

func TestBuildDetailLine_NonZeroDeltasKeepSign(t *testing.T) {
	detail := ItemDetail{
		ProductName: "Poster",
		Qualifiers: []Qualifier{
			{AttributeName: "Chất liệu", OptionLabel: "Giấy"},
			{AttributeName: "Hoàn thiện", OptionLabel: "Bóng"},
			{AttributeName: "Bo góc", OptionLabel: "Bo tròn"},
		},
		Math: &PriceMath{Base: 20, Deltas: []float64{0, 5.5, -2}},
	}

	got := BuildDetailLine("Poster", detail, 1, 23.50, 23.50)
	assert.Equal(t,
		"Poster (Chất liệu: Giấy, Hoàn thiện: Bóng, Bo góc: Bo tròn): 1 x $(20.00 + 5.50 + -2.00) = $23.50",
		got, "delta khác 0 phải hiển thị kèm dấu, delta bằng 0 phải bị bỏ khỏi biểu thức")
}

func TestBuildDetailLine_QualifierOrdering(t *testing.T) {
	detail := ItemDetail{
		Qualifiers: []Qualifier{
			{AttributeName: "Thứ ba", OptionLabel: "C", AttributeOrder: 3},
			{AttributeName: "Thứ nhất", OptionLabel: "A", AttributeOrder: 1},
			{AttributeName: "Thứ hai", OptionLabel: "B", AttributeOrder: 2},
		},
		Math: &PriceMath{Base: 10},
	}

	got := BuildDetailLine("X", detail, 1, 10, 10)
	assert.Equal(t, "X (Thứ nhất: A, Thứ hai: B, Thứ ba: C): 1 x $(10.00) = $10.00",
		got, "qualifier phải sắp theo attributeOrder khi có")
}

func TestBuildDetailLine_ArrayOrderWhenNoExplicitOrder(t *testing.T) {
	detail := ItemDetail{
		Qualifiers: []Qualifier{
			{AttributeName: "Màu", OptionLabel: "Đỏ"},
			{AttributeName: "Cỡ chữ", OptionLabel: "Lớn"},
		},
		Math: &PriceMath{Base: 5},
	}

	got := BuildDetailLine("X", detail, 1, 5, 5)
	assert.Equal(t, "X (Màu: Đỏ, Cỡ chữ: Lớn): 1 x $(5.00) = $5.00",
		got, "không có order thì giữ nguyên thứ tự mảng")
}

func TestBuildDetailLine_Deterministic(t *testing.T) {
	detail := ItemDetail{
		SelectedSize: "A4",
		Qualifiers: []Qualifier{
			{AttributeName: "Màu", OptionLabel: "Đỏ", AttributeOrder: 2},
			{AttributeName: "Giấy", OptionLabel: "Couche", AttributeOrder: 1},
		},
		Math: &PriceMath{Base: 12.3, Deltas: []float64{1.7}},
	}

	first := BuildDetailLine("Tờ rơi", detail, 100, 14.00, 1400.00)
	second := BuildDetailLine("Tờ rơi", detail, 100, 14.00, 1400.00)
	assert.Equal(t, first, second, "cùng input phải cho cùng output từng byte")
}

func sampleOrder() OrderInfo {
	return OrderInfo{
		ID:     "ord-1",
		Date:   time.Date(2026, 8, 25, 14, 3, 0, 0, time.UTC),
		Status: "completed",
		Customer: Customer{
			Name: "Nguyễn Văn A",
		},
		Currency: "USD",
		Items: []OrderItemRef{
			{ProductID: "prod-mug", Quantity: 2, UnitPrice: 25.00, TotalPrice: 50.00},
		},
		Total: 50.00,
	}
}

func sampleDetails() map[string]*ItemDetail {
	return map[string]*ItemDetail{
		"prod-mug": {
			ProductID:    "prod-mug",
			ProductName:  "Mug",
			Quantity:     2,
			UnitPrice:    25.00,
			TotalPrice:   50.00,
			SelectedSize: "Large",
			Qualifiers: []Qualifier{
				{AttributeName: "Color", OptionLabel: "Blue"},
			},
			Math: &PriceMath{Base: 25, Deltas: []float64{0}},
		},
	}
}

func TestBuildReceiptDocument_RenderGolden(t *testing.T) {
	doc := BuildReceiptDocument(sampleOrder(), sampleDetails())
	require.NotNil(t, doc)

	want := "Receipt\n" +
		"=======\n" +
		"Order: ord-1\n" +
		"Date: 2026-08-25 14:03\n" +
		"Status: completed\n" +
		"\n" +
		"Customer: Nguyễn Văn A\n" +
		"Email: —\n" +
		"Address: —\n" +
		"\n" +
		"Items:\n" +
		"  - Mug (Size: Large, Color: Blue): 2 x $(25.00) = $50.00\n" +
		"\n" +
		"Total: USD 50.00\n"

	assert.Equal(t, want, doc.Render(), "hóa đơn phải render đúng từng byte theo thứ tự cố định")
}

func TestBuildReceiptDocument_MissingDetailFallsBack(t *testing.T) {
	order := sampleOrder()
	order.Items = append(order.Items, OrderItemRef{
		ProductID: "prod-ghost", Quantity: 3, UnitPrice: 4.00, TotalPrice: 12.00,
	})
	order.Total = 62.00

	doc := BuildReceiptDocument(order, sampleDetails())
	require.Len(t, doc.Lines, 2, "dòng thiếu bản ghi chi tiết vẫn phải render")

	assert.Equal(t, "prod-ghost: 3 x $(4.00) = $12.00", doc.Lines[1],
		"fallback phải dùng product id làm tên, giá phẳng của đơn và không có qualifier")
}

func TestBuildReceiptDocument_ServerTotalWinsOnMismatch(t *testing.T) {
	details := sampleDetails()
	// Bản ghi server nói 60.00 dù toán giá tính ra 50.00 — server thắng, chỉ log
	details["prod-mug"].TotalPrice = 60.00

	doc := BuildReceiptDocument(sampleOrder(), details)
	assert.Contains(t, doc.Lines[0], "= $60.00", "giá server đã xác nhận phải thắng khi hiển thị")
}

func TestBuildReceiptDocument_PrintAndDownloadIdentical(t *testing.T) {
	doc := BuildReceiptDocument(sampleOrder(), sampleDetails())

	printed := doc.Render()
	downloaded := doc.Render()
	assert.Equal(t, printed, downloaded, "bản in và bản tải về phải render từ cùng template, giống nhau từng byte")
	assert.Equal(t, "receipt-ord-1.txt", doc.Filename())
}

func TestBuildReceiptDocument_EmptyCurrencyDefaultsUSD(t *testing.T) {
	order := sampleOrder()
	order.Currency = ""

	doc := BuildReceiptDocument(order, sampleDetails())
	assert.Equal(t, "Total: USD 50.00", doc.TotalLine)
}

func TestBuildReceiptDocument_ZeroDateUsesPlaceholder(t *testing.T) {
	order := sampleOrder()
	order.Date = time.Time{}

	doc := BuildReceiptDocument(order, sampleDetails())
	assert.Equal(t, "—", doc.Date, "đơn không có ngày phải hiển thị placeholder")
}
