// Package pricing - Test tính giá biến thể và chữ ký biến thể.
package pricing

import (
	"errors"
	"testing"

	catalogmodels "print_commerce/internal/api/catalog/models"
	"print_commerce/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deltaPtr(v float64) *float64 { return &v }

// catalog mẫu: Màu sắc có Red (mặc định, delta 0) và Blue (delta +15)
func colorCatalog() []catalogmodels.Attribute {
	return []catalogmodels.Attribute{
		{
			ID:   "attr-color",
			Name: "Màu sắc",
			Options: []catalogmodels.AttributeOption{
				{ID: "opt-red", Label: "Đỏ", PriceDelta: deltaPtr(0), IsDefault: true},
				{ID: "opt-blue", Label: "Xanh dương", PriceDelta: deltaPtr(15)},
			},
		},
	}
}

func TestComputePrice_BlueOptionAddsDelta(t *testing.T) {
	// base=100, qty=2, chọn Blue (+15) → đơn giá 115.00, thành tiền 230.00
	breakdown, err := ComputePrice(100, colorCatalog(), catalogmodels.Selection{"attr-color": "opt-blue"}, 2)
	require.NoError(t, err)

	assert.InDelta(t, 115.00, breakdown.UnitPrice, 1e-9, "đơn giá phải là base + delta")
	assert.InDelta(t, 230.00, breakdown.TotalPrice, 1e-9, "thành tiền phải là đơn giá × số lượng")
	assert.Equal(t, 2, breakdown.Quantity)
	assert.InDelta(t, 100.0, breakdown.Base, 1e-9)
}

func TestComputePrice_DeltasAlignedWithCatalogOrder(t *testing.T) {
	attributes := []catalogmodels.Attribute{
		{ID: "a-material", Name: "Chất liệu", Options: []catalogmodels.AttributeOption{
			{ID: "o-paper", Label: "Giấy", PriceDelta: nil, IsDefault: true}, // null → 0
		}},
		{ID: "a-finish", Name: "Hoàn thiện", Options: []catalogmodels.AttributeOption{
			{ID: "o-matte", Label: "Mờ", PriceDelta: deltaPtr(0)},
			{ID: "o-gloss", Label: "Bóng", PriceDelta: deltaPtr(5.5)},
		}},
		{ID: "a-corner", Name: "Bo góc", Options: []catalogmodels.AttributeOption{
			{ID: "o-round", Label: "Bo tròn", PriceDelta: deltaPtr(-2)},
		}},
	}
	selection := catalogmodels.Selection{
		"a-finish":   "o-gloss",
		"a-corner":   "o-round",
		"a-material": "o-paper",
	}

	breakdown, err := ComputePrice(20, attributes, selection, 1)
	require.NoError(t, err)

	// deltas thẳng hàng với thứ tự attribute trong catalog, giữ cả số 0
	assert.Equal(t, []float64{0, 5.5, -2}, breakdown.Deltas, "deltas phải theo thứ tự catalog và giữ delta 0")
	assert.InDelta(t, 23.5, breakdown.UnitPrice, 1e-9)
}

func TestComputePrice_RoundsUnitPriceBeforeMultiplying(t *testing.T) {
	attributes := []catalogmodels.Attribute{
		{ID: "a", Name: "A", Options: []catalogmodels.AttributeOption{
			{ID: "o", Label: "O", PriceDelta: deltaPtr(0.004)},
		}},
	}

	// base 10 + 0.004 = 10.004 → làm tròn 10.00 TRƯỚC khi nhân 3 → 30.00.
	// Nếu làm tròn sau khi nhân sẽ ra 30.01 — sai quy tắc.
	breakdown, err := ComputePrice(10, attributes, catalogmodels.Selection{"a": "o"}, 3)
	require.NoError(t, err)

	assert.InDelta(t, 10.00, breakdown.UnitPrice, 1e-9)
	assert.InDelta(t, 30.00, breakdown.TotalPrice, 1e-9, "phải làm tròn đơn giá trước khi nhân số lượng")
}

func TestComputePrice_FloorsNegativeUnitPriceAtZero(t *testing.T) {
	attributes := []catalogmodels.Attribute{
		{ID: "a", Name: "A", Options: []catalogmodels.AttributeOption{
			{ID: "o", Label: "O", PriceDelta: deltaPtr(-50)},
		}},
	}

	breakdown, err := ComputePrice(30, attributes, catalogmodels.Selection{"a": "o"}, 2)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, breakdown.UnitPrice, 1e-9, "đơn giá âm phải bị chặn sàn 0")
	assert.InDelta(t, 0.0, breakdown.TotalPrice, 1e-9)
}

func TestComputePrice_InvalidQuantity(t *testing.T) {
	for _, quantity := range []int{0, -1, -100} {
		_, err := ComputePrice(100, colorCatalog(), catalogmodels.Selection{"attr-color": "opt-red"}, quantity)
		assert.ErrorIs(t, err, common.ErrInvalidQuantity, "quantity=%d phải bị từ chối", quantity)
	}
}

func TestComputePrice_InvalidSelection(t *testing.T) {
	catalog := colorCatalog()

	// Thiếu lựa chọn cho attribute bắt buộc
	_, err := ComputePrice(100, catalog, catalogmodels.Selection{}, 1)
	assert.ErrorIs(t, err, common.ErrInvalidSelection, "selection thiếu attribute bắt buộc phải bị từ chối")

	// Option không thuộc attribute
	_, err = ComputePrice(100, catalog, catalogmodels.Selection{"attr-color": "opt-green"}, 1)
	assert.ErrorIs(t, err, common.ErrInvalidSelection, "option lạ phải bị từ chối")

	// Key trỏ tới attribute không có trong catalog
	_, err = ComputePrice(100, catalog, catalogmodels.Selection{
		"attr-color": "opt-red",
		"attr-ghost": "opt-x",
	}, 1)
	assert.ErrorIs(t, err, common.ErrInvalidSelection, "attribute lạ phải bị từ chối")
}

func TestGenerateVariantSignature_Canonical(t *testing.T) {
	signature := GenerateVariantSignature(catalogmodels.Selection{
		"b-attr": "2-opt",
		"a-attr": "1-opt",
		"c-attr": "3-opt",
	})

	assert.Equal(t, "a-attr:1-opt|b-attr:2-opt|c-attr:3-opt", signature,
		"chữ ký phải sắp theo attribute id với phân cách ':' và '|'")
}

func TestGenerateVariantSignature_OrderIndependent(t *testing.T) {
	first := catalogmodels.Selection{}
	first["x"] = "1"
	first["y"] = "2"
	first["z"] = "3"

	second := catalogmodels.Selection{}
	second["z"] = "3"
	second["x"] = "1"
	second["y"] = "2"

	assert.Equal(t, GenerateVariantSignature(first), GenerateVariantSignature(second),
		"hai selection cùng nội dung phải cho cùng chữ ký bất kể thứ tự chèn")
}

func TestGenerateVariantSignature_Empty(t *testing.T) {
	assert.Equal(t, "", GenerateVariantSignature(catalogmodels.Selection{}))
	assert.Equal(t, "", GenerateVariantSignature(nil))
}

func TestAmountsEqual(t *testing.T) {
	assert.True(t, AmountsEqual(230.00, 230.004), "lệch dưới nửa cent phải coi là bằng")
	assert.False(t, AmountsEqual(230.00, 230.01), "lệch một cent phải coi là khác")
}

func TestComputePrice_ErrorCarriesStatusCode(t *testing.T) {
	_, err := ComputePrice(100, colorCatalog(), catalogmodels.Selection{"attr-color": "opt-ghost"}, 1)
	require.Error(t, err)

	var appErr *common.Error
	require.True(t, errors.As(err, &appErr), "lỗi phải unwrap được về *common.Error")
	assert.Equal(t, common.StatusBadRequest, appErr.StatusCode, "lỗi lựa chọn không hợp lệ phải mang status 400")
}
