// Package catalogsvc - Test làm sạch nội dung sản phẩm trên đường ghi.
package catalogsvc

import (
	"testing"

	basesvc "print_commerce/internal/api/base/service"
	catalogmodels "print_commerce/internal/api/catalog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeProduct_CleansTextAndRichTextFields(t *testing.T) {
	product := catalogmodels.CatalogProduct{
		Name:        "<script>x</script>Danh thiếp cao cấp",
		Slug:        "danh-thiep<b></b>",
		SKU:         "SKU-<i>01</i>",
		Description: "<p onload=\"evil()\">In <strong>offset</strong> 4 màu</p><iframe src=\"x\"></iframe>",
		Attributes: []catalogmodels.Attribute{
			{ID: "a", Name: "<u>Giấy</u>", Options: []catalogmodels.AttributeOption{
				{ID: "o", Label: "300gsm<script>y</script>", Description: "<span style=\"color:red\">Dày</span>"},
			}},
		},
	}

	sanitizeProduct(&product)

	assert.Equal(t, "Danh thiếp cao cấp", product.Name)
	assert.Equal(t, "danh-thiep", product.Slug)
	assert.Equal(t, "SKU-01", product.SKU)
	assert.NotContains(t, product.Description, "onload")
	assert.NotContains(t, product.Description, "iframe")
	assert.Contains(t, product.Description, "<strong>offset</strong>", "tag whitelist trong mô tả được giữ")
	assert.Equal(t, "Giấy", product.Attributes[0].Name)
	assert.Equal(t, "300gsm", product.Attributes[0].Options[0].Label)
}

func TestSanitizeProduct_KeepsDraftAttributeWithoutOptions(t *testing.T) {
	product := catalogmodels.CatalogProduct{
		Name:       "Poster",
		Attributes: []catalogmodels.Attribute{{ID: "a-draft", Name: "Nháp", Options: nil}},
	}

	sanitizeProduct(&product)

	// Đường ghi không drop attribute nháp — chỉ đường đọc mới loại khi hiển thị
	require.Len(t, product.Attributes, 1)
	assert.Equal(t, "a-draft", product.Attributes[0].ID)
}

func TestSanitizeUpdate_CleansContentKeysInSet(t *testing.T) {
	update := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"name":        "<b>Mug</b>",
			"description": "<p><script>bad()</script>Ly sứ trắng</p>",
			"basePrice":   25.5,
		},
	}

	result := sanitizeUpdate(update)

	cleaned, ok := result.(*basesvc.UpdateData)
	require.True(t, ok)
	assert.Equal(t, "Mug", cleaned.Set["name"])
	assert.NotContains(t, cleaned.Set["description"].(string), "script")
	assert.Contains(t, cleaned.Set["description"].(string), "Ly sứ trắng")
	assert.Equal(t, 25.5, cleaned.Set["basePrice"], "field không phải nội dung giữ nguyên")
}

func TestSanitizeUpdate_PassesThroughPlainMap(t *testing.T) {
	result := sanitizeUpdate(map[string]interface{}{"name": "<i>Tem nhãn</i>"})

	cleaned, ok := result.(*basesvc.UpdateData)
	require.True(t, ok, "map thường phải được wrap thành UpdateData")
	assert.Equal(t, "Tem nhãn", cleaned.Set["name"])
}
