// Package catalogsvc - Test chuẩn hóa catalog, resolve mặc định và validate selection.
package catalogsvc

import (
	"errors"
	"testing"

	catalogmodels "print_commerce/internal/api/catalog/models"
	"print_commerce/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deltaPtr(v float64) *float64 { return &v }

// catalog mẫu hai thuộc tính: Chất liệu (mặc định Giấy mỹ thuật) và Hoàn thiện
// (không cờ mặc định → option đầu tiên)
func sampleAttributes() []catalogmodels.Attribute {
	return []catalogmodels.Attribute{
		{
			ID:   "a-material",
			Name: "Chất liệu",
			Options: []catalogmodels.AttributeOption{
				{ID: "o-couche", Label: "Giấy couche", PriceDelta: deltaPtr(0)},
				{ID: "o-art", Label: "Giấy mỹ thuật", PriceDelta: deltaPtr(12), IsDefault: true},
			},
		},
		{
			ID:   "a-finish",
			Name: "Hoàn thiện",
			Options: []catalogmodels.AttributeOption{
				{ID: "o-matte", Label: "Cán mờ", PriceDelta: nil},
				{ID: "o-gloss", Label: "Cán bóng", PriceDelta: deltaPtr(5)},
			},
		},
	}
}

func TestNormalizeAttributes_DropsAttributeWithoutOptions(t *testing.T) {
	attributes := []catalogmodels.Attribute{
		{ID: "a-empty", Name: "Chưa có option", Options: nil},
		sampleAttributes()[0],
	}

	normalized := NormalizeAttributes(attributes)

	require.Len(t, normalized, 1, "attribute không có option phải bị loại")
	assert.Equal(t, "a-material", normalized[0].ID)
}

func TestNormalizeAttributes_StripsMarkupFromNamesAndLabels(t *testing.T) {
	attributes := []catalogmodels.Attribute{
		{
			ID:   "a-color",
			Name: "<b>Màu sắc</b>",
			Options: []catalogmodels.AttributeOption{
				{ID: "o-red", Label: "<script>alert(1)</script>Đỏ", Description: "<p onclick=\"x()\">Mực <b>đỏ</b></p>"},
			},
		},
	}

	normalized := NormalizeAttributes(attributes)

	require.Len(t, normalized, 1)
	assert.Equal(t, "Màu sắc", normalized[0].Name, "tên attribute phải là text thuần")
	assert.Equal(t, "Đỏ", normalized[0].Options[0].Label, "script phải bị gỡ cả phần nội dung")
	assert.NotContains(t, normalized[0].Options[0].Description, "onclick", "event handler phải bị gỡ khỏi mô tả")
	assert.Contains(t, normalized[0].Options[0].Description, "<b>đỏ</b>", "tag whitelist trong mô tả được giữ")
}

func TestNormalizeAttributes_DoesNotMutateInput(t *testing.T) {
	attributes := []catalogmodels.Attribute{
		{
			ID:   "a",
			Name: "<i>Tên</i>",
			Options: []catalogmodels.AttributeOption{
				{ID: "o", Label: "<u>Nhãn</u>"},
			},
		},
	}

	_ = NormalizeAttributes(attributes)

	assert.Equal(t, "<i>Tên</i>", attributes[0].Name, "input gốc phải giữ nguyên")
	assert.Equal(t, "<u>Nhãn</u>", attributes[0].Options[0].Label, "option gốc phải giữ nguyên")
}

func TestResolveDefaults_PrefersFlaggedOption(t *testing.T) {
	selection := ResolveDefaults(sampleAttributes())

	assert.Equal(t, "o-art", selection["a-material"], "option có cờ IsDefault phải được chọn")
	assert.Equal(t, "o-matte", selection["a-finish"], "không có cờ nào thì lấy option đầu tiên")
	assert.Len(t, selection, 2, "mọi attribute đều phải được gán")
}

func TestResolveDefaults_FirstFlagWinsWhenMultiple(t *testing.T) {
	attributes := []catalogmodels.Attribute{
		{ID: "a", Name: "A", Options: []catalogmodels.AttributeOption{
			{ID: "o1", Label: "1"},
			{ID: "o2", Label: "2", IsDefault: true},
			{ID: "o3", Label: "3", IsDefault: true},
		}},
	}

	selection := ResolveDefaults(attributes)
	assert.Equal(t, "o2", selection["a"], "nhiều cờ mặc định thì cờ đầu tiên theo thứ tự catalog thắng")
}

func TestValidateSelection_AcceptsCompleteSelection(t *testing.T) {
	selection := catalogmodels.Selection{"a-material": "o-couche", "a-finish": "o-gloss"}
	assert.NoError(t, ValidateSelection(sampleAttributes(), selection))
}

func TestValidateSelection_RejectsUnknownAttribute(t *testing.T) {
	selection := catalogmodels.Selection{
		"a-material": "o-couche",
		"a-finish":   "o-gloss",
		"a-ghost":    "o-x",
	}

	err := ValidateSelection(sampleAttributes(), selection)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidSelection), "key lạ phải trả về ErrInvalidSelection")
}

func TestValidateSelection_RejectsOptionFromOtherAttribute(t *testing.T) {
	// o-gloss thuộc a-finish, không thuộc a-material
	selection := catalogmodels.Selection{"a-material": "o-gloss", "a-finish": "o-matte"}

	err := ValidateSelection(sampleAttributes(), selection)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidSelection))
}

func TestValidateSelection_RejectsMissingAttribute(t *testing.T) {
	selection := catalogmodels.Selection{"a-material": "o-couche"}

	err := ValidateSelection(sampleAttributes(), selection)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidSelection), "mọi attribute còn option đều bắt buộc")
}

func TestDescribeSelection_FollowsCatalogOrder(t *testing.T) {
	selection := catalogmodels.Selection{
		"a-finish":   "o-gloss",
		"a-material": "o-art",
	}

	described := DescribeSelection(sampleAttributes(), selection)

	require.Len(t, described, 2)
	assert.Equal(t, "Chất liệu", described[0].AttributeName, "phải theo thứ tự catalog, không theo thứ tự map")
	assert.Equal(t, "Giấy mỹ thuật", described[0].OptionLabel)
	assert.InDelta(t, 12.0, described[0].PriceDelta, 1e-9)
	assert.Equal(t, 1, described[0].AttributeOrder, "thứ tự tính từ 1 để 0 nghĩa là không xác định")
	assert.Equal(t, 2, described[0].OptionOrder)

	assert.Equal(t, "Hoàn thiện", described[1].AttributeName)
	assert.InDelta(t, 5.0, described[1].PriceDelta, 1e-9)
	assert.Equal(t, 2, described[1].AttributeOrder)
}

func TestDescribeSelection_NilDeltaBecomesZero(t *testing.T) {
	selection := catalogmodels.Selection{"a-material": "o-couche", "a-finish": "o-matte"}

	described := DescribeSelection(sampleAttributes(), selection)

	require.Len(t, described, 2)
	assert.InDelta(t, 0.0, described[1].PriceDelta, 1e-9, "priceDelta null phải thành 0")
}
