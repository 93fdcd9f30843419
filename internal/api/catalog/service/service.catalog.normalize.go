// Package catalogsvc chứa nghiệp vụ catalog: chuẩn hóa thuộc tính, resolve
// selection mặc định, validate selection và tải catalog với cache.
package catalogsvc

import (
	"fmt"

	catalogmodels "print_commerce/internal/api/catalog/models"
	"print_commerce/internal/common"
	"print_commerce/internal/sanitize"
)

// NormalizeAttributes chuẩn hóa catalog thuộc tính trước khi đưa ra storefront:
// tên attribute và nhãn option về text thuần (mọi markup bị gỡ), mô tả option
// được làm sạch HTML rồi che từ cấm. Attribute không có option nào bị loại —
// không có gì để chọn thì không hiển thị.
//
// Trả về slice mới, không sửa input — catalog gốc trong DB giữ nguyên để
// admin còn sửa tiếp trên dữ liệu họ đã nhập.
func NormalizeAttributes(attributes []catalogmodels.Attribute) []catalogmodels.Attribute {
	normalized := make([]catalogmodels.Attribute, 0, len(attributes))
	for _, attr := range attributes {
		if len(attr.Options) == 0 {
			continue
		}

		options := make([]catalogmodels.AttributeOption, 0, len(attr.Options))
		for _, opt := range attr.Options {
			opt.Label = sanitize.StripToText(opt.Label, 0)
			if opt.Description != "" {
				opt.Description = sanitize.Clean(opt.Description)
			}
			options = append(options, opt)
		}

		normalized = append(normalized, catalogmodels.Attribute{
			ID:      attr.ID,
			Name:    sanitize.StripToText(attr.Name, 0),
			Options: options,
		})
	}
	return normalized
}

// ResolveDefaults trả về selection mặc định cho một catalog đã chuẩn hóa:
// mỗi attribute lấy option có cờ IsDefault, không có cờ nào thì lấy option
// đầu tiên theo thứ tự catalog. Mọi attribute đều được gán — storefront không
// có trạng thái "chưa chọn".
func ResolveDefaults(attributes []catalogmodels.Attribute) catalogmodels.Selection {
	selection := make(catalogmodels.Selection, len(attributes))
	for _, attr := range attributes {
		if len(attr.Options) == 0 {
			continue
		}
		chosen := attr.Options[0].ID
		for _, opt := range attr.Options {
			if opt.IsDefault {
				chosen = opt.ID
				break
			}
		}
		selection[attr.ID] = chosen
	}
	return selection
}

// ValidateSelection kiểm tra selection khớp với catalog: mọi key phải trỏ tới
// attribute có thật, mọi value phải là option thuộc đúng attribute đó, và
// không attribute nào bị bỏ trống (mọi attribute còn option đều bắt buộc).
// Vi phạm trả về ErrInvalidSelection kèm ngữ cảnh.
func ValidateSelection(attributes []catalogmodels.Attribute, selection catalogmodels.Selection) error {
	byID := make(map[string]*catalogmodels.Attribute, len(attributes))
	for i := range attributes {
		byID[attributes[i].ID] = &attributes[i]
	}

	for attrID, optionID := range selection {
		attr, ok := byID[attrID]
		if !ok {
			return fmt.Errorf("thuộc tính %q không có trong catalog: %w", attrID, common.ErrInvalidSelection)
		}
		if !hasOption(attr, optionID) {
			return fmt.Errorf("option %q không thuộc thuộc tính %q: %w", optionID, attrID, common.ErrInvalidSelection)
		}
	}

	for _, attr := range attributes {
		if len(attr.Options) == 0 {
			continue
		}
		if _, ok := selection[attr.ID]; !ok {
			return fmt.Errorf("thiếu lựa chọn cho thuộc tính %q: %w", attr.ID, common.ErrInvalidSelection)
		}
	}
	return nil
}

// SelectedOption là một cặp thuộc tính/option đã chọn ở dạng người đọc được,
// kèm thứ tự xuất hiện trong catalog (tính từ 1; 0 nghĩa là không xác định).
// Đây là dữ liệu được chụp lại vào bản ghi chi tiết dòng hàng lúc checkout để
// hóa đơn sau này dựng lại đúng thứ tự hiển thị mà không cần catalog còn sống.
type SelectedOption struct {
	AttributeID    string
	OptionID       string
	AttributeName  string
	OptionLabel    string
	PriceDelta     float64
	AttributeOrder int
	OptionOrder    int
}

// DescribeSelection duyệt catalog theo thứ tự hiển thị và trả về thông tin
// người đọc được cho từng lựa chọn. Gọi sau ValidateSelection — lựa chọn
// không khớp catalog bị bỏ qua thay vì lỗi.
func DescribeSelection(attributes []catalogmodels.Attribute, selection catalogmodels.Selection) []SelectedOption {
	described := make([]SelectedOption, 0, len(selection))
	for attrIdx, attr := range attributes {
		optionID, ok := selection[attr.ID]
		if !ok {
			continue
		}
		for optIdx, opt := range attr.Options {
			if opt.ID != optionID {
				continue
			}
			delta := 0.0
			if opt.PriceDelta != nil {
				delta = *opt.PriceDelta
			}
			described = append(described, SelectedOption{
				AttributeID:    attr.ID,
				OptionID:       opt.ID,
				AttributeName:  attr.Name,
				OptionLabel:    opt.Label,
				PriceDelta:     delta,
				AttributeOrder: attrIdx + 1,
				OptionOrder:    optIdx + 1,
			})
			break
		}
	}
	return described
}

// hasOption kiểm tra option id có thuộc attribute không.
func hasOption(attr *catalogmodels.Attribute, optionID string) bool {
	for i := range attr.Options {
		if attr.Options[i].ID == optionID {
			return true
		}
	}
	return false
}
