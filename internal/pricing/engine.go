// Package pricing tính giá biến thể và chữ ký biến thể từ catalog thuộc tính
// và lựa chọn của client. Toàn bộ là hàm thuần trên dữ liệu đã có sẵn — không
// side effect, an toàn khi gọi lặp lại sau mỗi lần đổi option.
package pricing

import (
	"fmt"
	"math"
	"sort"
	"strings"

	catalogmodels "print_commerce/internal/api/catalog/models"
	"print_commerce/internal/common"
	"print_commerce/internal/utility"
)

// PriceBreakdown là kết quả tính giá cho một cấu hình sản phẩm.
// Invariant: UnitPrice = round2(max(0, Base + tổng Deltas));
// TotalPrice = UnitPrice × Quantity. Deltas thẳng hàng với thứ tự attribute
// trong catalog và giữ cả các delta bằng 0.
type PriceBreakdown struct {
	Base       float64   `json:"base" bson:"base"`             // Giá gốc của sản phẩm
	Deltas     []float64 `json:"deltas" bson:"deltas"`         // Chênh lệch theo từng attribute, theo thứ tự catalog
	UnitPrice  float64   `json:"unitPrice" bson:"unitPrice"`   // Đơn giá đã làm tròn 2 chữ số
	TotalPrice float64   `json:"totalPrice" bson:"totalPrice"` // Đơn giá × số lượng
	Quantity   int       `json:"quantity" bson:"quantity"`     // Số lượng, nguyên dương
}

// PriceTolerance là sai số chấp nhận được khi so khớp giá tính lại ở client
// với giá server đã xác nhận (nửa cent).
const PriceTolerance = 0.005

// ComputePrice tính PriceBreakdown cho một lựa chọn trên catalog thuộc tính.
//
// Thuật toán: duyệt attribute theo thứ tự catalog, tra option được chọn, gom
// priceDelta (null coi là 0) vào mảng deltas thẳng hàng với thứ tự attribute,
// cộng tổng vào base, chặn sàn 0, rồi làm tròn đơn giá 2 chữ số TRƯỚC khi
// nhân số lượng. Làm tròn sau khi nhân bị cấm — sẽ lệch từng cent khi số
// lượng lớn và không khớp với tổng server tính.
//
// Lựa chọn trỏ tới attribute/option không tồn tại trả về ErrInvalidSelection;
// số lượng không phải nguyên dương trả về ErrInvalidQuantity.
func ComputePrice(base float64, attributes []catalogmodels.Attribute, selection catalogmodels.Selection, quantity int) (*PriceBreakdown, error) {
	if quantity < 1 {
		return nil, common.ErrInvalidQuantity
	}

	deltas := make([]float64, 0, len(attributes))
	sum := 0.0
	for _, attr := range attributes {
		optionID, ok := selection[attr.ID]
		if !ok {
			return nil, fmt.Errorf("thiếu lựa chọn cho thuộc tính %q: %w", attr.ID, common.ErrInvalidSelection)
		}
		option := findOption(attr, optionID)
		if option == nil {
			return nil, fmt.Errorf("option %q không thuộc thuộc tính %q: %w", optionID, attr.ID, common.ErrInvalidSelection)
		}
		delta := 0.0
		if option.PriceDelta != nil {
			delta = *option.PriceDelta
		}
		deltas = append(deltas, delta)
		sum += delta
	}

	// Mọi attribute đều có mặt trong selection (vòng lặp trên đã đảm bảo),
	// nên selection dài hơn nghĩa là có key trỏ tới attribute lạ.
	if len(selection) > len(attributes) {
		for attrID := range selection {
			if !hasAttribute(attributes, attrID) {
				return nil, fmt.Errorf("thuộc tính %q không có trong catalog: %w", attrID, common.ErrInvalidSelection)
			}
		}
	}

	unitPrice := base + sum
	if unitPrice < 0 {
		// Tổ hợp delta âm không bao giờ được tạo ra giá âm
		unitPrice = 0
	}
	unitPrice = utility.Round2(unitPrice)

	return &PriceBreakdown{
		Base:       base,
		Deltas:     deltas,
		UnitPrice:  unitPrice,
		TotalPrice: utility.Round2(unitPrice * float64(quantity)),
		Quantity:   quantity,
	}, nil
}

// GenerateVariantSignature sinh chữ ký chính tắc cho một lựa chọn: các cặp
// (attributeId, optionId) sắp theo attribute id, mỗi cặp nối bằng ":", các
// cặp nối bằng "|". Hai lựa chọn cùng nội dung luôn cho cùng chữ ký bất kể
// thứ tự chèn — dùng để gộp cấu hình trùng nhau trong giỏ hàng.
func GenerateVariantSignature(selection catalogmodels.Selection) string {
	if len(selection) == 0 {
		return ""
	}
	attrIDs := make([]string, 0, len(selection))
	for attrID := range selection {
		attrIDs = append(attrIDs, attrID)
	}
	sort.Strings(attrIDs)

	pairs := make([]string, 0, len(attrIDs))
	for _, attrID := range attrIDs {
		pairs = append(pairs, attrID+":"+selection[attrID])
	}
	return strings.Join(pairs, "|")
}

// AmountsEqual so sánh hai số tiền trong sai số PriceTolerance. Dùng khi đối
// chiếu giá client tính lại với giá server đã xác nhận — lệch ngoài sai số là
// PricingMismatch (chỉ ghi log, giá server luôn thắng khi hiển thị).
func AmountsEqual(a, b float64) bool {
	return math.Abs(a-b) < PriceTolerance
}

// findOption tra option theo id trong một attribute, nil nếu không có.
func findOption(attr catalogmodels.Attribute, optionID string) *catalogmodels.AttributeOption {
	for i := range attr.Options {
		if attr.Options[i].ID == optionID {
			return &attr.Options[i]
		}
	}
	return nil
}

// hasAttribute kiểm tra attribute id có trong catalog không.
func hasAttribute(attributes []catalogmodels.Attribute, attrID string) bool {
	for i := range attributes {
		if attributes[i].ID == attrID {
			return true
		}
	}
	return false
}
