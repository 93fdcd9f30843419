// Package receipt dựng dòng chi tiết dòng hàng và tài liệu hóa đơn từ bản ghi
// đơn hàng server đã xác nhận. Không tính lại giá: số liệu trên bản ghi luôn
// thắng, tính lại cục bộ chỉ để đối chiếu và ghi log khi lệch. Hóa đơn phải
// luôn render được kể cả khi dữ liệu lịch sử thiếu một phần.
package receipt

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"print_commerce/internal/common"
	"print_commerce/internal/logger"
	"print_commerce/internal/pricing"
	"print_commerce/internal/utility"

	"github.com/sirupsen/logrus"
)

// Placeholder thay cho các trường khách hàng bị thiếu trên hóa đơn.
const Placeholder = "—"

// Qualifier là một thuộc tính đã chọn ở dạng người đọc được, dùng trong phần
// ngoặc của dòng chi tiết. AttributeOrder/OptionOrder bằng 0 nghĩa là không
// chỉ định — khi đó giữ nguyên thứ tự mảng.
type Qualifier struct {
	AttributeName  string `json:"attributeName"`
	OptionLabel    string `json:"optionLabel"`
	AttributeOrder int    `json:"attributeOrder,omitempty"`
	OptionOrder    int    `json:"optionOrder,omitempty"`
}

// PriceMath là phần toán giá server đã xác nhận cho một dòng hàng.
type PriceMath struct {
	Base   float64   `json:"base"`
	Deltas []float64 `json:"deltas"`
}

// ItemDetail là bản ghi chi tiết dòng hàng lịch sử dùng để dựng lại hóa đơn.
// Math nil nghĩa là không có bản ghi toán giá — dòng sẽ render từ giá phẳng.
type ItemDetail struct {
	ProductID    string
	ProductName  string
	Quantity     int
	UnitPrice    float64
	TotalPrice   float64
	SelectedSize string
	Qualifiers   []Qualifier
	Math         *PriceMath
}

// Customer là khối thông tin khách trên hóa đơn.
type Customer struct {
	Name    string
	Email   string
	Address string
}

// OrderItemRef là dòng hàng phẳng trên đơn — nguồn fallback khi không tìm
// thấy bản ghi chi tiết cho product id tương ứng.
type OrderItemRef struct {
	ProductID  string
	Quantity   int
	UnitPrice  float64
	TotalPrice float64
}

// OrderInfo là metadata đơn hàng cần để dựng hóa đơn.
type OrderInfo struct {
	ID       string
	Date     time.Time
	Status   string
	Customer Customer
	Currency string
	Items    []OrderItemRef
	Total    float64
}

// Document là tài liệu hóa đơn tự chứa — nguồn duy nhất cho cả hiển thị trên
// màn hình, in và tải file. Hai đường đi đều phải render từ template này để
// bản in và bản tải về giống nhau từng byte.
type Document struct {
	OrderID   string
	Date      string
	Status    string
	Customer  Customer
	Lines     []string
	TotalLine string
}

// BuildDetailLine dựng dòng chi tiết cho một dòng hàng theo đúng grammar:
//
//	<ProductName>[ (<Part1>, <Part2>, ...)]: <qty> x $(<base> [+ <delta1>]...) = $<total>
//
// Phần ngoặc bỏ hẳn khi không có size và không có thuộc tính nào. Size đứng
// đầu dưới dạng "Size: <value>". Biểu thức giá liệt kê base trước, theo sau
// là các delta KHÁC KHÔNG (giữ dấu); delta bằng 0 không hiển thị nhưng vẫn
// nằm trong bản ghi toán giá. Mọi số tiền format đúng 2 chữ số thập phân.
// Cùng một input luôn cho ra cùng một chuỗi từng byte.
func BuildDetailLine(productName string, detail ItemDetail, quantity int, unitPrice, totalPrice float64) string {
	var b strings.Builder
	b.WriteString(productName)

	qualifiers := formatQualifiers(detail)
	if len(qualifiers) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(qualifiers, ", "))
		b.WriteString(")")
	}

	base := unitPrice
	var deltas []float64
	if detail.Math != nil {
		base = detail.Math.Base
		deltas = detail.Math.Deltas
	}

	var price strings.Builder
	price.WriteString(utility.FormatAmount(base))
	for _, delta := range deltas {
		if delta == 0 {
			continue
		}
		price.WriteString(" + ")
		price.WriteString(utility.FormatAmount(delta))
	}

	b.WriteString(fmt.Sprintf(": %d x $(%s) = $%s", quantity, price.String(), utility.FormatAmount(totalPrice)))
	return b.String()
}

// formatQualifiers dựng danh sách phần tử trong ngoặc: size trước, sau đó
// các thuộc tính theo (attributeOrder, optionOrder) nếu có, không thì theo
// thứ tự mảng (sort ổn định nên các phần tử không chỉ định thứ tự giữ nguyên
// vị trí tương đối).
func formatQualifiers(detail ItemDetail) []string {
	var parts []string
	if detail.SelectedSize != "" {
		parts = append(parts, "Size: "+detail.SelectedSize)
	}

	qualifiers := make([]Qualifier, len(detail.Qualifiers))
	copy(qualifiers, detail.Qualifiers)
	sort.SliceStable(qualifiers, func(i, j int) bool {
		if qualifiers[i].AttributeOrder != qualifiers[j].AttributeOrder {
			return qualifiers[i].AttributeOrder < qualifiers[j].AttributeOrder
		}
		return qualifiers[i].OptionOrder < qualifiers[j].OptionOrder
	})

	for _, q := range qualifiers {
		parts = append(parts, q.AttributeName+": "+q.OptionLabel)
	}
	return parts
}

// BuildReceiptDocument gom các dòng chi tiết cùng metadata đơn hàng thành một
// tài liệu hóa đơn. Dòng hàng không có bản ghi chi tiết rơi về hiển thị tối
// giản (product id làm tên, giá phẳng của đơn, không qualifier) — không bao
// giờ lỗi, hóa đơn của đơn cũ phải luôn render được dù dữ liệu thiếu.
func BuildReceiptDocument(order OrderInfo, detailByProductID map[string]*ItemDetail) *Document {
	lines := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		detail, ok := detailByProductID[item.ProductID]
		if !ok || detail == nil {
			logger.WithModule("receipt").WithFields(logrus.Fields{
				"code":       common.ErrCodeMissingDetail.Code,
				"order_id":   order.ID,
				"product_id": item.ProductID,
			}).Warn("Thiếu bản ghi chi tiết dòng hàng, hiển thị tối giản")
			lines = append(lines, BuildDetailLine(item.ProductID, ItemDetail{}, item.Quantity, item.UnitPrice, item.TotalPrice))
			continue
		}

		verifyConfirmedTotal(order.ID, detail)
		lines = append(lines, BuildDetailLine(detail.ProductName, *detail, detail.Quantity, detail.UnitPrice, detail.TotalPrice))
	}

	currency := order.Currency
	if currency == "" {
		currency = "USD"
	}

	date := Placeholder
	if !order.Date.IsZero() {
		date = order.Date.UTC().Format("2006-01-02 15:04")
	}

	return &Document{
		OrderID:   order.ID,
		Date:      date,
		Status:    order.Status,
		Customer:  fillCustomerPlaceholders(order.Customer),
		Lines:     lines,
		TotalLine: fmt.Sprintf("Total: %s %s", currency, utility.FormatAmount(order.Total)),
	}
}

// verifyConfirmedTotal tính lại thành tiền từ bản ghi toán giá và so với giá
// server đã xác nhận. Lệch ngoài sai số chỉ ghi log — giá server luôn thắng
// khi hiển thị đơn cũ, tính lại cục bộ chỉ mang tính tham khảo.
func verifyConfirmedTotal(orderID string, detail *ItemDetail) {
	if detail.Math == nil || detail.Quantity < 1 {
		return
	}
	sum := detail.Math.Base
	for _, delta := range detail.Math.Deltas {
		sum += delta
	}
	expectedUnit := utility.Round2(math.Max(0, sum))
	expectedTotal := utility.Round2(expectedUnit * float64(detail.Quantity))

	if !pricing.AmountsEqual(expectedTotal, detail.TotalPrice) {
		logger.WithModule("receipt").WithFields(logrus.Fields{
			"code":           common.ErrCodePricingMismatch.Code,
			"order_id":       orderID,
			"product_id":     detail.ProductID,
			"expected_total": expectedTotal,
			"stored_total":   detail.TotalPrice,
		}).Warn("Giá tính lại lệch với giá server đã xác nhận, dùng giá server")
	}
}

// fillCustomerPlaceholders thay các trường khách hàng trống bằng placeholder.
func fillCustomerPlaceholders(c Customer) Customer {
	if c.Name == "" {
		c.Name = Placeholder
	}
	if c.Email == "" {
		c.Email = Placeholder
	}
	if c.Address == "" {
		c.Address = Placeholder
	}
	return c
}

// Render dựng toàn bộ nội dung hóa đơn dạng text. Thứ tự cố định: mã đơn và
// ngày, trạng thái, khối khách hàng, danh sách dòng hàng, dòng tổng.
func (d *Document) Render() string {
	var b strings.Builder

	b.WriteString("Receipt\n")
	b.WriteString("=======\n")
	b.WriteString("Order: " + d.OrderID + "\n")
	b.WriteString("Date: " + d.Date + "\n")
	b.WriteString("Status: " + d.Status + "\n")
	b.WriteString("\n")
	b.WriteString("Customer: " + d.Customer.Name + "\n")
	b.WriteString("Email: " + d.Customer.Email + "\n")
	b.WriteString("Address: " + d.Customer.Address + "\n")
	b.WriteString("\n")
	b.WriteString("Items:\n")
	for _, line := range d.Lines {
		b.WriteString("  - " + line + "\n")
	}
	b.WriteString("\n")
	b.WriteString(d.TotalLine + "\n")

	return b.String()
}

// Filename là tên file gợi ý khi tải hóa đơn về.
func (d *Document) Filename() string {
	return "receipt-" + d.OrderID + ".txt"
}
