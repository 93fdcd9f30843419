package utility

import (
	"fmt"
	"math"
)

// Round2 làm tròn số tiền về 2 chữ số thập phân.
// Quy tắc duy nhất cho toàn hệ thống: làm tròn ở mức ĐƠN GIÁ trước khi nhân
// với số lượng, không làm tròn sau khi nhân (tránh lệch cent theo số lượng).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatAmount định dạng số tiền với đúng 2 chữ số thập phân, giữ dấu âm.
func FormatAmount(v float64) string {
	if v == 0 {
		v = 0 // chuẩn hóa -0 để không in "-0.00"
	}
	return fmt.Sprintf("%.2f", v)
}
