package utility

import (
	"regexp"
	"time"

	"print_commerce/internal/common"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// UnixMilli trả về timestamp mili giây của một thời điểm,
// làm tròn đến mili giây gần nhất
func UnixMilli(t time.Time) int64 {
	return t.Round(time.Millisecond).UnixMilli()
}

// CurrentTimeInMilli trả về thời gian hiện tại tính bằng mili giây.
// Mọi timestamp trong document (createdAt, updatedAt...) dùng hàm này.
func CurrentTimeInMilli() int64 {
	return UnixMilli(time.Now())
}

// TimeFromMilli dựng lại time.Time từ timestamp mili giây (chiều ngược của UnixMilli)
func TimeFromMilli(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// ValidateEmail kiểm tra định dạng email
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return common.ErrInvalidEmail
	}
	return nil
}
