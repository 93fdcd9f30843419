// Package common chứa các hằng số trạng thái, mã lỗi và kiểu Error dùng chung
// cho toàn bộ service (handler, service, engine tính giá, receipt).
package common

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// HTTP status code mà API này thực sự trả về.
const (
	StatusOK                  = 200
	StatusBadRequest          = 400
	StatusForbidden           = 403
	StatusNotFound            = 404
	StatusConflict            = 409
	StatusInternalServerError = 500
	StatusServiceUnavailable  = 503
)

// Message dùng trong envelope response.
const (
	MsgSuccess         = "Thao tác thành công"
	MsgValidationError = "Dữ liệu không hợp lệ"
	MsgDatabaseError   = "Lỗi tương tác với cơ sở dữ liệu"
)

// ErrorCode định nghĩa mã lỗi chi tiết
type ErrorCode struct {
	Code        string // Mã lỗi (ví dụ: CAT_001)
	Category    string // Phân loại lỗi (ví dụ: Catalog)
	SubCategory string // Phân loại con (ví dụ: Selection)
	Description string // Mô tả chi tiết
}

func newErrorCode(code, category, subCategory, description string) ErrorCode {
	return ErrorCode{Code: code, Category: category, SubCategory: subCategory, Description: description}
}

// Bảng mã lỗi, phân cấp theo prefix.
var (
	// System (SYS_xxx)
	ErrCodeInternalServer = newErrorCode("SYS_001", "System", "Internal", "Lỗi hệ thống nội bộ")

	// Validation (VAL_xxx)
	ErrCodeValidation       = newErrorCode("VAL", "Validation", "General", "Lỗi xác thực dữ liệu chung")
	ErrCodeValidationInput  = newErrorCode("VAL_001", "Validation", "Input", "Lỗi dữ liệu đầu vào")
	ErrCodeValidationFormat = newErrorCode("VAL_002", "Validation", "Format", "Lỗi định dạng dữ liệu")

	// Database (DB_xxx)
	ErrCodeDatabase           = newErrorCode("DB", "Database", "General", "Lỗi cơ sở dữ liệu chung")
	ErrCodeDatabaseConnection = newErrorCode("DB_001", "Database", "Connection", "Lỗi kết nối cơ sở dữ liệu")
	ErrCodeDatabaseQuery      = newErrorCode("DB_002", "Database", "Query", "Lỗi truy vấn dữ liệu")

	// Catalog (CAT_xxx)
	ErrCodeInvalidSelection = newErrorCode("CAT_001", "Catalog", "Selection",
		"Selection tham chiếu thuộc tính/tùy chọn không tồn tại hoặc thiếu thuộc tính bắt buộc")
	ErrCodeStaleLoad = newErrorCode("CAT_002", "Catalog", "Load",
		"Kết quả tải catalog đã bị thay thế bởi lần tải mới hơn của cùng client")

	// Pricing (PRC_xxx)
	ErrCodeInvalidQuantity = newErrorCode("PRC_001", "Pricing", "Quantity",
		"Số lượng không phải số nguyên dương")
	ErrCodePricingMismatch = newErrorCode("PRC_002", "Pricing", "Reconcile",
		"Tổng tiền tính lại khác với tổng tiền server đã xác nhận (chỉ ghi log, không chặn)")

	// Receipt (RCPT_xxx)
	ErrCodeMissingDetail = newErrorCode("RCPT_001", "Receipt", "Detail",
		"Order item không có bản ghi chi tiết, hiển thị fallback từ snapshot phẳng")

	// Business (BIZ_xxx)
	ErrCodeBusiness          = newErrorCode("BIZ", "Business", "General", "Lỗi logic nghiệp vụ chung")
	ErrCodeBusinessState     = newErrorCode("BIZ_001", "Business", "State", "Lỗi trạng thái nghiệp vụ")
	ErrCodeBusinessOperation = newErrorCode("BIZ_002", "Business", "Operation", "Lỗi thao tác nghiệp vụ")
)

// Error định nghĩa cấu trúc lỗi chi tiết
type Error struct {
	Code       ErrorCode // Mã lỗi chi tiết
	Message    string    // Thông báo lỗi
	StatusCode int       // HTTP status code
	Details    any       // Thông tin chi tiết thêm về lỗi
}

// Error trả về message của lỗi
func (e *Error) Error() string {
	return e.Message
}

// Is so sánh hai *Error theo mã lỗi và message (hỗ trợ errors.Is)
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	return e.Code.Code == t.Code.Code && e.Message == t.Message
}

// Unwrap trả về lỗi gốc nếu Details giữ một error (ví dụ lỗi driver được
// ConvertMongoError gói lại), để errors.Is/As nhìn xuyên qua envelope.
func (e *Error) Unwrap() error {
	if cause, ok := e.Details.(error); ok {
		return cause
	}
	return nil
}

// NewError tạo một error mới với đầy đủ thông tin
func NewError(code ErrorCode, message string, statusCode int, details any) error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// Các lỗi đặt tên sẵn; message là một phần hợp đồng API, không đổi chữ.
var (
	// Validation
	ErrInvalidInput  = NewError(ErrCodeValidationInput, "Dữ liệu đầu vào không hợp lệ", StatusBadRequest, nil)
	ErrInvalidEmail  = NewError(ErrCodeValidationInput, "Email không đúng định dạng", StatusBadRequest, nil)
	ErrInvalidFormat = NewError(ErrCodeValidationFormat, "Định dạng dữ liệu không hợp lệ", StatusBadRequest, nil)
	ErrRequiredField = NewError(ErrCodeValidationInput, "Thiếu thông tin bắt buộc", StatusBadRequest, nil)

	// Catalog / Pricing
	ErrInvalidSelection = NewError(ErrCodeInvalidSelection, "Lựa chọn thuộc tính không hợp lệ", StatusBadRequest, nil)
	ErrInvalidQuantity  = NewError(ErrCodeInvalidQuantity, "Số lượng phải là số nguyên dương", StatusBadRequest, nil)
	ErrStaleLoad        = NewError(ErrCodeStaleLoad, "Phiên xem sản phẩm đã bị thay thế bởi yêu cầu mới hơn", StatusConflict, nil)

	// Database
	ErrNotFound   = NewError(ErrCodeDatabaseQuery, "Không tìm thấy dữ liệu", StatusNotFound, nil)
	ErrDuplicate  = NewError(ErrCodeDatabaseQuery, "Dữ liệu đã tồn tại", StatusConflict, nil)
	ErrConstraint = NewError(ErrCodeDatabaseQuery, "Vi phạm ràng buộc dữ liệu", StatusBadRequest, nil)
	ErrConnection = NewError(ErrCodeDatabaseConnection, "Lỗi kết nối cơ sở dữ liệu", StatusServiceUnavailable, nil)

	// Business
	ErrInvalidState     = NewError(ErrCodeBusinessState, "Trạng thái không hợp lệ", StatusBadRequest, nil)
	ErrInvalidOperation = NewError(ErrCodeBusinessOperation, "Thao tác không hợp lệ", StatusBadRequest, nil)
)

// Lỗi MongoDB đã phân loại, chỉ sinh ra từ ConvertMongoError.
var (
	ErrMongoConnection = NewError(ErrCodeDatabaseConnection, "Lỗi kết nối MongoDB", StatusServiceUnavailable, nil)
	ErrMongoNetwork    = NewError(ErrCodeDatabaseConnection, "Lỗi mạng khi kết nối MongoDB", StatusServiceUnavailable, nil)
	ErrMongoTimeout    = NewError(ErrCodeDatabaseConnection, "Kết nối MongoDB bị timeout", StatusServiceUnavailable, nil)
	ErrMongoAuth       = NewError(ErrCodeDatabaseConnection, "Lỗi xác thực MongoDB", StatusServiceUnavailable, nil)
	ErrMongoQuery      = NewError(ErrCodeDatabaseQuery, "Lỗi truy vấn MongoDB", StatusInternalServerError, nil)
	ErrMongoWrite      = NewError(ErrCodeDatabaseQuery, "Lỗi ghi dữ liệu MongoDB", StatusInternalServerError, nil)
	ErrMongoDuplicate  = NewError(ErrCodeDatabaseQuery, "Dữ liệu trùng lặp trong MongoDB", StatusConflict, nil)
	ErrMongoSystem     = NewError(ErrCodeDatabase, "Lỗi hệ thống MongoDB", StatusInternalServerError, nil)
)

// ConvertMongoError chuyển đổi lỗi MongoDB sang lỗi hệ thống.
// ErrNotFound được giữ nguyên để caller phân biệt "không có dữ liệu" với lỗi hạ tầng.
func ConvertMongoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		if converted := convertCommandError(cmdErr.Code); converted != nil {
			return converted
		}
	}

	switch {
	case mongo.IsDuplicateKeyError(err):
		return ErrMongoDuplicate
	case mongo.IsNetworkError(err):
		return ErrMongoNetwork
	case mongo.IsTimeout(err):
		return ErrMongoTimeout
	}

	// Không nhận diện được lỗi cụ thể, gói lỗi gốc vào Details
	return NewError(ErrCodeDatabase, MsgDatabaseError, StatusInternalServerError, err)
}

// convertCommandError phân loại theo dải command error code của MongoDB;
// ngoài các dải đã biết trả về nil để caller thử các helper của driver.
func convertCommandError(code int32) error {
	switch {
	case code >= 100 && code < 200:
		return ErrMongoConnection
	case code >= 200 && code < 300:
		return ErrMongoAuth
	case code >= 300 && code < 400:
		return ErrMongoQuery
	case code >= 400 && code < 500:
		return ErrMongoWrite
	case code >= 500:
		return ErrMongoSystem
	}
	return nil
}
