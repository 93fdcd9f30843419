// Package basehdl cung cấp BaseHandler generic cho các endpoint CRUD của một
// collection cùng các tiện ích parse/validate request dùng chung cho handler domain.
package basehdl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	basesvc "print_commerce/internal/api/base/service"
	"print_commerce/internal/common"
	"print_commerce/internal/global"

	"github.com/gofiber/fiber/v3"
)

// Giá trị mặc định khi FilterOptions của handler chưa được cấu hình riêng.
var (
	defaultDeniedFields = []string{"password", "token", "secret", "key", "hash"}

	defaultFilterOperators = []string{"$eq", "$gt", "$gte", "$lt", "$lte", "$in", "$nin", "$exists"}
)

const defaultMaxFilterFields = 10

// FilterOptions cấu hình validate filter của một handler.
type FilterOptions struct {
	DeniedFields     []string // Trường bị cấm trong filter/projection/sort
	AllowedOperators []string // Operator MongoDB được phép trong filter
	MaxFields        int      // Số field tối đa trong một filter
}

// BaseHandler là base cho các Fiber handler, cung cấp các endpoint CRUD cơ bản.
// Struct này dùng Generic Type để tái sử dụng cho nhiều loại model khác nhau.
//
// Type parameters:
// - T: Kiểu dữ liệu của model
// - CreateInput: Kiểu dữ liệu của input khi tạo mới
// - UpdateInput: Kiểu dữ liệu của input khi cập nhật
type BaseHandler[T any, CreateInput any, UpdateInput any] struct {
	BaseService   basesvc.BaseServiceMongo[T] // Service xử lý nghiệp vụ với MongoDB
	filterOptions FilterOptions               // Cấu hình validate filter
}

// NewBaseHandler tạo mới một BaseHandler với BaseService được cung cấp.
func NewBaseHandler[T any, CreateInput any, UpdateInput any](baseService basesvc.BaseServiceMongo[T]) *BaseHandler[T, CreateInput, UpdateInput] {
	return &BaseHandler[T, CreateInput, UpdateInput]{
		BaseService: baseService,
		filterOptions: FilterOptions{
			DeniedFields:     defaultDeniedFields,
			AllowedOperators: defaultFilterOperators,
			MaxFields:        defaultMaxFilterFields,
		},
	}
}

// deniedFields trả về danh sách trường bị cấm, fallback về mặc định khi chưa cấu hình.
func (h *BaseHandler[T, CreateInput, UpdateInput]) deniedFields() []string {
	if len(h.filterOptions.DeniedFields) > 0 {
		return h.filterOptions.DeniedFields
	}
	return defaultDeniedFields
}

// allowedOperators trả về danh sách operator được phép, fallback về mặc định.
func (h *BaseHandler[T, CreateInput, UpdateInput]) allowedOperators() []string {
	if len(h.filterOptions.AllowedOperators) > 0 {
		return h.filterOptions.AllowedOperators
	}
	return defaultFilterOperators
}

// maxFilterFields trả về số field tối đa cho phép trong filter, fallback về mặc định.
func (h *BaseHandler[T, CreateInput, UpdateInput]) maxFilterFields() int {
	if h.filterOptions.MaxFields > 0 {
		return h.filterOptions.MaxFields
	}
	return defaultMaxFilterFields
}

// ValidateInput validate chi tiết dữ liệu đầu vào: struct tag `validate` của
// go-playground cộng thêm các tag tự định nghĩa maxLength/min/max.
// Input dạng slice (insert-many, upsert-many) được validate từng phần tử một,
// vì validator.Struct không nhận trực tiếp slice.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ValidateInput(input interface{}) error {
	val := reflect.ValueOf(input)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Struct:
		return h.validateStructInput(val)
	case reflect.Slice, reflect.Array:
		for i := 0; i < val.Len(); i++ {
			elem := val.Index(i)
			if elem.Kind() == reflect.Ptr {
				elem = elem.Elem()
			}
			if elem.Kind() != reflect.Struct {
				return nil
			}
			if err := h.validateStructInput(elem); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

// validateStructInput validate một struct: validator toàn cục trước, sau đó
// các tag maxLength (chuỗi) và min/max (số).
func (h *BaseHandler[T, CreateInput, UpdateInput]) validateStructInput(val reflect.Value) error {
	if err := global.Validate.Struct(val.Interface()); err != nil {
		return common.NewError(common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, err)
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		switch field.Kind() {
		case reflect.String:
			if maxTag := fieldType.Tag.Get("maxLength"); maxTag != "" {
				maxLen, err := strconv.Atoi(maxTag)
				if err == nil && len(field.String()) > maxLen {
					return common.NewError(
						common.ErrCodeValidationInput,
						fmt.Sprintf("Trường %s vượt quá độ dài cho phép (%d ký tự)", fieldType.Name, maxLen),
						common.StatusBadRequest,
						nil,
					)
				}
			}
		case reflect.Int, reflect.Int64:
			if minTag := fieldType.Tag.Get("min"); minTag != "" {
				minVal, err := strconv.ParseInt(minTag, 10, 64)
				if err == nil && field.Int() < minVal {
					return common.NewError(
						common.ErrCodeValidationInput,
						fmt.Sprintf("Trường %s phải lớn hơn hoặc bằng %d", fieldType.Name, minVal),
						common.StatusBadRequest,
						nil,
					)
				}
			}
			if maxTag := fieldType.Tag.Get("max"); maxTag != "" {
				maxVal, err := strconv.ParseInt(maxTag, 10, 64)
				if err == nil && field.Int() > maxVal {
					return common.NewError(
						common.ErrCodeValidationInput,
						fmt.Sprintf("Trường %s phải nhỏ hơn hoặc bằng %d", fieldType.Name, maxVal),
						common.StatusBadRequest,
						nil,
					)
				}
			}
		}
	}

	return nil
}

// ParseRequestBody parse và validate dữ liệu từ request body.
// Dùng json.Decoder với UseNumber() để không mất precision với các số lớn.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ParseRequestBody(c fiber.Ctx, input interface{}) error {
	decoder := json.NewDecoder(bytes.NewReader(c.Body()))
	decoder.UseNumber()
	if err := decoder.Decode(input); err != nil {
		return common.NewError(common.ErrCodeValidationFormat, common.MsgValidationError, common.StatusBadRequest, err)
	}

	return h.ValidateInput(input)
}

// GetIDFromContext lấy ID từ URI params của request.
func (h *BaseHandler[T, CreateInput, UpdateInput]) GetIDFromContext(c fiber.Ctx) string {
	return c.Params("id")
}
