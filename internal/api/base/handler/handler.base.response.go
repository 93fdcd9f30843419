package basehdl

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"

	"print_commerce/internal/common"
)

// JSONResponse trả JSON với Content-Type "application/json; charset=utf-8"
// để tiếng Việt trong message hiển thị đúng trên mọi client.
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// SafeHandler bọc handler với recover: panic trong handler được bắt lại và trả
// về response lỗi thay vì làm chết request.
func (h *BaseHandler[T, CreateInput, UpdateInput]) SafeHandler(c fiber.Ctx, handler func() error) error {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		debug.PrintStack()

		h.HandleResponse(c, nil, common.NewError(
			common.ErrCodeInternalServer,
			fmt.Sprintf("Lỗi hệ thống không mong muốn: %v", r),
			common.StatusInternalServerError,
			nil,
		))
	}()
	return handler()
}

// run bọc một thao tác CRUD trong SafeHandler và trả kết quả qua HandleResponse.
// Các endpoint CRUD chỉ cần trả (data, error), phần response để run lo.
func (h *BaseHandler[T, CreateInput, UpdateInput]) run(c fiber.Ctx, fn func(c fiber.Ctx) (interface{}, error)) error {
	return h.SafeHandler(c, func() error {
		data, err := fn(c)
		h.HandleResponse(c, data, err)
		return nil
	})
}

// HandleResponse chuẩn hóa response cho client: thành công bọc envelope
// success, lỗi đi qua errorBody để giữ đúng code/status đã khai báo.
func (h *BaseHandler[T, CreateInput, UpdateInput]) HandleResponse(c fiber.Ctx, data interface{}, err error) {
	if err != nil {
		status, body := errorBody(err)
		JSONResponse(c, status, body)
		return
	}

	JSONResponse(c, common.StatusOK, fiber.Map{
		"code":    common.StatusOK,
		"message": common.MsgSuccess,
		"data":    data,
		"status":  "success",
	})
}

// errorBody map lỗi về (http status, envelope lỗi). Lỗi nghiệp vụ
// (*common.Error) giữ nguyên code/status/details đã khai báo trong catalog;
// mọi lỗi khác coi là lỗi hệ thống 500.
func errorBody(err error) (int, fiber.Map) {
	var appErr *common.Error
	if errors.As(err, &appErr) {
		return appErr.StatusCode, fiber.Map{
			"code":    appErr.Code.Code,
			"message": appErr.Message,
			"details": appErr.Details,
			"status":  "error",
		}
	}

	return common.StatusInternalServerError, fiber.Map{
		"code":    common.ErrCodeDatabase.Code,
		"message": err.Error(),
		"status":  "error",
	}
}
