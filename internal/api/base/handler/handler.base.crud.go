package basehdl

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	basesvc "print_commerce/internal/api/base/service"
	"print_commerce/internal/common"
	"print_commerce/internal/utility"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// objectIDParam đọc và validate param :id trên URI.
func objectIDParam(c fiber.Ctx) (primitive.ObjectID, error) {
	id := c.Params("id")
	if id == "" {
		return primitive.NilObjectID, common.NewError(
			common.ErrCodeValidationFormat,
			"ID không được để trống trong URL params",
			common.StatusBadRequest,
			nil,
		)
	}
	if !primitive.IsValidObjectID(id) {
		return primitive.NilObjectID, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("ID '%s' không đúng định dạng MongoDB ObjectID (phải là chuỗi hex 24 ký tự)", id),
			common.StatusBadRequest,
			nil,
		)
	}
	return utility.String2ObjectID(id), nil
}

// rawFilterFromQuery đọc filter JSON từ query string, không qua normalize/validate.
// Dùng cho các endpoint đếm/distinct/kiểm tra tồn tại, giữ nguyên filter thô cho driver.
func rawFilterFromQuery(c fiber.Ctx) (map[string]interface{}, error) {
	var filter map[string]interface{}
	if err := json.Unmarshal([]byte(c.Query("filter", "{}")), &filter); err != nil {
		return nil, common.NewError(common.ErrCodeValidationFormat, "Filter không hợp lệ", common.StatusBadRequest, nil)
	}
	return filter, nil
}

// pageParams đọc page/limit từ query string; giá trị thiếu hoặc không hợp lệ
// quay về mặc định page=1, limit=10.
func pageParams(c fiber.Ctx) (int64, int64) {
	page, err := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.ParseInt(c.Query("limit", "10"), 10, 64)
	if err != nil || limit <= 0 {
		limit = 10
	}

	return page, limit
}

// createModelFromBody parse body thành CreateInput, validate và transform sang Model.
func (h *BaseHandler[T, CreateInput, UpdateInput]) createModelFromBody(c fiber.Ctx) (*T, error) {
	var input CreateInput
	if err := h.ParseRequestBody(c, &input); err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON hoặc không khớp với cấu trúc yêu cầu. Chi tiết: %v", err),
			common.StatusBadRequest,
			err,
		)
	}
	if err := h.ValidateInput(&input); err != nil {
		return nil, err
	}

	model, err := h.TransformCreateInputToModel(&input)
	if err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Lỗi transform dữ liệu: %v", err),
			common.StatusBadRequest,
			err,
		)
	}
	return model, nil
}

// updateSetFromBody parse body thành UpdateInput, validate/transform rồi dựng
// UpdateData với $set chỉ gồm các field non-zero (partial update).
func (h *BaseHandler[T, CreateInput, UpdateInput]) updateSetFromBody(c fiber.Ctx) (*basesvc.UpdateData, error) {
	var input UpdateInput
	if err := h.ParseRequestBody(c, &input); err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Dữ liệu cập nhật không đúng định dạng JSON hoặc không khớp với cấu trúc yêu cầu. Chi tiết: %v", err),
			common.StatusBadRequest,
			err,
		)
	}
	if err := h.ValidateInput(&input); err != nil {
		return nil, err
	}

	model, err := h.TransformUpdateInputToModel(&input)
	if err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Lỗi transform dữ liệu: %v", err),
			common.StatusBadRequest,
			err,
		)
	}
	return h.nonZeroSet(model)
}

// nonZeroSet dựng UpdateData với $set gồm các field non-zero của model.
// Field zero không vào $set nên giá trị hiện có trong DB không bị ghi đè.
func (h *BaseHandler[T, CreateInput, UpdateInput]) nonZeroSet(model *T) (*basesvc.UpdateData, error) {
	modelMap, err := utility.ToMap(model)
	if err != nil {
		return nil, common.NewError(
			common.ErrCodeInternalServer,
			fmt.Sprintf("Lỗi convert model sang map: %v", err),
			common.StatusInternalServerError,
			err,
		)
	}

	updateData := &basesvc.UpdateData{Set: make(map[string]interface{})}
	for k, v := range modelMap {
		if rv := reflect.ValueOf(v); rv.IsValid() && !rv.IsZero() {
			updateData.Set[k] = v
		}
	}
	return updateData, nil
}

// upsertSet dựng $set cho Upsert: field nằm trong CreateInput được ghi kể cả khi
// giá trị là zero (0/false/""), field ngoài input không bị đụng tới.
// Không xác định được tập field của input thì fallback về $set non-zero.
func (h *BaseHandler[T, CreateInput, UpdateInput]) upsertSet(model *T) (*basesvc.UpdateData, error) {
	keySet := h.getCreateInputBSONKeySet()
	if keySet == nil {
		return h.nonZeroSet(model)
	}

	modelMap, err := utility.ToMap(model)
	if err != nil {
		return nil, common.NewError(
			common.ErrCodeInternalServer,
			fmt.Sprintf("Lỗi convert model sang map: %v", err),
			common.StatusInternalServerError,
			err,
		)
	}

	updateData := &basesvc.UpdateData{Set: make(map[string]interface{})}
	for k, v := range modelMap {
		if keySet[k] {
			updateData.Set[k] = v
		}
	}
	return updateData, nil
}

// InsertOne thêm mới một document. Body là DTO CreateInput, được validate và
// transform sang Model qua struct tag `transform` (ví dụ: string → ObjectID).
func (h *BaseHandler[T, CreateInput, UpdateInput]) InsertOne(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx) (interface{}, error) {
		model, err := h.createModelFromBody(c)
		if err != nil {
			return nil, err
		}
		return h.BaseService.InsertOne(c.Context(), *model)
	})
}

// InsertMany thêm nhiều document. Body là mảng JSON các document.
func (h *BaseHandler[T, CreateInput, UpdateInput]) InsertMany(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx) (interface{}, error) {
		var inputs []T
		if err := h.ParseRequestBody(c, &inputs); err != nil {
			return nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu gửi lên phải là một mảng JSON và các phần tử phải khớp với cấu trúc yêu cầu. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			)
		}
		return h.BaseService.InsertMany(c.Context(), inputs)
	})
}

// FindOne tìm một document theo filter trên query string.
// Options hỗ trợ projection và sort, ví dụ: {"projection": {"field": 1}, "sort": {"field": 1}}.
func (h *BaseHandler[T, CreateInput, UpdateInput]) FindOne(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx) (interface{}, error) {
		filter, err := h.ProcessFilter(c)
		if err != nil {
			return nil, err
		}
		opts, err := h.findOneOptionsFromQuery(c)
		if err != nil {
			return nil, err
		}
		return h.BaseService.FindOne(c.Context(), filter, opts)
	})
}

// FindOneById tìm một document theo param :id.
func (h *BaseHandler[T, CreateInput, UpdateInput]) FindOneById(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx) (interface{}, error) {
		id, err := objectIDParam(c)
		if err != nil {
			return nil, err
		}
		return h.BaseService.FindOneById(c.Context(), id)
	})
}

// FindManyByIds tìm nhiều document theo danh sách ID trong query "ids" (mảng JSON).
func (h *BaseHandler[T, CreateInput, UpdateInput]) FindManyByIds(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx) (interface{}, error) {
		idsStr := c.Query("ids", "[]")

		var ids []string
		if err := json.Unmarshal([]byte(idsStr), &ids); err != nil {
			return nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Danh sách ID phải là một mảng JSON. Giá trị nhận được: %s. Chi tiết lỗi: %v", idsStr, err),
				common.StatusBadRequest,
				nil,
			)
		}

		objectIds := make([]primitive.ObjectID, len(ids))
		for i, id := range ids {
			if !primitive.IsValidObjectID(id) {
				return nil, common.NewError(
					common.ErrCodeValidationFormat,
					fmt.Sprintf("ID '%s' tại vị trí %d không đúng định dạng MongoDB ObjectID (phải là chuỗi hex 24 ký tự)", id, i),
					common.StatusBadRequest,
					nil,
				)
			}
			objectIds[i] = utility.String2ObjectID(id)
		}

		return h.BaseService.FindManyByIds(c.Context(), objectIds)
	})
}

// FindWithPagination tìm nhiều document với phân trang.
// Query: filter (JSON), options (JSON), page (mặc định 1), limit (mặc định 10).
// Limit/skip do service tự tính từ page/limit để đảm bảo nhất quán.
func (h *BaseHandler[T, CreateInput, UpdateInput]) FindWithPagination(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx) (interface{}, error) {
		filter, err := h.ProcessFilter(c)
		if err != nil {
			return nil, err
		}
		opts, err := h.findOptionsFromQuery(c)
		if err != nil {
			return nil, err
		}

		page, limit := pageParams(c)
		return h.BaseService.FindWithPagination(c.Context(), filter, page, limit, opts)
	})
}

// Find tìm nhiều document theo filter trên query string.
// Options hỗ trợ projection, sort, limit, skip.
func (h *BaseHandler[T, CreateInput, UpdateInput]) Find(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx) (interface{}, error) {
		filter, err := h.ProcessFilter(c)
		if err != nil {
			return nil, err
		}
		opts, err := h.findOptionsFromQuery(c)
		if err != nil {
			return nil, err
		}

		data, err := h.BaseService.Find(c.Context(), filter, opts)
		if err != nil {
			return nil, err
		}
		// Không có kết quả vẫn trả mảng rỗng, không trả null
		if data == nil {
			data = []T{}
		}
		return data, nil
	})
}

// UpdateOne cập nhật một document theo filter. Body là UpdateInput, chỉ các
// trường có trong input được update, các trường khác giữ nguyên.
func (h *BaseHandler[T, CreateInput, UpdateInput]) UpdateOne(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx) (interface{}, error) {
		filter, err := h.ProcessFilter(c)
		if err != nil {
			return nil, err
		}
		updateData, err := h.updateSetFromBody(c)
		if err != nil {
			return nil, err
		}
		return h.BaseService.UpdateOne(c.Context(), filter, updateData, nil)
	})
}

// UpdateMany cập nhật nhiều document theo filter, trả về số document đã cập nhật.
func (h *BaseHandler[T, CreateInput, UpdateInput]) UpdateMany(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx) (interface{}, error) {
		filter, err := h.ProcessFilter(c)
		if err != nil {
			return nil, err
		}
		updateData, err := h.updateSetFromBody(c)
		if err != nil {
			return nil, err
		}
		return h.BaseService.UpdateMany(c.Context(), filter, updateData, nil)
	})
}

// UpdateById cập nhật một document theo param :id.
func (h *BaseHandler[T, CreateInput, UpdateInput]) UpdateById(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx) (interface{}, error) {
		id, err := objectIDParam(c)
		if err != nil {
			return nil, err
		}
		updateData, err := h.updateSetFromBody(c)
		if err != nil {
			return nil, err
		}
		return h.BaseService.UpdateById(c.Context(), id, updateData)
	})
}

// DeleteOne xóa một document theo filter trên query string.
func (h *BaseHandler[T, CreateInput, UpdateInput]) DeleteOne(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx) (interface{}, error) {
		filter, err := h.ProcessFilter(c)
		if err != nil {
			return nil, err
		}
		return nil, h.BaseService.DeleteOne(c.Context(), filter)
	})
}

// DeleteMany xóa nhiều document theo filter, trả về số document đã xóa.
func (h *BaseHandler[T, CreateInput, UpdateInput]) DeleteMany(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx) (interface{}, error) {
		filter, err := h.ProcessFilter(c)
		if err != nil {
			return nil, err
		}
		return h.BaseService.DeleteMany(c.Context(), filter)
	})
}

// DeleteById xóa một document theo param :id.
func (h *BaseHandler[T, CreateInput, UpdateInput]) DeleteById(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx) (interface{}, error) {
		id, err := objectIDParam(c)
		if err != nil {
			return nil, err
		}
		return nil, h.BaseService.DeleteById(c.Context(), id)
	})
}

// FindOneAndUpdate tìm và cập nhật một document, trả về document sau khi cập nhật.
// Không có document thỏa filter thì tạo mới (upsert).
func (h *BaseHandler[T, CreateInput, UpdateInput]) FindOneAndUpdate(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx) (interface{}, error) {
		filter, err := h.ProcessFilter(c)
		if err != nil {
			return nil, err
		}
		updateData, err := h.updateSetFromBody(c)
		if err != nil {
			return nil, err
		}
		return h.BaseService.FindOneAndUpdate(c.Context(), filter, updateData, nil)
	})
}

// FindOneAndDelete tìm và xóa một document, trả về document đã xóa.
func (h *BaseHandler[T, CreateInput, UpdateInput]) FindOneAndDelete(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx) (interface{}, error) {
		filter, err := h.ProcessFilter(c)
		if err != nil {
			return nil, err
		}
		return h.BaseService.FindOneAndDelete(c.Context(), filter, nil)
	})
}

// CountDocuments đếm số document thỏa filter trên query string.
func (h *BaseHandler[T, CreateInput, UpdateInput]) CountDocuments(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx) (interface{}, error) {
		filterStr := c.Query("filter", "{}")
		logrus.WithFields(logrus.Fields{
			"filter_string": filterStr,
			"endpoint":      c.Path(),
		}).Debug("Filter string từ query")

		var filter map[string]interface{}
		if err := json.Unmarshal([]byte(filterStr), &filter); err != nil {
			logrus.WithFields(logrus.Fields{
				"filter_string": filterStr,
				"endpoint":      c.Path(),
				"error":         err,
			}).Debug("Lỗi khi parse filter")

			return nil, common.NewError(
				common.ErrCodeValidationFormat,
				"Filter không hợp lệ",
				common.StatusBadRequest,
				err,
			)
		}

		return h.BaseService.CountDocuments(c.Context(), filter)
	})
}

// Distinct lấy danh sách giá trị duy nhất của trường :field, filter qua query string.
func (h *BaseHandler[T, CreateInput, UpdateInput]) Distinct(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx) (interface{}, error) {
		field := c.Params("field")
		if field == "" {
			return nil, common.NewError(common.ErrCodeValidationFormat, "Tên trường không hợp lệ", common.StatusBadRequest, nil)
		}

		filter, err := rawFilterFromQuery(c)
		if err != nil {
			return nil, err
		}
		return h.BaseService.Distinct(c.Context(), field, filter)
	})
}

// Upsert thêm mới hoặc cập nhật một document theo filter trên query string.
// Body là DTO CreateInput (validate + transform giống InsertOne); không có
// document thỏa filter thì tạo mới, có thì cập nhật.
func (h *BaseHandler[T, CreateInput, UpdateInput]) Upsert(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx) (interface{}, error) {
		filter, err := h.ProcessFilter(c)
		if err != nil {
			return nil, err
		}
		model, err := h.createModelFromBody(c)
		if err != nil {
			return nil, err
		}
		updateData, err := h.upsertSet(model)
		if err != nil {
			return nil, err
		}
		return h.BaseService.Upsert(c.Context(), filter, updateData)
	})
}

// UpsertMany thêm mới hoặc cập nhật nhiều document theo filter trên query string.
// Body là mảng DTO []CreateInput, từng item được validate + transform như Upsert.
func (h *BaseHandler[T, CreateInput, UpdateInput]) UpsertMany(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx) (interface{}, error) {
		filter, err := h.ProcessFilter(c)
		if err != nil {
			return nil, err
		}

		var inputs []CreateInput
		if err := h.ParseRequestBody(c, &inputs); err != nil {
			return nil, err
		}

		var models []T
		for i := range inputs {
			if err := h.ValidateInput(&inputs[i]); err != nil {
				return nil, err
			}
			model, err := h.TransformCreateInputToModel(&inputs[i])
			if err != nil {
				return nil, common.NewError(
					common.ErrCodeValidationFormat,
					fmt.Sprintf("Lỗi transform dữ liệu item %d: %v", i+1, err),
					common.StatusBadRequest,
					err,
				)
			}
			if model == nil {
				return nil, common.NewError(
					common.ErrCodeInternalServer,
					fmt.Sprintf("Transform trả về nil cho item %d", i+1),
					common.StatusInternalServerError,
					nil,
				)
			}
			models = append(models, *model)
		}

		// Copy sang map mới để range trên filter nil vẫn an toàn
		filterMap := make(map[string]interface{}, len(filter))
		for k, v := range filter {
			filterMap[k] = v
		}

		return h.BaseService.UpsertMany(c.Context(), filterMap, models)
	})
}

// DocumentExists kiểm tra có document nào thỏa filter trên query string không.
func (h *BaseHandler[T, CreateInput, UpdateInput]) DocumentExists(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx) (interface{}, error) {
		filter, err := rawFilterFromQuery(c)
		if err != nil {
			return nil, err
		}
		return h.BaseService.DocumentExists(c.Context(), filter)
	})
}
