package basehdl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"print_commerce/internal/common"
	"print_commerce/internal/utility"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
)

// ProcessFilter đọc filter JSON từ query string, chuẩn hóa các giá trị ObjectID
// và validate theo FilterOptions của handler.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ProcessFilter(c fiber.Ctx) (map[string]interface{}, error) {
	filterStr := c.Query("filter", "{}")

	var filter map[string]interface{}
	if err := json.Unmarshal([]byte(filterStr), &filter); err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Filter không đúng định dạng JSON. Chi tiết lỗi: %v. Giá trị filter nhận được: %s", err, filterStr),
			common.StatusBadRequest,
			err,
		)
	}

	filter = normalizeFilter(filter)

	if err := h.validateFilter(filter); err != nil {
		return nil, err
	}
	return filter, nil
}

// normalizeFilter chuyển các string dạng ObjectId trong filter thành primitive.ObjectID.
// Field được coi là ID field khi tên kết thúc bằng "Id"/"ID" (không phân biệt hoa thường).
func normalizeFilter(filter map[string]interface{}) map[string]interface{} {
	if filter == nil {
		return filter
	}

	normalized := make(map[string]interface{}, len(filter))
	for field, value := range filter {
		fieldLower := strings.ToLower(field)
		isIDField := strings.HasSuffix(fieldLower, "id") && len(fieldLower) > 2

		normalized[field] = normalizeFilterValue(value, isIDField)
	}
	return normalized
}

// normalizeFilterValue chuẩn hóa một giá trị trong filter, hỗ trợ nested map/array
// và MongoDB Extended JSON ({"$oid": "..."}).
func normalizeFilterValue(value interface{}, isIDField bool) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		// Extended JSON: {"$oid": "..."} → ObjectID; $oid không hợp lệ giữ nguyên giá trị gốc
		if oidValue, hasOid := v["$oid"]; hasOid {
			if oid, ok := parseObjectIDString(oidValue); ok {
				return oid
			}
			return value
		}

		normalized := make(map[string]interface{}, len(v))
		for key, val := range v {
			// Với $in/$nin trên ID field, từng phần tử trong mảng được chuyển thành ObjectID
			if (key == "$in" || key == "$nin") && isIDField {
				normalized[key] = normalizeIDList(val)
				continue
			}
			normalized[key] = normalizeFilterValue(val, isIDField)
		}
		return normalized

	case []interface{}:
		normalized := make([]interface{}, len(v))
		for i, item := range v {
			normalized[i] = normalizeFilterValue(item, isIDField)
		}
		return normalized

	case string:
		if isIDField {
			if oid, ok := parseObjectIDString(v); ok {
				return oid
			}
		}
		return v

	default:
		return value
	}
}

// normalizeIDList chuyển các phần tử string hợp lệ trong mảng $in/$nin thành ObjectID.
func normalizeIDList(value interface{}) interface{} {
	arr, ok := value.([]interface{})
	if !ok {
		return value
	}

	normalized := make([]interface{}, len(arr))
	for i, item := range arr {
		normalized[i] = item
		if oid, ok := parseObjectIDString(item); ok {
			normalized[i] = oid
		}
	}
	return normalized
}

// parseObjectIDString thử đọc một giá trị bất kỳ thành ObjectID.
func parseObjectIDString(value interface{}) (primitive.ObjectID, bool) {
	str, ok := value.(string)
	if !ok || !primitive.IsValidObjectID(str) {
		return primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(str)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

// validateFilter kiểm tra filter theo FilterOptions: số field tối đa,
// danh sách field bị cấm và whitelist operator.
func (h *BaseHandler[T, CreateInput, UpdateInput]) validateFilter(filter map[string]interface{}) error {
	denied := h.deniedFields()
	operators := h.allowedOperators()
	maxFields := h.maxFilterFields()

	if len(filter) > maxFields {
		return common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Filter vượt quá số lượng trường cho phép. Tối đa %d trường, hiện tại có %d trường. Vui lòng giảm số lượng trường trong filter.", maxFields, len(filter)),
			common.StatusBadRequest,
			nil,
		)
	}

	for field, value := range filter {
		if utility.Contains(denied, field) {
			return common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Trường '%s' không được phép sử dụng trong filter vì lý do bảo mật. Vui lòng sử dụng các trường khác.", field),
				common.StatusBadRequest,
				nil,
			)
		}

		mapValue, ok := value.(map[string]interface{})
		if !ok {
			continue
		}
		for op := range mapValue {
			if strings.HasPrefix(op, "$") && !utility.Contains(operators, op) {
				return common.NewError(
					common.ErrCodeValidationFormat,
					fmt.Sprintf("Toán tử MongoDB '%s' không được phép sử dụng. Các toán tử được phép: %v", op, operators),
					common.StatusBadRequest,
					nil,
				)
			}
		}
	}

	return nil
}

// queryOptions đọc và validate JSON "options" từ query string.
// Trả về cả chuỗi JSON gốc vì parse sort cần đọc lại để giữ thứ tự key.
func (h *BaseHandler[T, CreateInput, UpdateInput]) queryOptions(c fiber.Ctx) (map[string]interface{}, string, error) {
	optionsStr := c.Query("options", "{}")

	var rawOptions map[string]interface{}
	if err := json.Unmarshal([]byte(optionsStr), &rawOptions); err != nil {
		return nil, "", common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Options không đúng định dạng JSON. Chi tiết lỗi: %v. Giá trị options nhận được: %s", err, optionsStr),
			common.StatusBadRequest,
			err,
		)
	}

	if err := h.validateQueryOptions(rawOptions); err != nil {
		return nil, "", err
	}
	return rawOptions, optionsStr, nil
}

// findOneOptionsFromQuery dựng FindOneOptions (projection, sort) từ query "options".
func (h *BaseHandler[T, CreateInput, UpdateInput]) findOneOptionsFromQuery(c fiber.Ctx) (*mongoopts.FindOneOptions, error) {
	rawOptions, optionsJSON, err := h.queryOptions(c)
	if err != nil {
		return nil, err
	}

	opts := mongoopts.FindOne()
	if projection, ok := rawOptions["projection"].(map[string]interface{}); ok {
		opts.SetProjection(projection)
	}
	if sortMap, ok := rawOptions["sort"].(map[string]interface{}); ok {
		opts.SetSort(sortFromJSON(sortMap, optionsJSON))
	}
	return opts, nil
}

// findOptionsFromQuery dựng FindOptions (projection, sort, limit, skip) từ query "options".
func (h *BaseHandler[T, CreateInput, UpdateInput]) findOptionsFromQuery(c fiber.Ctx) (*mongoopts.FindOptions, error) {
	rawOptions, optionsJSON, err := h.queryOptions(c)
	if err != nil {
		return nil, err
	}

	opts := mongoopts.Find()
	if projection, ok := rawOptions["projection"].(map[string]interface{}); ok {
		opts.SetProjection(projection)
	}
	if sortMap, ok := rawOptions["sort"].(map[string]interface{}); ok {
		opts.SetSort(sortFromJSON(sortMap, optionsJSON))
	}
	if limit, ok := rawOptions["limit"].(float64); ok {
		opts.SetLimit(int64(limit))
	}
	if skip, ok := rawOptions["skip"].(float64); ok {
		opts.SetSkip(int64(skip))
	}
	return opts, nil
}

// validateQueryOptions kiểm tra các option được hỗ trợ và ràng buộc của từng option.
func (h *BaseHandler[T, CreateInput, UpdateInput]) validateQueryOptions(options map[string]interface{}) error {
	denied := h.deniedFields()

	for key := range options {
		switch key {
		case "projection", "sort", "limit", "skip":
		default:
			return common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Option '%s' không được hỗ trợ. Các options được phép: projection, sort, limit, skip", key),
				common.StatusBadRequest,
				nil,
			)
		}
	}

	if projection, ok := options["projection"].(map[string]interface{}); ok {
		for field := range projection {
			if utility.Contains(denied, field) {
				return common.NewError(
					common.ErrCodeValidationFormat,
					fmt.Sprintf("Trường '%s' không được phép sử dụng trong projection vì lý do bảo mật", field),
					common.StatusBadRequest,
					nil,
				)
			}
		}
	}

	if sort, ok := options["sort"].(map[string]interface{}); ok {
		for field, value := range sort {
			if utility.Contains(denied, field) {
				return common.NewError(
					common.ErrCodeValidationFormat,
					fmt.Sprintf("Trường '%s' không được phép sử dụng trong sort vì lý do bảo mật", field),
					common.StatusBadRequest,
					nil,
				)
			}
			if v, ok := value.(float64); !ok || (v != 1 && v != -1) {
				return common.NewError(
					common.ErrCodeValidationFormat,
					fmt.Sprintf("Giá trị sort cho trường '%s' phải là 1 (tăng dần) hoặc -1 (giảm dần), giá trị hiện tại: %v", field, value),
					common.StatusBadRequest,
					nil,
				)
			}
		}
	}

	if limit, ok := options["limit"].(float64); ok {
		if limit <= 0 {
			return common.NewError(
				common.ErrCodeValidationFormat,
				"Giá trị limit phải lớn hơn 0",
				common.StatusBadRequest,
				nil,
			)
		}
		if limit > 1000 {
			return common.NewError(
				common.ErrCodeValidationFormat,
				"Giá trị limit không được vượt quá 1000 để đảm bảo hiệu năng hệ thống",
				common.StatusBadRequest,
				nil,
			)
		}
	}

	if skip, ok := options["skip"].(float64); ok && skip < 0 {
		return common.NewError(
			common.ErrCodeValidationFormat,
			"Giá trị skip không được âm",
			common.StatusBadRequest,
			nil,
		)
	}

	return nil
}

// sortFromJSON parse sort giữ nguyên thứ tự field như trong JSON gốc.
// json.Unmarshal vào map làm mất thứ tự key nên phải đọc lại chuỗi JSON
// bằng Decoder theo từng token; không đọc lại được thì fallback về map.
func sortFromJSON(sortMap map[string]interface{}, optionsJSON string) bson.D {
	var sections map[string]json.RawMessage
	if err := json.Unmarshal([]byte(optionsJSON), &sections); err != nil {
		return sortFromMap(sortMap)
	}
	sortRaw, ok := sections["sort"]
	if !ok {
		return bson.D{}
	}

	decoder := json.NewDecoder(bytes.NewReader(sortRaw))
	decoder.UseNumber()

	token, err := decoder.Token()
	if err != nil || token != json.Delim('{') {
		return sortFromMap(sortMap)
	}

	sortBson := bson.D{}
	for decoder.More() {
		keyToken, err := decoder.Token()
		if err != nil {
			break
		}
		field, ok := keyToken.(string)
		if !ok {
			continue
		}

		valueToken, err := decoder.Token()
		if err != nil {
			break
		}
		order, ok := sortOrderValue(valueToken)
		if !ok {
			continue
		}

		sortBson = append(sortBson, bson.E{Key: field, Value: order})
	}
	_, _ = decoder.Token()

	if len(sortBson) == 0 {
		return sortFromMap(sortMap)
	}
	return sortBson
}

// sortFromMap dựng sort từ map đã unmarshal (mất thứ tự key).
func sortFromMap(sortMap map[string]interface{}) bson.D {
	sortBson := bson.D{}
	for field, value := range sortMap {
		order, ok := sortOrderValue(value)
		if !ok {
			continue
		}
		sortBson = append(sortBson, bson.E{Key: field, Value: order})
	}
	return sortBson
}

// sortOrderValue ép một giá trị sort về 1/-1; giá trị khác bị bỏ qua.
func sortOrderValue(value interface{}) (int, bool) {
	var order int
	switch v := value.(type) {
	case json.Number:
		intVal, err := v.Int64()
		if err != nil {
			floatVal, err := v.Float64()
			if err != nil {
				return 0, false
			}
			intVal = int64(floatVal)
		}
		order = int(intVal)
	case float64:
		order = int(v)
	case int:
		order = v
	default:
		return 0, false
	}

	if order != 1 && order != -1 {
		return 0, false
	}
	return order, true
}
