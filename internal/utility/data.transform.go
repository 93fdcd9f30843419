package utility

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransformTag là cấu hình parse từ tag `transform` trên field DTO.
//
// Format tag: "[type][,format=<layout>][,default=<value>][,map=<field>][,optional|required]"
// với type theo convention <input>_<output>. Ví dụ:
//   - transform:"str_objectid"                 string → primitive.ObjectID
//   - transform:"str_objectid,map=ProductID"   convert rồi gán vào field ProductID của Model
//   - transform:"str_objectid_ptr"             string → *primitive.ObjectID
//   - transform:"str_time,format=2006-01-02"   string → int64 timestamp (UnixMilli)
//   - transform:"str_objectid,optional"        input rỗng thì bỏ qua field
type TransformTag struct {
	Type     string
	Format   string // Layout thời gian cho str_time
	Default  string // Giá trị thay thế khi input rỗng
	Optional bool   // Input rỗng: bỏ qua field
	Required bool   // Input rỗng: báo lỗi
	MapTo    string // Tên field đích trong Model khi khác tên field DTO
}

// defaultTimeLayout dùng cho str_time khi tag không khai báo format
const defaultTimeLayout = "2006-01-02T15:04:05"

// ParseTransformTag parse chuỗi tag transform thành TransformTag
func ParseTransformTag(tag string) (*TransformTag, error) {
	cfg := &TransformTag{Format: defaultTimeLayout}
	if tag == "" {
		return cfg, nil
	}

	parts := strings.Split(tag, ",")
	cfg.Type = strings.TrimSpace(parts[0])

	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
		case part == "optional":
			cfg.Optional = true
		case part == "required":
			cfg.Required = true
		case strings.Contains(part, "="):
			kv := strings.SplitN(part, "=", 2)
			key, value := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])
			switch key {
			case "format":
				cfg.Format = value
			case "default":
				cfg.Default = value
			case "map":
				cfg.MapTo = value
			}
		}
	}

	return cfg, nil
}

// TransformFieldValue convert giá trị một field DTO theo cấu hình tag.
// Input rỗng (nil hoặc chuỗi rỗng) xử lý theo default/optional/required
// trước khi converter chạy; trả về (nil, nil) nghĩa là bỏ qua field.
func TransformFieldValue(value interface{}, cfg *TransformTag) (interface{}, error) {
	strValue, isStr := value.(string)
	if value == nil || (isStr && strValue == "") {
		if cfg.Default != "" {
			return convertValue(cfg.Default, cfg)
		}
		if cfg.Optional {
			return nil, nil
		}
		if cfg.Required {
			if value == nil {
				return nil, fmt.Errorf("field là required nhưng không có giá trị")
			}
			return nil, fmt.Errorf("field là required nhưng giá trị rỗng")
		}
		return nil, nil
	}

	return convertValue(value, cfg)
}

// convertValue chạy converter theo Type. Type rỗng hoặc không có converter
// tương ứng thì giữ nguyên giá trị gốc (field copy thẳng, ví dụ type "string").
func convertValue(value interface{}, cfg *TransformTag) (interface{}, error) {
	switch cfg.Type {
	case "str_objectid":
		return toObjectID(value)
	case "str_objectid_ptr":
		return toObjectIDPtr(value)
	case "str_time":
		return toUnixMilli(value, cfg.Format)
	case "str_number":
		return toNumber(value)
	case "str_int64":
		return toInt64(value)
	case "str_bool":
		return toBool(value)
	default:
		return value, nil
	}
}

// toObjectID convert chuỗi hex 24 ký tự → primitive.ObjectID
func toObjectID(value interface{}) (primitive.ObjectID, error) {
	strValue, ok := value.(string)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("giá trị không phải là string: %T", value)
	}

	objID, err := primitive.ObjectIDFromHex(strValue)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("không thể convert string '%s' sang ObjectID: %w", strValue, err)
	}
	return objID, nil
}

// toObjectIDPtr như toObjectID nhưng trả con trỏ, cho field Model dạng *ObjectID
func toObjectIDPtr(value interface{}) (*primitive.ObjectID, error) {
	objID, err := toObjectID(value)
	if err != nil {
		return nil, err
	}
	return &objID, nil
}

// toUnixMilli parse chuỗi thời gian theo layout → Unix timestamp milli giây
func toUnixMilli(value interface{}, layout string) (int64, error) {
	strValue, ok := value.(string)
	if !ok {
		return 0, fmt.Errorf("giá trị không phải là string: %T", value)
	}

	t, err := time.Parse(layout, strValue)
	if err != nil {
		return 0, fmt.Errorf("không thể parse time '%s' với format '%s': %w", strValue, layout, err)
	}
	return t.UnixMilli(), nil
}

// toNumber convert string hoặc JSON number: số nguyên trả int64, có phần lẻ trả float64
func toNumber(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string:
		if intVal, err := strconv.ParseInt(v, 10, 64); err == nil {
			return intVal, nil
		}
		if floatVal, err := strconv.ParseFloat(v, 64); err == nil {
			return floatVal, nil
		}
		return v, nil
	case float64:
		if v == float64(int64(v)) {
			return int64(v), nil
		}
		return v, nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	default:
		return fmt.Sprintf("%v", value), nil
	}
}

// toInt64 convert số bất kỳ hoặc chuỗi số thập phân → int64
func toInt64(value interface{}) (int64, error) {
	if s, ok := value.(string); ok {
		return strconv.ParseInt(s, 10, 64)
	}

	rv := reflect.ValueOf(value)
	switch {
	case rv.CanInt():
		return rv.Int(), nil
	case rv.CanUint():
		return int64(rv.Uint()), nil
	case rv.CanFloat():
		return int64(rv.Float()), nil
	default:
		return 0, fmt.Errorf("không thể convert %T sang int64", value)
	}
}

// toBool convert bool/chuỗi bool/số → bool (số khác 0 là true)
func toBool(value interface{}) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	}

	rv := reflect.ValueOf(value)
	switch {
	case rv.CanInt():
		return rv.Int() != 0, nil
	case rv.CanFloat():
		return rv.Float() != 0, nil
	default:
		return false, fmt.Errorf("không thể convert %T sang bool", value)
	}
}
