package basesvc

import (
	"reflect"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các helper trong file này đọc metadata từ struct của model: field ID, cờ IsSystem,
// giá trị default khi insert (tag default) và field có sparse unique index (tag index).

// bsonKeyOfField lấy bson key của một struct field, trả "" nếu field không map vào BSON.
func bsonKeyOfField(f reflect.StructField) string {
	tag := f.Tag.Get("bson")
	if tag == "" || tag == "-" {
		return ""
	}
	return strings.TrimSpace(strings.Split(tag, ",")[0])
}

// getIDFromModel lấy ObjectID từ field ID của model (nếu có và khác zero).
func getIDFromModel(data interface{}) (primitive.ObjectID, bool) {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return primitive.NilObjectID, false
	}

	field := v.FieldByName("ID")
	if !field.IsValid() || !field.CanInterface() {
		return primitive.NilObjectID, false
	}
	if id, ok := field.Interface().(primitive.ObjectID); ok && !id.IsZero() {
		return id, true
	}
	return primitive.NilObjectID, false
}

// getIsSystemValue đọc field IsSystem (bool) của model. Trả (giá trị, model có field không).
func getIsSystemValue(data interface{}) (bool, bool) {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return false, false
	}

	field := v.FieldByName("IsSystem")
	if !field.IsValid() || !field.CanInterface() || field.Kind() != reflect.Bool {
		return false, false
	}
	return field.Bool(), true
}

// setIsSystemValue gán field IsSystem nếu set được (data phải là con trỏ tới struct).
func setIsSystemValue(data interface{}, value bool) {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return
	}

	field := v.FieldByName("IsSystem")
	if field.IsValid() && field.CanSet() && field.Kind() == reflect.Bool {
		field.SetBool(value)
	}
}

// applyInsertDefaultsToModel set giá trị default từ struct tag cho các field đang zero.
// ptr phải là con trỏ tới struct model.
func applyInsertDefaultsToModel(ptr interface{}) {
	if ptr == nil {
		return
	}
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return
	}
	struc := v.Elem()
	rt := struc.Type()

	defaults := getInsertDefaultsFromModelType(rt)
	if len(defaults) == 0 {
		return
	}

	for i := 0; i < rt.NumField(); i++ {
		key := bsonKeyOfField(rt.Field(i))
		if key == "" {
			continue
		}
		defaultVal, ok := defaults[key]
		if !ok {
			continue
		}
		fieldVal := struc.Field(i)
		if !fieldVal.CanSet() || !fieldVal.IsZero() {
			continue
		}
		rv := reflect.ValueOf(defaultVal)
		switch {
		case rv.Type().AssignableTo(fieldVal.Type()):
			fieldVal.Set(rv)
		case rv.Type().ConvertibleTo(fieldVal.Type()):
			fieldVal.Set(rv.Convert(fieldVal.Type()))
		}
	}
}

// getInsertDefaultsFromModelType đọc tag default trên model, trả map[bsonKey]giá trị.
// Hỗ trợ kiểu bool, int/int32, int64 và string.
func getInsertDefaultsFromModelType(rt reflect.Type) map[string]interface{} {
	if rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil
	}

	out := make(map[string]interface{})
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		defaultStr := f.Tag.Get("default")
		if defaultStr == "" {
			continue
		}
		key := bsonKeyOfField(f)
		if key == "" {
			continue
		}
		if val := parseDefaultValue(defaultStr, f.Type); val != nil {
			out[key] = val
		}
	}
	return out
}

// parseDefaultValue ép chuỗi trong tag default về đúng kiểu của field.
func parseDefaultValue(s string, t reflect.Type) interface{} {
	switch t.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return false
		}
		return b
	case reflect.Int, reflect.Int32:
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return int32(0)
		}
		return int32(n)
	case reflect.Int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return int64(0)
		}
		return n
	case reflect.String:
		return s
	default:
		return nil
	}
}

// getSparseUniqueFieldsFromModelType liệt kê bson key của các field mang index:"unique,sparse".
// Grammar của tag giống database.parseIndexTag: ';' tách các index, ',' tách option.
func getSparseUniqueFieldsFromModelType(rt reflect.Type) []string {
	if rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil
	}

	var fields []string
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		indexTag, ok := f.Tag.Lookup("index")
		if !ok {
			continue
		}
		key := bsonKeyOfField(f)
		if key == "" {
			continue
		}
		for _, part := range strings.Split(indexTag, ";") {
			hasUnique, hasSparse := false, false
			for _, opt := range strings.Split(part, ",") {
				switch strings.Split(opt, ":")[0] {
				case "unique":
					hasUnique = true
				case "sparse":
					hasSparse = true
				}
			}
			if hasUnique && hasSparse {
				fields = append(fields, key)
				break
			}
		}
	}
	return fields
}
