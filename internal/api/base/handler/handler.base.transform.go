package basehdl

import (
	"fmt"
	"reflect"
	"strings"

	"print_commerce/internal/utility"
)

// TransformCreateInputToModel transform CreateInput (DTO) sang Model (T).
// Field có struct tag `transform` được convert theo config (ví dụ: string → ObjectID),
// hỗ trợ map sang field khác tên trên Model qua option `map=<field_name>`.
func (h *BaseHandler[T, CreateInput, UpdateInput]) TransformCreateInputToModel(input *CreateInput) (*T, error) {
	return transformInputToModel[T](input)
}

// TransformUpdateInputToModel transform UpdateInput (DTO) sang Model (T).
// Dùng chung logic transform với TransformCreateInputToModel.
func (h *BaseHandler[T, CreateInput, UpdateInput]) TransformUpdateInputToModel(input *UpdateInput) (*T, error) {
	return transformInputToModel[T](input)
}

// transformInputToModel transform DTO sang Model bằng reflection.
// Field có tag transform được convert theo config; field không tag được copy
// theo tên nếu type tương thích.
func transformInputToModel[T any](input interface{}) (*T, error) {
	model := new(T)

	inputVal := reflect.ValueOf(input)
	if inputVal.Kind() == reflect.Ptr {
		inputVal = inputVal.Elem()
	}
	if inputVal.Kind() != reflect.Struct {
		return nil, fmt.Errorf("input phải là struct hoặc pointer đến struct")
	}

	modelVal := reflect.ValueOf(model).Elem()
	if modelVal.Kind() != reflect.Struct {
		return nil, fmt.Errorf("Model phải là struct hoặc pointer đến struct")
	}

	inputType := inputVal.Type()
	for i := 0; i < inputVal.NumField(); i++ {
		inputField := inputVal.Field(i)
		if !inputField.CanInterface() {
			continue
		}
		fieldType := inputType.Field(i)

		if tag := fieldType.Tag.Get("transform"); tag != "" {
			if err := applyTransformedField(modelVal, fieldType, inputField.Interface(), tag); err != nil {
				return nil, err
			}
			continue
		}
		copySameNameField(modelVal, fieldType.Name, inputField.Interface())
	}

	return model, nil
}

// applyTransformedField convert giá trị một field DTO theo tag transform
// và set vào field tương ứng trên Model.
func applyTransformedField(modelVal reflect.Value, fieldType reflect.StructField, value interface{}, tag string) error {
	cfg, err := utility.ParseTransformTag(tag)
	if err != nil {
		return fmt.Errorf("lỗi parse transform tag cho field %s: %w", fieldType.Name, err)
	}

	// Field target trên Model: mặc định cùng tên, có option map= thì theo map
	targetName := fieldType.Name
	if cfg.MapTo != "" {
		targetName = cfg.MapTo
	}

	if _, found := modelVal.Type().FieldByName(targetName); !found {
		if cfg.Optional {
			return nil
		}
		return fmt.Errorf("không tìm thấy field '%s' trong Model (map từ field '%s' trong DTO)", targetName, fieldType.Name)
	}

	transformed, err := utility.TransformFieldValue(value, cfg)
	if err != nil {
		if cfg.Optional {
			return nil
		}
		return fmt.Errorf("lỗi transform field '%s' sang '%s': %w", fieldType.Name, targetName, err)
	}

	target := modelVal.FieldByName(targetName)
	if !target.IsValid() || !target.CanSet() {
		return fmt.Errorf("không thể set giá trị vào field '%s' trong Model", targetName)
	}
	if transformed == nil {
		// Giá trị nil giữ nguyên zero value trên Model
		return nil
	}

	transformedVal := reflect.ValueOf(transformed)
	switch {
	case transformedVal.Type().AssignableTo(target.Type()):
		target.Set(transformedVal)
	case transformedVal.Type().ConvertibleTo(target.Type()):
		target.Set(transformedVal.Convert(target.Type()))
	default:
		return fmt.Errorf("không thể convert giá trị từ type %v sang type %v cho field '%s'", transformedVal.Type(), target.Type(), targetName)
	}
	return nil
}

// copySameNameField copy giá trị field không có tag transform sang field cùng tên
// trên Model nếu type tương thích; không tương thích thì bỏ qua.
func copySameNameField(modelVal reflect.Value, name string, value interface{}) {
	target := modelVal.FieldByName(name)
	if !target.IsValid() || !target.CanSet() {
		return
	}

	v := reflect.ValueOf(value)
	if !v.IsValid() {
		return
	}
	if v.Type().AssignableTo(target.Type()) {
		target.Set(v)
	} else if v.Type().ConvertibleTo(target.Type()) {
		target.Set(v.Convert(target.Type()))
	}
}

// getCreateInputBSONKeySet trả về tập bson key (trên Model) mà CreateInput có thể set.
// Dùng cho Upsert: các field có trong input được đưa vào $set kể cả khi giá trị là zero,
// các field nằm ngoài input (timestamps, dữ liệu hệ thống quản lý) không bị ghi đè.
func (h *BaseHandler[T, CreateInput, UpdateInput]) getCreateInputBSONKeySet() map[string]bool {
	var input CreateInput
	inputType := reflect.TypeOf(input)
	if inputType == nil {
		return nil
	}
	if inputType.Kind() == reflect.Ptr {
		inputType = inputType.Elem()
	}
	if inputType.Kind() != reflect.Struct {
		return nil
	}

	var model T
	modelType := reflect.TypeOf(model)
	if modelType != nil && modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}

	keySet := make(map[string]bool)
	for i := 0; i < inputType.NumField(); i++ {
		f := inputType.Field(i)

		// Field target trên Model (tag transform map= hoặc cùng tên)
		targetFieldName := f.Name
		if transformTag := f.Tag.Get("transform"); transformTag != "" {
			if cfg, err := utility.ParseTransformTag(transformTag); err == nil && cfg.MapTo != "" {
				targetFieldName = cfg.MapTo
			}
		}

		// Bson key lấy từ field tương ứng trên Model
		if modelType != nil && modelType.Kind() == reflect.Struct {
			if mf, found := modelType.FieldByName(targetFieldName); found {
				bsonKey := strings.TrimSpace(strings.Split(mf.Tag.Get("bson"), ",")[0])
				if bsonKey != "" && bsonKey != "-" {
					keySet[bsonKey] = true
					continue
				}
			}
		}

		// Fallback: dùng json tag của DTO
		jsonKey := strings.TrimSpace(strings.Split(f.Tag.Get("json"), ",")[0])
		if jsonKey != "" && jsonKey != "-" {
			keySet[jsonKey] = true
		}
	}

	if len(keySet) == 0 {
		return nil
	}
	return keySet
}
