package global

import (
	"context"
	"reflect"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"print_commerce/internal/sanitize"
)

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("no_xss", validateNoXSS)
	_ = Validate.RegisterValidation("exists", validateExists)
}

// validateNoXSS kiểm tra XSS trên các field text thuần (tên, nhãn, slug),
// dùng chung bộ nhận diện với sanitizer. Mô tả rich text KHÔNG dùng
// validator này — chúng đi qua bộ làm sạch HTML riêng.
func validateNoXSS(fl validator.FieldLevel) bool {
	return sanitize.IsPlainText(fl.Field().String())
}

// validateExists kiểm tra ObjectID tồn tại trong collection (foreign key validation)
// Format: validate:"exists=<collection_name>"
// Ví dụ: validate:"exists=catalog_products"
func validateExists(fl validator.FieldLevel) bool {
	collectionName := fl.Param()
	if collectionName == "" {
		return false
	}

	objID, skip, ok := fieldObjectID(fl.Field())
	if skip {
		return true
	}
	if !ok {
		return false
	}

	collection, found := RegistryCollections.Get(collectionName)
	if !found {
		// Collection chưa đăng ký trong registry → không thể kiểm tra
		return false
	}

	count, err := collection.CountDocuments(context.Background(), bson.M{"_id": objID})
	return err == nil && count > 0
}

// fieldObjectID đọc ObjectID từ field đang validate. skip=true khi giá trị
// rỗng (field optional, bỏ qua kiểm tra); ok=false khi giá trị không phải
// ObjectID hợp lệ.
func fieldObjectID(field reflect.Value) (id primitive.ObjectID, skip bool, ok bool) {
	switch v := field.Interface().(type) {
	case string:
		if v == "" {
			return primitive.NilObjectID, true, false
		}
		parsed, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return primitive.NilObjectID, false, false
		}
		return parsed, false, true
	case primitive.ObjectID:
		if v == primitive.NilObjectID {
			return primitive.NilObjectID, true, false
		}
		return v, false, true
	case *primitive.ObjectID:
		if v == nil {
			return primitive.NilObjectID, true, false
		}
		return *v, false, true
	default:
		return primitive.NilObjectID, false, false
	}
}
