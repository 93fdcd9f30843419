package global

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type nameInput struct {
	Name string `validate:"required,no_xss"`
}

func TestValidateNoXSS(t *testing.T) {
	InitValidator()

	require.NoError(t, Validate.Struct(nameInput{Name: "Cốc sứ in logo"}), "tên thường phải qua được no_xss")

	assert.Error(t, Validate.Struct(nameInput{Name: "<script>alert(1)</script>"}), "script phải bị chặn")
	assert.Error(t, Validate.Struct(nameInput{Name: "javascript:alert(1)"}), "javascript: phải bị chặn")
	assert.Error(t, Validate.Struct(nameInput{Name: "<b>tên đậm</b>"}), "markup trong field text thuần phải bị chặn")
}

type productRef struct {
	ProductID string `validate:"exists=catalog_products"`
}

func TestValidateExists_EmptyValueSkipped(t *testing.T) {
	InitValidator()

	// Giá trị rỗng coi như optional, bỏ qua kiểm tra tồn tại
	assert.NoError(t, Validate.Struct(productRef{}), "giá trị rỗng phải được bỏ qua")
}

func TestValidateExists_RejectsBadHex(t *testing.T) {
	InitValidator()

	// Hex hỏng bị từ chối trước khi chạm tới registry hay database
	assert.Error(t, Validate.Struct(productRef{ProductID: "not-a-hex"}), "ObjectID hỏng phải bị từ chối")
}

func TestValidateExists_UnknownCollection(t *testing.T) {
	InitValidator()

	type orphanRef struct {
		ID string `validate:"exists=not_registered"`
	}
	input := orphanRef{ID: primitive.NewObjectID().Hex()}
	assert.Error(t, Validate.Struct(input), "collection chưa đăng ký trong registry phải bị từ chối")
}
