package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestErrorIs_MatchesByCodeAndMessage(t *testing.T) {
	err := NewError(ErrCodeInvalidQuantity, "Số lượng phải là số nguyên dương", StatusBadRequest, nil)

	assert.True(t, errors.Is(err, ErrInvalidQuantity), "cùng mã và message phải match")
	assert.False(t, errors.Is(err, ErrInvalidSelection), "khác mã lỗi không được match")

	other := NewError(ErrCodeInvalidQuantity, "message khác", StatusBadRequest, nil)
	assert.False(t, errors.Is(other, ErrInvalidQuantity), "cùng mã nhưng khác message không được match")
}

func TestErrorUnwrap_ExposesCause(t *testing.T) {
	cause := errors.New("socket hỏng")
	wrapped := NewError(ErrCodeDatabase, MsgDatabaseError, StatusInternalServerError, cause)

	assert.Equal(t, cause, errors.Unwrap(wrapped), "Unwrap phải trả về lỗi gốc trong Details")
	assert.True(t, errors.Is(wrapped, cause), "errors.Is phải nhìn xuyên qua envelope")

	plain := NewError(ErrCodeDatabase, MsgDatabaseError, StatusInternalServerError, nil)
	assert.Nil(t, errors.Unwrap(plain), "Details nil thì không có gì để unwrap")
}

func TestConvertMongoError(t *testing.T) {
	assert.Nil(t, ConvertMongoError(nil), "nil phải giữ nguyên nil")

	// ErrNotFound đi qua nguyên vẹn để caller nhận diện được
	assert.Equal(t, ErrNotFound, ConvertMongoError(ErrNotFound))

	// Phân loại theo dải command error code
	cases := []struct {
		code int32
		want error
	}{
		{150, ErrMongoConnection},
		{250, ErrMongoAuth},
		{350, ErrMongoQuery},
		{450, ErrMongoWrite},
		{999, ErrMongoSystem},
	}
	for _, c := range cases {
		got := ConvertMongoError(mongo.CommandError{Code: c.code})
		assert.Equal(t, c.want, got, "command error code %d phân loại sai", c.code)
	}

	// Duplicate key qua write exception
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	assert.Equal(t, ErrMongoDuplicate, ConvertMongoError(dup), "lỗi duplicate key phải map về ErrMongoDuplicate")

	// Lỗi không nhận diện được: gói lỗi gốc vào Details
	cause := errors.New("lỗi lạ")
	got := ConvertMongoError(cause)
	var appErr *Error
	require.True(t, errors.As(got, &appErr), "fallback phải là *Error")
	assert.Equal(t, ErrCodeDatabase.Code, appErr.Code.Code)
	assert.Equal(t, cause, appErr.Details, "lỗi gốc phải nằm trong Details")
}
