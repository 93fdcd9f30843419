// package basesvc cung cấp tầng service CRUD dùng chung cho mọi collection MongoDB.
// Các service nghiệp vụ (catalog, order, mail queue) embed BaseServiceMongoImpl và
// kế thừa toàn bộ thao tác chuẩn: insert, find, update, delete, upsert, đếm, phân trang.
// Mọi đường ghi của tầng này đều tự đóng dấu timestamps, qua guard bảo vệ dữ liệu
// system và phát event thay đổi dữ liệu cho cache phía trên.
package basesvc

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	basemodels "print_commerce/internal/api/base/models"
	"print_commerce/internal/api/events"
	"print_commerce/internal/common"
	"print_commerce/internal/utility"
)

// UpdateData gom các operator update của MongoDB thành một struct có kiểm soát.
// Handler và service nghiệp vụ đi qua struct này thay vì bson.M tự do, nhờ đó
// tầng base luôn can thiệp được vào $set (đóng dấu updatedAt, chặn isSystem).
type UpdateData struct {
	Set         map[string]interface{} `bson:"$set,omitempty"`
	SetOnInsert map[string]interface{} `bson:"$setOnInsert,omitempty"`
	Unset       map[string]interface{} `bson:"$unset,omitempty"`
	Push        map[string]interface{} `bson:"$push,omitempty"`
	AddToSet    map[string]interface{} `bson:"$addToSet,omitempty"`
}

// ensureSet khởi tạo map $set nếu chưa có để caller gán key trực tiếp không bị panic.
func (u *UpdateData) ensureSet() {
	if u.Set == nil {
		u.Set = make(map[string]interface{})
	}
}

// ToUpdateData đưa dữ liệu update về dạng UpdateData.
// Chấp nhận: *UpdateData, UpdateData, BSON raw ([]byte), map/struct đã có sẵn
// operator ($set, $unset...) hoặc map/struct thường (được bọc nguyên trong $set).
func ToUpdateData(data interface{}) (*UpdateData, error) {
	switch v := data.(type) {
	case *UpdateData:
		return v, nil
	case UpdateData:
		return &v, nil
	case []byte:
		update := &UpdateData{}
		if err := bson.Unmarshal(bson.Raw(v), update); err != nil {
			return nil, err
		}
		return update, nil
	}

	dataMap, err := utility.ToMap(data)
	if err != nil {
		return nil, err
	}

	// Map không có $set thì coi toàn bộ nội dung là phần $set
	if _, hasSet := dataMap["$set"]; !hasSet {
		return &UpdateData{Set: dataMap}, nil
	}

	update := &UpdateData{}
	pick := func(key string, dst *map[string]interface{}) {
		if m, ok := dataMap[key].(map[string]interface{}); ok {
			*dst = m
		}
	}
	pick("$set", &update.Set)
	pick("$setOnInsert", &update.SetOnInsert)
	pick("$unset", &update.Unset)
	pick("$push", &update.Push)
	pick("$addToSet", &update.AddToSet)
	return update, nil
}

// BaseServiceMongo là mặt cắt CRUD chung mà handler generic làm việc với.
// Model là kiểu document của collection.
type BaseServiceMongo[Model any] interface {
	// Thao tác ghi
	InsertOne(ctx context.Context, data Model) (Model, error)
	InsertMany(ctx context.Context, data []Model) ([]Model, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (Model, error)
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (int64, error)
	UpdateById(ctx context.Context, id primitive.ObjectID, data interface{}) (Model, error)
	DeleteOne(ctx context.Context, filter interface{}) error
	DeleteMany(ctx context.Context, filter interface{}) (int64, error)
	DeleteById(ctx context.Context, id primitive.ObjectID) error

	// Thao tác atomic (find kèm ghi trong một lệnh)
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts *options.FindOneAndUpdateOptions) (Model, error)
	FindOneAndDelete(ctx context.Context, filter interface{}, opts *options.FindOneAndDeleteOptions) (Model, error)

	// Upsert
	Upsert(ctx context.Context, filter interface{}, data interface{}) (Model, error)
	UpsertMany(ctx context.Context, filter interface{}, data []Model) ([]Model, error)

	// Thao tác đọc
	FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (Model, error)
	Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]Model, error)
	FindOneById(ctx context.Context, id primitive.ObjectID) (Model, error)
	FindManyByIds(ctx context.Context, ids []primitive.ObjectID) ([]Model, error)
	FindWithPagination(ctx context.Context, filter interface{}, page, limit int64, opts *options.FindOptions) (*basemodels.PaginateResult[Model], error)
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
	Distinct(ctx context.Context, fieldName string, filter interface{}) ([]interface{}, error)
	DocumentExists(ctx context.Context, filter interface{}) (bool, error)
}

// BaseServiceMongoImpl triển khai BaseServiceMongo trên một collection cụ thể.
type BaseServiceMongoImpl[T any] struct {
	collection *mongo.Collection
}

// NewBaseServiceMongo tạo service CRUD cho collection truyền vào.
func NewBaseServiceMongo[T any](collection *mongo.Collection) *BaseServiceMongoImpl[T] {
	return &BaseServiceMongoImpl[T]{collection: collection}
}

// Collection trả về collection MongoDB phía dưới, cho service nghiệp vụ cần query trực tiếp.
func (s *BaseServiceMongoImpl[T]) Collection() *mongo.Collection {
	return s.collection
}

// ------------------------------------
// Helper dùng chung trong package
// ------------------------------------

// normalizeFilter đưa filter nil hoặc map rỗng về bson.D{} cho driver.
func normalizeFilter(filter interface{}) interface{} {
	if filter == nil {
		return bson.D{}
	}
	if m, ok := filter.(map[string]interface{}); ok && len(m) == 0 {
		return bson.D{}
	}
	return filter
}

// emitChange phát event thay đổi dữ liệu cho collection của service.
// Mọi đường ghi của tầng base đều đi qua đây để cache phía trên invalidate kịp.
func (s *BaseServiceMongoImpl[T]) emitChange(ctx context.Context, op string, doc T) {
	events.EmitDataChanged(ctx, events.DataChangeEvent{
		CollectionName: s.collection.Name(),
		Operation:      op,
		Document:       doc,
	})
}

// fetchExisting đọc một document theo filter, trả ErrNotFound khi không có.
// Các thao tác ghi dùng hàm này để lấy bản ghi hiện tại trước khi qua guard.
func (s *BaseServiceMongoImpl[T]) fetchExisting(ctx context.Context, filter interface{}) (T, error) {
	var doc T
	if err := s.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		var zero T
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, common.ErrNotFound
		}
		return zero, common.ConvertMongoError(err)
	}
	return doc, nil
}

// fetchMatching đọc toàn bộ document khớp filter (các thao tác bulk cần pre-image).
func (s *BaseServiceMongoImpl[T]) fetchMatching(ctx context.Context, filter interface{}) ([]T, error) {
	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	var docs []T
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return docs, nil
}

// prepareUpdate chuyển update về UpdateData và đóng dấu updatedAt.
func prepareUpdate(update interface{}) (*UpdateData, error) {
	updateData, err := ToUpdateData(update)
	if err != nil {
		return nil, common.ErrInvalidFormat
	}
	updateData.ensureSet()
	updateData.Set["updatedAt"] = time.Now().UnixMilli()
	return updateData, nil
}

// decodeFormatError bọc lỗi decode BSON thành lỗi định dạng (bad request),
// tránh trả nhầm mã lỗi database cho dữ liệu sai schema.
func decodeFormatError(err error) error {
	return common.NewError(
		common.ErrCodeValidationFormat,
		"Lỗi định dạng dữ liệu khi decode từ MongoDB",
		common.StatusBadRequest,
		err,
	)
}
