package basesvc

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"print_commerce/internal/api/events"
	"print_commerce/internal/common"
	"print_commerce/internal/utility"
)

// insertableMap chuyển model thành map và đóng dấu createdAt/updatedAt (unix milli).
func insertableMap(data interface{}, now int64) (map[string]interface{}, error) {
	doc, err := utility.ToMap(data)
	if err != nil {
		return nil, common.ErrInvalidFormat
	}
	doc["createdAt"] = now
	doc["updatedAt"] = now
	return doc, nil
}

// guardDelete gom hai lớp chặn xóa: dữ liệu system và quan hệ đang tham chiếu.
func (s *BaseServiceMongoImpl[T]) guardDelete(ctx context.Context, existing T) error {
	if err := validateSystemDataDelete(ctx, existing); err != nil {
		return err
	}
	return validateRelationshipsDelete(ctx, existing)
}

// InsertOne thêm một document mới.
func (s *BaseServiceMongoImpl[T]) InsertOne(ctx context.Context, data T) (T, error) {
	var zero T

	if err := validateSystemDataInsert(ctx, data); err != nil {
		return zero, err
	}
	applyInsertDefaultsToModel(&data)

	doc, err := insertableMap(data, time.Now().UnixMilli())
	if err != nil {
		return zero, err
	}
	// Bỏ field chuỗi rỗng để sparse unique index bỏ qua document này
	// (sparse chỉ bỏ qua null/vắng mặt, không bỏ qua empty string)
	for key, value := range doc {
		if str, ok := value.(string); ok && str == "" {
			delete(doc, key)
		}
	}

	result, err := s.collection.InsertOne(ctx, doc)
	if err != nil {
		return zero, common.ConvertMongoError(err)
	}

	created, err := s.fetchExisting(ctx, bson.M{"_id": result.InsertedID})
	if err != nil {
		return zero, err
	}
	s.emitChange(ctx, events.OpInsert, created)
	return created, nil
}

// InsertMany thêm nhiều document trong một lệnh, timestamps dùng chung một thời điểm.
func (s *BaseServiceMongoImpl[T]) InsertMany(ctx context.Context, data []T) ([]T, error) {
	for _, item := range data {
		if err := validateSystemDataInsert(ctx, item); err != nil {
			return nil, err
		}
	}
	for i := range data {
		applyInsertDefaultsToModel(&data[i])
	}

	now := time.Now().UnixMilli()
	documents := make([]interface{}, 0, len(data))
	for _, item := range data {
		doc, err := insertableMap(item, now)
		if err != nil {
			return nil, err
		}
		documents = append(documents, doc)
	}

	result, err := s.collection.InsertMany(ctx, documents)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}

	created, err := s.fetchMatching(ctx, bson.M{"_id": bson.M{"$in": result.InsertedIDs}})
	if err != nil {
		return nil, err
	}
	for i := range created {
		s.emitChange(ctx, events.OpInsert, created[i])
	}
	return created, nil
}

// UpdateOne cập nhật document đầu tiên khớp filter và trả về bản ghi sau cập nhật.
func (s *BaseServiceMongoImpl[T]) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (T, error) {
	var zero T
	filter = normalizeFilter(filter)
	if opts == nil {
		opts = options.Update().SetUpsert(false)
	}

	existing, err := s.fetchExisting(ctx, filter)
	if err != nil {
		return zero, err
	}

	updateData, err := prepareUpdate(update)
	if err != nil {
		return zero, err
	}
	if err := validateSystemDataUpdate(ctx, existing, updateData); err != nil {
		return zero, err
	}

	result, err := s.collection.UpdateOne(ctx, filter, updateData, opts)
	if err != nil {
		return zero, common.ConvertMongoError(err)
	}
	if result.ModifiedCount == 0 && result.UpsertedCount == 0 {
		return zero, common.ErrNotFound
	}

	// Đọc lại bản ghi sau khi ghi để trả về trạng thái mới nhất
	refetch := filter
	if result.UpsertedID != nil {
		refetch = bson.M{"_id": result.UpsertedID}
	}
	updated, err := s.fetchExisting(ctx, refetch)
	if err != nil {
		return zero, err
	}
	s.emitChange(ctx, events.OpUpdate, updated)
	return updated, nil
}

// UpdateMany cập nhật mọi document khớp filter, trả về số bản ghi đã sửa.
func (s *BaseServiceMongoImpl[T]) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (int64, error) {
	filter = normalizeFilter(filter)
	if opts == nil {
		opts = options.Update().SetUpsert(false)
	}

	// Cần pre-image của từng bản ghi: vừa để chặn sửa dữ liệu system,
	// vừa để phát event theo từng id cho cache invalidate đúng
	existingDocs, err := s.fetchMatching(ctx, filter)
	if err != nil {
		return 0, err
	}

	updateData, err := prepareUpdate(update)
	if err != nil {
		return 0, err
	}
	for _, existing := range existingDocs {
		if err := validateSystemDataUpdate(ctx, existing, updateData); err != nil {
			return 0, err
		}
	}

	result, err := s.collection.UpdateMany(ctx, filter, updateData, opts)
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}

	for i := range existingDocs {
		s.emitChange(ctx, events.OpUpdate, existingDocs[i])
	}
	return result.ModifiedCount, nil
}

// UpdateById cập nhật document theo ObjectId.
func (s *BaseServiceMongoImpl[T]) UpdateById(ctx context.Context, id primitive.ObjectID, data interface{}) (T, error) {
	var zero T
	filter := bson.M{"_id": id}

	existing, err := s.fetchExisting(ctx, filter)
	if err != nil {
		return zero, err
	}

	updateData, err := prepareUpdate(data)
	if err != nil {
		return zero, err
	}
	if err := validateSystemDataUpdate(ctx, existing, updateData); err != nil {
		return zero, err
	}

	result, err := s.collection.UpdateOne(ctx, filter, updateData, options.Update().SetUpsert(false))
	if err != nil {
		return zero, common.ConvertMongoError(err)
	}
	if result.ModifiedCount == 0 {
		return zero, common.ErrNotFound
	}

	updated, err := s.fetchExisting(ctx, filter)
	if err != nil {
		return zero, err
	}
	s.emitChange(ctx, events.OpUpdate, updated)
	return updated, nil
}

// DeleteOne xóa document đầu tiên khớp filter sau khi qua các guard xóa.
func (s *BaseServiceMongoImpl[T]) DeleteOne(ctx context.Context, filter interface{}) error {
	filter = normalizeFilter(filter)

	existing, err := s.fetchExisting(ctx, filter)
	if err != nil {
		return err
	}
	if err := s.guardDelete(ctx, existing); err != nil {
		return err
	}

	result, err := s.collection.DeleteOne(ctx, filter)
	if err != nil {
		return common.ConvertMongoError(err)
	}
	if result.DeletedCount == 0 {
		return common.ErrNotFound
	}

	s.emitChange(ctx, events.OpDelete, existing)
	return nil
}

// DeleteMany xóa mọi document khớp filter, trả về số bản ghi đã xóa.
func (s *BaseServiceMongoImpl[T]) DeleteMany(ctx context.Context, filter interface{}) (int64, error) {
	filter = normalizeFilter(filter)

	existingDocs, err := s.fetchMatching(ctx, filter)
	if err != nil {
		return 0, err
	}
	for _, existing := range existingDocs {
		if err := s.guardDelete(ctx, existing); err != nil {
			return 0, err
		}
	}

	result, err := s.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}

	for i := range existingDocs {
		s.emitChange(ctx, events.OpDelete, existingDocs[i])
	}
	return result.DeletedCount, nil
}

// DeleteById xóa document theo ObjectId.
func (s *BaseServiceMongoImpl[T]) DeleteById(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id}

	existing, err := s.fetchExisting(ctx, filter)
	if err != nil {
		return err
	}
	if err := s.guardDelete(ctx, existing); err != nil {
		return err
	}

	result, err := s.collection.DeleteOne(ctx, filter)
	if err != nil {
		return common.ConvertMongoError(err)
	}
	if result.DeletedCount == 0 {
		return common.ErrNotFound
	}

	s.emitChange(ctx, events.OpDelete, existing)
	return nil
}

// FindOneAndUpdate tìm và cập nhật trong một lệnh atomic.
// Nếu opts bật upsert và filter không khớp, document mới sẽ được tạo.
func (s *BaseServiceMongoImpl[T]) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts *options.FindOneAndUpdateOptions) (T, error) {
	var zero T
	filter = normalizeFilter(filter)
	if opts == nil {
		opts = options.FindOneAndUpdate()
	}

	existing, err := s.fetchExisting(ctx, filter)
	isExisting := err == nil
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return zero, err
	}

	updateData, err := prepareUpdate(update)
	if err != nil {
		return zero, err
	}
	if isExisting {
		if err := validateSystemDataUpdate(ctx, existing, updateData); err != nil {
			return zero, err
		}
	} else if err := rejectSystemFlagInSet(ctx, updateData.Set); err != nil {
		// Nhánh upsert tạo mới: chặn isSystem = true ngay trong dữ liệu update
		return zero, err
	}

	var result T
	if err := s.collection.FindOneAndUpdate(ctx, filter, updateData, opts).Decode(&result); err != nil {
		return zero, common.ConvertMongoError(err)
	}

	if !isExisting {
		// Upsert vừa tạo document mới: validate như insert, hỏng thì rollback
		if err := validateSystemDataInsert(ctx, result); err != nil {
			if id, ok := getIDFromModel(result); ok {
				s.collection.DeleteOne(ctx, bson.M{"_id": id})
			}
			return zero, err
		}
	}

	op := events.OpUpdate
	if !isExisting {
		op = events.OpUpsert
	}
	s.emitChange(ctx, op, result)
	return result, nil
}

// FindOneAndDelete tìm và xóa trong một lệnh atomic, trả về document đã xóa.
func (s *BaseServiceMongoImpl[T]) FindOneAndDelete(ctx context.Context, filter interface{}, opts *options.FindOneAndDeleteOptions) (T, error) {
	var zero T
	filter = normalizeFilter(filter)
	if opts == nil {
		opts = options.FindOneAndDelete()
	}

	existing, err := s.fetchExisting(ctx, filter)
	if err != nil {
		return zero, err
	}
	if err := s.guardDelete(ctx, existing); err != nil {
		return zero, err
	}

	var result T
	if err := s.collection.FindOneAndDelete(ctx, filter, opts).Decode(&result); err != nil {
		return zero, common.ConvertMongoError(err)
	}

	s.emitChange(ctx, events.OpDelete, result)
	return result, nil
}
