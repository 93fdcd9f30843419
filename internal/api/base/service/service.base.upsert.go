package basesvc

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"print_commerce/internal/api/events"
	"print_commerce/internal/common"
	"print_commerce/internal/utility"
)

// Upsert cập nhật document khớp filter, chưa có thì tạo mới.
// Toàn bộ xử lý field sparse unique (tránh duplicate key trên giá trị null/rỗng)
// nằm tại đây vì chỉ nhánh upsert mới sinh ra document từ dữ liệu update.
func (s *BaseServiceMongoImpl[T]) Upsert(ctx context.Context, filter interface{}, data interface{}) (T, error) {
	var zero T

	logrus.WithFields(logrus.Fields{
		"collection": s.collection.Name(),
		"filter":     filter,
	}).Debug("Upsert: Bắt đầu upsert")

	existing, err := s.fetchExisting(ctx, filter)
	isExisting := err == nil
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return zero, err
	}

	updateData, err := ToUpdateData(data)
	if err != nil {
		logrus.WithError(err).Error("Upsert: Lỗi chuyển đổi data thành UpdateData")
		return zero, common.ErrInvalidFormat
	}

	if isExisting {
		if err := validateSystemDataUpdate(ctx, existing, updateData); err != nil {
			return zero, err
		}
	} else if err := rejectSystemFlagInSet(ctx, updateData.Set); err != nil {
		return zero, err
	}

	// Đóng dấu thời gian rồi chuẩn bị phần dành riêng cho nhánh tạo mới
	now := time.Now().UnixMilli()
	updateData.ensureSet()
	updateData.Set["updatedAt"] = now
	updateData.Set["createdAt"] = now
	if !isExisting {
		applyInsertDefaultsOnUpsert(updateData, reflect.TypeOf(zero))
	}

	sparseFields := getSparseUniqueFieldsFromModelType(reflect.TypeOf(zero))
	clearSparseFields(updateData, sparseFields)

	logrus.WithFields(logrus.Fields{
		"update_data_keys": getMapKeys(updateData.Set),
		"unset_keys":       getMapKeys(updateData.Unset),
	}).Debug("Upsert: Dữ liệu update sau khi xử lý")

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	var upserted T
	err = s.collection.FindOneAndUpdate(ctx, filter, updateData, opts).Decode(&upserted)
	if err != nil && s.cleanSparseNullConflict(ctx, err, sparseFields) {
		// Document cũ còn field sparse = null: đã dọn xong, thử lại một lần
		err = s.collection.FindOneAndUpdate(ctx, filter, updateData, opts).Decode(&upserted)
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"filter":      filter,
			"update_data": updateData.Set,
			"error":       err.Error(),
		}).Error("Upsert: Lỗi khi thực hiện FindOneAndUpdate")
		return zero, common.ConvertMongoError(err)
	}

	logrus.WithFields(logrus.Fields{
		"collection": s.collection.Name(),
	}).Debug("Upsert: Upsert thành công")

	s.emitChange(ctx, events.OpUpsert, upserted)
	return upserted, nil
}

// applyInsertDefaultsOnUpsert đưa default từ struct tag vào $setOnInsert
// (chỉ những key chưa có trong $set) để nhánh tạo mới có đủ field mặc định.
func applyInsertDefaultsOnUpsert(updateData *UpdateData, rt reflect.Type) {
	defaults := getInsertDefaultsFromModelType(rt)
	if len(defaults) == 0 {
		return
	}
	if updateData.SetOnInsert == nil {
		updateData.SetOnInsert = make(map[string]interface{})
	}
	for k, v := range defaults {
		if _, inSet := updateData.Set[k]; !inSet {
			updateData.SetOnInsert[k] = v
		}
	}
}

// clearSparseFields giữ cho các field có sparse unique index không bao giờ được ghi
// dưới dạng chuỗi rỗng hay null: field rỗng bị chuyển từ $set sang $unset, field
// vắng mặt trong $set cũng được $unset để nhánh tạo mới không sinh ra giá trị null.
func clearSparseFields(updateData *UpdateData, sparseFields []string) {
	if len(sparseFields) == 0 {
		return
	}
	if updateData.Unset == nil {
		updateData.Unset = make(map[string]interface{})
	}
	for key, value := range updateData.Set {
		if str, ok := value.(string); ok && str == "" && utility.Contains(sparseFields, key) {
			delete(updateData.Set, key)
			updateData.Unset[key] = ""
		}
	}
	for _, field := range sparseFields {
		if _, inSet := updateData.Set[field]; !inSet {
			updateData.Unset[field] = ""
		}
	}
}

// cleanSparseNullConflict xử lý duplicate key error sinh ra khi document cũ còn giữ
// field sparse unique = null (dữ liệu từ trước khi có $unset). Dọn các document đó
// và trả về true nếu caller nên thử lại upsert.
func (s *BaseServiceMongoImpl[T]) cleanSparseNullConflict(ctx context.Context, err error, sparseFields []string) bool {
	writeEx, ok := err.(mongo.WriteException)
	if !ok {
		return false
	}
	for _, we := range writeEx.WriteErrors {
		if we.Code != 11000 {
			continue
		}
		for _, field := range sparseFields {
			if !strings.Contains(we.Message, field) || !strings.Contains(we.Message, "null") {
				continue
			}
			logrus.WithFields(logrus.Fields{
				"error": we.Message,
				"field": field,
			}).Warn("Upsert: Phát hiện lỗi duplicate key với field sparse = null, thử xóa field từ document cũ")

			cleanFilter := bson.M{field: nil}
			cleanUpdate := bson.M{"$unset": bson.M{field: ""}}
			if _, cleanErr := s.collection.UpdateMany(ctx, cleanFilter, cleanUpdate); cleanErr != nil {
				return false
			}
			logrus.WithField("field", field).Info("Upsert: Đã xóa field từ document cũ, thử lại upsert")
			return true
		}
	}
	return false
}

// getMapKeys liệt kê key của map cho log debug.
func getMapKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// UpsertMany upsert một loạt document bằng bulk write (không giữ thứ tự).
// Tất cả item dùng chung filter truyền vào; chỉ field khác zero của item mới được $set.
// Bulk write không cho biết item nào khớp document nào nên chỉ validate được nhánh insert.
func (s *BaseServiceMongoImpl[T]) UpsertMany(ctx context.Context, filter interface{}, data []T) ([]T, error) {
	if len(data) == 0 {
		return []T{}, nil
	}

	for _, item := range data {
		if err := validateSystemDataInsert(ctx, item); err != nil {
			return nil, err
		}
	}

	now := time.Now().UnixMilli()
	models := make([]mongo.WriteModel, 0, len(data))
	for _, item := range data {
		dataMap, err := utility.ToMap(item)
		if err != nil {
			return nil, common.ErrInvalidFormat
		}

		// Giữ lại field khác zero — bulk upsert là partial update, không ghi đè zero value
		setMap := make(map[string]interface{})
		for k, v := range dataMap {
			if rv := reflect.ValueOf(v); rv.IsValid() && !rv.IsZero() {
				setMap[k] = v
			}
		}
		setMap["updatedAt"] = now

		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(filter).
			SetUpdate(bson.M{"$set": setMap}).
			SetUpsert(true))
	}

	result, err := s.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}

	var upserted []T
	if result.UpsertedCount > 0 {
		ids := make([]primitive.ObjectID, 0, len(result.UpsertedIDs))
		for _, id := range result.UpsertedIDs {
			if objectID, ok := id.(primitive.ObjectID); ok {
				ids = append(ids, objectID)
			}
		}
		if len(ids) > 0 {
			docs, err := s.fetchMatching(ctx, bson.M{"_id": bson.M{"$in": ids}})
			if err != nil {
				return nil, err
			}
			upserted = docs
		}
	}
	if result.ModifiedCount > 0 {
		updated, err := s.fetchMatching(ctx, filter)
		if err != nil {
			return nil, err
		}
		upserted = append(upserted, updated...)
	}

	for i := range upserted {
		s.emitChange(ctx, events.OpUpsert, upserted[i])
	}
	return upserted, nil
}
