// Package events là kênh phát tin nội bộ cho các thay đổi dữ liệu.
// BaseServiceMongoImpl phát một DataChangeEvent sau mỗi write thành công;
// nơi nào cần phản ứng (catalog loader invalidate cache, ...) đăng ký
// handler qua OnDataChanged lúc khởi tạo.
package events

import (
	"context"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Loại thao tác write gắn trên event.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// DataChangeEvent mô tả một thay đổi dữ liệu đã ghi xuống database.
// Document là bản ghi sau thay đổi; riêng delete là bản ghi trước khi xóa.
type DataChangeEvent struct {
	CollectionName string
	Operation      string
	Document       interface{}
}

// DataChangeHandler nhận event; chạy trên goroutine riêng nên không được
// giữ tham chiếu tới Document quá vòng đời xử lý.
type DataChangeHandler func(ctx context.Context, e DataChangeEvent)

var (
	subscribersMu sync.RWMutex
	subscribers   []DataChangeHandler
)

// OnDataChanged đăng ký handler nhận mọi event. Gọi lúc init, trước khi
// có traffic; không có cơ chế hủy đăng ký.
func OnDataChanged(h DataChangeHandler) {
	subscribersMu.Lock()
	subscribers = append(subscribers, h)
	subscribersMu.Unlock()
}

// EmitDataChanged gửi event tới toàn bộ handler đã đăng ký, mỗi handler
// một goroutine. Panic trong handler bị nuốt để một subscriber hỏng không
// kéo đổ write path hay các subscriber còn lại.
func EmitDataChanged(ctx context.Context, e DataChangeEvent) {
	for _, h := range snapshotSubscribers() {
		go dispatch(ctx, h, e)
	}
}

func snapshotSubscribers() []DataChangeHandler {
	subscribersMu.RLock()
	defer subscribersMu.RUnlock()
	return append([]DataChangeHandler(nil), subscribers...)
}

func dispatch(ctx context.Context, h DataChangeHandler, e DataChangeEvent) {
	defer func() {
		// Nuốt panic: event có thể chạy trước khi logger sẵn sàng
		_ = recover()
	}()
	h(ctx, e)
}

// GetObjectIDField đọc field ObjectID từ document bằng reflection, dùng để
// lấy _id phục vụ invalidate cache theo từng bản ghi. Document không phải
// struct, field không tồn tại hoặc không phải ObjectID đều trả về zero.
func GetObjectIDField(doc interface{}, fieldName string) primitive.ObjectID {
	v, ok := structValue(doc)
	if !ok {
		return primitive.NilObjectID
	}

	field := v.FieldByName(fieldName)
	if !field.IsValid() || !field.CanInterface() {
		return primitive.NilObjectID
	}

	switch id := field.Interface().(type) {
	case primitive.ObjectID:
		return id
	case *primitive.ObjectID:
		if id != nil {
			return *id
		}
	}
	return primitive.NilObjectID
}

// structValue deref pointer (nếu có) và trả về value dạng struct của doc.
func structValue(doc interface{}) (reflect.Value, bool) {
	if doc == nil {
		return reflect.Value{}, false
	}

	v := reflect.ValueOf(doc)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	return v, true
}
