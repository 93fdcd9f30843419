package basesvc

import (
	"context"
	"fmt"
	"reflect"

	"print_commerce/internal/common"
)

// Dữ liệu system (IsSystem = true) là dữ liệu nền do quá trình init seed sẵn,
// ví dụ sản phẩm mẫu kèm cấu hình thuộc tính. API thông thường không được tạo,
// sửa hay xóa loại dữ liệu này; chỉ context của init được nới quyền ghi.

type systemDataContextKey string

const allowSystemDataWriteKey systemDataContextKey = "allow_system_data_write"

// WithSystemDataWriteAllowed trả về context được phép ghi system data.
// Chỉ package initsvc dùng khi seed dữ liệu; không truyền context này vào request handler.
func WithSystemDataWriteAllowed(ctx context.Context) context.Context {
	return context.WithValue(ctx, allowSystemDataWriteKey, true)
}

func isSystemDataWriteAllowed(ctx context.Context) bool {
	allowed, ok := ctx.Value(allowSystemDataWriteKey).(bool)
	return ok && allowed
}

func errSystemDataCreate() error {
	return common.NewError(
		common.ErrCodeBusinessOperation,
		"Không thể tạo dữ liệu với IsSystem = true. Chỉ hệ thống mới có thể tạo dữ liệu system",
		common.StatusForbidden,
		nil,
	)
}

// validateSystemDataInsert chặn insert bản ghi có IsSystem = true từ API thường.
// Model không có field IsSystem thì bỏ qua; bản ghi thường luôn bị ép IsSystem = false.
func validateSystemDataInsert(ctx context.Context, data interface{}) error {
	isSystem, hasField := getIsSystemValue(data)
	if !hasField || isSystemDataWriteAllowed(ctx) {
		return nil
	}
	if isSystem {
		return errSystemDataCreate()
	}
	setIsSystemValue(data, false)
	return nil
}

// stripSystemFlagFromSet không cho update thường đặt isSystem = true;
// giá trị isSystem khác bị gỡ khỏi $set để không ai tự hạ/nâng cờ này.
func stripSystemFlagFromSet(update *UpdateData) error {
	if update.Set == nil {
		return nil
	}
	if isSystemVal, ok := update.Set["isSystem"].(bool); ok && isSystemVal {
		return common.NewError(
			common.ErrCodeBusinessOperation,
			"Không thể set IsSystem = true. Chỉ hệ thống mới có thể tạo dữ liệu system",
			common.StatusForbidden,
			nil,
		)
	}
	delete(update.Set, "isSystem")
	return nil
}

// rejectSystemFlagInSet chặn nhánh upsert tạo mới khi dữ liệu update muốn ghi isSystem = true.
func rejectSystemFlagInSet(ctx context.Context, set map[string]interface{}) error {
	if set == nil || isSystemDataWriteAllowed(ctx) {
		return nil
	}
	if isSystem, ok := set["isSystem"].(bool); ok && isSystem {
		return errSystemDataCreate()
	}
	return nil
}

// validateSystemDataUpdate chặn sửa bản ghi system và chặn nâng bản ghi thường lên system.
// Context init được sửa mọi field, kể cả isSystem.
func validateSystemDataUpdate(ctx context.Context, existingData interface{}, update *UpdateData) error {
	isSystem, hasField := getIsSystemValue(existingData)
	if !hasField {
		return stripSystemFlagFromSet(update)
	}
	if isSystemDataWriteAllowed(ctx) {
		return nil
	}
	if isSystem {
		return common.NewError(
			common.ErrCodeBusinessOperation,
			"Không thể sửa dữ liệu hệ thống mặc định",
			common.StatusForbidden,
			nil,
		)
	}
	return stripSystemFlagFromSet(update)
}

// validateSystemDataDelete chặn xóa dữ liệu system vô điều kiện (init cũng không được xóa).
func validateSystemDataDelete(_ context.Context, data interface{}) error {
	isSystem, hasField := getIsSystemValue(data)
	if !hasField || !isSystem {
		return nil
	}

	modelType := reflect.TypeOf(data)
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}
	return common.NewError(
		common.ErrCodeBusinessOperation,
		fmt.Sprintf("Không thể xóa %s vì đây là dữ liệu hệ thống mặc định", modelType.Name()),
		common.StatusForbidden,
		nil,
	)
}

// validateRelationshipsDelete đọc struct tag relationship của model và chặn xóa
// khi còn bản ghi ở collection khác tham chiếu tới record này.
func validateRelationshipsDelete(ctx context.Context, data interface{}) error {
	modelType := reflect.TypeOf(data)
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}

	relationships := ParseRelationshipTag(modelType)
	if len(relationships) == 0 {
		return nil
	}

	recordID, ok := getIDFromModel(data)
	if !ok {
		// Record chưa có ID thì chưa thể bị tham chiếu
		return nil
	}

	checks := make([]RelationshipCheck, 0, len(relationships))
	for _, rel := range relationships {
		if rel.Cascade {
			continue
		}
		checks = append(checks, RelationshipCheck{
			CollectionName: rel.CollectionName,
			FieldName:      rel.FieldName,
			ErrorMessage:   rel.ErrorMessage,
			Optional:       rel.Optional,
		})
	}
	if len(checks) == 0 {
		return nil
	}
	return CheckRelationshipExists(ctx, recordID, checks)
}
