// Package registry cung cấp registry pattern với generic type để quản lý
// các singleton instances (collection handles, service instances...) trong
// ứng dụng một cách thread-safe.
package registry

import (
	"fmt"
	"sync"

	"print_commerce/internal/common"
)

// Registry là một thread-safe generic registry.
// Type parameter T cho phép registry quản lý bất kỳ loại object nào;
// thread-safety đảm bảo qua sync.RWMutex.
//
// Example:
//
//	collRegistry := NewRegistry[*mongo.Collection]()
//	collRegistry.Register("orders", db.Collection("orders"))
//
//	if coll, exists := collRegistry.Get("orders"); exists {
//	    coll.Find(...)
//	}
type Registry[T any] struct {
	items map[string]T
	mu    sync.RWMutex
}

// NewRegistry tạo và trả về một registry rỗng cho type T
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		items: make(map[string]T),
	}
}

// Register đăng ký một item vào registry. Item với name đã tồn tại bị ghi đè.
//
// Returns:
//   - isNew: true nếu là item mới, false nếu ghi đè item cũ
//   - err: name rỗng là lỗi
//
// Example:
//
//	isNew, err := registry.Register("orders", coll)
func (r *Registry[T]) Register(name string, item T) (isNew bool, err error) {
	if name == "" {
		return false, fmt.Errorf("name cannot be empty: %w", common.ErrRequiredField)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.items[name]
	r.items[name] = item
	return !exists, nil
}

// Get lấy item theo tên.
//
// Returns:
//   - item: item nếu tìm thấy, zero value của T nếu không
//   - exists: true nếu item tồn tại
func (r *Registry[T]) Get(name string) (item T, exists bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists = r.items[name]
	return item, exists
}
