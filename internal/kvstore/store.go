// Package kvstore cung cấp store key-value nhỏ cho dữ liệu phiên của storefront
// (lựa chọn thuộc tính đã nhớ của client). Có hai implementation: bộ nhớ trong
// process và Redis; chọn tự động theo cấu hình.
package kvstore

import (
	"context"
	"time"

	"print_commerce/internal/utility"

	"github.com/redis/go-redis/v9"
)

// Store là interface chung cho key-value store có TTL.
type Store interface {
	// Get trả về giá trị và true nếu key tồn tại (chưa hết hạn).
	Get(ctx context.Context, key string) (string, bool, error)
	// Set lưu giá trị với TTL (<= 0: không hết hạn).
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Remove xóa key. Xóa key không tồn tại không phải là lỗi.
	Remove(ctx context.Context, key string) error
}

// NewStore trả về Redis store nếu có kết nối Redis, ngược lại trả về
// store trong bộ nhớ.
func NewStore(client *redis.Client) Store {
	if client != nil {
		return NewRedisStore(client)
	}
	return NewMemoryStore()
}

// MemoryStore là implementation trong bộ nhớ, dùng khi không cấu hình Redis.
// Dữ liệu mất khi restart — chấp nhận được vì lựa chọn đã nhớ chỉ là tiện ích UX.
type MemoryStore struct {
	cache *utility.Cache[string]
}

// NewMemoryStore tạo store trong bộ nhớ với chu kỳ dọn dẹp 1 phút.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: utility.NewCache[string](0, time.Minute),
	}
}

// Get lấy giá trị theo key.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	value, exists := s.cache.Get(key)
	return value, exists, nil
}

// Set lưu giá trị với TTL riêng của key.
func (s *MemoryStore) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	s.cache.SetWithTTL(key, value, ttl)
	return nil
}

// Remove xóa key.
func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

// Stop dừng goroutine dọn dẹp của cache nền.
func (s *MemoryStore) Stop() {
	s.cache.Stop()
}
