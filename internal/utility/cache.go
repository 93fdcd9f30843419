package utility

import (
	"sync"
	"time"
)

// cacheItem giữ giá trị kèm thời điểm hết hạn (UnixNano, 0 = không hết hạn).
type cacheItem[T any] struct {
	value     T
	expiresAt int64
}

// Cache là cache key-value trong bộ nhớ với TTL theo từng item
// và goroutine dọn dẹp định kỳ các item đã hết hạn.
type Cache[T any] struct {
	items    map[string]cacheItem[T]
	mu       sync.RWMutex
	ttl      time.Duration
	cleanup  time.Duration
	stopChan chan struct{}
}

// NewCache tạo một instance mới của Cache.
// ttl là thời gian sống của mỗi item (<= 0: không hết hạn),
// cleanup là chu kỳ quét dọn các item hết hạn.
func NewCache[T any](ttl, cleanup time.Duration) *Cache[T] {
	cache := &Cache[T]{
		items:    make(map[string]cacheItem[T]),
		ttl:      ttl,
		cleanup:  cleanup,
		stopChan: make(chan struct{}),
	}
	if cleanup > 0 {
		go cache.cleanupLoop()
	}
	return cache
}

// Set lưu giá trị vào cache với TTL mặc định của cache.
func (c *Cache[T]) Set(key string, value T) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL lưu giá trị vào cache với TTL riêng (<= 0: không hết hạn).
func (c *Cache[T]) SetWithTTL(key string, value T, ttl time.Duration) {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = cacheItem[T]{value: value, expiresAt: expiresAt}
}

// Get lấy giá trị từ cache. Item đã hết hạn coi như không tồn tại.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists {
		var zero T
		return zero, false
	}
	if item.expiresAt > 0 && time.Now().UnixNano() > item.expiresAt {
		// Hết hạn: xóa lười, goroutine dọn dẹp sẽ thu hồi phần còn lại
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		var zero T
		return zero, false
	}
	return item.value, true
}

// Delete xóa một key khỏi cache (dùng khi dữ liệu nguồn thay đổi).
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Clear xóa toàn bộ item trong cache (dùng khi không xác định được key nào
// bị ảnh hưởng, ví dụ sau khi xóa dữ liệu nguồn).
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]cacheItem[T])
}

// Stop dừng goroutine dọn dẹp.
func (c *Cache[T]) Stop() {
	close(c.stopChan)
}

// cleanupLoop quét và xóa các item đã hết hạn theo chu kỳ cleanup.
func (c *Cache[T]) cleanupLoop() {
	ticker := time.NewTicker(c.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now().UnixNano()
			c.mu.Lock()
			for k, item := range c.items {
				if item.expiresAt > 0 && now > item.expiresAt {
					delete(c.items, k)
				}
			}
			c.mu.Unlock()
		case <-c.stopChan:
			return
		}
	}
}
