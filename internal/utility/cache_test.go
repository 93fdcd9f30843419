// Package utility - Test cache trong bộ nhớ với TTL theo item.
package utility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_SetGetDelete(t *testing.T) {
	c := NewCache[string](0, 0)

	c.Set("k", "v")
	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)

	c.Delete("k")
	_, ok = c.Get("k")
	assert.False(t, ok, "key đã xóa không được trả về")
}

func TestCache_TTLExpiry(t *testing.T) {
	c := NewCache[int](20*time.Millisecond, 0)

	c.Set("k", 42)
	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 42, got)

	time.Sleep(30 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok, "item quá TTL phải coi như không tồn tại")
}

func TestCache_SetWithTTLOverridesDefault(t *testing.T) {
	c := NewCache[int](time.Hour, 0)

	c.SetWithTTL("ngắn", 1, 20*time.Millisecond)
	c.Set("dài", 2)

	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get("ngắn")
	assert.False(t, ok, "TTL riêng phải thắng TTL mặc định")

	got, ok := c.Get("dài")
	assert.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	c := NewCache[int](0, 0)

	c.Set("k", 7)
	time.Sleep(20 * time.Millisecond)

	got, ok := c.Get("k")
	assert.True(t, ok, "TTL <= 0 nghĩa là không hết hạn")
	assert.Equal(t, 7, got)
}

func TestCache_CleanupLoopEvicts(t *testing.T) {
	c := NewCache[int](10*time.Millisecond, 15*time.Millisecond)
	defer c.Stop()

	c.Set("k", 1)
	time.Sleep(40 * time.Millisecond)

	c.mu.RLock()
	_, exists := c.items["k"]
	c.mu.RUnlock()
	assert.False(t, exists, "goroutine dọn dẹp phải thu hồi item hết hạn khỏi map")
}

func TestCache_ZeroValueType(t *testing.T) {
	c := NewCache[*int](0, 0)

	got, ok := c.Get("không có")
	assert.False(t, ok)
	assert.Nil(t, got, "miss phải trả về zero value của kiểu")
}
