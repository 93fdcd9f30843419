// Package kvstore - Test store trong bộ nhớ (Get/Set/Remove, TTL).
package kvstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetGetRemove(t *testing.T) {
	store := NewMemoryStore()
	defer store.Stop()
	ctx := context.Background()

	// Key chưa tồn tại
	_, exists, err := store.Get(ctx, "selection:client-1:prod-1")
	require.NoError(t, err)
	assert.False(t, exists, "key chưa set mà Get lại trả về exists=true")

	// Set rồi Get
	err = store.Set(ctx, "selection:client-1:prod-1", `{"attr":"opt"}`, time.Minute)
	require.NoError(t, err)

	value, exists, err := store.Get(ctx, "selection:client-1:prod-1")
	require.NoError(t, err)
	assert.True(t, exists, "key đã set mà Get không thấy")
	assert.Equal(t, `{"attr":"opt"}`, value)

	// Remove rồi Get
	err = store.Remove(ctx, "selection:client-1:prod-1")
	require.NoError(t, err)

	_, exists, err = store.Get(ctx, "selection:client-1:prod-1")
	require.NoError(t, err)
	assert.False(t, exists, "key đã remove mà vẫn còn")
}

func TestMemoryStore_RemoveMissingKey(t *testing.T) {
	store := NewMemoryStore()
	defer store.Stop()

	// Xóa key không tồn tại không được trả lỗi
	err := store.Remove(context.Background(), "missing")
	assert.NoError(t, err, "Remove key không tồn tại phải trả về nil")
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	store := NewMemoryStore()
	defer store.Stop()
	ctx := context.Background()

	err := store.Set(ctx, "short-lived", "v", 20*time.Millisecond)
	require.NoError(t, err)

	_, exists, _ := store.Get(ctx, "short-lived")
	assert.True(t, exists, "key vừa set phải còn sống")

	time.Sleep(30 * time.Millisecond)

	_, exists, _ = store.Get(ctx, "short-lived")
	assert.False(t, exists, "key quá TTL mà vẫn còn")
}

func TestMemoryStore_ZeroTTLNeverExpires(t *testing.T) {
	store := NewMemoryStore()
	defer store.Stop()
	ctx := context.Background()

	err := store.Set(ctx, "permanent", "v", 0)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	value, exists, _ := store.Get(ctx, "permanent")
	assert.True(t, exists, "key TTL=0 không được hết hạn")
	assert.Equal(t, "v", value)
}
