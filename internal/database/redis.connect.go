package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"print_commerce/config"
	"print_commerce/internal/logger"
)

// GetRedisInstance khởi tạo và trả về một *redis.Client.
// Redis là optional: nếu REDIS_ADDRESS không được cấu hình, trả về (nil, nil)
// và các tầng cache sẽ tự chuyển sang bộ nhớ trong process.
func GetRedisInstance(c *config.Configuration) (*redis.Client, error) {
	if c.RedisAddress == "" {
		logger.GetAppLogger().Info("REDIS_ADDRESS không được cấu hình, dùng cache trong bộ nhớ")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     c.RedisAddress,
		Password: c.RedisPassword, // Để trống nếu không có mật khẩu
		DB:       c.RedisDB,       // Mặc định 0
	})

	// Kiểm tra kết nối
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	logger.GetAppLogger().Info("Successfully connected to Redis")
	return client, nil
}

// CloseRedisInstance đóng kết nối Redis client.
func CloseRedisInstance(client *redis.Client) error {
	if client == nil {
		return nil
	}
	if err := client.Close(); err != nil {
		logger.GetAppLogger().WithError(err).Error("Failed to close Redis client")
		return err
	}
	logger.GetAppLogger().Info("Successfully disconnected from Redis")
	return nil
}
