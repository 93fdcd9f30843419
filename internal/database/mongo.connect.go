package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"print_commerce/config"
	"print_commerce/internal/logger"
)

// Thông số pool và timeout cho MongoDB client.
const (
	mongoMaxPoolSize    = 50
	mongoMinPoolSize    = 10
	mongoConnectTimeout = 5 * time.Second
	mongoSocketTimeout  = 10 * time.Second
)

// GetInstance kết nối tới MongoDB theo URI trong cấu hình và ping thử
// trước khi trả về client. URI rỗng hoặc ping fail đều trả lỗi để caller
// dừng quá trình khởi động.
func GetInstance(c *config.Configuration) (*mongo.Client, error) {
	if c.MongoDB_ConnectionURI == "" {
		return nil, fmt.Errorf("database connection URL is empty")
	}

	opts := options.Client().
		ApplyURI(c.MongoDB_ConnectionURI).
		SetMaxPoolSize(mongoMaxPoolSize).
		SetMinPoolSize(mongoMinPoolSize).
		SetConnectTimeout(mongoConnectTimeout).
		SetSocketTimeout(mongoSocketTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancelPing()

	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.GetAppLogger().Info("Successfully connected to MongoDB")
	return client, nil
}

// CloseInstance ngắt kết nối MongoDB client khi server dừng.
func CloseInstance(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Disconnect(ctx); err != nil {
		logger.GetAppLogger().WithError(err).Error("Failed to disconnect MongoDB client")
		return err
	}

	logger.GetAppLogger().Info("Successfully disconnected from MongoDB")
	return nil
}
