// Package database - Index bổ sung cho catalog (text index nhiều field) không thể định nghĩa qua model tags.
package database

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"print_commerce/internal/global"
)

// CreateCatalogAdditionalIndexes tạo các index bổ sung cho catalog.
// Gọi sau CreateIndexes cho collection catalog_products.
func CreateCatalogAdditionalIndexes(ctx context.Context, db *mongo.Database) error {
	// catalog_products: text index trên (name, description) — tìm kiếm sản phẩm storefront.
	// Tag index chỉ hỗ trợ text index một field nên phải tạo tay ở đây.
	catalogProducts := db.Collection(global.MongoDB_ColNames.CatalogProducts)
	if _, err := catalogProducts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "name", Value: "text"},
			{Key: "description", Value: "text"},
		},
		Options: options.Index().
			SetName("catalog_product_text").
			SetWeights(bson.M{"name": 10, "description": 2}),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "duplicate")
}
