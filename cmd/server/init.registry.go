package main

import (
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"print_commerce/config"
	"print_commerce/internal/global"
)

// InitRegistry đăng ký collection handle của 4 collection vào registry
// dùng chung; service và validator exists tra cứu qua đây.
func InitRegistry() {
	if err := InitCollections(global.MongoDB_Session, global.MongoDB_ServerConfig); err != nil {
		logrus.Fatalf("Failed to initialize collections: %v", err)
	}
	logrus.Info("Initialized collection registry")
}

// InitCollections đăng ký từng collection theo tên khai báo trong
// global.MongoDB_ColNames.
func InitCollections(client *mongo.Client, cfg *config.Configuration) error {
	db := client.Database(cfg.MongoDB_DBName)

	for _, name := range []string{
		global.MongoDB_ColNames.CatalogProducts,
		global.MongoDB_ColNames.Orders,
		global.MongoDB_ColNames.OrderItemDetails,
		global.MongoDB_ColNames.ReceiptMailQueue,
	} {
		registered, err := global.RegistryCollections.Register(name, db.Collection(name))
		if err != nil {
			logrus.Errorf("Failed to register collection %s: %v", name, err)
			return err
		}

		if registered {
			logrus.Infof("Collection %s registered successfully", name)
		} else {
			logrus.Errorf("Collection %s already registered", name)
		}
	}

	return nil
}
