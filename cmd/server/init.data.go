package main

import (
	"print_commerce/internal/api/initsvc"
	"print_commerce/internal/logger"
)

func InitDefaultData() {
	log := logger.GetAppLogger()
	log.Info("🔄 [INIT] Starting InitDefaultData...")

	initService, err := initsvc.NewInitService()
	if err != nil {
		log.Fatalf("Failed to initialize init service: %v", err)
	}

	// Seed sản phẩm in ấn mẫu khi catalog còn trống để bản cài mới
	// chạy được luồng xem/báo giá/checkout ngay
	log.Info("🔄 [INIT] Step 1: Initializing sample catalog products...")
	if err := initService.InitCatalogProducts(); err != nil {
		log.WithError(err).Error("❌ [INIT] Step 1: Failed to initialize sample catalog products")
		log.Warnf("Failed to initialize sample catalog products: %v", err)
	} else {
		log.Info("✅ [INIT] Step 1: Sample catalog products initialized")
	}

	log.Info("✅ [INIT] InitDefaultData completed successfully")
}
