package worker

import (
	"context"
	"time"

	ordersvc "print_commerce/internal/api/order/service"
	"print_commerce/internal/logger"
	"print_commerce/internal/utility"
)

// ReceiptMailJanitor worker dọn các bản ghi receipt_mail_queue đã xử lý xong
// (sent/failed) quá hạn giữ lại, tránh collection phình to theo thời gian.
// Bản ghi pending không bị đụng tới (vẫn chờ worker gửi hoặc chờ admin xử lý).
type ReceiptMailJanitor struct {
	mailService   *ordersvc.ReceiptMailService
	interval      time.Duration // Khoảng thời gian giữa các lần chạy
	retentionDays int           // Số ngày giữ lại bản ghi đã xử lý
}

// NewReceiptMailJanitor tạo mới ReceiptMailJanitor
// Tham số:
//   - interval: Khoảng thời gian giữa các lần chạy (mặc định: 24 giờ)
//   - retentionDays: Số ngày giữ lại bản ghi sent/failed (mặc định: 30 ngày)
//
// Trả về:
//   - *ReceiptMailJanitor: Instance mới của ReceiptMailJanitor
//   - error: Lỗi nếu có trong quá trình khởi tạo
func NewReceiptMailJanitor(interval time.Duration, retentionDays int) (*ReceiptMailJanitor, error) {
	mailService, err := ordersvc.NewReceiptMailService()
	if err != nil {
		return nil, err
	}

	if interval < time.Hour {
		interval = 24 * time.Hour
	}
	if retentionDays <= 0 {
		retentionDays = 30
	}

	return &ReceiptMailJanitor{
		mailService:   mailService,
		interval:      interval,
		retentionDays: retentionDays,
	}, nil
}

// Start chạy janitor trong vòng lặp: mỗi interval xóa các bản ghi đã xử lý quá hạn.
func (w *ReceiptMailJanitor) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval":      w.interval.String(),
		"retentionDays": w.retentionDays,
	}).Info("🧹 [RECEIPT_MAIL_JANITOR] Starting Receipt Mail Janitor...")

	for {
		select {
		case <-ctx.Done():
			log.Info("🧹 [RECEIPT_MAIL_JANITOR] Receipt Mail Janitor stopped")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("🧹 [RECEIPT_MAIL_JANITOR] Panic khi dọn hàng đợi, sẽ tiếp tục ở lần chạy tiếp theo")
					}
				}()

				cutoff := utility.UnixMilli(time.Now().AddDate(0, 0, -w.retentionDays))
				deleted, err := w.mailService.DeleteProcessedBefore(ctx, cutoff)
				if err != nil {
					log.WithError(err).Error("🧹 [RECEIPT_MAIL_JANITOR] Lỗi xóa bản ghi quá hạn")
					return
				}

				if deleted > 0 {
					log.WithFields(map[string]interface{}{
						"deleted":       deleted,
						"retentionDays": w.retentionDays,
					}).Info("🧹 [RECEIPT_MAIL_JANITOR] Đã dọn bản ghi email quá hạn")
				}
				// Nếu deleted = 0, không log (giảm log noise)
			}()
		}
	}
}
