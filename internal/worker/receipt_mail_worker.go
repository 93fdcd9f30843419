package worker

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	ordersvc "print_commerce/internal/api/order/service"
	"print_commerce/internal/global"
	"print_commerce/internal/logger"
	"print_commerce/internal/receipt"
)

// ReceiptMailWorker worker gửi hóa đơn qua email: đọc các bản ghi receipt_mail_queue
// đang pending, dựng lại hóa đơn từ đơn hàng đã lưu rồi gửi qua SMTP.
// Gửi thành công đánh dấu sent; thất bại tăng attempts và thử lại ở lần chạy sau,
// quá MailMaxAttempts thì chuyển failed hẳn (xem ReceiptMailService.MarkFailed).
type ReceiptMailWorker struct {
	orderService *ordersvc.OrderService
	mailService  *ordersvc.ReceiptMailService
	dialer       *gomail.Dialer
	from         string        // Địa chỉ gửi (SMTP_FROM)
	interval     time.Duration // Khoảng thời gian giữa các lần chạy
	batchSize    int64         // Số email tối đa mỗi lần (vd: 20)
}

// NewReceiptMailWorker tạo mới ReceiptMailWorker.
// Cấu hình SMTP đọc từ server config; SMTP_HOST trống nghĩa là chưa cấu hình và worker
// không được khởi tạo (caller không nên start worker khi thiếu SMTP).
// Tham số:
//   - interval: Khoảng thời gian giữa các lần chạy (mặc định: 30 giây)
//   - batchSize: Số email tối đa mỗi lần (mặc định: 20)
func NewReceiptMailWorker(interval time.Duration, batchSize int64) (*ReceiptMailWorker, error) {
	cfg := global.MongoDB_ServerConfig
	if cfg == nil || cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP chưa được cấu hình (SMTP_HOST trống)")
	}

	orderService, err := ordersvc.NewOrderService()
	if err != nil {
		return nil, err
	}
	mailService, err := ordersvc.NewReceiptMailService()
	if err != nil {
		return nil, err
	}

	if interval < 5*time.Second {
		interval = 30 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 20
	}

	return &ReceiptMailWorker{
		orderService: orderService,
		mailService:  mailService,
		dialer:       gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:         cfg.SMTPFrom,
		interval:     interval,
		batchSize:    batchSize,
	}, nil
}

// Start chạy worker trong vòng lặp: mỗi interval đọc batch pending, gửi từng email,
// đánh dấu sent/failed theo kết quả.
func (w *ReceiptMailWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval":  w.interval.String(),
		"batchSize": w.batchSize,
		"from":      w.from,
	}).Info("📨 [RECEIPT_MAIL] Starting Receipt Mail Worker...")

	for {
		select {
		case <-ctx.Done():
			log.Info("📨 [RECEIPT_MAIL] Receipt Mail Worker stopped")
			return
		case <-ticker.C:
			w.runBatch(ctx, log)
		}
	}
}

// runBatch xử lý một đợt: lấy batch pending → dựng hóa đơn → gửi → đánh dấu.
func (w *ReceiptMailWorker) runBatch(ctx context.Context, log *logrus.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(map[string]interface{}{
				"panic": r,
			}).Error("📨 [RECEIPT_MAIL] Panic khi gửi email, sẽ tiếp tục ở lần chạy tiếp theo")
		}
	}()

	list, err := w.mailService.FindPending(ctx, w.batchSize)
	if err != nil {
		log.WithError(err).Error("📨 [RECEIPT_MAIL] Lỗi lấy danh sách email đang chờ")
		return
	}
	if len(list) == 0 {
		return
	}

	sent := 0
	failed := 0
	for _, item := range list {
		attempts := item.Attempts + 1

		doc, err := w.orderService.BuildReceipt(ctx, item.OrderID)
		if err != nil {
			failed++
			log.WithError(err).WithFields(map[string]interface{}{
				"queueId": item.ID.Hex(),
				"orderId": item.OrderID.Hex(),
			}).Warn("📨 [RECEIPT_MAIL] Dựng hóa đơn thất bại, bỏ qua")
			if markErr := w.mailService.MarkFailed(ctx, item.ID, attempts, err); markErr != nil {
				log.WithError(markErr).Warn("📨 [RECEIPT_MAIL] MarkFailed thất bại")
			}
			continue
		}

		if err := w.send(item.Email, doc); err != nil {
			failed++
			log.WithError(err).WithFields(map[string]interface{}{
				"queueId":  item.ID.Hex(),
				"orderId":  item.OrderID.Hex(),
				"email":    item.Email,
				"attempts": attempts,
			}).Warn("📨 [RECEIPT_MAIL] Gửi email thất bại, sẽ thử lại nếu chưa quá số lần cho phép")
			if markErr := w.mailService.MarkFailed(ctx, item.ID, attempts, err); markErr != nil {
				log.WithError(markErr).Warn("📨 [RECEIPT_MAIL] MarkFailed thất bại")
			}
			continue
		}

		if err := w.mailService.MarkSent(ctx, item.ID, attempts); err != nil {
			log.WithError(err).WithFields(map[string]interface{}{
				"queueId": item.ID.Hex(),
			}).Warn("📨 [RECEIPT_MAIL] MarkSent thất bại")
			continue
		}
		sent++
	}

	if sent > 0 || failed > 0 {
		log.WithFields(map[string]interface{}{
			"sent":   sent,
			"failed": failed,
			"total":  len(list),
		}).Info("📨 [RECEIPT_MAIL] Đã xử lý batch email hóa đơn")
	}
}

// send gửi một hóa đơn: nội dung text trong body và đính kèm file .txt cùng tên
// với bản tải về (cùng một Document nên nội dung giống hệt từng byte).
func (w *ReceiptMailWorker) send(to string, doc *receipt.Document) error {
	text := doc.Render()

	msg := gomail.NewMessage()
	msg.SetHeader("From", w.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Hóa đơn đơn hàng %s", doc.OrderID))
	msg.SetBody("text/plain", text)
	msg.Attach(doc.Filename(), gomail.SetCopyFunc(func(wr io.Writer) error {
		_, err := wr.Write([]byte(text))
		return err
	}))

	return w.dialer.DialAndSend(msg)
}
