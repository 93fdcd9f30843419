package logger

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"
)

// AsyncHook ghi log bất đồng bộ: entry được buffer vào channel và một goroutine
// riêng format + ghi ra các writer. File I/O chậm vì vậy không block request handling.
type AsyncHook struct {
	writers []io.Writer
	entries chan *logrus.Entry
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
}

// NewAsyncHook tạo async hook ghi ra một hoặc nhiều writer (file, stdout).
// bufferSize <= 0 dùng mặc định 1000 entry.
func NewAsyncHook(writers []io.Writer, bufferSize int) *AsyncHook {
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	hook := &AsyncHook{
		writers: writers,
		entries: make(chan *logrus.Entry, bufferSize),
	}

	hook.wg.Add(1)
	go hook.drain()

	return hook
}

// Levels: hook nhận mọi level
func (h *AsyncHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire đưa entry vào channel và không bao giờ block: channel đầy thì entry
// bị bỏ. Sau khi hook đóng, entry được ghi thẳng (đồng bộ) để không mất log
// lúc shutdown.
func (h *AsyncHook) Fire(entry *logrus.Entry) error {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()

	if closed {
		data, err := formatEntry(entry)
		if err != nil {
			return err
		}
		h.writeAll(data)
		return nil
	}

	select {
	case h.entries <- entry:
	default:
		// Channel đầy, bỏ entry. Không log warning ở đây được vì tạo vòng lặp log.
	}

	return nil
}

// drain chạy trong goroutine riêng, xử lý lần lượt các entry đã buffer
func (h *AsyncHook) drain() {
	defer h.wg.Done()
	for entry := range h.entries {
		h.handleEntry(entry)
	}
}

// handleEntry format và ghi một entry. Recover để panic trong formatter/writer
// không làm sập server.
func (h *AsyncHook) handleEntry(entry *logrus.Entry) {
	defer func() {
		if r := recover(); r != nil {
			// Không dùng logger ở đây được (vòng lặp), báo thẳng ra stderr
			fmt.Fprintf(os.Stderr, "[LOGGER PANIC] Logger goroutine panic recovered: %v\n", r)
			debug.PrintStack()
		}
	}()

	// FilterHook đánh dấu entry bị lọc bằng field "_filtered"
	if filtered, ok := entry.Data[filteredField].(bool); ok && filtered {
		return
	}

	// Field đánh dấu chỉ dùng nội bộ, gỡ khỏi entry trước khi format
	if _, ok := entry.Data[filteredField]; ok {
		entry = entry.Dup()
		delete(entry.Data, filteredField)
	}

	data, err := formatEntry(entry)
	if err != nil {
		return
	}
	h.writeAll(data)
}

// formatEntry format entry bằng formatter của logger, fallback về String()
func formatEntry(entry *logrus.Entry) ([]byte, error) {
	if entry.Logger.Formatter != nil {
		return entry.Logger.Formatter.Format(entry)
	}
	line, err := entry.String()
	if err != nil {
		return nil, err
	}
	return []byte(line), nil
}

// writeAll ghi data ra mọi writer; một writer lỗi không chặn các writer còn lại
func (h *AsyncHook) writeAll(data []byte) {
	for _, w := range h.writers {
		_, _ = w.Write(data)
	}
}

// Close đóng hook và đợi các entry còn trong buffer được ghi hết
func (h *AsyncHook) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	close(h.entries)
	h.wg.Wait()
	return nil
}
