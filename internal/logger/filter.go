package logger

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// filteredField đánh dấu entry bị lọc. FilterHook set field này,
// AsyncHook thấy nó thì bỏ qua entry khi ghi.
const filteredField = "_filtered"

// filterRule là whitelist cho một tiêu chí lọc. Rule không active
// (chuỗi cấu hình rỗng hoặc "*") cho mọi giá trị đi qua.
type filterRule struct {
	allowed map[string]bool
	active  bool
}

// newFilterRule parse chuỗi cấu hình "value1,value2" thành rule,
// lowercase để so sánh không phân biệt hoa thường
func newFilterRule(filterStr string) filterRule {
	allowed := make(map[string]bool)

	if filterStr == "" || filterStr == "*" {
		allowed["*"] = true
		return filterRule{allowed: allowed}
	}

	for _, v := range strings.Split(filterStr, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			allowed[strings.ToLower(v)] = true
		}
	}

	return filterRule{
		allowed: allowed,
		active:  len(allowed) > 0 && !allowed["*"],
	}
}

// permits kiểm tra một giá trị theo exact match
func (r filterRule) permits(value string) bool {
	return r.allowed[strings.ToLower(value)]
}

// permitsPath kiểm tra endpoint theo exact match hoặc prefix match,
// để "/api/v1/orders" trong whitelist khớp cả "/api/v1/orders/insert"
func (r filterRule) permitsPath(path string) bool {
	pathLower := strings.ToLower(path)
	for allowed := range r.allowed {
		if allowed == "*" || pathLower == allowed || strings.HasPrefix(pathLower, allowed) {
			return true
		}
	}
	return false
}

// FilterHook lọc log entry theo level, module (catalog, order, sanitize...),
// collection, endpoint và method. Entry bị lọc chỉ bị đánh dấu chứ không chặn,
// quyết định bỏ nằm ở AsyncHook lúc ghi.
type FilterHook struct {
	levels      filterRule
	modules     filterRule
	collections filterRule
	endpoints   filterRule
	methods     filterRule

	mu sync.RWMutex
}

// NewFilterHook tạo filter hook từ config
func NewFilterHook(cfg *LogConfig) *FilterHook {
	hook := &FilterHook{}
	hook.reload(cfg)
	return hook
}

// reload nạp lại các rule từ config
func (h *FilterHook) reload(cfg *LogConfig) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.levels = newFilterRule(cfg.FilterLogTypes)
	h.modules = newFilterRule(cfg.FilterModules)
	h.collections = newFilterRule(cfg.FilterCollections)
	h.endpoints = newFilterRule(cfg.FilterEndpoints)
	h.methods = newFilterRule(cfg.FilterMethods)
}

// Levels: hook nhận mọi level
func (h *FilterHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire đánh dấu entry không qua được một rule nào đó.
// Entry thiếu field tương ứng (module, method...) thì rule đó cho qua.
func (h *FilterHook) Fire(entry *logrus.Entry) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.levels.active && !h.levels.permits(entry.Level.String()) {
		entry.Data[filteredField] = true
		return nil
	}

	if h.modules.active {
		if module, ok := entry.Data["module"].(string); ok && module != "" && !h.modules.permits(module) {
			entry.Data[filteredField] = true
			return nil
		}
	}

	if h.collections.active {
		if collection, ok := entry.Data["collection"].(string); ok && collection != "" && !h.collections.permits(collection) {
			entry.Data[filteredField] = true
			return nil
		}
	}

	if h.endpoints.active {
		endpoint, ok := entry.Data["endpoint"].(string)
		if !ok || endpoint == "" {
			endpoint, _ = entry.Data["path"].(string)
		}
		if endpoint != "" && !h.endpoints.permitsPath(endpoint) {
			entry.Data[filteredField] = true
			return nil
		}
	}

	if h.methods.active {
		if method, ok := entry.Data["method"].(string); ok && method != "" && !h.methods.permits(method) {
			entry.Data[filteredField] = true
			return nil
		}
	}

	return nil
}
