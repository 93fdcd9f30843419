package catalogsvc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	catalogmodels "print_commerce/internal/api/catalog/models"
	"print_commerce/internal/api/events"
	"print_commerce/internal/common"
	"print_commerce/internal/global"
	"print_commerce/internal/logger"
	"print_commerce/internal/sanitize"
	"print_commerce/internal/utility"
)

// ProductCatalogView là snapshot catalog đã chuẩn hóa của một sản phẩm:
// attributes đã qua NormalizeAttributes, mô tả đã làm sạch, kèm selection
// mặc định. View được cache và chia sẻ giữa các request — KHÔNG được sửa;
// cần selection riêng thì copy Defaults trước.
type ProductCatalogView struct {
	Product  catalogmodels.CatalogProduct
	Defaults catalogmodels.Selection
}

// fetchProductFunc tải sản phẩm từ nguồn dữ liệu (mặc định: Mongo qua
// CatalogProductService, chỉ sản phẩm đang bày bán).
type fetchProductFunc func(ctx context.Context, id primitive.ObjectID) (catalogmodels.CatalogProduct, error)

// loadSlot theo dõi lần tải đang bay của một client. Mỗi lần tải mới tăng
// generation và hủy context của lần trước — kết quả cũ về muộn bị loại bằng
// so sánh generation, không bao giờ đè lên view mới hơn.
type loadSlot struct {
	gen      uint64
	cancel   context.CancelFunc
	lastUsed int64
}

// CatalogLoader tải catalog sản phẩm với hai tầng bảo vệ:
//   - cache TTL cho view đã chuẩn hóa, invalidate qua event thay đổi dữ liệu;
//   - latest-wins theo từng client: client bấm sang sản phẩm khác khi lần tải
//     trước chưa xong thì lần tải mới thắng, lần cũ bị hủy và kết quả (nếu
//     kịp về) bị bỏ.
type CatalogLoader struct {
	fetch    fetchProductFunc
	cache    *utility.Cache[*ProductCatalogView]
	cacheTTL time.Duration

	mu    sync.Mutex
	slots map[string]*loadSlot
}

// maxIdleSlots là ngưỡng bắt đầu dọn các slot client không hoạt động.
const maxIdleSlots = 1024

// NewCatalogLoader tạo loader dùng CatalogProductService làm nguồn dữ liệu.
// cacheTTL <= 0 sẽ dùng TTL từ cấu hình (CATALOG_CACHE_TTL giây).
func NewCatalogLoader(service *CatalogProductService, cacheTTL time.Duration) *CatalogLoader {
	if cacheTTL <= 0 {
		cacheTTL = 300 * time.Second
		if global.MongoDB_ServerConfig != nil && global.MongoDB_ServerConfig.CatalogCacheTTL > 0 {
			cacheTTL = time.Duration(global.MongoDB_ServerConfig.CatalogCacheTTL) * time.Second
		}
	}
	return newCatalogLoader(service.FindActiveById, cacheTTL)
}

// newCatalogLoader tạo loader với hàm fetch tùy ý (test dùng trực tiếp).
func newCatalogLoader(fetch fetchProductFunc, cacheTTL time.Duration) *CatalogLoader {
	l := &CatalogLoader{
		fetch:    fetch,
		cache:    utility.NewCache[*ProductCatalogView](cacheTTL, time.Minute),
		cacheTTL: cacheTTL,
		slots:    make(map[string]*loadSlot),
	}
	events.OnDataChanged(l.onDataChanged)
	return l
}

// Load tải catalog đã chuẩn hóa cho một client với latest-wins: gọi Load lần
// nữa cho cùng client (bất kể sản phẩm nào) sẽ hủy lần tải đang bay và làm
// kết quả của nó thành stale. Lần tải bị thay thế trả về ErrStaleLoad — chỉ
// để caller biết bỏ kết quả, không phải lỗi dữ liệu.
//
// clientID rỗng thì không có phiên để tranh chấp, tải thẳng qua cache.
func (l *CatalogLoader) Load(ctx context.Context, clientID string, productID primitive.ObjectID) (*ProductCatalogView, error) {
	if clientID == "" {
		return l.GetCatalog(ctx, productID)
	}

	loadCtx, gen, slot := l.beginLoad(ctx, clientID)
	view, err := l.GetCatalog(loadCtx, productID)
	latest := l.endLoad(slot, gen)

	if !latest {
		logger.WithModule("catalog").WithFields(logrus.Fields{
			"client_id":  clientID,
			"product_id": productID.Hex(),
			"generation": gen,
		}).Info("Kết quả tải catalog bị thay thế bởi lần tải mới hơn, bỏ qua")
		return nil, common.ErrStaleLoad
	}
	if err != nil {
		// Bị hủy giữa chừng bởi lần tải mới hơn cũng là stale
		if errors.Is(err, context.Canceled) && ctx.Err() == nil {
			return nil, common.ErrStaleLoad
		}
		return nil, err
	}
	return view, nil
}

// GetCatalog trả về view catalog đã chuẩn hóa, ưu tiên cache. Dùng trực tiếp
// khi không cần latest-wins (checkout xử lý tuần tự từng item).
func (l *CatalogLoader) GetCatalog(ctx context.Context, productID primitive.ObjectID) (*ProductCatalogView, error) {
	key := productID.Hex()
	if view, ok := l.cache.Get(key); ok {
		return view, nil
	}

	product, err := l.fetch(ctx, productID)
	if err != nil {
		return nil, err
	}

	view := buildProductCatalogView(product)
	l.cache.SetWithTTL(key, view, l.cacheTTL)
	return view, nil
}

// Invalidate xóa view của một sản phẩm khỏi cache.
func (l *CatalogLoader) Invalidate(productID primitive.ObjectID) {
	l.cache.Delete(productID.Hex())
}

// beginLoad cấp generation mới cho client và hủy lần tải đang bay (nếu có).
func (l *CatalogLoader) beginLoad(ctx context.Context, clientID string) (context.Context, uint64, *loadSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepIdleSlotsLocked()

	slot, ok := l.slots[clientID]
	if !ok {
		slot = &loadSlot{}
		l.slots[clientID] = slot
	}
	if slot.cancel != nil {
		slot.cancel()
	}
	slot.gen++
	slot.lastUsed = time.Now().UnixNano()

	loadCtx, cancel := context.WithCancel(ctx)
	slot.cancel = cancel
	return loadCtx, slot.gen, slot
}

// endLoad kết thúc một lần tải, trả về true nếu nó vẫn là lần mới nhất.
func (l *CatalogLoader) endLoad(slot *loadSlot, gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if slot.gen != gen {
		return false
	}
	if slot.cancel != nil {
		// Giải phóng context con của chính lần tải này
		slot.cancel()
		slot.cancel = nil
	}
	return true
}

// sweepIdleSlotsLocked dọn các slot không còn load đang bay và đã lâu không
// dùng. Gọi khi đang giữ l.mu.
func (l *CatalogLoader) sweepIdleSlotsLocked() {
	if len(l.slots) < maxIdleSlots {
		return
	}
	cutoff := time.Now().Add(-time.Hour).UnixNano()
	for clientID, slot := range l.slots {
		if slot.cancel == nil && slot.lastUsed < cutoff {
			delete(l.slots, clientID)
		}
	}
}

// onDataChanged invalidate cache khi sản phẩm catalog thay đổi. Update/upsert
// xóa đúng view của sản phẩm đó; delete không còn document để lấy id nên xóa
// toàn bộ cache.
func (l *CatalogLoader) onDataChanged(_ context.Context, e events.DataChangeEvent) {
	if global.MongoDB_ColNames.CatalogProducts == "" || e.CollectionName != global.MongoDB_ColNames.CatalogProducts {
		return
	}

	if e.Operation == events.OpDelete || e.Document == nil {
		l.cache.Clear()
		return
	}

	id := events.GetObjectIDField(e.Document, "ID")
	if id.IsZero() {
		l.cache.Clear()
		return
	}
	l.cache.Delete(id.Hex())
}

// buildProductCatalogView chuẩn hóa một sản phẩm thành view storefront:
// attributes qua NormalizeAttributes, mô tả sản phẩm làm sạch + che từ cấm,
// selection mặc định resolve sẵn.
func buildProductCatalogView(product catalogmodels.CatalogProduct) *ProductCatalogView {
	product.Attributes = NormalizeAttributes(product.Attributes)
	product.Name = sanitize.StripToText(product.Name, 0)
	if product.Description != "" {
		product.Description = sanitize.Clean(product.Description)
	}
	return &ProductCatalogView{
		Product:  product,
		Defaults: ResolveDefaults(product.Attributes),
	}
}
