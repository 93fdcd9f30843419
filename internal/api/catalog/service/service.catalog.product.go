package catalogsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "print_commerce/internal/api/base/service"
	catalogmodels "print_commerce/internal/api/catalog/models"
	"print_commerce/internal/common"
	"print_commerce/internal/global"
	"print_commerce/internal/sanitize"
)

// CatalogProductService là service cho sản phẩm catalog. Mọi đường ghi đều đi
// qua bộ làm sạch nội dung: text thuần (tên, slug, sku, nhãn option) bị gỡ
// markup, mô tả rich text được sanitize rồi che từ cấm. Dữ liệu bẩn không
// được phép nằm trong DB dù đường đọc có chuẩn hóa lại lần nữa.
type CatalogProductService struct {
	*basesvc.BaseServiceMongoImpl[catalogmodels.CatalogProduct]
}

// NewCatalogProductService tạo mới CatalogProductService
func NewCatalogProductService() (*CatalogProductService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.CatalogProducts)
	if !exist {
		return nil, fmt.Errorf("failed to get catalog_products collection: %v", common.ErrNotFound)
	}
	return &CatalogProductService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[catalogmodels.CatalogProduct](coll),
	}, nil
}

// InsertOne làm sạch nội dung sản phẩm rồi ghi vào DB.
func (s *CatalogProductService) InsertOne(ctx context.Context, data catalogmodels.CatalogProduct) (catalogmodels.CatalogProduct, error) {
	sanitizeProduct(&data)
	return s.BaseServiceMongoImpl.InsertOne(ctx, data)
}

// InsertMany làm sạch nội dung từng sản phẩm rồi ghi vào DB.
func (s *CatalogProductService) InsertMany(ctx context.Context, data []catalogmodels.CatalogProduct) ([]catalogmodels.CatalogProduct, error) {
	for i := range data {
		sanitizeProduct(&data[i])
	}
	return s.BaseServiceMongoImpl.InsertMany(ctx, data)
}

// UpdateOne làm sạch các field nội dung trong update rồi ghi.
func (s *CatalogProductService) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (catalogmodels.CatalogProduct, error) {
	return s.BaseServiceMongoImpl.UpdateOne(ctx, filter, sanitizeUpdate(update), opts)
}

// UpdateMany làm sạch các field nội dung trong update rồi ghi.
func (s *CatalogProductService) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (int64, error) {
	return s.BaseServiceMongoImpl.UpdateMany(ctx, filter, sanitizeUpdate(update), opts)
}

// UpdateById làm sạch các field nội dung trong update rồi ghi.
func (s *CatalogProductService) UpdateById(ctx context.Context, id primitive.ObjectID, data interface{}) (catalogmodels.CatalogProduct, error) {
	return s.BaseServiceMongoImpl.UpdateById(ctx, id, sanitizeUpdate(data))
}

// FindOneAndUpdate làm sạch các field nội dung trong update rồi ghi.
func (s *CatalogProductService) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts *options.FindOneAndUpdateOptions) (catalogmodels.CatalogProduct, error) {
	return s.BaseServiceMongoImpl.FindOneAndUpdate(ctx, filter, sanitizeUpdate(update), opts)
}

// Upsert làm sạch các field nội dung trong update rồi ghi.
func (s *CatalogProductService) Upsert(ctx context.Context, filter interface{}, data interface{}) (catalogmodels.CatalogProduct, error) {
	return s.BaseServiceMongoImpl.Upsert(ctx, filter, sanitizeUpdate(data))
}

// UpsertMany làm sạch nội dung từng sản phẩm rồi ghi.
func (s *CatalogProductService) UpsertMany(ctx context.Context, filter interface{}, data []catalogmodels.CatalogProduct) ([]catalogmodels.CatalogProduct, error) {
	for i := range data {
		sanitizeProduct(&data[i])
	}
	return s.BaseServiceMongoImpl.UpsertMany(ctx, filter, data)
}

// FindActiveById tìm sản phẩm đang bày bán theo id. Sản phẩm đã tắt bày bán
// trả về ErrNotFound — storefront không phân biệt "không tồn tại" với "đã ẩn".
func (s *CatalogProductService) FindActiveById(ctx context.Context, id primitive.ObjectID) (catalogmodels.CatalogProduct, error) {
	filter := map[string]interface{}{"_id": id, "isActive": true}
	return s.FindOne(ctx, filter, nil)
}

// SetActive bật/tắt bày bán sản phẩm. Tách khỏi partial update vì update
// thường bỏ qua zero value — không set false được qua đường đó.
func (s *CatalogProductService) SetActive(ctx context.Context, id primitive.ObjectID, active bool) (catalogmodels.CatalogProduct, error) {
	updateData := &basesvc.UpdateData{
		Set: map[string]interface{}{"isActive": active},
	}
	return s.BaseServiceMongoImpl.UpdateById(ctx, id, updateData)
}

// DeleteProductById xóa sản phẩm sau khi chắc chắn không còn dòng hàng nào
// tham chiếu. Tag relationship trên model đã chặn ở tầng base, nhưng xóa
// sản phẩm làm hỏng hóa đơn cũ nên kiểm tra tường minh thêm một lần ở đây.
func (s *CatalogProductService) DeleteProductById(ctx context.Context, id primitive.ObjectID) error {
	if err := basesvc.ValidateBeforeDeleteProduct(ctx, id); err != nil {
		return err
	}
	return s.BaseServiceMongoImpl.DeleteById(ctx, id)
}

// sanitizeProduct làm sạch các field nội dung trên model trước khi ghi.
// Không drop attribute thiếu option — đó là việc của NormalizeAttributes ở
// đường đọc; admin được phép lưu nháp attribute chưa có option.
func sanitizeProduct(p *catalogmodels.CatalogProduct) {
	p.Name = sanitize.StripToText(p.Name, 0)
	p.Slug = sanitize.StripToText(p.Slug, 0)
	p.SKU = sanitize.StripToText(p.SKU, 0)
	if p.Description != "" {
		p.Description = sanitize.Clean(p.Description)
	}
	for i := range p.Attributes {
		attr := &p.Attributes[i]
		attr.Name = sanitize.StripToText(attr.Name, 0)
		for j := range attr.Options {
			opt := &attr.Options[j]
			opt.Label = sanitize.StripToText(opt.Label, 0)
			if opt.Description != "" {
				opt.Description = sanitize.Clean(opt.Description)
			}
		}
	}
}

// sanitizeUpdate làm sạch các field nội dung dạng string trong một update
// (map hoặc UpdateData). Các giá trị không phải string (attributes đã thành
// mảng bson) giữ nguyên — đường đọc chuẩn hóa lại trước khi render.
func sanitizeUpdate(data interface{}) interface{} {
	update, err := basesvc.ToUpdateData(data)
	if err != nil {
		return data
	}
	for key, value := range update.Set {
		str, ok := value.(string)
		if !ok {
			continue
		}
		switch key {
		case "name", "slug", "sku":
			update.Set[key] = sanitize.StripToText(str, 0)
		case "description":
			update.Set[key] = sanitize.Clean(str)
		}
	}
	return update
}
