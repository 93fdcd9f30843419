// Package catalogsvc - Test loader: latest-wins theo client và cache view chuẩn hóa.
package catalogsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	catalogmodels "print_commerce/internal/api/catalog/models"
	"print_commerce/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCatalogLoader_LatestWinsPerClient(t *testing.T) {
	slowID := primitive.NewObjectID()
	fastID := primitive.NewObjectID()
	entered := make(chan struct{})

	fetch := func(ctx context.Context, id primitive.ObjectID) (catalogmodels.CatalogProduct, error) {
		if id == slowID {
			close(entered)
			// Treo cho tới khi bị lần tải mới hơn hủy
			<-ctx.Done()
			return catalogmodels.CatalogProduct{}, ctx.Err()
		}
		return catalogmodels.CatalogProduct{ID: id, Name: "Ly sứ"}, nil
	}
	loader := newCatalogLoader(fetch, time.Minute)

	firstResult := make(chan error, 1)
	go func() {
		_, err := loader.Load(context.Background(), "client-a", slowID)
		firstResult <- err
	}()

	// Chờ lần tải đầu thật sự vào fetch rồi mới bắt đầu lần tải mới
	<-entered
	view, err := loader.Load(context.Background(), "client-a", fastID)
	require.NoError(t, err, "lần tải mới nhất phải thành công")
	assert.Equal(t, "Ly sứ", view.Product.Name)

	err = <-firstResult
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrStaleLoad), "lần tải bị thay thế phải trả về ErrStaleLoad, nhận: %v", err)
}

func TestCatalogLoader_ClientsDoNotCancelEachOther(t *testing.T) {
	slowID := primitive.NewObjectID()
	fastID := primitive.NewObjectID()
	entered := make(chan struct{})
	release := make(chan struct{})

	fetch := func(ctx context.Context, id primitive.ObjectID) (catalogmodels.CatalogProduct, error) {
		if id == slowID {
			close(entered)
			select {
			case <-release:
				return catalogmodels.CatalogProduct{ID: id, Name: "Poster"}, nil
			case <-ctx.Done():
				return catalogmodels.CatalogProduct{}, ctx.Err()
			}
		}
		return catalogmodels.CatalogProduct{ID: id, Name: "Danh thiếp"}, nil
	}
	loader := newCatalogLoader(fetch, time.Minute)

	firstResult := make(chan error, 1)
	go func() {
		_, err := loader.Load(context.Background(), "client-a", slowID)
		firstResult <- err
	}()

	<-entered
	// Client khác tải trong lúc client-a còn đang bay — không được hủy nhau
	_, err := loader.Load(context.Background(), "client-b", fastID)
	require.NoError(t, err)

	close(release)
	assert.NoError(t, <-firstResult, "load của client-a không được ảnh hưởng bởi client-b")
}

func TestCatalogLoader_CachesNormalizedView(t *testing.T) {
	productID := primitive.NewObjectID()
	calls := 0

	fetch := func(ctx context.Context, id primitive.ObjectID) (catalogmodels.CatalogProduct, error) {
		calls++
		return catalogmodels.CatalogProduct{
			ID:        id,
			Name:      "<b>Danh thiếp</b>",
			BasePrice: 20,
			Attributes: []catalogmodels.Attribute{
				{ID: "a-empty", Name: "Nháp", Options: nil},
				{ID: "a-paper", Name: "Giấy", Options: []catalogmodels.AttributeOption{
					{ID: "o-300", Label: "<i>300gsm</i>", IsDefault: true},
				}},
			},
		}, nil
	}
	loader := newCatalogLoader(fetch, time.Minute)

	view, err := loader.GetCatalog(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, "Danh thiếp", view.Product.Name, "tên sản phẩm phải được strip markup")
	require.Len(t, view.Product.Attributes, 1, "attribute không có option phải bị loại khỏi view")
	assert.Equal(t, "300gsm", view.Product.Attributes[0].Options[0].Label)
	assert.Equal(t, catalogmodels.Selection{"a-paper": "o-300"}, view.Defaults, "selection mặc định resolve sẵn trong view")

	_, err = loader.GetCatalog(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "lần hai phải lấy từ cache")

	loader.Invalidate(productID)
	_, err = loader.GetCatalog(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "sau invalidate phải tải lại từ nguồn")
}

func TestCatalogLoader_EmptyClientIDSkipsLatestWins(t *testing.T) {
	productID := primitive.NewObjectID()
	fetch := func(ctx context.Context, id primitive.ObjectID) (catalogmodels.CatalogProduct, error) {
		return catalogmodels.CatalogProduct{ID: id, Name: "Tờ rơi"}, nil
	}
	loader := newCatalogLoader(fetch, time.Minute)

	view, err := loader.Load(context.Background(), "", productID)
	require.NoError(t, err)
	assert.Equal(t, "Tờ rơi", view.Product.Name)
}

func TestCatalogLoader_FetchErrorPassesThrough(t *testing.T) {
	productID := primitive.NewObjectID()
	fetch := func(ctx context.Context, id primitive.ObjectID) (catalogmodels.CatalogProduct, error) {
		return catalogmodels.CatalogProduct{}, common.ErrNotFound
	}
	loader := newCatalogLoader(fetch, time.Minute)

	_, err := loader.Load(context.Background(), "client-a", productID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound), "lỗi dữ liệu phải giữ nguyên, không thành stale")
}
