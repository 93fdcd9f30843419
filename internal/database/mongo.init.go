package database

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"print_commerce/internal/global"
	"print_commerce/internal/logger"
)

// EnsureDatabaseAndCollections tạo database và các collection khai báo trong
// global.MongoDB_ColNames nếu chưa tồn tại. MongoDB tự tạo database khi
// collection đầu tiên trong nó được tạo.
func EnsureDatabaseAndCollections(client *mongo.Client) error {
	dbName := global.MongoDB_ServerConfig.MongoDB_DBName
	log := logger.GetAppLogger()

	// Context tổng 30 giây cho toàn bộ quá trình duyệt collections
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbList, err := client.ListDatabaseNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to list databases: %w", err)
	}
	if !containsName(dbList, dbName) {
		log.Infof("Database %s does not exist, will create automatically by creating collections", dbName)
	}

	db := client.Database(dbName)
	existing, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	for _, collectionName := range declaredCollectionNames() {
		if containsName(existing, collectionName) {
			continue
		}
		log.Infof("Collection %s chưa tồn tại, tạo mới.", collectionName)
		if err := db.CreateCollection(ctx, collectionName); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", collectionName, err)
		}
	}

	log.Infof("Database and collections are ensured in database: %s", dbName)
	return nil
}

// declaredCollectionNames đọc danh sách tên collection từ struct MongoDB_ColNames
func declaredCollectionNames() []string {
	v := reflect.ValueOf(global.MongoDB_ColNames)
	names := make([]string, 0, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		names = append(names, v.Field(i).String())
	}
	return names
}

func containsName(list []string, name string) bool {
	for _, item := range list {
		if item == name {
			return true
		}
	}
	return false
}

// CreateIndexes đọc tag `index` trên model và đồng bộ index của collection theo đó.
// Các loại index hỗ trợ: unique, single, text, compound:<group>, ttl:<seconds>.
// Group compound có chứa "_unique" được tạo unique; modifier: order:-1, sparse.
func CreateIndexes(ctx context.Context, collection *mongo.Collection, model interface{}) error {
	logger.GetAppLogger().Debugf("Bắt đầu xử lý index cho collection: %s", collection.Name())

	modelType := reflect.TypeOf(model)
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}

	builder, err := newIndexBuilder(ctx, collection)
	if err != nil {
		return err
	}

	for i := 0; i < modelType.NumField(); i++ {
		field := modelType.Field(i)
		tag, ok := field.Tag.Lookup("index")
		if !ok {
			continue
		}

		bsonField := strings.Split(field.Tag.Get("bson"), ",")[0]
		if bsonField == "" || bsonField == "-" {
			continue
		}

		for _, config := range parseIndexTag(tag) {
			if err := builder.applyFieldConfig(bsonField, config); err != nil {
				return err
			}
		}
	}

	if err := builder.ensureCompoundIndexes(); err != nil {
		return err
	}

	builder.cleanupStaleUniqueIndexes()
	return nil
}

// parseIndexTag tách tag index thành danh sách cấu hình: các index phân cách
// bởi ';', các option trong một index phân cách bởi ','.
// Ví dụ: index:"single:1,compound:order_client_created" hoặc index:"unique;ttl:3600"
func parseIndexTag(tag string) []map[string]string {
	parts := strings.Split(tag, ";")
	result := make([]map[string]string, 0, len(parts))

	for _, part := range parts {
		entry := map[string]string{}
		for _, subPart := range strings.Split(part, ",") {
			kv := strings.Split(subPart, ":")
			if len(kv) == 2 {
				entry[kv[0]] = kv[1]
			} else {
				entry[kv[0]] = ""
			}
		}
		result = append(result, entry)
	}

	return result
}

// parseOrder trích thứ tự sắp xếp (1 hoặc -1) từ một config index.
// Hỗ trợ cả hai cách khai báo: giá trị trực tiếp ("single:-1") và modifier ("order:-1").
func parseOrder(config map[string]string, key string) int {
	if v, ok := config[key]; ok && v == "-1" {
		return -1
	}
	if v, ok := config["order"]; ok && v == "-1" {
		return -1
	}
	return 1
}

// indexBuilder gom trạng thái một lần đồng bộ index trên một collection:
// index đang có trên server, tên index mà model định nghĩa trong lần chạy này
// (phục vụ cleanup), và các compound group đang gom field.
type indexBuilder struct {
	ctx        context.Context
	collection *mongo.Collection
	existing   map[string]bson.M
	defined    map[string]bool

	compoundKeys   map[string]bson.D
	compoundSparse map[string]bool
}

func newIndexBuilder(ctx context.Context, collection *mongo.Collection) (*indexBuilder, error) {
	existing, err := listIndexesByName(ctx, collection)
	if err != nil {
		return nil, err
	}
	return &indexBuilder{
		ctx:            ctx,
		collection:     collection,
		existing:       existing,
		defined:        map[string]bool{},
		compoundKeys:   map[string]bson.D{},
		compoundSparse: map[string]bool{},
	}, nil
}

// listIndexesByName đọc các index hiện có của collection, key theo tên index
func listIndexesByName(ctx context.Context, collection *mongo.Collection) (map[string]bson.M, error) {
	cursor, err := collection.Indexes().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("không thể lấy danh sách index: %w", err)
	}
	defer cursor.Close(ctx)

	existing := map[string]bson.M{}
	for cursor.Next(ctx) {
		var indexInfo bson.M
		if err := cursor.Decode(&indexInfo); err != nil {
			return nil, fmt.Errorf("không thể giải mã thông tin index: %w", err)
		}
		if name, ok := indexInfo["name"].(string); ok {
			existing[name] = indexInfo
		}
	}

	return existing, nil
}

// applyFieldConfig xử lý một cấu hình index trên một field bson. Index đơn
// (text, single, unique, ttl) được đồng bộ ngay; compound chỉ gom field,
// tạo sau bằng ensureCompoundIndexes.
func (b *indexBuilder) applyFieldConfig(bsonField string, config map[string]string) error {
	if _, ok := config["text"]; ok {
		name := bsonField + "_text"
		keys := bson.D{{Key: bsonField, Value: "text"}}
		if err := b.ensure(name, keys, options.Index().SetName(name)); err != nil {
			return err
		}
	}

	if _, ok := config["single"]; ok {
		name := bsonField + "_single"
		keys := bson.D{{Key: bsonField, Value: parseOrder(config, "single")}}
		if err := b.ensure(name, keys, options.Index().SetName(name)); err != nil {
			return err
		}
	}

	if _, ok := config["unique"]; ok {
		name := bsonField + "_unique"
		keys := bson.D{{Key: bsonField, Value: 1}}
		opts := options.Index().SetName(name).SetUnique(true)
		// Sparse cho phép nhiều document không có field này
		if _, hasSparse := config["sparse"]; hasSparse {
			opts = opts.SetSparse(true)
		}
		if err := b.ensure(name, keys, opts); err != nil {
			return err
		}
	}

	if ttlValue, ok := config["ttl"]; ok {
		ttl, err := strconv.Atoi(ttlValue)
		if err != nil {
			return fmt.Errorf("TTL không hợp lệ: %w", err)
		}
		name := bsonField + "_ttl"
		keys := bson.D{{Key: bsonField, Value: 1}}
		opts := options.Index().SetExpireAfterSeconds(int32(ttl)).SetName(name)
		if err := b.ensure(name, keys, opts); err != nil {
			return err
		}
	}

	if groupName, ok := config["compound"]; ok {
		b.compoundKeys[groupName] = append(b.compoundKeys[groupName], bson.E{Key: bsonField, Value: parseOrder(config, "compound")})
		b.defined[groupName] = true
		if _, hasSparse := config["sparse"]; hasSparse {
			b.compoundSparse[groupName] = true
		}
	}

	return nil
}

// ensureCompoundIndexes tạo các compound index đã gom đủ field theo thứ tự
// khai báo trên model. Group có tên chứa "_unique" được tạo unique.
func (b *indexBuilder) ensureCompoundIndexes() error {
	for groupName, keys := range b.compoundKeys {
		opts := options.Index().SetName(groupName)
		if strings.Contains(groupName, "_unique") {
			opts = opts.SetUnique(true)
		}
		if b.compoundSparse[groupName] {
			opts = opts.SetSparse(true)
		}
		if err := b.ensure(groupName, keys, opts); err != nil {
			return err
		}
	}
	return nil
}

// ensure đồng bộ một index: đã tồn tại đúng cấu hình thì bỏ qua,
// sai cấu hình thì drop rồi tạo lại
func (b *indexBuilder) ensure(indexName string, keys bson.D, opts *options.IndexOptions) error {
	b.defined[indexName] = true
	log := logger.GetAppLogger()

	if existingIndex, exists := b.existing[indexName]; exists {
		if indexMatches(existingIndex, keys, opts) {
			log.Debugf("Index %s đã tồn tại và đúng cấu hình, bỏ qua...", indexName)
			return nil
		}
		if _, err := b.collection.Indexes().DropOne(b.ctx, indexName); err != nil {
			return fmt.Errorf("không thể xóa index %s: %w", indexName, err)
		}
		log.Infof("Đã xóa index cũ: %s", indexName)
	}

	if _, err := b.collection.Indexes().CreateOne(b.ctx, mongo.IndexModel{Keys: keys, Options: opts}); err != nil {
		return fmt.Errorf("không thể tạo index %s: %w", indexName, err)
	}
	log.Infof("Đã tạo index: %s", indexName)
	return nil
}

// cleanupStaleUniqueIndexes xóa các unique index có hậu tố "_unique" mà model
// không còn định nghĩa. Không đụng index mặc định (_id_) hoặc index tạo tay
// (không theo convention đặt tên); lỗi xóa chỉ warn để không chặn index khác.
func (b *indexBuilder) cleanupStaleUniqueIndexes() {
	log := logger.GetAppLogger()

	for indexName, indexInfo := range b.existing {
		if !strings.HasSuffix(indexName, "_unique") || b.defined[indexName] {
			continue
		}
		unique, ok := indexInfo["unique"].(bool)
		if !ok || !unique {
			continue
		}

		log.Infof("Phát hiện unique index không còn được định nghĩa: %s, đang xóa...", indexName)
		if _, err := b.collection.Indexes().DropOne(b.ctx, indexName); err != nil {
			log.Warnf("Không thể xóa index %s: %v", indexName, err)
			continue
		}
		log.Infof("Đã xóa index không còn được định nghĩa: %s", indexName)
	}
}

// indexMatches so sánh một index đang có trên server với cấu hình mong muốn:
// các key và thứ tự, unique, TTL.
func indexMatches(existingIndex bson.M, keys bson.D, opts *options.IndexOptions) bool {
	existingKeys, ok := existingIndex["key"].(bson.M)
	if !ok {
		return false
	}

	for _, key := range keys {
		// Text index: server lưu key dạng {_fts: "text", _ftsx: 1} chứ không
		// phải tên field, nên so theo marker _fts (tên index đã encode field)
		if key.Value == "text" {
			if fts, ok := existingKeys["_fts"].(string); !ok || fts != "text" {
				return false
			}
			continue
		}

		existingValue, exists := existingKeys[key.Key]
		if !exists {
			return false
		}
		if wantOrder, isInt := key.Value.(int); isInt {
			if !orderEquals(existingValue, wantOrder) {
				return false
			}
		} else if existingValue != key.Value {
			return false
		}
	}

	if unique, ok := existingIndex["unique"].(bool); ok && opts.Unique != nil {
		if unique != *opts.Unique {
			return false
		}
	} else if opts.Unique != nil && *opts.Unique {
		// Index cũ không unique, index mới lại unique => mismatch
		return false
	}

	if ttl, ok := existingIndex["expireAfterSeconds"].(int32); ok && opts.ExpireAfterSeconds != nil {
		if ttl != *opts.ExpireAfterSeconds {
			return false
		}
	}

	return true
}

// orderEquals so sánh thứ tự index; server trả int32/int64/float64 tùy version
func orderEquals(existingValue interface{}, want int) bool {
	switch v := existingValue.(type) {
	case int32:
		return int(v) == want
	case int64:
		return int(v) == want
	case float64:
		return int(v) == want
	default:
		return false
	}
}
