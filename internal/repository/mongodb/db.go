package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/datamodels/query"
)

const (
	colProducts   = "products"
	colCategories = "categories"
	colUsers      = "users"
	colOrders     = "orders"
	colAddresses  = "addresses"
)

var (
	db   *mongo.Database
	once sync.Once
)

// Init 连接 MongoDB 并确保索引存在
func Init(cfg *config.MongoConfig) *mongo.Database {
	once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
		if err != nil {
			zap.L().Fatal("failed to connect mongodb", zap.Error(err))
		}
		if err = client.Ping(ctx, nil); err != nil {
			zap.L().Fatal("failed to ping mongodb", zap.String("uri", cfg.URI), zap.Error(err))
		}
		db = client.Database(cfg.Database)

		if err = EnsureIndexes(ctx, db); err != nil {
			zap.L().Fatal("create indexes failed", zap.Error(err))
		}
	})
	return db
}

// EnsureIndexes 用户邮箱、分类名唯一；商品名按不区分大小写的排序规则唯一
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	caseInsensitive := &options.Collation{Locale: "en", Strength: 2}

	specs := []struct {
		col   string
		model mongo.IndexModel
	}{
		{colUsers, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{colCategories, mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetCollation(caseInsensitive)}},
		{colProducts, mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetCollation(caseInsensitive)}},
		{colProducts, mongo.IndexModel{Keys: bson.D{{Key: "category", Value: 1}}}},
		{colOrders, mongo.IndexModel{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}}},
		{colAddresses, mongo.IndexModel{Keys: bson.D{{Key: "user", Value: 1}}}},
	}
	for _, s := range specs {
		if _, err := db.Collection(s.col).Indexes().CreateOne(ctx, s.model); err != nil {
			return fmt.Errorf("index on %s: %w", s.col, err)
		}
	}
	return nil
}

// translate 驱动错误转换为仓储层错误
func translate(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return query.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return query.ErrDuplicate
	}
	return err
}

func fieldName(f string) string {
	if f == "id" {
		return "_id"
	}
	return f
}

// findOptions 把 query.Options 翻译成排序、投影与分页
func findOptions(opts query.Options, sortable, selectable map[string]bool) *options.FindOptions {
	fo := options.Find()

	sort := bson.D{}
	for _, f := range opts.SortFields(sortable) {
		dir := 1
		if f.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: fieldName(f.Field), Value: dir})
	}
	if len(sort) == 0 {
		sort = bson.D{{Key: "createdAt", Value: -1}}
	}
	fo.SetSort(sort)

	if fields := opts.SelectFields(selectable); len(fields) > 0 {
		proj := bson.D{}
		for _, f := range fields {
			proj = append(proj, bson.E{Key: fieldName(f), Value: 1})
		}
		fo.SetProjection(proj)
	}

	if opts.Limit > 0 {
		fo.SetSkip(int64(opts.Skip())).SetLimit(int64(opts.Limit))
	}
	return fo
}

// exactInsensitive 不区分大小写的整串匹配
func exactInsensitive(s string) bson.M {
	return bson.M{"$regex": "^" + regexp.QuoteMeta(s) + "$", "$options": "i"}
}

func containsInsensitive(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

// findAll 执行查询并解码全部结果
func findAll[T any](ctx context.Context, col *mongo.Collection, filter any, opts ...*options.FindOptions) ([]*T, error) {
	cur, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	list := make([]*T, 0)
	for cur.Next(ctx) {
		item := new(T)
		if err := cur.Decode(item); err != nil {
			return nil, err
		}
		list = append(list, item)
	}
	return list, cur.Err()
}
