package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/example/storefront/internal/datamodels/product"
	"github.com/example/storefront/internal/datamodels/query"
)

type productRepo struct {
	col *mongo.Collection
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *mongo.Database) product.Repository {
	return &productRepo{col: db.Collection(colProducts)}
}

func productFilter(f product.Filter) bson.M {
	filter := bson.M{}
	if f.Company != "" {
		filter["company"] = f.Company
	}
	if f.Featured != nil {
		filter["featured"] = *f.Featured
	}
	if f.Name != "" {
		filter["name"] = containsInsensitive(f.Name)
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	return filter
}

func (r *productRepo) GetByID(ctx context.Context, id string) (*product.Product, error) {
	var p product.Product
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []string) ([]*product.Product, error) {
	if len(ids) == 0 {
		return []*product.Product{}, nil
	}
	return findAll[product.Product](ctx, r.col, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *productRepo) FindByName(ctx context.Context, name string) (*product.Product, error) {
	var p product.Product
	if err := r.col.FindOne(ctx, bson.M{"name": exactInsensitive(name)}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, f product.Filter, opts query.Options) ([]*product.Product, error) {
	return findAll[product.Product](ctx, r.col, productFilter(f), findOptions(opts, product.SortFields, product.Fields))
}

func (r *productRepo) Count(ctx context.Context, f product.Filter) (int64, error) {
	return r.col.CountDocuments(ctx, productFilter(f))
}

func (r *productRepo) Create(ctx context.Context, p *product.Product) error {
	_, err := r.col.InsertOne(ctx, p)
	return translate(err)
}

func (r *productRepo) Update(ctx context.Context, p *product.Product) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return query.ErrNotFound
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return query.ErrNotFound
	}
	return nil
}

func (r *productRepo) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
