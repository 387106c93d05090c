package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/storefront/internal/datamodels/category"
	"github.com/example/storefront/internal/datamodels/query"
)

type categoryRepo struct {
	col *mongo.Collection
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *mongo.Database) category.Repository {
	return &categoryRepo{col: db.Collection(colCategories)}
}

func (r *categoryRepo) GetByID(ctx context.Context, id string) (*category.Category, error) {
	var c category.Category
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *categoryRepo) FindByName(ctx context.Context, name string) (*category.Category, error) {
	var c category.Category
	if err := r.col.FindOne(ctx, bson.M{"name": exactInsensitive(name)}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *categoryRepo) ListAll(ctx context.Context) ([]*category.Category, error) {
	return findAll[category.Category](ctx, r.col, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *categoryRepo) Create(ctx context.Context, c *category.Category) error {
	_, err := r.col.InsertOne(ctx, c)
	return translate(err)
}

func (r *categoryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return query.ErrNotFound
	}
	return nil
}
