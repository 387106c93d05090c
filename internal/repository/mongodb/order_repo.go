package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/storefront/internal/datamodels/order"
	"github.com/example/storefront/internal/datamodels/query"
)

type orderRepo struct {
	col *mongo.Collection
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *mongo.Database) order.Repository {
	return &orderRepo{col: db.Collection(colOrders)}
}

func (r *orderRepo) Create(ctx context.Context, o *order.Order) error {
	_, err := r.col.InsertOne(ctx, o)
	return translate(err)
}

func (r *orderRepo) GetByID(ctx context.Context, id string) (*order.Order, error) {
	var o order.Order
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	return findAll[order.Order](ctx, r.col, bson.M{"user": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *orderRepo) List(ctx context.Context, opts query.Options) ([]*order.Order, error) {
	return findAll[order.Order](ctx, r.col, bson.M{}, findOptions(opts, order.SortFields, order.Fields))
}

func (r *orderRepo) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id string, status order.Status, updatedAt time.Time) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": status, "updatedAt": updatedAt},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return query.ErrNotFound
	}
	return nil
}

func (r *orderRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return query.ErrNotFound
	}
	return nil
}
