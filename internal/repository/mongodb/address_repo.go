package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/storefront/internal/datamodels/address"
)

type addressRepo struct {
	col *mongo.Collection
}

// NewAddressRepository 创建地址仓储
func NewAddressRepository(db *mongo.Database) address.Repository {
	return &addressRepo{col: db.Collection(colAddresses)}
}

// keyFilter 去重键的全部字段都参与匹配，空字符串与空字符串相等
func keyFilter(k address.Key) bson.M {
	return bson.M{
		"user":       k.User,
		"fullName":   k.FullName,
		"email":      k.Email,
		"phone":      k.Phone,
		"street":     k.Street,
		"city":       k.City,
		"state":      k.State,
		"province":   k.Province,
		"postalCode": k.PostalCode,
		"country":    k.Country,
	}
}

func (r *addressRepo) FindMatch(ctx context.Context, key address.Key) (*address.Address, error) {
	var a address.Address
	if err := r.col.FindOne(ctx, keyFilter(key)).Decode(&a); err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *addressRepo) ListAll(ctx context.Context) ([]*address.Address, error) {
	return findAll[address.Address](ctx, r.col, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
}

func (r *addressRepo) Create(ctx context.Context, a *address.Address) error {
	_, err := r.col.InsertOne(ctx, a)
	return translate(err)
}

func (r *addressRepo) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
