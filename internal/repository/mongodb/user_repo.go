package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/example/storefront/internal/datamodels/query"
	"github.com/example/storefront/internal/datamodels/user"
)

type userRepo struct {
	col *mongo.Collection
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *mongo.Database) user.Repository {
	return &userRepo{col: db.Collection(colUsers)}
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	var u user.User
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepo) List(ctx context.Context, opts query.Options) ([]*user.User, error) {
	fo := findOptions(opts, user.Fields, user.Fields)
	if len(opts.SelectFields(user.Fields)) == 0 {
		fo.SetProjection(bson.M{"password": 0})
	}
	return findAll[user.User](ctx, r.col, bson.M{}, fo)
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

func (r *userRepo) Create(ctx context.Context, u *user.User) error {
	_, err := r.col.InsertOne(ctx, u)
	return translate(err)
}

func (r *userRepo) Update(ctx context.Context, u *user.User) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return query.ErrNotFound
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return query.ErrNotFound
	}
	return nil
}
