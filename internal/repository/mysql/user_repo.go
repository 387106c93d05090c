package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/storefront/internal/datamodels/query"
	"github.com/example/storefront/internal/datamodels/user"
)

type userRepo struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	var u user.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepo) List(ctx context.Context, opts query.Options) ([]*user.User, error) {
	list := make([]*user.User, 0)
	q := applyOptions(r.db.WithContext(ctx).Model(&user.User{}), opts, user.Fields, user.Fields)
	if len(opts.SelectFields(user.Fields)) == 0 {
		q = q.Omit("password")
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&user.User{}).Count(&n).Error
	return n, err
}

func (r *userRepo) Create(ctx context.Context, u *user.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *userRepo) Update(ctx context.Context, u *user.User) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&user.User{}).Where("id = ?", u.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Save(u).Error
	}))
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&user.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return query.ErrNotFound
	}
	return nil
}
