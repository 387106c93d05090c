package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/storefront/internal/datamodels/address"
)

type addressRepo struct {
	db *gorm.DB
}

// NewAddressRepository 创建地址仓储
func NewAddressRepository(db *gorm.DB) address.Repository {
	return &addressRepo{db: db}
}

// keyConditions 用 map 条件，零值字段也参与匹配
func keyConditions(k address.Key) map[string]any {
	return map[string]any{
		"user":        k.User,
		"full_name":   k.FullName,
		"email":       k.Email,
		"phone":       k.Phone,
		"street":      k.Street,
		"city":        k.City,
		"state":       k.State,
		"province":    k.Province,
		"postal_code": k.PostalCode,
		"country":     k.Country,
	}
}

func (r *addressRepo) FindMatch(ctx context.Context, key address.Key) (*address.Address, error) {
	var a address.Address
	if err := r.db.WithContext(ctx).Where(keyConditions(key)).First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *addressRepo) ListAll(ctx context.Context) ([]*address.Address, error) {
	list := make([]*address.Address, 0)
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *addressRepo) Create(ctx context.Context, a *address.Address) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

func (r *addressRepo) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&address.Address{})
	return res.RowsAffected, res.Error
}
