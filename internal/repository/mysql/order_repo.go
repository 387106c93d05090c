package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/example/storefront/internal/datamodels/order"
	"github.com/example/storefront/internal/datamodels/query"
)

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, o *order.Order) error {
	return translate(r.db.WithContext(ctx).Create(o).Error)
}

func (r *orderRepo) GetByID(ctx context.Context, id string) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	list := make([]*order.Order, 0)
	if err := r.db.WithContext(ctx).
		Where("`user` = ?", userID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) List(ctx context.Context, opts query.Options) ([]*order.Order, error) {
	list := make([]*order.Order, 0)
	q := applyOptions(r.db.WithContext(ctx).Model(&order.Order{}), opts, order.SortFields, order.Fields)
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&order.Order{}).Count(&n).Error
	return n, err
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id string, status order.Status, updatedAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": updatedAt})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return query.ErrNotFound
	}
	return nil
}

func (r *orderRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&order.Order{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return query.ErrNotFound
	}
	return nil
}
