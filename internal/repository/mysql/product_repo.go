package mysql

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/example/storefront/internal/datamodels/product"
	"github.com/example/storefront/internal/datamodels/query"
)

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) product.Repository {
	return &productRepo{db: db}
}

func (r *productRepo) filtered(ctx context.Context, f product.Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&product.Product{})
	if f.Company != "" {
		q = q.Where("company = ?", f.Company)
	}
	if f.Featured != nil {
		q = q.Where("featured = ?", *f.Featured)
	}
	if f.Name != "" {
		q = q.Where("LOWER(name) LIKE ?", containsPattern(f.Name))
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	return q
}

func (r *productRepo) GetByID(ctx context.Context, id string) (*product.Product, error) {
	var p product.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []string) ([]*product.Product, error) {
	list := make([]*product.Product, 0)
	if len(ids) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *productRepo) FindByName(ctx context.Context, name string) (*product.Product, error) {
	var p product.Product
	if err := r.db.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(name)).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, f product.Filter, opts query.Options) ([]*product.Product, error) {
	list := make([]*product.Product, 0)
	q := applyOptions(r.filtered(ctx, f), opts, product.SortFields, product.Fields)
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *productRepo) Count(ctx context.Context, f product.Filter) (int64, error) {
	var n int64
	err := r.filtered(ctx, f).Count(&n).Error
	return n, err
}

func (r *productRepo) Create(ctx context.Context, p *product.Product) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *productRepo) Update(ctx context.Context, p *product.Product) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&product.Product{}).Where("id = ?", p.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Save(p).Error
	}))
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&product.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return query.ErrNotFound
	}
	return nil
}

func (r *productRepo) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&product.Product{})
	return res.RowsAffected, res.Error
}
