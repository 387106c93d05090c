package mysql

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/example/storefront/internal/datamodels/category"
	"github.com/example/storefront/internal/datamodels/query"
)

type categoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *gorm.DB) category.Repository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) GetByID(ctx context.Context, id string) (*category.Category, error) {
	var c category.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *categoryRepo) FindByName(ctx context.Context, name string) (*category.Category, error) {
	var c category.Category
	if err := r.db.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(name)).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *categoryRepo) ListAll(ctx context.Context) ([]*category.Category, error) {
	list := make([]*category.Category, 0)
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *categoryRepo) Create(ctx context.Context, c *category.Category) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *categoryRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&category.Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return query.ErrNotFound
	}
	return nil
}
