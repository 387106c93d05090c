package category

import (
	"context"
)

// Category 商品分类
type Category struct {
	ID          string `json:"id" bson:"_id" gorm:"primaryKey;size:24"`
	Name        string `json:"name" bson:"name" gorm:"size:30;uniqueIndex;not null"`
	Description string `json:"description,omitempty" bson:"description,omitempty" gorm:"size:255"`
}

// Repository 分类仓储接口
type Repository interface {
	GetByID(ctx context.Context, id string) (*Category, error)
	// FindByName 不区分大小写
	FindByName(ctx context.Context, name string) (*Category, error)
	ListAll(ctx context.Context) ([]*Category, error)
	Create(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id string) error
}
