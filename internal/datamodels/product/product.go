package product

import (
	"context"
	"time"

	"github.com/example/storefront/internal/datamodels/query"
)

// Companies 允许的品牌
var Companies = []string{
	"apple", "samsung", "dell", "mi", "levis", "coca-cola", "nike", "puma",
	"adidas", "hm", "tropicana", "redbull", "nestle", "lipton", "zara",
}

// DefaultRating 未填写评分时的默认值
const DefaultRating = 4.0

// Variant 商品规格（尺码/容量），可单独设置库存与价格
type Variant struct {
	Size  string   `json:"size" bson:"size"`
	Stock int64    `json:"stock" bson:"stock"`
	Price *float64 `json:"price,omitempty" bson:"price,omitempty"`
}

// Product 商品模型
type Product struct {
	ID          string    `json:"id" bson:"_id" gorm:"primaryKey;size:24"`
	Name        string    `json:"name" bson:"name" gorm:"size:30;uniqueIndex;not null"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" gorm:"size:1000"`
	Image       string    `json:"image,omitempty" bson:"image,omitempty" gorm:"size:255"`
	Price       float64   `json:"price" bson:"price" gorm:"not null"`
	Featured    bool      `json:"featured" bson:"featured" gorm:"index"`
	Rating      float64   `json:"rating" bson:"rating"`
	Company     string    `json:"company" bson:"company" gorm:"size:32;index"`
	Category    string    `json:"category" bson:"category" gorm:"size:24;index;not null"`
	Stock       int64     `json:"stock" bson:"stock"`
	Variants    []Variant `json:"variants,omitempty" bson:"variants,omitempty" gorm:"serializer:json"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// Fields 允许排序和投影的字段
var Fields = query.Fields("id", "name", "description", "image", "price", "featured", "rating",
	"company", "category", "stock", "variants", "createdAt")

// SortFields 嵌套字段不参与排序
var SortFields = query.Fields("name", "price", "featured", "rating", "company", "stock", "createdAt")

// Filter 列表筛选条件
type Filter struct {
	Company  string
	Featured *bool
	Name     string // 名称模糊匹配，不区分大小写
	Category string // 分类 ID
}

// Repository 商品仓储接口
type Repository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]*Product, error)
	// FindByName 名称精确匹配，不区分大小写
	FindByName(ctx context.Context, name string) (*Product, error)
	List(ctx context.Context, f Filter, opts query.Options) ([]*Product, error)
	Count(ctx context.Context, f Filter) (int64, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
}
