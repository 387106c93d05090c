package order

import (
	"context"
	"time"

	"github.com/example/storefront/internal/datamodels/address"
	"github.com/example/storefront/internal/datamodels/query"
)

// Status 订单状态
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Statuses 全部合法状态，顺序即对外展示顺序
var Statuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Item 订单行，PriceAtPurchase 为下单时价格，与商品当前价格无关
type Item struct {
	Product         string  `json:"product" bson:"product"`
	Quantity        int     `json:"quantity" bson:"quantity"`
	Variant         string  `json:"variant,omitempty" bson:"variant,omitempty"`
	PriceAtPurchase float64 `json:"priceAtPurchase" bson:"priceAtPurchase"`
}

// Order 订单模型，AddressSnapshot 是下单时地址的拷贝
type Order struct {
	ID              string          `json:"id" bson:"_id" gorm:"primaryKey;size:24"`
	User            string          `json:"user" bson:"user" gorm:"size:24;index;not null"`
	Items           []Item          `json:"items" bson:"items" gorm:"serializer:json"`
	TotalPrice      float64         `json:"totalPrice" bson:"totalPrice" gorm:"not null"`
	Status          Status          `json:"status" bson:"status" gorm:"size:16;index;not null"`
	AddressSnapshot address.Details `json:"addressSnapshot" bson:"addressSnapshot" gorm:"serializer:json"`
	CreatedAt       time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// Fields 允许投影的字段
var Fields = query.Fields("id", "user", "items", "totalPrice", "status", "addressSnapshot", "createdAt", "updatedAt")

// SortFields 允许排序的字段
var SortFields = query.Fields("user", "totalPrice", "status", "createdAt", "updatedAt")

// Repository 订单仓储接口
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]*Order, error)
	List(ctx context.Context, opts query.Options) ([]*Order, error)
	Count(ctx context.Context) (int64, error)
	UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}
