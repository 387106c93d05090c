package address

import (
	"context"
	"time"
)

// Details 收货/账单地址字段，订单快照直接按值嵌入
type Details struct {
	FullName   string `json:"fullName" bson:"fullName" gorm:"size:50"`
	Email      string `json:"email" bson:"email" gorm:"size:64"`
	Phone      string `json:"phone" bson:"phone" gorm:"size:15"`
	Street     string `json:"street" bson:"street" gorm:"size:100"`
	City       string `json:"city" bson:"city" gorm:"size:50"`
	State      string `json:"state,omitempty" bson:"state" gorm:"size:50"`
	Province   string `json:"province,omitempty" bson:"province" gorm:"size:50"`
	PostalCode string `json:"postalCode" bson:"postalCode" gorm:"size:10"`
	Country    string `json:"country" bson:"country" gorm:"size:50"`
}

// Address 地址簿记录，可选关联用户
type Address struct {
	ID        string    `json:"id" bson:"_id" gorm:"primaryKey;size:24"`
	User      string    `json:"user,omitempty" bson:"user" gorm:"size:24;index"`
	Details   `bson:",inline" gorm:"embedded"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Key 去重键：除 ID 与时间戳外的全部字段
type Key struct {
	User string
	Details
}

func (a *Address) Key() Key {
	return Key{User: a.User, Details: a.Details}
}

// Repository 地址仓储接口
type Repository interface {
	// FindMatch 查找字段完全一致的地址
	FindMatch(ctx context.Context, key Key) (*Address, error)
	ListAll(ctx context.Context) ([]*Address, error)
	Create(ctx context.Context, a *Address) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}
