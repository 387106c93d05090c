package user

import (
	"context"
	"time"

	"github.com/example/storefront/internal/datamodels/query"
)

// Role 用户角色
type Role string

const (
	RoleCustomer  Role = "customer"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

// User 用户模型，Password 为 bcrypt 哈希，任何输出都不包含
type User struct {
	ID         string    `json:"id" bson:"_id" gorm:"primaryKey;size:24"`
	Name       string    `json:"name" bson:"name" gorm:"size:30;not null"`
	Email      string    `json:"email" bson:"email" gorm:"size:64;uniqueIndex;not null"`
	Password   string    `json:"-" bson:"password" gorm:"size:255;not null"`
	Role       Role      `json:"role" bson:"role" gorm:"size:16;not null"`
	Registered bool      `json:"registered" bson:"registered"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Fields 允许排序和投影的字段，password 不在其中
var Fields = query.Fields("id", "name", "email", "role", "registered", "createdAt", "updatedAt")

// Repository 用户仓储接口
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, opts query.Options) ([]*User, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
}
