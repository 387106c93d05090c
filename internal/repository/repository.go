// Package repository 按配置选择持久化实现
package repository

import (
	"fmt"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/datamodels/address"
	"github.com/example/storefront/internal/datamodels/category"
	"github.com/example/storefront/internal/datamodels/order"
	"github.com/example/storefront/internal/datamodels/product"
	"github.com/example/storefront/internal/datamodels/user"
	"github.com/example/storefront/internal/repository/memory"
	"github.com/example/storefront/internal/repository/mongodb"
	"github.com/example/storefront/internal/repository/mysql"
)

// Set 一种存储驱动下的全部仓储
type Set struct {
	Users      user.Repository
	Products   product.Repository
	Categories category.Repository
	Orders     order.Repository
	Addresses  address.Repository
}

// Open 按 storage.driver 选择 mongo / mysql / memory，连接失败直接退出
func Open(cfg *config.Config) (*Set, error) {
	switch cfg.Storage.Driver {
	case "", "mongo":
		db := mongodb.Init(&cfg.Mongo)
		return &Set{
			Users:      mongodb.NewUserRepository(db),
			Products:   mongodb.NewProductRepository(db),
			Categories: mongodb.NewCategoryRepository(db),
			Orders:     mongodb.NewOrderRepository(db),
			Addresses:  mongodb.NewAddressRepository(db),
		}, nil
	case "mysql":
		db := mysql.Init(&cfg.MySQL)
		return &Set{
			Users:      mysql.NewUserRepository(db),
			Products:   mysql.NewProductRepository(db),
			Categories: mysql.NewCategoryRepository(db),
			Orders:     mysql.NewOrderRepository(db),
			Addresses:  mysql.NewAddressRepository(db),
		}, nil
	case "memory":
		return Memory(), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// Memory 进程内存储，重启即丢失
func Memory() *Set {
	return &Set{
		Users:      memory.NewUserRepository(),
		Products:   memory.NewProductRepository(),
		Categories: memory.NewCategoryRepository(),
		Orders:     memory.NewOrderRepository(),
		Addresses:  memory.NewAddressRepository(),
	}
}
