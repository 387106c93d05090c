package server

import (
	"fmt"

	radix "github.com/mediocregopher/radix/v3"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/infra/mq"
	"github.com/example/storefront/internal/infra/redis"
	"github.com/example/storefront/internal/infra/storage"
	"github.com/example/storefront/internal/middleware"
	"github.com/example/storefront/internal/repository"
	"github.com/example/storefront/internal/service"
	"github.com/example/storefront/internal/validation"
)

// Deps 路由依赖的服务与中间件存储
type Deps struct {
	Config *config.Config

	Users      *service.UserService
	Products   *service.ProductService
	Categories *service.CategoryService
	Orders     *service.OrderService
	Addresses  *service.AddressService
	Uploads    *service.UploadService

	TokenCache *auth.TokenCache
	Limits     middleware.Store

	closers []func() error
}

// NewDeps 组装服务，redisClient 可为 nil
func NewDeps(cfg *config.Config, repos *repository.Set, events service.EventPublisher, store storage.Store, redisClient radix.Client) *Deps {
	uploads := service.NewUploadService(store, cfg.Upload.MaxBytes)
	return &Deps{
		Config:     cfg,
		Users:      service.NewUserService(repos.Users, &cfg.JWT),
		Products:   service.NewProductService(repos.Products, repos.Categories, validation.NewVariantRules(cfg.VariantRules), uploads),
		Categories: service.NewCategoryService(repos.Categories),
		Orders:     service.NewOrderService(repos.Orders, repos.Users, repos.Products, events),
		Addresses:  service.NewAddressService(repos.Addresses),
		Uploads:    uploads,
		TokenCache: auth.NewTokenCache(redisClient),
		Limits:     middleware.NewStore(&cfg.RateLimit, redisClient),
	}
}

// Build 初始化基础设施（存储、Redis、MQ、文件存储）并组装依赖
func Build(cfg *config.Config) (*Deps, error) {
	repos, err := repository.Open(cfg)
	if err != nil {
		return nil, err
	}
	redisClient := redis.Init(&cfg.Redis)

	var events service.EventPublisher = service.NopPublisher{}
	var closers []func() error
	if conn := mq.Init(&cfg.RabbitMQ); conn != nil {
		pub, err := mq.NewPublisher(conn, cfg.RabbitMQ.Exchange)
		if err != nil {
			return nil, fmt.Errorf("open publisher: %w", err)
		}
		events = pub
		closers = append(closers, pub.Close)
	}

	store, err := storage.New(&cfg.Upload, &cfg.S3)
	if err != nil {
		return nil, fmt.Errorf("open upload storage: %w", err)
	}

	d := NewDeps(cfg, repos, events, store, redisClient)
	d.closers = closers
	return d, nil
}

// Close 释放 MQ channel 等资源
func (d *Deps) Close() {
	for _, c := range d.closers {
		if err := c(); err != nil {
			zap.L().Warn("close resource failed", zap.Error(err))
		}
	}
}
