package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/logger"
	"github.com/example/storefront/internal/repository"
	"github.com/example/storefront/internal/service"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径，默认查找 ./config.yaml")
	interval := flag.Duration("interval", 0, "大于 0 时按间隔持续执行，否则执行一次后退出")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if _, err := logger.Init(&cfg.Log); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zap.L().Sync()

	repos, err := repository.Open(cfg)
	if err != nil {
		zap.L().Fatal("open storage failed", zap.Error(err))
	}
	svc := service.NewAddressService(repos.Addresses)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 立即执行一次
	run(ctx, svc)
	if *interval <= 0 {
		return
	}

	zap.L().Info("address dedup scheduled", zap.Duration("interval", *interval))
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run(ctx, svc)
		}
	}
}

func run(ctx context.Context, svc *service.AddressService) {
	n, err := svc.RemoveDuplicates(ctx)
	if err != nil {
		zap.L().Error("remove duplicate addresses failed", zap.Error(err))
		return
	}
	if n == 0 {
		zap.L().Info("no duplicate addresses found")
		return
	}
	zap.L().Info("duplicate addresses removed", zap.Int64("deleted", n))
}
