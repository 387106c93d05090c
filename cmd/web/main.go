package main

import (
	"flag"
	"log"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/logger"
	"github.com/example/storefront/internal/server"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径，默认查找 ./config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if _, err := logger.Init(&cfg.Log); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zap.L().Sync()

	deps, err := server.Build(cfg)
	if err != nil {
		zap.L().Fatal("build dependencies failed", zap.Error(err))
	}
	defer deps.Close()

	app := iris.New()
	server.RegisterRoutes(app, deps)

	addr := cfg.Server.Addr()
	zap.L().Info("web server listening", zap.String("addr", addr), zap.String("storage", cfg.Storage.Driver))
	if err := app.Run(iris.Addr(addr)); err != nil {
		zap.L().Fatal("failed to run web server", zap.Error(err))
	}
}
