package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/infra/mq"
	"github.com/example/storefront/internal/logger"
	"github.com/example/storefront/internal/repository"
	"github.com/example/storefront/internal/service"
)

const prefetch = 10

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

	repos, err := repository.Open(cfg)
	if err != nil {
		zap.L().Fatal("open storage failed", zap.Error(err))
	}
	conn := mq.Init(&cfg.RabbitMQ)
	if conn == nil {
		zap.L().Fatal("rabbitmq.url is required for the order events worker")
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		zap.L().Fatal("failed to open channel", zap.Error(err))
	}
	defer ch.Close()

	if err := mq.DeclareTopology(ch, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.Queue, service.EventOrderCreated); err != nil {
		zap.L().Fatal("failed to declare topology", zap.Error(err))
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		zap.L().Fatal("failed to set qos", zap.Error(err))
	}

	// 手动确认
	msgs, err := ch.Consume(cfg.RabbitMQ.Queue, "order-events-worker", false, false, false, false, nil)
	if err != nil {
		zap.L().Fatal("failed to consume", zap.Error(err))
	}

	consumer := service.NewAddressBookConsumer(service.NewAddressService(repos.Addresses))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zap.L().Info("order events worker started", zap.String("queue", cfg.RabbitMQ.Queue))
	for {
		select {
		case <-ctx.Done():
			zap.L().Info("order events worker stopping")
			return
		case d, ok := <-msgs:
			if !ok {
				zap.L().Error("delivery channel closed")
				return
			}
			handle(ctx, consumer, d)
		}
	}
}

func handle(ctx context.Context, consumer *service.AddressBookConsumer, d amqp.Delivery) {
	requeue, err := consumer.Handle(ctx, d.Body)
	if err != nil {
		zap.L().Warn("handle order event failed",
			zap.String("routing_key", d.RoutingKey),
			zap.Bool("requeue", requeue),
			zap.Error(err))
		// 已经重投过一次的消息不再入队
		if err := d.Nack(false, requeue && !d.Redelivered); err != nil {
			zap.L().Error("failed to nack message", zap.Error(err))
		}
		return
	}
	if err := d.Ack(false); err != nil {
		zap.L().Error("failed to ack message", zap.Error(err))
	}
}
