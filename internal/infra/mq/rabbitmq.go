package mq

import (
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/config"
)

var (
	conn *amqp.Connection
	once sync.Once
)

// Init 初始化 RabbitMQ 连接，未配置 URL 时返回 nil（订单事件不投递）
func Init(cfg *config.RabbitMQConfig) *amqp.Connection {
	once.Do(func() {
		if cfg.URL == "" {
			zap.L().Info("rabbitmq disabled")
			return
		}
		c, err := amqp.Dial(cfg.URL)
		if err != nil {
			zap.L().Fatal("failed to connect rabbitmq", zap.Error(err))
		}
		conn = c
	})
	return conn
}

// Conn 获取 MQ 连接
func Conn() *amqp.Connection {
	return conn
}

// DeclareTopology 声明 topic 交换机，并把队列绑定到指定路由键
func DeclareTopology(ch *amqp.Channel, exchange, queue string, keys ...string) error {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return err
	}
	if queue == "" {
		return nil
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return err
	}
	for _, key := range keys {
		if err := ch.QueueBind(queue, key, exchange, false, nil); err != nil {
			return err
		}
	}
	return nil
}
