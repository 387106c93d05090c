package mq

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher 向 topic 交换机发布 JSON 消息，channel 不是并发安全的，发布时加锁
type Publisher struct {
	exchange string

	mu sync.Mutex
	ch *amqp.Channel
}

// NewPublisher 打开 channel 并声明交换机
func NewPublisher(conn *amqp.Connection, exchange string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := DeclareTopology(ch, exchange, ""); err != nil {
		_ = ch.Close()
		return nil, err
	}
	return &Publisher{exchange: exchange, ch: ch}, nil
}

// Publish 持久化投递
func (p *Publisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.Close()
}
