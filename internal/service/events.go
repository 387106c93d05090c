package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/datamodels/address"
	"github.com/example/storefront/internal/datamodels/order"
)

// 订单事件路由键
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// EventPublisher 订单事件出口，mq.Publisher 实现了该接口
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// NopPublisher 未配置 MQ 时使用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

// OrderCreatedEvent 下单成功后投递，worker 据此把地址写入地址簿
type OrderCreatedEvent struct {
	OrderID    string          `json:"orderId"`
	UserID     string          `json:"userId"`
	TotalPrice float64         `json:"totalPrice"`
	Address    address.Details `json:"address"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type OrderStatusChangedEvent struct {
	OrderID   string       `json:"orderId"`
	From      order.Status `json:"from"`
	To        order.Status `json:"to"`
	ChangedAt time.Time    `json:"changedAt"`
}

// publishBestEffort 投递失败只记录，不影响已完成的写入
func publishBestEffort(ctx context.Context, p EventPublisher, key string, payload any) {
	if err := p.Publish(ctx, key, payload); err != nil {
		GetMonitor().RecordMQError(key)
		zap.L().Warn("publish order event failed", zap.String("event", key), zap.Error(err))
	}
}

// AddressBookConsumer 消费 order.created，把地址快照写入地址簿
type AddressBookConsumer struct {
	addresses *AddressService
}

func NewAddressBookConsumer(addresses *AddressService) *AddressBookConsumer {
	return &AddressBookConsumer{addresses: addresses}
}

// Handle 处理一条消息；出错时 requeue 表示是否值得重新投递
// 消息格式错误或地址不合法重试也不会成功，直接丢弃
func (c *AddressBookConsumer) Handle(ctx context.Context, body []byte) (requeue bool, err error) {
	var ev OrderCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		GetMonitor().RecordWorkerProcessed(false)
		return false, fmt.Errorf("decode %s: %w", EventOrderCreated, err)
	}

	a, created, err := c.addresses.Save(ctx, ev.UserID, ev.Address)
	if err != nil {
		GetMonitor().RecordWorkerProcessed(false)
		return apperr.KindOf(err) == apperr.KindUnknown, fmt.Errorf("order %s: %w", ev.OrderID, err)
	}
	GetMonitor().RecordWorkerProcessed(true)
	zap.L().Info("address book updated",
		zap.String("order", ev.OrderID),
		zap.String("address", a.ID),
		zap.Bool("created", created))
	return false, nil
}
