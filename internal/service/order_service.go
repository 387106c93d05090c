package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/datamodels/address"
	"github.com/example/storefront/internal/datamodels/order"
	"github.com/example/storefront/internal/datamodels/product"
	"github.com/example/storefront/internal/datamodels/query"
	"github.com/example/storefront/internal/datamodels/user"
	"github.com/example/storefront/internal/validation"
)

const defaultOrderPageSize = 4

var (
	errOrderFields = apperr.Validation("User, items, totalPrice and address are required")
	errItemFields  = apperr.Validation("Each item must include product, quantity, and priceAtPurchase")
	errSameStatus  = apperr.Validation("Order is already in requested status")
	errBadStatus   = apperr.Validation("Invalid status. Allowed statuses are: " + joinStatuses())
)

func joinStatuses() string {
	names := make([]string, len(order.Statuses))
	for i, s := range order.Statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// CreateOrderInput 下单请求，TotalPrice 只用于比对，最终以服务端计算为准
type CreateOrderInput struct {
	User       string
	Items      []order.Item
	TotalPrice *float64
	Address    *address.Details
}

// OrderPage 分页结果
type OrderPage struct {
	Orders      []*order.Order `json:"orders"`
	Page        int            `json:"page"`
	TotalPages  int            `json:"totalPages"`
	TotalOrders int64          `json:"totalOrders"`
	Results     int            `json:"results"`
}

// OrderService 下单、状态流转与后台订单管理
type OrderService struct {
	orders   order.Repository
	users    user.Repository
	products product.Repository
	events   EventPublisher
	now      func() time.Time
}

// NewOrderService 创建订单服务，events 为 nil 时不投递事件
func NewOrderService(orders order.Repository, users user.Repository, products product.Repository, events EventPublisher) *OrderService {
	if events == nil {
		events = NopPublisher{}
	}
	return &OrderService{orders: orders, users: users, products: products, events: events, now: time.Now}
}

// Reconcile 校验订单行并计算总价 Σ(priceAtPurchase × quantity)，遇到第一个错误即返回
func Reconcile(items []order.Item, products map[string]*product.Product) (float64, error) {
	total := decimal.Zero
	for _, item := range items {
		if item.Product == "" || item.Quantity <= 0 || item.PriceAtPurchase <= 0 {
			return 0, errItemFields
		}
		if products[item.Product] == nil {
			return 0, apperr.NotFoundf("Product with ID %s not found", item.Product)
		}
		line := decimal.NewFromFloat(item.PriceAtPurchase).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total.Round(2).InexactFloat64(), nil
}

// Create 下单：用户 -> 批量查商品 -> 核算总价 -> 校验地址 -> 落库，任何一步失败都不写入
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*order.Order, error) {
	if in.User == "" || len(in.Items) == 0 || in.TotalPrice == nil || in.Address == nil {
		return nil, errOrderFields
	}
	if err := checkID(in.User); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, in.User); err != nil {
		return nil, lookupErr("user.get", err, "User not found")
	}

	ids := make([]string, 0, len(in.Items))
	seen := make(map[string]bool, len(in.Items))
	for _, item := range in.Items {
		if item.Product != "" && !seen[item.Product] {
			seen[item.Product] = true
			ids = append(ids, item.Product)
		}
	}
	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr("product.find_by_ids", err)
	}
	byID := make(map[string]*product.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	total, err := Reconcile(in.Items, byID)
	if err != nil {
		return nil, err
	}
	if !decimal.NewFromFloat(*in.TotalPrice).Equal(decimal.NewFromFloat(total)) {
		GetMonitor().RecordTotalMismatch()
		zap.L().Warn("client provided incorrect total",
			zap.String("user", in.User),
			zap.Float64("client_total", *in.TotalPrice),
			zap.Float64("computed_total", total))
	}

	if err := validation.Address(*in.Address); err != nil {
		return nil, err
	}

	now := s.now()
	o := &order.Order{
		ID:              query.NewID(),
		User:            in.User,
		Items:           append([]order.Item(nil), in.Items...),
		TotalPrice:      total,
		Status:          order.StatusPending,
		AddressSnapshot: *in.Address,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, storeErr("order.create", err)
	}
	GetMonitor().RecordOrderCreated()

	publishBestEffort(ctx, s.events, EventOrderCreated, &OrderCreatedEvent{
		OrderID:    o.ID,
		UserID:     o.User,
		TotalPrice: o.TotalPrice,
		Address:    o.AddressSnapshot,
		CreatedAt:  o.CreatedAt,
	})
	return o, nil
}

// UpdateStatus 只要求目标状态合法且与当前不同，不限制流转方向
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*order.Order, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("order.get", err, "Order not found")
	}
	next := order.Status(status)
	if !next.Valid() {
		return nil, errBadStatus
	}
	if next == o.Status {
		return nil, errSameStatus
	}

	prev := o.Status
	now := s.now()
	if err := s.orders.UpdateStatus(ctx, id, next, now); err != nil {
		return nil, lookupErr("order.update_status", err, "Order not found")
	}
	o.Status = next
	o.UpdatedAt = now
	GetMonitor().RecordStatusTransition(prev, next)

	publishBestEffort(ctx, s.events, EventOrderStatusChanged, &OrderStatusChangedEvent{
		OrderID:   o.ID,
		From:      prev,
		To:        next,
		ChangedAt: now,
	})
	return o, nil
}

// List 后台订单分页，总数与页数独立于当前页计算
func (s *OrderService) List(ctx context.Context, opts query.Options) (*OrderPage, error) {
	opts = opts.Normalize(defaultOrderPageSize)
	orders, err := s.orders.List(ctx, opts)
	if err != nil {
		return nil, storeErr("order.list", err)
	}
	total, err := s.orders.Count(ctx)
	if err != nil {
		return nil, storeErr("order.count", err)
	}
	return &OrderPage{
		Orders:      orders,
		Page:        opts.Page,
		TotalPages:  query.TotalPages(total, opts.Limit),
		TotalOrders: total,
		Results:     len(orders),
	}, nil
}

func (s *OrderService) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		return lookupErr("order.delete", err, "Order not found")
	}
	return nil
}

// ListByUser 用户的全部订单，按创建时间倒序
func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	if err := checkID(userID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, lookupErr("user.get", err, "User not found")
	}
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeErr("order.list_by_user", err)
	}
	if len(orders) == 0 {
		return nil, apperr.NotFound("No orders found for this user")
	}
	return orders, nil
}
