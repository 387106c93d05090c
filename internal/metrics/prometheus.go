package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal HTTP 请求数
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"server", "method", "route", "status"},
	)

	// RequestDuration HTTP 请求耗时
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"server", "method", "route"},
	)

	OrdersCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of orders persisted",
		},
	)

	// OrderTotalMismatch 客户端提交的总价与服务端计算结果不一致
	OrderTotalMismatch = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "order_total_mismatch_total",
			Help: "Orders whose client supplied total differed from the computed total",
		},
	)

	OrderStatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_status_transitions_total",
			Help: "Order status transitions",
		},
		[]string{"from", "to"},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"group"},
	)

	RepositoryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repository_errors_total",
			Help: "Unexpected storage errors by operation",
		},
		[]string{"op"},
	)

	// EventPublishErrors 订单事件投递失败（不影响写入）
	EventPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_event_publish_errors_total",
			Help: "Order events that could not be published",
		},
		[]string{"event"},
	)

	WorkerMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_events_worker_messages_total",
			Help: "Order event messages handled by the worker",
		},
		[]string{"result"},
	)
)
