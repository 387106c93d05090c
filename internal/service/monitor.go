package service

import (
	"sync"
	"time"

	"github.com/example/storefront/internal/datamodels/order"
	"github.com/example/storefront/internal/metrics"
)

// Monitor 汇总业务指标：计数写入 prometheus，同时保留最近一次错误时间供健康检查展示
type Monitor struct {
	mu sync.RWMutex

	dbErrors     int64
	mqErrors     int64
	ordersTotal  int64
	workerOK     int64
	workerFailed int64

	lastDBError time.Time
	lastMQError time.Time
	lastOrder   time.Time
}

var globalMonitor = &Monitor{}

// GetMonitor 获取全局监控实例
func GetMonitor() *Monitor {
	return globalMonitor
}

// RecordDBError 记录存储错误，op 形如 "order.create"
func (m *Monitor) RecordDBError(op string) {
	metrics.RepositoryErrors.WithLabelValues(op).Inc()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dbErrors++
	m.lastDBError = time.Now()
}

// RecordMQError 记录事件投递失败
func (m *Monitor) RecordMQError(event string) {
	metrics.EventPublishErrors.WithLabelValues(event).Inc()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mqErrors++
	m.lastMQError = time.Now()
}

func (m *Monitor) RecordOrderCreated() {
	metrics.OrdersCreated.Inc()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ordersTotal++
	m.lastOrder = time.Now()
}

func (m *Monitor) RecordTotalMismatch() {
	metrics.OrderTotalMismatch.Inc()
}

func (m *Monitor) RecordStatusTransition(from, to order.Status) {
	metrics.OrderStatusTransitions.WithLabelValues(string(from), string(to)).Inc()
}

// RecordWorkerProcessed 记录 worker 处理结果
func (m *Monitor) RecordWorkerProcessed(ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	metrics.WorkerMessages.WithLabelValues(result).Inc()
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.workerOK++
	} else {
		m.workerFailed++
	}
}

// GetStats 获取统计信息
func (m *Monitor) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"errors": map[string]interface{}{
			"db": m.dbErrors,
			"mq": m.mqErrors,
		},
		"orders": map[string]interface{}{
			"created": m.ordersTotal,
		},
		"worker": map[string]interface{}{
			"processed": m.workerOK,
			"failed":    m.workerFailed,
		},
		"last_events": map[string]interface{}{
			"db_error": m.lastDBError,
			"mq_error": m.lastMQError,
			"order":    m.lastOrder,
		},
	}
}

// Reset 重置统计（用于测试）
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dbErrors, m.mqErrors, m.ordersTotal = 0, 0, 0
	m.workerOK, m.workerFailed = 0, 0
	m.lastDBError, m.lastMQError, m.lastOrder = time.Time{}, time.Time{}, time.Time{}
}
