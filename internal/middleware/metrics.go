package middleware

import (
	"strconv"
	"time"

	"github.com/kataras/iris/v12"

	"github.com/example/storefront/internal/metrics"
)

// Metrics 记录请求数与耗时，route 取路由模板避免 ID 造成标签爆炸
func Metrics(server string) iris.Handler {
	return func(ctx iris.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.GetCurrentRoute()
		path := "unmatched"
		if route != nil {
			path = route.Path()
		}
		method := ctx.Method()
		metrics.RequestsTotal.WithLabelValues(server, method, path, strconv.Itoa(ctx.GetStatusCode())).Inc()
		metrics.RequestDuration.WithLabelValues(server, method, path).Observe(time.Since(start).Seconds())
	}
}
