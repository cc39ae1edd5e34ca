// Package metrics 提供 Prometheus helper，包含常用 counter/gauge/histogram 模板与业务指标
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal prometheus.Counter
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 数据库查询计数
	DBQueriesTotal prometheus.Counter
	// 数据库查询耗时
	DBQueryDuration prometheus.Histogram

	// Redis 操作计数
	RedisOpsTotal prometheus.Counter

	// 业务指标
	OrdersTotal      prometheus.Counter
	OrderLinesTotal  prometheus.Counter
	CheckoutFailures *prometheus.CounterVec
	CartOpsTotal     *prometheus.CounterVec
	StockDecrements  prometheus.Counter
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	// Prometheus 指标名不允许连字符
	serviceName = strings.ReplaceAll(serviceName, "-", "_")
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		DBQueriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "db_queries_total",
			Help:      "Total database queries",
		}),
		DBQueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		RedisOpsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "redis_ops_total",
			Help:      "Total Redis operations",
		}),

		OrdersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "orders_total",
			Help:      "Total orders created",
		}),
		OrderLinesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "order_lines_total",
			Help:      "Total order lines created",
		}),
		CheckoutFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "checkout_failures_total",
			Help:      "Total failed checkouts by reason",
		}, []string{"reason"}),
		CartOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "cart_ops_total",
			Help:      "Total cart operations by kind",
		}, []string{"op"}),
		StockDecrements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "stock_decrements_total",
			Help:      "Total committed stock decrements",
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueriesTotal,
		m.DBQueryDuration,
		m.RedisOpsTotal,
		m.OrdersTotal,
		m.OrderLinesTotal,
		m.CheckoutFailures,
		m.CartOpsTotal,
		m.StockDecrements,
	}

	for _, c := range collectors {
		if err := prometheus.DefaultRegisterer.Register(c); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}

	logger.Info(context.Background(), "Metrics registered successfully")
	return nil
}

// StartHTTPServer 启动 Prometheus HTTP 服务器
func StartHTTPServer(port int, path string) error {
	if path == "" {
		path = "/metrics"
	}

	http.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "Starting Prometheus HTTP server", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Error(context.Background(), "Prometheus HTTP server error", "error", err)
		}
	}()

	return nil
}
