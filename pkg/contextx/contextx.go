// Package contextx 提供跨层传递请求级数据的 context 辅助：数据库事务、trace_id、request_id、当前用户
package contextx

import (
	"context"

	"gorm.io/gorm"
)

type ctxKey int

const (
	txKey ctxKey = iota
	traceIDKey
	requestIDKey
	userIDKey
)

// WithTx 将数据库事务写入 context，仓储通过它在同一事务内执行
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// TxFrom 从 context 中取出事务；不在事务内时返回 false
func TxFrom(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	return tx, ok
}

// WithTraceID 将 trace_id 写入 context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceID 从 context 中取出 trace_id，不存在时返回空串
func TraceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	return ""
}

// WithRequestID 将 request_id 写入 context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID 从 context 中取出 request_id，不存在时返回空串
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithUserID 将已认证的用户 ID 写入 context
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID 从 context 中取出已认证的用户 ID
func UserID(ctx context.Context) (uint, bool) {
	v, ok := ctx.Value(userIDKey).(uint)
	return v, ok
}
