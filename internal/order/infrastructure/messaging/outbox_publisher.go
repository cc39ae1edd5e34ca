// Package messaging 以 Outbox 模式发布订单事件
//
// 事件先随业务事务写入 order_outbox_messages 表，
// 再由 OutboxRelay 异步投递到 Kafka，保证业务写入与事件不丢不错发
package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wyfcoding/ecommerce/internal/order/domain"
	"github.com/wyfcoding/ecommerce/pkg/contextx"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/mq"
)

const (
	statusPending = "pending"
	statusSent    = "sent"
)

// OutboxMessage Outbox 消息记录
type OutboxMessage struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	EventType string    `gorm:"type:varchar(100);index"`
	Payload   string    `gorm:"type:text"`
	Status    string    `gorm:"type:varchar(20);index;default:'pending'"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// TableName 指定表名
func (OutboxMessage) TableName() string {
	return "order_outbox_messages"
}

// OutboxEventPublisher 实现 domain.EventPublisher，写入与业务同一事务
type OutboxEventPublisher struct {
	db *gorm.DB
}

// NewOutboxEventPublisher 创建 OutboxEventPublisher 实例
func NewOutboxEventPublisher(db *gorm.DB) *OutboxEventPublisher {
	return &OutboxEventPublisher{db: db}
}

func (p *OutboxEventPublisher) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.TxFrom(ctx); ok {
		return tx
	}
	return p.db.WithContext(ctx)
}

// PublishOrderCreated 发布订单创建事件
func (p *OutboxEventPublisher) PublishOrderCreated(ctx context.Context, event domain.OrderCreatedEvent) error {
	return p.publishEvent(ctx, "OrderCreatedEvent", event)
}

// PublishOrderUpdated 发布订单修改事件
func (p *OutboxEventPublisher) PublishOrderUpdated(ctx context.Context, event domain.OrderUpdatedEvent) error {
	return p.publishEvent(ctx, "OrderUpdatedEvent", event)
}

// PublishOrderDeleted 发布订单删除事件
func (p *OutboxEventPublisher) PublishOrderDeleted(ctx context.Context, event domain.OrderDeletedEvent) error {
	return p.publishEvent(ctx, "OrderDeletedEvent", event)
}

func (p *OutboxEventPublisher) publishEvent(ctx context.Context, eventType string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	message := OutboxMessage{
		ID:        uuid.NewString(),
		EventType: eventType,
		Payload:   string(payload),
		Status:    statusPending,
	}
	return p.getDB(ctx).Create(&message).Error
}

// OutboxRelay 轮询 Outbox 表并投递到 Kafka
type OutboxRelay struct {
	db        *gorm.DB
	producer  *mq.KafkaProducer
	topic     string
	batchSize int
	interval  time.Duration
}

// NewOutboxRelay 创建 OutboxRelay 实例
func NewOutboxRelay(db *gorm.DB, producer *mq.KafkaProducer, topic string) *OutboxRelay {
	return &OutboxRelay{
		db:        db,
		producer:  producer,
		topic:     topic,
		batchSize: 100,
		interval:  time.Second,
	}
}

// Run 持续轮询直到上下文取消
func (r *OutboxRelay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.processBatch(ctx); err != nil {
				logger.Error(ctx, "outbox relay batch failed", "error", err)
			}
		}
	}
}

func (r *OutboxRelay) processBatch(ctx context.Context) error {
	var messages []OutboxMessage
	err := r.db.WithContext(ctx).
		Where("status = ?", statusPending).
		Order("created_at").
		Limit(r.batchSize).
		Find(&messages).Error
	if err != nil {
		return err
	}

	for _, message := range messages {
		if err := r.producer.SendRaw(ctx, r.topic, message.EventType, []byte(message.Payload)); err != nil {
			// 投递失败保持 pending，下一轮重试
			logger.Warn(ctx, "outbox message delivery failed", "message_id", message.ID, "error", err)
			continue
		}
		if err := r.db.WithContext(ctx).Model(&OutboxMessage{}).
			Where("id = ?", message.ID).
			Update("status", statusSent).Error; err != nil {
			return err
		}
	}
	return nil
}

// CleanupSent 清理已投递的历史消息
func (r *OutboxRelay) CleanupSent(ctx context.Context, before time.Time) error {
	return r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", statusSent, before).
		Delete(&OutboxMessage{}).Error
}
