// internal/service/order/infrastructure/adapter/notification_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"almacen/internal/service/order/domain"
)

// NotificationKafkaAdapter 实现了 port.NotificationProducer 接口。
type NotificationKafkaAdapter struct {
	writer *kafka.Writer
}

func NewNotificationKafkaAdapter(writer *kafka.Writer) *NotificationKafkaAdapter {
	return &NotificationKafkaAdapter{writer: writer}
}

// notificationEvent 是发往通知主题的事件体。
type notificationEvent struct {
	OrderID       string  `json:"pedido_id"`
	CustomerID    string  `json:"cliente_id,omitempty"`
	Status        string  `json:"estado"`
	ComputedPrice float64 `json:"precio_calculado,omitempty"`
	Reason        string  `json:"motivo,omitempty"`
}

// SendOrderPlaced 发送下单成功通知。
func (a *NotificationKafkaAdapter) SendOrderPlaced(ctx context.Context, order *domain.Order) error {
	return a.produce(ctx, order.ID, notificationEvent{
		OrderID:       order.ID,
		CustomerID:    order.CustomerID,
		Status:        "placed",
		ComputedPrice: order.ComputedPrice,
	})
}

// SendOrderAborted 发送下单失败通知，原因原样透传。
func (a *NotificationKafkaAdapter) SendOrderAborted(ctx context.Context, orderID, reason string) error {
	return a.produce(ctx, orderID, notificationEvent{
		OrderID: orderID,
		Status:  "aborted",
		Reason:  reason,
	})
}

func (a *NotificationKafkaAdapter) produce(ctx context.Context, key string, event notificationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}

	msg := kafka.Message{Key: []byte(key), Value: payload}
	// 把 trace 上下文注入消息头，消费端可以接上同一条链路
	otel.GetTextMapPropagator().Inject(ctx, kafkaHeaderCarrier{msg: &msg})

	return a.writer.WriteMessages(ctx, msg)
}

// Close 关闭底层的 Kafka writer。
func (a *NotificationKafkaAdapter) Close() error {
	return a.writer.Close()
}

// kafkaHeaderCarrier 让 otel propagator 直接写 kafka 消息头。
type kafkaHeaderCarrier struct {
	msg *kafka.Message
}

func (c kafkaHeaderCarrier) Get(key string) string {
	for _, h := range c.msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c kafkaHeaderCarrier) Set(key, value string) {
	c.msg.Headers = append(c.msg.Headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (c kafkaHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c.msg.Headers))
	for _, h := range c.msg.Headers {
		keys = append(keys, h.Key)
	}
	return keys
}

var _ propagation.TextMapCarrier = kafkaHeaderCarrier{}
