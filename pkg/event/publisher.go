package event

import (
	"context"
	"encoding/json"
	"fmt"
	"learnhub_backend/pkg/logger"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Notification 推送到消息队列的通知事件
type Notification struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type Publisher interface {
	PublishNotification(ctx context.Context, n Notification) error
	Close() error
}

type EventPublisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	enabled  bool
}

// NewEventPublisher URI 为空时返回禁用状态的发布器
func NewEventPublisher(rabbitURI, exchange string) (*EventPublisher, error) {
	if rabbitURI == "" {
		logger.Log.Info("AMQP URI is empty, notification publishing is disabled")
		return &EventPublisher{exchange: exchange, enabled: false}, nil
	}

	conn, err := amqp091.Dial(rabbitURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Log.Info("Notification publisher initialized", zap.String("exchange", exchange))

	return &EventPublisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		enabled:  true,
	}, nil
}

// PublishNotification 路由键为 notification.<kind>
func (p *EventPublisher) PublishNotification(ctx context.Context, n Notification) error {
	if !p.enabled {
		return nil
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		"notification."+n.Kind,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Transient,
			Timestamp:    n.CreatedAt,
			MessageId:    n.ID,
			Body:         body,
			Headers: amqp091.Table{
				"kind": n.Kind,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

func (p *EventPublisher) Close() error {
	if !p.enabled {
		return nil
	}

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			logger.Log.Warn("Error closing RabbitMQ channel", zap.Error(err))
		}
	}

	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("error closing RabbitMQ connection: %w", err)
		}
	}
	return nil
}

// MockPublisher 测试用，记录所有事件
type MockPublisher struct {
	mu     sync.Mutex
	Events []Notification
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Events: []Notification{}}
}

func (m *MockPublisher) PublishNotification(_ context.Context, n Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, n)
	return nil
}

func (m *MockPublisher) Published() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Notification, len(m.Events))
	copy(out, m.Events)
	return out
}

func (m *MockPublisher) Close() error { return nil }
