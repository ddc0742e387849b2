package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type courseEvent struct {
	CourseID string    `json:"course_id"`
	Kind     Kind      `json:"kind"`
	Message  string    `json:"message"`
	SentAt   time.Time `json:"sent_at"`
}

// AMQPPublisher publishes course notifications to a topic exchange with the
// routing key "notification.<kind>". An empty URI yields a disabled
// publisher so local setups run without a broker.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	enabled  bool
	log      *slog.Logger
}

func NewAMQPPublisher(uri, exchange string, log *slog.Logger) (*AMQPPublisher, error) {
	if log == nil {
		log = slog.Default()
	}
	if uri == "" {
		log.Warn("RabbitMQ URI is empty, notification publishing is disabled")
		return &AMQPPublisher{exchange: exchange, log: log}, nil
	}

	conn, err := amqp091.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	log.Info("notification publisher ready", "exchange", exchange)
	return &AMQPPublisher{conn: conn, channel: ch, exchange: exchange, enabled: true, log: log}, nil
}

func (p *AMQPPublisher) Enabled() bool { return p.enabled }

func (p *AMQPPublisher) NotifyCourseStudents(ctx context.Context, courseID, message string, kind Kind) error {
	if !p.enabled {
		p.log.Debug("publishing disabled, skipping", "kind", string(kind), "course_id", courseID)
		return nil
	}
	body, err := json.Marshal(courseEvent{CourseID: courseID, Kind: kind, Message: message, SentAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey(kind), false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
		Headers: amqp091.Table{
			"event_type": string(kind),
			"course_id":  courseID,
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", kind, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	if !p.enabled {
		return nil
	}
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			return fmt.Errorf("close channel: %w", err)
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func routingKey(k Kind) string { return "notification." + string(k) }
