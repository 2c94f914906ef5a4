package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Mailer delivers an email and reports whether it was accepted for delivery.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) bool
}

// LogMailer only logs outgoing mail. Used when no mail queue is configured.
type LogMailer struct{}

func (LogMailer) SendEmail(ctx context.Context, to, subject, htmlBody string) bool {
	slog.Info("Email", "to", to, "subject", subject, "bytes", len(htmlBody))
	return true
}

// EmailJob is the message an external SMTP worker consumes from the queue.
type EmailJob struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	HTMLBody  string    `json:"html_body"`
	CreatedAt time.Time `json:"created_at"`
}

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPMailer publishes email jobs to a durable RabbitMQ queue.
type AMQPMailer struct {
	conn    *amqp.Connection
	channel publisher
	queue   string
	mu      sync.Mutex
}

func NewAMQPMailer(url, queue string) (*AMQPMailer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare RabbitMQ queue: %w", err)
	}

	slog.Info("RabbitMQ mailer initialized", "queue", queue)

	return &AMQPMailer{conn: conn, channel: ch, queue: queue}, nil
}

func (m *AMQPMailer) SendEmail(ctx context.Context, to, subject, htmlBody string) bool {
	job := EmailJob{
		ID:        uuid.New().String(),
		To:        to,
		Subject:   subject,
		HTMLBody:  htmlBody,
		CreatedAt: time.Now().UTC(),
	}

	body, err := json.Marshal(job)
	if err != nil {
		slog.Error("Failed to encode email job", "to", to, "error", err)
		return false
	}

	// amqp channels are not safe for concurrent publishing
	m.mu.Lock()
	defer m.mu.Unlock()

	err = m.channel.PublishWithContext(ctx, "", m.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID,
		Timestamp:    job.CreatedAt,
		Body:         body,
	})
	if err != nil {
		slog.Error("Failed to publish email job", "to", to, "queue", m.queue, "error", err)
		return false
	}

	slog.Debug("Email job queued", "id", job.ID, "to", to, "queue", m.queue)
	return true
}

func (m *AMQPMailer) Close() error {
	if m.conn == nil {
		return nil
	}
	return m.conn.Close()
}
