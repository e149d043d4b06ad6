package notify

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/pkg/mailer"
)

// RabbitPublisher wraps an AMQP channel and queue for publishing messages.
type RabbitPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	Queue string
}

func NewRabbitPublisher(url, queue string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := mailer.DeclareQueue(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &RabbitPublisher{conn: conn, ch: ch, Queue: queue}, nil
}

func (p *RabbitPublisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// PublishJSON publishes a JSON-encoded message to the default queue.
func (p *RabbitPublisher) PublishJSON(ctx context.Context, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.Queue, // routing key = queue
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         b,
		},
	)
}

// Publisher is what EmailNotifier needs from a queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// EmailNotifier turns account events into email jobs for cmd/email_worker.
type EmailNotifier struct {
	pub     Publisher
	appName string
	enabled bool
}

func NewEmailNotifier(pub Publisher, appName string, enabled bool) *EmailNotifier {
	return &EmailNotifier{pub: pub, appName: appName, enabled: enabled}
}

// Notify enqueues template for u. Meta carries request context such as the
// client IP; it must never contain tokens or password material.
func (n *EmailNotifier) Notify(ctx context.Context, template string, u entity.PublicUser, meta map[string]string) error {
	if n == nil || n.pub == nil || !n.enabled {
		return nil
	}
	data := map[string]any{
		"Name":    u.DisplayName,
		"Handle":  u.Handle,
		"AppName": n.appName,
		"Time":    time.Now().UTC().Format("02 January 2006, 15:04 MST"),
	}
	for k, v := range meta {
		data[k] = v
	}
	return n.pub.PublishJSON(ctx, mailer.EmailJob{To: u.Email, Template: template, Data: data})
}
