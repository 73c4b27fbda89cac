package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const welcomeQueueName = "email.welcome"

// Publisher enqueues email jobs on RabbitMQ. A connection is dialed
// per publish: the welcome mail volume is one message per
// registration, and a short-lived connection keeps the publisher free
// of reconnect bookkeeping. Errors are logged and returned so callers
// can ignore them without losing the trace.
type Publisher struct{ URL string }

func NewPublisher(url string) *Publisher { return &Publisher{URL: url} }

// PublishWelcomeEmail enqueues a welcome email job. Messages are
// persistent so they survive a broker restart.
func (p *Publisher) PublishWelcomeEmail(ctx context.Context, email, name string) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so jobs survive broker restarts.
	if _, err := ch.QueueDeclare(welcomeQueueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(WelcomeEmailEvent{
		Email:        email,
		Name:         name,
		RegisteredAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", welcomeQueueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
