package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// WelcomeMailer is the slice of the mailer the worker needs.
type WelcomeMailer interface {
	SendWelcomeEmail(ctx context.Context, to, name string) error
}

// StartWelcomeConsumer connects to RabbitMQ and works the welcome
// email queue. It runs a reconnect loop with exponential backoff and
// never returns under normal operation; individual bad messages are
// rejected without requeue so a poison payload cannot wedge the
// worker.
func StartWelcomeConsumer(url string, mailer WelcomeMailer) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("welcome-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeWelcome(conn, mailer); err != nil {
			log.Printf("welcome-consumer: consume loop ended: %v; reconnecting", err)
		}
		_ = conn.Close()
		time.Sleep(2 * time.Second)
	}
}

func consumeWelcome(conn *amqp.Connection, mailer WelcomeMailer) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		log.Printf("welcome-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(welcomeQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(welcomeQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleWelcome(d.Body, mailer); err != nil {
			log.Printf("welcome-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleWelcome(body []byte, mailer WelcomeMailer) error {
	var ev WelcomeEmailEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := mailer.SendWelcomeEmail(ctx, ev.Email, ev.Name); err != nil {
		return fmt.Errorf("send welcome email: %w", err)
	}
	log.Printf("welcome-consumer: sent welcome email to %s", ev.Email)
	return nil
}
