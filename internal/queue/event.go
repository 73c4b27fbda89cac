// Package queue defines the email job payloads exchanged over the
// message broker, the publisher that enqueues them and the worker that
// consumes them, plus the periodic cleanup sweeper.
package queue

// WelcomeEmailEvent is queued after a successful registration. The
// welcome mail is a courtesy, so it rides the broker with at-least-once
// delivery instead of blocking the registration response.
type WelcomeEmailEvent struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	RegisteredAt string `json:"registered_at"`
}
