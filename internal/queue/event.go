// Package queue defines message payloads exchanged over the message broker.
package queue

// EmailRequestedEvent is published when a handler wants a transactional
// email sent in the background. It carries everything the consumer needs to
// render and deliver the message without querying the primary database.
// Only fire-and-forget mail (the welcome message) travels this way; mail
// whose failure must reach the caller is sent synchronously.
type EmailRequestedEvent struct {
	UserID      uint64 `json:"user_id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Template    string `json:"template"` // welcome | password_reset
	URL         string `json:"url"`
	RequestedAt string `json:"requested_at"`
}
