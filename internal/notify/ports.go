// Package notify defines the outbound notification port. Dispatch is
// fire-and-forget: one message per call, no retry, no delivery confirmation.
package notify

import "context"

// Message is one outbound notification.
type Message struct {
	Recipient string
	Subject   string
	Body      string
}

type Notifier interface {
	Send(ctx context.Context, m Message) error
}
