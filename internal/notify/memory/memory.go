// Package memory is an in-process notifier used for tests and local
// development: it records messages instead of delivering them.
package memory

import (
	"context"
	"sync"

	"kakeibo/internal/notify"
)

type Notifier struct {
	mu   sync.Mutex
	sent []notify.Message

	// Fail, when set, is returned by Send without recording the message.
	Fail error
}

var _ notify.Notifier = (*Notifier)(nil)

func New() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Send(_ context.Context, m notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Fail != nil {
		return n.Fail
	}
	n.sent = append(n.sent, m)
	return nil
}

// Sent returns a copy of everything dispatched so far.
func (n *Notifier) Sent() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.sent...)
}
