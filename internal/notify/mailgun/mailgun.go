// Package mailgun delivers notifications as email through the Mailgun API.
package mailgun

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"

	"kakeibo/internal/notify"
)

type Notifier struct {
	client *mg.MailgunImpl
	sender string
}

var _ notify.Notifier = (*Notifier)(nil)

func New(domain, apiKey, sender string) *Notifier {
	return &Notifier{
		client: mg.NewMailgun(domain, apiKey),
		sender: sender,
	}
}

func (n *Notifier) Send(ctx context.Context, m notify.Message) error {
	msg := n.client.NewMessage(n.sender, m.Subject, m.Body, m.Recipient)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, id, err := n.client.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("send mailgun message: %w", err)
	}
	slog.InfoContext(ctx, "Notification sent", "recipient", m.Recipient, "message_id", id)
	return nil
}
