package mailer

import (
	"context"
	"log/slog"
)

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer stands in for SMTP when it is not configured; messages are
// logged instead of delivered.
type LogMailer struct {
	Log *slog.Logger
}

func (m LogMailer) Send(_ context.Context, msg Message) error {
	log := m.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("[MOCK EMAIL]", "to", msg.To, "subject", msg.Subject, "body", msg.Text)
	return nil
}
