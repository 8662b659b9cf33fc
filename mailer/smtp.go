package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.Port != "" && c.Username != "" && c.Password != ""
}

type SMTPMailer struct {
	cfg      SMTPConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPMailer{cfg: cfg, sendMail: smtp.SendMail}
}

const boundary = "----=_TRAVEL_ADMIN_BOUNDARY"

func headerSafe(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}

func (m *SMTPMailer) build(msg Message) []byte {
	from := headerSafe(m.cfg.From)
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", headerSafe(m.cfg.FromName), from)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", headerSafe(msg.To)))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", headerSafe(msg.Subject)))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary))

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(msg.Text + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	sb.WriteString(msg.HTML + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return []byte(sb.String())
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)

	if err := m.sendMail(addr, auth, m.cfg.From, []string{msg.To}, m.build(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}
