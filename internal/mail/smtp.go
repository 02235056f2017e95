package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"

	"golang.org/x/time/rate"
)

// SMTPConfig configures SMTPNotifier. Server is "host:port"; Rate caps sends per second.
type SMTPConfig struct {
	Server   string
	User     string
	Password string
	From     string
	Rate     float64
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier sends mail through an SMTP relay. Sends are paced by a token
// bucket so bursts of reset requests do not trip the provider's limits.
type SMTPNotifier struct {
	cfg     SMTPConfig
	host    string
	limiter *rate.Limiter
	send    sendFunc
}

func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if cfg.Server == "" || cfg.From == "" {
		return nil, errors.New("mail: SMTP server and sender address are required")
	}
	host, _, err := net.SplitHostPort(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("mail: invalid SMTP server %q (expected host:port): %w", cfg.Server, err)
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 1
	}
	return &SMTPNotifier{
		cfg:     cfg,
		host:    host,
		limiter: rate.NewLimiter(rate.Limit(cfg.Rate), 1),
		send:    smtp.SendMail,
	}, nil
}

// Notify waits for a send slot, then delivers msg. It returns once the relay
// accepted or rejected the message.
func (n *SMTPNotifier) Notify(ctx context.Context, msg Message) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("mail: waiting for send slot: %w", err)
	}

	var auth smtp.Auth
	if n.cfg.User != "" {
		auth = smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.host)
	}
	if err := n.send(n.cfg.Server, auth, n.cfg.From, []string{msg.To}, format(n.cfg.From, msg)); err != nil {
		return fmt.Errorf("mail: send via %s: %w", n.cfg.Server, err)
	}
	return nil
}
