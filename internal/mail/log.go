package mail

import (
	"context"

	"storefront/internal/logging"
)

// LogNotifier writes messages to the log instead of sending them. It stands in
// when no SMTP relay is configured; bodies are logged at debug level only.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(log logging.Logger) *LogNotifier {
	return &LogNotifier{log: log.With("component", "mail")}
}

func (n *LogNotifier) Notify(ctx context.Context, msg Message) error {
	n.log.Warn(ctx, "mail delivery disabled; message not sent", "to", msg.To, "subject", msg.Subject)
	n.log.Debug(ctx, "undelivered message body", "to", msg.To, "body", msg.Body)
	return nil
}
