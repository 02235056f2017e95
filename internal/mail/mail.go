// Package mail delivers plain-text messages to email addresses. Callers depend
// on Notifier only; the transport is chosen at startup.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"strings"
)

// Message is a plain-text notification addressed to a single recipient.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier delivers a message and reports whether delivery succeeded.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// format renders msg as an RFC 5322 message. Header values are stripped of
// line breaks so user input cannot inject headers.
func format(from string, msg Message) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", headerValue(from))
	fmt.Fprintf(&buf, "To: %s\r\n", headerValue(msg.To))
	fmt.Fprintf(&buf, "Subject: %s\r\n", headerValue(msg.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(msg.Body)
	buf.WriteString("\r\n")
	return buf.Bytes()
}

func headerValue(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}
