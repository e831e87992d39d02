// Package mailer sends generated documents by email through the Gmail API.
package mailer

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when the Gmail credentials are missing
var ErrNotConfigured = errors.New("mailer not configured")

// Attachment is a file sent with a message
type Attachment struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Message is an outgoing email
type Message struct {
	To          []string
	Cc          []string
	ReplyTo     string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Sender delivers messages and returns the provider's message id
type Sender interface {
	Send(ctx context.Context, msg *Message) (string, error)
}
