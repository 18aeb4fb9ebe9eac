package mailer

import "context"

// Message is a single outbound email.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Sender is the outbound delivery port. Implementations must be safe
// for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}
