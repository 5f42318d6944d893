package email

import (
	"context"
)

// Credentials authorize outbound mail on behalf of a single sender address.
type Credentials struct {
	Address     string
	AppPassword string
}

// Message is a single outbound plain text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender opens one authenticated connection per call, transmits the message
// and closes the connection. Implementations return an error on any transport,
// authentication or formatting failure; they never retry.
type Sender interface {
	Send(ctx context.Context, creds Credentials, msg *Message) error
}
