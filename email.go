package invoice

import "context"

// Message is a single HTML email. Cc and Bcc are left empty when there is
// nobody to copy.
type Message struct {
	To  []string
	Cc  []string
	Bcc []string

	Subject  string
	HtmlBody string
}

// EmailTransport delivers a message. Any returned error counts as a failed
// delivery for every recipient.
type EmailTransport interface {
	Send(ctx context.Context, msg Message) error
}
