package mailgun

import (
	"context"

	"github.com/mailgun/mailgun-go/v3"
	"github.com/pkg/errors"

	"github.com/interactive-solutions/go-invoice"
)

type MailgunOption func(t *mailgunTransport)

func SetFrom(from string) MailgunOption {
	return func(t *mailgunTransport) {
		t.from = from
	}
}

func SetReplyTo(replyTo string) MailgunOption {
	return func(t *mailgunTransport) {
		t.replyTo = replyTo
	}
}

func SetTag(tag string) MailgunOption {
	return func(t *mailgunTransport) {
		t.tag = tag
	}
}

type mailgunTransport struct {
	mg mailgun.Mailgun

	from    string
	replyTo string
	tag     string
}

func NewMailgunTransport(mailgunClient mailgun.Mailgun, options ...MailgunOption) invoice.EmailTransport {
	t := &mailgunTransport{
		mg:  mailgunClient,
		tag: "invoice",
	}

	for _, option := range options {
		option(t)
	}

	return t
}

func (t *mailgunTransport) Send(ctx context.Context, msg invoice.Message) error {
	message := t.mg.NewMessage(t.from, msg.Subject, "", msg.To...)
	message.SetHtml(msg.HtmlBody)

	for _, cc := range msg.Cc {
		message.AddCC(cc)
	}

	for _, bcc := range msg.Bcc {
		message.AddBCC(bcc)
	}

	if t.tag != "" {
		if err := message.AddTag(t.tag); err != nil {
			return errors.Wrap(err, "Failed to add tags")
		}
	}

	if t.replyTo != "" {
		message.SetReplyTo(t.replyTo)
	}

	if _, _, err := t.mg.Send(ctx, message); err != nil {
		return errors.Wrap(err, "Failed to send message")
	}

	return nil
}
