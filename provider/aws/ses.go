package provider

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
	"github.com/pkg/errors"

	"github.com/interactive-solutions/go-invoice"
)

type sesTransport struct {
	ses sesiface.SESAPI

	from    string
	charset string
}

func NewSesTransport(sess *session.Session, from string) invoice.EmailTransport {
	return newSesTransport(ses.New(sess), from)
}

func newSesTransport(api sesiface.SESAPI, from string) *sesTransport {
	return &sesTransport{
		ses:     api,
		from:    from,
		charset: "UTF-8",
	}
}

func (transport *sesTransport) Send(ctx context.Context, msg invoice.Message) error {
	destination := &ses.Destination{
		ToAddresses: aws.StringSlice(msg.To),
	}

	if len(msg.Cc) > 0 {
		destination.CcAddresses = aws.StringSlice(msg.Cc)
	}

	if len(msg.Bcc) > 0 {
		destination.BccAddresses = aws.StringSlice(msg.Bcc)
	}

	input := &ses.SendEmailInput{
		Destination: destination,
		Message: &ses.Message{
			Body: &ses.Body{
				Html: &ses.Content{
					Charset: aws.String(transport.charset),
					Data:    aws.String(msg.HtmlBody),
				},
			},
			Subject: &ses.Content{
				Charset: aws.String(transport.charset),
				Data:    aws.String(msg.Subject),
			},
		},

		Source: aws.String(transport.from),
	}

	if _, err := transport.ses.SendEmailWithContext(ctx, input); err != nil {
		return errors.Wrap(err, "Failed to send invoice through SES")
	}

	return nil
}
