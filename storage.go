package invoice

import (
	"context"

	"github.com/pkg/errors"
)

var (
	TemplateNotFoundErr = errors.New("No custom invoice template is stored")
	OrderNotFoundErr    = errors.New("The order was not found")
	NoRecipientsErr     = errors.New("No valid recipient email address provided")
	InvalidRequestErr   = errors.New("Invalid data")
)

// TemplateKey is the fixed name the active invoice template is stored under.
const TemplateKey = "invoice_template"

// TemplateRepository holds the single custom invoice template.
// Get returns TemplateNotFoundErr when nothing has been saved.
type TemplateRepository interface {
	Get(ctx context.Context) (string, error)

	Save(ctx context.Context, body string) error
	Delete(ctx context.Context) error
}

// HistoryRepository is an append only log of send attempts, scoped per order.
// List returns records in the order they were appended.
type HistoryRepository interface {
	Append(ctx context.Context, record *SendRecord) error
	List(ctx context.Context, orderId string) ([]SendRecord, error)
}
