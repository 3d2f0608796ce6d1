package invoice

import (
	"context"
	"time"
)

type LineItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`

	// FormattedTotal is rendered by the store, including currency markup.
	FormattedTotal string `json:"formattedTotal"`
}

// Order is the read only view of a store order that invoices are built from.
// FormattedTotal, BillingAddress and ShippingAddress are HTML produced by the
// store itself and are inserted into invoices as is.
type Order struct {
	Id        string    `json:"id"`
	Number    string    `json:"number"`
	CreatedAt time.Time `json:"createdAt"`

	FormattedTotal  string `json:"formattedTotal"`
	BillingAddress  string `json:"billingAddress"`
	ShippingAddress string `json:"shippingAddress"`

	Items []LineItem `json:"items"`

	CustomerNote   string `json:"customerNote"`
	PaymentMethod  string `json:"paymentMethod"`
	ShippingMethod string `json:"shippingMethod"`
}

// OrderSource is the commerce platform that owns orders.
type OrderSource interface {
	// Get returns OrderNotFoundErr when the id does not resolve.
	Get(ctx context.Context, id string) (Order, error)

	// AddNote annotates the order, customerVisible false keeps the note internal.
	AddNote(ctx context.Context, id, note string, customerVisible bool) error
}
