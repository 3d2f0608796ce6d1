package invoice

import (
	"html"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Placeholder is a literal token that is replaced with order data when an
// invoice is rendered.
type Placeholder struct {
	Token       string `json:"token"`
	Description string `json:"description"`
}

var Placeholders = []Placeholder{
	{"{order_number}", "The order number"},
	{"{date}", "The date of the order"},
	{"{total}", "The total amount of the order"},
	{"{billing_address}", "The billing address"},
	{"{shipping_address}", "The shipping address"},
	{"{order_items}", "The list of order items in a table"},
	{"{customer_note}", "The customer note"},
	{"{payment_method}", "The payment method used"},
	{"{shipping_method}", "The shipping method used"},
}

const DefaultDateLayout = "January 2, 2006"

const DefaultTemplate = `<h1>Invoice #{order_number}</h1>
<p><strong>Date:</strong> {date}</p>
<p><strong>Total:</strong> {total}</p>

<h2>Billing Address</h2>
<address>
    {billing_address}
</address>

<h2>Shipping Address</h2>
<address>
    {shipping_address}
</address>

<h2>Order Items</h2>
<table border="1" cellpadding="6" cellspacing="0" style="border-collapse: collapse; width:100%;">
    <thead>
        <tr>
            <th>Product</th>
            <th>Quantity</th>
            <th>Price</th>
        </tr>
    </thead>
    <tbody>
        {order_items}
    </tbody>
</table>
`

// PlaceholderValues resolves every recognized token for the order. Scalar
// fields are escaped, the store formatted fragments are trusted.
func PlaceholderValues(order Order, dateLayout string) map[string]string {
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}

	var date string
	if !order.CreatedAt.IsZero() {
		date = order.CreatedAt.Format(dateLayout)
	}

	return map[string]string{
		"{order_number}":     html.EscapeString(order.Number),
		"{date}":             html.EscapeString(date),
		"{total}":            order.FormattedTotal,
		"{billing_address}":  order.BillingAddress,
		"{shipping_address}": order.ShippingAddress,
		"{order_items}":      renderItems(order.Items),
		"{customer_note}":    html.EscapeString(order.CustomerNote),
		"{payment_method}":   html.EscapeString(order.PaymentMethod),
		"{shipping_method}":  html.EscapeString(order.ShippingMethod),
	}
}

func renderItems(items []LineItem) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString("<tr>")
		b.WriteString("<td>" + html.EscapeString(item.Name) + "</td>")
		b.WriteString("<td>" + html.EscapeString(strconv.Itoa(item.Quantity)) + "</td>")
		b.WriteString("<td>" + item.FormattedTotal + "</td>")
		b.WriteString("</tr>")
	}

	return b.String()
}

// Render substitutes all placeholders in one pass, so values are never
// scanned for further tokens. Unknown tokens are left untouched.
func Render(body string, order Order, dateLayout string) string {
	values := PlaceholderValues(order, dateLayout)

	pairs := make([]string, 0, len(Placeholders)*2)
	for _, p := range Placeholders {
		pairs = append(pairs, p.Token, values[p.Token])
	}

	return strings.NewReplacer(pairs...).Replace(body)
}

var templatePolicy = newTemplatePolicy()

func newTemplatePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	p.AllowElements("address")
	p.AllowAttrs("border", "cellpadding", "cellspacing").OnElements("table")
	p.AllowStyles("border-collapse", "width", "text-align").OnElements("table", "td", "th")

	return p
}

// Sanitize strips script capable markup from an admin supplied template while
// keeping structural and formatting tags.
func Sanitize(body string) string {
	return templatePolicy.Sanitize(body)
}
