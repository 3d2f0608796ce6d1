package invoice

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testOrder() Order {
	return Order{
		Id:              "42",
		Number:          "1001",
		CreatedAt:       time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC),
		FormattedTotal:  "<span class=\"amount\">$30.00</span>",
		BillingAddress:  "Jane Doe<br/>1 Main St",
		ShippingAddress: "Jane Doe<br/>2 Side St",
		Items: []LineItem{
			{Name: "Widget", Quantity: 2, FormattedTotal: "<span>$20.00</span>"},
			{Name: "Gadget & Co", Quantity: 1, FormattedTotal: "<span>$10.00</span>"},
		},
		CustomerNote:   "Leave at the door",
		PaymentMethod:  "Credit card",
		ShippingMethod: "Flat rate",
	}
}

func TestRenderDefaultTemplate(t *testing.T) {
	out := Render(DefaultTemplate, testOrder(), "")

	assert.Contains(t, out, "Invoice #1001")
	assert.Contains(t, out, "March 5, 2024")
	assert.Contains(t, out, "<span class=\"amount\">$30.00</span>")
	assert.Contains(t, out, "Jane Doe<br/>1 Main St")
	assert.Contains(t, out, "<tr><td>Widget</td><td>2</td><td><span>$20.00</span></td></tr>")
	assert.Contains(t, out, "<tr><td>Gadget &amp; Co</td><td>1</td><td><span>$10.00</span></td></tr>")
	assert.NotContains(t, out, "{order_number}")
	assert.NotContains(t, out, "{order_items}")
}

func TestRenderAllPlaceholders(t *testing.T) {
	var tokens []string
	for _, p := range Placeholders {
		tokens = append(tokens, p.Token)
	}

	out := Render(strings.Join(tokens, "|"), testOrder(), "2006-01-02")

	for _, token := range tokens {
		assert.NotContains(t, out, token)
	}

	assert.Contains(t, out, "|2024-03-05|")
	assert.Contains(t, out, "Leave at the door|Credit card|Flat rate")
}

func TestRenderLeavesUnknownTokens(t *testing.T) {
	out := Render("{foo} {order_number} { order_number } {ORDER_NUMBER}", testOrder(), "")

	assert.Equal(t, "{foo} 1001 { order_number } {ORDER_NUMBER}", out)
}

func TestRenderEscapesScalarFields(t *testing.T) {
	order := testOrder()
	order.Number = "<b>1001</b>"
	order.CustomerNote = "<script>alert(1)</script>"

	out := Render("{order_number}|{customer_note}|{billing_address}", order, "")

	assert.Equal(t, "&lt;b&gt;1001&lt;/b&gt;|&lt;script&gt;alert(1)&lt;/script&gt;|Jane Doe<br/>1 Main St", out)
}

func TestRenderDoesNotReinterpretValues(t *testing.T) {
	order := testOrder()
	order.CustomerNote = "{order_number}"
	order.BillingAddress = "{shipping_address}"

	out := Render("{customer_note}|{billing_address}", order, "")

	assert.Equal(t, "{order_number}|{shipping_address}", out)
}

func TestRenderWithoutItems(t *testing.T) {
	order := testOrder()
	order.Items = nil

	assert.Equal(t, "<tbody></tbody>", Render("<tbody>{order_items}</tbody>", order, ""))
}

func TestSanitizeStripsScripts(t *testing.T) {
	out := Sanitize(`<p onclick="steal()">Invoice {order_number}</p><script>alert(1)</script><table border="1"><tr><td>{order_items}</td></tr></table>`)

	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "onclick")
	assert.Contains(t, out, "<p>Invoice {order_number}</p>")
	assert.Contains(t, out, `<table border="1">`)
	assert.Contains(t, out, "{order_items}")
}
