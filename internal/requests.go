package internal

type UpdateTemplateRequest struct {
	Body string `json:"body"`
}

// SendInvoiceRequest mirrors the form fields posted by the invoice page.
type SendInvoiceRequest struct {
	OrderId  string
	ToEmail  string
	CcEmail  string
	BccEmail string
}
