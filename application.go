package invoice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const UserAgent = "InteractiveSolutions/GoInvoice-1.0"

const DefaultNoteLayout = "January 2, 2006 3:04 pm"

const (
	subjectFormat = "Invoice for Order #%s"

	noteSentFormat   = "Invoice emailed by %s on %s. To: %s. CC: %s. BCC: %s."
	noteFailedFormat = "Failed to email invoice by %s on %s. To: %s. CC: %s. BCC: %s."
)

type Application interface {
	HttpHandler(auth Authenticator) *HttpHandler

	ActiveTemplate(ctx context.Context) (string, error)
	SaveTemplate(ctx context.Context, content string) (string, error)
	ResetTemplate(ctx context.Context) error

	Order(ctx context.Context, id string) (Order, error)
	RenderInvoice(ctx context.Context, order Order) (string, error)
	History(ctx context.Context, orderId string) ([]SendRecord, error)

	Send(ctx context.Context, order Order, sender, to, cc, bcc string) (bool, error)
	SendInvoice(ctx context.Context, orderId, sender, to, cc, bcc string) (bool, error)
}

type AppOption func(a *application)

func SetLogger(logger logrus.FieldLogger) AppOption {
	return func(a *application) {
		a.logger = logger
	}
}

func SetTemplateRepo(repo TemplateRepository) AppOption {
	return func(a *application) {
		a.templateRepo = repo
	}
}

func SetHistoryRepo(repo HistoryRepository) AppOption {
	return func(a *application) {
		a.historyRepo = repo
	}
}

func SetOrderSource(source OrderSource) AppOption {
	return func(a *application) {
		a.orders = source
	}
}

func SetEmailTransport(transport EmailTransport) AppOption {
	return func(a *application) {
		a.emailTransport = transport
	}
}

// SetDateLayout sets the Go time layout used for the {date} placeholder.
func SetDateLayout(layout string) AppOption {
	return func(a *application) {
		if layout != "" {
			a.dateLayout = layout
		}
	}
}

// SetNoteLayout sets the Go time layout used for timestamps in order notes.
func SetNoteLayout(layout string) AppOption {
	return func(a *application) {
		if layout != "" {
			a.noteLayout = layout
		}
	}
}

func SetClock(now func() time.Time) AppOption {
	return func(a *application) {
		a.now = now
	}
}

type application struct {
	logger logrus.FieldLogger

	templateRepo   TemplateRepository
	historyRepo    HistoryRepository
	orders         OrderSource
	emailTransport EmailTransport

	dateLayout string
	noteLayout string
	now        func() time.Time
}

func NewApplication(options ...AppOption) (Application, error) {
	app := &application{
		logger: logrus.New(),

		dateLayout: DefaultDateLayout,
		noteLayout: DefaultNoteLayout,
		now:        time.Now,
	}

	for _, option := range options {
		option(app)
	}

	if err := app.ensureUsableConfiguration(); err != nil {
		return app, err
	}

	return app, nil
}

func (a *application) HttpHandler(auth Authenticator) *HttpHandler {
	return newHttpHandler(a, auth)
}

func (a *application) ensureUsableConfiguration() error {
	if a.templateRepo == nil {
		return errors.New("Missing template repository")
	}

	if a.historyRepo == nil {
		return errors.New("Missing history repository")
	}

	if a.orders == nil {
		return errors.New("Missing order source")
	}

	if a.emailTransport == nil {
		return errors.New("No email transport configured")
	}

	return nil
}

func (a *application) ActiveTemplate(ctx context.Context) (string, error) {
	body, err := a.templateRepo.Get(ctx)
	switch errors.Cause(err) {
	case nil:
		if body == "" {
			return DefaultTemplate, nil
		}

		return body, nil

	case TemplateNotFoundErr:
		return DefaultTemplate, nil

	default:
		return "", errors.Wrap(err, "failed to load invoice template")
	}
}

func (a *application) SaveTemplate(ctx context.Context, content string) (string, error) {
	body := Sanitize(content)

	if err := a.templateRepo.Save(ctx, body); err != nil {
		return "", errors.Wrap(err, "failed to save invoice template")
	}

	a.logger.
		WithField("length", len(body)).
		Info("invoice template saved")

	return body, nil
}

func (a *application) ResetTemplate(ctx context.Context) error {
	if err := a.templateRepo.Delete(ctx); err != nil {
		return errors.Wrap(err, "failed to reset invoice template")
	}

	a.logger.Info("invoice template reset to default")

	return nil
}

func (a *application) Order(ctx context.Context, id string) (Order, error) {
	if strings.TrimSpace(id) == "" {
		return Order{}, InvalidRequestErr
	}

	return a.orders.Get(ctx, id)
}

func (a *application) RenderInvoice(ctx context.Context, order Order) (string, error) {
	body, err := a.ActiveTemplate(ctx)
	if err != nil {
		return "", err
	}

	return Render(body, order, a.dateLayout), nil
}

func (a *application) History(ctx context.Context, orderId string) ([]SendRecord, error) {
	records, err := a.historyRepo.List(ctx, orderId)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list send history for order %s", orderId)
	}

	return reverseRecords(records), nil
}

func (a *application) SendInvoice(ctx context.Context, orderId, sender, to, cc, bcc string) (bool, error) {
	order, err := a.Order(ctx, orderId)
	if err != nil {
		return false, err
	}

	return a.Send(ctx, order, sender, to, cc, bcc)
}

func (a *application) Send(ctx context.Context, order Order, sender, to, cc, bcc string) (bool, error) {
	toList := ParseAddresses(to)
	ccList := ParseAddresses(cc)
	bccList := ParseAddresses(bcc)

	if len(toList) == 0 {
		return false, NoRecipientsErr
	}

	body, err := a.RenderInvoice(ctx, order)
	if err != nil {
		return false, err
	}

	msg := Message{
		To:       toList,
		Subject:  fmt.Sprintf(subjectFormat, order.Number),
		HtmlBody: body,
	}

	if len(ccList) > 0 {
		msg.Cc = ccList
	}

	if len(bccList) > 0 {
		msg.Bcc = bccList
	}

	logger := a.logger.
		WithField("orderId", order.Id).
		WithField("to", toList)

	delivered := true
	if err := a.emailTransport.Send(ctx, msg); err != nil {
		delivered = false

		logger.
			WithError(err).
			Error("failed to deliver invoice")
	}

	now := a.now()
	record := newSendRecord(order.Id, now, toList, ccList, bccList, delivered)

	var recordErr error
	if err := a.historyRepo.Append(ctx, record); err != nil {
		recordErr = errors.Wrapf(err, "failed to record send history for order %s", order.Id)

		logger.
			WithError(err).
			Error("failed to record send history")
	}

	noteFormat := noteSentFormat
	if !delivered {
		noteFormat = noteFailedFormat
	}

	note := fmt.Sprintf(noteFormat,
		sender,
		now.Format(a.noteLayout),
		strings.Join(record.To, ", "),
		strings.Join(record.Cc, ", "),
		strings.Join(record.Bcc, ", "),
	)

	if err := a.orders.AddNote(ctx, order.Id, note, false); err != nil {
		if recordErr == nil {
			recordErr = errors.Wrapf(err, "failed to add note to order %s", order.Id)
		}

		logger.
			WithError(err).
			Error("failed to add order note")
	}

	return delivered, recordErr
}
