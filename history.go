package invoice

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// NotProvided replaces an empty recipient list when a send is recorded.
// It is stored both for "nothing entered" and "nothing valid".
const NotProvided = "N/A"

// NoHistoryMessage is shown in place of an empty send history.
const NoHistoryMessage = "No invoices have been sent for this order yet."

type SendRecord struct {
	Uuid    uuid.UUID `sql:",type:uuid" json:"uuid"`
	OrderId string    `sql:",notnull" json:"orderId"`

	Date time.Time `sql:",notnull" json:"date"`

	To  []string `sql:",array" json:"to"`
	Cc  []string `sql:",array" json:"cc"`
	Bcc []string `sql:",array" json:"bcc"`

	Status Status `sql:",notnull" json:"status"`
}

func newSendRecord(orderId string, date time.Time, to, cc, bcc []string, delivered bool) *SendRecord {
	status := StatusFailed
	if delivered {
		status = StatusSent
	}

	return &SendRecord{
		Uuid:    uuid.New(),
		OrderId: orderId,
		Date:    date,
		To:      normalizeRecipients(to),
		Cc:      normalizeRecipients(cc),
		Bcc:     normalizeRecipients(bcc),
		Status:  status,
	}
}

func normalizeRecipients(addresses []string) []string {
	if len(addresses) == 0 {
		return []string{NotProvided}
	}

	out := make([]string, len(addresses))
	copy(out, addresses)

	return out
}

// reverseRecords returns a copy of records with the newest entry first.
func reverseRecords(records []SendRecord) []SendRecord {
	out := make([]SendRecord, len(records))
	for i, record := range records {
		out[len(records)-1-i] = record
	}

	return out
}
