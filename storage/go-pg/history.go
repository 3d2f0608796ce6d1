package gopg

import (
	"context"

	"github.com/go-pg/pg"

	"github.com/interactive-solutions/go-invoice"
)

func NewHistoryRepository(db *pg.DB) invoice.HistoryRepository {
	return &historyRepository{
		db: db,
	}
}

// sendRecordWrapper adds a serial id so listing keeps append order even when
// two records share a timestamp.
type sendRecordWrapper struct {
	TableName struct{} `sql:"invoice_send_records,alias:isr" json:"-"`

	Id int64 `sql:",pk"`

	*invoice.SendRecord
}

type historyRepository struct {
	db *pg.DB
}

func (repo *historyRepository) Append(ctx context.Context, record *invoice.SendRecord) error {
	return repo.db.WithContext(ctx).Insert(&sendRecordWrapper{SendRecord: record})
}

func (repo *historyRepository) List(ctx context.Context, orderId string) ([]invoice.SendRecord, error) {
	var wrapped []sendRecordWrapper
	records := make([]invoice.SendRecord, 0)

	err := repo.db.WithContext(ctx).Model(&wrapped).
		Where("order_id = ?", orderId).
		Order("id ASC").
		Select()

	if err != nil && err != pg.ErrNoRows {
		return records, err
	}

	for _, w := range wrapped {
		records = append(records, *w.SendRecord)
	}

	return records, nil
}
