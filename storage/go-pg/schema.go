package gopg

import (
	"github.com/go-pg/pg"
	"github.com/go-pg/pg/orm"
)

// CreateSchema creates the invoice tables when they do not exist yet.
func CreateSchema(db *pg.DB) error {
	for _, model := range []interface{}{&templateRow{}, &sendRecordWrapper{}} {
		err := db.CreateTable(model, &orm.CreateTableOptions{
			IfNotExists: true,
		})

		if err != nil {
			return err
		}
	}

	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS invoice_send_records_order_id_idx ON invoice_send_records (order_id, id)`)

	return err
}
