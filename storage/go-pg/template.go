package gopg

import (
	"context"
	"time"

	"github.com/go-pg/pg"

	"github.com/interactive-solutions/go-invoice"
)

func NewTemplateRepository(db *pg.DB) invoice.TemplateRepository {
	return &templateRepository{
		db: db,
	}
}

type templateRepository struct {
	db *pg.DB
}

// templateRow is the single row configuration record for the active template.
type templateRow struct {
	TableName struct{} `sql:"invoice_templates,alias:it" json:"-"`

	Name      string    `sql:",pk"`
	Body      string    `sql:",notnull"`
	UpdatedAt time.Time `sql:",notnull"`
}

func (repo *templateRepository) Get(ctx context.Context) (string, error) {
	row := &templateRow{}

	if err := repo.db.WithContext(ctx).Model(row).Where("name = ?", invoice.TemplateKey).Select(); err != nil {
		if err == pg.ErrNoRows {
			return "", invoice.TemplateNotFoundErr
		}

		return "", err
	}

	return row.Body, nil
}

func (repo *templateRepository) Save(ctx context.Context, body string) error {
	row := &templateRow{
		Name:      invoice.TemplateKey,
		Body:      body,
		UpdatedAt: time.Now(),
	}

	_, err := repo.db.WithContext(ctx).Model(row).
		OnConflict("(name) DO UPDATE").
		Set("body = EXCLUDED.body, updated_at = EXCLUDED.updated_at").
		Insert()

	return err
}

func (repo *templateRepository) Delete(ctx context.Context) error {
	_, err := repo.db.WithContext(ctx).Model(&templateRow{}).
		Where("name = ?", invoice.TemplateKey).
		Delete()

	return err
}
