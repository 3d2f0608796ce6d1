package main

import (
	"crypto/subtle"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/go-pg/pg"
	"github.com/mailgun/mailgun-go/v3"
	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/interactive-solutions/go-invoice"
	"github.com/interactive-solutions/go-invoice/internal/config"
	provider "github.com/interactive-solutions/go-invoice/provider/aws"
	mailgunprovider "github.com/interactive-solutions/go-invoice/provider/mailgun"
	"github.com/interactive-solutions/go-invoice/source/rest"
	gopg "github.com/interactive-solutions/go-invoice/storage/go-pg"
	redisstore "github.com/interactive-solutions/go-invoice/storage/redis"
)

// TokenHeader carries the shared admin token checked by tokenAuthenticator.
const TokenHeader = "X-Invoice-Token"

func newLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

// build wires the application from configuration. The returned closer
// releases the storage connection.
func build(cfg config.Config, logger *logrus.Logger) (invoice.Application, io.Closer, error) {
	options := []invoice.AppOption{
		invoice.SetLogger(logger),
		invoice.SetDateLayout(cfg.Invoice.DateLayout),
		invoice.SetNoteLayout(cfg.Invoice.NoteLayout),
		invoice.SetOrderSource(rest.NewOrderSource(cfg.Store.Url,
			rest.SetBasicAuth(cfg.Store.Username, cfg.Store.Password),
			rest.SetLogger(logger),
		)),
	}

	var closer io.Closer

	switch cfg.Storage.Driver {
	case "postgres":
		pgOptions, err := pg.ParseURL(cfg.Storage.DatabaseUrl)
		if err != nil {
			return nil, nil, errors.Wrap(err, "invalid DATABASE_URL")
		}

		db := pg.Connect(pgOptions)
		if err := gopg.CreateSchema(db); err != nil {
			db.Close()
			return nil, nil, errors.Wrap(err, "failed to create schema")
		}

		closer = db
		options = append(options,
			invoice.SetTemplateRepo(gopg.NewTemplateRepository(db)),
			invoice.SetHistoryRepo(gopg.NewHistoryRepository(db)),
		)

	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})

		closer = client
		options = append(options,
			invoice.SetTemplateRepo(redisstore.NewTemplateRepository(client)),
			invoice.SetHistoryRepo(redisstore.NewHistoryRepository(client)),
		)
	}

	switch cfg.Mail.Driver {
	case "ses":
		sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.Mail.AwsRegion)})
		if err != nil {
			closer.Close()
			return nil, nil, errors.Wrap(err, "failed to create aws session")
		}

		options = append(options, invoice.SetEmailTransport(provider.NewSesTransport(sess, cfg.Mail.From)))

	case "mailgun":
		mg := mailgun.NewMailgun(cfg.Mail.MailgunDomain, cfg.Mail.MailgunApiKey)
		options = append(options, invoice.SetEmailTransport(mailgunprovider.NewMailgunTransport(mg,
			mailgunprovider.SetFrom(cfg.Mail.From),
		)))
	}

	app, err := invoice.NewApplication(options...)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}

	return app, closer, nil
}

type tokenAuthenticator struct {
	token string
	admin invoice.Administrator
}

func (a *tokenAuthenticator) Authenticate(r *http.Request) (invoice.Administrator, error) {
	given := r.Header.Get(TokenHeader)
	if a.token == "" || given == "" {
		return invoice.Administrator{}, errors.New("missing admin token")
	}

	if subtle.ConstantTimeCompare([]byte(given), []byte(a.token)) != 1 {
		return invoice.Administrator{}, errors.New("invalid admin token")
	}

	return a.admin, nil
}
