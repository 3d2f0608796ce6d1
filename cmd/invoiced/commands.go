package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/interactive-solutions/go-invoice"
	"github.com/interactive-solutions/go-invoice/internal/config"
)

type runFunc func(ctx context.Context, cfg config.Config, logger *logrus.Logger, app invoice.Application, args []string) error

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "invoiced",
		Short:         "View and email order invoices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCommand(),
		newRenderCommand(),
		newSendCommand(),
		newHistoryCommand(),
		newTemplateCommand(),
	)

	return root
}

// withApp loads configuration, builds the application and hands it to run.
func withApp(run runFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		logger := newLogger(cfg)

		app, closer, err := build(cfg, logger)
		if err != nil {
			return err
		}
		defer closer.Close()

		return run(cmd.Context(), cfg, logger, app, args)
	}
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the invoice HTTP API",
		RunE: withApp(func(ctx context.Context, cfg config.Config, logger *logrus.Logger, app invoice.Application, _ []string) error {
			if cfg.Admin.Token == "" {
				return errors.New("ADMIN_TOKEN must be set to serve the API")
			}

			router := mux.NewRouter()
			app.HttpHandler(&tokenAuthenticator{
				token: cfg.Admin.Token,
				admin: invoice.Administrator{DisplayName: cfg.Admin.Name},
			}).Register(router)

			server := &http.Server{
				Addr:              cfg.HttpAddr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			errs := make(chan error, 1)
			go func() {
				logger.WithField("addr", cfg.HttpAddr).Info("http server listening")
				errs <- server.ListenAndServe()
			}()

			select {
			case err := <-errs:
				if err == http.ErrServerClosed {
					return nil
				}
				return err

			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				logger.Info("shutting down http server")
				return server.Shutdown(shutdownCtx)
			}
		}),
	}
}

func newRenderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "render <order-id>",
		Short: "Print the rendered invoice for an order",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, _ config.Config, _ *logrus.Logger, app invoice.Application, args []string) error {
			order, err := app.Order(ctx, args[0])
			if err != nil {
				return err
			}

			body, err := app.RenderInvoice(ctx, order)
			if err != nil {
				return err
			}

			fmt.Fprintln(os.Stdout, body)
			return nil
		}),
	}
}

func newSendCommand() *cobra.Command {
	var to, cc, bcc, sender string

	cmd := &cobra.Command{
		Use:   "send <order-id>",
		Short: "Email the invoice for an order",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, cfg config.Config, _ *logrus.Logger, app invoice.Application, args []string) error {
			if sender == "" {
				sender = cfg.Admin.Name
			}

			delivered, err := app.SendInvoice(ctx, args[0], sender, to, cc, bcc)
			if err != nil {
				return err
			}

			if !delivered {
				return errors.New("Failed to send invoice")
			}

			fmt.Fprintln(os.Stdout, "Invoice sent successfully")
			return nil
		}),
	}

	cmd.Flags().StringVar(&to, "to", "", "recipients, separated by comma or semicolon")
	cmd.Flags().StringVar(&cc, "cc", "", "cc recipients")
	cmd.Flags().StringVar(&bcc, "bcc", "", "bcc recipients")
	cmd.Flags().StringVar(&sender, "sender", "", "name recorded in the order note")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history <order-id>",
		Short: "List invoice send attempts for an order, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, _ config.Config, _ *logrus.Logger, app invoice.Application, args []string) error {
			records, err := app.History(ctx, args[0])
			if err != nil {
				return err
			}

			if len(records) == 0 {
				fmt.Fprintln(os.Stdout, invoice.NoHistoryMessage)
				return nil
			}

			for _, r := range records {
				fmt.Fprintf(os.Stdout, "%s\t%s\t%s\t%s\t%s\n",
					r.Date.Format(time.RFC3339),
					strings.Join(r.To, ", "),
					strings.Join(r.Cc, ", "),
					strings.Join(r.Bcc, ", "),
					r.Status,
				)
			}

			return nil
		}),
	}
}

func newTemplateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Inspect or reset the invoice template",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the active template and the available placeholders",
			RunE: withApp(func(ctx context.Context, _ config.Config, _ *logrus.Logger, app invoice.Application, _ []string) error {
				body, err := app.ActiveTemplate(ctx)
				if err != nil {
					return err
				}

				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")

				return enc.Encode(struct {
					Body         string                `json:"body"`
					Placeholders []invoice.Placeholder `json:"placeholders"`
				}{body, invoice.Placeholders})
			}),
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Drop the custom template and fall back to the default",
			RunE: withApp(func(ctx context.Context, _ config.Config, _ *logrus.Logger, app invoice.Application, _ []string) error {
				return app.ResetTemplate(ctx)
			}),
		},
	)

	return cmd
}
