package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"cashflow/internal/amqp"
	"cashflow/internal/cli"
	applog "cashflow/internal/log"
)

func newEventsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Follow ledger change events published on AMQP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadAndValidateConfig()
			if err != nil {
				return fmt.Errorf("configuration: %w", err)
			}
			if !cfg.AMQPEnabled() {
				return errors.New("AMQP_URL is not set")
			}
			logger := cli.SetupLogger(cfg.LogLevel, cmd.ErrOrStderr()).WithComponent(applog.ComponentAMQP)

			client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
			if err != nil {
				return fmt.Errorf("amqp: %w", err)
			}
			defer client.Close()

			ctx, stop := cli.SignalContext(cmd.Context())
			defer stop()

			logger.Info("Following ledger events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
			err = client.ConsumeTransactionEvents(ctx, eventPrinter(cmd.OutOrStdout(), asJSON))
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON events")

	return cmd
}

// eventPrinter writes one line per event. Deliveries may arrive from the
// consumer goroutine, so writes are serialized.
func eventPrinter(w io.Writer, asJSON bool) func(*amqp.TransactionEvent) error {
	var mu sync.Mutex
	return func(e *amqp.TransactionEvent) error {
		mu.Lock()
		defer mu.Unlock()

		if asJSON {
			b, err := e.ToJSON()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "%s\n", b)
			return err
		}

		ts := e.Timestamp.Format(time.RFC3339)
		if e.Action == amqp.ActionReset {
			_, err := fmt.Fprintf(w, "%s %-19s session=%s\n", ts, e.Action, e.Session)
			return err
		}
		_, err := fmt.Fprintf(w, "%s %-19s session=%s index=%d %s %s %s %s\n",
			ts, e.Action, e.Session, e.Index, e.Date, e.Kind, e.Category, e.Amount)
		return err
	}
}
