package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"cashflow/internal/backend"
	"cashflow/internal/cli"
	"cashflow/internal/export"
	"cashflow/internal/ledger"
	gsheet "cashflow/internal/sheets/google"
)

func newExportCommand() *cobra.Command {
	var (
		flags    viewFlags
		output   string
		toSheets bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered transactions as CSV or push them to Google Sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := flags.dashboard(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if toSheets {
				return exportToSheets(cmd, d.Rows)
			}
			return exportCSV(cmd.OutOrStdout(), output, d.Rows)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file ('-' for stdout, e.g. "+export.FileName+")")
	cmd.Flags().BoolVar(&toSheets, "sheets", false, "push to the configured Google spreadsheet instead of writing CSV")

	return cmd
}

func exportCSV(stdout io.Writer, path string, rows ledger.View) error {
	if path == "" || path == "-" {
		return export.WriteCSV(stdout, rows)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := export.WriteCSV(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func exportToSheets(cmd *cobra.Command, rows ledger.View) error {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	if !cfg.SheetsEnabled() {
		return fmt.Errorf("GOOGLE_SPREADSHEET_ID is not set")
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}

	client, err := gsheet.New(cmd.Context(), bcfg.Sheets)
	if err != nil {
		return err
	}

	updated, err := client.ExportView(cmd.Context(), rows)
	if err != nil {
		return fmt.Errorf("sheets export: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", len(rows), updated)
	return nil
}
