package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"cashflow/internal/core"
	"cashflow/internal/export"
	"cashflow/internal/ledger"
)

// viewFlags are the ledger source and date filter shared by the offline
// commands.
type viewFlags struct {
	csvPath string
	from    string
	to      string
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.csvPath, "csv", "", "read transactions from a CSV export ('-' for stdin); default is the sample ledger")
	cmd.Flags().StringVar(&f.from, "from", "", "first date to include (YYYY-MM-DD); default is the earliest transaction")
	cmd.Flags().StringVar(&f.to, "to", "", "last date to include (YYYY-MM-DD); default is the latest transaction")
}

// dashboard loads the ledger and summarizes it over the requested range.
func (f *viewFlags) dashboard(stdin io.Reader) (ledger.Dashboard, error) {
	l, err := loadLedger(f.csvPath, stdin)
	if err != nil {
		return ledger.Dashboard{}, err
	}

	start, end := ledger.DefaultRange(l)
	if f.from != "" {
		if start, err = core.ParseDate(f.from); err != nil {
			return ledger.Dashboard{}, fmt.Errorf("--from: %w", err)
		}
	}
	if f.to != "" {
		if end, err = core.ParseDate(f.to); err != nil {
			return ledger.Dashboard{}, fmt.Errorf("--to: %w", err)
		}
	}
	return ledger.Summarize(l, start, end), nil
}

func loadLedger(path string, stdin io.Reader) (*ledger.Ledger, error) {
	switch path {
	case "":
		return ledger.Seed(), nil
	case "-":
		txs, err := export.ReadCSV(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return ledger.New(txs), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	txs, err := export.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ledger.New(txs), nil
}
