package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cashflow/internal/core"
	"cashflow/internal/ledger"
)

func newSummaryCommand() *cobra.Command {
	var (
		flags  viewFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the cash-flow KPIs and expense breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := flags.dashboard(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if asJSON {
				return writeSummaryJSON(cmd.OutOrStdout(), d)
			}
			return writeSummary(cmd.OutOrStdout(), d)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	return cmd
}

func writeSummary(w io.Writer, d ledger.Dashboard) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Range:\t%s .. %s (%d of %d transactions)\n", d.Start, d.End, len(d.Rows), d.LedgerLen)
	fmt.Fprintf(tw, "Total Income:\t%s\n", core.FormatMoney(d.KPIs.TotalIncome))
	fmt.Fprintf(tw, "Total Expense:\t%s\n", core.FormatMoney(d.KPIs.TotalExpense))
	fmt.Fprintf(tw, "Net Cash Flow:\t%s\n", core.FormatMoney(d.KPIs.Net))
	fmt.Fprintf(tw, "Profit Margin:\t%s\n", core.FormatPercent(d.KPIs.MarginPct))

	if len(d.Breakdown) > 0 {
		fmt.Fprintln(tw, "\nExpense breakdown:\t")
		for _, c := range d.Breakdown {
			fmt.Fprintf(tw, "  %s\t%s\n", c.Name, core.FormatMoney(c.Amount))
		}
	}
	if len(d.Series) > 0 {
		last := d.Series[len(d.Series)-1]
		fmt.Fprintf(tw, "\nClosing balance:\t%s on %s\n", core.FormatMoney(last.Balance), last.Date)
	}

	return tw.Flush()
}

type summaryJSON struct {
	Start        string            `json:"start"`
	End          string            `json:"end"`
	Transactions int               `json:"transactions"`
	TotalIncome  string            `json:"totalIncome"`
	TotalExpense string            `json:"totalExpense"`
	Net          string            `json:"net"`
	MarginPct    string            `json:"marginPct"`
	Breakdown    map[string]string `json:"breakdown"`
}

func writeSummaryJSON(w io.Writer, d ledger.Dashboard) error {
	out := summaryJSON{
		Start:        d.Start.String(),
		End:          d.End.String(),
		Transactions: len(d.Rows),
		TotalIncome:  d.KPIs.TotalIncome.String(),
		TotalExpense: d.KPIs.TotalExpense.String(),
		Net:          d.KPIs.Net.String(),
		MarginPct:    d.KPIs.MarginPct.StringFixed(2),
		Breakdown:    make(map[string]string, len(d.Breakdown)),
	}
	for _, c := range d.Breakdown {
		out.Breakdown[c.Name] = c.Amount.String()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
