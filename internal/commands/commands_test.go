package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashflow/internal/amqp"
	"cashflow/internal/export"
)

const workedExampleCSV = "Date,Type,Category,Amount\n" +
	"2025-01-02,Income,Sales,60000\n" +
	"2025-01-03,Expense,Rent,40000\n"

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSummaryFromCSV(t *testing.T) {
	out, err := run(t, "", "summary", "--csv", writeCSV(t, workedExampleCSV))
	require.NoError(t, err)

	assert.Contains(t, out, "2025-01-02 .. 2025-01-03 (2 of 2 transactions)")
	assert.Contains(t, out, "₹60,000")
	assert.Contains(t, out, "₹40,000")
	assert.Contains(t, out, "₹20,000")
	assert.Contains(t, out, "33.33%")
	assert.Contains(t, out, "Rent")
	assert.Contains(t, out, "Closing balance:")
}

func TestSummaryJSONWithRange(t *testing.T) {
	out, err := run(t, workedExampleCSV, "summary", "--csv", "-", "--json", "--from", "2025-01-03")
	require.NoError(t, err)

	var got summaryJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "2025-01-03", got.Start)
	assert.Equal(t, 1, got.Transactions)
	assert.Equal(t, "0", got.TotalIncome)
	assert.Equal(t, "40000", got.TotalExpense)
	assert.Equal(t, "-40000", got.Net)
	assert.Equal(t, "0.00", got.MarginPct)
	assert.Equal(t, map[string]string{"Rent": "40000"}, got.Breakdown)
}

func TestSummaryOfSampleLedger(t *testing.T) {
	out, err := run(t, "", "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "(30 of 30 transactions)")
}

func TestSummaryRejectsBadInput(t *testing.T) {
	_, err := run(t, "", "summary", "--from", "01/02/2025")
	assert.ErrorContains(t, err, "--from")

	_, err = run(t, "", "summary", "--csv", writeCSV(t, "When,What,Where,Amount\n"))
	assert.ErrorIs(t, err, export.ErrBadHeader)

	_, err = run(t, "", "summary", "--csv", writeCSV(t, ""))
	assert.ErrorIs(t, err, export.ErrBadHeader)

	_, err = run(t, "", "summary", "--csv", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestExportToFile(t *testing.T) {
	dst := filepath.Join(t.TempDir(), export.FileName)
	_, err := run(t, "", "export", "--csv", writeCSV(t, workedExampleCSV), "--to", "2025-01-02", "-o", dst)
	require.NoError(t, err)

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()

	txs, err := export.ReadCSV(f)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Sales", txs[0].Category)
}

func TestExportToStdout(t *testing.T) {
	out, err := run(t, workedExampleCSV, "export", "--csv", "-")
	require.NoError(t, err)
	assert.Equal(t, workedExampleCSV, out)
}

func TestExportSheetsNeedsSpreadsheet(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	_, err := run(t, "", "export", "--sheets")
	assert.ErrorContains(t, err, "GOOGLE_SPREADSHEET_ID")
}

func TestEventsNeedsBroker(t *testing.T) {
	t.Setenv("AMQP_URL", "")
	_, err := run(t, "", "events")
	assert.ErrorContains(t, err, "AMQP_URL")
}

func TestEventPrinter(t *testing.T) {
	var out bytes.Buffer
	ts := time.Date(2025, 1, 4, 9, 30, 0, 0, time.UTC)

	printEvent := eventPrinter(&out, false)
	require.NoError(t, printEvent(&amqp.TransactionEvent{
		Session: "s1", Action: amqp.ActionAdded, Index: 2,
		Date: "2025-01-04", Kind: "Expense", Category: "Insurance", Amount: "500",
		Timestamp: ts,
	}))
	require.NoError(t, printEvent(&amqp.TransactionEvent{Session: "s1", Action: amqp.ActionReset, Index: -1, Timestamp: ts}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "2025-01-04T09:30:00Z transaction.added   session=s1 index=2 2025-01-04 Expense Insurance 500", lines[0])
	assert.Equal(t, "2025-01-04T09:30:00Z ledger.reset        session=s1", lines[1])

	out.Reset()
	require.NoError(t, eventPrinter(&out, true)(&amqp.TransactionEvent{Session: "s1", Action: amqp.ActionDeleted, Timestamp: ts}))
	assert.Contains(t, out.String(), `"action":"transaction.deleted"`)
}

func TestRootRegistersCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range NewRootCommand().Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "summary", "export", "sheets-auth", "events"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
