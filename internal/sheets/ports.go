package sheets

import (
	"context"

	"cashflow/internal/ledger"
)

// Ports for outbound adapters.
type (
	// ViewExporter publishes a filtered ledger view to a spreadsheet.
	ViewExporter interface {
		// ExportView replaces the target sheet with the rows of view and
		// returns the written range.
		ExportView(ctx context.Context, view ledger.View) (updatedRange string, err error)
	}
)
