package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"cashflow/internal/export"
	applog "cashflow/internal/log"
)

const sheetsTimeout = 30 * time.Second

// handleExportCSV downloads the filtered view as CSV.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	rp := ParseRangeParams(r.URL.Query())
	d, err := s.ledger.Dashboard(r.Context(), sessionFrom(r.Context()), rp.Start, rp.End)
	if err != nil {
		s.logFailure(r, "Failed to load dashboard", err, applog.OpExport)
		ServerError("Unable to load the ledger").Write(w)
		return
	}

	// Buffer so a write error can still become a 500.
	var b bytes.Buffer
	if err := export.WriteCSV(&b, d.Rows); err != nil {
		s.logFailure(r, "Failed to write CSV", err, applog.OpExport)
		ServerError("Unable to export transactions").Write(w)
		return
	}
	atomic.AddInt64(&s.metrics.exports, 1)

	fields := applog.NewFields().WithRange(d.Start.String(), d.End.String()).WithOperation(applog.OpExport)
	fields[applog.FieldRows] = len(d.Rows)
	applog.FromContext(r.Context()).Info("Exported view as CSV", fields.ToSlice()...)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(b.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b.Bytes())
}

// handleExportSheets pushes the filtered view to the configured spreadsheet.
func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if s.exporter == nil {
		NotFound("Google Sheets export is not configured").Write(w)
		return
	}
	p, resp := ParseBodyOrFail(r)
	if resp != nil {
		resp.Write(w)
		return
	}

	rp := ParseRangeParams(p.Values())
	d, err := s.ledger.Dashboard(r.Context(), sessionFrom(r.Context()), rp.Start, rp.End)
	if err != nil {
		s.logFailure(r, "Failed to load dashboard", err, applog.OpExport)
		ServerError("Unable to load the ledger").Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), sheetsTimeout)
	defer cancel()

	updated, err := s.exporter.ExportView(ctx, d.Rows)
	if err != nil {
		s.logFailure(r, "Sheets export failed", err, applog.OpExport)
		Failure(http.StatusBadGateway, "Google Sheets export failed").
			NotifyError("Google Sheets export failed").
			Write(w)
		return
	}
	atomic.AddInt64(&s.metrics.exports, 1)

	fields := applog.NewFields().WithRange(d.Start.String(), d.End.String()).WithOperation(applog.OpExport)
	fields[applog.FieldRows] = len(d.Rows)
	fields["sheet_range"] = updated
	applog.FromContext(ctx).InfoContext(ctx, "Exported view to Google Sheets", fields.ToSlice()...)

	if isHTMX(r) {
		NewReply().
			Status(http.StatusNoContent).
			NotifySuccess(fmt.Sprintf("Exported %d rows to %s", len(d.Rows), updated)).
			Write(w)
		return
	}
	if p.IsJSON() {
		writeJSON(w, http.StatusOK, map[string]interface{}{"rows": len(d.Rows), "range": updated})
		return
	}
	http.Redirect(w, r, dashboardURL(rp), http.StatusSeeOther)
}
