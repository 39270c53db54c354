package http

import (
	"bytes"
	"html/template"
	"net/http"

	"cashflow/internal/core"
	applog "cashflow/internal/log"
)

// handleIndex renders the full dashboard for the requested range.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFound("Page not found").Write(w)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	rp := ParseRangeParams(r.URL.Query())
	d, err := s.ledger.Dashboard(r.Context(), sessionFrom(r.Context()), rp.Start, rp.End)
	if err != nil {
		s.logFailure(r, "Failed to load dashboard", err, applog.OpFilter)
		ServerError("Unable to load the ledger").Write(w)
		return
	}

	s.render(w, r, http.StatusOK, "dashboard.html", s.newDashboardPage(d, rp))
}

// handleDashboardAPI serves the chart data for the requested range.
func (s *Server) handleDashboardAPI(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	rp := ParseRangeParams(r.URL.Query())
	d, err := s.ledger.Dashboard(r.Context(), sessionFrom(r.Context()), rp.Start, rp.End)
	if err != nil {
		s.logFailure(r, "Failed to load dashboard", err, applog.OpFilter)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unable to load the ledger"})
		return
	}

	writeJSON(w, http.StatusOK, newDashboardResponse(d))
}

// handleCategories lists the categories allowed for a kind, as <option>
// elements for htmx or JSON otherwise.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	kind, err := core.ParseKind(sanitizeInput(r.URL.Query().Get("kind")))
	if err != nil {
		if isHTMX(r) {
			BadRequest(err.Error()).Write(w)
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	categories := core.CategoriesFor(kind)
	if !isHTMX(r) {
		writeJSON(w, http.StatusOK, categoriesResponse{Kind: kind, Categories: categories})
		return
	}

	var b bytes.Buffer
	for _, c := range categories {
		escaped := template.HTMLEscapeString(c)
		b.WriteString(`<option value="` + escaped + `">` + escaped + `</option>`)
	}
	NewReply().HTML(b.String()).Write(w)
}

// writePanel re-renders the dashboard panel for htmx callers after a
// mutation, attaching the builder's triggers.
func (s *Server) writePanel(w http.ResponseWriter, r *http.Request, rp RangeParams, resp *Reply) {
	d, err := s.ledger.Dashboard(r.Context(), sessionFrom(r.Context()), rp.Start, rp.End)
	if err != nil {
		s.logFailure(r, "Failed to load dashboard", err, applog.OpFilter)
		ServerError("Unable to load the ledger").Write(w)
		return
	}

	var b bytes.Buffer
	if err := s.templates.ExecuteTemplate(&b, "panel", s.newDashboardPage(d, rp)); err != nil {
		s.logFailure(r, "Template render failed", err, applog.OpRender)
		ServerError("Unable to render page").Write(w)
		return
	}
	resp.HTML(b.String()).Write(w)
}

// finish answers a successful mutation: the refreshed panel for htmx, a
// 303 back to the dashboard otherwise.
func (s *Server) finish(w http.ResponseWriter, r *http.Request, rp RangeParams, resp *Reply) {
	if isHTMX(r) && s.templates != nil {
		s.writePanel(w, r, rp, resp)
		return
	}
	http.Redirect(w, r, dashboardURL(rp), http.StatusSeeOther)
}
