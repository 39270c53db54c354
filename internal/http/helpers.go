package http

import (
	"html/template"
	"net/http"
	"strings"

	"cashflow/internal/core"
)

// templateFuncs are available to every dashboard template.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money":   core.FormatMoney,
		"percent": core.FormatPercent,
		"isIncome": func(k core.Kind) bool {
			return k == core.Income
		},
	}
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// isHTMX reports whether the request was issued by htmx and expects a
// fragment instead of a redirect.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// dashboardURL is the page URL for the given filter.
func dashboardURL(rp RangeParams) string {
	if q := rp.Query(); q != "" {
		return "/?" + q
	}
	return "/"
}
