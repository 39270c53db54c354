package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"cashflow/internal/core"
)

// maxBodyBytes bounds form and JSON bodies.
const maxBodyBytes = 64 << 10

// RangeParams holds the optional date filter of a request. A nil bound means
// "use the ledger's first or last date".
type RangeParams struct {
	Start *core.Date
	End   *core.Date
}

// ParseRangeParams reads start and end (YYYY-MM-DD). Missing or malformed
// values are left nil.
func ParseRangeParams(values url.Values) RangeParams {
	var p RangeParams
	if v := sanitizeInput(values.Get("start")); v != "" {
		if d, err := core.ParseDate(v); err == nil {
			p.Start = &d
		}
	}
	if v := sanitizeInput(values.Get("end")); v != "" {
		if d, err := core.ParseDate(v); err == nil {
			p.End = &d
		}
	}
	return p
}

// Query encodes the explicit bounds back into a query string, without the
// leading '?'. It is empty when no bound is set.
func (p RangeParams) Query() string {
	q := url.Values{}
	if p.Start != nil {
		q.Set("start", p.Start.String())
	}
	if p.End != nil {
		q.Set("end", p.End.String())
	}
	return q.Encode()
}

// RequestBodyParser reads a form-encoded or JSON body once and exposes its
// fields as strings. htmx forms post url-encoded; API clients post JSON.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if p.body[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Values exposes the parsed fields as url.Values, whatever the encoding.
func (p *RequestBodyParser) Values() url.Values {
	if p.jsonData == nil {
		if p.formData == nil {
			return url.Values{}
		}
		return p.formData
	}
	out := url.Values{}
	for k, v := range p.jsonData {
		out.Set(k, stringValue(v))
	}
	return out
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue flattens a decoded JSON scalar; objects and arrays become "".
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseTransaction builds and validates a transaction from the date, kind,
// category and amount fields.
func ParseTransaction(p *RequestBodyParser) (core.Transaction, error) {
	date, err := core.ParseDate(p.Get("date"))
	if err != nil {
		return core.Transaction{}, err
	}
	kind, err := core.ParseKind(p.Get("kind"))
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(p.Get("amount"))
	if err != nil {
		return core.Transaction{}, err
	}

	tx := core.Transaction{
		Date:     date,
		Kind:     kind,
		Category: p.Get("category"),
		Amount:   amount,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// ParseIndex reads a non-negative ledger index. Range checking against the
// ledger length is left to the ledger.
func ParseIndex(s string) (int, error) {
	s = sanitizeInput(s)
	if s == "" {
		return 0, fmt.Errorf("missing index")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	return n, nil
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *Reply {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowed(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *Reply {
	return RequireMethod(r, http.MethodPost)
}

// RequireGET is a convenience function for read-only handlers. HEAD is
// accepted too.
func RequireGET(r *http.Request) *Reply {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}

// RequireDeleteOrPOST is a convenience function for DELETE/POST handlers.
func RequireDeleteOrPOST(r *http.Request) *Reply {
	return RequireMethod(r, http.MethodDelete, http.MethodPost)
}

// ParseBodyOrFail reads the request body and returns an error response on
// failure. Returns the parser on success.
func ParseBodyOrFail(r *http.Request) (*RequestBodyParser, *Reply) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return nil, BadRequest("Malformed request body")
	}
	return p, nil
}
