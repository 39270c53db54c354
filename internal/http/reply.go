package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// Events announced to the page through HX-Trigger.
const (
	EventLedgerChanged = "ledger:changed"
	EventFormReset     = "form:reset"
	EventNotice        = "show-notification"
)

// NoticeLevel selects the toast style on the page.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
	NoticeInfo    NoticeLevel = "info"
)

// noticeDuration is how long the page keeps a toast, in milliseconds.
var noticeDuration = map[NoticeLevel]int{
	NoticeSuccess: 3000,
	NoticeError:   5000,
	NoticeInfo:    3000,
}

// Reply accumulates status, headers, HX-Trigger events and body for a
// single response. Handlers build one and call Write exactly once.
type Reply struct {
	status  int
	header  http.Header
	events  map[string]any
	payload []byte
}

func NewReply() *Reply {
	return &Reply{
		status: http.StatusOK,
		header: make(http.Header),
		events: make(map[string]any),
	}
}

func (b *Reply) Status(code int) *Reply {
	b.status = code
	return b
}

func (b *Reply) Header(name, value string) *Reply {
	b.header.Set(name, value)
	return b
}

// Trigger queues an HX-Trigger event. Re-triggering a name replaces its
// detail.
func (b *Reply) Trigger(name string, detail any) *Reply {
	b.events[name] = detail
	return b
}

// TriggerLedgerChanged asks the page to refetch chart data. Index is the
// affected ledger position, or -1 when the whole ledger changed.
func (b *Reply) TriggerLedgerChanged(action string, index int) *Reply {
	return b.Trigger(EventLedgerChanged, map[string]any{"action": action, "index": index})
}

func (b *Reply) TriggerFormReset() *Reply {
	return b.Trigger(EventFormReset, struct{}{})
}

// Notify shows a toast; only the last notice of a reply is kept.
func (b *Reply) Notify(level NoticeLevel, message string) *Reply {
	return b.Trigger(EventNotice, map[string]any{
		"type":     string(level),
		"message":  message,
		"duration": noticeDuration[level],
	})
}

func (b *Reply) NotifySuccess(message string) *Reply { return b.Notify(NoticeSuccess, message) }
func (b *Reply) NotifyError(message string) *Reply { return b.Notify(NoticeError, message) }

func (b *Reply) Body(content []byte) *Reply {
	b.payload = content
	return b
}

func (b *Reply) HTML(fragment string) *Reply {
	b.header.Set("Content-Type", "text/html; charset=utf-8")
	b.payload = []byte(fragment)
	return b
}

// JSON encodes v as the body. An encoding failure turns the reply into a 500.
func (b *Reply) JSON(v any) *Reply {
	data, err := json.Marshal(v)
	if err != nil {
		return ServerError("Unable to encode response")
	}
	b.header.Set("Content-Type", "application/json")
	b.payload = append(data, '\n')
	return b
}

func (b *Reply) Write(w http.ResponseWriter) {
	for name, values := range b.header {
		w.Header()[name] = values
	}
	if len(b.events) > 0 {
		if encoded, err := json.Marshal(b.events); err == nil {
			w.Header().Set("HX-Trigger", string(encoded))
		}
	}
	w.WriteHeader(b.status)
	if len(b.payload) > 0 {
		_, _ = w.Write(b.payload)
	}
}

// Failure renders message, HTML-escaped, in the alert box htmx swaps into
// the form's error target.
func Failure(status int, message string) *Reply {
	return NewReply().
		Status(status).
		HTML(`<div class="error" role="alert">` + template.HTMLEscapeString(message) + `</div>`)
}

func BadRequest(message string) *Reply { return Failure(http.StatusBadRequest, message) }

// Unprocessable is used for rejected ledger input; the message is also
// raised as a toast since the alert may be outside the viewport.
func Unprocessable(message string) *Reply {
	return Failure(http.StatusUnprocessableEntity, message).NotifyError(message)
}

func ServerError(message string) *Reply { return Failure(http.StatusInternalServerError, message) }

func NotFound(message string) *Reply { return Failure(http.StatusNotFound, message) }

func MethodNotAllowed(allow string) *Reply {
	return NewReply().Status(http.StatusMethodNotAllowed).Header("Allow", allow)
}
