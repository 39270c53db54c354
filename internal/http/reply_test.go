package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hxTrigger(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var events map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &events))
	return events
}

func TestReplyAfterAdd(t *testing.T) {
	w := httptest.NewRecorder()
	NewReply().
		HTML("<section>panel</section>").
		TriggerLedgerChanged("transaction.added", 30).
		TriggerFormReset().
		NotifySuccess("Transaction added").
		Write(w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "<section>panel</section>", w.Body.String())

	events := hxTrigger(t, w)
	assert.JSONEq(t, `{"action":"transaction.added","index":30}`, string(events[EventLedgerChanged]))
	assert.JSONEq(t, `{}`, string(events[EventFormReset]))
	assert.JSONEq(t, `{"type":"success","message":"Transaction added","duration":3000}`, string(events[EventNotice]))
}

func TestReplyWithoutEventsHasNoTrigger(t *testing.T) {
	w := httptest.NewRecorder()
	NewReply().Status(http.StatusNoContent).Header("X-Request-ID", "req_1").Write(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("HX-Trigger"))
	assert.Equal(t, "req_1", w.Header().Get("X-Request-ID"))
	assert.Empty(t, w.Body.String())
}

func TestReplyJSON(t *testing.T) {
	w := httptest.NewRecorder()
	NewReply().Status(http.StatusCreated).JSON(map[string]int{"index": 2}).Write(w)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"index":2}`, w.Body.String())

	w = httptest.NewRecorder()
	NewReply().JSON(func() {}).Write(w)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestFailures(t *testing.T) {
	tests := map[string]struct {
		reply  *Reply
		status int
		body   string
	}{
		"bad request":   {BadRequest("Unknown kind"), http.StatusBadRequest, `<div class="error" role="alert">Unknown kind</div>`},
		"unprocessable": {Unprocessable("No transaction at index 99"), http.StatusUnprocessableEntity, `<div class="error" role="alert">No transaction at index 99</div>`},
		"server error":  {ServerError("Unable to load the ledger"), http.StatusInternalServerError, `<div class="error" role="alert">Unable to load the ledger</div>`},
		"not found":     {NotFound("Page not found"), http.StatusNotFound, `<div class="error" role="alert">Page not found</div>`},
		"escaped":       {BadRequest(`<b>"Rent"</b>`), http.StatusBadRequest, `<div class="error" role="alert">&lt;b&gt;&#34;Rent&#34;&lt;/b&gt;</div>`},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.reply.Write(w)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
		})
	}
}

func TestUnprocessableRaisesErrorNotice(t *testing.T) {
	w := httptest.NewRecorder()
	Unprocessable("No transaction at index 99").Write(w)

	var notice struct {
		Type     string `json:"type"`
		Message  string `json:"message"`
		Duration int    `json:"duration"`
	}
	require.NoError(t, json.Unmarshal(hxTrigger(t, w)[EventNotice], &notice))
	assert.Equal(t, "error", notice.Type)
	assert.Equal(t, "No transaction at index 99", notice.Message)
	assert.Equal(t, 5000, notice.Duration)
}

func TestMethodNotAllowedSetsAllow(t *testing.T) {
	w := httptest.NewRecorder()
	MethodNotAllowed("DELETE, POST").Write(w)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "DELETE, POST", w.Header().Get("Allow"))
}
