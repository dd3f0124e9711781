package httputil

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestWriteMissingTokenError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteMissingTokenError(w, "req-1")

	if w.Code != 401 {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %s", ct)
	}
	if got := w.Header().Get("X-Request-ID"); got != "req-1" {
		t.Errorf("expected request id header req-1, got %s", got)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body["error"] != "missing_bearer_token" {
		t.Errorf("expected missing_bearer_token, got %v", body["error"])
	}
	if _, ok := body["raw"]; ok {
		t.Error("raw should be omitted when empty")
	}
}

func TestWriteInvalidModelOutputError_EchoesRaw(t *testing.T) {
	w := httptest.NewRecorder()
	raw := "I'm sorry, here is your meal: {\"calories\": 300"
	WriteInvalidModelOutputError(w, "req-2", raw)

	if w.Code != 502 {
		t.Errorf("expected 502, got %d", w.Code)
	}
	var body APIError
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "model_returned_invalid_json" {
		t.Errorf("unexpected error code %q", body.Error)
	}
	if body.Raw != raw {
		t.Errorf("raw not echoed verbatim: %q", body.Raw)
	}
}

func TestWriteServerNotConfiguredError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteServerNotConfiguredError(w, "", []string{"GOOGLE_CLIENT_ID", "OPENAI_API_KEY"})

	if w.Code != 503 {
		t.Errorf("expected 503, got %d", w.Code)
	}
	var body APIError
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "server_not_configured" {
		t.Errorf("unexpected error code %q", body.Error)
	}
	if len(body.Missing) != 2 || body.Missing[0] != "GOOGLE_CLIENT_ID" {
		t.Errorf("missing vars not enumerated: %v", body.Missing)
	}
}
