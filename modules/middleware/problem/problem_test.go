package problem

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteRequest(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)

	WriteRequest(rec, req, Unauthorized("missing bearer token", WithCode("auth.missing_token")))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != ContentType {
		t.Fatalf("Content-Type = %q", ct)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"type":     "about:blank",
		"title":    "Unauthorized",
		"status":   float64(401),
		"detail":   "missing bearer token",
		"instance": "/api/profile",
		"code":     "auth.missing_token",
	}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("%s = %v, want %v", k, body[k], v)
		}
	}
	if _, ok := body["traceId"]; ok {
		t.Error("traceId should be omitted without an active span")
	}
}

func TestExtensionsDoNotOverrideMembers(t *testing.T) {
	p := TooManyRequests("slow down",
		WithExtension("retryAfter", 1),
		WithExtension("status", 200),
	)
	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != float64(429) {
		t.Errorf("status = %v, want 429", body["status"])
	}
	if body["retryAfter"] != float64(1) {
		t.Errorf("retryAfter = %v, want 1", body["retryAfter"])
	}
}

func TestWriteNil(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
