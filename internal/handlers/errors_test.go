package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	respondJSON(rec, 200, map[string]int{"xp": 42})

	if rec.Code != 200 {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["xp"] != 42 {
		t.Errorf("body = %v, want xp=42", body)
	}
}

func TestRespondJSONNilPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	respondJSON(rec, 204, nil)

	if rec.Code != 204 {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
}

func TestRespondWithError(t *testing.T) {
	rec := httptest.NewRecorder()
	respondWithError(rec, 409, "Image not unlocked", "", nil)

	if rec.Code != 409 {
		t.Errorf("status = %d, want 409", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["error"] != "Image not unlocked" {
		t.Errorf("error = %q, want user message", body["error"])
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Amount int `json:"amount"`
	}

	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"amount": 5}`))
		var p payload
		if err := decodeJSON(req, &p); err != nil {
			t.Fatalf("decodeJSON() failed: %v", err)
		}
		if p.Amount != 5 {
			t.Errorf("amount = %d, want 5", p.Amount)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"amount": 5, "bogus": true}`))
		var p payload
		if err := decodeJSON(req, &p); err == nil {
			t.Error("expected an error for an unknown field")
		}
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{`))
		var p payload
		if err := decodeJSON(req, &p); err == nil {
			t.Error("expected an error for malformed JSON")
		}
	})
}
