package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDoRequest(t *testing.T) {
	var gotAuth, gotContentType string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Write([]byte(`{"id": "entry-1", "balance_after": "42"}`))
	}))
	defer srv.Close()

	origURL, origToken := baseURL, adminToken
	defer func() { baseURL, adminToken = origURL, origToken }()
	baseURL = srv.URL
	adminToken = "test-token"

	result := doRequest(http.MethodPost, "/api/v1/admin/credits/adjust", map[string]any{
		"account_id": "acc-1",
		"amount":     "5",
	})

	if gotAuth != "Bearer test-token" {
		t.Fatalf("expected bearer token, got %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Fatalf("expected json content type, got %q", gotContentType)
	}
	if gotBody["account_id"] != "acc-1" {
		t.Fatalf("expected body to carry account id, got %+v", gotBody)
	}
	if result["id"] != "entry-1" || result["balance_after"] != "42" {
		t.Fatalf("unexpected result %+v", result)
	}
}
