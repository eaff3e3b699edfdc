package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func decode(t *testing.T, body string) *extractResponse {
	t.Helper()
	var r extractResponse
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		t.Fatal(err)
	}
	return &r
}

func TestFormatResult(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantOK  bool
		want    []string
		notWant []string
	}{
		{
			name: "items and links",
			body: `{"success":true,"final_url":"https://24h.pchome.com.tw/","engine_used":"rod",
				"content":"1. Widget A: NT$100\n2. Widget B: NT$200\n",
				"result":{"items":["Widget A: NT$100","Widget B: NT$200"],"warnings":[]},
				"links":[{"href":"https://24h.pchome.com.tw/prod/A"}]}`,
			wantOK:  true,
			want:    []string{"Source: https://24h.pchome.com.tw/", "Engine: rod", "1. Widget A: NT$100", "Links:\nhttps://24h.pchome.com.tw/prod/A"},
			notWant: []string{"Warnings:"},
		},
		{
			name: "partial result with warnings",
			body: `{"success":true,"final_url":"https://24h.pchome.com.tw/","engine_used":"http",
				"result":{"items":[],"warnings":["container not found: selector=#bestSellers"]},"links":[]}`,
			wantOK: true,
			want:   []string{"No best sellers found.", "Warnings:\n- container not found: selector=#bestSellers"},
		},
		{
			name:   "error",
			body:   `{"success":false,"error":{"code":"NAVIGATION_FAILED","message":"navigation failed"}}`,
			wantOK: false,
			want:   []string{"[NAVIGATION_FAILED] navigation failed"},
		},
		{
			name:   "error without detail",
			body:   `{"success":false}`,
			wantOK: false,
			want:   []string{"extraction failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, ok := formatResult(decode(t, tt.body))
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			for _, w := range tt.want {
				if !strings.Contains(text, w) {
					t.Errorf("missing %q in:\n%s", w, text)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(text, w) {
					t.Errorf("unexpected %q in:\n%s", w, text)
				}
			}
		})
	}
}

func TestAPIPost(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		wantKey string
	}{
		{"with key", "k1", "k1"},
		{"without key", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotKey, gotPath string
			var got extractRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotKey = r.Header.Get("X-API-Key")
				gotPath = r.URL.Path
				body, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(body, &got)
				_, _ = w.Write([]byte(`{"success":true}`))
			}))
			defer srv.Close()

			client := &http.Client{Timeout: 5 * time.Second}
			body, err := apiPost(context.Background(), client, srv.URL, tt.apiKey, "/api/v1/extract",
				extractRequest{FetchMode: "http", OutputFormat: "text"})
			if err != nil {
				t.Fatal(err)
			}
			if string(body) != `{"success":true}` {
				t.Errorf("body = %s", body)
			}
			if gotKey != tt.wantKey {
				t.Errorf("X-API-Key = %q, want %q", gotKey, tt.wantKey)
			}
			if gotPath != "/api/v1/extract" || got.FetchMode != "http" || got.OutputFormat != "text" {
				t.Errorf("path = %s, payload = %+v", gotPath, got)
			}
		})
	}
}
