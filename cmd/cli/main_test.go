package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestSubscribeCmd(t *testing.T) {
	var gotBody map[string]any
	var gotKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/subscribe" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotKey = r.Header.Get("Idempotency-Key")

		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		_ = dec.Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","scheduleId":"0.0.4242"}`))
	}))
	defer srv.Close()

	out, err := execute(t, "--url", srv.URL, "subscribe", "--payer", "0.0.1001", "--amount", "5.5", "--frequency", "monthly", "--idempotency-key", "k-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotBody["payerAccountId"] != "0.0.1001" || gotBody["amountUnits"] != json.Number("5.5") || gotBody["frequency"] != "monthly" {
		t.Fatalf("unexpected body %+v", gotBody)
	}
	if gotKey != "k-1" {
		t.Fatalf("expected idempotency key to be forwarded, got %q", gotKey)
	}
	if !strings.Contains(out, `"scheduleId": "0.0.4242"`) {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestSubscribeCmd_RejectsNonNumericAmount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("server should not be called")
	}))
	defer srv.Close()

	if _, err := execute(t, "--url", srv.URL, "subscribe", "--payer", "0.0.1001", "--amount", "abc"); err == nil {
		t.Fatalf("expected error for non-numeric amount")
	}
}

func TestBalanceCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/balance/0.0.1001" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"status":"success","balance":"12.5"}`))
	}))
	defer srv.Close()

	out, err := execute(t, "--url", srv.URL, "balance", "0.0.1001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"balance": "12.5"`) {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestHealthCmd_FailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ready" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"not_ready"}`))
	}))
	defer srv.Close()

	out, err := execute(t, "--url", srv.URL, "health", "--ready")
	if err == nil {
		t.Fatalf("expected error for 503")
	}
	if !strings.Contains(out, "not_ready") {
		t.Fatalf("expected body to be printed, got:\n%s", out)
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	printJSON(&buf, []byte(`{"a":1}`))

	if buf.String() != "{\n  \"a\": 1\n}\n" {
		t.Fatalf("unexpected json output:\n%s", buf.String())
	}

	buf.Reset()
	printJSON(&buf, []byte("plain text"))
	if buf.String() != "plain text\n" {
		t.Fatalf("expected raw passthrough, got %q", buf.String())
	}
}
