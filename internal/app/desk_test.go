package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bupt-se/hotel-ac-frontdesk/internal/config"
	"github.com/bupt-se/hotel-ac-frontdesk/pkg/frontdesk"
	"github.com/bupt-se/hotel-ac-frontdesk/pkg/httpclient"
	"github.com/bupt-se/hotel-ac-frontdesk/pkg/publishers"
)

func testConfig(t *testing.T, publishersFile string) *config.Config {
	t.Helper()
	return &config.Config{
		PublishersFile:         publishersFile,
		StorageType:            "bbolt",
		BBoltPath:              filepath.Join(t.TempDir(), "invoices.db"),
		StorageTTL:             time.Hour,
		StorageCleanupInterval: time.Hour,
	}
}

func newBackendClient(t *testing.T, handler http.HandlerFunc) *httpclient.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := httpclient.New(httpclient.Config{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second}, nil)
	if err != nil {
		t.Fatalf("httpclient.New: %v", err)
	}
	return client
}

func checkoutHandler(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/checkOut" {
			http.NotFound(w, r)
			return
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"code":%d,"msg":"done","data":{"invoice_id":"inv-%s","room_id":"%s","total_amount":88.5,"check_out_date":"2025-12-02T12:00:00"}}`,
			code, body["room_id"], body["room_id"])
	}
}

func TestDeskCheckOutArchivesAndPublishes(t *testing.T) {
	var delivered atomic.Int32
	var got publishers.Event
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode event: %v", err)
		}
		delivered.Add(1)
	}))
	defer sink.Close()

	pubFile := filepath.Join(t.TempDir(), "publishers.yaml")
	raw := fmt.Sprintf("publishers:\n  - id: hook\n    type: http\n    http:\n      url: %s\n", sink.URL)
	if err := os.WriteFile(pubFile, []byte(raw), 0o644); err != nil {
		t.Fatalf("write publishers file: %v", err)
	}

	client := newBackendClient(t, checkoutHandler(200))
	desk, err := NewDesk(context.Background(), testConfig(t, pubFile), nil, client)
	if err != nil {
		t.Fatalf("NewDesk: %v", err)
	}
	defer desk.Close()

	inv, err := desk.CheckOut(context.Background(), "105")
	if err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if inv.InvoiceID != "inv-105" || inv.TotalAmount != 88.5 {
		t.Fatalf("unexpected invoice %+v", inv)
	}

	if delivered.Load() != 1 {
		t.Fatalf("expected one delivered event, got %d", delivered.Load())
	}
	if got.Type != publishers.EventInvoiceCreated || got.Invoice.InvoiceID != "inv-105" {
		t.Fatalf("unexpected event %+v", got)
	}

	history, err := desk.History("105")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].InvoiceID != "inv-105" {
		t.Fatalf("expected archived invoice, got %+v", history)
	}
}

func TestDeskCheckOutFailureArchivesNothing(t *testing.T) {
	client := newBackendClient(t, checkoutHandler(500))
	desk, err := NewDesk(context.Background(), testConfig(t, ""), nil, client)
	if err != nil {
		t.Fatalf("NewDesk: %v", err)
	}
	defer desk.Close()

	_, err = desk.CheckOut(context.Background(), "101")
	var apiErr *frontdesk.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != 500 {
		t.Fatalf("expected APIError 500, got %v", err)
	}

	history, err := desk.History("101")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("failed checkout must not be archived, got %+v", history)
	}
}

func TestDeskCheckOutSurvivesSinkFailure(t *testing.T) {
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer sink.Close()

	pubFile := filepath.Join(t.TempDir(), "publishers.json")
	raw := fmt.Sprintf(`{"publishers":[{"id":"hook","type":"http","http":{"url":%q}}]}`, sink.URL)
	if err := os.WriteFile(pubFile, []byte(raw), 0o644); err != nil {
		t.Fatalf("write publishers file: %v", err)
	}

	client := newBackendClient(t, checkoutHandler(200))
	desk, err := NewDesk(context.Background(), testConfig(t, pubFile), nil, client)
	if err != nil {
		t.Fatalf("NewDesk: %v", err)
	}
	defer desk.Close()

	if _, err := desk.CheckOut(context.Background(), "102"); err != nil {
		t.Fatalf("sink failure must not fail checkout: %v", err)
	}
	if history, _ := desk.History("102"); len(history) != 1 {
		t.Fatalf("invoice should still be archived, got %+v", history)
	}
}

func TestNewDeskValidatesInputs(t *testing.T) {
	client := newBackendClient(t, checkoutHandler(200))
	if _, err := NewDesk(context.Background(), nil, nil, client); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if _, err := NewDesk(context.Background(), testConfig(t, ""), nil, nil); err == nil {
		t.Fatalf("expected error for nil client")
	}
	cfg := testConfig(t, filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := NewDesk(context.Background(), cfg, nil, client); err == nil {
		t.Fatalf("expected error for missing publishers file")
	}
}
