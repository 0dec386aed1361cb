package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/bupt-se/hotel-ac-frontdesk/internal/domain"
)

func TestBoltStoreSavesAndExpiresInvoices(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		InvoiceTTL:      1 * time.Second,
		CleanupInterval: 1 * time.Second,
	}

	storeRaw, err := openBolt(filepath.Join(dir, "invoices.db"), opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	if _, found, err := store.Invoice("inv-1"); err != nil || found {
		t.Fatalf("expected missing invoice, found=%v err=%v", found, err)
	}

	inv := domain.Invoice{InvoiceID: "inv-1", RoomID: "101", TotalAmount: 125.5}
	if err := store.SaveInvoice(inv); err != nil {
		t.Fatalf("SaveInvoice: %v", err)
	}

	got, found, err := store.Invoice("inv-1")
	if err != nil || !found {
		t.Fatalf("expected archived invoice, found=%v err=%v", found, err)
	}
	if got != inv {
		t.Fatalf("unexpected invoice %+v", got)
	}

	// Fast-forward cleanup cadence and trigger expiry.
	store.lastCleanup.Store(time.Now().Add(-2 * time.Second).Unix())
	time.Sleep(1100 * time.Millisecond)

	if _, found, err := store.Invoice("inv-1"); err != nil || found {
		t.Fatalf("expected entry to expire, found=%v err=%v", found, err)
	}
}

func TestBoltStoreInvoicesForRoom(t *testing.T) {
	storeRaw, err := openBolt(filepath.Join(t.TempDir(), "nested", "invoices.db"), normalizeOptions(Options{}))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	defer storeRaw.Close()

	for _, inv := range []domain.Invoice{
		{InvoiceID: "a", RoomID: "101", CheckOutDate: "2025-12-01T10:00:00"},
		{InvoiceID: "b", RoomID: "102", CheckOutDate: "2025-12-01T11:00:00"},
		{InvoiceID: "c", RoomID: "101", CheckOutDate: "2025-12-03T09:00:00"},
	} {
		if err := storeRaw.SaveInvoice(inv); err != nil {
			t.Fatalf("SaveInvoice %s: %v", inv.InvoiceID, err)
		}
	}

	got, err := storeRaw.InvoicesForRoom("101")
	if err != nil {
		t.Fatalf("InvoicesForRoom: %v", err)
	}
	if len(got) != 2 || got[0].InvoiceID != "c" || got[1].InvoiceID != "a" {
		t.Fatalf("expected [c a], got %+v", got)
	}
}

func TestBoltStoreRejectsEmptyID(t *testing.T) {
	storeRaw, err := openBolt(filepath.Join(t.TempDir(), "invoices.db"), normalizeOptions(Options{}))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	defer storeRaw.Close()

	if err := storeRaw.SaveInvoice(domain.Invoice{RoomID: "101"}); err == nil {
		t.Fatalf("expected error for empty invoice id")
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.SaveInvoice(domain.Invoice{InvoiceID: "x"}); err != nil {
		t.Fatalf("noop store SaveInvoice: %v", err)
	}
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected unsupported storage type error")
	}
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for missing bbolt path")
	}
}
