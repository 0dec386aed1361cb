package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/bupt-se/hotel-ac-frontdesk/internal/domain"
)

// Package storage provides the local invoice archive.

// Store keeps checkout invoices for later lookup.
type Store interface {
	Close() error
	SaveInvoice(inv domain.Invoice) error
	Invoice(id string) (domain.Invoice, bool, error)
	InvoicesForRoom(roomID string) ([]domain.Invoice, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	InvoiceTTL      time.Duration
	CleanupInterval time.Duration
}

const (
	defaultInvoiceTTL      = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.InvoiceTTL <= 0 {
		opts.InvoiceTTL = defaultInvoiceTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                                     { return nil }
func (noopStore) SaveInvoice(domain.Invoice) error                 { return nil }
func (noopStore) Invoice(string) (domain.Invoice, bool, error)     { return domain.Invoice{}, false, nil }
func (noopStore) InvoicesForRoom(string) ([]domain.Invoice, error) { return nil, nil }
