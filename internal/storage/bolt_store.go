package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bupt-se/hotel-ac-frontdesk/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	invoiceBucket    = "invoices"
	expiryValueBytes = 8
)

var errBucketMissing = errors.New("invoice bucket missing")

// boltStore implements a Store backed by BoltDB. Values are an 8-byte
// big-endian expiry followed by the JSON invoice.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	invoiceTTL      time.Duration
	cleanupInterval time.Duration
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(invoiceBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		invoiceTTL:      opts.InvoiceTTL,
		cleanupInterval: opts.CleanupInterval,
	}
	store.lastCleanup.Store(time.Now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// SaveInvoice stores inv under its invoice id, replacing any previous copy.
func (b *boltStore) SaveInvoice(inv domain.Invoice) error {
	if b == nil || b.db == nil {
		return nil
	}
	id := strings.TrimSpace(inv.InvoiceID)
	if id == "" {
		return fmt.Errorf("invoice id is empty")
	}

	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	payload, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("marshal invoice: %w", err)
	}
	buf := make([]byte, expiryValueBytes, expiryValueBytes+len(payload))
	binary.BigEndian.PutUint64(buf, uint64(now.Add(b.invoiceTTL).Unix()))
	buf = append(buf, payload...)

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(invoiceBucket))
		if bucket == nil {
			return errBucketMissing
		}
		return bucket.Put([]byte(id), buf)
	})
}

// Invoice looks up an archived invoice. Expired entries are deleted and reported missing.
func (b *boltStore) Invoice(id string) (domain.Invoice, bool, error) {
	if b == nil || b.db == nil {
		return domain.Invoice{}, false, nil
	}
	if err := b.maybeCleanupExpired(time.Now()); err != nil {
		return domain.Invoice{}, false, err
	}

	var (
		inv   domain.Invoice
		found bool
	)
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(invoiceBucket))
		if bucket == nil {
			return errBucketMissing
		}

		key := []byte(id)
		value := bucket.Get(key)
		if value == nil {
			return nil
		}

		decoded, ok := decodeEntry(value, time.Now())
		if !ok {
			return bucket.Delete(key)
		}
		inv, found = decoded, true
		return nil
	})
	return inv, found, err
}

// InvoicesForRoom lists live invoices for a room, newest first.
func (b *boltStore) InvoicesForRoom(roomID string) ([]domain.Invoice, error) {
	if b == nil || b.db == nil {
		return nil, nil
	}
	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return nil, err
	}

	var out []domain.Invoice
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(invoiceBucket))
		if bucket == nil {
			return errBucketMissing
		}
		return bucket.ForEach(func(_, v []byte) error {
			if inv, ok := decodeEntry(v, now); ok && inv.RoomID == roomID {
				out = append(out, inv)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CheckOutDate > out[j].CheckOutDate
	})
	return out, nil
}

// maybeCleanupExpired removes expired invoices on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(invoiceBucket))
		if bucket == nil {
			return errBucketMissing
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			expiry, ok := decodeExpiry(v)
			if !ok || !expiry.After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

// decodeEntry returns the invoice stored in value if it has not expired.
func decodeEntry(value []byte, now time.Time) (domain.Invoice, bool) {
	expiry, ok := decodeExpiry(value)
	if !ok || !expiry.After(now) {
		return domain.Invoice{}, false
	}
	var inv domain.Invoice
	if err := json.Unmarshal(value[expiryValueBytes:], &inv); err != nil {
		return domain.Invoice{}, false
	}
	return inv, true
}

// decodeExpiry decodes the expiry time from the stored byte slice.
func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) < expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryValueBytes]))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
