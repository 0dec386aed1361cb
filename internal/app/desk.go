package app

import (
	"context"
	"fmt"
	"time"

	"github.com/bupt-se/hotel-ac-frontdesk/internal/config"
	"github.com/bupt-se/hotel-ac-frontdesk/internal/domain"
	"github.com/bupt-se/hotel-ac-frontdesk/internal/logger"
	"github.com/bupt-se/hotel-ac-frontdesk/internal/storage"
	"github.com/bupt-se/hotel-ac-frontdesk/pkg/frontdesk"
	"github.com/bupt-se/hotel-ac-frontdesk/pkg/httpclient"
	"github.com/bupt-se/hotel-ac-frontdesk/pkg/publishers"
)

// Desk is the front-desk runtime. It shares one backend client across all
// operations and archives and announces invoices produced at checkout.
type Desk struct {
	api    *frontdesk.API
	store  storage.Store
	fanout *publishers.Fanout
	log    logger.Logger
}

// NewDesk wires the runtime around client, which the caller constructs once per process.
func NewDesk(ctx context.Context, cfg *config.Config, log logger.Logger, client *httpclient.Client) (*Desk, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if client == nil {
		return nil, fmt.Errorf("http client must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	storeOpts := storage.Options{
		InvoiceTTL:      cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.DebugObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"invoice_ttl_seconds":      int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	return newDesk(frontdesk.New(client), store, fanout, log), nil
}

func newDesk(api *frontdesk.API, store storage.Store, fanout *publishers.Fanout, log logger.Logger) *Desk {
	return &Desk{api: api, store: store, fanout: fanout, log: log}
}

// buildFanout loads the optional publishers file. An empty path disables publishing.
func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if cfg.PublishersFile == "" {
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.DebugObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// PowerOn requests AC service for a room.
func (d *Desk) PowerOn(ctx context.Context, req frontdesk.ACRequest) (bool, error) {
	return d.api.PowerOn(ctx, req)
}

// ChangeState adjusts a running unit.
func (d *Desk) ChangeState(ctx context.Context, req frontdesk.ACRequest) (bool, error) {
	return d.api.ChangeState(ctx, req)
}

// CheckIn registers a customer in a room.
func (d *Desk) CheckIn(ctx context.Context, req frontdesk.CheckInRequest) error {
	return d.api.CheckIn(ctx, req)
}

// CheckOut releases the room, then archives and announces the invoice. Archive
// and publish failures are logged; the checkout itself has already happened.
func (d *Desk) CheckOut(ctx context.Context, roomID string) (domain.Invoice, error) {
	inv, err := d.api.CheckOut(ctx, roomID)
	if err != nil {
		return domain.Invoice{}, err
	}

	if err := d.store.SaveInvoice(inv); err != nil {
		d.log.WarnObj("invoice archive failed", "archive_error", map[string]any{
			"invoice_id": inv.InvoiceID,
			"room_id":    inv.RoomID,
			"error":      err.Error(),
		})
	}

	start := time.Now()
	delivered, err := d.fanout.Publish(ctx, publishers.NewInvoiceEvent(inv))
	if err != nil {
		d.log.WarnObj("invoice publish failed", "publish_error", map[string]any{
			"invoice_id": inv.InvoiceID,
			"delivered":  delivered,
			"error":      err.Error(),
		})
	} else if delivered > 0 {
		d.log.InfoObj("invoice published", "publish_meta", map[string]any{
			"invoice_id": inv.InvoiceID,
			"delivered":  delivered,
			"elapsed_ms": time.Since(start).Milliseconds(),
		})
	}
	return inv, nil
}

// ExportBill fetches the latest bill for a room.
func (d *Desk) ExportBill(ctx context.Context, roomID string) (domain.Bill, error) {
	return d.api.ExportBill(ctx, roomID)
}

// ExportBillCSV fetches the bill export unparsed.
func (d *Desk) ExportBillCSV(ctx context.Context, roomID string) ([]byte, error) {
	return d.api.ExportBillCSV(ctx, roomID)
}

// ExportDetail fetches the service records for a room.
func (d *Desk) ExportDetail(ctx context.Context, roomID string) ([]domain.DetailLine, error) {
	return d.api.ExportDetail(ctx, roomID)
}

// ExportDetailCSV fetches the detail export unparsed.
func (d *Desk) ExportDetailCSV(ctx context.Context, roomID string) ([]byte, error) {
	return d.api.ExportDetailCSV(ctx, roomID)
}

// History lists archived invoices for a room, newest first.
func (d *Desk) History(roomID string) ([]domain.Invoice, error) {
	return d.store.InvoicesForRoom(roomID)
}

// Close releases storage and publisher connections.
func (d *Desk) Close() error {
	if d == nil {
		return nil
	}
	if err := d.fanout.Close(); err != nil {
		d.log.ErrorObj("publisher close failed", "error", err)
	}
	if d.store == nil {
		return nil
	}
	if err := d.store.Close(); err != nil {
		d.log.ErrorObj("storage close failed", "error", err)
		return err
	}
	return nil
}
