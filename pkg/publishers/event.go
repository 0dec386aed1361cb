package publishers

import (
	"time"

	"github.com/bupt-se/hotel-ac-frontdesk/internal/domain"
)

// EventInvoiceCreated is emitted after a successful checkout.
const EventInvoiceCreated = "invoice.created"

// Event represents the payload published downstream.
type Event struct {
	Type        string         `json:"type"`
	RoomID      string         `json:"room_id"`
	Invoice     domain.Invoice `json:"invoice"`
	PublishedAt time.Time      `json:"published_at"`
}

// NewInvoiceEvent constructs the checkout event for inv.
func NewInvoiceEvent(inv domain.Invoice) Event {
	return Event{
		Type:        EventInvoiceCreated,
		RoomID:      inv.RoomID,
		Invoice:     inv,
		PublishedAt: time.Now().UTC(),
	}
}

// attributes are the routing attributes attached to broker messages.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"event_type": e.Type,
		"room_id":    e.RoomID,
	}
}
