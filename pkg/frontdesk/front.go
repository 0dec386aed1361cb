package frontdesk

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bupt-se/hotel-ac-frontdesk/internal/domain"
)

// CheckInRequest registers a customer in a room.
type CheckInRequest struct {
	RoomID     string `json:"room_id"`
	CustomerID string `json:"customer_id"`
	IDNumber   string `json:"id_number"`
}

// CheckIn assigns a room to a customer, creating the customer when unknown.
func (a *API) CheckIn(ctx context.Context, req CheckInRequest) error {
	if strings.TrimSpace(req.RoomID) == "" {
		return errors.New("check in: room id is required")
	}
	if strings.TrimSpace(req.CustomerID) == "" {
		return fmt.Errorf("check in: customer id is required for room %s", req.RoomID)
	}
	return a.postJSON(ctx, "check in", "/checkIn", req, nil)
}

// CheckOut releases a room and returns the generated invoice.
func (a *API) CheckOut(ctx context.Context, roomID string) (domain.Invoice, error) {
	if strings.TrimSpace(roomID) == "" {
		return domain.Invoice{}, errors.New("check out: room id is required")
	}
	var inv domain.Invoice
	body := map[string]string{"room_id": roomID}
	if err := a.postJSON(ctx, "check out", "/checkOut", body, &inv); err != nil {
		return domain.Invoice{}, err
	}
	return inv, nil
}

func roomPath(prefix, roomID string) (string, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return "", errors.New("room id is required")
	}
	return prefix + "/" + url.PathEscape(roomID), nil
}
