package frontdesk

import (
	"context"
	"fmt"
	"strings"

	"github.com/bupt-se/hotel-ac-frontdesk/internal/domain"
)

// ACRequest asks the scheduler to power a room's unit or change its state.
type ACRequest struct {
	RoomID     string          `json:"roomId"`
	TargetTemp float64         `json:"targetTemp"`
	FanSpeed   domain.FanSpeed `json:"fanSpeed"`
}

func (r ACRequest) validate() error {
	if strings.TrimSpace(r.RoomID) == "" {
		return fmt.Errorf("room id is required")
	}
	if r.TargetTemp == 0 {
		return fmt.Errorf("target temperature is required for room %s", r.RoomID)
	}
	if !r.FanSpeed.Valid() {
		return fmt.Errorf("invalid fan speed %q for room %s", r.FanSpeed, r.RoomID)
	}
	return nil
}

// PowerOn requests service for a room. It reports whether the scheduler accepted it.
func (a *API) PowerOn(ctx context.Context, req ACRequest) (bool, error) {
	return a.acCall(ctx, "power on", "/powerOn", req)
}

// ChangeState adjusts target temperature or fan speed for a running unit.
func (a *API) ChangeState(ctx context.Context, req ACRequest) (bool, error) {
	return a.acCall(ctx, "change state", "/changeState", req)
}

func (a *API) acCall(ctx context.Context, op, path string, req ACRequest) (bool, error) {
	if err := req.validate(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	var accepted bool
	if err := a.postJSON(ctx, op, path, req, &accepted); err != nil {
		return false, err
	}
	return accepted, nil
}
