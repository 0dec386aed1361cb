package frontdesk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bupt-se/hotel-ac-frontdesk/internal/domain"
	"github.com/bupt-se/hotel-ac-frontdesk/pkg/httpclient"
)

// newBackend serves handler under /api and returns an API bound to it.
func newBackend(t *testing.T, handler http.HandlerFunc) *API {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := httpclient.New(httpclient.Config{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second}, nil)
	if err != nil {
		t.Fatalf("httpclient.New: %v", err)
	}
	return New(client)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestPowerOnSendsSchedulerRequest(t *testing.T) {
	var got map[string]any
	api := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/powerOn" || r.Method != http.MethodPost {
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		writeJSON(t, w, map[string]any{"code": 200, "msg": "success", "data": true})
	})

	accepted, err := api.PowerOn(context.Background(), ACRequest{RoomID: "101", TargetTemp: 25, FanSpeed: domain.FanMedium})
	if err != nil {
		t.Fatalf("PowerOn: %v", err)
	}
	if !accepted {
		t.Fatalf("expected request to be accepted")
	}
	if got["roomId"] != "101" || got["targetTemp"] != float64(25) || got["fanSpeed"] != "MEDIUM" {
		t.Fatalf("unexpected request body %v", got)
	}
}

func TestChangeStateReportsBackendFailure(t *testing.T) {
	api := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"code": 500, "msg": "room not powered", "data": nil})
	})

	_, err := api.ChangeState(context.Background(), ACRequest{RoomID: "102", TargetTemp: 26, FanSpeed: domain.FanHigh})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != 500 || apiErr.Msg != "room not powered" || apiErr.Op != "change state" {
		t.Fatalf("unexpected APIError %#v", apiErr)
	}
}

func TestACRequestValidation(t *testing.T) {
	api := New(callerFunc(func(context.Context, httpclient.Request) ([]byte, error) {
		t.Fatalf("client must not be called for invalid requests")
		return nil, nil
	}))

	cases := []ACRequest{
		{TargetTemp: 25, FanSpeed: domain.FanLow},
		{RoomID: "101", FanSpeed: domain.FanLow},
		{RoomID: "101", TargetTemp: 25, FanSpeed: "TURBO"},
	}
	for _, c := range cases {
		if _, err := api.PowerOn(context.Background(), c); err == nil {
			t.Fatalf("expected validation error for %+v", c)
		}
	}
}

func TestCheckInAndCheckOut(t *testing.T) {
	api := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch r.URL.Path {
		case "/api/checkIn":
			if body["room_id"] != "103" || body["customer_id"] != "c1" || body["id_number"] != "110101" {
				t.Errorf("unexpected check-in body %v", body)
			}
			writeJSON(t, w, map[string]any{"code": 200, "msg": "Check-in Success"})
		case "/api/checkOut":
			writeJSON(t, w, map[string]any{"code": 200, "msg": "Check-out Success", "data": map[string]any{
				"invoice_id":        "inv-1",
				"room_id":           body["room_id"],
				"customer_id":       "c1",
				"accommodation_fee": 100.0,
				"ac_fee":            12.5,
				"total_amount":      112.5,
			}})
		default:
			http.NotFound(w, r)
		}
	})

	if err := api.CheckIn(context.Background(), CheckInRequest{RoomID: "103", CustomerID: "c1", IDNumber: "110101"}); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	inv, err := api.CheckOut(context.Background(), "103")
	if err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if inv.InvoiceID != "inv-1" || inv.RoomID != "103" || inv.TotalAmount != 112.5 {
		t.Fatalf("unexpected invoice %+v", inv)
	}
}

func TestCheckInUnknownRoom(t *testing.T) {
	api := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"code": 404, "msg": "No Room"})
	})

	err := api.CheckIn(context.Background(), CheckInRequest{RoomID: "999", CustomerID: "c1"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != 404 {
		t.Fatalf("expected 404 APIError, got %v", err)
	}
}

func TestTransportErrorsPassThroughUnchanged(t *testing.T) {
	sentinel := &httpclient.Error{Kind: httpclient.KindNetwork}
	api := New(callerFunc(func(context.Context, httpclient.Request) ([]byte, error) {
		return nil, sentinel
	}))

	if _, err := api.CheckOut(context.Background(), "101"); err != sentinel {
		t.Fatalf("expected transport error unchanged, got %v", err)
	}
}

func TestNilAPI(t *testing.T) {
	var api *API
	if err := api.CheckIn(context.Background(), CheckInRequest{RoomID: "1", CustomerID: "c"}); !errors.Is(err, errNotInitialized) {
		t.Fatalf("expected not initialized error, got %v", err)
	}
}

type callerFunc func(ctx context.Context, req httpclient.Request) ([]byte, error)

func (f callerFunc) Do(ctx context.Context, req httpclient.Request) ([]byte, error) {
	return f(ctx, req)
}
