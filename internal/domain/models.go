// Package domain contains core models shared by the API client, archive and publishers.
package domain

// FanSpeed is the air-conditioner fan setting understood by the scheduler.
type FanSpeed string

const (
	FanLow    FanSpeed = "LOW"
	FanMedium FanSpeed = "MEDIUM"
	FanHigh   FanSpeed = "HIGH"
)

// Valid reports whether f is one of the known speeds.
func (f FanSpeed) Valid() bool {
	switch f {
	case FanLow, FanMedium, FanHigh:
		return true
	}
	return false
}

// Invoice is the checkout bill produced by the backend.
type Invoice struct {
	InvoiceID        string  `json:"invoice_id"`
	RoomID           string  `json:"room_id"`
	CustomerID       string  `json:"customer_id"`
	CheckInDate      string  `json:"check_in_date"`
	CheckOutDate     string  `json:"check_out_date"`
	AccommodationFee float64 `json:"accommodation_fee"`
	ACFee            float64 `json:"ac_fee"`
	TotalAmount      float64 `json:"total_amount"`
	CreateTime       string  `json:"create_time"`
}

// Bill is the summary row of an exported bill.
type Bill struct {
	RoomID           string  `json:"room_id"`
	CheckInDate      string  `json:"check_in_date"`
	CheckOutDate     string  `json:"check_out_date"`
	ACFee            float64 `json:"ac_fee"`
	AccommodationFee float64 `json:"accommodation_fee"`
	TotalAmount      float64 `json:"total_amount"`
}

// DetailLine is one service record of an exported detail list. Times are in
// simulated system minutes.
type DetailLine struct {
	RoomID          string  `json:"room_id"`
	RequestMinute   float64 `json:"request_minute"`
	StartMinute     float64 `json:"start_minute"`
	EndMinute       float64 `json:"end_minute"`
	DurationSeconds int     `json:"duration_seconds"`
	FanSpeed        string  `json:"fan_speed"`
	Fee             float64 `json:"fee"`
	CumulativeFee   float64 `json:"cumulative_fee"`
}
