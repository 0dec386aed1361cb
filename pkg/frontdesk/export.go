package frontdesk

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bupt-se/hotel-ac-frontdesk/internal/domain"
)

// ErrNoInvoice is returned when the room has never been checked out.
var ErrNoInvoice = errors.New("no invoice for room")

const (
	noInvoiceBody = "No Invoice"
	billColumns   = 6
	detailColumns = 8
	utf8BOM       = "\ufeff"
)

// ExportBillCSV downloads the bill export exactly as served.
func (a *API) ExportBillCSV(ctx context.Context, roomID string) ([]byte, error) {
	path, err := roomPath("/exportBill", roomID)
	if err != nil {
		return nil, fmt.Errorf("export bill: %w", err)
	}
	raw, err := a.getRaw(ctx, path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(raw)) == noInvoiceBody {
		return nil, fmt.Errorf("export bill for room %s: %w", roomID, ErrNoInvoice)
	}
	return raw, nil
}

// ExportBill downloads and parses the latest bill for a room.
func (a *API) ExportBill(ctx context.Context, roomID string) (domain.Bill, error) {
	raw, err := a.ExportBillCSV(ctx, roomID)
	if err != nil {
		return domain.Bill{}, err
	}
	return ParseBill(raw)
}

// ExportDetailCSV downloads the detail export exactly as served.
func (a *API) ExportDetailCSV(ctx context.Context, roomID string) ([]byte, error) {
	path, err := roomPath("/exportDetail", roomID)
	if err != nil {
		return nil, fmt.Errorf("export detail: %w", err)
	}
	return a.getRaw(ctx, path)
}

// ExportDetail downloads and parses the service records of a room.
func (a *API) ExportDetail(ctx context.Context, roomID string) ([]domain.DetailLine, error) {
	raw, err := a.ExportDetailCSV(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return ParseDetail(raw)
}

// ParseBill decodes a bill export: one header row and one data row.
func ParseBill(raw []byte) (domain.Bill, error) {
	rows, err := readCSV(raw, billColumns)
	if err != nil {
		return domain.Bill{}, fmt.Errorf("parse bill: %w", err)
	}
	if len(rows) == 0 {
		return domain.Bill{}, errors.New("parse bill: no data row")
	}

	r := rows[0]
	var p numParser
	bill := domain.Bill{
		RoomID:           r[0],
		CheckInDate:      r[1],
		CheckOutDate:     r[2],
		ACFee:            p.float(r[3]),
		AccommodationFee: p.float(r[4]),
		TotalAmount:      p.float(r[5]),
	}
	if p.err != nil {
		return domain.Bill{}, fmt.Errorf("parse bill: %w", p.err)
	}
	return bill, nil
}

// ParseDetail decodes a detail export. An export with only a header yields no lines.
func ParseDetail(raw []byte) ([]domain.DetailLine, error) {
	rows, err := readCSV(raw, detailColumns)
	if err != nil {
		return nil, fmt.Errorf("parse detail: %w", err)
	}

	lines := make([]domain.DetailLine, 0, len(rows))
	for i, r := range rows {
		var p numParser
		line := domain.DetailLine{
			RoomID:          r[0],
			RequestMinute:   p.float(r[1]),
			StartMinute:     p.float(r[2]),
			EndMinute:       p.float(r[3]),
			DurationSeconds: p.int(r[4]),
			FanSpeed:        r[5],
			Fee:             p.float(r[6]),
			CumulativeFee:   p.float(r[7]),
		}
		if p.err != nil {
			return nil, fmt.Errorf("parse detail row %d: %w", i+1, p.err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// readCSV strips the BOM and header row and checks the column count.
func readCSV(raw []byte, columns int) ([][]string, error) {
	raw = bytes.TrimPrefix(raw, []byte(utf8BOM))
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = columns

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("missing header row")
	}
	return records[1:], nil
}

// numParser keeps the first conversion error.
type numParser struct {
	err error
}

func (p *numParser) float(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func (p *numParser) int(s string) int {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}
