package frontdesk

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

const sampleBill = "\ufeff房间号,入住时间,离开时间,空调总费用(元),房间费用(元),总费用(元)\r\n" +
	"101,2025-12-01 10:00:00,2025-12-02 12:00:00,25.50,100.00,125.50\r\n"

const sampleDetail = "\ufeff房间号,请求时间(系统分),服务开始(系统分),服务结束(系统分),服务时长(秒),风速,当前费用,累积费用\r\n" +
	"101,0.00,0.00,12.00,720,HIGH,12.00,12.00\r\n" +
	"101,15.00,15.00,21.00,,LOW,2.00,14.00\r\n"

func TestExportBill(t *testing.T) {
	api := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/exportBill/101" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(sampleBill))
	})

	bill, err := api.ExportBill(context.Background(), "101")
	if err != nil {
		t.Fatalf("ExportBill: %v", err)
	}
	if bill.RoomID != "101" || bill.ACFee != 25.5 || bill.AccommodationFee != 100 || bill.TotalAmount != 125.5 {
		t.Fatalf("unexpected bill %+v", bill)
	}
	if bill.CheckOutDate != "2025-12-02 12:00:00" {
		t.Fatalf("unexpected check-out date %q", bill.CheckOutDate)
	}
}

func TestExportBillNoInvoice(t *testing.T) {
	api := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("No Invoice"))
	})

	_, err := api.ExportBill(context.Background(), "104")
	if !errors.Is(err, ErrNoInvoice) {
		t.Fatalf("expected ErrNoInvoice, got %v", err)
	}
}

func TestExportDetail(t *testing.T) {
	api := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/exportDetail/101" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(sampleDetail))
	})

	lines, err := api.ExportDetail(context.Background(), "101")
	if err != nil {
		t.Fatalf("ExportDetail: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].DurationSeconds != 720 || lines[0].FanSpeed != "HIGH" || lines[0].EndMinute != 12 {
		t.Fatalf("unexpected first line %+v", lines[0])
	}
	if lines[1].DurationSeconds != 0 || lines[1].CumulativeFee != 14 {
		t.Fatalf("unexpected second line %+v", lines[1])
	}
}

func TestParseDetailHeaderOnly(t *testing.T) {
	lines, err := ParseDetail([]byte("\ufeffa,b,c,d,e,f,g,h\r\n"))
	if err != nil {
		t.Fatalf("ParseDetail: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected no lines, got %d", len(lines))
	}
}

func TestParseBillRejectsMalformed(t *testing.T) {
	if _, err := ParseBill([]byte("a,b\n1,2\n")); err == nil {
		t.Fatalf("expected column count error")
	}
	if _, err := ParseBill([]byte("a,b,c,d,e,f\n101,x,y,abc,1,2\n")); err == nil {
		t.Fatalf("expected number parse error")
	}
	if _, err := ParseBill([]byte("a,b,c,d,e,f\n")); err == nil {
		t.Fatalf("expected missing data row error")
	}
}

func TestExportRequiresRoom(t *testing.T) {
	api := New(nil)
	if _, err := api.ExportDetailCSV(context.Background(), " "); err == nil {
		t.Fatalf("expected error for empty room id")
	}
}
