package extract

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const seabankTransferBody = `Halo ROHIMA,
Transaksi kamu sudah berhasil dengan rincian berikut:
Jenis Transaksi
Real Time (BI-FAST)
Rekening Tujuan
FERNANDO
Bank Tujuan
BANK BCA
Catatan
-
Jumlah
Rp200.000
No. Referensi
20241122770012345678
Waktu Transaksi
22 Nov 2024 18:48
`

const seabankPaymentBody = `Halo ROHIMA,
Transaksi kamu sudah berhasil dengan rincian berikut:
Jenis Transaksi
SeaBank Bayar Instan
Nama Merchant
SHOPEE
Jumlah
Rp48.500
No. Referensi
20240817660098765432
Waktu Transaksi
17 Agt 2024 09:30
`

func TestSeaBank_Match(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		sender string
		want   bool
	}{
		{"transaction alert", "Notifikasi Transaksi SeaBank", "alerts@seabank.co.id", true},
		{"transfer alert", "Notifikasi Transfer SeaBank", "alerts@seabank.co.id", true},
		{"wrong sender", "Notifikasi Transaksi SeaBank", "marketing@seabank.co.id", false},
		{"statement mail", "Laporan Bulanan SeaBank", "alerts@seabank.co.id", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (SeaBank{}).Match(tt.title, tt.sender); got != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.title, tt.sender, got, tt.want)
			}
		})
	}
}

func TestSeaBank_ExtractTransfer(t *testing.T) {
	c := newTestEmail("alerts@seabank.co.id", "Notifikasi Transfer SeaBank", seabankTransferBody)

	recs, err := (SeaBank{}).Extract(c)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("Extract() returned %d records, want 1", len(recs))
	}

	rec := recs[0]
	if rec.Merchant != "FERNANDO" {
		t.Errorf("Merchant = %q, want FERNANDO", rec.Merchant)
	}
	if !rec.Amount.Decimal.Equal(decimal.NewFromInt(200000)) {
		t.Errorf("Amount = %s, want 200000", rec.Amount.Decimal)
	}
	if rec.TrxID != "20241122770012345678" {
		t.Errorf("TrxID = %q", rec.TrxID)
	}
	if rec.PaymentMethod != "SeaBank" {
		t.Errorf("PaymentMethod = %q, want SeaBank", rec.PaymentMethod)
	}
	want := time.Date(2024, 11, 22, 18, 48, 0, 0, time.UTC)
	if !rec.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", rec.Timestamp, want)
	}
	if !rec.Proper() {
		t.Errorf("record not proper, missing %v", rec.MissingFields())
	}
}

func TestSeaBank_ExtractInstantPayment(t *testing.T) {
	c := newTestEmail("alerts@seabank.co.id", "Notifikasi Transaksi SeaBank", seabankPaymentBody)

	recs, err := (SeaBank{}).Extract(c)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	rec := recs[0]
	if rec.Merchant != "SHOPEE" {
		t.Errorf("Merchant = %q, want SHOPEE", rec.Merchant)
	}
	if !rec.Amount.Decimal.Equal(decimal.NewFromInt(48500)) {
		t.Errorf("Amount = %s, want 48500", rec.Amount.Decimal)
	}
	want := time.Date(2024, 8, 17, 9, 30, 0, 0, time.UTC)
	if !rec.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v (Agt translated)", rec.Timestamp, want)
	}
}

func TestSeaBank_ExtractUnknownFormat(t *testing.T) {
	c := newTestEmail("alerts@seabank.co.id", "Notifikasi Transaksi SeaBank", "Jenis Transaksi\nQRIS Lintas Negara\n")

	recs, err := (SeaBank{}).Extract(c)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("Extract() returned %d records, want 1", len(recs))
	}
	if recs[0].Description == nil || *recs[0].Description != UnknownTransactionType {
		t.Errorf("Description = %v, want sentinel %q", recs[0].Description, UnknownTransactionType)
	}
}
