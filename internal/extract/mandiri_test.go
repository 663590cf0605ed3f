package extract

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const mandiriTransferBody = `Transfer Berhasil
Penerima : ROHIMA MUKTI
Bank Tujuan : BANK BCA
No. Rekening : 6120487688
Keterangan : -
Jumlah Transfer : Rp200.406,00
No. Referensi : 2411221037461234
Tanggal : 22 Nov 2024
Jam : 10:37:46 WIB
`

const mandiriPaymentBody = `Pembayaran Berhasil
Penerima : KOPI KENANGAN
Nominal Transaksi : Rp27.000,00
No. Referensi : 2408151201339999
No. Referensi QRIS : 410815678901
Tanggal : 15 Agu 2024
Jam : 12:01:33 WIB
`

func TestMandiri_Match(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		sender string
		want   bool
	}{
		{"transfer", "Transfer Berhasil", "noreply.livin@bankmandiri.co.id", true},
		{"payment", "Pembayaran Berhasil", "noreply.livin@bankmandiri.co.id", true},
		{"top-up", "Top-up Berhasil", "noreply.livin@bankmandiri.co.id", true},
		{"wrong sender", "Transfer Berhasil", "noreply@bri.co.id", false},
		{"marketing mail", "Promo spesial Livin'", "noreply.livin@bankmandiri.co.id", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Mandiri{}).Match(tt.title, tt.sender); got != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.title, tt.sender, got, tt.want)
			}
		})
	}
}

func TestMandiri_ExtractTransfer(t *testing.T) {
	c := newTestEmail("noreply.livin@bankmandiri.co.id", "Transfer Berhasil", mandiriTransferBody)

	recs, err := (Mandiri{}).Extract(c)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("Extract() returned %d records, want 1", len(recs))
	}

	rec := recs[0]
	if !rec.Amount.Decimal.Equal(decimal.NewFromInt(200406)) {
		t.Errorf("Amount = %s, want 200406", rec.Amount.Decimal)
	}
	if rec.Currency != "IDR" {
		t.Errorf("Currency = %q, want IDR", rec.Currency)
	}
	if rec.Merchant != "ROHIMA MUKTI" {
		t.Errorf("Merchant = %q, want ROHIMA MUKTI", rec.Merchant)
	}
	if rec.TrxID != "2411221037461234" {
		t.Errorf("TrxID = %q", rec.TrxID)
	}
	if rec.PaymentMethod != "Livin' by Mandiri" {
		t.Errorf("PaymentMethod = %q", rec.PaymentMethod)
	}
	want := time.Date(2024, 11, 22, 10, 37, 46, 0, time.UTC)
	if !rec.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", rec.Timestamp, want)
	}
	if !rec.Proper() {
		t.Errorf("record not proper, missing %v", rec.MissingFields())
	}
}

func TestMandiri_ExtractPayment(t *testing.T) {
	c := newTestEmail("noreply.livin@bankmandiri.co.id", "Pembayaran Berhasil", mandiriPaymentBody)

	recs, err := (Mandiri{}).Extract(c)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	rec := recs[0]
	if rec.Merchant != "KOPI KENANGAN" {
		t.Errorf("Merchant = %q, want KOPI KENANGAN", rec.Merchant)
	}
	if !rec.Amount.Decimal.Equal(decimal.NewFromInt(27000)) {
		t.Errorf("Amount = %s, want 27000", rec.Amount.Decimal)
	}
	if rec.ExtraData["qris_ref"] != "410815678901" {
		t.Errorf("ExtraData[qris_ref] = %q", rec.ExtraData["qris_ref"])
	}
	want := time.Date(2024, 8, 15, 12, 1, 33, 0, time.UTC)
	if !rec.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v (Agu translated)", rec.Timestamp, want)
	}
}

// A Livin' mail whose body carries none of the known banners falls back
// to the sentinel record instead of failing.
func TestMandiri_ExtractUnknownFormat(t *testing.T) {
	c := newTestEmail("noreply.livin@bankmandiri.co.id", "Transfer Berhasil", "Format baru tanpa banner.")

	recs, err := (Mandiri{}).Extract(c)
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
