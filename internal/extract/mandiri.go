package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/dariusmp/inboxledger/internal/email"
	"github.com/dariusmp/inboxledger/internal/ledger"
)

// Mandiri handles Livin' by Mandiri receipts. One physical sender covers
// three sub-formats (transfer, top-up, QR payment) distinguished by a
// banner line in the body.
type Mandiri struct{}

var (
	mandiriTransferAmount = regexp.MustCompile(`Jumlah Transfer\s*:?\s*([A-Za-z]+)\s*([\d.,]+)`)
	mandiriTopUpTotal     = regexp.MustCompile(`Total Transaksi\s*:?\s*([A-Za-z]+)\s*([\d.,]+)`)
	mandiriTopUpFees      = regexp.MustCompile(`Biaya Transaksi\s*:?\s*([A-Za-z]+)\s*([\d.,]+)`)
	mandiriPaymentAmount  = regexp.MustCompile(`Nominal Transaksi\s*:?\s*([A-Za-z]+)\s*([\d.,]+)`)
	mandiriRecipient      = regexp.MustCompile(`Penerima\s*:?\s*(.+)`)
	mandiriProvider       = regexp.MustCompile(`Penyedia Jasa\s*:?\s*(.+)`)
	mandiriNote           = regexp.MustCompile(`Keterangan\s*:?\s*(.+)`)
	mandiriRef            = regexp.MustCompile(`No\. Referensi\s*:?\s*(\d+)`)
	mandiriQRISRef        = regexp.MustCompile(`No\. Referensi QRIS\s*:?\s*(\d+)`)
	mandiriDate           = regexp.MustCompile(`Tanggal\s*:?\s*(\d{1,2} \w{3} \d{4})`)
	mandiriTime           = regexp.MustCompile(`Jam\s*:?\s*(\d{2}:\d{2}:\d{2})`)
)

// mandiriMonths translates Livin's Indonesian month abbreviations. Mandiri
// abbreviates August as "Agu"; other vendors use "Agt".
var mandiriMonths = map[string]string{
	"Mei": "May",
	"Agu": "Aug",
	"Okt": "Oct",
	"Des": "Dec",
}

func (Mandiri) Name() string { return "mandiri" }

func (Mandiri) Match(title, sender string) bool {
	if !strings.Contains(strings.ToLower(sender), "noreply.livin@bankmandiri.co.id") {
		return false
	}
	t := strings.ToLower(title)
	return strings.Contains(t, "transfer berhasil") ||
		strings.Contains(t, "top-up berhasil") ||
		strings.Contains(t, "pembayaran berhasil")
}

func (e Mandiri) Extract(c *email.Content) ([]*ledger.Record, error) {
	body := c.Plaintext()
	return runSubHandlers(body, []subHandler{
		{when: contains("Transfer Berhasil"), run: e.extractTransfer},
		{when: contains("Top-up Berhasil"), run: e.extractTopUp},
		{when: contains("Pembayaran Berhasil"), run: e.extractPayment},
	}, e.baseRecord)
}

func contains(marker string) func(string) bool {
	return func(body string) bool { return strings.Contains(body, marker) }
}

func (Mandiri) baseRecord() *ledger.Record {
	rec := &ledger.Record{PaymentMethod: "Livin' by Mandiri"}
	rec.SetIncoming(false)
	return rec
}

func (e Mandiri) extractTransfer(body string) ([]*ledger.Record, error) {
	rec := e.baseRecord()

	if err := e.fillAmount(rec, body, mandiriTransferAmount, "transfer amount"); err != nil {
		return nil, err
	}

	rec.SetDescription("")
	if m := mandiriNote.FindStringSubmatch(body); m != nil {
		if note := strings.TrimSpace(m[1]); note != "" && note != "-" {
			rec.SetDescription(note)
		}
	}

	m := mandiriRecipient.FindStringSubmatch(body)
	if m == nil {
		return nil, extractionErrf(e.Name(), "recipient not found")
	}
	rec.Merchant = strings.TrimSpace(m[1])

	if err := e.fillRefAndDate(rec, body); err != nil {
		return nil, err
	}
	return []*ledger.Record{rec}, nil
}

func (e Mandiri) extractTopUp(body string) ([]*ledger.Record, error) {
	rec := e.baseRecord()

	if err := e.fillAmount(rec, body, mandiriTopUpTotal, "top-up total"); err != nil {
		return nil, err
	}
	if m := mandiriTopUpFees.FindStringSubmatch(body); m != nil {
		fees, err := ParseAmount(m[2], ".", ",")
		if err != nil {
			return nil, extractionErrf(e.Name(), "%v", err)
		}
		rec.Fees = fees
	}

	rec.SetDescription("")
	m := mandiriProvider.FindStringSubmatch(body)
	if m == nil {
		return nil, extractionErrf(e.Name(), "service provider not found")
	}
	rec.Merchant = strings.TrimSpace(m[1])

	if err := e.fillRefAndDate(rec, body); err != nil {
		return nil, err
	}
	return []*ledger.Record{rec}, nil
}

func (e Mandiri) extractPayment(body string) ([]*ledger.Record, error) {
	rec := e.baseRecord()

	if err := e.fillAmount(rec, body, mandiriPaymentAmount, "payment amount"); err != nil {
		return nil, err
	}

	rec.SetDescription("")
	m := mandiriRecipient.FindStringSubmatch(body)
	if m == nil {
		return nil, extractionErrf(e.Name(), "merchant not found")
	}
	rec.Merchant = strings.TrimSpace(m[1])

	if m := mandiriQRISRef.FindStringSubmatch(body); m != nil {
		rec.ExtraData = map[string]string{"qris_ref": m[1]}
	}

	if err := e.fillRefAndDate(rec, body); err != nil {
		return nil, err
	}
	return []*ledger.Record{rec}, nil
}

func (e Mandiri) fillAmount(rec *ledger.Record, body string, pattern *regexp.Regexp, what string) error {
	m := pattern.FindStringSubmatch(body)
	if m == nil {
		return extractionErrf(e.Name(), "%s not found", what)
	}
	rec.Currency = CurrencyFromSymbol(m[1])
	amount, err := ParseAmount(m[2], ".", ",")
	if err != nil {
		return extractionErrf(e.Name(), "%v", err)
	}
	rec.SetAmount(amount)
	return nil
}

func (e Mandiri) fillRefAndDate(rec *ledger.Record, body string) error {
	if m := mandiriRef.FindStringSubmatch(body); m != nil {
		rec.TrxID = m[1]
	}

	dm := mandiriDate.FindStringSubmatch(body)
	tm := mandiriTime.FindStringSubmatch(body)
	if dm == nil || tm == nil {
		return extractionErrf(e.Name(), "transaction date or time not found")
	}
	ts, err := time.Parse("2 Jan 2006 15:04:05",
		translateMonths(dm[1], mandiriMonths)+" "+tm[1])
	if err != nil {
		return extractionErrf(e.Name(), "unparsable date %q %q: %v", dm[1], tm[1], err)
	}
	rec.Timestamp = ts
	return nil
}
