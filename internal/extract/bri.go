package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/dariusmp/inboxledger/internal/email"
	"github.com/dariusmp/inboxledger/internal/ledger"
)

// BRI sends BRImo receipts from noreply@bri.co.id with "Berhasil" in the
// subject. Two template families: top-ups (e-wallet, pulsa) and transfers
// /payments; the subject line carries the family.
type BRI struct{}

var (
	briTopUpDate    = regexp.MustCompile(`(\d{1,2} \w+ \d{4}, \d{2}:\d{2}:\d{2}) WIB`)
	briTopUpRef     = regexp.MustCompile(`No\. Ref\s*:?\s*(\S+)`)
	briTopUpTarget  = regexp.MustCompile(`ShopeePay|DANA|OVO|Gopay|Nama Tujuan`)
	briNominalBare  = regexp.MustCompile(`Nominal\s*:?\s*Rp([\d.]+)`)
	briFeesBare     = regexp.MustCompile(`Biaya Admin\s*:?\s*Rp([\d.]+)`)
	briTransferDate = regexp.MustCompile(`Tanggal\s*:\s*(\d{1,2} \w+ \d{4}) ?, ?(\d{2}:\d{2}:\d{2}) WIB`)
	briTransferRef  = regexp.MustCompile(`Nomor Referensi\s*:\s*(\S+)`)
	briRecipient    = regexp.MustCompile(`Nama Tujuan\s*:\s*(.+)`)
	briNote         = regexp.MustCompile(`Catatan\s*:?\s*(.+)`)
)

// briMonths translates the full Indonesian month names BRI renders.
var briMonths = map[string]string{
	"Januari":  "January",
	"Februari": "February",
	"Maret":    "March",
	"Mei":      "May",
	"Juni":     "June",
	"Juli":     "July",
	"Agustus":  "August",
	"Oktober":  "October",
	"Desember": "December",
}

func (BRI) Name() string { return "bri" }

func (BRI) Match(title, sender string) bool {
	return sender == "noreply@bri.co.id" && strings.Contains(title, "Berhasil")
}

func (e BRI) Extract(c *email.Content) ([]*ledger.Record, error) {
	body := c.Plaintext()
	title := c.Title()

	switch {
	case strings.Contains(title, "Top Up"):
		return e.extractTopUp(body)
	case strings.Contains(title, "Pembelian"),
		strings.Contains(title, "Pembayaran"),
		strings.Contains(title, "Pemindahan Dana"):
		return e.extractTransfer(body)
	default:
		rec := e.baseRecord()
		rec.SetDescription(UnknownTransactionType)
		return []*ledger.Record{rec}, nil
	}
}

func (BRI) baseRecord() *ledger.Record {
	rec := &ledger.Record{Currency: "IDR", PaymentMethod: "BRImo"}
	rec.SetIncoming(false)
	return rec
}

func (e BRI) extractTopUp(body string) ([]*ledger.Record, error) {
	rec := e.baseRecord()

	m := briTopUpDate.FindStringSubmatch(body)
	if m == nil {
		return nil, extractionErrf(e.Name(), "transaction date not found")
	}
	ts, err := time.Parse("2 January 2006, 15:04:05", translateMonths(m[1], briMonths))
	if err != nil {
		return nil, extractionErrf(e.Name(), "unparsable date %q: %v", m[1], err)
	}
	rec.Timestamp = ts

	m = briTopUpRef.FindStringSubmatch(body)
	if m == nil {
		return nil, extractionErrf(e.Name(), "reference number not found")
	}
	rec.TrxID = m[1]

	target := "Unknown Recipient"
	if m := briTopUpTarget.FindStringSubmatch(body); m != nil {
		target = m[0]
	}
	rec.Merchant = target
	rec.SetDescription("Top Up " + target)

	m = briNominalBare.FindStringSubmatch(body)
	if m == nil {
		return nil, extractionErrf(e.Name(), "nominal not found")
	}
	amount, err := ParseAmount(m[1], ".", "")
	if err != nil {
		return nil, extractionErrf(e.Name(), "%v", err)
	}
	rec.SetAmount(amount)

	if m := briFeesBare.FindStringSubmatch(body); m != nil {
		fees, err := ParseAmount(m[1], ".", "")
		if err != nil {
			return nil, extractionErrf(e.Name(), "%v", err)
		}
		rec.Fees = fees
	}

	return []*ledger.Record{rec}, nil
}

func (e BRI) extractTransfer(body string) ([]*ledger.Record, error) {
	rec := e.baseRecord()

	m := briTransferDate.FindStringSubmatch(body)
	if m == nil {
		return nil, extractionErrf(e.Name(), "transaction date not found")
	}
	ts, err := time.Parse("2 January 2006 15:04:05",
		translateMonths(m[1], briMonths)+" "+m[2])
	if err != nil {
		return nil, extractionErrf(e.Name(), "unparsable date %q: %v", m[1], err)
	}
	rec.Timestamp = ts

	m = briTransferRef.FindStringSubmatch(body)
	if m == nil {
		return nil, extractionErrf(e.Name(), "reference number not found")
	}
	rec.TrxID = m[1]

	recipient := "Unknown Recipient"
	if m := briRecipient.FindStringSubmatch(body); m != nil {
		recipient = strings.TrimSpace(m[1])
	}
	rec.Merchant = recipient
	rec.SetDescription("Transfer to " + recipient)
	if m := briNote.FindStringSubmatch(body); m != nil {
		if note := strings.TrimSpace(m[1]); note != "" && note != "-" {
			rec.SetDescription(note)
		}
	}

	m = briNominalBare.FindStringSubmatch(body)
	if m == nil {
		return nil, extractionErrf(e.Name(), "nominal not found")
	}
	amount, err := ParseAmount(m[1], ".", "")
	if err != nil {
		return nil, extractionErrf(e.Name(), "%v", err)
	}
	rec.SetAmount(amount)

	m = briFeesBare.FindStringSubmatch(body)
	if m == nil {
		return nil, extractionErrf(e.Name(), "admin fee not found")
	}
	fees, err := ParseAmount(m[1], ".", "")
	if err != nil {
		return nil, extractionErrf(e.Name(), "%v", err)
	}
	rec.Fees = fees

	return []*ledger.Record{rec}, nil
}
