package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/dariusmp/inboxledger/internal/email"
	"github.com/dariusmp/inboxledger/internal/ledger"
)

// SeaBank transaction alerts come from alerts@seabank.co.id. Two
// sub-formats: instant merchant payments and BI-FAST transfers, told apart
// by the "Jenis Transaksi" value in the body.
type SeaBank struct{}

var (
	seabankAmount   = regexp.MustCompile(`Jumlah\s*:?\s*[\r\n ]*Rp([\d.,]+)`)
	seabankNote     = regexp.MustCompile(`Catatan\s*:?\s*[\r\n ]*(\S+)`)
	seabankMerchant = regexp.MustCompile(`Nama Merchant\s*:?\s*[\r\n ]*(\S+)`)
	seabankTarget   = regexp.MustCompile(`Rekening Tujuan\s*:?\s*[\r\n ]*(\S+)`)
	seabankRef      = regexp.MustCompile(`No\. Referensi\s*:?\s*[\r\n ]*(\d+)`)
	seabankDate     = regexp.MustCompile(`Waktu Transaksi\s*:?\s*[\r\n ]*(\d{1,2} \w{3} \d{4} \d{2}:\d{2})`)
)

// seabankMonths translates SeaBank's Indonesian month abbreviations
// ("Agt", unlike Mandiri's "Agu").
var seabankMonths = map[string]string{
	"Mei": "May",
	"Agt": "Aug",
	"Okt": "Oct",
	"Des": "Dec",
}

func (SeaBank) Name() string { return "seabank" }

func (SeaBank) Match(title, sender string) bool {
	if !strings.Contains(strings.ToLower(sender), "alerts@seabank.co.id") {
		return false
	}
	t := strings.ToLower(title)
	return strings.Contains(t, "notifikasi transaksi seabank") ||
		strings.Contains(t, "notifikasi transfer seabank")
}

func (e SeaBank) Extract(c *email.Content) ([]*ledger.Record, error) {
	body := c.Plaintext()
	return runSubHandlers(body, []subHandler{
		{when: contains("SeaBank Bayar Instan"), run: e.extractInstantPayment},
		{when: contains("Real Time (BI-FAST)"), run: e.extractTransfer},
	}, e.baseRecord)
}

func (SeaBank) baseRecord() *ledger.Record {
	rec := &ledger.Record{Currency: "IDR", PaymentMethod: "SeaBank"}
	rec.SetIncoming(false)
	return rec
}

func (e SeaBank) extractInstantPayment(body string) ([]*ledger.Record, error) {
	rec := e.baseRecord()

	merchant := seabankMerchant.FindStringSubmatch(body)
	if merchant == nil {
		return nil, extractionErrf(e.Name(), "merchant name not found")
	}
	rec.Merchant = merchant[1]

	rec.SetDescription("")
	if m := seabankNote.FindStringSubmatch(body); m != nil {
		if note := strings.TrimSpace(m[1]); note != "-" {
			rec.SetDescription(note)
		}
	}

	return e.fillCommon(rec, body)
}

func (e SeaBank) extractTransfer(body string) ([]*ledger.Record, error) {
	rec := e.baseRecord()

	target := seabankTarget.FindStringSubmatch(body)
	if target == nil {
		return nil, extractionErrf(e.Name(), "target account not found")
	}
	rec.Merchant = target[1]

	rec.SetDescription("")
	if m := seabankNote.FindStringSubmatch(body); m != nil {
		if note := strings.TrimSpace(m[1]); note != "-" {
			rec.SetDescription(note)
		}
	}

	return e.fillCommon(rec, body)
}

func (e SeaBank) fillCommon(rec *ledger.Record, body string) ([]*ledger.Record, error) {
	m := seabankAmount.FindStringSubmatch(body)
	if m == nil {
		return nil, extractionErrf(e.Name(), "amount not found")
	}
	amount, err := ParseAmount(m[1], ".", ",")
	if err != nil {
		return nil, extractionErrf(e.Name(), "%v", err)
	}
	rec.SetAmount(amount)

	m = seabankRef.FindStringSubmatch(body)
	if m == nil {
		return nil, extractionErrf(e.Name(), "reference number not found")
	}
	rec.TrxID = m[1]

	m = seabankDate.FindStringSubmatch(body)
	if m == nil {
		return nil, extractionErrf(e.Name(), "transaction time not found")
	}
	ts, err := time.Parse("2 Jan 2006 15:04", translateMonths(m[1], seabankMonths))
	if err != nil {
		return nil, extractionErrf(e.Name(), "unparsable date %q: %v", m[1], err)
	}
	rec.Timestamp = ts

	return []*ledger.Record{rec}, nil
}
