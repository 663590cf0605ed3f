package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/dariusmp/inboxledger/internal/email"
	"github.com/dariusmp/inboxledger/internal/ledger"
)

// Jago payment confirmations. Jago has no reference number in the email,
// so the transaction ID is derived from the timestamp; it only needs to be
// unique within this vendor's feed.
type Jago struct{}

var (
	jagoAmount   = regexp.MustCompile(`Jumlah\s*:?\s*([A-Za-z]+)\s*([\d.,]+)`)
	jagoMerchant = regexp.MustCompile(`Ke\s*:?\s+(.+)`)
	jagoDate     = regexp.MustCompile(`Tanggal transaksi\s*:?\s*(\d{1,2} \w+ \d{4} \d{2}:\d{2})`)
)

// jagoMonths translates the full Indonesian month names Jago sometimes
// renders; most of its mails use English month names already.
var jagoMonths = map[string]string{
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

func (Jago) Name() string { return "jago" }

func (Jago) Match(title, sender string) bool {
	s := strings.ToLower(sender)
	if !strings.Contains(s, "noreply@jago.com") && !strings.Contains(s, "tanya@jago.com") {
		return false
	}
	return strings.Contains(strings.ToLower(title), "kamu telah membayar")
}

func (e Jago) Extract(c *email.Content) ([]*ledger.Record, error) {
	body := c.Plaintext()

	rec := &ledger.Record{PaymentMethod: "Jago"}
	rec.SetIncoming(false)
	// Jago mails carry no note field.
	rec.SetDescription("")

	m := jagoAmount.FindStringSubmatch(body)
	if m == nil {
		return nil, extractionErrf(e.Name(), "amount not found")
	}
	rec.Currency = CurrencyFromSymbol(m[1])
	amount, err := ParseAmount(m[2], ".", ",")
	if err != nil {
		return nil, extractionErrf(e.Name(), "%v", err)
	}
	rec.SetAmount(amount)

	m = jagoMerchant.FindStringSubmatch(body)
	if m == nil {
		return nil, extractionErrf(e.Name(), "recipient not found")
	}
	rec.Merchant = strings.TrimSpace(m[1])

	m = jagoDate.FindStringSubmatch(body)
	if m == nil {
		return nil, extractionErrf(e.Name(), "transaction date not found")
	}
	ts, err := time.Parse("2 January 2006 15:04", translateMonths(m[1], jagoMonths))
	if err != nil {
		return nil, extractionErrf(e.Name(), "unparsable date %q: %v", m[1], err)
	}
	rec.Timestamp = ts
	rec.TrxID = ts.Format("200601021504")

	return []*ledger.Record{rec}, nil
}
