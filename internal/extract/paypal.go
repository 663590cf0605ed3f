package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/dariusmp/inboxledger/internal/email"
	"github.com/dariusmp/inboxledger/internal/ledger"
)

// PayPal sends Indonesian-locale receipts from service@intl.paypal.com.
// Amounts use the Indonesian convention even for USD ("$2,00 USD"), and
// dates render full Indonesian month names. Sent and received payments are
// distinct sub-formats.
type PayPal struct{}

var (
	paypalSent      = regexp.MustCompile(`Pembayaran terkirim:\s*\$([\d.,]+)\s*(\w+)`)
	paypalReceived  = regexp.MustCompile(`Jumlah yang diterima:\s*\$([\d.,]+)\s*(\w+)`)
	paypalFees      = regexp.MustCompile(`Biaya:\s*\$([\d.,]+)\s*\w+`)
	paypalNote      = regexp.MustCompile(`CATATAN ANDA UNTUK\s*(?:.*?)\s*[“"](.*?)[”"]`)
	paypalRef       = regexp.MustCompile(`ID transaksi:\s*(\S+)`)
	paypalDate      = regexp.MustCompile(`Tanggal transaksi:\s*(\d{1,2} \w+ \d{4})`)
	paypalRecipient = regexp.MustCompile(`Anda mengirim \$[\d.,]+ \w+ ke (\S+)`)
	paypalSenderRe  = regexp.MustCompile(`(.+) telah mengirim \$[\d.,]+ \w+ kepada Anda`)
)

// paypalMonths translates the full Indonesian month names of PayPal's
// localized receipts.
var paypalMonths = map[string]string{
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

func (PayPal) Name() string { return "paypal" }

func (PayPal) Match(title, sender string) bool {
	return strings.Contains(strings.ToLower(title), "paypal") &&
		strings.Contains(strings.ToLower(sender), "service@intl.paypal.com")
}

func (e PayPal) Extract(c *email.Content) ([]*ledger.Record, error) {
	body := c.Plaintext()
	return runSubHandlers(body, []subHandler{
		{when: contains("Anda mengirim"), run: e.extractSent},
		{when: contains("kepada Anda"), run: e.extractReceived},
	}, e.baseRecord)
}

func (PayPal) baseRecord() *ledger.Record {
	return &ledger.Record{Merchant: "PayPal", PaymentMethod: "PayPal"}
}

func (e PayPal) extractSent(body string) ([]*ledger.Record, error) {
	rec := e.baseRecord()
	rec.SetIncoming(false)

	m := paypalSent.FindStringSubmatch(body)
	if m == nil {
		return nil, extractionErrf(e.Name(), "sent amount not found")
	}
	if err := e.fillAmount(rec, m); err != nil {
		return nil, err
	}

	if m := paypalRecipient.FindStringSubmatch(body); m != nil {
		rec.Merchant = m[1]
	}

	return e.fillCommon(rec, body)
}

func (e PayPal) extractReceived(body string) ([]*ledger.Record, error) {
	rec := e.baseRecord()
	rec.SetIncoming(true)

	m := paypalReceived.FindStringSubmatch(body)
	if m == nil {
		return nil, extractionErrf(e.Name(), "received amount not found")
	}
	if err := e.fillAmount(rec, m); err != nil {
		return nil, err
	}

	if m := paypalSenderRe.FindStringSubmatch(body); m != nil {
		rec.Merchant = strings.TrimSpace(m[1])
	}

	return e.fillCommon(rec, body)
}

func (e PayPal) fillAmount(rec *ledger.Record, m []string) error {
	amount, err := ParseAmount(m[1], ".", ",")
	if err != nil {
		return extractionErrf(e.Name(), "%v", err)
	}
	rec.SetAmount(amount)
	rec.Currency = m[2]
	return nil
}

func (e PayPal) fillCommon(rec *ledger.Record, body string) ([]*ledger.Record, error) {
	rec.SetDescription("")
	if m := paypalNote.FindStringSubmatch(body); m != nil {
		rec.SetDescription(strings.TrimSpace(m[1]))
	}

	if m := paypalFees.FindStringSubmatch(body); m != nil {
		fees, err := ParseAmount(m[1], ".", ",")
		if err != nil {
			return nil, extractionErrf(e.Name(), "%v", err)
		}
		rec.Fees = fees
	}

	m := paypalRef.FindStringSubmatch(body)
	if m == nil {
		return nil, extractionErrf(e.Name(), "transaction ID not found")
	}
	rec.TrxID = m[1]

	m = paypalDate.FindStringSubmatch(body)
	if m == nil {
		return nil, extractionErrf(e.Name(), "transaction date not found")
	}
	ts, err := time.Parse("2 January 2006", translateMonths(m[1], paypalMonths))
	if err != nil {
		return nil, extractionErrf(e.Name(), "unparsable date %q: %v", m[1], err)
	}
	rec.Timestamp = ts

	return []*ledger.Record{rec}, nil
}
