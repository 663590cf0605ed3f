package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/dariusmp/inboxledger/internal/email"
	"github.com/dariusmp/inboxledger/internal/ledger"
)

// OVO QR payment receipts. The approval code and the wallet-internal
// payment method label do not fit the canonical shape and travel in
// ExtraData.
type OVO struct{}

var (
	ovoAmount   = regexp.MustCompile(`Pembayaran\s*-?\s*Rp([\d.,]+)`)
	ovoMerchant = regexp.MustCompile(`Nama Toko\s*:?\s+(.+)`)
	ovoLocation = regexp.MustCompile(`Lokasi\s*:?\s+(.+)`)
	ovoRef      = regexp.MustCompile(`No\. Referensi\s*:?\s+(\S+)`)
	ovoApproval = regexp.MustCompile(`Kode Approval\s*:?\s+(\S+)`)
	ovoMethod   = regexp.MustCompile(`Metode Pembayaran\s*:?\s+(.+)`)
	ovoDate     = regexp.MustCompile(`(\d{1,2} \w{3} \d{4}, \d{2}:\d{2})`)
)

// ovoMonths translates OVO's Indonesian month abbreviations.
var ovoMonths = map[string]string{
	"Mei": "May",
	"Agt": "Aug",
	"Okt": "Oct",
	"Des": "Dec",
}

func (OVO) Name() string { return "ovo" }

func (OVO) Match(title, sender string) bool {
	return title == "OVO QR Payment Receipt" && sender == "noreply@ovo.co.id"
}

func (e OVO) Extract(c *email.Content) ([]*ledger.Record, error) {
	body := c.Plaintext()

	rec := &ledger.Record{Currency: "IDR", PaymentMethod: "OVO"}
	rec.SetIncoming(false)
	rec.SetDescription("")

	m := ovoAmount.FindStringSubmatch(body)
	if m == nil {
		return nil, extractionErrf(e.Name(), "payment amount not found")
	}
	amount, err := ParseAmount(m[1], ".", ",")
	if err != nil {
		return nil, extractionErrf(e.Name(), "%v", err)
	}
	rec.SetAmount(amount)

	m = ovoMerchant.FindStringSubmatch(body)
	if m == nil {
		return nil, extractionErrf(e.Name(), "store name not found")
	}
	rec.Merchant = strings.TrimSpace(m[1])

	if m := ovoLocation.FindStringSubmatch(body); m != nil {
		rec.SetDescription("Location: " + strings.TrimSpace(m[1]))
	}

	m = ovoRef.FindStringSubmatch(body)
	if m == nil {
		return nil, extractionErrf(e.Name(), "reference number not found")
	}
	rec.TrxID = m[1]

	m = ovoDate.FindStringSubmatch(body)
	if m == nil {
		return nil, extractionErrf(e.Name(), "transaction date not found")
	}
	ts, err := time.Parse("2 Jan 2006, 15:04", translateMonths(m[1], ovoMonths))
	if err != nil {
		return nil, extractionErrf(e.Name(), "unparsable date %q: %v", m[1], err)
	}
	rec.Timestamp = ts

	rec.ExtraData = map[string]string{}
	if m := ovoApproval.FindStringSubmatch(body); m != nil {
		rec.ExtraData["approval_code"] = m[1]
	}
	if m := ovoMethod.FindStringSubmatch(body); m != nil {
		rec.ExtraData["wallet_method"] = strings.TrimSpace(m[1])
	}

	return []*ledger.Record{rec}, nil
}
