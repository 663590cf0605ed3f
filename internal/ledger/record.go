package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is one normalized transaction extracted from a notification email.
// Extractors populate it field by field; optional-looking fields that are in
// fact mandatory (Incoming, Description) are pointers so that "never set"
// is distinguishable from a zero value.
type Record struct {
	// TrxID is the vendor-provided reference. Not globally unique across
	// vendors.
	TrxID string
	// Timestamp is the transaction time as stated by the vendor, after any
	// vendor-local month names have been translated.
	Timestamp time.Time
	// Merchant is the counterparty display name.
	Merchant string
	// Amount is the transaction amount in the vendor's stated minor units.
	// Always non-negative; direction is carried by Incoming.
	Amount decimal.NullDecimal
	// Fees defaults to zero when the vendor states none.
	Fees decimal.Decimal
	// Currency is a 3-letter code. Vendor symbols are mapped by convention
	// (Rp → IDR), never inferred.
	Currency string
	// PaymentMethod is the vendor or channel label.
	PaymentMethod string
	// Incoming is true for funds received, false for funds sent. Every
	// extractor must set it explicitly.
	Incoming *bool
	// Description is the vendor's free-text note; the empty string when the
	// vendor has no note field.
	Description *string
	// ExtraData carries vendor-specific values (approval codes and the
	// like) that do not fit the canonical shape. Keys are vendor-defined.
	ExtraData map[string]string
}

// ExportTimeLayout is the datetime layout used by FormattedRow.
const ExportTimeLayout = "2006-01-02 15:04:05"

// Proper reports whether every mandatory field is populated. Export layers
// must reject records for which this is false rather than emitting partial
// rows.
func (r *Record) Proper() bool {
	return len(r.MissingFields()) == 0
}

// MissingFields lists the mandatory fields that are not populated, for
// exclusion logging.
func (r *Record) MissingFields() []string {
	var missing []string
	if r.TrxID == "" {
		missing = append(missing, "trx_id")
	}
	if r.Timestamp.IsZero() {
		missing = append(missing, "timestamp")
	}
	if r.Merchant == "" {
		missing = append(missing, "merchant")
	}
	if !r.Amount.Valid {
		missing = append(missing, "amount")
	}
	if r.Currency == "" {
		missing = append(missing, "currency")
	}
	if r.PaymentMethod == "" {
		missing = append(missing, "payment_method")
	}
	if r.Incoming == nil {
		missing = append(missing, "is_incoming")
	}
	if r.Description == nil {
		missing = append(missing, "description")
	}
	return missing
}

// FormattedRow renders the record as the canonical export row. Callers must
// check Proper first; FormattedRow does not re-validate.
func (r *Record) FormattedRow() map[string]string {
	direction := "OUT"
	if r.Incoming != nil && *r.Incoming {
		direction = "IN"
	}
	description := ""
	if r.Description != nil {
		description = *r.Description
	}
	return map[string]string{
		"Datetime":         r.Timestamp.Format(ExportTimeLayout),
		"Merchant Name":    r.Merchant,
		"Amount":           r.Amount.Decimal.String(),
		"Fees":             r.Fees.String(),
		"Currency":         r.Currency,
		"Transaction Type": direction,
		"Payment Method":   r.PaymentMethod,
		"Transaction ID":   r.TrxID,
		"Notes":            description,
	}
}

// SetAmount sets Amount from a concrete decimal value.
func (r *Record) SetAmount(d decimal.Decimal) {
	r.Amount = decimal.NullDecimal{Decimal: d, Valid: true}
}

// SetIncoming sets the transaction direction.
func (r *Record) SetIncoming(incoming bool) {
	r.Incoming = &incoming
}

// SetDescription sets the free-text note. Pass "" for vendors without a
// note field.
func (r *Record) SetDescription(s string) {
	r.Description = &s
}
