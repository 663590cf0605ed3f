package bigquery

import (
	"encoding/json"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/dariusmp/inboxledger/internal/ledger"
)

type RecordRow struct {
	RunID string `bigquery:"run_id"` // REQUIRED
	TrxID string `bigquery:"trx_id"` // REQUIRED

	TransactionTS   time.Time  `bigquery:"transaction_ts"`   // REQUIRED
	TransactionDate civil.Date `bigquery:"transaction_date"` // DATE, partition key
	Merchant        string     `bigquery:"merchant"`         // REQUIRED

	// Amount and Fees are NUMERIC columns fed as decimal strings so the
	// exact values survive the trip.
	Amount string `bigquery:"amount"`
	Fees   string `bigquery:"fees"`

	Currency      string `bigquery:"currency"`
	PaymentMethod string `bigquery:"payment_method"`
	IsIncoming    bool   `bigquery:"is_incoming"`
	Notes         string `bigquery:"notes"`

	Metadata bigquery.NullJSON `bigquery:"metadata"` // JSON, NULLABLE
}

// recordRow flattens a complete ledger record for insertion. The caller
// guarantees completeness; Proper gating happens in the export layer.
func recordRow(runID string, rec *ledger.Record) *RecordRow {
	row := &RecordRow{
		RunID:           runID,
		TrxID:           rec.TrxID,
		TransactionTS:   rec.Timestamp,
		TransactionDate: civil.DateOf(rec.Timestamp),
		Merchant:        rec.Merchant,
		Amount:          rec.Amount.Decimal.String(),
		Fees:            rec.Fees.String(),
		Currency:        rec.Currency,
		PaymentMethod:   rec.PaymentMethod,
	}
	if rec.Incoming != nil {
		row.IsIncoming = *rec.Incoming
	}
	if rec.Description != nil {
		row.Notes = *rec.Description
	}
	if len(rec.ExtraData) > 0 {
		extra := make(map[string]interface{}, len(rec.ExtraData))
		for k, v := range rec.ExtraData {
			extra[k] = v
		}
		if b, err := json.Marshal(extra); err == nil {
			row.Metadata = bigquery.NullJSON{JSONVal: string(b), Valid: true}
		}
	}
	return row
}
