package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dariusmp/inboxledger/internal/ledger"
)

// Fieldnames is the CSV column order. It matches the keys of
// ledger.Record.FormattedRow.
var Fieldnames = []string{
	"Datetime",
	"Merchant Name",
	"Amount",
	"Fees",
	"Currency",
	"Transaction Type",
	"Payment Method",
	"Transaction ID",
	"Notes",
}

// CSVWriter writes complete records as CSV rows. Incomplete records are
// excluded and logged with their missing fields; they never produce a
// partial row.
type CSVWriter struct {
	log zerolog.Logger
}

func NewCSVWriter(log zerolog.Logger) *CSVWriter {
	return &CSVWriter{log: log}
}

// WriteFile writes the gated records to path, creating or truncating it.
// It returns how many records were written and how many were excluded.
func (c *CSVWriter) WriteFile(path string, records []*ledger.Record) (written, excluded int, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, 0, fmt.Errorf("WriteFile: create %s: %w", path, err)
	}

	written, excluded, err = c.Write(f, records)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("WriteFile: close %s: %w", path, cerr)
	}
	return written, excluded, err
}

// Write streams the gated records to w.
func (c *CSVWriter) Write(w io.Writer, records []*ledger.Record) (written, excluded int, err error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Fieldnames); err != nil {
		return 0, 0, fmt.Errorf("Write: header: %w", err)
	}

	for _, rec := range records {
		if !rec.Proper() {
			excluded++
			c.log.Warn().
				Str("trx_id", rec.TrxID).
				Str("merchant", rec.Merchant).
				Str("missing", strings.Join(rec.MissingFields(), ",")).
				Msg("Excluding incomplete record from export")
			continue
		}

		row := rec.FormattedRow()
		line := make([]string, len(Fieldnames))
		for i, field := range Fieldnames {
			line[i] = row[field]
		}
		if err := cw.Write(line); err != nil {
			return written, excluded, fmt.Errorf("Write: record %s: %w", rec.TrxID, err)
		}
		written++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return written, excluded, fmt.Errorf("Write: flush: %w", err)
	}
	return written, excluded, nil
}
