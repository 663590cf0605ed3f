package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dariusmp/inboxledger/internal/ledger"
)

// InsertRecords inserts the complete records of one run into the records
// table. Incomplete records are skipped; the export layer has already
// counted and logged them.
func (s *Store) InsertRecords(ctx context.Context, runID string, records []*ledger.Record) (int, error) {
	rows := make([]*RecordRow, 0, len(records))
	for _, rec := range records {
		if !rec.Proper() {
			continue
		}
		rows = append(rows, recordRow(runID, rec))
	}
	if len(rows) == 0 {
		return 0, nil
	}

	inserter := s.client.Dataset(s.dataset).Table(recordsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return 0, fmt.Errorf("InsertRecords: inserting rows: %w", err)
	}
	return len(rows), nil
}

// QueryRecordsByDateRange returns stored rows whose transaction timestamp
// falls inside [start, end).
func (s *Store) QueryRecordsByDateRange(ctx context.Context, start, end time.Time) ([]*RecordRow, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT run_id, trx_id, transaction_ts, merchant, amount, fees,
		       currency, payment_method, is_incoming, notes, metadata
		FROM %s.%s
		WHERE transaction_ts >= @start AND transaction_ts < @end
		ORDER BY transaction_ts
	`, s.dataset, recordsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start", Value: start},
		{Name: "end", Value: end},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryRecordsByDateRange: reading query: %w", err)
	}

	var rows []*RecordRow
	for {
		var row RecordRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryRecordsByDateRange: iterating: %w", err)
		}
		rows = append(rows, &row)
	}
	return rows, nil
}
