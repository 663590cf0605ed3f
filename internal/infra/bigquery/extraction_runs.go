package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
)

type ExtractionRunRow struct {
	RunID string `bigquery:"run_id"` // REQUIRED

	StartedTS  time.Time              `bigquery:"started_ts"`  // REQUIRED
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"` // NULLABLE

	Status       string `bigquery:"status"`        // RUNNING | SUCCESS | FAILED
	ErrorMessage string `bigquery:"error_message"` // NULLABLE

	MessagesListed    bigquery.NullInt64 `bigquery:"messages_listed"`    // NULLABLE
	MessagesExtracted bigquery.NullInt64 `bigquery:"messages_extracted"` // NULLABLE
	MessagesDumped    bigquery.NullInt64 `bigquery:"messages_dumped"`    // NULLABLE
	RecordsProduced   bigquery.NullInt64 `bigquery:"records_produced"`   // NULLABLE
}
