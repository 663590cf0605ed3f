package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/dariusmp/inboxledger/internal/logger"
)

const (
	extractionRunsTable = "extraction_runs"
	recordsTable        = "records"
)

// Store wraps a BigQuery client pointed at one project/dataset. The caller
// owns the client's lifecycle.
type Store struct {
	client  *bigquery.Client
	dataset string
}

func NewStore(client *bigquery.Client, dataset string) *Store {
	return &Store{client: client, dataset: dataset}
}

// StartExtractionRun inserts a run row with status=RUNNING. runID comes
// from the orchestrator so logs, dumps and rows share one identifier.
func (s *Store) StartExtractionRun(ctx context.Context, runID string) error {
	q := s.client.Query(fmt.Sprintf(`
		INSERT %s.%s (run_id, started_ts, status)
		VALUES (@run_id, @started_ts, @status)
	`, s.dataset, extractionRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_id", Value: runID},
		{Name: "started_ts", Value: time.Now()},
		{Name: "status", Value: "RUNNING"},
	}

	if err := s.runToCompletion(ctx, q); err != nil {
		return fmt.Errorf("StartExtractionRun: %w", err)
	}
	return nil
}

// MarkExtractionRunFailed sets status=FAILED with the error message. It
// logs instead of returning an error because it runs on failure paths
// where the original error must win.
func (s *Store) MarkExtractionRunFailed(ctx context.Context, runID string, runErr error) {
	log := logger.FromContext(ctx)

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
	}

	q := s.client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE run_id = @run_id
	`, s.dataset, extractionRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "FAILED"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: errMsg},
		{Name: "run_id", Value: runID},
	}

	if err := s.runToCompletion(ctx, q); err != nil {
		log.Error().
			Err(err).
			Str("run_id", runID).
			Msg("MarkExtractionRunFailed: update query")
	}
}

// MarkExtractionRunSucceeded sets status=SUCCESS and the run counters.
func (s *Store) MarkExtractionRunSucceeded(ctx context.Context, runID string, listed, extracted, dumped, records int) error {
	q := s.client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = "",
		    messages_listed = @messages_listed,
		    messages_extracted = @messages_extracted,
		    messages_dumped = @messages_dumped,
		    records_produced = @records_produced
		WHERE run_id = @run_id
	`, s.dataset, extractionRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "SUCCESS"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "messages_listed", Value: int64(listed)},
		{Name: "messages_extracted", Value: int64(extracted)},
		{Name: "messages_dumped", Value: int64(dumped)},
		{Name: "records_produced", Value: int64(records)},
		{Name: "run_id", Value: runID},
	}

	if err := s.runToCompletion(ctx, q); err != nil {
		return fmt.Errorf("MarkExtractionRunSucceeded: %w", err)
	}
	return nil
}

func (s *Store) runToCompletion(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}
