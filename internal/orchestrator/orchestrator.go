package orchestrator

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dariusmp/inboxledger/internal/classifier"
	"github.com/dariusmp/inboxledger/internal/config"
	"github.com/dariusmp/inboxledger/internal/dump"
	"github.com/dariusmp/inboxledger/internal/email"
	"github.com/dariusmp/inboxledger/internal/extract"
	"github.com/dariusmp/inboxledger/internal/ledger"
	"github.com/dariusmp/inboxledger/internal/mailbox"
)

// Stats summarizes one extraction run. It is populated even when the run
// fails partway so partial progress is visible.
type Stats struct {
	RunID     string
	Listed    int
	Filtered  int
	Extracted int
	Dumped    int
	Records   int
	Retries   int
}

// Orchestrator drives a batch extraction run: paginate the mailbox, chunk
// the listing, pre-filter by title, extract or dump each message, pace
// between chunks.
type Orchestrator struct {
	transport  mailbox.Transport
	registry   *extract.Registry
	classifier classifier.Classifier
	sink       dump.Sink
	cfg        config.RunConfig
	log        zerolog.Logger

	// retries counts throttle retries across the goroutines of a run.
	retries atomic.Int64

	// sleep and jitter are swappable in tests.
	sleep  func(time.Duration)
	jitter func() time.Duration
}

// New wires an orchestrator. classifier may be nil to skip pre-filtering;
// sink may be nil to discard misses.
func New(transport mailbox.Transport, registry *extract.Registry, cls classifier.Classifier, sink dump.Sink, cfg config.RunConfig, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		transport:  transport,
		registry:   registry,
		classifier: cls,
		sink:       sink,
		cfg:        cfg,
		log:        log,
		sleep:      time.Sleep,
		jitter: func() time.Duration {
			return time.Second + time.Duration(rand.Int63n(int64(9*time.Second)))
		},
	}
}

// Run executes one full extraction pass and returns the collected records
// with run stats. The record list holds everything the extractors
// produced, complete or not; completeness gating belongs to the export
// layer.
func (o *Orchestrator) Run(ctx context.Context) (records []*ledger.Record, stats Stats, err error) {
	stats.RunID = uuid.NewString()
	o.retries.Store(0)
	defer func() { stats.Retries = int(o.retries.Load()) }()
	log := o.log.With().Str("run_id", stats.RunID).Logger()

	pageToken := ""
	for {
		ids, next, err := o.listPage(ctx, pageToken)
		if err != nil {
			return records, stats, fmt.Errorf("Run: list messages: %w", err)
		}
		stats.Listed += len(ids)

		for start := 0; start < len(ids); start += o.cfg.ChunkSize {
			end := start + o.cfg.ChunkSize
			if end > len(ids) {
				end = len(ids)
			}

			recs, err := o.processChunk(ctx, log, ids[start:end], &stats)
			records = append(records, recs...)
			if err != nil {
				return records, stats, fmt.Errorf("Run: %w", err)
			}

			if stats.Extracted >= o.cfg.ExtractLimit {
				log.Info().
					Int("limit", o.cfg.ExtractLimit).
					Int("records", len(records)).
					Msg("Extraction limit reached")
				return records, stats, nil
			}
			o.sleep(o.cfg.PacingDelay)
		}

		if next == "" {
			break
		}
		pageToken = next
	}

	log.Info().
		Int("listed", stats.Listed).
		Int("extracted", stats.Extracted).
		Int("dumped", stats.Dumped).
		Int("records", len(records)).
		Msg("Mailbox exhausted")
	return records, stats, nil
}

func (o *Orchestrator) listPage(ctx context.Context, pageToken string) ([]string, string, error) {
	var ids []string
	var next string
	err := o.withRetry(ctx, func() error {
		var err error
		ids, next, err = o.transport.ListMessages(ctx, pageToken)
		return err
	})
	return ids, next, err
}

// processChunk fans one chunk out to a goroutine per message and joins
// them. Results and stats merge under a single mutex; message order inside
// a chunk is not preserved.
func (o *Orchestrator) processChunk(ctx context.Context, log zerolog.Logger, ids []string, stats *Stats) ([]*ledger.Record, error) {
	metas, err := o.chunkMetadata(ctx, ids)
	if err != nil {
		return nil, err
	}

	keep, err := o.relevant(ctx, metas)
	if err != nil {
		return nil, err
	}

	var (
		mu       sync.Mutex
		records  []*ledger.Record
		failures []error
		wg       sync.WaitGroup
	)
	for i, meta := range metas {
		if !keep[i] {
			stats.Filtered++
			continue
		}

		wg.Add(1)
		go func(meta mailbox.Metadata) {
			defer wg.Done()

			recs, dumped, err := o.processMessage(ctx, log, meta)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				failures = append(failures, err)
			case dumped:
				stats.Dumped++
			default:
				stats.Extracted++
				stats.Records += len(recs)
				records = append(records, recs...)
			}
		}(meta)
	}
	wg.Wait()

	if len(failures) > 0 {
		return records, failures[0]
	}
	return records, nil
}

// chunkMetadata fetches headers for every id in the chunk concurrently,
// one goroutine per message, preserving id order in the result.
func (o *Orchestrator) chunkMetadata(ctx context.Context, ids []string) ([]mailbox.Metadata, error) {
	metas := make([]mailbox.Metadata, len(ids))
	errs := make([]error, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			err := o.withRetry(ctx, func() error {
				var err error
				metas[i], err = o.transport.GetMetadata(ctx, id)
				return err
			})
			if err != nil {
				errs[i] = fmt.Errorf("metadata for %s: %w", id, err)
			}
		}(i, id)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return metas, nil
}

func (o *Orchestrator) relevant(ctx context.Context, metas []mailbox.Metadata) ([]bool, error) {
	keep := make([]bool, len(metas))
	if o.classifier == nil {
		for i := range keep {
			keep[i] = true
		}
		return keep, nil
	}

	titles := make([]string, len(metas))
	for i, m := range metas {
		titles[i] = m.Subject
	}
	keep, err := o.classifier.Predict(ctx, titles)
	if err != nil {
		return nil, fmt.Errorf("classify chunk: %w", err)
	}
	return keep, nil
}

// processMessage fetches one raw message and routes it: matching
// extractors produce records, a zero-record result goes to the dump sink.
func (o *Orchestrator) processMessage(ctx context.Context, log zerolog.Logger, meta mailbox.Metadata) ([]*ledger.Record, bool, error) {
	var raw []byte
	err := o.withRetry(ctx, func() error {
		var err error
		raw, err = o.transport.GetRaw(ctx, meta.ID)
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("raw for %s: %w", meta.ID, err)
	}

	content := email.New(raw)
	recs := o.registry.Run(content)
	if len(recs) > 0 {
		return recs, false, nil
	}

	if o.sink == nil {
		return nil, true, nil
	}
	key := dump.Key(email.AddressDomain(content.SenderAddress()), meta.ID)
	if err := o.sink.Put(ctx, key, raw); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Dump failed")
	}
	return nil, true, nil
}

// withRetry runs call, retrying rate-limited failures with jittered sleeps
// up to the configured ceiling. Other errors pass through immediately.
func (o *Orchestrator) withRetry(ctx context.Context, call func() error) error {
	for attempt := 0; ; attempt++ {
		err := call()
		if err == nil {
			return nil
		}
		if !mailbox.IsRateLimited(err) {
			return err
		}
		if attempt >= o.cfg.ThrottleMaxRetries {
			return fmt.Errorf("rate limited after %d retries: %w", attempt, err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		o.retries.Add(1)
		o.sleep(o.jitter())
	}
}
