package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dariusmp/inboxledger/internal/config"
	"github.com/dariusmp/inboxledger/internal/extract"
	"github.com/dariusmp/inboxledger/internal/mailbox"
)

// stubTransport serves a fixed set of raw messages, optionally failing the
// first N calls with the rate-limit sentinel.
type stubTransport struct {
	mu        sync.Mutex
	messages  map[string]stubMessage // id -> message
	order     []string
	pageSize  int
	throttled int             // remaining calls to fail with ErrRateLimited
	failRaw   map[string]bool // ids whose body fetch fails with a non-throttle error
	calls     int
}

type stubMessage struct {
	subject string
	sender  string
	raw     []byte
}

func newStubTransport(pageSize int) *stubTransport {
	return &stubTransport{messages: map[string]stubMessage{}, pageSize: pageSize}
}

func (s *stubTransport) add(id, sender, subject, body string) {
	raw := "From: " + sender + "\r\nSubject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n\r\n" + body
	s.messages[id] = stubMessage{subject: subject, sender: sender, raw: []byte(raw)}
	s.order = append(s.order, id)
}

func (s *stubTransport) maybeThrottle() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.throttled > 0 {
		s.throttled--
		return fmt.Errorf("stub: %w", mailbox.ErrRateLimited)
	}
	return nil
}

func (s *stubTransport) ListMessages(_ context.Context, pageToken string) ([]string, string, error) {
	if err := s.maybeThrottle(); err != nil {
		return nil, "", err
	}
	start := 0
	if pageToken != "" {
		fmt.Sscanf(pageToken, "%d", &start)
	}
	end := start + s.pageSize
	if end >= len(s.order) {
		return s.order[start:], "", nil
	}
	return s.order[start:end], fmt.Sprintf("%d", end), nil
}

func (s *stubTransport) GetMetadata(_ context.Context, id string) (mailbox.Metadata, error) {
	if err := s.maybeThrottle(); err != nil {
		return mailbox.Metadata{}, err
	}
	m, ok := s.messages[id]
	if !ok {
		return mailbox.Metadata{}, fmt.Errorf("stub: no message %s", id)
	}
	return mailbox.Metadata{ID: id, Subject: m.subject, Sender: m.sender}, nil
}

func (s *stubTransport) GetRaw(_ context.Context, id string) ([]byte, error) {
	if err := s.maybeThrottle(); err != nil {
		return nil, err
	}
	if s.failRaw[id] {
		return nil, fmt.Errorf("stub: backend error for %s", id)
	}
	m, ok := s.messages[id]
	if !ok {
		return nil, fmt.Errorf("stub: no message %s", id)
	}
	return m.raw, nil
}

// memorySink collects dumps in memory.
type memorySink struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemorySink() *memorySink { return &memorySink{blobs: map[string][]byte{}} }

func (m *memorySink) Put(_ context.Context, key string, raw []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), raw...)
	return nil
}

func testConfig() config.RunConfig {
	return config.RunConfig{
		ExtractLimit:       50,
		PageSize:           500,
		ChunkSize:          4,
		PacingDelay:        time.Millisecond,
		ThrottleMaxRetries: 8,
	}
}

func testOrchestrator(t *testing.T, tr mailbox.Transport, sink *memorySink, cfg config.RunConfig) *Orchestrator {
	t.Helper()
	reg := extract.NewRegistry(zerolog.Nop())
	for _, ex := range extract.DefaultExtractors() {
		reg.Register(ex)
	}
	var s *Orchestrator
	if sink != nil {
		s = New(tr, reg, nil, sink, cfg, zerolog.Nop())
	} else {
		s = New(tr, reg, nil, nil, cfg, zerolog.Nop())
	}
	s.sleep = func(time.Duration) {}
	s.jitter = func() time.Duration { return 0 }
	return s
}

const jagoTestBody = "Jumlah : Rp50.000,00\nKe : TOKO KOPI\nTanggal transaksi : 14 August 2024 23:51 WIB\n"

func TestRun_ExtractsAndDumps(t *testing.T) {
	tr := newStubTransport(500)
	tr.add("m1", "noreply@jago.com", "Kamu telah membayar", jagoTestBody)
	tr.add("m2", "newsletter@example.com", "Weekly digest", "nothing financial")
	sink := newMemorySink()

	recs, stats, err := testOrchestrator(t, tr, sink, testConfig()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(recs) != 1 || recs[0].Merchant != "TOKO KOPI" {
		t.Fatalf("Run() records = %v, want one Jago record", recs)
	}
	if stats.Extracted != 1 || stats.Dumped != 1 || stats.Listed != 2 {
		t.Errorf("stats = %+v, want 1 extracted, 1 dumped, 2 listed", stats)
	}
	if _, ok := sink.blobs["example.com-m2.eml"]; !ok {
		t.Errorf("dump keys = %v, want example.com-m2.eml", keysOf(sink.blobs))
	}
	if stats.RunID == "" {
		t.Error("stats.RunID should be set")
	}
}

// A single throttled call succeeds after exactly one retry.
func TestRun_RetriesThrottle(t *testing.T) {
	tr := newStubTransport(500)
	tr.add("m1", "noreply@jago.com", "Kamu telah membayar", jagoTestBody)
	tr.throttled = 1

	recs, stats, err := testOrchestrator(t, tr, nil, testConfig()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("Run() returned %d records, want 1", len(recs))
	}
	if stats.Retries != 1 {
		t.Errorf("stats.Retries = %d, want exactly 1", stats.Retries)
	}
}

func TestRun_ThrottleExhaustion(t *testing.T) {
	tr := newStubTransport(500)
	tr.add("m1", "noreply@jago.com", "Kamu telah membayar", jagoTestBody)
	tr.throttled = 100

	cfg := testConfig()
	cfg.ThrottleMaxRetries = 3
	_, stats, err := testOrchestrator(t, tr, nil, cfg).Run(context.Background())
	if err == nil {
		t.Fatal("Run() should fail when retries are exhausted")
	}
	if stats.Retries != 3 {
		t.Errorf("stats.Retries = %d, want 3", stats.Retries)
	}
}

func TestRun_ExtractionLimit(t *testing.T) {
	tr := newStubTransport(500)
	for i := 0; i < 10; i++ {
		tr.add(fmt.Sprintf("m%d", i), "noreply@jago.com", "Kamu telah membayar", jagoTestBody)
	}

	cfg := testConfig()
	cfg.ExtractLimit = 4
	cfg.ChunkSize = 2
	recs, stats, err := testOrchestrator(t, tr, nil, cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Extracted != 4 {
		t.Errorf("stats.Extracted = %d, want limit of 4", stats.Extracted)
	}
	if len(recs) != 4 {
		t.Errorf("Run() returned %d records, want 4", len(recs))
	}
}

// A non-throttle transport error aborts the run but the records collected
// up to that point come back with it.
func TestRun_PartialProgressOnFatal(t *testing.T) {
	tr := newStubTransport(500)
	tr.add("m0", "noreply@jago.com", "Kamu telah membayar", jagoTestBody)
	tr.add("m1", "noreply@jago.com", "Kamu telah membayar", jagoTestBody)
	tr.add("m2", "noreply@jago.com", "Kamu telah membayar", jagoTestBody)
	tr.failRaw = map[string]bool{"m2": true}

	cfg := testConfig()
	cfg.ChunkSize = 2
	recs, stats, err := testOrchestrator(t, tr, nil, cfg).Run(context.Background())
	if err == nil {
		t.Fatal("Run() should propagate the transport error")
	}
	if len(recs) != 2 {
		t.Errorf("Run() returned %d records alongside the error, want the 2 from the completed chunk", len(recs))
	}
	if stats.Extracted != 2 {
		t.Errorf("stats.Extracted = %d, want 2", stats.Extracted)
	}
}

func TestRun_Pagination(t *testing.T) {
	tr := newStubTransport(3)
	for i := 0; i < 7; i++ {
		tr.add(fmt.Sprintf("m%d", i), "noreply@jago.com", "Kamu telah membayar", jagoTestBody)
	}

	recs, stats, err := testOrchestrator(t, tr, nil, testConfig()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Listed != 7 || len(recs) != 7 {
		t.Errorf("listed %d, records %d, want 7 and 7", stats.Listed, len(recs))
	}
}

// Re-running over the same mailbox yields value-identical results and
// byte-identical dumps.
func TestRun_Idempotent(t *testing.T) {
	tr := newStubTransport(500)
	tr.add("m1", "noreply@jago.com", "Kamu telah membayar", jagoTestBody)
	tr.add("m2", "newsletter@example.com", "Weekly digest", "nothing financial")

	sink1 := newMemorySink()
	recs1, _, err := testOrchestrator(t, tr, sink1, testConfig()).Run(context.Background())
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	sink2 := newMemorySink()
	recs2, _, err := testOrchestrator(t, tr, sink2, testConfig()).Run(context.Background())
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if len(recs1) != len(recs2) {
		t.Fatalf("record counts differ: %d vs %d", len(recs1), len(recs2))
	}
	for i := range recs1 {
		if recs1[i].TrxID != recs2[i].TrxID || !recs1[i].Amount.Decimal.Equal(recs2[i].Amount.Decimal) {
			t.Errorf("record %d differs between runs", i)
		}
	}
	if len(sink1.blobs) != len(sink2.blobs) {
		t.Fatalf("dump counts differ: %d vs %d", len(sink1.blobs), len(sink2.blobs))
	}
	for k, v := range sink1.blobs {
		if string(sink2.blobs[k]) != string(v) {
			t.Errorf("dump %s differs between runs", k)
		}
	}
}

// barrierTransport blocks every header fetch until released, so a test
// can observe how many are in flight at once.
type barrierTransport struct {
	*stubTransport
	arrived chan string
	release chan struct{}
}

func (b *barrierTransport) GetMetadata(ctx context.Context, id string) (mailbox.Metadata, error) {
	b.arrived <- id
	<-b.release
	return b.stubTransport.GetMetadata(ctx, id)
}

// Header fetches within a chunk run concurrently, one goroutine per
// message, rather than one round-trip at a time.
func TestRun_ChunkMetadataConcurrent(t *testing.T) {
	const chunk = 4
	tr := newStubTransport(500)
	for i := 0; i < chunk; i++ {
		tr.add(fmt.Sprintf("m%d", i), "noreply@jago.com", "Kamu telah membayar", jagoTestBody)
	}
	bt := &barrierTransport{
		stubTransport: tr,
		arrived:       make(chan string, chunk),
		release:       make(chan struct{}),
	}

	cfg := testConfig()
	cfg.ChunkSize = chunk
	o := testOrchestrator(t, bt, nil, cfg)

	done := make(chan error, 1)
	go func() {
		_, _, err := o.Run(context.Background())
		done <- err
	}()

	for i := 0; i < chunk; i++ {
		select {
		case <-bt.arrived:
		case <-time.After(2 * time.Second):
			close(bt.release)
			t.Fatalf("only %d of %d header fetches in flight at once", i, chunk)
		}
	}
	close(bt.release)
	if err := <-done; err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

// filterClassifier keeps only titles present in its allow set.
type filterClassifier struct{ allow map[string]bool }

func (f filterClassifier) Predict(_ context.Context, titles []string) ([]bool, error) {
	out := make([]bool, len(titles))
	for i, t := range titles {
		out[i] = f.allow[t]
	}
	return out, nil
}

func TestRun_ClassifierFilters(t *testing.T) {
	tr := newStubTransport(500)
	tr.add("m1", "noreply@jago.com", "Kamu telah membayar", jagoTestBody)
	tr.add("m2", "noreply@jago.com", "Fitur baru Jago", "marketing")

	o := testOrchestrator(t, tr, nil, testConfig())
	o.classifier = filterClassifier{allow: map[string]bool{"Kamu telah membayar": true}}

	recs, stats, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("Run() returned %d records, want 1", len(recs))
	}
	if stats.Filtered != 1 {
		t.Errorf("stats.Filtered = %d, want 1", stats.Filtered)
	}
}

func keysOf(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
