package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config aggregates configuration for one extraction run.
type Config struct {
	Run        RunConfig
	Classifier ClassifierConfig
	Dump       DumpConfig
	Export     ExportConfig
}

// RunConfig governs pagination, batching and throttle recovery.
type RunConfig struct {
	// ExtractLimit caps how many messages a run will process before stopping.
	ExtractLimit int
	// PageSize is the mailbox listing page size.
	PageSize int
	// ChunkSize bounds per-chunk parallelism; a chunk of N messages is
	// fetched with N concurrent workers.
	ChunkSize int
	// PacingDelay is the self-imposed pause between chunks, sized to stay
	// under the upstream per-second quota.
	PacingDelay time.Duration
	// ThrottleMaxRetries caps per-message retries on rate-limit responses.
	ThrottleMaxRetries int
}

// ClassifierConfig controls the relevance pre-filter.
type ClassifierConfig struct {
	Threshold float64
	// GeminiModel selects the Gemini-backed classifier when non-empty;
	// otherwise the keyword baseline is used.
	GeminiModel string
}

// DumpConfig selects where unextracted raw messages are persisted.
type DumpConfig struct {
	// Dir is a local directory sink. Ignored when Bucket is set.
	Dir string
	// Bucket is a GCS bucket name for the dump sink.
	Bucket string
}

// ExportConfig selects the destinations for proper records.
type ExportConfig struct {
	CSVPath    string
	BQProject  string
	BQDataset  string
	NotionDBID string
}

const (
	defaultExtractLimit       = 50
	defaultPageSize           = 500
	defaultChunkSize          = 48
	defaultPacingDelay        = time.Second
	defaultThrottleMaxRetries = 8
	defaultThreshold          = 0.5
	defaultDumpDir            = "dumped"
	defaultCSVPath            = "email-extract.csv"
)

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	extractLimit, err := parseInt("EXTRACT_LIMIT", defaultExtractLimit)
	if err != nil {
		return Config{}, err
	}
	pageSize, err := parseInt("PAGE_SIZE", defaultPageSize)
	if err != nil {
		return Config{}, err
	}
	chunkSize, err := parseInt("CHUNK_SIZE", defaultChunkSize)
	if err != nil {
		return Config{}, err
	}
	maxRetries, err := parseInt("THROTTLE_MAX_RETRIES", defaultThrottleMaxRetries)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Run: RunConfig{
			ExtractLimit:       extractLimit,
			PageSize:           pageSize,
			ChunkSize:          chunkSize,
			PacingDelay:        defaultPacingDelay,
			ThrottleMaxRetries: maxRetries,
		},
		Classifier: ClassifierConfig{
			Threshold:   defaultThreshold,
			GeminiModel: os.Getenv("CLASSIFIER_GEMINI_MODEL"),
		},
		Dump: DumpConfig{
			Dir:    valueOrDefault("DUMP_DIR", defaultDumpDir),
			Bucket: os.Getenv("DUMP_BUCKET"),
		},
		Export: ExportConfig{
			CSVPath:    valueOrDefault("OUTPUT_CSV", defaultCSVPath),
			BQProject:  os.Getenv("BQ_PROJECT"),
			BQDataset:  valueOrDefault("BQ_DATASET", "ledger"),
			NotionDBID: os.Getenv("NOTION_DB_ID"),
		},
	}

	if v := os.Getenv("PACING_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PACING_DELAY: %w", err)
		}
		cfg.Run.PacingDelay = d
	}

	if v := os.Getenv("CLASSIFIER_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CLASSIFIER_THRESHOLD: %w", err)
		}
		if f < 0 || f > 1 {
			return Config{}, fmt.Errorf("CLASSIFIER_THRESHOLD %v is out of range", f)
		}
		cfg.Classifier.Threshold = f
	}

	if cfg.Run.ChunkSize <= 0 {
		return Config{}, fmt.Errorf("CHUNK_SIZE must be positive, got %d", cfg.Run.ChunkSize)
	}
	if cfg.Run.PageSize <= 0 {
		return Config{}, fmt.Errorf("PAGE_SIZE must be positive, got %d", cfg.Run.PageSize)
	}
	if cfg.Run.ExtractLimit <= 0 {
		return Config{}, fmt.Errorf("EXTRACT_LIMIT must be positive, got %d", cfg.Run.ExtractLimit)
	}
	if cfg.Run.ThrottleMaxRetries < 0 {
		return Config{}, fmt.Errorf("THROTTLE_MAX_RETRIES must not be negative, got %d", cfg.Run.ThrottleMaxRetries)
	}

	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	val, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return val, nil
}
