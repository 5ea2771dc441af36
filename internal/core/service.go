package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/quizdeck/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ServiceConfig holds the Service tunables.
type ServiceConfig struct {
	Ingest            IngestConfig
	MaxConcurrent     int           // parallel ingestions
	MaxWait           time.Duration // wait for an ingestion slot
	MaxTextSize       int           // characters accepted from a cloud file
	ImportConcurrency int           // parallel downloads in a batch import
}

// ServiceConfigFrom maps the application configuration onto ServiceConfig.
func ServiceConfigFrom(cfg *config.Config) ServiceConfig {
	return ServiceConfig{
		Ingest: IngestConfig{
			BatchSize:        cfg.Ingest.BatchSize,
			TimeoutThreshold: cfg.Ingest.TimeoutThreshold,
			MissingFraction:  cfg.Ingest.MissingFraction,
		},
		MaxConcurrent:     cfg.Upload.MaxConcurrent,
		MaxWait:           cfg.Upload.MaxWaitTime,
		MaxTextSize:       cfg.Upload.MaxTextSize,
		ImportConcurrency: cfg.Drive.ImportConcurrency,
	}
}

// Service provides the business logic of the quiz backend.
type Service struct {
	pool     *pgxpool.Pool
	store    Store
	ingester *Ingester
	limiter  *UploadLimiter
	source   FileSource
	cfg      ServiceConfig
}

// NewService creates a Service backed by pool. source may be nil when cloud
// imports are not configured.
func NewService(pool *pgxpool.Pool, cfg ServiceConfig, source FileSource) *Service {
	return newService(pool, NewPgStore(pool), cfg, source)
}

func newService(pool *pgxpool.Pool, store Store, cfg ServiceConfig, source FileSource) *Service {
	if cfg.ImportConcurrency <= 0 {
		cfg.ImportConcurrency = 1
	}
	return &Service{
		pool:     pool,
		store:    store,
		ingester: NewIngester(store, cfg.Ingest),
		limiter:  NewUploadLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		source:   source,
		cfg:      cfg,
	}
}

// ImportTSV ingests an uploaded question file, waiting for a free ingestion
// slot first.
func (s *Service) ImportTSV(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	var result *IngestResult
	err := s.limiter.Do(ctx, func() error {
		var err error
		result, err = s.ingester.Ingest(ctx, req)
		return err
	})
	return result, err
}

// TimedOut reports whether an ingestion that took elapsed exceeded the
// configured timeout threshold.
func (s *Service) TimedOut(elapsed time.Duration) bool {
	return s.ingester.TimedOut(elapsed)
}

// LimiterStatus returns the ingestion limiter state.
func (s *Service) LimiterStatus() UploadLimiterStatus {
	return s.limiter.Status()
}

// WaitForUploads blocks until running ingestions finish or ctx ends.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
