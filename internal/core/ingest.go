package core

// ingest.go turns the text of a question file into a stored QuestionSet.
//
// The flow for a single call:
//
//  1. Fingerprint the raw content and pre-scan it for an expected count
//  2. Return the caller's existing set if the same content was already stored
//  3. Parse the table once and validate its header
//  4. In one transaction: create the set, store instructions, store
//     questions in batches, record the total
//  5. Classify the outcome as complete or partial

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/quizdeck/internal/logging"
	"github.com/google/uuid"
)

// Defaults used when an IngestConfig field is left at zero.
const (
	DefaultBatchSize        = 100
	DefaultTimeoutThreshold = 20 * time.Second
	DefaultMissingFraction  = 0.2
)

// IngestConfig holds the ingestion tunables.
type IngestConfig struct {
	BatchSize        int
	TimeoutThreshold time.Duration
	MissingFraction  float64
}

func (c IngestConfig) withDefaults() IngestConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.TimeoutThreshold <= 0 {
		c.TimeoutThreshold = DefaultTimeoutThreshold
	}
	if c.MissingFraction <= 0 {
		c.MissingFraction = DefaultMissingFraction
	}
	return c
}

// IngestRequest is the input of a single ingestion.
type IngestRequest struct {
	Content     string
	SetName     string
	Description string
	OwnerID     int64
	Tags        string
	ExternalID  string // cloud file id, "" when uploaded directly
}

// IngestResult is the outcome of a successful ingestion.
type IngestResult struct {
	SetID        int64
	Imported     int
	Expected     int
	Partial      bool
	Elapsed      time.Duration
	Duplicate    bool
	Instructions int
}

// ExistingSet is the part of a stored set the duplicate check needs.
type ExistingSet struct {
	ID             int64
	TotalQuestions int
}

// NewSet is the row created at the start of an ingestion.
type NewSet struct {
	Name        string
	Description string
	OwnerID     int64
	Tags        string
	ExternalID  string
	Fingerprint string
}

// Store is the persistence an Ingester needs.
type Store interface {
	// FindSetByFingerprint returns the owner's non-deleted set with the
	// given fingerprint, or nil when there is none.
	FindSetByFingerprint(ctx context.Context, fingerprint string, ownerID int64) (*ExistingSet, error)
	// FindSetByExternalID returns the non-deleted set imported from the
	// given cloud file, or nil.
	FindSetByExternalID(ctx context.Context, externalID string) (*ExistingSet, error)
	Begin(ctx context.Context) (StoreTx, error)
}

// StoreTx is one ingestion transaction. Rollback after Commit is a no-op.
type StoreTx interface {
	CreateSet(ctx context.Context, set NewSet) (int64, error)
	InsertInstructions(ctx context.Context, setID int64, texts []string) error
	InsertQuestions(ctx context.Context, setID int64, questions []QuestionRecord) error
	SetTotalQuestions(ctx context.Context, setID int64, total int) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Ingester stores question files through a Store.
type Ingester struct {
	store Store
	cfg   IngestConfig
	now   func() time.Time
}

// NewIngester creates an Ingester. Zero config fields take their defaults.
func NewIngester(store Store, cfg IngestConfig) *Ingester {
	return &Ingester{
		store: store,
		cfg:   cfg.withDefaults(),
		now:   time.Now,
	}
}

// Config returns the effective configuration.
func (in *Ingester) Config() IngestConfig {
	return in.cfg
}

// Ingest stores req.Content as a new question set owned by req.OwnerID.
// Re-ingesting content the owner already stored returns the existing set
// with Duplicate set and writes nothing.
func (in *Ingester) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	start := in.now()
	log := logging.WithFields(ctx, "ingest_id", uuid.NewString(), "set_name", req.SetName)

	fingerprint := Fingerprint(req.Content)
	expected := CountValidQuestions(req.Content)

	existing, err := in.store.FindSetByFingerprint(ctx, fingerprint, req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("lookup duplicate: %w", err)
	}
	if existing != nil {
		log.Info("duplicate content, returning existing set", "set_id", existing.ID)
		return in.duplicate(existing, expected, start), nil
	}

	table, err := ParseTable(req.Content)
	if err != nil {
		return nil, err
	}

	instructions := ExtractInstructions(table.Rows)
	questions := ExtractQuestions(table.Rows)

	setID, err := in.persist(ctx, req, fingerprint, instructions, questions)
	if errors.Is(err, ErrDuplicateRace) {
		existing, lookupErr := in.store.FindSetByFingerprint(ctx, fingerprint, req.OwnerID)
		if lookupErr == nil && existing != nil {
			log.Info("concurrent duplicate, returning existing set", "set_id", existing.ID)
			return in.duplicate(existing, expected, start), nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	result := &IngestResult{
		SetID:        setID,
		Imported:     len(questions),
		Expected:     expected,
		Elapsed:      in.now().Sub(start),
		Instructions: len(instructions),
	}
	result.Partial = Classify(result.Imported, result.Expected, result.Elapsed, in.cfg)

	if result.Partial {
		log.Warn("partial import",
			"set_id", setID,
			"imported", result.Imported,
			"expected", result.Expected,
			"elapsed", result.Elapsed,
		)
	} else {
		log.Info("import complete",
			"set_id", setID,
			"imported", result.Imported,
			"instructions", result.Instructions,
			"elapsed", result.Elapsed,
		)
	}
	return result, nil
}

func (in *Ingester) duplicate(existing *ExistingSet, expected int, start time.Time) *IngestResult {
	return &IngestResult{
		SetID:     existing.ID,
		Imported:  existing.TotalQuestions,
		Expected:  expected,
		Elapsed:   in.now().Sub(start),
		Duplicate: true,
	}
}

// persist writes the set, its instructions and its questions in one
// transaction. Every failure rolls the whole transaction back.
func (in *Ingester) persist(ctx context.Context, req IngestRequest, fingerprint string, instructions []string, questions []QuestionRecord) (int64, error) {
	tx, err := in.store.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	setID, err := tx.CreateSet(ctx, NewSet{
		Name:        req.SetName,
		Description: req.Description,
		OwnerID:     req.OwnerID,
		Tags:        req.Tags,
		ExternalID:  req.ExternalID,
		Fingerprint: fingerprint,
	})
	if err != nil {
		return 0, fmt.Errorf("create set: %w", err)
	}

	if len(instructions) > 0 {
		if err := tx.InsertInstructions(ctx, setID, instructions); err != nil {
			return 0, fmt.Errorf("insert instructions: %w", err)
		}
		logging.FromContext(ctx).Debug("stored instructions", "set_id", setID, "count", len(instructions))
	}

	for start := 0; start < len(questions); start += in.cfg.BatchSize {
		end := min(start+in.cfg.BatchSize, len(questions))
		batch := questions[start:end]
		if err := tx.InsertQuestions(ctx, setID, batch); err != nil {
			return 0, fmt.Errorf("insert questions (lines %d-%d): %w", batch[0].Line, batch[len(batch)-1].Line, err)
		}
	}

	if len(questions) == 0 {
		if len(instructions) > 0 {
			return 0, ErrOnlyInstructions
		}
		return 0, ErrNoValidQuestions
	}

	if err := tx.SetTotalQuestions(ctx, setID, len(questions)); err != nil {
		return 0, fmt.Errorf("update total questions: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return setID, nil
}

// Classify reports whether an ingestion should be flagged partial: it ran
// longer than the timeout threshold, or more than MissingFraction of the
// expected questions were not imported.
func Classify(imported, expected int, elapsed time.Duration, cfg IngestConfig) bool {
	cfg = cfg.withDefaults()
	if elapsed > cfg.TimeoutThreshold {
		return true
	}
	if imported > 0 && expected > 0 {
		missing := float64(expected-imported) / float64(expected)
		return missing > cfg.MissingFraction
	}
	return false
}

// TimedOut reports whether elapsed exceeded the timeout threshold.
func (in *Ingester) TimedOut(elapsed time.Duration) bool {
	return elapsed > in.cfg.TimeoutThreshold
}
