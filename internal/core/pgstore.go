package core

import (
	"context"
	"errors"
	"strings"

	db "github.com/JonMunkholm/quizdeck/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres error codes the store maps to domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PgStore is the Postgres implementation of Store.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a Store over pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) FindSetByFingerprint(ctx context.Context, fingerprint string, ownerID int64) (*ExistingSet, error) {
	row, err := db.New(s.pool).GetSetByContentHash(ctx, db.GetSetByContentHashParams{
		ContentHash: toPgText(fingerprint),
		UploadedBy:  toPgInt8(ownerID),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ExistingSet{ID: row.ID, TotalQuestions: int(row.TotalQuestions)}, nil
}

func (s *PgStore) FindSetByExternalID(ctx context.Context, externalID string) (*ExistingSet, error) {
	id, err := db.New(s.pool).GetSetByDriveID(ctx, toPgText(externalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ExistingSet{ID: id}, nil
}

func (s *PgStore) Begin(ctx context.Context) (StoreTx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgStoreTx{tx: tx, q: db.New(tx)}, nil
}

type pgStoreTx struct {
	tx pgx.Tx
	q  *db.Queries
}

func (t *pgStoreTx) CreateSet(ctx context.Context, set NewSet) (int64, error) {
	id, err := t.q.CreateQuestionSet(ctx, db.CreateQuestionSetParams{
		Name:          set.Name,
		Description:   toPgText(set.Description),
		UploadedBy:    toPgInt8(set.OwnerID),
		Tags:          toPgText(set.Tags),
		GoogleDriveID: toPgText(set.ExternalID),
		ContentHash:   toPgText(set.Fingerprint),
	})
	if isPgCode(err, pgUniqueViolation) {
		return 0, ErrDuplicateRace
	}
	return id, err
}

func (t *pgStoreTx) InsertInstructions(ctx context.Context, setID int64, texts []string) error {
	params := make([]db.InsertSetInstructionsParams, len(texts))
	for i, text := range texts {
		params[i] = db.InsertSetInstructionsParams{
			SetID:           toPgInt8(setID),
			InstructionText: text,
			DisplayOrder:    int32(i),
		}
	}
	_, err := t.q.InsertSetInstructions(ctx, params)
	return err
}

func (t *pgStoreTx) InsertQuestions(ctx context.Context, setID int64, questions []QuestionRecord) error {
	params := make([]db.InsertQuestionsParams, len(questions))
	for i, q := range questions {
		params[i] = db.InsertQuestionsParams{
			SetID:        toPgInt8(setID),
			RoundNo:      pgtype.Text{String: q.RoundNo, Valid: true},
			QuestionNo:   pgtype.Text{String: q.QuestionNo, Valid: true},
			QuestionText: q.QuestionText,
			ImageUrl:     toPgText(q.ImageURL),
			AnswerText:   q.AnswerText,
		}
	}
	_, err := t.q.InsertQuestions(ctx, params)
	return err
}

func (t *pgStoreTx) SetTotalQuestions(ctx context.Context, setID int64, total int) error {
	return t.q.UpdateSetTotalQuestions(ctx, db.UpdateSetTotalQuestionsParams{
		ID:             setID,
		TotalQuestions: pgtype.Int4{Int32: int32(total), Valid: true},
	})
}

func (t *pgStoreTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgStoreTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.TrimSpace(pgErr.Code) == code
	}
	return false
}
