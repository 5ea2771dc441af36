package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	db "github.com/JonMunkholm/quizdeck/internal/database"
	"github.com/JonMunkholm/quizdeck/internal/logging"
	"github.com/jackc/pgx/v5"
)

// ListSets returns every live set, newest first, with the caller's progress
// on each.
func (s *Service) ListSets(ctx context.Context, userID int64, page Page) ([]QuestionSet, error) {
	limit, offset := pageArgs(page)
	rows, err := db.New(s.pool).ListQuestionSets(ctx, db.ListQuestionSetsParams{
		UserID: toPgInt8(userID),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list question sets: %w", err)
	}

	sets := make([]QuestionSet, len(rows))
	for i, r := range rows {
		sets[i] = QuestionSet{
			ID:                 r.ID,
			Name:               r.Name,
			Description:        textPtr(r.Description),
			UploadedBy:         int8Ptr(r.UploadedBy),
			UploadedByUsername: textPtr(r.UploadedByUsername),
			CreatedAt:          timePtr(r.CreatedAt),
			TotalQuestions:     int(r.TotalQuestions.Int32),
			Tags:               textPtr(r.Tags),
			GoogleDriveID:      textPtr(r.GoogleDriveID),
			QuestionsAttempted: r.QuestionsAttempted,
			DirectlyOpened:     r.DirectlyOpened,
			LastOpened:         timePtr(r.LastOpened),
		}
	}
	return sets, nil
}

// MarkSetOpened records that the caller opened a set.
func (s *Service) MarkSetOpened(ctx context.Context, userID, setID int64) error {
	err := db.New(s.pool).MarkSetOpened(ctx, db.MarkSetOpenedParams{
		UserID: toPgInt8(userID),
		SetID:  toPgInt8(setID),
	})
	if isPgCode(err, pgForeignKeyViolation) {
		return ErrNotFound
	}
	return err
}

// RenameSet renames a set the caller owns.
func (s *Service) RenameSet(ctx context.Context, userID, setID int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	q := db.New(s.pool)
	if err := s.checkOwner(ctx, q, userID, setID); err != nil {
		return err
	}
	if err := q.RenameQuestionSet(ctx, db.RenameQuestionSetParams{ID: setID, Name: name}); err != nil {
		return fmt.Errorf("rename set %d: %w", setID, err)
	}
	logging.FromContext(ctx).Info("renamed question set", "set_id", setID)
	return nil
}

// DeleteSet soft-deletes a set the caller owns.
func (s *Service) DeleteSet(ctx context.Context, userID, setID int64) error {
	q := db.New(s.pool)
	if err := s.checkOwner(ctx, q, userID, setID); err != nil {
		return err
	}
	if err := q.SoftDeleteQuestionSet(ctx, setID); err != nil {
		return fmt.Errorf("delete set %d: %w", setID, err)
	}
	logging.FromContext(ctx).Info("deleted question set", "set_id", setID)
	return nil
}

func (s *Service) checkOwner(ctx context.Context, q *db.Queries, userID, setID int64) error {
	owner, err := q.GetSetOwner(ctx, setID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup set owner: %w", err)
	}
	if !owner.Valid || owner.Int64 != userID {
		return ErrForbidden
	}
	return nil
}
