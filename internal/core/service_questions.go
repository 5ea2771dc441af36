package core

import (
	"context"
	"errors"
	"fmt"

	db "github.com/JonMunkholm/quizdeck/internal/database"
	"github.com/jackc/pgx/v5"
)

// SetQuestions returns a set's instructions and its questions, in stored
// order, with the caller's progress on each question.
func (s *Service) SetQuestions(ctx context.Context, userID, setID int64) (*SetQuestions, error) {
	q := db.New(s.pool)

	instructions, err := q.ListSetInstructions(ctx, toPgInt8(setID))
	if err != nil {
		return nil, fmt.Errorf("list instructions: %w", err)
	}

	rows, err := q.ListQuestionsWithProgress(ctx, db.ListQuestionsWithProgressParams{
		UserID: toPgInt8(userID),
		SetID:  toPgInt8(setID),
	})
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	out := &SetQuestions{
		Questions:    make([]QuestionProgress, len(rows)),
		Instructions: nonNil(instructions),
	}
	for i, r := range rows {
		out.Questions[i] = QuestionProgress{
			Question: Question{
				ID:           r.ID,
				SetID:        int8Value(r.SetID),
				RoundNo:      textPtr(r.RoundNo),
				QuestionNo:   textPtr(r.QuestionNo),
				QuestionText: r.QuestionText,
				ImageURL:     textPtr(r.ImageUrl),
				AnswerText:   r.AnswerText,
			},
			CreatedAt:     timePtr(r.CreatedAt),
			Attempted:     boolPtr(r.Attempted),
			Correct:       boolPtr(r.Correct),
			AttemptCount:  int4Ptr(r.AttemptCount),
			LastAttempted: timePtr(r.LastAttempted),
			IsMissed:      r.IsMissed,
			IsBookmarked:  r.IsBookmarked,
		}
	}
	return out, nil
}

// RecordProgress stores an answer to a question and counts it towards
// today's activity, in one transaction.
func (s *Service) RecordProgress(ctx context.Context, userID, questionID int64, attempted bool, correct *bool) (*Progress, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	q := db.New(tx)
	row, err := q.UpsertProgress(ctx, db.UpsertProgressParams{
		UserID:     toPgInt8(userID),
		QuestionID: toPgInt8(questionID),
		Attempted:  toPgBool(&attempted),
		Correct:    toPgBool(correct),
	})
	if isPgCode(err, pgForeignKeyViolation) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("upsert progress: %w", err)
	}

	if err := q.RecordDailyActivity(ctx, userID); err != nil {
		return nil, fmt.Errorf("record daily activity: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &Progress{
		ID:            row.ID,
		UserID:        int8Value(row.UserID),
		QuestionID:    int8Value(row.QuestionID),
		Attempted:     boolPtr(row.Attempted),
		Correct:       boolPtr(row.Correct),
		LastAttempted: timePtr(row.LastAttempted),
		AttemptCount:  int(row.AttemptCount.Int32),
	}, nil
}

// MarkMissed adds a question to the caller's review list. It returns nil
// when the question was already on the list.
func (s *Service) MarkMissed(ctx context.Context, userID, questionID int64) (*MissedMark, error) {
	row, err := db.New(s.pool).MarkMissed(ctx, db.MarkMissedParams{
		UserID:     toPgInt8(userID),
		QuestionID: toPgInt8(questionID),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if isPgCode(err, pgForeignKeyViolation) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mark missed: %w", err)
	}
	return &MissedMark{
		ID:         row.ID,
		UserID:     int8Value(row.UserID),
		QuestionID: int8Value(row.QuestionID),
		AddedAt:    timePtr(row.AddedAt),
	}, nil
}

// UnmarkMissed removes a question from the caller's review list.
func (s *Service) UnmarkMissed(ctx context.Context, userID, questionID int64) error {
	return db.New(s.pool).UnmarkMissed(ctx, db.UnmarkMissedParams{
		UserID:     toPgInt8(userID),
		QuestionID: toPgInt8(questionID),
	})
}

// ToggleBookmark bookmarks a question, or removes the bookmark when present.
func (s *Service) ToggleBookmark(ctx context.Context, userID, questionID int64) (*BookmarkResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	q := db.New(tx)
	id, err := q.GetBookmark(ctx, db.GetBookmarkParams{
		UserID:     toPgInt8(userID),
		QuestionID: toPgInt8(questionID),
	})

	var result BookmarkResult
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		err = q.InsertBookmark(ctx, db.InsertBookmarkParams{
			UserID:     toPgInt8(userID),
			QuestionID: toPgInt8(questionID),
		})
		if isPgCode(err, pgForeignKeyViolation) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("insert bookmark: %w", err)
		}
		result = BookmarkResult{Action: BookmarkAdded, IsBookmarked: true}
	case err != nil:
		return nil, fmt.Errorf("lookup bookmark: %w", err)
	default:
		if err := q.DeleteBookmark(ctx, id); err != nil {
			return nil, fmt.Errorf("delete bookmark: %w", err)
		}
		result = BookmarkResult{Action: BookmarkRemoved, IsBookmarked: false}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &result, nil
}

// MixedQuestions returns questions from every live set in random order,
// restricted by filter.
func (s *Service) MixedQuestions(ctx context.Context, userID int64, filter MixedFilter, page Page) ([]QuestionProgress, error) {
	limit, offset := pageArgs(page)
	rows, err := db.New(s.pool).ListMixedQuestions(ctx, db.ListMixedQuestionsParams{
		UserID: toPgInt8(userID),
		Filter: string(filter),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list mixed questions: %w", err)
	}

	out := make([]QuestionProgress, len(rows))
	for i, r := range rows {
		out[i] = QuestionProgress{
			Question: Question{
				ID:           r.ID,
				SetID:        int8Value(r.SetID),
				RoundNo:      textPtr(r.RoundNo),
				QuestionNo:   textPtr(r.QuestionNo),
				QuestionText: r.QuestionText,
				ImageURL:     textPtr(r.ImageUrl),
				AnswerText:   r.AnswerText,
				SetName:      r.SetName,
			},
			CreatedAt:     timePtr(r.CreatedAt),
			Attempted:     boolPtr(r.Attempted),
			Correct:       boolPtr(r.Correct),
			AttemptCount:  int4Ptr(r.AttemptCount),
			LastAttempted: timePtr(r.LastAttempted),
			IsMissed:      r.IsMissed,
			IsBookmarked:  r.IsBookmarked,
		}
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
