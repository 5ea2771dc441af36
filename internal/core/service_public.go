package core

import (
	"context"
	"fmt"

	db "github.com/JonMunkholm/quizdeck/internal/database"
)

// Guest reads. None of these touch per-user state.

// PublicSets lists live sets, newest first.
func (s *Service) PublicSets(ctx context.Context, page Page) ([]PublicQuestionSet, error) {
	limit, offset := pageArgs(page)
	rows, err := db.New(s.pool).ListPublicQuestionSets(ctx, db.ListPublicQuestionSetsParams{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list public sets: %w", err)
	}

	out := make([]PublicQuestionSet, len(rows))
	for i, r := range rows {
		out[i] = PublicQuestionSet{
			ID:                 r.ID,
			Name:               r.Name,
			Description:        textPtr(r.Description),
			Tags:               textPtr(r.Tags),
			CreatedAt:          timePtr(r.CreatedAt),
			UploadedByUsername: textPtr(r.UploadedByUsername),
			TotalQuestions:     r.TotalQuestions,
		}
	}
	return out, nil
}

// PublicSetQuestions returns a set's instructions and questions.
func (s *Service) PublicSetQuestions(ctx context.Context, setID int64) (*PublicSetQuestions, error) {
	q := db.New(s.pool)

	instructions, err := q.ListSetInstructions(ctx, toPgInt8(setID))
	if err != nil {
		return nil, fmt.Errorf("list instructions: %w", err)
	}
	rows, err := q.ListPublicQuestions(ctx, toPgInt8(setID))
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	out := &PublicSetQuestions{
		Questions:    make([]Question, len(rows)),
		Instructions: nonNil(instructions),
	}
	for i, r := range rows {
		out.Questions[i] = Question{
			ID:           r.ID,
			SetID:        int8Value(r.SetID),
			RoundNo:      textPtr(r.RoundNo),
			QuestionNo:   textPtr(r.QuestionNo),
			QuestionText: r.QuestionText,
			ImageURL:     textPtr(r.ImageUrl),
			AnswerText:   r.AnswerText,
		}
	}
	return out, nil
}

// PublicMixedQuestions returns questions from every live set in random order.
func (s *Service) PublicMixedQuestions(ctx context.Context, page Page) ([]Question, error) {
	limit, offset := pageArgs(page)
	rows, err := db.New(s.pool).ListPublicMixedQuestions(ctx, db.ListPublicMixedQuestionsParams{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list public mixed questions: %w", err)
	}

	out := make([]Question, len(rows))
	for i, r := range rows {
		out[i] = Question{
			ID:           r.ID,
			SetID:        int8Value(r.SetID),
			RoundNo:      textPtr(r.RoundNo),
			QuestionNo:   textPtr(r.QuestionNo),
			QuestionText: r.QuestionText,
			ImageURL:     textPtr(r.ImageUrl),
			AnswerText:   r.AnswerText,
			SetName:      r.SetName,
		}
	}
	return out, nil
}
