package core

import (
	"context"
	"fmt"
	"time"

	db "github.com/JonMunkholm/quizdeck/internal/database"
)

// Stats summarizes the caller's practice over all live sets.
func (s *Service) Stats(ctx context.Context, userID int64) (*Stats, error) {
	q := db.New(s.pool)

	row, err := q.GetUserStats(ctx, toPgInt8(userID))
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}

	activity, err := q.ListActivityDates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list activity dates: %w", err)
	}
	dates := make([]time.Time, 0, len(activity))
	for _, d := range activity {
		if d.Valid {
			dates = append(dates, d.Time)
		}
	}

	return &Stats{
		TotalQuestions: row.TotalQuestions,
		Attempted:      row.Attempted,
		Correct:        row.Correct,
		Missed:         row.Missed,
		Bookmarks:      row.Bookmarks,
		Accuracy:       Accuracy(row.Correct, row.Attempted),
		Streak:         ComputeStreak(dates, time.Now()),
	}, nil
}

// MissedQuestions returns the caller's review list, most recently added
// first. Questions of deleted sets are left out.
func (s *Service) MissedQuestions(ctx context.Context, userID int64) ([]MissedQuestion, error) {
	rows, err := db.New(s.pool).ListMissedQuestions(ctx, toPgInt8(userID))
	if err != nil {
		return nil, fmt.Errorf("list missed questions: %w", err)
	}

	out := make([]MissedQuestion, len(rows))
	for i, r := range rows {
		out[i] = MissedQuestion{
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
			CreatedAt: timePtr(r.CreatedAt),
			AddedAt:   timePtr(r.AddedAt),
		}
	}
	return out, nil
}
