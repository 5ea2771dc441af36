package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const listSetInstructions = `-- name: ListSetInstructions :many
SELECT instruction_text
FROM set_instructions
WHERE set_id = $1
ORDER BY display_order
`

func (q *Queries) ListSetInstructions(ctx context.Context, setID pgtype.Int8) ([]string, error) {
	rows, err := q.db.Query(ctx, listSetInstructions, setID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var instructionText string
		if err := rows.Scan(&instructionText); err != nil {
			return nil, err
		}
		items = append(items, instructionText)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listQuestionsWithProgress = `-- name: ListQuestionsWithProgress :many
SELECT q.id, q.set_id, q.round_no, q.question_no, q.question_text, q.image_url, q.answer_text, q.created_at,
       up.attempted, up.correct, up.attempt_count, up.last_attempted,
       mq.id IS NOT NULL AS is_missed,
       b.id IS NOT NULL AS is_bookmarked
FROM questions q
LEFT JOIN user_progress up ON up.question_id = q.id AND up.user_id = $1
LEFT JOIN missed_questions mq ON mq.question_id = q.id AND mq.user_id = $1
LEFT JOIN bookmarks b ON b.question_id = q.id AND b.user_id = $1
WHERE q.set_id = $2
ORDER BY q.id
`

type ListQuestionsWithProgressParams struct {
	UserID pgtype.Int8
	SetID  pgtype.Int8
}

type ListQuestionsWithProgressRow struct {
	ID            int64
	SetID         pgtype.Int8
	RoundNo       pgtype.Text
	QuestionNo    pgtype.Text
	QuestionText  string
	ImageUrl      pgtype.Text
	AnswerText    string
	CreatedAt     pgtype.Timestamp
	Attempted     pgtype.Bool
	Correct       pgtype.Bool
	AttemptCount  pgtype.Int4
	LastAttempted pgtype.Timestamp
	IsMissed      bool
	IsBookmarked  bool
}

func (q *Queries) ListQuestionsWithProgress(ctx context.Context, arg ListQuestionsWithProgressParams) ([]ListQuestionsWithProgressRow, error) {
	rows, err := q.db.Query(ctx, listQuestionsWithProgress, arg.UserID, arg.SetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListQuestionsWithProgressRow
	for rows.Next() {
		var i ListQuestionsWithProgressRow
		if err := rows.Scan(
			&i.ID,
			&i.SetID,
			&i.RoundNo,
			&i.QuestionNo,
			&i.QuestionText,
			&i.ImageUrl,
			&i.AnswerText,
			&i.CreatedAt,
			&i.Attempted,
			&i.Correct,
			&i.AttemptCount,
			&i.LastAttempted,
			&i.IsMissed,
			&i.IsBookmarked,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listMixedQuestions = `-- name: ListMixedQuestions :many
SELECT q.id, q.set_id, q.round_no, q.question_no, q.question_text, q.image_url, q.answer_text, q.created_at,
       up.attempted, up.correct, up.attempt_count, up.last_attempted,
       mq.id IS NOT NULL AS is_missed,
       b.id IS NOT NULL AS is_bookmarked,
       qs.name AS set_name
FROM questions q
JOIN question_sets qs ON q.set_id = qs.id
LEFT JOIN user_progress up ON up.question_id = q.id AND up.user_id = $1
LEFT JOIN missed_questions mq ON mq.question_id = q.id AND mq.user_id = $1
LEFT JOIN bookmarks b ON b.question_id = q.id AND b.user_id = $1
WHERE qs.is_deleted = false
  AND CASE $2::text
        WHEN 'unattempted' THEN (up.id IS NULL OR up.attempted = false)
        WHEN 'missed' THEN mq.id IS NOT NULL
        WHEN 'bookmarks' THEN b.id IS NOT NULL
        ELSE true
      END
ORDER BY RANDOM()
LIMIT $3 OFFSET $4
`

type ListMixedQuestionsParams struct {
	UserID pgtype.Int8
	Filter string
	Limit  pgtype.Int4
	Offset int32
}

type ListMixedQuestionsRow struct {
	ID            int64
	SetID         pgtype.Int8
	RoundNo       pgtype.Text
	QuestionNo    pgtype.Text
	QuestionText  string
	ImageUrl      pgtype.Text
	AnswerText    string
	CreatedAt     pgtype.Timestamp
	Attempted     pgtype.Bool
	Correct       pgtype.Bool
	AttemptCount  pgtype.Int4
	LastAttempted pgtype.Timestamp
	IsMissed      bool
	IsBookmarked  bool
	SetName       string
}

func (q *Queries) ListMixedQuestions(ctx context.Context, arg ListMixedQuestionsParams) ([]ListMixedQuestionsRow, error) {
	rows, err := q.db.Query(ctx, listMixedQuestions, arg.UserID, arg.Filter, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListMixedQuestionsRow
	for rows.Next() {
		var i ListMixedQuestionsRow
		if err := rows.Scan(
			&i.ID,
			&i.SetID,
			&i.RoundNo,
			&i.QuestionNo,
			&i.QuestionText,
			&i.ImageUrl,
			&i.AnswerText,
			&i.CreatedAt,
			&i.Attempted,
			&i.Correct,
			&i.AttemptCount,
			&i.LastAttempted,
			&i.IsMissed,
			&i.IsBookmarked,
			&i.SetName,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listPublicQuestions = `-- name: ListPublicQuestions :many
SELECT q.id, q.set_id, q.round_no, q.question_no, q.question_text, q.answer_text, q.image_url
FROM questions q
WHERE q.set_id = $1
ORDER BY q.id
`

type ListPublicQuestionsRow struct {
	ID           int64
	SetID        pgtype.Int8
	RoundNo      pgtype.Text
	QuestionNo   pgtype.Text
	QuestionText string
	AnswerText   string
	ImageUrl     pgtype.Text
}

func (q *Queries) ListPublicQuestions(ctx context.Context, setID pgtype.Int8) ([]ListPublicQuestionsRow, error) {
	rows, err := q.db.Query(ctx, listPublicQuestions, setID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListPublicQuestionsRow
	for rows.Next() {
		var i ListPublicQuestionsRow
		if err := rows.Scan(
			&i.ID,
			&i.SetID,
			&i.RoundNo,
			&i.QuestionNo,
			&i.QuestionText,
			&i.AnswerText,
			&i.ImageUrl,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listPublicMixedQuestions = `-- name: ListPublicMixedQuestions :many
SELECT q.id, q.set_id, q.round_no, q.question_no, q.question_text, q.answer_text, q.image_url,
       qs.name AS set_name
FROM questions q
JOIN question_sets qs ON q.set_id = qs.id
WHERE qs.is_deleted = false
ORDER BY RANDOM()
LIMIT $1 OFFSET $2
`

type ListPublicMixedQuestionsParams struct {
	Limit  pgtype.Int4
	Offset int32
}

type ListPublicMixedQuestionsRow struct {
	ID           int64
	SetID        pgtype.Int8
	RoundNo      pgtype.Text
	QuestionNo   pgtype.Text
	QuestionText string
	AnswerText   string
	ImageUrl     pgtype.Text
	SetName      string
}

func (q *Queries) ListPublicMixedQuestions(ctx context.Context, arg ListPublicMixedQuestionsParams) ([]ListPublicMixedQuestionsRow, error) {
	rows, err := q.db.Query(ctx, listPublicMixedQuestions, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListPublicMixedQuestionsRow
	for rows.Next() {
		var i ListPublicMixedQuestionsRow
		if err := rows.Scan(
			&i.ID,
			&i.SetID,
			&i.RoundNo,
			&i.QuestionNo,
			&i.QuestionText,
			&i.AnswerText,
			&i.ImageUrl,
			&i.SetName,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
