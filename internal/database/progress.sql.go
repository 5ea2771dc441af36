package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const upsertProgress = `-- name: UpsertProgress :one
INSERT INTO user_progress (user_id, question_id, attempted, correct, attempt_count, last_attempted)
VALUES ($1, $2, $3, $4, 1, CURRENT_TIMESTAMP)
ON CONFLICT (user_id, question_id)
DO UPDATE SET
    attempted = EXCLUDED.attempted,
    correct = EXCLUDED.correct,
    attempt_count = user_progress.attempt_count + 1,
    last_attempted = CURRENT_TIMESTAMP
RETURNING id, user_id, question_id, attempted, correct, last_attempted, attempt_count
`

type UpsertProgressParams struct {
	UserID     pgtype.Int8
	QuestionID pgtype.Int8
	Attempted  pgtype.Bool
	Correct    pgtype.Bool
}

func (q *Queries) UpsertProgress(ctx context.Context, arg UpsertProgressParams) (UserProgress, error) {
	row := q.db.QueryRow(ctx, upsertProgress, arg.UserID, arg.QuestionID, arg.Attempted, arg.Correct)
	var i UserProgress
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.QuestionID,
		&i.Attempted,
		&i.Correct,
		&i.LastAttempted,
		&i.AttemptCount,
	)
	return i, err
}

const recordDailyActivity = `-- name: RecordDailyActivity :exec
INSERT INTO daily_activity (user_id, activity_date, questions_practiced)
VALUES ($1, CURRENT_DATE, 1)
ON CONFLICT (user_id, activity_date)
DO UPDATE SET questions_practiced = daily_activity.questions_practiced + 1
`

func (q *Queries) RecordDailyActivity(ctx context.Context, userID int64) error {
	_, err := q.db.Exec(ctx, recordDailyActivity, userID)
	return err
}

const markMissed = `-- name: MarkMissed :one
INSERT INTO missed_questions (user_id, question_id)
VALUES ($1, $2)
ON CONFLICT (user_id, question_id) DO NOTHING
RETURNING id, user_id, question_id, added_at, exported_to_anki
`

type MarkMissedParams struct {
	UserID     pgtype.Int8
	QuestionID pgtype.Int8
}

// MarkMissed returns pgx.ErrNoRows when the question was already marked.
func (q *Queries) MarkMissed(ctx context.Context, arg MarkMissedParams) (MissedQuestion, error) {
	row := q.db.QueryRow(ctx, markMissed, arg.UserID, arg.QuestionID)
	var i MissedQuestion
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.QuestionID,
		&i.AddedAt,
		&i.ExportedToAnki,
	)
	return i, err
}

const unmarkMissed = `-- name: UnmarkMissed :exec
DELETE FROM missed_questions WHERE user_id = $1 AND question_id = $2
`

type UnmarkMissedParams struct {
	UserID     pgtype.Int8
	QuestionID pgtype.Int8
}

func (q *Queries) UnmarkMissed(ctx context.Context, arg UnmarkMissedParams) error {
	_, err := q.db.Exec(ctx, unmarkMissed, arg.UserID, arg.QuestionID)
	return err
}

const getBookmark = `-- name: GetBookmark :one
SELECT id FROM bookmarks WHERE user_id = $1 AND question_id = $2
`

type GetBookmarkParams struct {
	UserID     pgtype.Int8
	QuestionID pgtype.Int8
}

func (q *Queries) GetBookmark(ctx context.Context, arg GetBookmarkParams) (int64, error) {
	row := q.db.QueryRow(ctx, getBookmark, arg.UserID, arg.QuestionID)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const insertBookmark = `-- name: InsertBookmark :exec
INSERT INTO bookmarks (user_id, question_id) VALUES ($1, $2)
`

type InsertBookmarkParams struct {
	UserID     pgtype.Int8
	QuestionID pgtype.Int8
}

func (q *Queries) InsertBookmark(ctx context.Context, arg InsertBookmarkParams) error {
	_, err := q.db.Exec(ctx, insertBookmark, arg.UserID, arg.QuestionID)
	return err
}

const deleteBookmark = `-- name: DeleteBookmark :exec
DELETE FROM bookmarks WHERE id = $1
`

func (q *Queries) DeleteBookmark(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, deleteBookmark, id)
	return err
}

const getUserStats = `-- name: GetUserStats :one
WITH active_questions AS (
    SELECT q.id
    FROM questions q
    JOIN question_sets qs ON q.set_id = qs.id
    WHERE qs.is_deleted = false
)
SELECT
    COUNT(DISTINCT aq.id) AS total_questions,
    COUNT(DISTINCT up.id) FILTER (WHERE up.attempted = true) AS attempted,
    COUNT(DISTINCT up.id) FILTER (WHERE up.correct = true) AS correct,
    COUNT(DISTINCT mq.id) AS missed,
    COUNT(DISTINCT b.id) AS bookmarks
FROM active_questions aq
LEFT JOIN user_progress up ON aq.id = up.question_id AND up.user_id = $1
LEFT JOIN missed_questions mq ON aq.id = mq.question_id AND mq.user_id = $1
LEFT JOIN bookmarks b ON aq.id = b.question_id AND b.user_id = $1
`

type GetUserStatsRow struct {
	TotalQuestions int64
	Attempted      int64
	Correct        int64
	Missed         int64
	Bookmarks      int64
}

func (q *Queries) GetUserStats(ctx context.Context, userID pgtype.Int8) (GetUserStatsRow, error) {
	row := q.db.QueryRow(ctx, getUserStats, userID)
	var i GetUserStatsRow
	err := row.Scan(
		&i.TotalQuestions,
		&i.Attempted,
		&i.Correct,
		&i.Missed,
		&i.Bookmarks,
	)
	return i, err
}

const listActivityDates = `-- name: ListActivityDates :many
SELECT activity_date
FROM daily_activity
WHERE user_id = $1
ORDER BY activity_date DESC
`

func (q *Queries) ListActivityDates(ctx context.Context, userID int64) ([]pgtype.Date, error) {
	rows, err := q.db.Query(ctx, listActivityDates, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []pgtype.Date
	for rows.Next() {
		var activityDate pgtype.Date
		if err := rows.Scan(&activityDate); err != nil {
			return nil, err
		}
		items = append(items, activityDate)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listMissedQuestions = `-- name: ListMissedQuestions :many
SELECT q.id, q.set_id, q.round_no, q.question_no, q.question_text, q.image_url, q.answer_text, q.created_at,
       mq.added_at, qs.name AS set_name
FROM missed_questions mq
JOIN questions q ON mq.question_id = q.id
JOIN question_sets qs ON q.set_id = qs.id
WHERE mq.user_id = $1
  AND mq.exported_to_anki = false
  AND qs.is_deleted = false
ORDER BY mq.added_at DESC
`

type ListMissedQuestionsRow struct {
	ID           int64
	SetID        pgtype.Int8
	RoundNo      pgtype.Text
	QuestionNo   pgtype.Text
	QuestionText string
	ImageUrl     pgtype.Text
	AnswerText   string
	CreatedAt    pgtype.Timestamp
	AddedAt      pgtype.Timestamp
	SetName      string
}

func (q *Queries) ListMissedQuestions(ctx context.Context, userID pgtype.Int8) ([]ListMissedQuestionsRow, error) {
	rows, err := q.db.Query(ctx, listMissedQuestions, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListMissedQuestionsRow
	for rows.Next() {
		var i ListMissedQuestionsRow
		if err := rows.Scan(
			&i.ID,
			&i.SetID,
			&i.RoundNo,
			&i.QuestionNo,
			&i.QuestionText,
			&i.ImageUrl,
			&i.AnswerText,
			&i.CreatedAt,
			&i.AddedAt,
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
