package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getSetByContentHash = `-- name: GetSetByContentHash :one
SELECT id, COALESCE(total_questions, 0)::int AS total_questions
FROM question_sets
WHERE content_hash = $1 AND uploaded_by = $2 AND is_deleted = false
LIMIT 1
`

type GetSetByContentHashParams struct {
	ContentHash pgtype.Text
	UploadedBy  pgtype.Int8
}

type GetSetByContentHashRow struct {
	ID             int64
	TotalQuestions int32
}

func (q *Queries) GetSetByContentHash(ctx context.Context, arg GetSetByContentHashParams) (GetSetByContentHashRow, error) {
	row := q.db.QueryRow(ctx, getSetByContentHash, arg.ContentHash, arg.UploadedBy)
	var i GetSetByContentHashRow
	err := row.Scan(&i.ID, &i.TotalQuestions)
	return i, err
}

const getSetByDriveID = `-- name: GetSetByDriveID :one
SELECT id
FROM question_sets
WHERE google_drive_id = $1 AND is_deleted = false
LIMIT 1
`

func (q *Queries) GetSetByDriveID(ctx context.Context, googleDriveID pgtype.Text) (int64, error) {
	row := q.db.QueryRow(ctx, getSetByDriveID, googleDriveID)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const createQuestionSet = `-- name: CreateQuestionSet :one
INSERT INTO question_sets (name, description, uploaded_by, tags, google_drive_id, content_hash)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id
`

type CreateQuestionSetParams struct {
	Name          string
	Description   pgtype.Text
	UploadedBy    pgtype.Int8
	Tags          pgtype.Text
	GoogleDriveID pgtype.Text
	ContentHash   pgtype.Text
}

func (q *Queries) CreateQuestionSet(ctx context.Context, arg CreateQuestionSetParams) (int64, error) {
	row := q.db.QueryRow(ctx, createQuestionSet,
		arg.Name,
		arg.Description,
		arg.UploadedBy,
		arg.Tags,
		arg.GoogleDriveID,
		arg.ContentHash,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const updateSetTotalQuestions = `-- name: UpdateSetTotalQuestions :exec
UPDATE question_sets SET total_questions = $2 WHERE id = $1
`

type UpdateSetTotalQuestionsParams struct {
	ID             int64
	TotalQuestions pgtype.Int4
}

func (q *Queries) UpdateSetTotalQuestions(ctx context.Context, arg UpdateSetTotalQuestionsParams) error {
	_, err := q.db.Exec(ctx, updateSetTotalQuestions, arg.ID, arg.TotalQuestions)
	return err
}

const listQuestionSets = `-- name: ListQuestionSets :many
SELECT qs.id, qs.name, qs.description, qs.uploaded_by, qs.created_at,
       qs.total_questions, qs.tags, qs.google_drive_id,
       u.username AS uploaded_by_username,
       COUNT(up.id) FILTER (WHERE up.user_id = $1 AND up.attempted = true) AS questions_attempted,
       so.id IS NOT NULL AS directly_opened,
       so.opened_at AS last_opened
FROM question_sets qs
LEFT JOIN users u ON qs.uploaded_by = u.id
LEFT JOIN questions q ON q.set_id = qs.id
LEFT JOIN user_progress up ON up.question_id = q.id
LEFT JOIN set_opens so ON so.set_id = qs.id AND so.user_id = $1
WHERE qs.is_deleted = false
GROUP BY qs.id, u.username, so.id, so.opened_at
ORDER BY qs.created_at DESC
LIMIT $2 OFFSET $3
`

// A NULL Limit returns every row.
type ListQuestionSetsParams struct {
	UserID pgtype.Int8
	Limit  pgtype.Int4
	Offset int32
}

type ListQuestionSetsRow struct {
	ID                 int64
	Name               string
	Description        pgtype.Text
	UploadedBy         pgtype.Int8
	CreatedAt          pgtype.Timestamp
	TotalQuestions     pgtype.Int4
	Tags               pgtype.Text
	GoogleDriveID      pgtype.Text
	UploadedByUsername pgtype.Text
	QuestionsAttempted int64
	DirectlyOpened     bool
	LastOpened         pgtype.Timestamp
}

func (q *Queries) ListQuestionSets(ctx context.Context, arg ListQuestionSetsParams) ([]ListQuestionSetsRow, error) {
	rows, err := q.db.Query(ctx, listQuestionSets, arg.UserID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListQuestionSetsRow
	for rows.Next() {
		var i ListQuestionSetsRow
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Description,
			&i.UploadedBy,
			&i.CreatedAt,
			&i.TotalQuestions,
			&i.Tags,
			&i.GoogleDriveID,
			&i.UploadedByUsername,
			&i.QuestionsAttempted,
			&i.DirectlyOpened,
			&i.LastOpened,
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

const listPublicQuestionSets = `-- name: ListPublicQuestionSets :many
SELECT qs.id, qs.name, qs.description, qs.tags, qs.created_at,
       u.username AS uploaded_by_username,
       COUNT(q.id) AS total_questions
FROM question_sets qs
LEFT JOIN users u ON qs.uploaded_by = u.id
LEFT JOIN questions q ON q.set_id = qs.id
WHERE qs.is_deleted = false
GROUP BY qs.id, u.username
ORDER BY qs.created_at DESC
LIMIT $1 OFFSET $2
`

type ListPublicQuestionSetsParams struct {
	Limit  pgtype.Int4
	Offset int32
}

type ListPublicQuestionSetsRow struct {
	ID                 int64
	Name               string
	Description        pgtype.Text
	Tags               pgtype.Text
	CreatedAt          pgtype.Timestamp
	UploadedByUsername pgtype.Text
	TotalQuestions     int64
}

func (q *Queries) ListPublicQuestionSets(ctx context.Context, arg ListPublicQuestionSetsParams) ([]ListPublicQuestionSetsRow, error) {
	rows, err := q.db.Query(ctx, listPublicQuestionSets, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListPublicQuestionSetsRow
	for rows.Next() {
		var i ListPublicQuestionSetsRow
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Description,
			&i.Tags,
			&i.CreatedAt,
			&i.UploadedByUsername,
			&i.TotalQuestions,
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

const getSetOwner = `-- name: GetSetOwner :one
SELECT uploaded_by FROM question_sets WHERE id = $1
`

func (q *Queries) GetSetOwner(ctx context.Context, id int64) (pgtype.Int8, error) {
	row := q.db.QueryRow(ctx, getSetOwner, id)
	var uploadedBy pgtype.Int8
	err := row.Scan(&uploadedBy)
	return uploadedBy, err
}

const renameQuestionSet = `-- name: RenameQuestionSet :exec
UPDATE question_sets SET name = $2 WHERE id = $1
`

type RenameQuestionSetParams struct {
	ID   int64
	Name string
}

func (q *Queries) RenameQuestionSet(ctx context.Context, arg RenameQuestionSetParams) error {
	_, err := q.db.Exec(ctx, renameQuestionSet, arg.ID, arg.Name)
	return err
}

const softDeleteQuestionSet = `-- name: SoftDeleteQuestionSet :exec
UPDATE question_sets SET is_deleted = true WHERE id = $1
`

func (q *Queries) SoftDeleteQuestionSet(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, softDeleteQuestionSet, id)
	return err
}

const markSetOpened = `-- name: MarkSetOpened :exec
INSERT INTO set_opens (user_id, set_id, opened_at)
VALUES ($1, $2, CURRENT_TIMESTAMP)
ON CONFLICT (user_id, set_id) DO UPDATE SET opened_at = CURRENT_TIMESTAMP
`

type MarkSetOpenedParams struct {
	UserID pgtype.Int8
	SetID  pgtype.Int8
}

func (q *Queries) MarkSetOpened(ctx context.Context, arg MarkSetOpenedParams) error {
	_, err := q.db.Exec(ctx, markSetOpened, arg.UserID, arg.SetID)
	return err
}
