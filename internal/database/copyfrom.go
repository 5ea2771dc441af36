package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type InsertQuestionsParams struct {
	SetID        pgtype.Int8
	RoundNo      pgtype.Text
	QuestionNo   pgtype.Text
	QuestionText string
	ImageUrl     pgtype.Text
	AnswerText   string
}

// iteratorForInsertQuestions implements pgx.CopyFromSource.
type iteratorForInsertQuestions struct {
	rows                 []InsertQuestionsParams
	skippedFirstNextCall bool
}

func (r *iteratorForInsertQuestions) Next() bool {
	if len(r.rows) == 0 {
		return false
	}
	if !r.skippedFirstNextCall {
		r.skippedFirstNextCall = true
		return true
	}
	r.rows = r.rows[1:]
	return len(r.rows) > 0
}

func (r iteratorForInsertQuestions) Values() ([]interface{}, error) {
	return []interface{}{
		r.rows[0].SetID,
		r.rows[0].RoundNo,
		r.rows[0].QuestionNo,
		r.rows[0].QuestionText,
		r.rows[0].ImageUrl,
		r.rows[0].AnswerText,
	}, nil
}

func (r iteratorForInsertQuestions) Err() error {
	return nil
}

// InsertQuestions bulk loads questions with the COPY protocol.
func (q *Queries) InsertQuestions(ctx context.Context, arg []InsertQuestionsParams) (int64, error) {
	return q.db.CopyFrom(ctx,
		pgx.Identifier{"questions"},
		[]string{"set_id", "round_no", "question_no", "question_text", "image_url", "answer_text"},
		&iteratorForInsertQuestions{rows: arg},
	)
}

type InsertSetInstructionsParams struct {
	SetID           pgtype.Int8
	InstructionText string
	DisplayOrder    int32
}

// iteratorForInsertSetInstructions implements pgx.CopyFromSource.
type iteratorForInsertSetInstructions struct {
	rows                 []InsertSetInstructionsParams
	skippedFirstNextCall bool
}

func (r *iteratorForInsertSetInstructions) Next() bool {
	if len(r.rows) == 0 {
		return false
	}
	if !r.skippedFirstNextCall {
		r.skippedFirstNextCall = true
		return true
	}
	r.rows = r.rows[1:]
	return len(r.rows) > 0
}

func (r iteratorForInsertSetInstructions) Values() ([]interface{}, error) {
	return []interface{}{
		r.rows[0].SetID,
		r.rows[0].InstructionText,
		r.rows[0].DisplayOrder,
	}, nil
}

func (r iteratorForInsertSetInstructions) Err() error {
	return nil
}

// InsertSetInstructions bulk loads instruction rows with the COPY protocol.
func (q *Queries) InsertSetInstructions(ctx context.Context, arg []InsertSetInstructionsParams) (int64, error) {
	return q.db.CopyFrom(ctx,
		pgx.Identifier{"set_instructions"},
		[]string{"set_id", "instruction_text", "display_order"},
		&iteratorForInsertSetInstructions{rows: arg},
	)
}
