package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Bookmark struct {
	ID         int64
	UserID     pgtype.Int8
	QuestionID pgtype.Int8
	CreatedAt  pgtype.Timestamp
}

type DailyActivity struct {
	UserID             int64
	ActivityDate       pgtype.Date
	QuestionsPracticed int32
}

type MissedQuestion struct {
	ID             int64
	UserID         pgtype.Int8
	QuestionID     pgtype.Int8
	AddedAt        pgtype.Timestamp
	ExportedToAnki pgtype.Bool
}

type Question struct {
	ID           int64
	SetID        pgtype.Int8
	RoundNo      pgtype.Text
	QuestionNo   pgtype.Text
	QuestionText string
	ImageUrl     pgtype.Text
	AnswerText   string
	CreatedAt    pgtype.Timestamp
}

type QuestionSet struct {
	ID             int64
	Name           string
	Description    pgtype.Text
	UploadedBy     pgtype.Int8
	CreatedAt      pgtype.Timestamp
	TotalQuestions pgtype.Int4
	Tags           pgtype.Text
	IsDeleted      bool
	GoogleDriveID  pgtype.Text
	ContentHash    pgtype.Text
}

type SetInstruction struct {
	ID              int64
	SetID           pgtype.Int8
	InstructionText string
	DisplayOrder    int32
}

type SetOpen struct {
	ID       int64
	UserID   pgtype.Int8
	SetID    pgtype.Int8
	OpenedAt pgtype.Timestamp
}

type User struct {
	ID             int64
	SupabaseUserID pgtype.UUID
	Email          string
	Username       string
	CreatedAt      pgtype.Timestamp
}

type UserProgress struct {
	ID            int64
	UserID        pgtype.Int8
	QuestionID    pgtype.Int8
	Attempted     pgtype.Bool
	Correct       pgtype.Bool
	LastAttempted pgtype.Timestamp
	AttemptCount  pgtype.Int4
}
