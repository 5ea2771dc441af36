package core

import (
	"time"
)

// User is an authenticated account.
type User struct {
	ID             int64     `json:"id"`
	SupabaseUserID string    `json:"supabase_user_id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	CreatedAt      time.Time `json:"created_at"`
}

// Page is an optional limit/offset window. A nil Limit returns every row.
type Page struct {
	Limit  *int
	Offset int
}

// QuestionSet is a set as listed for a signed-in user.
type QuestionSet struct {
	ID                 int64      `json:"id"`
	Name               string     `json:"name"`
	Description        *string    `json:"description"`
	UploadedBy         *int64     `json:"uploaded_by"`
	UploadedByUsername *string    `json:"uploaded_by_username"`
	CreatedAt          *time.Time `json:"created_at"`
	TotalQuestions     int        `json:"total_questions"`
	Tags               *string    `json:"tags"`
	GoogleDriveID      *string    `json:"google_drive_id"`
	QuestionsAttempted int64      `json:"questions_attempted"`
	DirectlyOpened     bool       `json:"directly_opened"`
	LastOpened         *time.Time `json:"last_opened"`
}

// PublicQuestionSet is a set as listed for guests.
type PublicQuestionSet struct {
	ID                 int64      `json:"id"`
	Name               string     `json:"name"`
	Description        *string    `json:"description"`
	Tags               *string    `json:"tags"`
	CreatedAt          *time.Time `json:"created_at"`
	UploadedByUsername *string    `json:"uploaded_by_username"`
	TotalQuestions     int64      `json:"total_questions"`
}

// Question is a stored question without per-user state.
type Question struct {
	ID           int64   `json:"id"`
	SetID        int64   `json:"set_id"`
	RoundNo      *string `json:"round_no"`
	QuestionNo   *string `json:"question_no"`
	QuestionText string  `json:"question_text"`
	ImageURL     *string `json:"image_url"`
	AnswerText   string  `json:"answer_text"`
	SetName      string  `json:"set_name,omitempty"`
}

// QuestionProgress is a question with the caller's progress on it.
type QuestionProgress struct {
	Question
	CreatedAt     *time.Time `json:"created_at"`
	Attempted     *bool      `json:"attempted"`
	Correct       *bool      `json:"correct"`
	AttemptCount  *int       `json:"attempt_count"`
	LastAttempted *time.Time `json:"last_attempted"`
	IsMissed      bool       `json:"is_missed"`
	IsBookmarked  bool       `json:"is_bookmarked"`
}

// SetQuestions is the content of one set.
type SetQuestions struct {
	Questions    []QuestionProgress `json:"questions"`
	Instructions []string           `json:"instructions"`
}

// PublicSetQuestions is the content of one set for guests.
type PublicSetQuestions struct {
	Questions    []Question `json:"questions"`
	Instructions []string   `json:"instructions"`
}

// Progress is the caller's recorded state for one question.
type Progress struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	QuestionID    int64      `json:"question_id"`
	Attempted     *bool      `json:"attempted"`
	Correct       *bool      `json:"correct"`
	LastAttempted *time.Time `json:"last_attempted"`
	AttemptCount  int        `json:"attempt_count"`
}

// MissedMark is a row of the caller's missed list.
type MissedMark struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	QuestionID int64      `json:"question_id"`
	AddedAt    *time.Time `json:"added_at"`
}

// MissedQuestion is a question on the caller's review list.
type MissedQuestion struct {
	Question
	CreatedAt *time.Time `json:"created_at"`
	AddedAt   *time.Time `json:"added_at"`
}

// BookmarkResult reports what ToggleBookmark did.
type BookmarkResult struct {
	Action       string `json:"action"`
	IsBookmarked bool   `json:"is_bookmarked"`
}

// Bookmark toggle actions.
const (
	BookmarkAdded   = "added"
	BookmarkRemoved = "removed"
)

// MixedFilter selects which questions MixedQuestions draws from.
type MixedFilter string

const (
	FilterAll         MixedFilter = "all"
	FilterUnattempted MixedFilter = "unattempted"
	FilterMissed      MixedFilter = "missed"
	FilterBookmarks   MixedFilter = "bookmarks"
)

// ParseMixedFilter maps a query value to a filter. Unknown values mean all.
func ParseMixedFilter(s string) MixedFilter {
	switch f := MixedFilter(s); f {
	case FilterUnattempted, FilterMissed, FilterBookmarks:
		return f
	default:
		return FilterAll
	}
}

// Stats summarizes the caller's practice across live sets.
type Stats struct {
	TotalQuestions int64   `json:"total_questions"`
	Attempted      int64   `json:"attempted"`
	Correct        int64   `json:"correct"`
	Missed         int64   `json:"missed"`
	Bookmarks      int64   `json:"bookmarks"`
	Accuracy       float64 `json:"accuracy"`
	Streak         int     `json:"streak"`
}
