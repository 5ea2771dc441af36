package core

import (
	"errors"
	"fmt"
	"strings"
)

// Structural-format and empty-result failures of an ingestion.
var (
	ErrWrongDelimiter   = errors.New("file appears to be csv, not tsv")
	ErrOnlyInstructions = errors.New("file contains only instructions, no questions found")
	ErrNoValidQuestions = errors.New("no valid questions found")
	ErrFieldTooLarge    = fmt.Errorf("field larger than field limit (%d)", MaxFieldSize)
)

// Upload handling failures.
var (
	ErrTextTooLarge     = errors.New("file too large: text content exceeds limit")
	ErrEncoding         = errors.New("encoding error: file could not be decoded")
	ErrNotTSV           = errors.New("file must be a tsv file")
	ErrInvalidMediaType = errors.New("invalid file type")
)

// Lookup and ownership failures.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden: not the owner of this question set")
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrDuplicateRace is returned by a store when a concurrent ingestion
	// created the same (fingerprint, owner) or external id first.
	ErrDuplicateRace = errors.New("question set already exists")
)

// MissingColumnsError reports a header without the required columns.
type MissingColumnsError struct {
	Required []string
	Found    []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: [%s]; found: [%s]",
		strings.Join(e.Required, ", "), strings.Join(e.Found, ", "))
}

// RowError attaches the 1-based source line to a malformed row.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("tsv parsing error at line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// IsFormatError reports whether err was caused by the content of the file
// rather than by the system, so its text is safe and useful to show verbatim.
func IsFormatError(err error) bool {
	var mc *MissingColumnsError
	var re *RowError
	switch {
	case errors.As(err, &mc), errors.As(err, &re):
		return true
	case errors.Is(err, ErrWrongDelimiter),
		errors.Is(err, ErrOnlyInstructions),
		errors.Is(err, ErrNoValidQuestions),
		errors.Is(err, ErrTextTooLarge),
		errors.Is(err, ErrEncoding),
		errors.Is(err, ErrNotTSV),
		errors.Is(err, ErrInvalidMediaType):
		return true
	}
	return false
}
