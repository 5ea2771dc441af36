package core

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"io"
	"strings"
)

// Column names of the question file format.
const (
	ColRoundNo      = "roundNo"
	ColQuestionNo   = "questionNo"
	ColQuestionText = "questionText"
	ColImageURL     = "imageUrl"
	ColAnswerText   = "answerText"
)

// MaxFieldSize is the longest single cell accepted, in bytes.
const MaxFieldSize = 131072

const instructionsLabel = "instructions"

var requiredColumns = []string{ColQuestionText, ColAnswerText}

// Row is one data row keyed by trimmed column name.
type Row struct {
	Line   int
	values map[string]string
}

// Get returns the trimmed cell for col, or "" when the row has no such cell.
func (r Row) Get(col string) string {
	return r.values[col]
}

// IsInstruction reports whether the row's round label marks it as an instruction.
func (r Row) IsInstruction() bool {
	return strings.EqualFold(r.Get(ColRoundNo), instructionsLabel)
}

// Table is a parsed question file.
type Table struct {
	Columns []string
	Rows    []Row
}

// QuestionRecord is a question ready to be stored.
type QuestionRecord struct {
	Line         int
	RoundNo      string
	QuestionNo   string
	QuestionText string
	ImageURL     string // "" is stored as NULL
	AnswerText   string
}

// Fingerprint returns the hex SHA-256 of the raw content.
func Fingerprint(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// NormalizeContent converts CRLF and CR line endings to LF and strips a
// leading byte-order mark.
func NormalizeContent(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.TrimPrefix(content, "\ufeff")
}

// CountValidQuestions estimates how many questions content holds. Any
// parse failure yields 0.
func CountValidQuestions(content string) int {
	rows, err := readRows(NormalizeContent(content))
	if err != nil {
		return 0
	}
	return countValid(rows)
}

// ParseTable normalizes content, validates its header and reads every row.
func ParseTable(content string) (*Table, error) {
	content = NormalizeContent(content)

	r := newTSVReader(content)
	header, err := r.Read()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, &RowError{Line: 1, Err: err}
	}

	columns := trimHeader(header)
	if err := checkRequired(content, columns); err != nil {
		return nil, err
	}

	rows, err := readBody(r, header)
	if err != nil {
		return nil, err
	}
	return &Table{Columns: columns, Rows: rows}, nil
}

// readRows parses content without validating the header.
func readRows(content string) ([]Row, error) {
	r := newTSVReader(content)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return readBody(r, header)
}

func newTSVReader(content string) *csv.Reader {
	r := csv.NewReader(strings.NewReader(content))
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r
}

func readBody(r *csv.Reader, header []string) ([]Row, error) {
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(h)
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}

		values := make(map[string]string, len(names))
		for i, name := range names {
			if name == "" {
				continue
			}
			var cell string
			if i < len(record) {
				cell = record[i]
			}
			if len(cell) > MaxFieldSize {
				return nil, &RowError{Line: line, Err: ErrFieldTooLarge}
			}
			values[name] = strings.TrimSpace(cell)
		}
		rows = append(rows, Row{Line: line, values: values})
	}
}

func trimHeader(header []string) []string {
	columns := make([]string, 0, len(header))
	for _, h := range header {
		if h = strings.TrimSpace(h); h != "" {
			columns = append(columns, h)
		}
	}
	return columns
}

func checkRequired(content string, columns []string) error {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	for _, req := range requiredColumns {
		if present[req] {
			continue
		}
		firstLine, _, _ := strings.Cut(content, "\n")
		if strings.Contains(firstLine, ",") && !strings.Contains(firstLine, "\t") {
			return ErrWrongDelimiter
		}
		return &MissingColumnsError{
			Required: append([]string(nil), requiredColumns...),
			Found:    columns,
		}
	}
	return nil
}

func countValid(rows []Row) int {
	n := 0
	for _, row := range rows {
		if row.IsInstruction() {
			continue
		}
		if row.Get(ColQuestionText) != "" && row.Get(ColAnswerText) != "" {
			n++
		}
	}
	return n
}

// ExtractInstructions returns instruction texts in row order. The text comes
// from questionNo, falling back to questionText.
func ExtractInstructions(rows []Row) []string {
	var out []string
	for _, row := range rows {
		if !row.IsInstruction() {
			continue
		}
		text := row.Get(ColQuestionNo)
		if text == "" {
			text = row.Get(ColQuestionText)
		}
		if text != "" {
			out = append(out, text)
		}
	}
	return out
}

// ExtractQuestions returns the rows that carry both a question and an answer.
func ExtractQuestions(rows []Row) []QuestionRecord {
	var out []QuestionRecord
	for _, row := range rows {
		if row.IsInstruction() {
			continue
		}
		q := QuestionRecord{
			Line:         row.Line,
			RoundNo:      row.Get(ColRoundNo),
			QuestionNo:   row.Get(ColQuestionNo),
			QuestionText: row.Get(ColQuestionText),
			ImageURL:     StripImageMarkers(row.Get(ColImageURL)),
			AnswerText:   row.Get(ColAnswerText),
		}
		if q.QuestionText == "" || q.AnswerText == "" {
			continue
		}
		out = append(out, q)
	}
	return out
}

// StripImageMarkers removes the __..__ wrapper from an image reference.
// Values without both markers are returned unchanged.
func StripImageMarkers(s string) string {
	if strings.HasPrefix(s, "__") && strings.HasSuffix(s, "__") {
		return strings.Trim(s, "_")
	}
	return s
}
