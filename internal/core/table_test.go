package core

import (
	"strings"
	"testing"
)

func TestFingerprint(t *testing.T) {
	a := Fingerprint("questionText\tanswerText\nQ\tA")
	b := Fingerprint("questionText\tanswerText\nQ\tA")
	c := Fingerprint("questionText\tanswerText\nQ\tA ")

	if a != b {
		t.Errorf("Fingerprint not deterministic: %q != %q", a, b)
	}
	if a == c {
		t.Error("Fingerprint equal for different content")
	}
	if len(a) != 64 {
		t.Errorf("len(Fingerprint) = %d, want 64", len(a))
	}
	if got := Fingerprint(""); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("Fingerprint(\"\") = %q", got)
	}
}

func TestNormalizeContent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a\r\nb", "a\nb"},
		{"a\rb", "a\nb"},
		{"a\r\n\r\nb\r", "a\n\nb\n"},
		{"\ufeffa\tb", "a\tb"},
		{"a\ufeffb", "a\ufeffb"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		if got := NormalizeContent(tt.in); got != tt.want {
			t.Errorf("NormalizeContent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCountValidQuestions(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 0},
		{"header only", "questionText\tanswerText", 0},
		{"two valid", "questionText\tanswerText\nQ1\tA1\nQ2\tA2", 2},
		{"skips instructions", "roundNo\tquestionText\tanswerText\nInstructions\tRead\tthis\n1\tQ\tA", 1},
		{"skips blanks", "questionText\tanswerText\n \tA\nQ\t\nQ\tA", 1},
		{"no required columns", "a\tb\nQ\tA", 0},
		{"oversized field", "questionText\tanswerText\nQ\t" + strings.Repeat("x", MaxFieldSize+1), 0},
		{"crlf", "questionText\tanswerText\r\nQ1\tA1\r\nQ2\tA2\r\n", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountValidQuestions(tt.content); got != tt.want {
				t.Errorf("CountValidQuestions() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseTable(t *testing.T) {
	table, err := ParseTable("  roundNo \tquestionText\t\tanswerText\n1\tQ1\tignored\tA1\n2\tQ2")
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}

	wantCols := []string{"roundNo", "questionText", "answerText"}
	if strings.Join(table.Columns, ",") != strings.Join(wantCols, ",") {
		t.Errorf("Columns = %v, want %v", table.Columns, wantCols)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(table.Rows))
	}

	r0, r1 := table.Rows[0], table.Rows[1]
	if r0.Line != 2 || r1.Line != 3 {
		t.Errorf("lines = %d,%d, want 2,3", r0.Line, r1.Line)
	}
	if r0.Get(ColRoundNo) != "1" || r0.Get(ColAnswerText) != "A1" {
		t.Errorf("row 0 = %q/%q", r0.Get(ColRoundNo), r0.Get(ColAnswerText))
	}
	if r1.Get(ColAnswerText) != "" {
		t.Errorf("short row answer = %q, want empty", r1.Get(ColAnswerText))
	}
	if r0.Get("missing") != "" {
		t.Error("Get(unknown column) should be empty")
	}
}

func TestParseTable_Quotes(t *testing.T) {
	table, err := ParseTable("questionText\tanswerText\n\"Who said \"\"hi\"\"?\"\tMe\nHe said \"hi\"\tYou")
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}
	if got := table.Rows[0].Get(ColQuestionText); got != `Who said "hi"?` {
		t.Errorf("quoted field = %q", got)
	}
	if got := table.Rows[1].Get(ColQuestionText); got != `He said "hi"` {
		t.Errorf("bare quotes = %q", got)
	}
}

func TestParseTable_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(error) bool
	}{
		{"csv", "questionText,answerText\nQ,A", func(err error) bool { return err == ErrWrongDelimiter }},
		{"empty", "", func(err error) bool { _, ok := err.(*MissingColumnsError); return ok }},
		{"comma with tab", "questionText,x\ty\nQ\tA", func(err error) bool { _, ok := err.(*MissingColumnsError); return ok }},
		{"too large", "questionText\tanswerText\n" + strings.Repeat("y", MaxFieldSize+1) + "\tA", func(err error) bool {
			re, ok := err.(*RowError)
			return ok && re.Line == 2
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable(tt.content)
			if err == nil || !tt.check(err) {
				t.Errorf("ParseTable() error = %v", err)
			}
		})
	}
}

func TestExtractInstructions(t *testing.T) {
	table, err := ParseTable(strings.Join([]string{
		"roundNo\tquestionNo\tquestionText\tanswerText",
		"instructions\tFrom number\tFrom text\t",
		"INSTRUCTIONS\t\tFallback\t",
		"Instructions\t\t\t",
		"1\t1\tQ\tA",
	}, "\n"))
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}

	got := ExtractInstructions(table.Rows)
	want := []string{"From number", "Fallback"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("ExtractInstructions() = %q, want %q", got, want)
	}
}

func TestExtractQuestions_Disjoint(t *testing.T) {
	table, err := ParseTable(strings.Join([]string{
		"roundNo\tquestionText\tanswerText",
		"instructions\tLooks like a question\tand an answer",
		"1\tQ1\tA1",
	}, "\n"))
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}

	qs := ExtractQuestions(table.Rows)
	if len(qs) != 1 || qs[0].QuestionText != "Q1" {
		t.Errorf("ExtractQuestions() = %+v, want only Q1", qs)
	}
	if n := len(ExtractInstructions(table.Rows)); n != 1 {
		t.Errorf("ExtractInstructions() = %d, want 1", n)
	}
}

func TestStripImageMarkers(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"__http://x/y.png__", "http://x/y.png"},
		{"http://x/y.png", "http://x/y.png"},
		{"__http://x/y.png", "__http://x/y.png"},
		{"http://x/y.png__", "http://x/y.png__"},
		{"", ""},
		{"____", ""},
		{"___a___", "a"},
	}

	for _, tt := range tests {
		if got := StripImageMarkers(tt.in); got != tt.want {
			t.Errorf("StripImageMarkers(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
