package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/quizdeck/internal/core"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestScanFile(t *testing.T) {
	tests := []struct {
		name             string
		content          string
		wantExpected     int
		wantQuestions    int
		wantInstructions int
		wantErr          error
	}{
		{
			name:             "valid",
			content:          "roundNo\tquestionNo\tquestionText\tanswerText\ninstructions\tRead carefully\t\t\n1\t1\tCapital of France?\tParis\n1\t2\tCapital of Peru?\tLima\n",
			wantExpected:     2,
			wantQuestions:    2,
			wantInstructions: 1,
		},
		{
			name:             "only instructions",
			content:          "roundNo\tquestionNo\tquestionText\tanswerText\ninstructions\tRead carefully\t\t\n",
			wantInstructions: 1,
			wantErr:          core.ErrOnlyInstructions,
		},
		{
			name:    "csv",
			content: "questionText,answerText\nQ,A\n",
			wantErr: core.ErrWrongDelimiter,
		},
		{
			name:    "no answers",
			content: "questionText\tanswerText\nQ\t\n",
			wantErr: core.ErrNoValidQuestions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := scanFile(writeFile(t, "q.tsv", tt.content))

			if !errors.Is(res.Err, tt.wantErr) || (tt.wantErr == nil && res.Err != nil) {
				t.Fatalf("Err = %v, want %v", res.Err, tt.wantErr)
			}
			if res.Expected != tt.wantExpected {
				t.Errorf("Expected = %d, want %d", res.Expected, tt.wantExpected)
			}
			if res.Questions != tt.wantQuestions {
				t.Errorf("Questions = %d, want %d", res.Questions, tt.wantQuestions)
			}
			if res.Instructions != tt.wantInstructions {
				t.Errorf("Instructions = %d, want %d", res.Instructions, tt.wantInstructions)
			}
			if res.Fingerprint != core.Fingerprint(tt.content) {
				t.Errorf("Fingerprint = %q, want %q", res.Fingerprint, core.Fingerprint(tt.content))
			}
		})
	}
}

func TestScanFile_Missing(t *testing.T) {
	res := scanFile(filepath.Join(t.TempDir(), "absent.tsv"))
	if !errors.Is(res.Err, os.ErrNotExist) {
		t.Errorf("Err = %v, want os.ErrNotExist", res.Err)
	}
}

func TestScanCommand(t *testing.T) {
	good := writeFile(t, "good.tsv", "questionText\tanswerText\nQ\tA\n")
	bad := writeFile(t, "bad.tsv", "questionText,answerText\nQ,A\n")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"scan", good, bad})

	err := cmd.Execute()
	if err == nil || err.Error() != "1 of 2 files failed" {
		t.Errorf("Execute() = %v, want 1 of 2 files failed", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("output has %d lines, want 3:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[1], "good.tsv") || !strings.HasSuffix(lines[1], "ok") {
		t.Errorf("line 1 = %q, want good.tsv ... ok", lines[1])
	}
	if !strings.Contains(lines[2], "file appears to be csv") {
		t.Errorf("line 2 = %q, want the csv error", lines[2])
	}
}

func TestImportRequiresOwner(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"import", "--owner", "0", "q.tsv"})

	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "--owner") {
		t.Errorf("Execute() = %v, want owner error", err)
	}
}
