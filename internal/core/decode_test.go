package core

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestDecodeUpload(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		maxChars int
		want     string
		wantErr  error
	}{
		{"utf8", []byte("questionText\tanswerText\nCafé\tÅ"), 0, "questionText\tanswerText\nCafé\tÅ", nil},
		{"keeps bom", []byte("\xef\xbb\xbfq\ta"), 0, "\ufeffq\ta", nil},
		{"latin1 fallback", []byte("Caf\xe9\t\xc5"), 0, "Café\tÅ", nil},
		{"limit counts characters", []byte("ééé"), 3, "ééé", nil},
		{"over limit", []byte("abcd"), 3, "", ErrTextTooLarge},
		{"empty", nil, 10, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeUpload(tt.raw, tt.maxChars)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("DecodeUpload() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DecodeUpload() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeUpload_FingerprintIncludesBOM(t *testing.T) {
	plain, _ := DecodeUpload([]byte("questionText\tanswerText\nQ\tA"), 0)
	withBOM, _ := DecodeUpload([]byte("\xef\xbb\xbfquestionText\tanswerText\nQ\tA"), 0)

	if Fingerprint(plain) == Fingerprint(withBOM) {
		t.Error("BOM should change the fingerprint")
	}
	if NormalizeContent(plain) != NormalizeContent(withBOM) {
		t.Error("BOM should not change the normalized content")
	}
}

func TestReadUpload(t *testing.T) {
	data, err := ReadUpload(strings.NewReader("12345"), 5)
	if err != nil {
		t.Fatalf("ReadUpload() error = %v", err)
	}
	if string(data) != "12345" {
		t.Errorf("ReadUpload() = %q, want %q", data, "12345")
	}

	_, err = ReadUpload(bytes.NewReader(make([]byte, 6)), 5)
	if !errors.Is(err, ErrTextTooLarge) {
		t.Errorf("ReadUpload(oversized) error = %v, want ErrTextTooLarge", err)
	}
}
