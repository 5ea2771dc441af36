package core

import (
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ReadUpload reads at most limit bytes from r. Larger input fails with
// ErrTextTooLarge instead of being truncated.
func ReadUpload(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, ErrTextTooLarge
	}
	return data, nil
}

// DecodeUpload converts uploaded bytes to text.
//
// Valid UTF-8 is returned unchanged, including a leading byte-order mark, so
// the fingerprint covers exactly what the user sent. Anything else is decoded
// as Latin-1, which accepts every byte sequence. Text longer than maxChars
// characters is rejected; maxChars <= 0 disables the check.
func DecodeUpload(raw []byte, maxChars int) (string, error) {
	var content string
	if utf8.Valid(raw) {
		content = string(raw)
	} else {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrEncoding, err)
		}
		content = string(decoded)
	}

	if maxChars > 0 && utf8.RuneCountInString(content) > maxChars {
		return "", ErrTextTooLarge
	}
	return content, nil
}
