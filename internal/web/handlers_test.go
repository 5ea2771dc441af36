package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/quizdeck/internal/core"
	"github.com/JonMunkholm/quizdeck/internal/drive"
)

// multipartUpload builds an upload request with one file part.
func multipartUpload(t *testing.T, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/upload-tsv", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", bearer(t))
	return req
}

func TestUploadTSV_Rejects(t *testing.T) {
	tsv := []byte("questionText\tanswerText\nQ\tA\n")

	tests := []struct {
		name       string
		req        func(t *testing.T) *http.Request
		maxRequest int64
		wantStatus int
		wantCode   string
	}{
		{
			name: "no file field",
			req: func(t *testing.T) *http.Request {
				var body bytes.Buffer
				mw := multipart.NewWriter(&body)
				_ = mw.WriteField("set_name", "Biology")
				_ = mw.Close()
				req := httptest.NewRequest(http.MethodPost, "/api/upload-tsv", &body)
				req.Header.Set("Content-Type", mw.FormDataContentType())
				req.Header.Set("Authorization", bearer(t))
				return req
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "FILE006",
		},
		{
			name: "wrong extension",
			req: func(t *testing.T) *http.Request {
				return multipartUpload(t, "questions.csv", "text/plain", tsv)
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "FILE004",
		},
		{
			name: "wrong media type",
			req: func(t *testing.T) *http.Request {
				return multipartUpload(t, "questions.tsv", "image/png", tsv)
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "FILE005",
		},
		{
			name: "body over limit",
			req: func(t *testing.T) *http.Request {
				return multipartUpload(t, "questions.tsv", "text/plain", bytes.Repeat([]byte("x"), 8192))
			},
			maxRequest: 1024,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   "FILE002",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			if tt.maxRequest > 0 {
				cfg.Upload.MaxRequestSize = tt.maxRequest
			}
			s := newTestServer(t, cfg, nil, nil)

			rec := serve(s, tt.req(t))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := decodeError(t, rec).Code; got != tt.wantCode {
				t.Errorf("code = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestUploadTSV_TextOverLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxTextSize = 10
	s := newTestServer(t, cfg, nil, nil)

	rec := serve(s, multipartUpload(t, "q.tsv", "text/tab-separated-values", []byte("questionText\tanswerText\n")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	resp := decodeError(t, rec)
	if resp.Code != "FILE001" {
		t.Errorf("code = %q, want FILE001", resp.Code)
	}
	if resp.Detail == "" {
		t.Error("Detail is empty, want the raw error text")
	}
}

func TestCheckUploadFile(t *testing.T) {
	tests := []struct {
		filename    string
		contentType string
		want        error
	}{
		{"a.tsv", "text/tab-separated-values", nil},
		{"a.tsv", "text/plain; charset=utf-8", nil},
		{"a.tsv", "application/octet-stream", nil},
		{"a.tsv", "text/tsv", nil},
		{"a.tsv", "", nil},
		{"a.TSV", "text/plain", core.ErrNotTSV},
		{"a.tsv.txt", "text/plain", core.ErrNotTSV},
		{"a.tsv", "application/pdf", core.ErrInvalidMediaType},
		{"a.tsv", "not a media type;;", core.ErrInvalidMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.filename+" "+tt.contentType, func(t *testing.T) {
			err := checkUploadFile(tt.filename, tt.contentType)
			if !errors.Is(err, tt.want) || (tt.want == nil && err != nil) {
				t.Errorf("checkUploadFile() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewUploadResponse(t *testing.T) {
	tests := []struct {
		name     string
		res      core.IngestResult
		timedOut bool
		warning  string
	}{
		{
			name: "complete",
			res:  core.IngestResult{SetID: 4, Imported: 10, Expected: 10, Elapsed: 1234 * time.Millisecond},
		},
		{
			name:    "missing fields",
			res:     core.IngestResult{SetID: 4, Imported: 7, Expected: 10, Partial: true, Elapsed: time.Second},
			warning: "Only 7 of 10 questions were imported. Some rows may be missing required fields (questionText AND answerText).",
		},
		{
			name:     "timed out",
			res:      core.IngestResult{SetID: 4, Imported: 9, Expected: 10, Partial: true, Elapsed: 21600 * time.Millisecond},
			timedOut: true,
			warning:  "Upload took 22s. Only 9 of 10 questions were imported. File may be too large for free tier (30s timeout). Consider splitting into smaller files.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := newUploadResponse(&tt.res, "Biology", tt.timedOut)
			if !resp.Success || resp.SetID != 4 || resp.SetName != "Biology" {
				t.Errorf("resp = %+v, want success for set 4 named Biology", resp)
			}
			if resp.Warning != tt.warning {
				t.Errorf("Warning = %q, want %q", resp.Warning, tt.warning)
			}
		})
	}

	resp := newUploadResponse(&core.IngestResult{Elapsed: 1234 * time.Millisecond}, "", false)
	if resp.ProcessingTime != 1.23 {
		t.Errorf("ProcessingTime = %v, want 1.23", resp.ProcessingTime)
	}
}

func TestNewBatchResponse(t *testing.T) {
	results := []core.ExternalImport{
		{FileID: "a", SetName: "A", SetID: 1, Result: &core.IngestResult{SetID: 1, Imported: 3, Expected: 3}},
		{FileID: "b", SetName: "B", SetID: 2, AlreadyImported: true},
		{FileID: "c", SetName: "C", Err: core.ErrWrongDelimiter},
		{FileID: "d", SetName: "D", Err: errors.New("drive: download d: 404")},
	}

	resp := newBatchResponse("batch-1", results, func(time.Duration) bool { return false })

	if resp.Total != 4 || resp.Succeeded != 2 || resp.Failed != 2 {
		t.Errorf("total, succeeded, failed = %d, %d, %d, want 4, 2, 2", resp.Total, resp.Succeeded, resp.Failed)
	}
	if got := resp.Results[0].Result; got == nil || got.QuestionsImported != 3 {
		t.Errorf("Results[0].Result = %+v, want 3 imported", got)
	}
	if !resp.Results[1].AlreadyImported || !resp.Results[1].Success {
		t.Errorf("Results[1] = %+v, want successful already imported", resp.Results[1])
	}
	if e := resp.Results[2].Error; e == nil || e.Code != "TSV001" || e.Detail == "" {
		t.Errorf("Results[2].Error = %+v, want TSV001 with detail", e)
	}
	if e := resp.Results[3].Error; e == nil || e.Code != "DRV005" || e.Detail != "" {
		t.Errorf("Results[3].Error = %+v, want DRV005 without detail", e)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"body too large", &http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge},
		{"wrong delimiter", core.ErrWrongDelimiter, http.StatusBadRequest},
		{"text too large", core.ErrTextTooLarge, http.StatusBadRequest},
		{"missing columns", &core.MissingColumnsError{Required: []string{"questionText", "answerText"}}, http.StatusBadRequest},
		{"empty name", core.ErrEmptyName, http.StatusBadRequest},
		{"bad id", errBadID, http.StatusBadRequest},
		{"folder id", drive.ErrFolderIDRequired, http.StatusBadRequest},
		{"folder too large", &drive.FolderTooLargeError{Scanned: 100}, http.StatusBadRequest},
		{"auth", errAuthRequired, http.StatusUnauthorized},
		{"forbidden", core.ErrForbidden, http.StatusForbidden},
		{"not found", fmt.Errorf("set 3: %w", core.ErrNotFound), http.StatusNotFound},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests},
		{"busy", core.ErrTooManyUploads, http.StatusServiceUnavailable},
		{"no drive", core.ErrSourceUnavailable, http.StatusServiceUnavailable},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRespondError(t *testing.T) {
	t.Run("format error carries detail", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/upload-tsv", nil)
		err := &core.RowError{Line: 14, Err: errors.New("bare quote in field")}
		respondError(rec, req, err, http.StatusBadRequest)

		resp := decodeError(t, rec)
		if resp.Code != "TSV003" {
			t.Errorf("Code = %q, want TSV003", resp.Code)
		}
		if !strings.Contains(resp.Detail, "14") {
			t.Errorf("Detail = %q, want it to name line 14", resp.Detail)
		}
		if resp.Error != resp.Message {
			t.Errorf("Error = %q, Message = %q, want equal", resp.Error, resp.Message)
		}
	})

	t.Run("internal error hides text", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		respondError(rec, req, errors.New("pq: relation missing"), http.StatusInternalServerError)

		resp := decodeError(t, rec)
		if resp.Code != "ERR000" || resp.Detail != "" {
			t.Errorf("resp = %+v, want ERR000 without detail", resp)
		}
		if got := rec.Header().Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}
	})
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int // -1 for no limit
		wantOffset int
	}{
		{"", -1, 0},
		{"limit=20", 20, 0},
		{"limit=20&offset=40", 20, 40},
		{"limit=0", 0, 0},
		{"limit=abc&offset=-3", -1, 0},
		{"offset=5", -1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			page := parsePage(httptest.NewRequest(http.MethodGet, "/api/question-sets?"+tt.query, nil))
			gotLimit := -1
			if page.Limit != nil {
				gotLimit = *page.Limit
			}
			if gotLimit != tt.wantLimit || page.Offset != tt.wantOffset {
				t.Errorf("parsePage(%q) = limit %d offset %d, want %d %d", tt.query, gotLimit, page.Offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}
