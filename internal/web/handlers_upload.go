package web

import (
	"errors"
	"fmt"
	"math"
	"mime"
	"net/http"
	"strings"

	"github.com/JonMunkholm/quizdeck/internal/core"
	"github.com/JonMunkholm/quizdeck/internal/logging"
)

// allowedUploadTypes are the Content-Types browsers send for .tsv files.
var allowedUploadTypes = map[string]bool{
	"text/tab-separated-values": true,
	"text/plain":                true,
	"application/octet-stream":  true,
	"text/tsv":                  true,
}

// UploadResponse is the result of an upload or Drive import.
type UploadResponse struct {
	Success           bool    `json:"success"`
	SetID             int64   `json:"set_id"`
	QuestionsImported int     `json:"questions_imported"`
	ExpectedQuestions int     `json:"expected_questions"`
	IsPartial         bool    `json:"is_partial"`
	ProcessingTime    float64 `json:"processing_time"`
	SetName           string  `json:"set_name,omitempty"`
	Duplicate         bool    `json:"duplicate"`
	Warning           string  `json:"warning,omitempty"`
}

// newUploadResponse converts an ingestion result. timedOut selects the
// warning wording of a partial result.
func newUploadResponse(res *core.IngestResult, setName string, timedOut bool) UploadResponse {
	resp := UploadResponse{
		Success:           true,
		SetID:             res.SetID,
		QuestionsImported: res.Imported,
		ExpectedQuestions: res.Expected,
		IsPartial:         res.Partial,
		ProcessingTime:    math.Round(res.Elapsed.Seconds()*100) / 100,
		SetName:           setName,
		Duplicate:         res.Duplicate,
	}
	if res.Partial {
		resp.Warning = partialWarning(res, timedOut)
	}
	return resp
}

func partialWarning(res *core.IngestResult, timedOut bool) string {
	if timedOut {
		return fmt.Sprintf("Upload took %ds. Only %d of %d questions were imported. File may be too large for free tier (30s timeout). Consider splitting into smaller files.",
			int(math.Round(res.Elapsed.Seconds())), res.Imported, res.Expected)
	}
	return fmt.Sprintf("Only %d of %d questions were imported. Some rows may be missing required fields (questionText AND answerText).",
		res.Imported, res.Expected)
}

// checkUploadFile validates the file name and declared Content-Type.
func checkUploadFile(filename, contentType string) error {
	if !strings.HasSuffix(filename, ".tsv") {
		return core.ErrNotTSV
	}
	if contentType == "" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !allowedUploadTypes[mediaType] {
		return fmt.Errorf("%w (detected type: %s)", core.ErrInvalidMediaType, contentType)
	}
	return nil
}

// handleUploadTSV stores an uploaded question file as a new set.
//
// Form fields: file (required), set_name (defaults to the file name),
// description, tags.
func (s *Server) handleUploadTSV(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	maxSize := s.cfg.Upload.MaxRequestSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			respondError(w, r, err, http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, r, fmt.Errorf("%w: %v", errBadRequest, err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errNoFile, http.StatusBadRequest)
		return
	}
	defer file.Close()

	if err := checkUploadFile(header.Filename, header.Header.Get("Content-Type")); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	raw, err := core.ReadUpload(file, maxSize)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	content, err := core.DecodeUpload(raw, s.cfg.Upload.MaxTextSize)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	setName := r.FormValue("set_name")
	if setName == "" {
		setName = header.Filename
	}

	logging.FromContext(r.Context()).Info("processing tsv upload",
		"file", header.Filename,
		"bytes", len(raw),
	)

	res, err := s.service.ImportTSV(r.Context(), core.IngestRequest{
		Content:     content,
		SetName:     setName,
		Description: r.FormValue("description"),
		OwnerID:     user.ID,
		Tags:        r.FormValue("tags"),
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}

	writeJSON(w, r, newUploadResponse(res, setName, s.service.TimedOut(res.Elapsed)))
}
