package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/JonMunkholm/quizdeck/internal/core"
	"github.com/JonMunkholm/quizdeck/internal/drive"
	"github.com/JonMunkholm/quizdeck/internal/logging"
	"github.com/google/uuid"
)

type driveImportRequest struct {
	FileID  string `json:"fileId" validate:"required"`
	SetName string `json:"setName" validate:"required"`
	Tags    string `json:"tags"`
}

type driveBatchRequest struct {
	Files []core.ExternalFile `json:"files" validate:"required,min=1,dive"`
	Tags  string              `json:"tags"`
}

// alreadyImportedResponse is returned when the file already backs a live set.
type alreadyImportedResponse struct {
	Success bool   `json:"success"`
	SetID   int64  `json:"set_id"`
	Message string `json:"message"`
}

// BatchItemResponse is the outcome of one file of a batch import.
type BatchItemResponse struct {
	FileID          string          `json:"file_id"`
	SetName         string          `json:"set_name"`
	Success         bool            `json:"success"`
	SetID           int64           `json:"set_id,omitempty"`
	AlreadyImported bool            `json:"already_imported,omitempty"`
	Result          *UploadResponse `json:"result,omitempty"`
	Error           *ErrorResponse  `json:"error,omitempty"`
}

// BatchResponse is the result of a batch import.
type BatchResponse struct {
	BatchID   string              `json:"batch_id"`
	Total     int                 `json:"total"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
	Results   []BatchItemResponse `json:"results"`
}

// requireDrive reports ErrSourceUnavailable when no Drive client is set.
func (s *Server) requireDrive(w http.ResponseWriter, r *http.Request) bool {
	if s.drive == nil {
		respondErr(w, r, core.ErrSourceUnavailable)
		return false
	}
	return true
}

// handleDriveFiles lists folders and .tsv files of one folder.
//
// Query: folderId (required).
func (s *Server) handleDriveFiles(w http.ResponseWriter, r *http.Request) {
	if !s.requireDrive(w, r) {
		return
	}

	files, err := s.drive.ListFolder(r.Context(), r.URL.Query().Get("folderId"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if files == nil {
		files = []drive.File{}
	}
	writeJSON(w, r, map[string]any{"files": files})
}

// handleDriveFilesRecursive lists every .tsv file under a folder.
func (s *Server) handleDriveFilesRecursive(w http.ResponseWriter, r *http.Request) {
	if !s.requireDrive(w, r) {
		return
	}

	files, err := s.drive.ListTSVRecursive(r.Context(), r.URL.Query().Get("folderId"))
	if err != nil {
		var tooMany *drive.TooManyFilesError
		if errors.As(err, &tooMany) {
			logging.FromContext(r.Context()).Warn("recursive listing over file cap",
				"count", tooMany.Count,
				"limit", tooMany.Limit,
			)
			writeJSONStatus(w, r, http.StatusBadRequest, map[string]any{
				"error": tooMany.Error(),
				"count": tooMany.Count,
				"limit": tooMany.Limit,
			})
			return
		}
		respondErr(w, r, err)
		return
	}
	if files == nil {
		files = []drive.NestedFile{}
	}
	writeJSON(w, r, map[string]any{"files": files, "count": len(files)})
}

// handleDriveImport imports one Drive file as a new set.
func (s *Server) handleDriveImport(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var req driveImportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	res, err := s.service.ImportExternal(r.Context(), user.ID, core.ExternalFile{
		FileID:  req.FileID,
		SetName: req.SetName,
	}, req.Tags)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	if res.AlreadyImported {
		writeJSON(w, r, alreadyImportedResponse{Success: true, SetID: res.SetID, Message: "Already imported"})
		return
	}
	writeJSON(w, r, newUploadResponse(res.Result, res.SetName, s.service.TimedOut(res.Result.Elapsed)))
}

// handleDriveImportBatch imports several Drive files. Per-file failures are
// reported in the results; the request itself succeeds.
func (s *Server) handleDriveImportBatch(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var req driveBatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}
	if limit := s.cfg.Drive.MaxRecursiveFiles; limit > 0 && len(req.Files) > limit {
		respondErr(w, r, &drive.TooManyFilesError{Count: len(req.Files), Limit: limit})
		return
	}

	batchID := uuid.New().String()
	log := logging.FromContext(r.Context()).With("batch_id", batchID)
	log.Info("drive batch import started", "files", len(req.Files))

	results := s.service.ImportBatch(r.Context(), user.ID, req.Files, req.Tags)
	resp := newBatchResponse(batchID, results, s.service.TimedOut)

	log.Info("drive batch import finished",
		"succeeded", resp.Succeeded,
		"failed", resp.Failed,
	)
	writeJSON(w, r, resp)
}

func newBatchResponse(batchID string, results []core.ExternalImport, timedOut func(time.Duration) bool) BatchResponse {
	resp := BatchResponse{
		BatchID: batchID,
		Total:   len(results),
		Results: make([]BatchItemResponse, 0, len(results)),
	}
	for _, res := range results {
		item := BatchItemResponse{
			FileID:          res.FileID,
			SetName:         res.SetName,
			SetID:           res.SetID,
			AlreadyImported: res.AlreadyImported,
		}
		switch {
		case res.Err != nil:
			msg := core.MapError(res.Err)
			item.Error = &ErrorResponse{
				Error:   msg.Message,
				Message: msg.Message,
				Action:  msg.Action,
				Code:    msg.Code,
			}
			if core.IsFormatError(res.Err) {
				item.Error.Detail = res.Err.Error()
			}
			resp.Failed++
		case res.Result != nil:
			upload := newUploadResponse(res.Result, res.SetName, timedOut(res.Result.Elapsed))
			item.Result = &upload
			item.Success = true
			resp.Succeeded++
		default:
			item.Success = true
			resp.Succeeded++
		}
		resp.Results = append(resp.Results, item)
	}
	return resp
}
