package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/quizdeck/internal/logging"
	"golang.org/x/sync/errgroup"
)

// DriveImportDescription is the description given to sets imported from a
// cloud folder.
const DriveImportDescription = "Imported from Google Drive"

// ErrSourceUnavailable is returned when no cloud file source is configured.
var ErrSourceUnavailable = errors.New("drive api key not configured")

// FileSource downloads files from cloud storage.
type FileSource interface {
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// ExternalFile names one cloud file to import.
type ExternalFile struct {
	FileID  string `json:"fileId" validate:"required"`
	SetName string `json:"setName" validate:"required"`
}

// ExternalImport is the outcome of importing one cloud file.
type ExternalImport struct {
	FileID          string
	SetName         string
	SetID           int64
	AlreadyImported bool
	Result          *IngestResult // nil when AlreadyImported or Err is set
	Err             error
}

// ImportExternal imports a cloud file as a new set owned by userID. A file
// that already backs a live set is not downloaded again.
func (s *Service) ImportExternal(ctx context.Context, userID int64, file ExternalFile, tags string) (*ExternalImport, error) {
	out := &ExternalImport{FileID: file.FileID, SetName: file.SetName}

	existing, err := s.store.FindSetByExternalID(ctx, file.FileID)
	if err != nil {
		return nil, fmt.Errorf("lookup imported file: %w", err)
	}
	if existing != nil {
		out.SetID = existing.ID
		out.AlreadyImported = true
		return out, nil
	}

	if s.source == nil {
		return nil, ErrSourceUnavailable
	}

	raw, err := s.source.Download(ctx, file.FileID)
	if err != nil {
		return nil, err
	}
	content, err := DecodeUpload(raw, s.cfg.MaxTextSize)
	if err != nil {
		return nil, err
	}

	result, err := s.ImportTSV(ctx, IngestRequest{
		Content:     content,
		SetName:     file.SetName,
		Description: DriveImportDescription,
		OwnerID:     userID,
		Tags:        tags,
		ExternalID:  file.FileID,
	})
	if errors.Is(err, ErrDuplicateRace) {
		// Another request imported the same file first.
		if existing, lookupErr := s.store.FindSetByExternalID(ctx, file.FileID); lookupErr == nil && existing != nil {
			out.SetID = existing.ID
			out.AlreadyImported = true
			return out, nil
		}
	}
	if err != nil {
		return nil, err
	}

	out.SetID = result.SetID
	out.Result = result
	return out, nil
}

// ImportBatch imports several cloud files, at most ImportConcurrency at a
// time. Failures are reported per file; results keep the order of files.
func (s *Service) ImportBatch(ctx context.Context, userID int64, files []ExternalFile, tags string) []ExternalImport {
	results := make([]ExternalImport, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.ImportConcurrency)

	for i, f := range files {
		g.Go(func() error {
			res, err := s.ImportExternal(gctx, userID, f, tags)
			if err != nil {
				logging.FromContext(ctx).Warn("batch import file failed", "file_id", f.FileID, "error", err)
				results[i] = ExternalImport{FileID: f.FileID, SetName: f.SetName, Err: err}
				return nil
			}
			results[i] = *res
			return nil
		})
	}
	_ = g.Wait()

	return results
}
