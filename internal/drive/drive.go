// Package drive lists and downloads question files from public Google Drive
// folders using an API key.
package drive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/quizdeck/internal/core"
	"github.com/JonMunkholm/quizdeck/internal/logging"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// FolderMimeType is the Drive MIME type of a folder.
const FolderMimeType = "application/vnd.google-apps.folder"

const (
	pageSize   = 1000
	fileFields = "nextPageToken, files(id, name, mimeType)"
)

// Defaults applied to zero Config fields.
const (
	DefaultMaxAPICalls       = 100
	DefaultMaxRecursiveFiles = 50
	DefaultRequestTimeout    = 30 * time.Second
	DefaultMaxDownloadSize   = 16 << 20
)

// ErrFolderIDRequired is returned when no folder id was given.
var ErrFolderIDRequired = errors.New("folder id required")

// FolderTooLargeError is returned when a recursive listing needs more folder
// scans than allowed.
type FolderTooLargeError struct {
	Scanned int
}

func (e *FolderTooLargeError) Error() string {
	return fmt.Sprintf("Folder structure too large (scanned %d folders). Please select a smaller folder.", e.Scanned)
}

// TooManyFilesError is returned when a recursive listing finds more files
// than one batch may import.
type TooManyFilesError struct {
	Count int
	Limit int
}

func (e *TooManyFilesError) Error() string {
	return fmt.Sprintf("Found %d files, but recursive import is limited to %d files per batch to ensure reliable imports.", e.Count, e.Limit)
}

// File is a Drive file or folder.
type File struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

// IsFolder reports whether f is a folder.
func (f File) IsFolder() bool {
	return f.MimeType == FolderMimeType
}

// IsTSV reports whether f is a question file.
func (f File) IsTSV() bool {
	return !f.IsFolder() && strings.HasSuffix(f.Name, ".tsv")
}

// NestedFile is a question file found by a recursive listing. Path is the
// folder path below the listed folder, "" for its direct children.
type NestedFile struct {
	File
	Path     string `json:"path"`
	FullPath string `json:"fullPath"`
}

// Config holds the client limits.
type Config struct {
	APIKey            string
	MaxAPICalls       int
	MaxRecursiveFiles int
	RequestTimeout    time.Duration
	MaxDownloadSize   int64
}

func (c Config) withDefaults() Config {
	if c.MaxAPICalls <= 0 {
		c.MaxAPICalls = DefaultMaxAPICalls
	}
	if c.MaxRecursiveFiles <= 0 {
		c.MaxRecursiveFiles = DefaultMaxRecursiveFiles
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.MaxDownloadSize <= 0 {
		c.MaxDownloadSize = DefaultMaxDownloadSize
	}
	return c
}

// api is the part of the Drive service the client calls.
type api interface {
	list(ctx context.Context, query, orderBy, pageToken string) ([]File, string, error)
	download(ctx context.Context, fileID string, limit int64) ([]byte, error)
}

// Client reads public Drive folders.
type Client struct {
	api api
	cfg Config
}

// New creates a Client authenticated with cfg.APIKey.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, core.ErrSourceUnavailable
	}
	svc, err := gdrive.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("drive: create service: %w", err)
	}
	return newClient(&serviceAPI{svc: svc}, cfg), nil
}

func newClient(a api, cfg Config) *Client {
	return &Client{api: a, cfg: cfg.withDefaults()}
}

// ListFolder returns the folders and question files directly inside
// folderID, folders first and then by name.
func (c *Client) ListFolder(ctx context.Context, folderID string) ([]File, error) {
	if folderID == "" {
		return nil, ErrFolderIDRequired
	}

	var out []File
	token := ""
	for {
		files, next, err := c.listPage(ctx, browseQuery(folderID), "folder,name", token)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if f.IsFolder() || f.IsTSV() {
				out = append(out, f)
			}
		}
		if next == "" {
			return out, nil
		}
		token = next
	}
}

// ListTSVRecursive returns every question file below folderID, depth first.
// Each folder scanned counts against MaxAPICalls.
func (c *Client) ListTSVRecursive(ctx context.Context, folderID string) ([]NestedFile, error) {
	if folderID == "" {
		return nil, ErrFolderIDRequired
	}

	w := &walker{client: c}
	if err := w.walk(ctx, folderID, ""); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Debug("drive recursive listing",
		"folder_id", folderID,
		"folders", w.calls,
		"files", len(w.files),
	)

	if len(w.files) > c.cfg.MaxRecursiveFiles {
		return nil, &TooManyFilesError{Count: len(w.files), Limit: c.cfg.MaxRecursiveFiles}
	}
	return w.files, nil
}

// Download returns the content of a file. It implements core.FileSource.
func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	data, err := c.api.download(ctx, fileID, c.cfg.MaxDownloadSize)
	if err != nil {
		if errors.Is(err, core.ErrTextTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("drive: download %s: %w", fileID, err)
	}
	return data, nil
}

func (c *Client) listPage(ctx context.Context, query, orderBy, token string) ([]File, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	files, next, err := c.api.list(ctx, query, orderBy, token)
	if err != nil {
		return nil, "", fmt.Errorf("drive: list files: %w", err)
	}
	return files, next, nil
}

type walker struct {
	client *Client
	calls  int
	files  []NestedFile
}

func (w *walker) walk(ctx context.Context, folderID, path string) error {
	w.calls++
	if w.calls > w.client.cfg.MaxAPICalls {
		return &FolderTooLargeError{Scanned: w.client.cfg.MaxAPICalls}
	}

	var items []File
	token := ""
	for {
		files, next, err := w.client.listPage(ctx, childrenQuery(folderID), "", token)
		if err != nil {
			return err
		}
		items = append(items, files...)
		if next == "" {
			break
		}
		token = next
	}

	for _, item := range items {
		switch {
		case item.IsFolder():
			if err := w.walk(ctx, item.ID, joinPath(path, item.Name)); err != nil {
				return err
			}
		case item.IsTSV():
			w.files = append(w.files, NestedFile{
				File:     item,
				Path:     path,
				FullPath: joinPath(path, item.Name),
			})
		}
	}
	return nil
}

func browseQuery(folderID string) string {
	return fmt.Sprintf("'%s' in parents and (mimeType = '%s' or (name contains '.tsv' and not name contains '.pdf')) and trashed = false",
		escapeQuery(folderID), FolderMimeType)
}

func childrenQuery(folderID string) string {
	return fmt.Sprintf("'%s' in parents and trashed = false", escapeQuery(folderID))
}

// escapeQuery quotes a value for a single-quoted Drive query literal.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "/" + name
}

// serviceAPI calls the real Drive service.
type serviceAPI struct {
	svc *gdrive.Service
}

func (s *serviceAPI) list(ctx context.Context, query, orderBy, pageToken string) ([]File, string, error) {
	call := s.svc.Files.List().
		Q(query).
		PageSize(pageSize).
		Fields(fileFields).
		Context(ctx)
	if orderBy != "" {
		call = call.OrderBy(orderBy)
	}
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	res, err := call.Do()
	if err != nil {
		return nil, "", err
	}

	files := make([]File, 0, len(res.Files))
	for _, f := range res.Files {
		files = append(files, File{ID: f.Id, Name: f.Name, MimeType: f.MimeType})
	}
	return files, res.NextPageToken, nil
}

func (s *serviceAPI) download(ctx context.Context, fileID string, limit int64) ([]byte, error) {
	resp, err := s.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return core.ReadUpload(resp.Body, limit)
}
