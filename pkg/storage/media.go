package storage

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"

	"go-profile-backend/pkg/apperror"
	"go-profile-backend/pkg/logger"

	"github.com/google/uuid"
)

// Uploader persists an object and returns the URL it is served from
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// MediaConfig bounds what the media pipeline accepts
type MediaConfig struct {
	MaxBytes     int
	MaxDimension int
	Quality      int
}

// MediaStore validates, downsizes and uploads user media
type MediaStore struct {
	uploader Uploader
	scanner  Scanner
	cfg      MediaConfig
}

func NewMediaStore(uploader Uploader, cfg MediaConfig) *MediaStore {
	return &MediaStore{uploader: uploader, cfg: cfg}
}

// WithScanner makes every upload pass a malware scan before it is stored
func (m *MediaStore) WithScanner(s Scanner) *MediaStore {
	m.scanner = s
	return m
}

// Upload is one file received from a client
type Upload struct {
	Filename string
	Data     []byte
	// AllowDocuments admits PDFs alongside images
	AllowDocuments bool
}

// Store validates the upload and writes it under <folder>/<owner>/ returning its URL.
// Images other than GIF are downscaled and stored as JPEG.
func (m *MediaStore) Store(ctx context.Context, ownerID, folder string, up Upload) (string, error) {
	if len(up.Data) == 0 {
		return "", apperror.BadRequest("Uploaded file is empty")
	}
	if m.cfg.MaxBytes > 0 && len(up.Data) > m.cfg.MaxBytes {
		return "", apperror.BadRequest(fmt.Sprintf("File exceeds the %.1f MB limit", float64(m.cfg.MaxBytes)/(1<<20)))
	}

	result := ValidateFile(up.Filename, up.Data, up.AllowDocuments)
	if !result.Valid {
		logger.Log.Warn("Rejected media upload",
			"owner_id", ownerID,
			"filename", up.Filename,
			"mime", result.DetectedMIME,
			"reason", result.Error,
		)
		return "", apperror.BadRequest("Invalid file: " + result.Error)
	}

	if m.scanner != nil {
		verdict, err := m.scanner.Scan(ctx, up.Data)
		if err != nil {
			logger.Log.Error("Malware scan failed", "owner_id", ownerID, "error", err)
			return "", apperror.New(http.StatusServiceUnavailable, apperror.KindInternal, "File could not be scanned. Please try again later.", err)
		}
		if verdict.Infected {
			logger.Log.Warn("Rejected infected upload", "owner_id", ownerID, "filename", up.Filename, "threat", verdict.Threat)
			return "", apperror.BadRequest("File rejected by malware scan")
		}
	}

	data, contentType, ext := up.Data, result.DetectedMIME, result.Extension
	if IsImageExtension(ext) && ext != ".gif" {
		compressed, err := Downscale(data, m.cfg.MaxDimension, m.cfg.Quality)
		if err != nil {
			return "", apperror.BadRequest("Invalid image: could not be decoded")
		}
		data, contentType, ext = compressed, "image/jpeg", ".jpg"
	}

	key := path.Join(folder, sanitizeSegment(ownerID), uuid.NewString()+ext)
	url, err := m.uploader.Upload(ctx, key, data, contentType)
	if err != nil {
		logger.Log.Error("Media upload failed", "owner_id", ownerID, "key", key, "error", err)
		return "", apperror.Internal(err)
	}

	logger.Log.Debug("Media uploaded", "owner_id", ownerID, "key", key, "bytes", len(data))
	return url, nil
}

// Discard deletes an object Store returned when nothing ended up referencing it
func (m *MediaStore) Discard(ctx context.Context, url string) error {
	if err := m.uploader.Delete(ctx, url); err != nil {
		return err
	}
	logger.Log.Info("Discarded unreferenced media", "url", url)
	return nil
}

// sanitizeSegment keeps object keys to a safe ASCII alphabet
func sanitizeSegment(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "anonymous"
	}
	return b.String()
}
