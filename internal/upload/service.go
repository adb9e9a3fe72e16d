package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/caohoangphucs/giadungtinthanh/internal/cache"
	"github.com/caohoangphucs/giadungtinthanh/internal/models"
)

// ObjectStore is the durable blob store the orchestrator persists into.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// FileRepository is the metadata store. Create must fail with ErrConflict
// when a row with the same id already exists; that constraint is what
// resolves concurrent completions of one session.
type FileRepository interface {
	Create(ctx context.Context, f *models.File) error
	Get(ctx context.Context, id string) (*models.File, error)
	Delete(ctx context.Context, id string) error
}

const (
	// PreviewQuality is the lossy quality previews are encoded at. It is
	// part of the cache key namespace, so changing it invalidates old
	// cache entries without explicit eviction.
	PreviewQuality = 60

	previewTTL = 7 * 24 * time.Hour
)

// PreviewCacheKey returns the serving-cache key for a file's preview.
func PreviewCacheKey(fileID string) string {
	return fmt.Sprintf("preview:webp:q%d:%s", PreviewQuality, fileID)
}

// Service coordinates the upload pipeline: init, chunk receipt, completion,
// derivative generation, persistence, cleanup, serving and deletion.
type Service struct {
	Chunks  ChunkStore
	Store   ObjectStore
	Files   FileRepository
	Cache   cache.Cache
	BaseURL string

	// GeneratePreview derives the compressed preview for image uploads at
	// the given lossy quality. The service always passes PreviewQuality,
	// the same value baked into the cache key namespace. Failures are
	// absorbed: the file is stored without a preview.
	GeneratePreview func(original []byte, quality int) ([]byte, error)
}

// InitUpload allocates a fresh session and its staging area. The database
// is not touched until completion.
func (s *Service) InitUpload(filename string) (string, error) {
	uploadID := uuid.New().String()
	if err := s.Chunks.Create(uploadID); err != nil {
		return "", fmt.Errorf("create staging area: %w", err)
	}
	return uploadID, nil
}

// UploadChunk stores one chunk payload. Re-sending an index overwrites the
// earlier payload, so clients can retry a single chunk.
func (s *Service) UploadChunk(uploadID string, chunkIndex int, chunk io.Reader) error {
	return s.Chunks.WriteChunk(uploadID, chunkIndex, chunk)
}

// CompleteUpload assembles chunks 0..totalChunks-1 in index order into a
// temporary file, persists the original (and, for images, a best-effort
// preview) to the object store and commits exactly one metadata row with the
// session id as file id. The assembled upload stays on disk and streams to
// the store from there; only image uploads are read into memory, because
// decoding needs the full bytes. Staging cleanup afterwards is non-fatal.
func (s *Service) CompleteUpload(ctx context.Context, uploadID string, totalChunks int, filename string) (*models.File, error) {
	tmp, err := os.CreateTemp("", "assemble-*")
	if err != nil {
		return nil, fmt.Errorf("create assembly file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if err := s.Chunks.Assemble(uploadID, totalChunks, tmp); err != nil {
		return nil, err
	}
	info, err := tmp.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat assembly file: %w", err)
	}
	size := info.Size()

	mimeType := guessMimeType(filename, tmp)

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind assembly file: %w", err)
	}
	objectName := newObjectKey(filename)
	if err := s.Store.Put(ctx, objectName, tmp, size, mimeType); err != nil {
		return nil, fmt.Errorf("store original: %w", err)
	}

	var previewPath *string
	if strings.HasPrefix(mimeType, "image/") && s.GeneratePreview != nil {
		previewPath = s.storePreview(ctx, uploadID, objectName, tmp)
	}

	file := &models.File{
		ID:          uploadID,
		FileName:    filename,
		FilePath:    objectName,
		PreviewPath: previewPath,
		FileURL:     fmt.Sprintf("%s/api/files/%s", s.BaseURL, uploadID),
		FileSize:    size,
		MimeType:    mimeType,
		FileType:    "article",
	}
	if err := s.Files.Create(ctx, file); err != nil {
		return nil, err
	}

	if err := s.Chunks.Remove(uploadID); err != nil {
		// the row is committed; leftover chunks only cost disk
		log.WithError(err).WithField("upload_id", uploadID).Warn("Failed to clean up staging area")
	}

	return file, nil
}

// storePreview reads the assembled image back from disk, derives the preview
// and uploads it next to the original. Every failure is absorbed and logged;
// the file is then stored without a preview.
func (s *Service) storePreview(ctx context.Context, uploadID, objectName string, tmp *os.File) *string {
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		log.WithError(err).WithField("upload_id", uploadID).Warn("Preview generation failed, storing original only")
		return nil
	}
	data, err := io.ReadAll(tmp)
	if err != nil {
		log.WithError(err).WithField("upload_id", uploadID).Warn("Preview generation failed, storing original only")
		return nil
	}

	preview, err := s.GeneratePreview(data, PreviewQuality)
	if err != nil {
		log.WithError(err).WithField("upload_id", uploadID).Warn("Preview generation failed, storing original only")
		return nil
	}

	key := objectName + ".preview.webp"
	if err := s.Store.Put(ctx, key, bytes.NewReader(preview), int64(len(preview)), "image/webp"); err != nil {
		log.WithError(err).WithField("upload_id", uploadID).Warn("Preview upload failed, storing original only")
		return nil
	}
	return &key
}

// GetFile looks up the metadata row for a file id.
func (s *Service) GetFile(ctx context.Context, fileID string) (*models.File, error) {
	return s.Files.Get(ctx, fileID)
}

// DeleteFile removes the stored blobs and the metadata row. The row is
// authoritative: blob deletion failures are logged and do not block row
// removal, trading possible orphaned blobs for never-stuck records.
func (s *Service) DeleteFile(ctx context.Context, fileID string) error {
	file, err := s.Files.Get(ctx, fileID)
	if err != nil {
		return err
	}

	if err := s.Store.Delete(ctx, file.FilePath); err != nil {
		log.WithError(err).WithField("object", file.FilePath).Warn("Failed to delete original from object store")
	}
	if file.PreviewPath != nil {
		if err := s.Store.Delete(ctx, *file.PreviewPath); err != nil {
			log.WithError(err).WithField("object", *file.PreviewPath).Warn("Failed to delete preview from object store")
		}
	}

	return s.Files.Delete(ctx, fileID)
}

// OpenOriginal streams the original bytes from the object store.
func (s *Service) OpenOriginal(ctx context.Context, file *models.File) (io.ReadCloser, error) {
	return s.Store.Get(ctx, file.FilePath)
}

// Preview returns the derived WEBP bytes for an image file, trying the
// serving cache, then the stored preview object, then regeneration from the
// original. Every step degrades to the next; an error here only means the
// caller should fall back to the original bytes.
func (s *Service) Preview(ctx context.Context, file *models.File) ([]byte, error) {
	key := PreviewCacheKey(file.ID)
	if s.Cache != nil {
		if data, ok := s.Cache.TryGet(ctx, key); ok {
			return data, nil
		}
	}

	if file.PreviewPath != nil {
		if data, err := s.readObject(ctx, *file.PreviewPath); err == nil {
			s.cachePreview(ctx, key, data)
			return data, nil
		} else {
			log.WithError(err).WithField("object", *file.PreviewPath).Warn("Stored preview unavailable, regenerating")
		}
	}

	if s.GeneratePreview == nil {
		return nil, fmt.Errorf("no preview generator configured")
	}
	original, err := s.readObject(ctx, file.FilePath)
	if err != nil {
		return nil, fmt.Errorf("fetch original for preview: %w", err)
	}
	data, err := s.GeneratePreview(original, PreviewQuality)
	if err != nil {
		return nil, err
	}
	s.cachePreview(ctx, key, data)
	return data, nil
}

func (s *Service) cachePreview(ctx context.Context, key string, data []byte) {
	if s.Cache != nil {
		s.Cache.TrySet(ctx, key, data, previewTTL)
	}
}

func (s *Service) readObject(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.Store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// newObjectKey builds a fresh object store key. The uuid prefix avoids
// collisions and the Base call strips any path components a client smuggled
// into the filename.
func newObjectKey(filename string) string {
	return fmt.Sprintf("%s_%s", uuid.New(), filepath.Base(filename))
}

// guessMimeType resolves the MIME type from the filename extension first,
// sniffing the content only when the extension is unknown.
func guessMimeType(filename string, f io.ReadSeeker) string {
	if mt := mime.TypeByExtension(filepath.Ext(filename)); mt != "" {
		return mt
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "application/octet-stream"
	}
	// DetectReader reads a bounded header and falls back to
	// application/octet-stream on its own when nothing matches
	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "application/octet-stream"
	}
	return mt.String()
}
