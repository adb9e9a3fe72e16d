package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ChunkStore is the staging area holding received chunks until assembly.
// A session exists exactly when its staging area exists; every presence
// check goes through this interface rather than ad-hoc path lookups.
type ChunkStore interface {
	// Create allocates an empty staging area. Creating an existing
	// session is a no-op.
	Create(id string) error

	// WriteChunk stores the payload for one chunk index, overwriting any
	// earlier payload at the same index. Returns ErrSessionNotFound if
	// the session does not exist.
	WriteChunk(id string, index int, r io.Reader) error

	// Assemble streams chunks 0..totalChunks-1 in index order into w.
	// Returns ErrSessionNotFound if the session does not exist and a
	// *MissingChunkError for the first absent index.
	Assemble(id string, totalChunks int, w io.Writer) error

	// Exists reports whether the staging area for id is present.
	Exists(id string) bool

	// Remove deletes the staging area and all chunks. Removing an absent
	// session is a no-op.
	Remove(id string) error

	// Stale lists sessions whose staging area was last touched more than
	// maxIdle ago.
	Stale(maxIdle time.Duration) ([]string, error)
}

// DirStore keeps each session as a directory under root, one <index>.part
// file per chunk. Writes to distinct indices land in distinct files, so
// concurrent chunk uploads for one session never interfere.
type DirStore struct {
	root string
}

func NewDirStore(root string) (*DirStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create chunk root: %w", err)
	}
	return &DirStore{root: root}, nil
}

func (s *DirStore) sessionDir(id string) string {
	// filepath.Base keeps a hostile id from escaping the root
	return filepath.Join(s.root, filepath.Base(id))
}

func (s *DirStore) chunkPath(id string, index int) string {
	return filepath.Join(s.sessionDir(id), fmt.Sprintf("%d.part", index))
}

func (s *DirStore) Create(id string) error {
	return os.MkdirAll(s.sessionDir(id), 0o755)
}

func (s *DirStore) Exists(id string) bool {
	info, err := os.Stat(s.sessionDir(id))
	return err == nil && info.IsDir()
}

func (s *DirStore) WriteChunk(id string, index int, r io.Reader) error {
	f, err := os.Create(s.chunkPath(id, index))
	if err != nil {
		// staging dir absent: session never existed, or the reaper got it
		if errors.Is(err, os.ErrNotExist) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("create chunk file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write chunk %d: %w", index, err)
	}
	return f.Close()
}

func (s *DirStore) Assemble(id string, totalChunks int, w io.Writer) error {
	if !s.Exists(id) {
		return ErrSessionNotFound
	}

	for i := 0; i < totalChunks; i++ {
		part, err := os.Open(s.chunkPath(id, i))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				// a chunk can be absent because the whole session was
				// reaped mid-assembly, which is not a client error
				if !s.Exists(id) {
					return ErrSessionNotFound
				}
				return &MissingChunkError{Index: i}
			}
			return fmt.Errorf("open chunk %d: %w", i, err)
		}
		_, err = io.Copy(w, part)
		part.Close()
		if err != nil {
			return fmt.Errorf("copy chunk %d: %w", i, err)
		}
	}
	return nil
}

func (s *DirStore) Remove(id string) error {
	return os.RemoveAll(s.sessionDir(id))
}

func (s *DirStore) Stale(maxIdle time.Duration) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var stale []string
	now := time.Now()
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// raced with a concurrent Remove
			continue
		}
		if now.Sub(info.ModTime()) > maxIdle {
			stale = append(stale, e.Name())
		}
	}
	return stale, nil
}
