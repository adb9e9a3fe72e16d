package upload

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound means the staging area for an upload id does not
	// exist: init was never called, or the session was completed or reaped.
	ErrSessionNotFound = errors.New("upload session not found")

	// ErrNotFound means no metadata row exists for a file id.
	ErrNotFound = errors.New("file not found")

	// ErrConflict means a row with the same id was already committed,
	// i.e. a concurrent completion of the same session won the race.
	ErrConflict = errors.New("upload already completed")
)

// MissingChunkError reports the first chunk index absent at completion time.
type MissingChunkError struct {
	Index int
}

func (e *MissingChunkError) Error() string {
	return fmt.Sprintf("missing chunk %d", e.Index)
}
