package upload

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// SessionMaxIdle is how long a never-completed session may sit untouched
// before a sweep removes it. A client stalled longer than this is presumed
// gone; the small risk of reaping a still-live session is accepted.
const SessionMaxIdle = 30 * time.Minute

// Reaper periodically deletes abandoned staging areas. All of its
// operations are idempotent deletes, so it is safe to run concurrently
// with request handling and with other sweeps.
type Reaper struct {
	Chunks   ChunkStore
	MaxIdle  time.Duration
	Interval time.Duration
}

func NewReaper(chunks ChunkStore) *Reaper {
	return &Reaper{
		Chunks:   chunks,
		MaxIdle:  SessionMaxIdle,
		Interval: 5 * time.Minute,
	}
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Sweep removes every staging area idle past the threshold.
func (r *Reaper) Sweep() {
	stale, err := r.Chunks.Stale(r.MaxIdle)
	if err != nil {
		log.WithError(err).Warn("Reaper failed to list staging areas")
		return
	}

	for _, id := range stale {
		if err := r.Chunks.Remove(id); err != nil {
			log.WithError(err).WithField("upload_id", id).Warn("Reaper failed to remove staging area")
			continue
		}
		log.WithField("upload_id", id).Info("Removed expired upload session")
	}
}
