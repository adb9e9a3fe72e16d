package backup

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ObjectSource is the part of the object store a backup needs.
type ObjectSource interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, fn func(key string) error) error
}

// Runner executes the full backup pipeline: database dump, bucket download
// and archive creation, reporting progress into the JobStore.
type Runner struct {
	Jobs    *JobStore
	Store   ObjectSource
	DBURL   string
	WorkDir string
}

// Run performs one backup job end to end. Intended to run on its own
// goroutine; the job id must already be registered via Jobs.Begin.
func (r *Runner) Run(ctx context.Context, jobID string) {
	zipPath, err := r.execute(ctx, jobID)
	if err != nil {
		log.WithError(err).WithField("job_id", jobID).Error("Backup failed")
		r.Jobs.Fail(jobID, err)
		return
	}
	r.Jobs.Complete(jobID, zipPath)
}

func (r *Runner) execute(ctx context.Context, jobID string) (string, error) {
	r.Jobs.Progress(jobID, "Preparing working directory", 0)

	backupName := fmt.Sprintf("backup_%s", time.Now().Format("20060102_150405"))
	workDir := filepath.Join(r.WorkDir, backupName)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	r.Jobs.Progress(jobID, "Dumping database", 10)
	dumpFile := filepath.Join(workDir, "db_dump.sql")
	cmd := exec.CommandContext(ctx, "pg_dump", "-d", r.DBURL, "-f", dumpFile)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pg_dump: %w: %s", err, strings.TrimSpace(string(out)))
	}

	if err := r.downloadObjects(ctx, jobID, filepath.Join(workDir, "files")); err != nil {
		return "", err
	}

	r.Jobs.Progress(jobID, "Compressing archive", 80)
	zipPath := filepath.Join(r.WorkDir, backupName+".zip")
	if err := zipDir(workDir, zipPath); err != nil {
		os.Remove(zipPath)
		return "", fmt.Errorf("create archive: %w", err)
	}

	return zipPath, nil
}

// downloadObjects mirrors the whole bucket into destDir, a few objects at a
// time, scaling reported progress across the 30–70% window.
func (r *Runner) downloadObjects(ctx context.Context, jobID, destDir string) error {
	r.Jobs.Progress(jobID, "Listing stored objects", 30)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create files dir: %w", err)
	}

	var keys []string
	if err := r.Store.List(ctx, func(key string) error {
		keys = append(keys, key)
		return nil
	}); err != nil {
		return fmt.Errorf("list objects: %w", err)
	}

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, key := range keys {
		g.Go(func() error {
			if err := r.downloadObject(gctx, key, destDir); err != nil {
				return err
			}
			n := done.Add(1)
			pct := 30 + int(n*40/int64(len(keys)))
			r.Jobs.Progress(jobID, fmt.Sprintf("Downloading files (%d/%d)", n, len(keys)), pct)
			return nil
		})
	}
	return g.Wait()
}

func (r *Runner) downloadObject(ctx context.Context, key, destDir string) error {
	rc, err := r.Store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	defer rc.Close()

	dest := filepath.Join(destDir, filepath.Base(key))
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return f.Close()
}

func zipDir(srcDir, zipPath string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(out)

	err = filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		zw.Close()
		out.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
