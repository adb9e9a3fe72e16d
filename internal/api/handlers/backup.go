package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/caohoangphucs/giadungtinthanh/internal/backup"
	"github.com/caohoangphucs/giadungtinthanh/internal/utils"
)

// BackupJobs and BackupRunner are wired in at startup.
var (
	BackupJobs   *backup.JobStore
	BackupRunner *backup.Runner
)

// POST /api/backup/start
func StartBackup(w http.ResponseWriter, r *http.Request) {
	jobID, err := utils.GenerateSecureToken(16)
	if err != nil {
		internalError(w, "Failed to create backup job")
		return
	}

	if err := BackupJobs.Begin(jobID); err != nil {
		if errors.Is(err, backup.ErrJobRunning) {
			utils.JSON(w, http.StatusOK, map[string]string{"message": "Backup is already in progress"})
			return
		}
		internalError(w, "Failed to start backup")
		return
	}

	// the pipeline outlives the request
	go BackupRunner.Run(context.Background(), jobID)

	utils.JSON(w, http.StatusOK, map[string]string{
		"message": "Backup started",
		"job_id":  jobID,
	})
}

// GET /api/backup/status
func BackupStatus(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("job_id"); id != "" {
		job, ok := BackupJobs.Get(id)
		if !ok {
			notFound(w, "Backup job not found")
			return
		}
		utils.JSON(w, http.StatusOK, job)
		return
	}
	utils.JSON(w, http.StatusOK, BackupJobs.Latest())
}

// GET /api/backup/download
func DownloadBackup(w http.ResponseWriter, r *http.Request) {
	job := BackupJobs.Latest()
	if job.Status != backup.StatusCompleted || job.ZipPath == "" {
		badRequest(w, "Backup not ready or not found")
		return
	}

	zipPath := job.ZipPath
	if _, err := os.Stat(zipPath); err != nil {
		notFound(w, "Backup file missing")
		return
	}

	// hand the archive out once, then drop it
	BackupJobs.Release(job.ID)
	defer func() {
		if err := os.Remove(zipPath); err != nil {
			log.WithError(err).WithField("path", zipPath).Warn("Failed to remove downloaded backup archive")
		}
	}()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(zipPath))
	http.ServeFile(w, r, zipPath)
}
