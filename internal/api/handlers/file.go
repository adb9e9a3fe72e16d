package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/caohoangphucs/giadungtinthanh/internal/upload"
	"github.com/caohoangphucs/giadungtinthanh/internal/utils"
)

// Uploads is the upload pipeline the file handlers run against, wired in
// at startup.
var Uploads *upload.Service

const maxChunkSize = 32 << 20 // 32 MB per chunk request

// POST /api/files/upload/init
// InitUpload godoc
// @Summary Start a chunked upload session
// @Tags Files
// @Accept mpfd
// @Produce json
// @Param filename formData string true "Target filename"
// @Success 200 {object} map[string]string
// @Router /api/files/upload/init [post]
func InitUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		if err := r.ParseForm(); err != nil {
			badRequest(w, "Invalid form")
			return
		}
	}
	filename := r.FormValue("filename")
	if filename == "" {
		badRequest(w, "Missing filename")
		return
	}

	uploadID, err := Uploads.InitUpload(filename)
	if err != nil {
		log.WithError(err).Error("Failed to init upload session")
		internalError(w, "Failed to create upload session")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{
		"upload_id": uploadID,
		"filename":  filename,
	})
}

// POST /api/files/upload/chunk
// UploadChunk godoc
// @Summary Upload one chunk of an active session
// @Tags Files
// @Accept mpfd
// @Produce json
// @Param upload_id formData string true "Upload session id"
// @Param chunk_index formData int true "Zero-based chunk index"
// @Param chunk formData file true "Chunk payload"
// @Success 200 {object} map[string]any
// @Failure 404 {object} utils.Payload
// @Router /api/files/upload/chunk [post]
func UploadChunk(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxChunkSize); err != nil {
		badRequest(w, "Invalid chunk upload form")
		return
	}

	uploadID := r.FormValue("upload_id")
	chunkIndex, err := strconv.Atoi(r.FormValue("chunk_index"))
	if uploadID == "" || err != nil || chunkIndex < 0 {
		badRequest(w, "Missing or invalid upload_id/chunk_index")
		return
	}

	chunk, _, err := r.FormFile("chunk")
	if err != nil {
		badRequest(w, "Missing chunk payload")
		return
	}
	defer chunk.Close()

	if err := Uploads.UploadChunk(uploadID, chunkIndex, chunk); err != nil {
		if errors.Is(err, upload.ErrSessionNotFound) {
			notFound(w, "Upload session not found")
			return
		}
		log.WithError(err).WithField("upload_id", uploadID).Error("Failed to store chunk")
		internalError(w, "Failed to store chunk")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"chunk_index": chunkIndex,
		"status":      "ok",
	})
}

// POST /api/files/upload/complete
// CompleteUpload godoc
// @Summary Assemble all chunks and persist the file
// @Tags Files
// @Accept mpfd
// @Produce json
// @Param upload_id formData string true "Upload session id"
// @Param total_chunks formData int true "Number of chunks uploaded"
// @Param filename formData string true "Target filename"
// @Success 200 {object} map[string]any
// @Failure 400 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Failure 409 {object} utils.Payload
// @Router /api/files/upload/complete [post]
func CompleteUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		if err := r.ParseForm(); err != nil {
			badRequest(w, "Invalid form")
			return
		}
	}

	uploadID := r.FormValue("upload_id")
	filename := r.FormValue("filename")
	totalChunks, err := strconv.Atoi(r.FormValue("total_chunks"))
	if uploadID == "" || filename == "" || err != nil || totalChunks <= 0 {
		badRequest(w, "Missing or invalid upload_id/total_chunks/filename")
		return
	}

	file, err := Uploads.CompleteUpload(r.Context(), uploadID, totalChunks, filename)
	if err != nil {
		var missing *upload.MissingChunkError
		switch {
		case errors.Is(err, upload.ErrSessionNotFound):
			notFound(w, "Upload session not found")
		case errors.As(err, &missing):
			badRequest(w, fmt.Sprintf("Missing chunk %d", missing.Index))
		case errors.Is(err, upload.ErrConflict):
			utils.JSONResponse(w, http.StatusConflict, utils.Payload{
				Success: false,
				Message: "Upload was already completed",
			})
		default:
			log.WithError(err).WithField("upload_id", uploadID).Error("Failed to complete upload")
			internalError(w, "Failed to complete upload")
		}
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"object_name": file.FilePath,
		"url":         file.FileURL,
		"fileId":      file.ID,
		"fileName":    file.FileName,
		"fileSize":    file.FileSize,
	})
}

// GET /api/files/{file_id}
// DownloadFile godoc
// @Summary Stream a stored file
// @Description Serves the WEBP preview for images when available, the original bytes otherwise
// @Tags Files
// @Produce octet-stream
// @Param file_id path string true "File id"
// @Success 200
// @Failure 404 {object} utils.Payload
// @Router /api/files/{file_id} [get]
func DownloadFile(w http.ResponseWriter, r *http.Request) {
	fileID := r.PathValue("file_id")

	file, err := Uploads.GetFile(r.Context(), fileID)
	if err != nil {
		if errors.Is(err, upload.ErrNotFound) {
			notFound(w, "File not found")
			return
		}
		log.WithError(err).WithField("file_id", fileID).Error("Failed to look up file")
		internalError(w, "Failed to look up file")
		return
	}

	if strings.HasPrefix(file.MimeType, "image/") {
		if data, err := Uploads.Preview(r.Context(), file); err == nil {
			w.Header().Set("Content-Type", "image/webp")
			w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", file.FileName))
			w.Header().Set("Content-Length", strconv.Itoa(len(data)))
			_, _ = w.Write(data)
			return
		} else {
			// degrade to the original bytes
			log.WithError(err).WithField("file_id", fileID).Warn("Preview unavailable, serving original")
		}
	}

	body, err := Uploads.OpenOriginal(r.Context(), file)
	if err != nil {
		log.WithError(err).WithField("file_id", fileID).Error("Failed to fetch file from object store")
		internalError(w, "Failed to fetch file")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", file.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", file.FileName))
	w.Header().Set("Content-Length", strconv.FormatInt(file.FileSize, 10))
	_, _ = io.Copy(w, body)
}

// DELETE /api/files/{file_id}
// DeleteFile godoc
// @Summary Delete a stored file, its preview and its metadata row
// @Tags Files
// @Produce json
// @Param file_id path string true "File id"
// @Security BearerAuth
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/files/{file_id} [delete]
func DeleteFile(w http.ResponseWriter, r *http.Request) {
	fileID := r.PathValue("file_id")

	if err := Uploads.DeleteFile(r.Context(), fileID); err != nil {
		if errors.Is(err, upload.ErrNotFound) {
			notFound(w, "File not found")
			return
		}
		log.WithError(err).WithField("file_id", fileID).Error("Failed to delete file")
		internalError(w, "Failed to delete file")
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "File deleted successfully",
	})
}

func badRequest(w http.ResponseWriter, msg string) {
	utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{Success: false, Message: msg})
}

func notFound(w http.ResponseWriter, msg string) {
	utils.JSONResponse(w, http.StatusNotFound, utils.Payload{Success: false, Message: msg})
}

func internalError(w http.ResponseWriter, msg string) {
	utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{Success: false, Message: msg})
}
