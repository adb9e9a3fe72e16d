package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caohoangphucs/giadungtinthanh/internal/api"
	"github.com/caohoangphucs/giadungtinthanh/internal/api/handlers"
	"github.com/caohoangphucs/giadungtinthanh/internal/cache"
	"github.com/caohoangphucs/giadungtinthanh/internal/config"
	"github.com/caohoangphucs/giadungtinthanh/internal/models"
	"github.com/caohoangphucs/giadungtinthanh/internal/upload"
)

type memObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memObjectStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memObjectStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("no such object")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memObjectStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

type memFileRepo struct {
	mu   sync.Mutex
	rows map[string]*models.File
}

func (m *memFileRepo) Create(_ context.Context, f *models.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[f.ID]; ok {
		return upload.ErrConflict
	}
	clone := *f
	m.rows[f.ID] = &clone
	return nil
}

func (m *memFileRepo) Get(_ context.Context, id string) (*models.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, upload.ErrNotFound
	}
	clone := *row
	return &clone, nil
}

func (m *memFileRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return upload.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	chunks, err := upload.NewDirStore(t.TempDir())
	require.NoError(t, err)

	handlers.Uploads = &upload.Service{
		Chunks:  chunks,
		Store:   &memObjectStore{objects: make(map[string][]byte)},
		Files:   &memFileRepo{rows: make(map[string]*models.File)},
		Cache:   cache.NewMemoryCache(),
		BaseURL: "http://localhost:8080",
	}

	srv := httptest.NewServer(api.SetupRouter())
	t.Cleanup(srv.Close)
	return srv
}

func postForm(t *testing.T, srv *httptest.Server, path string, form url.Values) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.PostForm(srv.URL+path, form)
	require.NoError(t, err)
	return resp, decodeJSON(t, resp)
}

func postChunk(t *testing.T, srv *httptest.Server, uploadID string, index int, payload []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("upload_id", uploadID))
	require.NoError(t, mw.WriteField("chunk_index", fmt.Sprint(index)))
	fw, err := mw.CreateFormFile("chunk", "blob")
	require.NoError(t, err)
	_, err = fw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/api/files/upload/chunk", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestFileEndpoints_UploadDownloadDelete(t *testing.T) {
	srv := setupTestServer(t)

	// init
	resp, body := postForm(t, srv, "/api/files/upload/init", url.Values{"filename": {"a.txt"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	uploadID, _ := body["upload_id"].(string)
	require.NotEmpty(t, uploadID)
	assert.Equal(t, "a.txt", body["filename"])

	// chunks, out of order
	resp = postChunk(t, srv, uploadID, 1, []byte("CD"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = postChunk(t, srv, uploadID, 0, []byte("AB"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// complete
	resp, body = postForm(t, srv, "/api/files/upload/complete", url.Values{
		"upload_id":    {uploadID},
		"total_chunks": {"2"},
		"filename":     {"a.txt"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, uploadID, body["fileId"])
	assert.Equal(t, "a.txt", body["fileName"])
	assert.Equal(t, float64(4), body["fileSize"])

	// download streams the assembled bytes
	getResp, err := http.Get(srv.URL + "/api/files/" + uploadID)
	require.NoError(t, err)
	data, err := io.ReadAll(getResp.Body)
	getResp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, getResp.StatusCode)
	assert.Equal(t, "ABCD", string(data))
	assert.Equal(t, "text/plain; charset=utf-8", getResp.Header.Get("Content-Type"))
	assert.Contains(t, getResp.Header.Get("Content-Disposition"), "inline")

	// delete needs the admin bearer
	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/files/"+uploadID, nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req.Header.Set("Authorization", "Bearer "+config.Envs.Secret)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	body = decodeJSON(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	// the file is gone afterwards
	getResp, err = http.Get(srv.URL + "/api/files/" + uploadID)
	require.NoError(t, err)
	getResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestFileEndpoints_ImageServedAsPreview(t *testing.T) {
	srv := setupTestServer(t)
	handlers.Uploads.GeneratePreview = func(b []byte, _ int) ([]byte, error) {
		return append([]byte("webp:"), b...), nil
	}

	_, body := postForm(t, srv, "/api/files/upload/init", url.Values{"filename": {"pic.jpg"}})
	uploadID := body["upload_id"].(string)

	resp := postChunk(t, srv, uploadID, 0, []byte("IMGDATA"))
	resp.Body.Close()

	resp, _ = postForm(t, srv, "/api/files/upload/complete", url.Values{
		"upload_id":    {uploadID},
		"total_chunks": {"1"},
		"filename":     {"pic.jpg"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	getResp, err := http.Get(srv.URL + "/api/files/" + uploadID)
	require.NoError(t, err)
	data, _ := io.ReadAll(getResp.Body)
	getResp.Body.Close()
	assert.Equal(t, "image/webp", getResp.Header.Get("Content-Type"))
	assert.Equal(t, "webp:IMGDATA", string(data))
}

func TestFileEndpoints_ImageFallsBackToOriginal(t *testing.T) {
	srv := setupTestServer(t)
	handlers.Uploads.GeneratePreview = func([]byte, int) ([]byte, error) {
		return nil, errors.New("codec exploded")
	}

	_, body := postForm(t, srv, "/api/files/upload/init", url.Values{"filename": {"pic.jpg"}})
	uploadID := body["upload_id"].(string)

	resp := postChunk(t, srv, uploadID, 0, []byte("IMGDATA"))
	resp.Body.Close()

	resp, _ = postForm(t, srv, "/api/files/upload/complete", url.Values{
		"upload_id":    {uploadID},
		"total_chunks": {"1"},
		"filename":     {"pic.jpg"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	getResp, err := http.Get(srv.URL + "/api/files/" + uploadID)
	require.NoError(t, err)
	data, _ := io.ReadAll(getResp.Body)
	getResp.Body.Close()
	assert.Equal(t, http.StatusOK, getResp.StatusCode)
	assert.Equal(t, "image/jpeg", getResp.Header.Get("Content-Type"))
	assert.Equal(t, "IMGDATA", string(data))
}

func TestFileEndpoints_ErrorStatuses(t *testing.T) {
	srv := setupTestServer(t)

	// chunk for an unknown session
	resp := postChunk(t, srv, "no-such-session", 0, []byte("x"))
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// complete for an unknown session
	resp, _ = postForm(t, srv, "/api/files/upload/complete", url.Values{
		"upload_id":    {"no-such-session"},
		"total_chunks": {"1"},
		"filename":     {"a.txt"},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// complete with a missing chunk
	_, body := postForm(t, srv, "/api/files/upload/init", url.Values{"filename": {"a.txt"}})
	uploadID := body["upload_id"].(string)
	resp = postChunk(t, srv, uploadID, 0, []byte("AB"))
	resp.Body.Close()

	resp, body = postForm(t, srv, "/api/files/upload/complete", url.Values{
		"upload_id":    {uploadID},
		"total_chunks": {"3"},
		"filename":     {"a.txt"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	msg, _ := body["message"].(string)
	assert.True(t, strings.Contains(msg, "chunk 1"), "message should name the missing index: %q", msg)

	// unknown file id
	getResp, err := http.Get(srv.URL + "/api/files/does-not-exist")
	require.NoError(t, err)
	getResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}
