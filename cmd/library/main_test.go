package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"bookshelf/pkg/api"
	"bookshelf/pkg/config"
	"bookshelf/pkg/database"
	"bookshelf/pkg/library"
	"bookshelf/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := database.OpenMemory()
	require.NoError(t, err)

	root := t.TempDir()
	files, mediaRoot, err := openStore(config.FileConfig{
		StorageBackend: config.StorageDir,
		StorageDir:     root,
		MediaURL:       "/media",
	})
	require.NoError(t, err)
	assert.Equal(t, root, mediaRoot)

	svc := library.NewService(db, files, nil)
	handler := api.NewHandler(svc, files, db, api.Options{})
	return setupRouter(handler, nil, "/media", mediaRoot), root
}

func TestHealthCheck(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/manage/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "UP", response["status"])
}

func TestServesMediaFromDirStore(t *testing.T) {
	router, root := setupTestRouter(t)
	key := "books/abc/book.pdf"
	require.NoError(t, os.MkdirAll(filepath.Join(root, "books", "abc"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, filepath.FromSlash(key)), []byte("%PDF-1.4"), 0o644))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/media/"+key, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.4", w.Body.String())
}

func TestRoutesRegistered(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/authors", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(0), response["totalElements"])
}

func TestOpenStoreUsesDirBackend(t *testing.T) {
	files, _, err := openStore(config.FileConfig{
		StorageBackend: config.StorageDir,
		StorageDir:     t.TempDir(),
		MediaURL:       "/files",
	})
	require.NoError(t, err)
	_, ok := files.(*storage.DirStore)
	assert.True(t, ok)
}
