package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bhajan-portal/internal/api"
	"github.com/bhajan-portal/internal/config"
	"github.com/bhajan-portal/internal/mocks"
	"github.com/bhajan-portal/internal/models"
	"github.com/bhajan-portal/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router    *gin.Engine
	bhajans   *mocks.MockBhajanService
	health    *mocks.MockHealthChecker
	staticDir string
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<html>portal</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "app.js"), []byte("console.log('app')"), 0o644))

	env := &testEnv{
		bhajans:   mocks.NewMockBhajanService(),
		health:    &mocks.MockHealthChecker{},
		staticDir: staticDir,
	}

	services := &service.Services{Bhajan: env.bhajans, Health: env.health}
	cfg := &config.Config{
		Server: config.ServerConfig{Port: "8000"},
		Static: config.StaticConfig{Dir: staticDir, Index: "index.html"},
	}

	env.router = api.NewRouter(services, cfg, zerolog.Nop())
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	msg, _ := body["error"].(string)
	return msg
}

func seed(env *testEnv, id int64, title string, tags ...string) {
	now := time.Now().UTC()
	env.bhajans.Bhajans[id] = &models.BhajanResponse{
		ID:           id,
		Title:        title,
		Lyrics:       "Some lyrics long enough to pass",
		Tags:         tags,
		UploaderName: models.DefaultUploaderName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
	assert.NotEmpty(t, response["timestamp"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestHealthEndpoint_Unhealthy(t *testing.T) {
	env := setupTestRouter(t)
	env.health.Err = errors.New("sql: database is closed")

	w := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "unhealthy")
}

func TestRequestIDIsPropagated(t *testing.T) {
	env := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := env.do(req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestListBhajans_PassesFilters(t *testing.T) {
	env := setupTestRouter(t)
	seed(env, 1, "Krishna", "bhakti")

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/bhajans?search=Krishna&tag=bhakti", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var list []models.BhajanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	require.Len(t, env.bhajans.Filters, 1)
	assert.Equal(t, models.ListFilter{Search: "Krishna", Tag: "bhakti"}, env.bhajans.Filters[0])
}

func TestListBhajans_EmptyIsArray(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/bhajans", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestListBhajans_InternalError(t *testing.T) {
	env := setupTestRouter(t)
	env.bhajans.Err = service.Internal("list bhajans", errors.New("disk I/O error"))

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/bhajans", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decodeError(t, w), "disk I/O error")
}

func TestUnclassifiedErrorIsInternal(t *testing.T) {
	env := setupTestRouter(t)
	env.bhajans.Err = errors.New("boom")

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/tags", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decodeError(t, w), "boom")
}

func TestGetBhajan(t *testing.T) {
	env := setupTestRouter(t)
	seed(env, 3, "Shiva Stuti", "shiva")

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/bhajans/3", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Shiva Stuti", body["title"])
	assert.Equal(t, []interface{}{"shiva"}, body["tags"])
	assert.Contains(t, body, "youtube_url")
	assert.Nil(t, body["youtube_url"])
}

func TestGetBhajan_NotFound(t *testing.T) {
	env := setupTestRouter(t)

	for _, target := range []string{"/api/bhajans/999999", "/api/bhajans/abc", "/api/bhajans/-1"} {
		w := env.do(httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, target)
		assert.Equal(t, "Bhajan not found", decodeError(t, w), target)
	}
}

func TestCreateBhajan_Form(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(formRequest(http.MethodPost, "/api/bhajans", url.Values{
		"title":         {"Govinda"},
		"lyrics":        {"Govinda Govinda Gopala Gopala"},
		"tags":          {"krishna, bhakti"},
		"uploader_name": {"Ravi"},
	}))
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, env.bhajans.Created, 1)
	in := env.bhajans.Created[0]
	assert.Equal(t, "Govinda", in.Title)
	assert.Equal(t, "krishna, bhakti", in.Tags)
	require.NotNil(t, in.UploaderName)
	assert.Equal(t, "Ravi", *in.UploaderName)
	assert.Nil(t, in.YoutubeURL)
}

func TestCreateBhajan_Multipart(t *testing.T) {
	env := setupTestRouter(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("title", "Multipart")
	writer.WriteField("lyrics", "Lyrics sent as multipart form data")
	writer.WriteField("youtube_url", "https://youtu.be/x")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/bhajans", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w := env.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, env.bhajans.Created, 1)
	require.NotNil(t, env.bhajans.Created[0].YoutubeURL)
	assert.Equal(t, "https://youtu.be/x", *env.bhajans.Created[0].YoutubeURL)
}

func TestCreateBhajan_ValidationError(t *testing.T) {
	env := setupTestRouter(t)
	env.bhajans.CreateFunc = func(_ context.Context, in *models.CreateBhajanInput) (*models.BhajanResponse, error) {
		return nil, service.Validation("Title must be at least 3 characters")
	}

	w := env.do(formRequest(http.MethodPost, "/api/bhajans", url.Values{"title": {"Hi"}, "lyrics": {"x"}}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Title must be at least 3 characters", decodeError(t, w))
}

func TestUpdateBhajan_SuppliedFieldsOnly(t *testing.T) {
	env := setupTestRouter(t)
	seed(env, 5, "Original")

	w := env.do(formRequest(http.MethodPut, "/api/bhajans/5", url.Values{"tags": {""}}))
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, env.bhajans.Updates, 1)
	in := env.bhajans.Updates[0]
	require.NotNil(t, in.Tags, "empty tags string is still supplied")
	assert.Equal(t, "", *in.Tags)
	assert.Nil(t, in.Title)
	assert.Nil(t, in.Lyrics)
	assert.Nil(t, in.UploaderName)
	assert.Nil(t, in.YoutubeURL)
}

func TestUpdateBhajan_NotFound(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(formRequest(http.MethodPut, "/api/bhajans/77", url.Values{"title": {"New title"}}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteBhajan(t *testing.T) {
	env := setupTestRouter(t)
	seed(env, 9, "Temporary")

	w := env.do(httptest.NewRequest(http.MethodDelete, "/api/bhajans/9", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"deleted","id":9}`, w.Body.String())

	w = env.do(httptest.NewRequest(http.MethodDelete, "/api/bhajans/9", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTagsEndpoint(t *testing.T) {
	env := setupTestRouter(t)
	env.bhajans.TagList = []string{"aarti", "bhakti"}

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/tags", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["aarti","bhakti"]`, w.Body.String())
}

func TestStatsEndpoint(t *testing.T) {
	env := setupTestRouter(t)
	seed(env, 1, "One")
	seed(env, 2, "Two")

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(2), body["total_bhajans"])
	assert.Equal(t, "online", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestStatic_IndexAndFiles(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "portal")

	w = env.do(httptest.NewRequest(http.MethodGet, "/app.js", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "console.log")

	w = env.do(httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "console.log")
}

func TestStatic_SPAFallback(t *testing.T) {
	env := setupTestRouter(t)

	for _, target := range []string{"/bhajan/12", "/search/krishna", "/../../etc/passwd", "/a/../b"} {
		w := env.do(httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusOK, w.Code, target)
		assert.Equal(t, "<html>portal</html>", w.Body.String(), target)
	}
}

func TestStatic_DotSegmentsResolveInsideRoot(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/nested/../app.js", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console.log('app')", w.Body.String())

	w = env.do(httptest.NewRequest(http.MethodGet, "/../../../app.js", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console.log('app')", w.Body.String())
}

func TestStatic_HeadFallback(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(httptest.NewRequest(http.MethodHead, "/bhajan/3", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestStatic_APIPathsDoNotFallBack(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), "portal")
}

func TestStatic_MissingIndex(t *testing.T) {
	env := setupTestRouter(t)
	require.NoError(t, os.Remove(filepath.Join(env.staticDir, "index.html")))

	w := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(httptest.NewRequest(http.MethodGet, "/some/route", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(httptest.NewRequest(http.MethodOptions, "/api/bhajans", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPanicIsRecoveredAndLogged(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var logs bytes.Buffer

	services := &service.Services{Bhajan: mocks.NewMockBhajanService(), Health: &mocks.MockHealthChecker{}}
	cfg := &config.Config{Static: config.StaticConfig{Dir: t.TempDir(), Index: "index.html"}}
	router := api.NewRouter(services, cfg, zerolog.New(&logs))
	router.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())

	var completed map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		if entry["message"] == "Request completed" {
			completed = entry
		}
	}
	require.NotNil(t, completed, logs.String())
	assert.Equal(t, float64(http.StatusInternalServerError), completed["status"])
	assert.Equal(t, "/boom", completed["path"])
	assert.Contains(t, logs.String(), "Panic recovered")
}
