package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/programmers-nightmare/research-helper/internal/config"
	"github.com/programmers-nightmare/research-helper/internal/domain"
	"github.com/programmers-nightmare/research-helper/internal/export"
	"github.com/programmers-nightmare/research-helper/internal/filter"
	"github.com/programmers-nightmare/research-helper/internal/loader"
	"github.com/programmers-nightmare/research-helper/internal/merge"
	"github.com/programmers-nightmare/research-helper/internal/observability"
	"github.com/programmers-nightmare/research-helper/internal/pipeline"
	"github.com/programmers-nightmare/research-helper/internal/report"
)

func newTestServer(t *testing.T, serverCfg config.ServerConfig) (*Server, config.PathsConfig) {
	t.Helper()
	logger := zerolog.Nop()

	paths := config.PathsConfig{
		InputDir: t.TempDir(),
		TableDir: t.TempDir(),
		ChartDir: t.TempDir(),
	}

	exporter, err := export.New(paths.TableDir, logger)
	require.NoError(t, err)
	renderer, err := report.New(paths.ChartDir, report.DefaultStyle(), logger)
	require.NoError(t, err)

	metrics := observability.NewMetricsWith("test", prometheus.NewRegistry())
	merger := merge.New(domain.DefaultAliasRules(), merge.ModePermissive, logger)
	csvLoader := loader.New(logger)

	pipe := pipeline.New(csvLoader, merger, exporter, renderer, metrics,
		pipeline.Options{DedupKey: "Title", TopN: 10}, logger)
	filterSvc := filter.New(csvLoader, exporter, logger)

	return New(serverCfg, paths, pipe, filterSvc, metrics, logger), paths
}

func defaultServerConfig() config.ServerConfig {
	return config.ServerConfig{
		Host:            "127.0.0.1",
		HTTPPort:        8080,
		UploadRateLimit: 100,
		UploadRateBurst: 100,
		MaxUploadBytes:  64 << 20,
	}
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for name, content := range files {
		part, err := mw.CreateFormFile(uploadFormField, name)
		require.NoError(t, err)
		_, err = io.Copy(part, strings.NewReader(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func doUpload(t *testing.T, s *Server, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, files)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t, defaultServerConfig())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
}

func TestUploadRunsPipeline(t *testing.T) {
	s, paths := newTestServer(t, defaultServerConfig())

	rec := doUpload(t, s, map[string]string{
		"ieee.csv": "Document Title,Year\nShared,2020\nUnique,2021\n",
		"wos.csv":  "Title,Publication Year\nShared,2020\n",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.ElementsMatch(t, []string{"ieee.csv", "wos.csv"}, resp.Saved)
	assert.Empty(t, resp.Rejected)
	require.NotNil(t, resp.Run)
	assert.Equal(t, 3, resp.Run.RowsBefore)
	assert.Equal(t, 2, resp.Run.RowsAfter)

	assert.FileExists(t, filepath.Join(paths.TableDir, export.FileFinalCSV))
}

func TestUploadRejectsNonCSV(t *testing.T) {
	s, _ := newTestServer(t, defaultServerConfig())

	rec := doUpload(t, s, map[string]string{"notes.txt": "not a table"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no CSV files")
}

func TestUploadMixedKeepsCSVOnly(t *testing.T) {
	s, _ := newTestServer(t, defaultServerConfig())

	rec := doUpload(t, s, map[string]string{
		"good.csv":  "Title\nOne\n",
		"notes.txt": "ignore me",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"good.csv"}, resp.Saved)
	assert.Equal(t, []string{"notes.txt"}, resp.Rejected)
}

func TestUploadNoFiles(t *testing.T) {
	s, _ := newTestServer(t, defaultServerConfig())

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadRateLimited(t *testing.T) {
	cfg := defaultServerConfig()
	cfg.UploadRateLimit = 0.001
	cfg.UploadRateBurst = 1
	s, _ := newTestServer(t, cfg)

	first := doUpload(t, s, map[string]string{"a.csv": "Title\nOne\n"})
	require.Equal(t, http.StatusOK, first.Code)

	second := doUpload(t, s, map[string]string{"b.csv": "Title\nTwo\n"})
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestArtifactDownload(t *testing.T) {
	s, _ := newTestServer(t, defaultServerConfig())

	rec := doUpload(t, s, map[string]string{"data.csv": "Title,Publication Year\nOne,2020\n"})
	require.Equal(t, http.StatusOK, rec.Code)

	tests := []struct {
		name string
		url  string
		code int
	}{
		{"final csv", "/artifacts/csv/post_processed.csv", http.StatusOK},
		{"duplicates xlsx", "/artifacts/xlsx/duplicates.xlsx", http.StatusOK},
		{"yearly chart", "/artifacts/png/publications_by_year.png", http.StatusOK},
		{"missing artifact", "/artifacts/png/nope.png", http.StatusNotFound},
		{"unknown kind", "/artifacts/exe/foo.exe", http.StatusBadRequest},
		{"kind mismatch", "/artifacts/png/post_processed.csv", http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			rr := httptest.NewRecorder()
			s.Handler().ServeHTTP(rr, req)
			assert.Equal(t, tc.code, rr.Code)
		})
	}
}

func TestFilterEndpoint(t *testing.T) {
	s, _ := newTestServer(t, defaultServerConfig())

	rec := doUpload(t, s, map[string]string{
		"data.csv": "Title,Publication Year\nDeep Learning Advances,2020\nShallow Methods,2021\n",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := json.Marshal(filterRequest{Field: "Title", Keywords: []string{"deep"}})
	req := httptest.NewRequest(http.MethodPost, "/filter", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp filterResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Rows)
	assert.Contains(t, resp.Artifact, "filtered_contains_title_deep")
}

func TestFilterKeywordWithPathSeparatorConfined(t *testing.T) {
	s, paths := newTestServer(t, defaultServerConfig())

	rec := doUpload(t, s, map[string]string{"data.csv": "Title\nDeep Learning\n"})
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := json.Marshal(filterRequest{Field: "Title", Keywords: []string{"/../../pwned"}})
	req := httptest.NewRequest(http.MethodPost, "/filter", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp filterResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotContains(t, resp.Artifact, "/")
	assert.FileExists(t, filepath.Join(paths.TableDir, resp.Artifact))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(filepath.Dir(paths.TableDir)), "pwned.csv"))
}

func TestFilterUnknownField(t *testing.T) {
	s, _ := newTestServer(t, defaultServerConfig())

	rec := doUpload(t, s, map[string]string{"data.csv": "Title\nOne\n"})
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := json.Marshal(filterRequest{Field: "Venue", Keywords: []string{"acm"}})
	req := httptest.NewRequest(http.MethodPost, "/filter", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestFilterBeforeAnyUpload(t *testing.T) {
	s, _ := newTestServer(t, defaultServerConfig())

	body, _ := json.Marshal(filterRequest{Field: "Title", Keywords: []string{"x"}})
	req := httptest.NewRequest(http.MethodPost, "/filter", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestFilterMissingKeywords(t *testing.T) {
	s, _ := newTestServer(t, defaultServerConfig())

	req := httptest.NewRequest(http.MethodPost, "/filter", strings.NewReader(`{"field":"Title","keywords":[]}`))
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
