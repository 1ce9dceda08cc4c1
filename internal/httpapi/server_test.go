package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subworks/subflow/internal/config"
	"github.com/subworks/subflow/internal/jobs"
	"github.com/subworks/subflow/internal/runner"
	"github.com/subworks/subflow/internal/service"
)

type fakeSettingsStore struct {
	current   config.RuntimeSettings
	updateErr error
}

func (f *fakeSettingsStore) GetRuntimeSettings() (config.RuntimeSettings, error) {
	return f.current, nil
}

func (f *fakeSettingsStore) UpdateRuntimeSettings(next config.RuntimeSettings) (config.RuntimeSettings, error) {
	if f.updateErr != nil {
		return config.RuntimeSettings{}, f.updateErr
	}
	f.current = next
	return f.current, nil
}

type noopRunner struct{}

func (noopRunner) Run(_ context.Context, _ runner.Request, _ func(string)) error {
	return nil
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *jobs.Queue) {
	t.Helper()
	cfg := config.Config{
		Translate: config.TranslateConfig{
			GeminiAPIKey: "key",
			Model:        "gemini-2.5-flash",
			Language:     "Polish",
			LanguageCode: "pl",
		},
		Metadata: config.MetadataConfig{Concurrency: 1},
		System:   config.SystemConfig{WorkerCount: 1},
	}
	queue := jobs.NewQueue(1, nil)
	svc := service.NewService(cfg, noopRunner{}, queue)
	return NewServer(svc, queue, opts...), queue
}

func TestServer_BatchPreview_Get(t *testing.T) {
	tmp := t.TempDir()
	movie := filepath.Join(tmp, "Movie.ita.srt")
	require.NoError(t, os.WriteFile(movie, []byte("1\n"), 0o644))

	srv, _ := newTestServer(t)

	target := "/api/batch/preview?path=" + url.QueryEscape(movie)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var report service.BatchReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Groups, 1)
	require.Len(t, report.Groups[0].Files, 1)
	assert.Equal(t, filepath.Join(tmp, "Movie.pl.srt"), report.Groups[0].Files[0].OutputPath)
	assert.Zero(t, report.Enqueued)
}

func TestServer_Batch_Post(t *testing.T) {
	tmp := t.TempDir()
	movie := filepath.Join(tmp, "Movie.ita.srt")
	require.NoError(t, os.WriteFile(movie, []byte("1\n"), 0o644))

	srv, queue := newTestServer(t)

	body, _ := json.Marshal(batchRequest{Paths: []string{movie}})
	req := httptest.NewRequest(http.MethodPost, "/api/batch", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var report service.BatchReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Enqueued)

	listed := queue.List()
	require.Len(t, listed, 1)
	assert.Equal(t, "api", listed[0].Source)
	assert.Equal(t, filepath.Join(tmp, "Movie.pl.srt"), listed[0].Payload.OutputPath)
}

func TestServer_Batch_LanguageOverride(t *testing.T) {
	tmp := t.TempDir()
	movie := filepath.Join(tmp, "Movie.ita.srt")
	require.NoError(t, os.WriteFile(movie, []byte("1\n"), 0o644))

	srv, queue := newTestServer(t)

	body, _ := json.Marshal(batchRequest{Paths: []string{movie}, LanguageCode: "de"})
	req := httptest.NewRequest(http.MethodPost, "/api/batch", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	listed := queue.List()
	require.Len(t, listed, 1)
	assert.Equal(t, filepath.Join(tmp, "Movie.de.srt"), listed[0].Payload.OutputPath)
}

func TestServer_Batch_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	body, _ := json.Marshal(batchRequest{})
	req := httptest.NewRequest(http.MethodPost, "/api/batch", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, _ = json.Marshal(batchRequest{Paths: []string{"/x.srt"}, LanguageCode: "p0l!"})
	req = httptest.NewRequest(http.MethodPost, "/api/batch", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_JobsListAndGet(t *testing.T) {
	srv, queue := newTestServer(t)

	job, _ := queue.Enqueue(jobs.EnqueueRequest{
		Source:    "api",
		DedupeKey: "/media/Movie.pl.srt",
		Payload:   jobs.JobPayload{OutputPath: "/media/Movie.pl.srt"},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []*jobs.TranslationJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, job.ID, listed[0].ID)

	req = httptest.NewRequest(http.MethodGet, "/api/jobs/"+job.ID, nil)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/jobs/missing", nil)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Settings(t *testing.T) {
	store := &fakeSettingsStore{current: config.RuntimeSettings{
		Model:        "gemini-2.5-flash",
		Language:     "Polish",
		LanguageCode: "pl",
	}}
	var applied []config.RuntimeSettings
	srv, _ := newTestServer(t,
		WithRuntimeSettingsStore(store),
		WithRuntimeSettingsApplier(func(next config.RuntimeSettings) error {
			applied = append(applied, next)
			return nil
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	next := config.RuntimeSettings{
		Model:        "gemini-2.0-flash",
		Language:     "German",
		LanguageCode: "de",
	}
	body, _ := json.Marshal(next)
	req = httptest.NewRequest(http.MethodPut, "/api/settings", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gemini-2.0-flash", store.current.Model)
	require.Len(t, applied, 1)
	assert.Equal(t, "de", applied[0].LanguageCode)

	// invalid settings are rejected before touching the store
	body, _ = json.Marshal(config.RuntimeSettings{Model: ""})
	req = httptest.NewRequest(http.MethodPut, "/api/settings", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_SettingsNotConfigured(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pl", resp["target_code"])
}
