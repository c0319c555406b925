package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/animato-app/animato-server/internal/domain"
	"github.com/animato-app/animato-server/internal/middleware"
	"github.com/animato-app/animato-server/internal/providers/video"
	"github.com/animato-app/animato-server/internal/storage"
)

const testDevice = "6f1c3a84-0d2b-4f5e-9a7c-8b21d4e6c093"

type fakeProjects struct {
	projects map[string]*domain.Project
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{projects: make(map[string]*domain.Project)}
}

func (f *fakeProjects) Create(_ context.Context, p *domain.Project) error {
	stored := *p
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	f.projects[p.ID] = &stored
	return nil
}

func (f *fakeProjects) GetByID(_ context.Context, id string) (*domain.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copy := *p
	return &copy, nil
}

func (f *fakeProjects) ListByDevice(_ context.Context, deviceID string, limit, offset int) ([]domain.Project, error) {
	var out []domain.Project
	for _, p := range f.projects {
		if p.DeviceID == deviceID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProjects) SaveScript(_ context.Context, id string, scriptJSON []byte, step domain.WizardStep) error {
	p, ok := f.projects[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.ScriptJSON = append([]byte(nil), scriptJSON...)
	p.Step = step
	return nil
}

func (f *fakeProjects) AdvanceStep(_ context.Context, id string, step domain.WizardStep) error {
	p, ok := f.projects[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Step = step
	return nil
}

type fakeJobs struct {
	jobs map[string]*domain.Job
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{jobs: make(map[string]*domain.Job)}
}

func (f *fakeJobs) Create(_ context.Context, job *domain.Job) error {
	stored := *job
	f.jobs[job.ID] = &stored
	return nil
}

func (f *fakeJobs) UpdateStatus(_ context.Context, jobID string, status domain.JobStatus, errMsg *string, resultJSON []byte) error {
	job, ok := f.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	job.Status = status
	if errMsg != nil {
		job.ErrorMessage = *errMsg
	}
	if resultJSON != nil {
		job.ResultJSON = resultJSON
	}
	return nil
}

func (f *fakeJobs) GetByID(_ context.Context, jobID string) (*domain.Job, error) {
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copy := *job
	return &copy, nil
}

type fakeAssets struct {
	assets  map[string]domain.Asset
	devices map[string]string
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{assets: make(map[string]domain.Asset), devices: make(map[string]string)}
}

func (f *fakeAssets) add(asset domain.Asset, deviceID string) {
	f.assets[asset.ID] = asset
	f.devices[asset.ID] = deviceID
}

func (f *fakeAssets) Save(_ context.Context, asset *domain.Asset) error {
	f.assets[asset.ID] = *asset
	return nil
}

func (f *fakeAssets) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	asset, _, err := f.GetByIDWithDevice(ctx, id)
	return asset, err
}

func (f *fakeAssets) GetByIDWithDevice(_ context.Context, id string) (*domain.Asset, string, error) {
	asset, ok := f.assets[id]
	if !ok {
		return nil, "", domain.ErrNotFound
	}
	return &asset, f.devices[id], nil
}

func (f *fakeAssets) ListByProject(_ context.Context, projectID string) ([]domain.Asset, error) {
	var out []domain.Asset
	for _, asset := range f.assets {
		if asset.ProjectID == projectID {
			out = append(out, asset)
		}
	}
	return out, nil
}

type fakeUsage struct {
	summary map[string]int
}

func (f *fakeUsage) IncrementCounters(_ context.Context, _ string, _ map[string]int) error {
	return nil
}

func (f *fakeUsage) Summary24h(_ context.Context) (map[string]int, error) {
	return f.summary, nil
}

type testEnv struct {
	app      *App
	projects *fakeProjects
	jobs     *fakeJobs
	assets   *fakeAssets
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	registry, err := video.LoadRegistry("", map[string]string{video.ProviderShotstack: "key"})
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	env := &testEnv{
		projects: newFakeProjects(),
		jobs:     newFakeJobs(),
		assets:   newFakeAssets(),
	}
	env.app = &App{
		Projects:       env.projects,
		Jobs:           env.jobs,
		Assets:         env.assets,
		Usage:          &fakeUsage{summary: map[string]int{"script_generated": 3}},
		Store:          store,
		Registry:       registry,
		StorageBaseURL: "http://localhost:8080/static",
	}
	return env
}

func (e *testEnv) seedProject(step domain.WizardStep, scriptJSON string) *domain.Project {
	project := &domain.Project{
		ID:          "11111111-2222-4333-8444-555555555555",
		DeviceID:    testDevice,
		Title:       "The Lost River",
		Theme:       "adventure",
		BriefJSON:   []byte(`{"version":"2025-03","theme":"adventure","topic":"the lost river","aspect_ratio":"9:16","segment_count":2}`),
		Step:        step,
		Locale:      "en",
		AspectRatio: "9:16",
	}
	if scriptJSON != "" {
		project.ScriptJSON = []byte(scriptJSON)
	}
	_ = e.projects.Create(context.Background(), project)
	return project
}

const twoSegmentScript = `{"title":"The Lost River","theme":"adventure","locale":"en","segments":[` +
	`{"index":0,"narration":"The river appears.","visual_prompt":"a river","duration_seconds":5},` +
	`{"index":1,"narration":"We follow it home.","visual_prompt":"a valley","duration_seconds":5}]}`

func withDevice(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.DeviceKey, testDevice))
}

func newAPIRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Post("/projects", app.ProjectsCreate)
	r.Get("/projects/{id}", app.ProjectGet)
	r.Put("/projects/{id}/script", app.ScriptEdit)
	r.Post("/projects/{id}/characters/generate", app.CharactersGenerate)
	r.Post("/projects/{id}/segments/{index}/video", app.SegmentVideoGenerate)
	r.Get("/projects/{id}/assets", app.ProjectAssetsList)
	r.Get("/projects/{id}/export", app.ProjectExport)
	r.Get("/assets/{id}/download", app.AssetDownload)
	r.Get("/jobs/{id}", app.JobGet)
	r.Get("/providers", app.ProvidersList)
	r.Get("/metrics/dashboard-24h", app.Dashboard24h)
	return r
}

func TestProjectsCreateNormalizesBrief(t *testing.T) {
	env := newTestEnv(t)
	router := newAPIRouter(env.app)

	body := `{"title":"","brief":{"theme":"adventure","topic":"the lost river"}}`
	req := withDevice(httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(body)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", rec.Code, rec.Body.String())
	}
	var resp projectResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Title != "the lost river" {
		t.Fatalf("title = %q, want topic fallback", resp.Title)
	}
	if resp.AspectRatio != "9:16" {
		t.Fatalf("aspect_ratio = %q, want default 9:16", resp.AspectRatio)
	}
	if resp.Step != string(domain.StepCreated) {
		t.Fatalf("step = %q, want created", resp.Step)
	}
}

func TestProjectsCreateRejectsUnknownTheme(t *testing.T) {
	env := newTestEnv(t)
	router := newAPIRouter(env.app)

	body := `{"brief":{"theme":"western","topic":"cattle drive"}}`
	req := withDevice(httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(body)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid_brief") {
		t.Fatalf("body = %s, want invalid_brief error", rec.Body.String())
	}
}

func TestProjectsCreateRequiresDevice(t *testing.T) {
	env := newTestEnv(t)
	router := newAPIRouter(env.app)

	req := httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestWizardStepGuard(t *testing.T) {
	env := newTestEnv(t)
	router := newAPIRouter(env.app)
	project := env.seedProject(domain.StepCreated, "")

	req := withDevice(httptest.NewRequest(http.MethodPost, "/projects/"+project.ID+"/characters/generate", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 before script is ready", rec.Code)
	}

	env.projects.projects[project.ID].Step = domain.StepScriptReady
	req = withDevice(httptest.NewRequest(http.MethodPost, "/projects/"+project.ID+"/characters/generate", nil))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 (%s)", rec.Code, rec.Body.String())
	}
	var resp jobResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	job, ok := env.jobs.jobs[resp.JobID]
	if !ok {
		t.Fatal("job was not created")
	}
	if job.Type != domain.JobTypeCharacters {
		t.Fatalf("job type = %q, want CHARACTER_GEN", job.Type)
	}
	if job.SegmentIndex != -1 {
		t.Fatalf("segment index = %d, want -1", job.SegmentIndex)
	}
}

func TestScriptEditValidatesAndAdvances(t *testing.T) {
	env := newTestEnv(t)
	router := newAPIRouter(env.app)
	project := env.seedProject(domain.StepCreated, "")

	req := withDevice(httptest.NewRequest(http.MethodPut, "/projects/"+project.ID+"/script", strings.NewReader(`{"segments":[]}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for empty script", rec.Code)
	}

	req = withDevice(httptest.NewRequest(http.MethodPut, "/projects/"+project.ID+"/script", strings.NewReader(twoSegmentScript)))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	stored := env.projects.projects[project.ID]
	if stored.Step != domain.StepScriptReady {
		t.Fatalf("step = %q, want script_ready", stored.Step)
	}
	if len(stored.ScriptJSON) == 0 {
		t.Fatal("script was not persisted")
	}
}

func TestSegmentVideoGenerateChecksIndex(t *testing.T) {
	env := newTestEnv(t)
	router := newAPIRouter(env.app)
	project := env.seedProject(domain.StepPhotosReady, twoSegmentScript)

	req := withDevice(httptest.NewRequest(http.MethodPost, "/projects/"+project.ID+"/segments/5/video", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for out-of-range index", rec.Code)
	}

	req = withDevice(httptest.NewRequest(http.MethodPost, "/projects/"+project.ID+"/segments/1/video", nil))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 (%s)", rec.Code, rec.Body.String())
	}

	var resp jobResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	job := env.jobs.jobs[resp.JobID]
	if job.SegmentIndex != 1 {
		t.Fatalf("segment index = %d, want 1", job.SegmentIndex)
	}
	if job.Type != domain.JobTypeSegmentVideo {
		t.Fatalf("job type = %q, want SEGMENT_VIDEO", job.Type)
	}
}

func TestJobGetHidesForeignJobs(t *testing.T) {
	env := newTestEnv(t)
	router := newAPIRouter(env.app)

	env.jobs.jobs["job-1"] = &domain.Job{
		ID:       "job-1",
		DeviceID: "99999999-8888-4777-a666-555555555555",
		Type:     domain.JobTypeScript,
		Status:   domain.JobStatusQueued,
	}

	req := withDevice(httptest.NewRequest(http.MethodGet, "/jobs/job-1", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for another device's job", rec.Code)
	}
}

func TestProjectAssetsListJoinsURLs(t *testing.T) {
	env := newTestEnv(t)
	router := newAPIRouter(env.app)
	project := env.seedProject(domain.StepPhotosReady, twoSegmentScript)

	env.assets.add(domain.Asset{
		ID:           "a1",
		ProjectID:    project.ID,
		Kind:         domain.AssetKindImage,
		StorageKey:   "projects/p1/still_0.png",
		MIME:         "image/png",
		SegmentIndex: 0,
	}, testDevice)

	req := withDevice(httptest.NewRequest(http.MethodGet, "/projects/"+project.ID+"/assets", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Items []assetResponse `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(resp.Items))
	}
	want := "http://localhost:8080/static/projects/p1/still_0.png"
	if resp.Items[0].URL != want {
		t.Fatalf("url = %q, want %q", resp.Items[0].URL, want)
	}
}

func TestAssetDownloadStreamsBytes(t *testing.T) {
	env := newTestEnv(t)
	router := newAPIRouter(env.app)
	project := env.seedProject(domain.StepCompiled, twoSegmentScript)

	key, err := env.app.Store.Write(context.Background(), "projects/p1/audio_0.mp3", []byte("mp3 bytes"))
	if err != nil {
		t.Fatalf("store write: %v", err)
	}
	env.assets.add(domain.Asset{
		ID:         "a2",
		ProjectID:  project.ID,
		Kind:       domain.AssetKindAudio,
		StorageKey: key,
		MIME:       "audio/mpeg",
	}, testDevice)

	req := withDevice(httptest.NewRequest(http.MethodGet, "/assets/a2/download", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "audio/mpeg" {
		t.Fatalf("content type = %q, want audio/mpeg", got)
	}
	if rec.Body.String() != "mp3 bytes" {
		t.Fatalf("body = %q, want stored bytes", rec.Body.String())
	}
}

func TestAssetDownloadHidesForeignAssets(t *testing.T) {
	env := newTestEnv(t)
	router := newAPIRouter(env.app)

	env.assets.add(domain.Asset{ID: "a3", StorageKey: "x.png"}, "99999999-8888-4777-a666-555555555555")

	req := withDevice(httptest.NewRequest(http.MethodGet, "/assets/a3/download", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for another device's asset", rec.Code)
	}
}

func TestProjectExportBuildsZip(t *testing.T) {
	env := newTestEnv(t)
	router := newAPIRouter(env.app)
	project := env.seedProject(domain.StepCompiled, twoSegmentScript)

	key, err := env.app.Store.Write(context.Background(), "projects/p1/compiled.json", []byte(`{"version":1}`))
	if err != nil {
		t.Fatalf("store write: %v", err)
	}
	env.assets.add(domain.Asset{
		ID:         "a4",
		ProjectID:  project.ID,
		Kind:       domain.AssetKindComposition,
		StorageKey: key,
		MIME:       "application/json",
	}, testDevice)

	req := withDevice(httptest.NewRequest(http.MethodGet, "/projects/"+project.ID+"/export", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/zip" {
		t.Fatalf("content type = %q, want application/zip", got)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Fatal("body does not look like a zip archive")
	}
}

func TestProvidersListReportsCredentials(t *testing.T) {
	env := newTestEnv(t)
	router := newAPIRouter(env.app)

	req := withDevice(httptest.NewRequest(http.MethodGet, "/providers", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Items []providerStatus `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Items) != 7 {
		t.Fatalf("items = %d, want 7", len(resp.Items))
	}
	if resp.Items[0].Name != video.ProviderShotstack || !resp.Items[0].HasCredentials {
		t.Fatalf("first provider = %+v, want shotstack with credentials", resp.Items[0])
	}
	for _, item := range resp.Items[1:] {
		if item.HasCredentials {
			t.Fatalf("provider %s should have no credentials", item.Name)
		}
	}
	if resp.Items[0].Status != "unknown" {
		t.Fatalf("status = %q, want unknown without probe", resp.Items[0].Status)
	}
}

func TestDashboard24hReturnsCounters(t *testing.T) {
	env := newTestEnv(t)
	router := newAPIRouter(env.app)

	req := withDevice(httptest.NewRequest(http.MethodGet, "/metrics/dashboard-24h", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Counters map[string]int `json:"counters"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Counters["script_generated"] != 3 {
		t.Fatalf("counters = %v, want script_generated 3", resp.Counters)
	}
}
