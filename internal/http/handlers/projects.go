package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/animato-app/animato-server/internal/domain"
	"github.com/animato-app/animato-server/internal/domain/jsoncfg"
	"github.com/animato-app/animato-server/internal/middleware"
)

type projectCreateRequest struct {
	Title string            `json:"title"`
	Brief jsoncfg.BriefJSON `json:"brief"`
}

type projectResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Theme       string          `json:"theme"`
	Step        string          `json:"step"`
	Locale      string          `json:"locale"`
	AspectRatio string          `json:"aspect_ratio"`
	Brief       json.RawMessage `json:"brief"`
	Script      json.RawMessage `json:"script,omitempty"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

func projectToResponse(p *domain.Project) projectResponse {
	resp := projectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Theme:       p.Theme,
		Step:        string(p.Step),
		Locale:      p.Locale,
		AspectRatio: p.AspectRatio,
		Brief:       json.RawMessage(p.BriefJSON),
		CreatedAt:   p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   p.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if len(p.ScriptJSON) > 0 {
		resp.Script = json.RawMessage(p.ScriptJSON)
	}
	return resp
}

// ProjectsCreate starts a new wizard run from a brief.
func (a *App) ProjectsCreate(w http.ResponseWriter, r *http.Request) {
	deviceID := a.currentDeviceID(r)
	if deviceID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing device context")
		return
	}

	var req projectCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	locale := middleware.RequestLocale(r.Context())
	req.Brief.Normalize(locale)
	if err := req.Brief.Validate(); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_brief", err.Error())
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = strings.TrimSpace(req.Brief.Topic)
	}

	project := &domain.Project{
		ID:          uuid.NewString(),
		DeviceID:    deviceID,
		Title:       title,
		Theme:       strings.ToLower(strings.TrimSpace(req.Brief.Theme)),
		BriefJSON:   jsoncfg.MustMarshal(req.Brief),
		Step:        domain.StepCreated,
		Locale:      req.Brief.Extras.Locale,
		AspectRatio: req.Brief.AspectRatio,
	}
	if err := a.Projects.Create(r.Context(), project); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to create project")
		return
	}

	created, err := a.Projects.GetByID(r.Context(), project.ID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load project")
		return
	}
	a.json(w, http.StatusCreated, projectToResponse(created))
}

// ProjectsList returns the device's projects newest first.
func (a *App) ProjectsList(w http.ResponseWriter, r *http.Request) {
	deviceID := a.currentDeviceID(r)
	if deviceID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing device context")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	projects, err := a.Projects.ListByDevice(r.Context(), deviceID, limit, offset)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list projects")
		return
	}

	items := make([]projectResponse, 0, len(projects))
	for i := range projects {
		items = append(items, projectToResponse(&projects[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// ProjectGet returns one project with its script when present.
func (a *App) ProjectGet(w http.ResponseWriter, r *http.Request) {
	deviceID := a.currentDeviceID(r)
	if deviceID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing device context")
		return
	}

	project, err := a.loadProjectForDevice(r.Context(), chi.URLParam(r, "id"), deviceID)
	if err != nil {
		a.projectError(w, err)
		return
	}
	a.json(w, http.StatusOK, projectToResponse(project))
}
