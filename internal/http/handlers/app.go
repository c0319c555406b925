package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/animato-app/animato-server/internal/domain"
	"github.com/animato-app/animato-server/internal/infra"
	"github.com/animato-app/animato-server/internal/middleware"
	"github.com/animato-app/animato-server/internal/providers/video"
	"github.com/animato-app/animato-server/internal/storage"
)

// App bundles the dependencies the HTTP handlers need.
type App struct {
	SQL      infra.SQLExecutor
	Projects domain.ProjectRepository
	Jobs     domain.JobRepository
	Assets   domain.AssetRepository
	Usage    domain.UsageRepository

	Store    *storage.FileStore
	Registry *video.Registry
	Prober   *video.Prober

	StorageBaseURL string
	Logger         *infra.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, slug, message string) {
	a.json(w, code, map[string]string{"error": slug, "message": message})
}

func (a *App) currentDeviceID(r *http.Request) string {
	return middleware.DeviceID(r.Context())
}

// loadProjectForDevice fetches the project and enforces device ownership.
func (a *App) loadProjectForDevice(ctx context.Context, projectID, deviceID string) (*domain.Project, error) {
	project, err := a.Projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.DeviceID != deviceID {
		return nil, domain.ErrForbidden
	}
	return project, nil
}

// projectError maps repository errors onto HTTP responses.
func (a *App) projectError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "project not found")
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusNotFound, "not_found", "project not found")
	default:
		a.error(w, http.StatusInternalServerError, "internal", "failed to load project")
	}
}
