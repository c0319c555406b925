package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/animato-app/animato-server/internal/domain"
)

// JobGet returns the status of one job owned by the calling device.
func (a *App) JobGet(w http.ResponseWriter, r *http.Request) {
	deviceID := a.currentDeviceID(r)
	if deviceID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing device context")
		return
	}

	job, err := a.Jobs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}
	if job.DeviceID != deviceID {
		a.error(w, http.StatusNotFound, "not_found", "job not found")
		return
	}

	resp := map[string]any{
		"id":         job.ID,
		"project_id": job.ProjectID,
		"task_type":  string(job.Type),
		"status":     string(job.Status),
		"provider":   job.Provider,
		"created_at": job.CreatedAt,
		"updated_at": job.UpdatedAt,
	}
	if job.SegmentIndex >= 0 {
		resp["segment_index"] = job.SegmentIndex
	}
	if job.ErrorMessage != "" {
		resp["error_message"] = job.ErrorMessage
	}
	if len(job.ResultJSON) > 0 {
		resp["result"] = json.RawMessage(job.ResultJSON)
	}
	a.json(w, http.StatusOK, resp)
}
