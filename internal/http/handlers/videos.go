package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/animato-app/animato-server/internal/domain"
)

// SegmentVideoGenerate queues video generation for one script segment. The
// index must address an existing segment of the stored script.
func (a *App) SegmentVideoGenerate(w http.ResponseWriter, r *http.Request) {
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
	if !project.Step.Reached(domain.StepPhotosReady) {
		a.error(w, http.StatusConflict, "step_not_ready", "photos must be generated before segment videos")
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid segment index")
		return
	}
	var script domain.Script
	if err := json.Unmarshal(project.ScriptJSON, &script); err != nil || index >= len(script.Segments) {
		a.error(w, http.StatusBadRequest, "bad_request", "segment index out of range")
		return
	}

	job := &domain.Job{
		ID:           uuid.NewString(),
		ProjectID:    project.ID,
		DeviceID:     deviceID,
		Type:         domain.JobTypeSegmentVideo,
		Status:       domain.JobStatusQueued,
		SegmentIndex: index,
	}
	if err := a.Jobs.Create(r.Context(), job); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue job")
		return
	}
	a.json(w, http.StatusAccepted, jobResponse{JobID: job.ID, Status: string(domain.JobStatusQueued)})
}
