package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/animato-app/animato-server/internal/domain"
)

type jobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// enqueue guards the wizard order and inserts one queued job.
func (a *App) enqueue(w http.ResponseWriter, r *http.Request, jobType domain.JobType, prereq domain.WizardStep, segmentIndex int, payload []byte) {
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
	if !project.Step.Reached(prereq) {
		a.error(w, http.StatusConflict, "step_not_ready", "project has not reached the required wizard step")
		return
	}

	job := &domain.Job{
		ID:           uuid.NewString(),
		ProjectID:    project.ID,
		DeviceID:     deviceID,
		Type:         jobType,
		Status:       domain.JobStatusQueued,
		SegmentIndex: segmentIndex,
		PayloadJSON:  payload,
	}
	if err := a.Jobs.Create(r.Context(), job); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue job")
		return
	}
	a.json(w, http.StatusAccepted, jobResponse{JobID: job.ID, Status: string(domain.JobStatusQueued)})
}

// CharactersGenerate queues character derivation; it needs a script.
func (a *App) CharactersGenerate(w http.ResponseWriter, r *http.Request) {
	a.enqueue(w, r, domain.JobTypeCharacters, domain.StepScriptReady, -1, nil)
}

// PhotosGenerate queues portrait and segment still generation.
func (a *App) PhotosGenerate(w http.ResponseWriter, r *http.Request) {
	a.enqueue(w, r, domain.JobTypePhotos, domain.StepCharactersReady, -1, nil)
}

// SpeechGenerate queues narration synthesis for every segment.
func (a *App) SpeechGenerate(w http.ResponseWriter, r *http.Request) {
	a.enqueue(w, r, domain.JobTypeSpeech, domain.StepScriptReady, -1, nil)
}

// CompileVideo queues assembly of the final composition.
func (a *App) CompileVideo(w http.ResponseWriter, r *http.Request) {
	a.enqueue(w, r, domain.JobTypeCompile, domain.StepSegmentsReady, -1, nil)
}
