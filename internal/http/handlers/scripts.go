package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/animato-app/animato-server/internal/domain"
)

// ScriptGenerate queues script generation for the project brief.
func (a *App) ScriptGenerate(w http.ResponseWriter, r *http.Request) {
	a.enqueue(w, r, domain.JobTypeScript, domain.StepCreated, -1, nil)
}

// ScriptEdit replaces the script with a user-edited version. The wizard step
// moves to script_ready when the project was still in created.
func (a *App) ScriptEdit(w http.ResponseWriter, r *http.Request) {
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

	var script domain.Script
	if err := json.NewDecoder(r.Body).Decode(&script); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid script payload")
		return
	}
	if err := validateScript(&script); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_script", err.Error())
		return
	}
	if script.Theme == "" {
		script.Theme = project.Theme
	}
	if script.Locale == "" {
		script.Locale = project.Locale
	}

	raw, err := json.Marshal(script)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to encode script")
		return
	}
	step := project.Step.Advance(domain.StepScriptReady)
	if err := a.Projects.SaveScript(r.Context(), project.ID, raw, step); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to save script")
		return
	}

	updated, err := a.Projects.GetByID(r.Context(), project.ID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load project")
		return
	}
	a.json(w, http.StatusOK, projectToResponse(updated))
}

func validateScript(script *domain.Script) error {
	if len(script.Segments) == 0 {
		return errors.New("script needs at least one segment")
	}
	for i := range script.Segments {
		script.Segments[i].Index = i
		if strings.TrimSpace(script.Segments[i].Narration) == "" {
			return fmt.Errorf("segment %d has no narration", i)
		}
		if script.Segments[i].DurationSeconds <= 0 {
			script.Segments[i].DurationSeconds = 5
		}
		if strings.TrimSpace(script.Segments[i].VisualPrompt) == "" {
			script.Segments[i].VisualPrompt = script.Segments[i].Narration
		}
	}
	return nil
}
