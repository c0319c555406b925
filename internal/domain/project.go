package domain

import "time"

// WizardStep enumerates the linear states a project moves through. Steps only
// advance; operations belonging to a later step are rejected until the
// prerequisite artifact exists.
type WizardStep string

const (
	StepCreated         WizardStep = "created"
	StepScriptReady     WizardStep = "script_ready"
	StepCharactersReady WizardStep = "characters_ready"
	StepPhotosReady     WizardStep = "photos_ready"
	StepSegmentsReady   WizardStep = "segments_ready"
	StepCompiled        WizardStep = "compiled"
)

var stepOrder = map[WizardStep]int{
	StepCreated:         0,
	StepScriptReady:     1,
	StepCharactersReady: 2,
	StepPhotosReady:     3,
	StepSegmentsReady:   4,
	StepCompiled:        5,
}

// Reached reports whether the project has advanced at least to the given step.
func (s WizardStep) Reached(target WizardStep) bool {
	return stepOrder[s] >= stepOrder[target]
}

// Advance returns the later of the two steps; the wizard never moves backwards.
func (s WizardStep) Advance(target WizardStep) WizardStep {
	if stepOrder[target] > stepOrder[s] {
		return target
	}
	return s
}

// Project is a single wizard run owned by an anonymous device.
type Project struct {
	ID          string
	DeviceID    string
	Title       string
	Theme       string
	BriefJSON   []byte
	ScriptJSON  []byte
	Step        WizardStep
	Locale      string
	AspectRatio string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
