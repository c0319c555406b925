package domain

import "context"

// ProjectRepository defines persistence for wizard projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id string) (*Project, error)
	ListByDevice(ctx context.Context, deviceID string, limit, offset int) ([]Project, error)
	SaveScript(ctx context.Context, id string, scriptJSON []byte, step WizardStep) error
	AdvanceStep(ctx context.Context, id string, step WizardStep) error
}

// JobRepository defines persistence for generation jobs.
type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	UpdateStatus(ctx context.Context, jobID string, status JobStatus, errMsg *string, resultJSON []byte) error
	GetByID(ctx context.Context, jobID string) (*Job, error)
}

// AssetRepository handles persistence for generated artifacts.
type AssetRepository interface {
	Save(ctx context.Context, asset *Asset) error
	GetByID(ctx context.Context, id string) (*Asset, error)
	GetByIDWithDevice(ctx context.Context, id string) (*Asset, string, error)
	ListByProject(ctx context.Context, projectID string) ([]Asset, error)
}

// UsageRepository accumulates daily generation counters per provider.
type UsageRepository interface {
	IncrementCounters(ctx context.Context, day string, counters map[string]int) error
	Summary24h(ctx context.Context) (map[string]int, error)
}
