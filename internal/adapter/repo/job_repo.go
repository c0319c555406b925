package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/animato-app/animato-server/internal/domain"
	"github.com/animato-app/animato-server/internal/infra"
	"github.com/animato-app/animato-server/internal/sqlinline"
)

// JobRepositoryPG implements domain.JobRepository.
type JobRepositoryPG struct {
	db infra.SQLExecutor
}

// NewJobRepository creates a job repository backed by PostgreSQL.
func NewJobRepository(db infra.SQLExecutor) *JobRepositoryPG {
	return &JobRepositoryPG{db: db}
}

// Create inserts a new queued job.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.Job) error {
	_, err := r.db.Exec(ctx, sqlinline.QInsertJob,
		job.ID,
		job.ProjectID,
		job.DeviceID,
		string(job.Type),
		job.Provider,
		job.SegmentIndex,
		nullableBytes(job.PayloadJSON),
	)
	return err
}

// UpdateStatus updates job status and optionally error/result payloads.
func (r *JobRepositoryPG) UpdateStatus(ctx context.Context, jobID string, status domain.JobStatus, errMsg *string, resultJSON []byte) error {
	tag, err := r.db.Exec(ctx, sqlinline.QUpdateJobStatus, jobID, string(status), errMsg, nullableBytes(resultJSON))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID fetches a job by its identifier.
func (r *JobRepositoryPG) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	row := r.db.QueryRow(ctx, sqlinline.QSelectJobByID, jobID)

	var job domain.Job
	var taskType, status string
	if err := row.Scan(
		&job.ID,
		&job.ProjectID,
		&job.DeviceID,
		&taskType,
		&status,
		&job.Provider,
		&job.SegmentIndex,
		&job.PayloadJSON,
		&job.ResultJSON,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	job.Type = domain.JobType(taskType)
	job.Status = domain.JobStatus(status)
	if string(job.ResultJSON) == "null" {
		job.ResultJSON = nil
	}
	return &job, nil
}

// Claim atomically moves the oldest queued job to RUNNING and returns it.
// Returns domain.ErrNotFound when the queue is empty.
func (r *JobRepositoryPG) Claim(ctx context.Context) (*domain.Job, error) {
	row := r.db.QueryRow(ctx, sqlinline.QWorkerClaimJob)

	var job domain.Job
	var taskType string
	if err := row.Scan(
		&job.ID,
		&job.ProjectID,
		&job.DeviceID,
		&taskType,
		&job.Provider,
		&job.SegmentIndex,
		&job.PayloadJSON,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	job.Type = domain.JobType(taskType)
	job.Status = domain.JobStatusRunning
	return &job, nil
}

func nullableBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

var _ domain.JobRepository = (*JobRepositoryPG)(nil)
