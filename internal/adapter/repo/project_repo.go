package repo

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/animato-app/animato-server/internal/domain"
	"github.com/animato-app/animato-server/internal/infra"
	"github.com/animato-app/animato-server/internal/sqlinline"
)

// ProjectRepositoryPG implements domain.ProjectRepository.
type ProjectRepositoryPG struct {
	db infra.SQLExecutor
}

// NewProjectRepository creates a project repository backed by PostgreSQL.
func NewProjectRepository(db infra.SQLExecutor) *ProjectRepositoryPG {
	return &ProjectRepositoryPG{db: db}
}

// Create inserts a new project in the initial wizard step.
func (r *ProjectRepositoryPG) Create(ctx context.Context, project *domain.Project) error {
	_, err := r.db.Exec(ctx, sqlinline.QInsertProject,
		project.ID,
		project.DeviceID,
		project.Title,
		project.Theme,
		project.BriefJSON,
		string(project.Step),
		project.Locale,
		project.AspectRatio,
	)
	return err
}

// GetByID fetches a project by its identifier.
func (r *ProjectRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.db.QueryRow(ctx, sqlinline.QSelectProjectByID, id)
	return scanProject(row)
}

// ListByDevice returns the device's projects newest first.
func (r *ProjectRepositoryPG) ListByDevice(ctx context.Context, deviceID string, limit, offset int) ([]domain.Project, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(ctx, sqlinline.QListProjectsByDevice, deviceID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

// SaveScript stores the script JSON and moves the wizard forward in one write.
func (r *ProjectRepositoryPG) SaveScript(ctx context.Context, id string, scriptJSON []byte, step domain.WizardStep) error {
	title := scriptTitle(scriptJSON)
	tag, err := r.db.Exec(ctx, sqlinline.QUpdateProjectScript, id, scriptJSON, title, string(step))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AdvanceStep moves the project to the given step.
func (r *ProjectRepositoryPG) AdvanceStep(ctx context.Context, id string, step domain.WizardStep) error {
	tag, err := r.db.Exec(ctx, sqlinline.QAdvanceProjectStep, id, string(step))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scriptTitle lifts the title out of the script payload so the project list
// shows it without parsing the whole script.
func scriptTitle(scriptJSON []byte) string {
	var payload struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(scriptJSON, &payload); err != nil {
		return ""
	}
	return payload.Title
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var project domain.Project
	var step string
	if err := row.Scan(
		&project.ID,
		&project.DeviceID,
		&project.Title,
		&project.Theme,
		&project.BriefJSON,
		&project.ScriptJSON,
		&step,
		&project.Locale,
		&project.AspectRatio,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	project.Step = domain.WizardStep(step)
	if string(project.ScriptJSON) == "null" {
		project.ScriptJSON = nil
	}
	return &project, nil
}

var _ domain.ProjectRepository = (*ProjectRepositoryPG)(nil)
