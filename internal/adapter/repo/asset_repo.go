package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/animato-app/animato-server/internal/domain"
	"github.com/animato-app/animato-server/internal/infra"
	"github.com/animato-app/animato-server/internal/sqlinline"
)

// AssetRepositoryPG implements domain.AssetRepository.
type AssetRepositoryPG struct {
	db infra.SQLExecutor
}

// NewAssetRepository creates an asset repository backed by PostgreSQL.
func NewAssetRepository(db infra.SQLExecutor) *AssetRepositoryPG {
	return &AssetRepositoryPG{db: db}
}

// Save inserts the asset metadata row. The id is generated server side.
func (r *AssetRepositoryPG) Save(ctx context.Context, asset *domain.Asset) error {
	metadata := asset.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	_, err := r.db.Exec(ctx, sqlinline.QInsertAsset,
		asset.ProjectID,
		nullableID(asset.JobID),
		string(asset.Kind),
		asset.StorageKey,
		asset.MIME,
		asset.Bytes,
		asset.Width,
		asset.Height,
		asset.DurationSeconds,
		asset.SegmentIndex,
		metadata,
	)
	return err
}

// GetByID fetches an asset together with the owning project's device id, so
// handlers can enforce ownership in one round trip.
func (r *AssetRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	asset, _, err := r.GetByIDWithDevice(ctx, id)
	return asset, err
}

// GetByIDWithDevice returns the asset and the device that owns its project.
func (r *AssetRepositoryPG) GetByIDWithDevice(ctx context.Context, id string) (*domain.Asset, string, error) {
	row := r.db.QueryRow(ctx, sqlinline.QSelectAssetByID, id)

	var asset domain.Asset
	var kind, deviceID string
	var jobID *string
	if err := row.Scan(
		&asset.ID,
		&asset.ProjectID,
		&jobID,
		&kind,
		&asset.StorageKey,
		&asset.MIME,
		&asset.Bytes,
		&asset.Width,
		&asset.Height,
		&asset.DurationSeconds,
		&asset.SegmentIndex,
		&asset.Metadata,
		&asset.CreatedAt,
		&deviceID,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", domain.ErrNotFound
		}
		return nil, "", err
	}
	asset.Kind = domain.AssetKind(kind)
	if jobID != nil {
		asset.JobID = *jobID
	}
	return &asset, deviceID, nil
}

// ListByProject returns all assets of a project in segment order.
func (r *AssetRepositoryPG) ListByProject(ctx context.Context, projectID string) ([]domain.Asset, error) {
	rows, err := r.db.Query(ctx, sqlinline.QListAssetsByProject, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []domain.Asset
	for rows.Next() {
		var asset domain.Asset
		var kind string
		var jobID *string
		if err := rows.Scan(
			&asset.ID,
			&asset.ProjectID,
			&jobID,
			&kind,
			&asset.StorageKey,
			&asset.MIME,
			&asset.Bytes,
			&asset.Width,
			&asset.Height,
			&asset.DurationSeconds,
			&asset.SegmentIndex,
			&asset.Metadata,
			&asset.CreatedAt,
		); err != nil {
			return nil, err
		}
		asset.Kind = domain.AssetKind(kind)
		if jobID != nil {
			asset.JobID = *jobID
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

var _ domain.AssetRepository = (*AssetRepositoryPG)(nil)
