package repo

import (
	"context"

	"github.com/animato-app/animato-server/internal/domain"
	"github.com/animato-app/animato-server/internal/infra"
	"github.com/animato-app/animato-server/internal/sqlinline"
)

// UsageRepositoryPG implements domain.UsageRepository.
type UsageRepositoryPG struct {
	db infra.SQLExecutor
}

// NewUsageRepository creates a usage counter repository backed by PostgreSQL.
func NewUsageRepository(db infra.SQLExecutor) *UsageRepositoryPG {
	return &UsageRepositoryPG{db: db}
}

// IncrementCounters upserts every counter for the given day.
func (r *UsageRepositoryPG) IncrementCounters(ctx context.Context, day string, counters map[string]int) error {
	for counter, value := range counters {
		if value == 0 {
			continue
		}
		if _, err := r.db.Exec(ctx, sqlinline.QIncrementUsageCounter, day, counter, value); err != nil {
			return err
		}
	}
	return nil
}

// Summary24h aggregates counters over the trailing day for the metrics route.
func (r *UsageRepositoryPG) Summary24h(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Query(ctx, sqlinline.QUsageSummary24h)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := make(map[string]int)
	for rows.Next() {
		var counter string
		var value int
		if err := rows.Scan(&counter, &value); err != nil {
			return nil, err
		}
		summary[counter] = value
	}
	return summary, rows.Err()
}

var _ domain.UsageRepository = (*UsageRepositoryPG)(nil)
