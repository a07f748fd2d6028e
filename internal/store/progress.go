package store

import (
	"context"
	"fmt"
	"time"

	"dealdesk/internal/utils"
	"dealdesk/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const progressTableName = "dealdesk.journey_progress"

var progressColumns = utils.StructTagValues(types.Progress{})

type ProgressRepository struct {
	pool *pgxpool.Pool
}

func NewProgressRepository(pool *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{pool: pool}
}

func (r *ProgressRepository) ProgressByUser(ctx context.Context, userID string) (*types.Progress, error) {
	query, args, err := psql().
		Select(progressColumns...).
		From(progressTableName).
		Where(sq.Eq{"user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate progress query: %w", err)
	}

	var progress types.Progress
	err = pgxscan.Get(ctx, r.pool, &progress, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrProgressNotFound
		}
		return nil, fmt.Errorf("failed to fetch progress: %w", err)
	}

	return &progress, nil
}

func (r *ProgressRepository) CreateProgress(ctx context.Context, progress *types.Progress) error {
	query, args, err := psql().
		Insert(progressTableName).
		SetMap(utils.StructToMap(progress)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert progress query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create progress")
}

// UpdateProgress persists the whole record in one row update, so the step
// array and the current step index commit together or not at all.
func (r *ProgressRepository) UpdateProgress(ctx context.Context, progress *types.Progress) error {
	progress.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(progressTableName).
		SetMap(utils.StructToMap(progress)).
		Where(sq.Eq{"user_id": progress.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update progress query for user %s: %w", progress.UserID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update progress")
}

// SelectListing stores the seller/buyer's active listing pointer on the
// progress record.
func (r *ProgressRepository) SelectListing(ctx context.Context, userID string, listingID *string) error {
	query, args, err := psql().
		Update(progressTableName).
		Set("selected_listing_id", listingID).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate select listing query for user %s: %w", userID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to select listing")
}
