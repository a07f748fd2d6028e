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

const (
	listingTableName      = "dealdesk.listings"
	listingBuyerTableName = "dealdesk.listing_buyers"
)

var listingColumns = utils.StructTagValues(types.Listing{})

type ListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

func (r *ListingRepository) Listing(ctx context.Context, listingID string) (*types.Listing, error) {
	query, args, err := psql().
		Select(listingColumns...).
		From(listingTableName).
		Where(sq.Eq{"id": listingID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate listing query: %w", err)
	}

	var listing types.Listing
	err = pgxscan.Get(ctx, r.pool, &listing, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}

	return &listing, nil
}

// ListingsForUser returns the listings a user may act on, by role: sellers
// their own, brokers/agents the ones assigned to them, buyers the ones they
// are associated with.
func (r *ListingRepository) ListingsForUser(ctx context.Context, role types.Role, userID string) ([]*types.Listing, error) {
	builder := psql().
		Select(utils.PrefixSliceOfStrings("l", listingColumns)...).
		From(listingTableName + " l").
		OrderBy("l.created_at DESC")

	switch role {
	case types.RoleSeller:
		builder = builder.Where(sq.Eq{"l.seller_id": userID})
	case types.RoleBroker:
		builder = builder.Where(sq.Eq{"l.broker_id": userID})
	case types.RoleAgent:
		builder = builder.Where(sq.Eq{"l.agent_id": userID})
	case types.RoleBuyer:
		builder = builder.
			Join(listingBuyerTableName + " lb ON lb.listing_id = l.id").
			Where(sq.Eq{"lb.buyer_id": userID})
	default:
		return nil, fmt.Errorf("unsupported role %q", role)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate listings query: %w", err)
	}

	var listings []*types.Listing
	err = pgxscan.Select(ctx, r.pool, &listings, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listings: %w", err)
	}

	return listings, nil
}

func (r *ListingRepository) CreateListing(ctx context.Context, listing *types.Listing) error {
	now := time.Now()
	if listing.ID == "" {
		listing.ID = utils.NanoID()
	}
	listing.CreatedAt = now
	listing.UpdatedAt = now
	if listing.Status == "" {
		listing.Status = types.ListingStatusActive
	}

	query, args, err := psql().
		Insert(listingTableName).
		SetMap(utils.StructToMap(listing)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert listing query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create listing")
}

func (r *ListingRepository) UpdateListing(ctx context.Context, listingID string, listing *types.Listing) error {
	listing.ID = listingID
	listing.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(listingTableName).
		SetMap(utils.StructToMap(listing)).
		Where(sq.Eq{"id": listingID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update listing query for listing %s: %w", listingID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update listing")
}

// AssignBuyer associates a buyer with a listing. Idempotent.
func (r *ListingRepository) AssignBuyer(ctx context.Context, listingID, buyerID string) error {
	query, args, err := psql().
		Insert(listingBuyerTableName).
		Columns("listing_id", "buyer_id", "created_at").
		Values(listingID, buyerID, time.Now()).
		Suffix("ON CONFLICT (listing_id, buyer_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate assign buyer query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to assign buyer")
}

// BuyerAssociated reports whether the buyer is attached to the listing.
func (r *ListingRepository) BuyerAssociated(ctx context.Context, listingID, buyerID string) (bool, error) {
	query, args, err := psql().
		Select("1").
		From(listingBuyerTableName).
		Where(sq.Eq{"listing_id": listingID, "buyer_id": buyerID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate buyer association query: %w", err)
	}

	var one int
	err = pgxscan.Get(ctx, r.pool, &one, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check buyer association: %w", err)
	}

	return true, nil
}

// BuyersByListing returns the buyers associated with a listing.
func (r *ListingRepository) BuyersByListing(ctx context.Context, listingID string) ([]*types.User, error) {
	query, args, err := psql().
		Select(utils.PrefixSliceOfStrings("u", userColumns)...).
		From(userTableName + " u").
		Join(listingBuyerTableName + " lb ON lb.buyer_id = u.id").
		Where(sq.Eq{"lb.listing_id": listingID}).
		OrderBy("lb.created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate buyers query: %w", err)
	}

	var buyers []*types.User
	err = pgxscan.Select(ctx, r.pool, &buyers, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing buyers: %w", err)
	}

	return buyers, nil
}
