package store

import (
	"context"
	"fmt"

	"dealdesk/internal/utils"
	"dealdesk/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const documentTableName = "dealdesk.documents"

var documentColumns = utils.StructTagValues(types.Document{})

type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

func (r *DocumentRepository) DocumentByListingIDAndID(ctx context.Context, listingID, documentID string) (*types.Document, error) {
	query, args, err := psql().
		Select(documentColumns...).
		From(documentTableName).
		Where(sq.Eq{"id": documentID, "listing_id": listingID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate document query: %w", err)
	}

	var doc types.Document
	err = pgxscan.Get(ctx, r.pool, &doc, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}

	return &doc, nil
}

// DocumentsByListing returns every document for a listing in storage
// insertion order. Consumers sort as needed.
func (r *DocumentRepository) DocumentsByListing(ctx context.Context, listingID string) ([]*types.Document, error) {
	query, args, err := psql().
		Select(documentColumns...).
		From(documentTableName).
		Where(sq.Eq{"listing_id": listingID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate documents query: %w", err)
	}

	var docs []*types.Document
	err = pgxscan.Select(ctx, r.pool, &docs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}

	return docs, nil
}

// DocumentsByStep filters on step_id equality; rows with a NULL step_id are
// excluded. Category narrows further when non-empty.
func (r *DocumentRepository) DocumentsByStep(ctx context.Context, listingID string, stepID int, category string) ([]*types.Document, error) {
	where := sq.Eq{"listing_id": listingID, "step_id": stepID}
	if category != "" {
		where["category"] = category
	}

	query, args, err := psql().
		Select(documentColumns...).
		From(documentTableName).
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate documents-by-step query: %w", err)
	}

	var docs []*types.Document
	err = pgxscan.Select(ctx, r.pool, &docs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch documents by step: %w", err)
	}

	return docs, nil
}

// ProviderDocuments returns broker/agent-uploaded documents of a type.
// Callers pick the canonical one; broker uploads outrank agent uploads.
func (r *DocumentRepository) ProviderDocuments(ctx context.Context, listingID string, docType types.DocumentType) ([]*types.Document, error) {
	query, args, err := psql().
		Select(documentColumns...).
		From(documentTableName).
		Where(sq.Eq{
			"listing_id":    listingID,
			"document_type": docType,
			"uploader_role": []types.Role{types.RoleBroker, types.RoleAgent},
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate provider documents query: %w", err)
	}

	var docs []*types.Document
	err = pgxscan.Select(ctx, r.pool, &docs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch provider documents: %w", err)
	}

	return docs, nil
}

func (r *DocumentRepository) CreateDocument(ctx context.Context, doc *types.Document) error {
	query, args, err := psql().
		Insert(documentTableName).
		SetMap(utils.StructToMap(doc)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert document query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create document")
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, listingID, documentID string, status types.DocumentStatus) error {
	query, args, err := psql().
		Update(documentTableName).
		Set("status", status).
		Where(sq.Eq{"id": documentID, "listing_id": listingID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update document status query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update document status")
}

// DeleteDocument removes a record scoped to its listing. Step completion
// flags are untouched: a completed step stays completed even when its
// supporting document goes away.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, listingID, documentID string) error {
	query, args, err := psql().
		Delete(documentTableName).
		Where(sq.Eq{"id": documentID, "listing_id": listingID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete document query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to delete document")
}
