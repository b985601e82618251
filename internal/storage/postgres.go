// Package storage provides the PostgreSQL item store.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jonesrussell/north-cloud/readlist/internal/domain"
	"github.com/jonesrussell/north-cloud/readlist/internal/metadata"
)

// itemColumns is the full column list returned by every item query.
const itemColumns = "id, owner_id, url, domain, title, description, image, " +
	"is_read, is_favorite, created_at, read_at"

// pqInvalidTextRepresentation is the PostgreSQL error code raised when a
// malformed string is cast to UUID. A malformed id can never match a row,
// so it is treated as not-found rather than surfaced as a server error.
const pqInvalidTextRepresentation = "22P02"

// ItemStore provides owner-scoped persistence for saved items.
// Every operation filters by owner_id; a foreign id behaves exactly like
// a missing one.
type ItemStore struct {
	db *sqlx.DB
}

// NewItemStore creates a new item store.
func NewItemStore(db *sqlx.DB) *ItemStore {
	return &ItemStore{db: db}
}

// Create inserts one item row with the given preview metadata and returns it.
func (s *ItemStore) Create(
	ctx context.Context,
	ownerID, rawURL, itemDomain string,
	meta metadata.Metadata,
) (*domain.Item, error) {
	query := `
		INSERT INTO items (id, owner_id, url, domain, title, description, image,
			is_read, is_favorite, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, FALSE, $8)
		RETURNING ` + itemColumns

	item := &domain.Item{}
	err := s.db.QueryRowxContext(
		ctx, query,
		uuid.New(), ownerID, rawURL, itemDomain,
		meta.Title, meta.Description, meta.Image,
		time.Now().UTC(),
	).StructScan(item)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}

	return item, nil
}

// List returns all items for the owner, newest first.
func (s *ItemStore) List(ctx context.Context, ownerID string) ([]domain.Item, error) {
	items := []domain.Item{}
	query := `SELECT ` + itemColumns + ` FROM items WHERE owner_id = $1 ORDER BY created_at DESC`

	if err := s.db.SelectContext(ctx, &items, query, ownerID); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	return items, nil
}

// Update applies the patch's flag fields to the owner's item and returns the
// updated row. Setting is_read also derives read_at in the same statement:
// read_at is set to now on the false-to-true transition and cleared on the
// true-to-false one, so is_read and read_at can never disagree.
// Returns domain.ErrNotFound when the id does not belong to the owner.
func (s *ItemStore) Update(
	ctx context.Context,
	ownerID, id string,
	patch domain.ItemPatch,
) (*domain.Item, error) {
	if patch.Empty() {
		return nil, domain.ErrNoUpdates
	}

	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)

	if patch.IsRead != nil {
		args = append(args, *patch.IsRead)
		n := len(args)
		sets = append(sets,
			fmt.Sprintf("is_read = $%d", n),
			fmt.Sprintf("read_at = CASE WHEN $%d THEN NOW() ELSE NULL END", n),
		)
	}
	if patch.IsFavorite != nil {
		args = append(args, *patch.IsFavorite)
		sets = append(sets, fmt.Sprintf("is_favorite = $%d", len(args)))
	}

	args = append(args, id)
	idArg := len(args)
	args = append(args, ownerID)
	ownerArg := len(args)

	query := fmt.Sprintf(
		"UPDATE items SET %s WHERE id = $%d AND owner_id = $%d RETURNING %s",
		strings.Join(sets, ", "), idArg, ownerArg, itemColumns,
	)

	item := &domain.Item{}
	err := s.db.QueryRowxContext(ctx, query, args...).StructScan(item)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update item: %w", err)
	}

	return item, nil
}

// Delete removes at most one row matching both id and owner. Deleting a
// missing or foreign id is a silent no-op.
func (s *ItemStore) Delete(ctx context.Context, ownerID, id string) error {
	query := `DELETE FROM items WHERE id = $1 AND owner_id = $2`

	if _, err := s.db.ExecContext(ctx, query, id, ownerID); err != nil {
		if isInvalidUUID(err) {
			return nil
		}
		return fmt.Errorf("delete item: %w", err)
	}

	return nil
}

// Ping verifies database connectivity.
func (s *ItemStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// isInvalidUUID reports whether err is a PostgreSQL invalid-UUID cast error.
func isInvalidUUID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqInvalidTextRepresentation
}
