package storage_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jonesrussell/north-cloud/readlist/internal/domain"
	"github.com/jonesrussell/north-cloud/readlist/internal/metadata"
	"github.com/jonesrussell/north-cloud/readlist/internal/storage"
)

const (
	testOwner = "owner-a"
	testID    = "0b7d8f3e-0000-4000-8000-000000000001"
)

var itemColumns = []string{
	"id", "owner_id", "url", "domain", "title", "description", "image",
	"is_read", "is_favorite", "created_at", "read_at",
}

func newTestStore(t *testing.T) (*storage.ItemStore, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	store := storage.NewItemStore(sqlx.NewDb(db, "sqlmock"))
	return store, mock, func() { _ = db.Close() }
}

func itemRow(isRead bool, readAt *time.Time) *sqlmock.Rows {
	title := "A Title"
	return sqlmock.NewRows(itemColumns).AddRow(
		testID, testOwner, "https://example.com/a", "example.com",
		&title, nil, nil, isRead, false, time.Now().UTC(), readAt,
	)
}

func TestItemStore_Create(t *testing.T) {
	store, mock, cleanup := newTestStore(t)
	defer cleanup()

	mock.ExpectQuery("INSERT INTO items").
		WillReturnRows(itemRow(false, nil))

	title := "A Title"
	item, err := store.Create(context.Background(), testOwner, "https://example.com/a",
		"example.com", metadata.Metadata{Title: &title})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if item.ID != testID || item.OwnerID != testOwner {
		t.Fatalf("unexpected item identity: %+v", item)
	}
	if item.URL != "https://example.com/a" || item.Domain != "example.com" {
		t.Fatalf("unexpected item url/domain: %+v", item)
	}
	if item.IsRead || item.IsFavorite || item.ReadAt != nil {
		t.Fatalf("new item flags not defaulted: %+v", item)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestItemStore_List(t *testing.T) {
	store, mock, cleanup := newTestStore(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .+ FROM items WHERE owner_id").
		WithArgs(testOwner).
		WillReturnRows(itemRow(false, nil))

	items, err := store.List(context.Background(), testOwner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items: got %d, want 1", len(items))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestItemStore_List_Empty(t *testing.T) {
	store, mock, cleanup := newTestStore(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .+ FROM items WHERE owner_id").
		WithArgs(testOwner).
		WillReturnRows(sqlmock.NewRows(itemColumns))

	items, err := store.List(context.Background(), testOwner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("items: got %d, want 0", len(items))
	}
}

func TestItemStore_Update_ReadDerivesReadAt(t *testing.T) {
	store, mock, cleanup := newTestStore(t)
	defer cleanup()

	now := time.Now().UTC()
	isRead := true

	// The UPDATE must set read_at in the same statement as is_read.
	mock.ExpectQuery("UPDATE items SET is_read = .+ read_at = CASE WHEN .+ WHERE id = .+ AND owner_id = ").
		WithArgs(true, testID, testOwner).
		WillReturnRows(itemRow(true, &now))

	item, err := store.Update(context.Background(), testOwner, testID,
		domain.ItemPatch{IsRead: &isRead})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !item.IsRead || item.ReadAt == nil {
		t.Fatalf("read flag invariant violated: isRead=%v readAt=%v", item.IsRead, item.ReadAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestItemStore_Update_UnreadClearsReadAt(t *testing.T) {
	store, mock, cleanup := newTestStore(t)
	defer cleanup()

	isRead := false

	mock.ExpectQuery("UPDATE items SET is_read = .+ read_at = CASE WHEN ").
		WithArgs(false, testID, testOwner).
		WillReturnRows(itemRow(false, nil))

	item, err := store.Update(context.Background(), testOwner, testID,
		domain.ItemPatch{IsRead: &isRead})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if item.IsRead || item.ReadAt != nil {
		t.Fatalf("read flag invariant violated: isRead=%v readAt=%v", item.IsRead, item.ReadAt)
	}
}

func TestItemStore_Update_NotOwned(t *testing.T) {
	store, mock, cleanup := newTestStore(t)
	defer cleanup()

	isFavorite := true

	mock.ExpectQuery("UPDATE items SET is_favorite = ").
		WithArgs(true, testID, "owner-b").
		WillReturnRows(sqlmock.NewRows(itemColumns))

	_, err := store.Update(context.Background(), "owner-b", testID,
		domain.ItemPatch{IsFavorite: &isFavorite})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign id, got %v", err)
	}
}

func TestItemStore_Update_EmptyPatch(t *testing.T) {
	store, _, cleanup := newTestStore(t)
	defer cleanup()

	_, err := store.Update(context.Background(), testOwner, testID, domain.ItemPatch{})
	if !errors.Is(err, domain.ErrNoUpdates) {
		t.Fatalf("expected ErrNoUpdates, got %v", err)
	}
}

func TestItemStore_Update_MalformedID(t *testing.T) {
	store, mock, cleanup := newTestStore(t)
	defer cleanup()

	isRead := true

	mock.ExpectQuery("UPDATE items SET is_read = ").
		WillReturnError(&pq.Error{Code: "22P02"})

	_, err := store.Update(context.Background(), testOwner, "not-a-uuid",
		domain.ItemPatch{IsRead: &isRead})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed id, got %v", err)
	}
}

func TestItemStore_Update_DatabaseError(t *testing.T) {
	store, mock, cleanup := newTestStore(t)
	defer cleanup()

	isRead := true

	mock.ExpectQuery("UPDATE items SET is_read = ").
		WillReturnError(sql.ErrConnDone)

	_, err := store.Update(context.Background(), testOwner, testID,
		domain.ItemPatch{IsRead: &isRead})
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected opaque database error, got %v", err)
	}
}

func TestItemStore_Delete_Idempotent(t *testing.T) {
	store, mock, cleanup := newTestStore(t)
	defer cleanup()

	// First delete removes the row; the second matches nothing. Both succeed.
	mock.ExpectExec("DELETE FROM items WHERE id = ").
		WithArgs(testID, testOwner).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM items WHERE id = ").
		WithArgs(testID, testOwner).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	if err := store.Delete(ctx, testOwner, testID); err != nil {
		t.Fatalf("first delete: unexpected error: %v", err)
	}
	if err := store.Delete(ctx, testOwner, testID); err != nil {
		t.Fatalf("second delete: unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestItemStore_Delete_MalformedID(t *testing.T) {
	store, mock, cleanup := newTestStore(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM items WHERE id = ").
		WillReturnError(&pq.Error{Code: "22P02"})

	if err := store.Delete(context.Background(), testOwner, "not-a-uuid"); err != nil {
		t.Fatalf("expected malformed id delete to be a no-op, got %v", err)
	}
}
