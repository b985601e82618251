package client

import (
	"context"
	"errors"
	"sync"

	"github.com/jonesrussell/north-cloud/readlist/internal/domain"
)

// User-visible notice texts for failed remote calls.
const (
	noticeLoadFailed     = "Failed to load items"
	noticeSaveFailed     = "Failed to save URL"
	noticeReadFailed     = "Failed to update read status"
	noticeFavoriteFailed = "Failed to update favorite status"
	noticeDeleteFailed   = "Failed to delete item"
)

// Remote is the item API surface the engine reconciles against.
type Remote interface {
	List(ctx context.Context) ([]domain.Item, error)
	Save(ctx context.Context, rawURL string) (*domain.Item, error)
	UpdateFlags(ctx context.Context, id string, patch domain.ItemPatch) (*domain.Item, error)
	Delete(ctx context.Context, id string) error
}

// Engine maintains an in-memory mirror of the caller's items and keeps it
// consistent with the remote store. Flag toggles and deletes are applied
// optimistically: the mirror mutates synchronously, the remote call runs
// concurrently, and a remote failure rolls the mirror back to a snapshot
// captured at the moment the action was applied. Each action captures its
// own snapshot, so overlapping actions on different items roll back
// independently. Two overlapping toggles on the same field of the same
// item remain last-response-wins.
//
// The mirror is a cache; the store is authoritative.
type Engine struct {
	mu     sync.Mutex
	items  []domain.Item
	remote Remote
	notify func(string)
	wg     sync.WaitGroup
}

// NewEngine creates an engine. notify receives one user-visible message per
// failed remote call; a nil notify discards notices.
func NewEngine(remote Remote, notify func(string)) *Engine {
	if notify == nil {
		notify = func(string) {}
	}
	return &Engine{remote: remote, notify: notify}
}

// Load replaces the mirror wholesale from a fresh list call.
func (e *Engine) Load(ctx context.Context) error {
	items, err := e.remote.List(ctx)
	if err != nil {
		e.notify(noticeLoadFailed)
		return err
	}

	e.mu.Lock()
	e.items = items
	e.mu.Unlock()
	return nil
}

// Logout clears the mirror.
func (e *Engine) Logout() {
	e.mu.Lock()
	e.items = nil
	e.mu.Unlock()
}

// Items returns a copy of the mirror.
func (e *Engine) Items() []domain.Item {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]domain.Item, len(e.items))
	copy(out, e.items)
	return out
}

// SaveURL submits a URL for saving. There is no optimistic insert (the
// server generates the id and metadata); on success the whole mirror is
// refreshed from the authoritative list.
func (e *Engine) SaveURL(ctx context.Context, rawURL string) error {
	if _, err := e.remote.Save(ctx, rawURL); err != nil {
		e.notify(saveNotice(err))
		return err
	}

	return e.Load(ctx)
}

// ToggleRead flips the item's read flag optimistically and reconciles with
// the remote outcome. Returns domain.ErrNotFound if the item is not mirrored.
func (e *Engine) ToggleRead(ctx context.Context, id string) error {
	return e.toggle(ctx, id, func(item *domain.Item) domain.ItemPatch {
		item.IsRead = !item.IsRead
		flipped := item.IsRead
		return domain.ItemPatch{IsRead: &flipped}
	}, noticeReadFailed)
}

// ToggleFavorite flips the item's favorite flag optimistically and
// reconciles with the remote outcome.
func (e *Engine) ToggleFavorite(ctx context.Context, id string) error {
	return e.toggle(ctx, id, func(item *domain.Item) domain.ItemPatch {
		item.IsFavorite = !item.IsFavorite
		flipped := item.IsFavorite
		return domain.ItemPatch{IsFavorite: &flipped}
	}, noticeFavoriteFailed)
}

// toggle applies mutate to the mirrored item under the lock, capturing the
// item's prior state as this action's rollback snapshot, then issues the
// remote call concurrently. On failure the snapshot is restored and one
// notice is surfaced.
func (e *Engine) toggle(
	ctx context.Context,
	id string,
	mutate func(*domain.Item) domain.ItemPatch,
	notice string,
) error {
	e.mu.Lock()
	idx := e.indexLocked(id)
	if idx < 0 {
		e.mu.Unlock()
		return domain.ErrNotFound
	}

	snapshot := e.items[idx]
	patch := mutate(&e.items[idx])
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		if _, err := e.remote.UpdateFlags(ctx, id, patch); err != nil {
			e.restore(snapshot)
			e.notify(notice)
		}
	}()

	return nil
}

// Delete removes the item from the mirror optimistically and issues the
// remote delete. On failure the item is reinserted at its prior position.
func (e *Engine) Delete(ctx context.Context, id string) error {
	e.mu.Lock()
	idx := e.indexLocked(id)
	if idx < 0 {
		e.mu.Unlock()
		return domain.ErrNotFound
	}

	snapshot := e.items[idx]
	e.items = append(e.items[:idx], e.items[idx+1:]...)
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		if err := e.remote.Delete(ctx, id); err != nil {
			e.reinsert(snapshot, idx)
			e.notify(noticeDeleteFailed)
		}
	}()

	return nil
}

// Wait blocks until all in-flight remote calls have reconciled.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// indexLocked returns the mirror index of id, or -1. Callers hold e.mu.
func (e *Engine) indexLocked(id string) int {
	for i := range e.items {
		if e.items[i].ID == id {
			return i
		}
	}
	return -1
}

// restore writes the snapshot back over the mirrored item with the same id.
// If the item was removed in the meantime the snapshot is dropped: a delete
// superseded this action.
func (e *Engine) restore(snapshot domain.Item) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if idx := e.indexLocked(snapshot.ID); idx >= 0 {
		e.items[idx] = snapshot
	}
}

// reinsert puts a rolled-back delete target back at its prior position,
// clamped to the current mirror length.
func (e *Engine) reinsert(snapshot domain.Item, idx int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.indexLocked(snapshot.ID) >= 0 {
		return
	}

	if idx > len(e.items) {
		idx = len(e.items)
	}

	e.items = append(e.items[:idx], append([]domain.Item{snapshot}, e.items[idx:]...)...)
}

// saveNotice prefers the server-provided message over the generic fallback.
func saveNotice(err error) string {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) && remoteErr.Message != "" {
		return remoteErr.Message
	}
	return noticeSaveFailed
}
