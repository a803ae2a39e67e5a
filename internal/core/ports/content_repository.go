package ports

import (
	"context"
	"time"

	"github.com/harvestchurch/content-platform/internal/core/domain"
)

// ListContentFilter carries the query parameters for listing content.
type ListContentFilter struct {
	Kind     domain.ContentKind
	Category string // optional
	Page     int    // 1-based
	Limit    int
}

// ContentRepository defines persistence operations for posts and sermons.
type ContentRepository interface {
	Create(ctx context.Context, item *domain.ContentItem) (*domain.ContentItem, error)
	FindByID(ctx context.Context, id string) (*domain.ContentItem, error)
	Update(ctx context.Context, item *domain.ContentItem) (*domain.ContentItem, error)
	Delete(ctx context.Context, id string) error
	// List returns a page of items, pinned first then newest, and the total count.
	List(ctx context.Context, filter ListContentFilter) ([]*domain.ContentItem, int64, error)
	// CountPinned reads the authoritative number of pinned items of kind.
	CountPinned(ctx context.Context, kind domain.ContentKind) (int64, error)
	// SetPinned writes the pinned flag and reports whether the document changed.
	SetPinned(ctx context.Context, id string, pinned bool) (bool, error)
}

// Locker provides short-lived mutual exclusion across processes.
type Locker interface {
	// TryLock acquires key for ttl. ok is false when another holder owns it.
	// The returned unlock releases the lock only if it is still ours.
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, ok bool, err error)
}
