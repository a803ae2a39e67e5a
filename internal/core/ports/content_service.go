package ports

import (
	"context"

	"github.com/harvestchurch/content-platform/internal/core/domain"
)

// BodyFormat names the markup an author submitted.
type BodyFormat string

const (
	FormatHTML     BodyFormat = "html"
	FormatMarkdown BodyFormat = "markdown"
)

// ContentInput carries the author-supplied fields of a post or sermon.
type ContentInput struct {
	Title      string
	Body       string
	BodyFormat BodyFormat
	Category   string
	VideoURL   string
	Speaker    string
	ImageURL   string
}

// ListContentInput carries the parameters of the list endpoint.
type ListContentInput struct {
	Kind     domain.ContentKind
	Category string
	Page     int
	Limit    int
}

// ListContentResult is returned by ContentService.List.
type ListContentResult struct {
	Items      []*domain.ContentItem
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ContentService defines use-case operations on posts and sermons.
type ContentService interface {
	Create(ctx context.Context, actor *domain.Actor, kind domain.ContentKind, in ContentInput) (*domain.ContentItem, error)
	Get(ctx context.Context, kind domain.ContentKind, id string) (*domain.ContentItem, error)
	Update(ctx context.Context, actor *domain.Actor, kind domain.ContentKind, id string, in ContentInput) (*domain.ContentItem, error)
	Delete(ctx context.Context, actor *domain.Actor, kind domain.ContentKind, id string) error
	List(ctx context.Context, in ListContentInput) (*ListContentResult, error)
}

// PinService guards the pinned flag of a content collection. SetPinned
// reports whether the flag actually changed.
type PinService interface {
	SetPinned(ctx context.Context, actor *domain.Actor, itemID string, desired bool, currentPinnedCount int) (bool, error)
}
