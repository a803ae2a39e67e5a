package handler

import (
	"time"

	"github.com/harvestchurch/content-platform/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Content ---

type contentRequest struct {
	Title      string `json:"title"       validate:"required,max=200"`
	Body       string `json:"body"        validate:"max=100000"`
	BodyFormat string `json:"body_format" validate:"omitempty,oneof=html markdown"`
	Category   string `json:"category"    validate:"required"`
	VideoURL   string `json:"video_url"   validate:"omitempty,max=2048"`
	Speaker    string `json:"speaker"     validate:"max=120"`
	ImageURL   string `json:"image_url"   validate:"omitempty,max=2048"`
}

type pinRequest struct {
	Pinned             *bool `json:"pinned"               validate:"required"`
	CurrentPinnedCount int   `json:"current_pinned_count" validate:"min=0"`
}

type contentResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	BodyHTML  string    `json:"body_html"`
	Preview   string    `json:"preview"`
	HasMore   bool      `json:"has_more"`
	Category  string    `json:"category"`
	AuthorID  string    `json:"author_id"`
	Pinned    bool      `json:"pinned"`
	VideoURL  string    `json:"video_url,omitempty"`
	EmbedURL  string    `json:"embed_url,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	Speaker   string    `json:"speaker,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listContentResponse struct {
	Data       []contentResponse  `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

type pinResponse struct {
	ID     string `json:"id"`
	Pinned bool   `json:"pinned"`
}

// --- Users ---

type roleRequest struct {
	Role string `json:"role" validate:"required,oneof=member volunteer usher worship_team pastor bishop admin"`
}

type activeRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type meResponse struct {
	Actor             *domain.Actor `json:"actor"`
	AllowedCategories []string      `json:"allowed_categories"`
	Capabilities      []string      `json:"capabilities"`
	IsAdmin           bool          `json:"is_admin"`
}

// --- Tools ---

type embedRequest struct {
	URL string `json:"url" validate:"required,max=2048"`
}

type embedResponse struct {
	EmbedURL   string `json:"embed_url"`
	Provider   string `json:"provider"`
	Embeddable bool   `json:"embeddable"`
}

type previewRequest struct {
	HTML  string `json:"html"  validate:"max=100000"`
	Limit int    `json:"limit" validate:"omitempty,min=1,max=2000"`
}

type previewResponse struct {
	Sanitized string `json:"sanitized"`
	Preview   string `json:"preview"`
	HasMore   bool   `json:"has_more"`
}
