package handler

import (
	"github.com/harvestchurch/content-platform/internal/core/domain"
	"github.com/harvestchurch/content-platform/internal/core/media"
	"github.com/harvestchurch/content-platform/internal/core/ports"
	"github.com/harvestchurch/content-platform/internal/core/richtext"
)

// --- Request → Service input ---

func toContentInput(req contentRequest) ports.ContentInput {
	format := ports.BodyFormat(req.BodyFormat)
	if format == "" {
		format = ports.FormatHTML
	}
	return ports.ContentInput{
		Title:      req.Title,
		Body:       req.Body,
		BodyFormat: format,
		Category:   req.Category,
		VideoURL:   req.VideoURL,
		Speaker:    req.Speaker,
		ImageURL:   req.ImageURL,
	}
}

// --- Service result → HTTP response ---

// toContentResponse renders an item for display. The body passes through
// the sanitizer again on the way out; stored rows may predate the current
// allowlist.
func toContentResponse(item *domain.ContentItem, previewLimit int) contentResponse {
	body := richtext.Sanitize(item.BodyHTML)
	preview, hasMore := previewOf(body, previewLimit)
	resp := contentResponse{
		ID:        item.ID,
		Kind:      string(item.Kind),
		Title:     item.Title,
		BodyHTML:  body,
		Preview:   preview,
		HasMore:   hasMore,
		Category:  item.Category,
		AuthorID:  item.AuthorID,
		Pinned:    item.Pinned,
		VideoURL:  item.VideoURL,
		Speaker:   item.Speaker,
		ImageURL:  item.ImageURL,
		CreatedAt: item.CreatedAt.UTC(),
		UpdatedAt: item.UpdatedAt.UTC(),
	}
	if item.VideoURL != "" {
		ref := media.Resolve(item.VideoURL)
		resp.EmbedURL = ref.EmbedURL
		resp.Provider = string(ref.Provider)
	}
	return resp
}

func toListResponse(r *ports.ListContentResult, previewLimit int) listContentResponse {
	items := make([]contentResponse, len(r.Items))
	for i, item := range r.Items {
		items[i] = toContentResponse(item, previewLimit)
	}
	return listContentResponse{
		Data: items,
		Pagination: paginationResponse{
			Total:      r.Total,
			Page:       r.Page,
			Limit:      r.Limit,
			TotalPages: r.TotalPages,
		},
	}
}
