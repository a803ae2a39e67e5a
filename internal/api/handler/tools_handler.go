package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/harvestchurch/content-platform/internal/core/media"
	"github.com/harvestchurch/content-platform/internal/core/richtext"
)

// ToolsHandler exposes the pure media and rich-text helpers so editors can
// preview what a draft will look like before publishing.
type ToolsHandler struct {
	previewLimit int
}

func NewToolsHandler(previewLimit int) *ToolsHandler {
	if previewLimit <= 0 {
		previewLimit = defaultPreviewLimit
	}
	return &ToolsHandler{previewLimit: previewLimit}
}

// Embed handles POST /v1/tools/embed.
//
// @Summary      Resolve a video URL to its player URL
// @Tags         tools
// @Accept       json
// @Produce      json
// @Param        body  body      embedRequest  true  "Video URL"
// @Success      200   {object}  embedResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/tools/embed [post]
func (h *ToolsHandler) Embed(c echo.Context) error {
	var req embedRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ref := media.Resolve(req.URL)
	return c.JSON(http.StatusOK, embedResponse{
		EmbedURL:   ref.EmbedURL,
		Provider:   string(ref.Provider),
		Embeddable: ref.EmbedURL != "",
	})
}

// Preview handles POST /v1/tools/preview.
//
// @Summary      Sanitize HTML and extract its preview
// @Tags         tools
// @Accept       json
// @Produce      json
// @Param        body  body      previewRequest  true  "Draft body"
// @Success      200   {object}  previewResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/tools/preview [post]
func (h *ToolsHandler) Preview(c echo.Context) error {
	var req previewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	limit := req.Limit
	if limit == 0 {
		limit = h.previewLimit
	}

	safe := richtext.Sanitize(req.HTML)
	preview, hasMore := previewOf(safe, limit)
	return c.JSON(http.StatusOK, previewResponse{
		Sanitized: safe,
		Preview:   preview,
		HasMore:   hasMore,
	})
}
