package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/harvestchurch/content-platform/internal/api/metrics"
	"github.com/harvestchurch/content-platform/internal/core/domain"
	"github.com/harvestchurch/content-platform/internal/core/ports"
	"github.com/harvestchurch/content-platform/internal/core/richtext"
)

const defaultPreviewLimit = 180

// ContentHandler serves the posts and sermons collections.
type ContentHandler struct {
	service      ports.ContentService
	pins         ports.PinService
	previewLimit int
}

func NewContentHandler(service ports.ContentService, pins ports.PinService, previewLimit int) *ContentHandler {
	if previewLimit <= 0 {
		previewLimit = defaultPreviewLimit
	}
	return &ContentHandler{service: service, pins: pins, previewLimit: previewLimit}
}

// List handles GET /v1/:kind.
//
// @Summary      List posts or sermons
// @Description  Pinned items first, then newest first.
// @Tags         content
// @Produce      json
// @Param        kind      path      string  true   "Collection"  Enums(posts, sermons)
// @Param        category  query     string  false  "Filter by category"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Items per page (default 20, max 100)"
// @Success      200       {object}  listContentResponse
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /v1/{kind} [get]
func (h *ContentHandler) List(c echo.Context) error {
	kind, err := pathKind(c)
	if err != nil {
		return err
	}

	page, err := queryInt(c, "page")
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}

	result, err := h.service.List(c.Request().Context(), ports.ListContentInput{
		Kind:     kind,
		Category: c.QueryParam("category"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toListResponse(result, h.previewLimit))
}

// Get handles GET /v1/:kind/:id.
//
// @Summary      Get a post or sermon
// @Tags         content
// @Produce      json
// @Param        kind  path      string  true  "Collection"  Enums(posts, sermons)
// @Param        id    path      string  true  "Item id"
// @Success      200   {object}  contentResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/{kind}/{id} [get]
func (h *ContentHandler) Get(c echo.Context) error {
	kind, err := pathKind(c)
	if err != nil {
		return err
	}

	item, err := h.service.Get(c.Request().Context(), kind, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toContentResponse(item, h.previewLimit))
}

// Create handles POST /v1/:kind.
//
// @Summary      Publish a post or sermon
// @Description  The body is sanitized before it is stored. body_format=markdown is rendered first.
// @Tags         content
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string          true  "Collection"  Enums(posts, sermons)
// @Param        body  body      contentRequest  true  "Content"
// @Success      201   {object}  contentResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/{kind} [post]
func (h *ContentHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	kind, err := pathKind(c)
	if err != nil {
		return err
	}

	var req contentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.service.Create(c.Request().Context(), actor, kind, toContentInput(req))
	if err != nil {
		return err
	}

	metrics.ContentMutationsTotal.WithLabelValues(string(kind), string(domain.AuditCreated)).Inc()
	c.Response().Header().Set(echo.HeaderLocation, "/v1/"+c.Param("kind")+"/"+item.ID)
	return c.JSON(http.StatusCreated, toContentResponse(item, h.previewLimit))
}

// Update handles PUT /v1/:kind/:id.
//
// @Summary      Edit a post or sermon
// @Description  Authors may edit their own items, admins any item.
// @Tags         content
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string          true  "Collection"  Enums(posts, sermons)
// @Param        id    path      string          true  "Item id"
// @Param        body  body      contentRequest  true  "Content"
// @Success      200   {object}  contentResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/{kind}/{id} [put]
func (h *ContentHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	kind, err := pathKind(c)
	if err != nil {
		return err
	}

	var req contentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.service.Update(c.Request().Context(), actor, kind, c.Param("id"), toContentInput(req))
	if err != nil {
		return err
	}

	metrics.ContentMutationsTotal.WithLabelValues(string(kind), string(domain.AuditUpdated)).Inc()
	return c.JSON(http.StatusOK, toContentResponse(item, h.previewLimit))
}

// Delete handles DELETE /v1/:kind/:id.
//
// @Summary      Delete a post or sermon
// @Tags         content
// @Security     BearerAuth
// @Param        kind  path  string  true  "Collection"  Enums(posts, sermons)
// @Param        id    path  string  true  "Item id"
// @Success      204
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/{kind}/{id} [delete]
func (h *ContentHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	kind, err := pathKind(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), actor, kind, c.Param("id")); err != nil {
		return err
	}

	metrics.ContentMutationsTotal.WithLabelValues(string(kind), string(domain.AuditDeleted)).Inc()
	return c.NoContent(http.StatusNoContent)
}

// SetPinned handles PUT /v1/:kind/:id/pin.
//
// @Summary      Pin or unpin an item
// @Description  At most three items per collection may be pinned. current_pinned_count is the caller's view and is re-checked on the server.
// @Tags         content
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string      true  "Collection"  Enums(posts, sermons)
// @Param        id    path      string      true  "Item id"
// @Param        body  body      pinRequest  true  "Desired state"
// @Success      200   {object}  pinResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/{kind}/{id}/pin [put]
func (h *ContentHandler) SetPinned(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	kind, err := pathKind(c)
	if err != nil {
		return err
	}

	var req pinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	id := c.Param("id")

	// Reject ids from the other collection before touching the pin set.
	if _, err := h.service.Get(ctx, kind, id); err != nil {
		return err
	}

	changed, err := h.pins.SetPinned(ctx, actor, id, *req.Pinned, req.CurrentPinnedCount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPinLimitExceeded):
			metrics.PinRejectionsTotal.WithLabelValues("limit").Inc()
		case errors.Is(err, domain.ErrPinConflict):
			metrics.PinRejectionsTotal.WithLabelValues("conflict").Inc()
		}
		return err
	}

	if changed {
		action := domain.AuditUnpinned
		if *req.Pinned {
			action = domain.AuditPinned
		}
		metrics.ContentMutationsTotal.WithLabelValues(string(kind), string(action)).Inc()
	}
	return c.JSON(http.StatusOK, pinResponse{ID: id, Pinned: *req.Pinned})
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a non-negative integer")
	}
	return n, nil
}

// previewOf is shared by the preview tool so both endpoints cut text the
// same way.
func previewOf(sanitized string, limit int) (string, bool) {
	return richtext.ExtractPreview(sanitized, limit), richtext.HasMoreContent(sanitized, limit)
}
