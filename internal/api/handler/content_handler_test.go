package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/harvestchurch/content-platform/internal/api/metrics"
	"github.com/harvestchurch/content-platform/internal/core/domain"
	"github.com/harvestchurch/content-platform/internal/core/ports"
)

type stubContentService struct {
	items    map[string]*domain.ContentItem
	created  ports.ContentInput
	listIn   ports.ListContentInput
	createFn func(actor *domain.Actor, kind domain.ContentKind, in ports.ContentInput) (*domain.ContentItem, error)
}

func (s *stubContentService) Create(_ context.Context, actor *domain.Actor, kind domain.ContentKind, in ports.ContentInput) (*domain.ContentItem, error) {
	s.created = in
	if s.createFn != nil {
		return s.createFn(actor, kind, in)
	}
	return &domain.ContentItem{ID: "new", Kind: kind, Title: in.Title, BodyHTML: in.Body, Category: in.Category, AuthorID: actor.ID}, nil
}

func (s *stubContentService) Get(_ context.Context, kind domain.ContentKind, id string) (*domain.ContentItem, error) {
	item, ok := s.items[id]
	if !ok || item.Kind != kind {
		return nil, domain.ErrContentNotFound
	}
	return item, nil
}

func (s *stubContentService) Update(_ context.Context, _ *domain.Actor, kind domain.ContentKind, id string, in ports.ContentInput) (*domain.ContentItem, error) {
	return &domain.ContentItem{ID: id, Kind: kind, Title: in.Title}, nil
}

func (s *stubContentService) Delete(context.Context, *domain.Actor, domain.ContentKind, string) error {
	return domain.ErrForbidden
}

func (s *stubContentService) List(_ context.Context, in ports.ListContentInput) (*ports.ListContentResult, error) {
	s.listIn = in
	var out []*domain.ContentItem
	for _, item := range s.items {
		if item.Kind == in.Kind {
			out = append(out, item)
		}
	}
	return &ports.ListContentResult{Items: out, Total: int64(len(out)), Page: 1, Limit: 20, TotalPages: 1}, nil
}

type stubPinService struct {
	calls     int
	err       error
	unchanged bool
	got       struct {
		id      string
		desired bool
		count   int
	}
}

func (s *stubPinService) SetPinned(_ context.Context, _ *domain.Actor, id string, desired bool, count int) (bool, error) {
	s.calls++
	s.got.id, s.got.desired, s.got.count = id, desired, count
	if s.err != nil {
		return false, s.err
	}
	return !s.unchanged, nil
}

var (
	adminActor  = &domain.Actor{ID: "admin-1", Role: domain.RoleAdmin, IsActive: true}
	memberActor = &domain.Actor{ID: "member-1", Role: domain.RoleMember, IsActive: true}
)

func seededContent() *stubContentService {
	now := time.Now()
	return &stubContentService{items: map[string]*domain.ContentItem{
		"p1": {
			ID: "p1", Kind: domain.KindPost, Title: "Harvest", Category: domain.CategoryNews,
			BodyHTML:  "<p>" + strings.Repeat("word ", 60) + "</p><script>alert(1)</script>",
			CreatedAt: now, UpdatedAt: now,
		},
		"s1": {
			ID: "s1", Kind: domain.KindSermon, Title: "Grace", Category: "Sunday Service",
			BodyHTML: "<p>Short</p>", VideoURL: "https://youtu.be/abc123", Pinned: true,
			CreatedAt: now, UpdatedAt: now,
		},
	}}
}

func withPath(c echo.Context, kind, id string) {
	if id == "" {
		c.SetParamNames("kind")
		c.SetParamValues(kind)
		return
	}
	c.SetParamNames("kind", "id")
	c.SetParamValues(kind, id)
}

func TestContentHandler_ListRendersPreview(t *testing.T) {
	e := newEcho()
	svc := seededContent()
	h := NewContentHandler(svc, &stubPinService{}, 50)

	c, rec := newContext(e, http.MethodGet, "/v1/posts?category=news&page=2&limit=5", nil)
	withPath(c, "posts", "")

	if err := run(e, c, h.List); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.listIn.Kind != domain.KindPost || svc.listIn.Category != "news" || svc.listIn.Page != 2 || svc.listIn.Limit != 5 {
		t.Fatalf("unexpected list input: %+v", svc.listIn)
	}

	resp := decode(t, rec)
	data := resp["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("expected 1 post, got %d", len(data))
	}
	item := data[0].(map[string]any)
	if strings.Contains(item["body_html"].(string), "script") {
		t.Fatalf("body was not sanitized: %s", item["body_html"])
	}
	if item["has_more"] != true || !strings.HasSuffix(item["preview"].(string), "…") {
		t.Fatalf("expected truncated preview, got %+v", item)
	}
	if _, ok := resp["pagination"].(map[string]any); !ok {
		t.Fatalf("expected pagination")
	}
}

func TestContentHandler_GetSermonResolvesEmbed(t *testing.T) {
	e := newEcho()
	h := NewContentHandler(seededContent(), &stubPinService{}, 0)

	c, rec := newContext(e, http.MethodGet, "/v1/sermons/s1", nil)
	withPath(c, "sermons", "s1")

	if err := run(e, c, h.Get); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decode(t, rec)
	if resp["embed_url"] != "https://www.youtube.com/embed/abc123?autoplay=1" || resp["provider"] != "youtube" {
		t.Fatalf("unexpected embed fields: %+v", resp)
	}
	if resp["has_more"] != false || resp["preview"] != "Short" {
		t.Fatalf("unexpected preview: %+v", resp)
	}
}

func TestContentHandler_UnknownCollection(t *testing.T) {
	e := newEcho()
	h := NewContentHandler(seededContent(), &stubPinService{}, 0)

	c, rec := newContext(e, http.MethodGet, "/v1/podcasts", nil)
	withPath(c, "podcasts", "")

	_ = run(e, c, h.List)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestContentHandler_BadPage(t *testing.T) {
	e := newEcho()
	h := NewContentHandler(seededContent(), &stubPinService{}, 0)

	c, rec := newContext(e, http.MethodGet, "/v1/posts?page=two", nil)
	withPath(c, "posts", "")

	_ = run(e, c, h.List)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestContentHandler_Create(t *testing.T) {
	e := newEcho()
	svc := seededContent()
	h := NewContentHandler(svc, &stubPinService{}, 0)

	c, rec := newContext(e, http.MethodPost, "/v1/posts",
		strings.NewReader(`{"title":"Hello","body":"**hi**","body_format":"markdown","category":"testimonies"}`))
	withPath(c, "posts", "")
	withActor(c, memberActor, "tok")

	if err := run(e, c, h.Create); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if svc.created.BodyFormat != ports.FormatMarkdown || svc.created.Category != domain.CategoryTestimonies {
		t.Fatalf("unexpected input: %+v", svc.created)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/v1/posts/new" {
		t.Fatalf("location = %q", loc)
	}
}

func TestContentHandler_CreateDefaultsToHTML(t *testing.T) {
	e := newEcho()
	svc := seededContent()
	h := NewContentHandler(svc, &stubPinService{}, 0)

	c, _ := newContext(e, http.MethodPost, "/v1/posts",
		strings.NewReader(`{"title":"Hello","body":"<p>hi</p>","category":"testimonies"}`))
	withPath(c, "posts", "")
	withActor(c, memberActor, "tok")

	if err := run(e, c, h.Create); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.created.BodyFormat != ports.FormatHTML {
		t.Fatalf("format = %q", svc.created.BodyFormat)
	}
}

func TestContentHandler_CreateValidation(t *testing.T) {
	e := newEcho()
	svc := seededContent()
	svc.createFn = func(*domain.Actor, domain.ContentKind, ports.ContentInput) (*domain.ContentItem, error) {
		t.Fatalf("should not be called")
		return nil, nil
	}
	h := NewContentHandler(svc, &stubPinService{}, 0)

	for _, body := range []string{
		`{"body":"x","category":"testimonies"}`,
		`{"title":"x","category":"testimonies","body_format":"rtf"}`,
		`{"title":"x"}`,
	} {
		c, rec := newContext(e, http.MethodPost, "/v1/posts", strings.NewReader(body))
		withPath(c, "posts", "")
		withActor(c, memberActor, "tok")

		_ = run(e, c, h.Create)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestContentHandler_CreateRequiresActor(t *testing.T) {
	e := newEcho()
	h := NewContentHandler(seededContent(), &stubPinService{}, 0)

	c, rec := newContext(e, http.MethodPost, "/v1/posts", strings.NewReader(`{"title":"x","category":"testimonies"}`))
	withPath(c, "posts", "")

	_ = run(e, c, h.Create)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestContentHandler_DeletePropagatesForbidden(t *testing.T) {
	e := newEcho()
	h := NewContentHandler(seededContent(), &stubPinService{}, 0)

	c, _ := newContext(e, http.MethodDelete, "/v1/posts/p1", nil)
	withPath(c, "posts", "p1")
	withActor(c, memberActor, "tok")

	if err := h.Delete(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestContentHandler_SetPinned(t *testing.T) {
	e := newEcho()
	pins := &stubPinService{}
	h := NewContentHandler(seededContent(), pins, 0)

	c, rec := newContext(e, http.MethodPut, "/v1/posts/p1/pin",
		strings.NewReader(`{"pinned":true,"current_pinned_count":2}`))
	withPath(c, "posts", "p1")
	withActor(c, adminActor, "tok")

	if err := run(e, c, h.SetPinned); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if pins.got.id != "p1" || !pins.got.desired || pins.got.count != 2 {
		t.Fatalf("unexpected pin call: %+v", pins.got)
	}
	if resp := decode(t, rec); resp["pinned"] != true {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestContentHandler_SetPinnedCountsOnlyChanges(t *testing.T) {
	e := newEcho()
	h := NewContentHandler(seededContent(), &stubPinService{unchanged: true}, 0)
	pinned := metrics.ContentMutationsTotal.WithLabelValues(string(domain.KindPost), string(domain.AuditPinned))

	c, rec := newContext(e, http.MethodPut, "/v1/posts/p1/pin",
		strings.NewReader(`{"pinned":true,"current_pinned_count":1}`))
	withPath(c, "posts", "p1")
	withActor(c, adminActor, "tok")

	before := testutil.ToFloat64(pinned)
	if err := run(e, c, h.SetPinned); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := testutil.ToFloat64(pinned); got != before {
		t.Fatalf("no-op re-pin counted as a mutation: %v -> %v", before, got)
	}

	h = NewContentHandler(seededContent(), &stubPinService{}, 0)
	c, _ = newContext(e, http.MethodPut, "/v1/posts/p1/pin",
		strings.NewReader(`{"pinned":true,"current_pinned_count":1}`))
	withPath(c, "posts", "p1")
	withActor(c, adminActor, "tok")
	if err := run(e, c, h.SetPinned); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := testutil.ToFloat64(pinned); got != before+1 {
		t.Fatalf("pin not counted: %v -> %v", before, got)
	}
}

func TestContentHandler_SetPinnedLimit(t *testing.T) {
	e := newEcho()
	pins := &stubPinService{err: domain.ErrPinLimitExceeded}
	h := NewContentHandler(seededContent(), pins, 0)

	c, _ := newContext(e, http.MethodPut, "/v1/posts/p1/pin",
		strings.NewReader(`{"pinned":true,"current_pinned_count":3}`))
	withPath(c, "posts", "p1")
	withActor(c, adminActor, "tok")

	before := testutil.ToFloat64(metrics.PinRejectionsTotal.WithLabelValues("limit"))
	if err := h.SetPinned(c); !errors.Is(err, domain.ErrPinLimitExceeded) {
		t.Fatalf("expected ErrPinLimitExceeded, got %v", err)
	}
	if got := testutil.ToFloat64(metrics.PinRejectionsTotal.WithLabelValues("limit")); got != before+1 {
		t.Fatalf("pin rejections = %v, want %v", got, before+1)
	}
}

func TestContentHandler_SetPinnedWrongCollection(t *testing.T) {
	e := newEcho()
	pins := &stubPinService{}
	h := NewContentHandler(seededContent(), pins, 0)

	c, _ := newContext(e, http.MethodPut, "/v1/posts/s1/pin", strings.NewReader(`{"pinned":true}`))
	withPath(c, "posts", "s1")
	withActor(c, adminActor, "tok")

	if err := h.SetPinned(c); !errors.Is(err, domain.ErrContentNotFound) {
		t.Fatalf("expected ErrContentNotFound, got %v", err)
	}
	if pins.calls != 0 {
		t.Fatalf("pin service should not be called")
	}
}

func TestContentHandler_SetPinnedRequiresState(t *testing.T) {
	e := newEcho()
	pins := &stubPinService{}
	h := NewContentHandler(seededContent(), pins, 0)

	c, rec := newContext(e, http.MethodPut, "/v1/posts/p1/pin", strings.NewReader(`{"current_pinned_count":1}`))
	withPath(c, "posts", "p1")
	withActor(c, adminActor, "tok")

	_ = run(e, c, h.SetPinned)
	if rec.Code != http.StatusBadRequest || pins.calls != 0 {
		t.Fatalf("expected 400 without a pin call, got %d (%d calls)", rec.Code, pins.calls)
	}
}
