package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"

	"github.com/harvestchurch/content-platform/internal/core/authority"
	"github.com/harvestchurch/content-platform/internal/core/domain"
	"github.com/harvestchurch/content-platform/internal/core/media"
	"github.com/harvestchurch/content-platform/internal/core/ports"
	"github.com/harvestchurch/content-platform/internal/core/richtext"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ContentService implements create/read/update/delete for posts and sermons.
// Bodies are sanitized before they reach the repository.
type ContentService struct {
	repo     ports.ContentRepository
	audit    ports.AuditRecorder
	markdown goldmark.Markdown
	now      func() time.Time
	logger   zerolog.Logger
}

func NewContentService(repo ports.ContentRepository, audit ports.AuditRecorder, logger zerolog.Logger) *ContentService {
	return &ContentService{
		repo:     repo,
		audit:    audit,
		markdown: goldmark.New(),
		now:      time.Now,
		logger:   logger,
	}
}

func (s *ContentService) Create(ctx context.Context, actor *domain.Actor, kind domain.ContentKind, in ports.ContentInput) (*domain.ContentItem, error) {
	if err := validateKindCategory(kind, in.Category); err != nil {
		return nil, err
	}
	if err := s.authorizePublish(actor, kind, in.Category); err != nil {
		return nil, err
	}
	if in.ImageURL != "" && !authority.CanPerform(actor, authority.ActionUploadPhoto, "") {
		return nil, fmt.Errorf("attach image: %w", domain.ErrForbidden)
	}

	now := s.now().UTC()
	item := &domain.ContentItem{
		Kind:      kind,
		AuthorID:  actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.apply(item, in); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		s.logger.Error().Err(err).Str("kind", string(kind)).Msg("failed to create content")
		return nil, err
	}

	s.record(created, domain.AuditCreated, actor)
	s.logger.Info().
		Str("content_id", created.ID).
		Str("kind", string(kind)).
		Str("author_id", actor.ID).
		Msg("content created")
	return created, nil
}

func (s *ContentService) Get(ctx context.Context, kind domain.ContentKind, id string) (*domain.ContentItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Kind != kind {
		return nil, domain.ErrContentNotFound
	}
	return item, nil
}

func (s *ContentService) Update(ctx context.Context, actor *domain.Actor, kind domain.ContentKind, id string, in ports.ContentInput) (*domain.ContentItem, error) {
	if err := validateKindCategory(kind, in.Category); err != nil {
		return nil, err
	}
	item, err := s.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeModify(actor, authority.ActionEditContent, item); err != nil {
		return nil, err
	}
	if in.Category != item.Category {
		if err := s.authorizePublish(actor, kind, in.Category); err != nil {
			return nil, err
		}
	}
	if in.ImageURL != "" && in.ImageURL != item.ImageURL && !authority.CanPerform(actor, authority.ActionUploadPhoto, "") {
		return nil, fmt.Errorf("attach image: %w", domain.ErrForbidden)
	}

	if err := s.apply(item, in); err != nil {
		return nil, err
	}
	item.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, err
	}
	s.record(updated, domain.AuditUpdated, actor)
	return updated, nil
}

func (s *ContentService) Delete(ctx context.Context, actor *domain.Actor, kind domain.ContentKind, id string) error {
	item, err := s.Get(ctx, kind, id)
	if err != nil {
		return err
	}
	if err := authorizeModify(actor, authority.ActionDeleteContent, item); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.record(item, domain.AuditDeleted, actor)
	s.logger.Info().Str("content_id", id).Str("deleted_by", actor.ID).Msg("content deleted")
	return nil
}

func (s *ContentService) List(ctx context.Context, in ports.ListContentInput) (*ports.ListContentResult, error) {
	if !in.Kind.Valid() {
		return nil, fmt.Errorf("unknown content kind %q: %w", in.Kind, domain.ErrValidation)
	}
	if in.Category != "" && !in.Kind.AcceptsCategory(in.Category) {
		return nil, fmt.Errorf("unknown %s category %q: %w", in.Kind, in.Category, domain.ErrValidation)
	}

	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	items, total, err := s.repo.List(ctx, ports.ListContentFilter{
		Kind:     in.Kind,
		Category: in.Category,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListContentResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// apply copies author input onto item, rendering and sanitizing the body.
func (s *ContentService) apply(item *domain.ContentItem, in ports.ContentInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return fmt.Errorf("title is required: %w", domain.ErrValidation)
	}

	body, err := s.render(in.Body, in.BodyFormat)
	if err != nil {
		return err
	}

	if in.VideoURL != "" {
		if item.Kind != domain.KindSermon {
			return fmt.Errorf("only sermons carry video: %w", domain.ErrValidation)
		}
		if media.ResolveEmbed(in.VideoURL) == "" {
			return fmt.Errorf("video url is not embeddable: %w", domain.ErrValidation)
		}
	}
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(in.ImageURL)), "data:") {
		return fmt.Errorf("images must reference an external url: %w", domain.ErrValidation)
	}

	item.Title = title
	item.BodyHTML = body
	item.Category = in.Category
	item.VideoURL = strings.TrimSpace(in.VideoURL)
	item.Speaker = strings.TrimSpace(in.Speaker)
	item.ImageURL = strings.TrimSpace(in.ImageURL)
	return nil
}

func (s *ContentService) render(body string, format ports.BodyFormat) (string, error) {
	switch format {
	case "", ports.FormatHTML:
		return richtext.Sanitize(body), nil
	case ports.FormatMarkdown:
		var buf bytes.Buffer
		if err := s.markdown.Convert([]byte(body), &buf); err != nil {
			return "", fmt.Errorf("render markdown: %w", domain.ErrValidation)
		}
		return richtext.Sanitize(buf.String()), nil
	default:
		return "", fmt.Errorf("unknown body format %q: %w", format, domain.ErrValidation)
	}
}

func (s *ContentService) authorizePublish(actor *domain.Actor, kind domain.ContentKind, category string) error {
	if actor == nil || !actor.IsActive {
		return domain.ErrUnauthenticated
	}
	action := authority.ActionPostContent
	if kind == domain.KindSermon {
		action = authority.ActionPostSermon
	}
	if !authority.CanPerform(actor, action, category) {
		return fmt.Errorf("%s in %q: %w", action, category, domain.ErrForbidden)
	}
	return nil
}

func (s *ContentService) record(item *domain.ContentItem, action domain.AuditAction, actor *domain.Actor) {
	s.audit.Record(domain.AuditEvent{
		ContentID: item.ID,
		Kind:      item.Kind,
		Action:    action,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Timestamp: s.now().UTC(),
	})
}

func authorizeModify(actor *domain.Actor, action authority.Action, item *domain.ContentItem) error {
	if actor == nil || !actor.IsActive {
		return domain.ErrUnauthenticated
	}
	if !authority.CanModify(actor, action, item) {
		return domain.ErrForbidden
	}
	return nil
}

func validateKindCategory(kind domain.ContentKind, category string) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown content kind %q: %w", kind, domain.ErrValidation)
	}
	if !kind.AcceptsCategory(category) {
		return fmt.Errorf("unknown %s category %q: %w", kind, category, domain.ErrValidation)
	}
	return nil
}
