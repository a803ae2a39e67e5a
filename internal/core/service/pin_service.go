package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/harvestchurch/content-platform/internal/core/authority"
	"github.com/harvestchurch/content-platform/internal/core/domain"
	"github.com/harvestchurch/content-platform/internal/core/ports"
)

const (
	pinLockTTL    = 5 * time.Second
	pinRetryDelay = 150 * time.Millisecond
)

// PinService enforces that at most limit items of one kind are pinned.
// The count check and the write run under a per-kind lock, and the count is
// re-read from the repository inside the lock rather than trusted from the
// caller.
type PinService struct {
	repo       ports.ContentRepository
	locker     ports.Locker
	audit      ports.AuditRecorder
	limit      int
	retryDelay time.Duration
	log        zerolog.Logger
}

func NewPinService(repo ports.ContentRepository, locker ports.Locker, audit ports.AuditRecorder, limit int, log zerolog.Logger) *PinService {
	if limit <= 0 {
		limit = domain.MaxPinned
	}
	return &PinService{
		repo:       repo,
		locker:     locker,
		audit:      audit,
		limit:      limit,
		retryDelay: pinRetryDelay,
		log:        log,
	}
}

// SetPinned sets the pinned flag of itemID and reports whether it changed.
// currentPinnedCount is the caller's view of the collection and is used only
// to fail fast. Every pin is decided on a fresh read of the item and of the
// pinned count taken under the lock.
func (s *PinService) SetPinned(ctx context.Context, actor *domain.Actor, itemID string, desired bool, currentPinnedCount int) (bool, error) {
	if actor == nil || !actor.IsActive {
		return false, domain.ErrUnauthenticated
	}
	if !authority.CanPerform(actor, authority.ActionPinContent, "") {
		return false, domain.ErrForbidden
	}

	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		return false, err
	}

	// Unpinning never grows the pinned set.
	if !desired {
		return s.write(ctx, actor, item, false)
	}

	if !item.Pinned && currentPinnedCount >= s.limit {
		return false, fmt.Errorf("%d %s items already pinned: %w", currentPinnedCount, item.Kind, domain.ErrPinLimitExceeded)
	}

	kind := item.Kind
	unlock, err := s.acquire(ctx, "pin:"+string(kind))
	if err != nil {
		return false, err
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn().Err(err).Str("kind", string(kind)).Msg("failed to release pin lock")
		}
	}()

	// The first read may be stale by now.
	item, err = s.repo.FindByID(ctx, itemID)
	if err != nil {
		return false, err
	}
	if item.Pinned {
		return false, nil
	}

	pinned, err := s.repo.CountPinned(ctx, item.Kind)
	if err != nil {
		return false, fmt.Errorf("count pinned: %w", err)
	}
	if pinned >= int64(s.limit) {
		return false, fmt.Errorf("%d %s items already pinned: %w", pinned, item.Kind, domain.ErrPinLimitExceeded)
	}

	return s.write(ctx, actor, item, true)
}

// acquire takes the lock, retrying once after a short pause.
func (s *PinService) acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.retryDelay):
			}
		}
		unlock, ok, err := s.locker.TryLock(ctx, key, pinLockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			return unlock, nil
		}
	}
	return nil, domain.ErrPinConflict
}

func (s *PinService) write(ctx context.Context, actor *domain.Actor, item *domain.ContentItem, pinned bool) (bool, error) {
	changed, err := s.repo.SetPinned(ctx, item.ID, pinned)
	if err != nil {
		return false, fmt.Errorf("set pinned: %w", err)
	}
	if !changed {
		return false, nil
	}

	action := domain.AuditUnpinned
	if pinned {
		action = domain.AuditPinned
	}
	s.audit.Record(domain.AuditEvent{
		ContentID: item.ID,
		Kind:      item.Kind,
		Action:    action,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Timestamp: time.Now().UTC(),
	})
	s.log.Info().Str("content_id", item.ID).Bool("pinned", pinned).Msg("pin state changed")
	return true, nil
}
