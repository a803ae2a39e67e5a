package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/harvestchurch/content-platform/internal/core/domain"
	"github.com/harvestchurch/content-platform/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory user repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users map[string]*domain.User // keyed by id
	seq   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	c := cloneUser(user)
	c.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) UpdateRole(_ context.Context, id string, role domain.Role) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Role = role
	return cloneUser(u), nil
}

func (r *stubUserRepo) SetActive(_ context.Context, id string, active bool) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.IsActive = active
	return cloneUser(u), nil
}

// ---------------------------------------------------------------------------
// Revocation list
// ---------------------------------------------------------------------------

type stubRevoker struct {
	revoked map[string]time.Time
}

func newStubRevoker() *stubRevoker {
	return &stubRevoker{revoked: make(map[string]time.Time)}
}

func (r *stubRevoker) Revoke(_ context.Context, tokenID string, until time.Time) error {
	r.revoked[tokenID] = until
	return nil
}

func (r *stubRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, ok := r.revoked[tokenID]
	return ok, nil
}

// ---------------------------------------------------------------------------
// In-memory content repository
// ---------------------------------------------------------------------------

type stubContentRepo struct {
	mu        sync.Mutex
	items     map[string]*domain.ContentItem
	seq       int
	countHook func() // runs inside CountPinned, used to inject races
	writes    int
}

func newStubContentRepo() *stubContentRepo {
	return &stubContentRepo{items: make(map[string]*domain.ContentItem)}
}

func cloneItem(i *domain.ContentItem) *domain.ContentItem {
	clone := *i
	return &clone
}

func (r *stubContentRepo) seed(kind domain.ContentKind, author string, pinned bool) *domain.ContentItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	item := &domain.ContentItem{
		ID:       fmt.Sprintf("%s-%d", kind, r.seq),
		Kind:     kind,
		Title:    "seeded",
		Category: kind.Categories()[0],
		AuthorID: author,
		Pinned:   pinned,
	}
	r.items[item.ID] = item
	return cloneItem(item)
}

func (r *stubContentRepo) Create(_ context.Context, item *domain.ContentItem) (*domain.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	c := cloneItem(item)
	c.ID = fmt.Sprintf("%s-%d", item.Kind, r.seq)
	r.items[c.ID] = c
	return cloneItem(c), nil
}

func (r *stubContentRepo) FindByID(_ context.Context, id string) (*domain.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.items[id]
	if !ok {
		return nil, domain.ErrContentNotFound
	}
	return cloneItem(i), nil
}

func (r *stubContentRepo) Update(_ context.Context, item *domain.ContentItem) (*domain.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return nil, domain.ErrContentNotFound
	}
	r.items[item.ID] = cloneItem(item)
	return cloneItem(item), nil
}

func (r *stubContentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.ErrContentNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *stubContentRepo) List(_ context.Context, f ports.ListContentFilter) ([]*domain.ContentItem, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.ContentItem
	for _, i := range r.items {
		if i.Kind != f.Kind {
			continue
		}
		if f.Category != "" && i.Category != f.Category {
			continue
		}
		matched = append(matched, cloneItem(i))
	}
	sort.Slice(matched, func(a, b int) bool { return matched[a].ID < matched[b].ID })

	total := int64(len(matched))
	skip := (f.Page - 1) * f.Limit
	if skip > len(matched) {
		return []*domain.ContentItem{}, total, nil
	}
	end := skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (r *stubContentRepo) CountPinned(_ context.Context, kind domain.ContentKind) (int64, error) {
	if r.countHook != nil {
		r.countHook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, i := range r.items {
		if i.Kind == kind && i.Pinned {
			n++
		}
	}
	return n, nil
}

func (r *stubContentRepo) SetPinned(_ context.Context, id string, pinned bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.items[id]
	if !ok {
		return false, domain.ErrContentNotFound
	}
	r.writes++
	if i.Pinned == pinned {
		return false, nil
	}
	i.Pinned = pinned
	return true, nil
}

func (r *stubContentRepo) pinnedCount(kind domain.ContentKind) int {
	n, _ := r.CountPinned(context.Background(), kind)
	return int(n)
}

// ---------------------------------------------------------------------------
// Locker and audit recorder
// ---------------------------------------------------------------------------

type stubLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	attempts int
	busyFor  int // number of TryLock calls that report contention
}

func newStubLocker() *stubLocker {
	return &stubLocker{held: make(map[string]bool)}
}

func (l *stubLocker) TryLock(_ context.Context, key string, _ time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts++
	if l.busyFor > 0 {
		l.busyFor--
		return nil, false, nil
	}
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}, true, nil
}

type stubAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *stubAudit) Record(e domain.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *stubAudit) actions() []domain.AuditAction {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuditAction, len(a.events))
	for i, e := range a.events {
		out[i] = e.Action
	}
	return out
}

func activeActor(id string, role domain.Role) *domain.Actor {
	return &domain.Actor{ID: id, DisplayName: id, Role: role, IsActive: true}
}
