package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/harvestchurch/content-platform/internal/core/authority"
	"github.com/harvestchurch/content-platform/internal/core/domain"
)

// Context is the client-side composition root: it holds the current actor
// resolved by a Manager and answers capability questions about it through
// the role authority. Subscribers registered with OnChange are told about
// every change of actor, including the clear that follows a rejected call.
type Context struct {
	manager *Manager
	log     zerolog.Logger

	mu     sync.RWMutex
	actor  *domain.Actor
	nextID int
	subs   map[int]func(*domain.Actor)
}

func NewContext(manager *Manager, log zerolog.Logger) *Context {
	c := &Context{
		manager: manager,
		log:     log,
		subs:    make(map[int]func(*domain.Actor)),
	}
	manager.OnClear(func() { c.set(nil) })
	return c
}

// Start resolves the stored credential. An absent or rejected credential
// leaves the context anonymous and is not an error; network failures are
// returned so the caller can retry.
func (c *Context) Start(ctx context.Context) error {
	actor, err := c.manager.VerifyCurrent(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			c.set(nil)
			return nil
		}
		return err
	}
	c.set(actor)
	return nil
}

func (c *Context) Login(ctx context.Context, identifier, secret string) (*domain.Actor, error) {
	actor, err := c.manager.Login(ctx, identifier, secret)
	if err != nil {
		return nil, err
	}
	c.set(actor)
	return actor, nil
}

func (c *Context) Signup(ctx context.Context, reg Registration) (*domain.Actor, error) {
	actor, err := c.manager.Signup(ctx, reg)
	if err != nil {
		return nil, err
	}
	c.set(actor)
	return actor, nil
}

// Logout revokes and clears the credential and notifies subscribers.
func (c *Context) Logout(ctx context.Context) {
	c.manager.Logout(ctx)
	c.set(nil)
}

// CurrentActor returns a copy of the current actor, or nil when anonymous.
func (c *Context) CurrentActor() *domain.Actor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.actor == nil {
		return nil
	}
	a := *c.actor
	return &a
}

func (c *Context) Can(action authority.Action, category string) bool {
	return authority.CanPerform(c.CurrentActor(), action, category)
}

func (c *Context) CanModify(action authority.Action, item *domain.ContentItem) bool {
	return authority.CanModify(c.CurrentActor(), action, item)
}

func (c *Context) AllowedCategories() []string {
	return authority.AllowedCategories(c.CurrentActor())
}

func (c *Context) IsAdmin() bool {
	return authority.IsAdmin(c.CurrentActor())
}

// OnChange subscribes fn to actor changes and returns a function that
// removes the subscription.
func (c *Context) OnChange(fn func(*domain.Actor)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Context) set(actor *domain.Actor) {
	c.mu.Lock()
	unchanged := c.actor == nil && actor == nil
	c.actor = actor
	subs := make([]func(*domain.Actor), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	if unchanged {
		return
	}
	c.log.Debug().Bool("authenticated", actor != nil).Msg("session actor changed")
	for _, fn := range subs {
		fn(c.CurrentActor())
	}
}
