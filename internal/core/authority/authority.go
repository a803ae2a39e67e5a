// Package authority answers whether an actor may perform an action. Every
// screen and endpoint consults the single grants table below.
package authority

import "github.com/harvestchurch/content-platform/internal/core/domain"

// Action is something an actor may attempt.
type Action string

const (
	ActionPostContent   Action = "post_content"
	ActionPostSermon    Action = "post_sermon"
	ActionUploadPhoto   Action = "upload_photo"
	ActionEditContent   Action = "edit_content"
	ActionDeleteContent Action = "delete_content"
	ActionPinContent    Action = "pin_content"
	ActionManageUsers   Action = "manage_users"
)

type scope int

const (
	scopeAny scope = iota
	scopeOwn
)

// capability grants one action, optionally limited to a category or to
// items the actor authored.
type capability struct {
	action   Action
	category string
	scope    scope
}

func post(category string) capability {
	return capability{action: ActionPostContent, category: category}
}

var (
	memberGrants = []capability{
		post(domain.CategoryTestimonies),
		{action: ActionEditContent, scope: scopeOwn},
		{action: ActionDeleteContent, scope: scopeOwn},
	}

	ministryGrants = append(clone(memberGrants),
		post(domain.CategoryEvents),
	)

	clergyGrants = append(clone(ministryGrants),
		post(domain.CategoryTeaching),
		post(domain.CategoryNews),
		capability{action: ActionPostSermon},
		capability{action: ActionUploadPhoto},
	)

	adminGrants = []capability{
		post(domain.CategoryTestimonies),
		post(domain.CategoryEvents),
		post(domain.CategoryTeaching),
		post(domain.CategoryNews),
		{action: ActionPostSermon},
		{action: ActionUploadPhoto},
		{action: ActionEditContent},
		{action: ActionDeleteContent},
		{action: ActionPinContent},
		{action: ActionManageUsers},
	}
)

var grants = map[domain.Role][]capability{
	domain.RoleMember:      memberGrants,
	domain.RoleVolunteer:   ministryGrants,
	domain.RoleUsher:       ministryGrants,
	domain.RoleWorshipTeam: ministryGrants,
	domain.RolePastor:      clergyGrants,
	domain.RoleBishop:      clergyGrants,
	domain.RoleAdmin:       adminGrants,
}

func clone(c []capability) []capability {
	return append([]capability(nil), c...)
}

// CanPerform reports whether actor may perform action in category without
// regard to ownership. Use CanModify for edit and delete on a given item.
func CanPerform(actor *domain.Actor, action Action, category string) bool {
	return lookup(actor, action, category, scopeAny)
}

// CanModify reports whether actor may edit or delete item: authors may touch
// their own items, admins any item.
func CanModify(actor *domain.Actor, action Action, item *domain.ContentItem) bool {
	if item == nil {
		return false
	}
	if lookup(actor, action, "", scopeAny) {
		return true
	}
	return actor != nil && actor.ID != "" && actor.ID == item.AuthorID &&
		lookup(actor, action, "", scopeOwn)
}

// AllowedCategories returns, in selector order, the post categories actor
// may publish to.
func AllowedCategories(actor *domain.Actor) []string {
	out := make([]string, 0, len(domain.PostCategories))
	for _, c := range domain.PostCategories {
		if CanPerform(actor, ActionPostContent, c) {
			out = append(out, c)
		}
	}
	return out
}

// Capabilities lists the distinct actions actor holds in any scope, in
// grant order.
func Capabilities(actor *domain.Actor) []Action {
	if !authenticated(actor) {
		return nil
	}
	seen := make(map[Action]bool)
	var out []Action
	for _, c := range grants[actor.Role] {
		if !seen[c.action] {
			seen[c.action] = true
			out = append(out, c.action)
		}
	}
	return out
}

// IsAdmin reports whether actor is an active admin.
func IsAdmin(actor *domain.Actor) bool {
	return authenticated(actor) && actor.Role == domain.RoleAdmin
}

func authenticated(actor *domain.Actor) bool {
	return actor != nil && actor.IsActive
}

func lookup(actor *domain.Actor, action Action, category string, want scope) bool {
	if !authenticated(actor) {
		return false
	}
	for _, c := range grants[actor.Role] {
		if c.action != action || c.scope != want {
			continue
		}
		if c.category == "" || c.category == category {
			return true
		}
	}
	return false
}
