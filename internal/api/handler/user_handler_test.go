package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/harvestchurch/content-platform/internal/core/domain"
)

type stubUserAdmin struct {
	role   domain.Role
	active *bool
}

func (s *stubUserAdmin) ChangeRole(_ context.Context, _ *domain.Actor, id string, role domain.Role) (*domain.Actor, error) {
	s.role = role
	return &domain.Actor{ID: id, Role: role, IsActive: true}, nil
}

func (s *stubUserAdmin) SetActive(_ context.Context, caller *domain.Actor, id string, active bool) (*domain.Actor, error) {
	if caller.ID == id {
		return nil, domain.ErrValidation
	}
	s.active = &active
	return &domain.Actor{ID: id, Role: domain.RoleMember, IsActive: active}, nil
}

func TestUserHandler_Me(t *testing.T) {
	e := newEcho()
	c, rec := newContext(e, http.MethodGet, "/v1/me", nil)
	withActor(c, &domain.Actor{ID: "u1", Role: domain.RoleUsher, IsActive: true}, "tok")

	if err := run(e, c, NewUserHandler(&stubUserAdmin{}).Me); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	resp := decode(t, rec)
	cats := resp["allowed_categories"].([]any)
	if len(cats) != 2 || cats[0] != "testimonies" || cats[1] != "events" {
		t.Fatalf("unexpected categories: %v", cats)
	}
	if resp["is_admin"] != false {
		t.Fatalf("usher is not an admin")
	}
	caps := resp["capabilities"].([]any)
	for _, c := range caps {
		if c == "post_sermon" || c == "pin_content" {
			t.Fatalf("usher should not hold %v", c)
		}
	}
}

func TestUserHandler_ChangeRole(t *testing.T) {
	e := newEcho()
	svc := &stubUserAdmin{}
	h := NewUserHandler(svc)

	c, rec := newContext(e, http.MethodPut, "/v1/users/u2/role", strings.NewReader(`{"role":"pastor"}`))
	c.SetParamNames("id")
	c.SetParamValues("u2")
	withActor(c, adminActor, "tok")

	if err := run(e, c, h.ChangeRole); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.role != domain.RolePastor {
		t.Fatalf("role = %q", svc.role)
	}
	actor := decode(t, rec)["actor"].(map[string]any)
	if actor["role"] != "pastor" {
		t.Fatalf("unexpected actor: %+v", actor)
	}

	c, rec = newContext(e, http.MethodPut, "/v1/users/u2/role", strings.NewReader(`{"role":"archbishop"}`))
	c.SetParamNames("id")
	c.SetParamValues("u2")
	withActor(c, adminActor, "tok")

	_ = run(e, c, h.ChangeRole)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown role, got %d", rec.Code)
	}
}

func TestUserHandler_SetActive(t *testing.T) {
	e := newEcho()
	svc := &stubUserAdmin{}
	h := NewUserHandler(svc)

	c, _ := newContext(e, http.MethodPut, "/v1/users/u2/active", strings.NewReader(`{"active":false}`))
	c.SetParamNames("id")
	c.SetParamValues("u2")
	withActor(c, adminActor, "tok")

	if err := run(e, c, h.SetActive); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.active == nil || *svc.active {
		t.Fatalf("expected deactivation")
	}

	c, _ = newContext(e, http.MethodPut, "/v1/users/admin-1/active", strings.NewReader(`{"active":false}`))
	c.SetParamNames("id")
	c.SetParamValues(adminActor.ID)
	withActor(c, adminActor, "tok")

	if err := h.SetActive(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
