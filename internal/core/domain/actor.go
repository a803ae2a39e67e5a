package domain

import "time"

// Role is the closed set of actor roles.
type Role string

const (
	RoleMember      Role = "member"
	RoleVolunteer   Role = "volunteer"
	RoleUsher       Role = "usher"
	RoleWorshipTeam Role = "worship_team"
	RolePastor      Role = "pastor"
	RoleBishop      Role = "bishop"
	RoleAdmin       Role = "admin"
)

// Roles lists every known role from least to most privileged.
var Roles = []Role{
	RoleMember,
	RoleVolunteer,
	RoleUsher,
	RoleWorshipTeam,
	RolePastor,
	RoleBishop,
	RoleAdmin,
}

// Valid reports whether r belongs to the role enumeration.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Actor is the principal attempting an action. Deactivated actors keep their
// role but are treated as unauthenticated.
type Actor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
	IsActive    bool   `json:"is_active"`
}

// User is the persisted account behind an Actor.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Actor projects the account onto the authorization principal.
func (u *User) Actor() *Actor {
	if u == nil {
		return nil
	}
	return &Actor{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		IsActive:    u.IsActive,
	}
}
