package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "slices"

// Role is the coarse-grained entitlement that selects a navigation tree.
// Keep string form so it matches the permission codes sent by the API.
type Role string

const (
	RoleCollaborator Role = "collaborator"
	RoleHR           Role = "hr"
	RoleSuperAdmin   Role = "superadmin"
	RoleAdmin        Role = "admin"
)

// Roles returns the known roles in catalog order.
func Roles() []Role {
	return []Role{RoleCollaborator, RoleHR, RoleSuperAdmin, RoleAdmin}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return slices.Contains(Roles(), r)
}

// SubRole refines a Role and may override its navigation tree.
// The zero value means "no sub-role".
type SubRole string

const (
	SubRoleNone       SubRole = ""
	SubRoleSupervisor SubRole = "supervisor"
	SubRoleJefe       SubRole = "jefe"
)

// SubRoles returns the known sub-roles.
func SubRoles() []SubRole {
	return []SubRole{SubRoleSupervisor, SubRoleJefe}
}

// Valid reports whether s is a known sub-role. SubRoleNone is not valid.
func (s SubRole) Valid() bool {
	return slices.Contains(SubRoles(), s)
}

// SessionState is the state of the single client session.
type SessionState string

const (
	StateAnonymous      SessionState = "anonymous"
	StateAuthenticating SessionState = "authenticating"
	StateAuthenticated  SessionState = "authenticated"
)

// Credentials is the email/password pair exchanged at sign-in.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CurrentUser is the signed-in identity's profile as returned by the API.
// Permissions is ordered; the first code drives the menu lookup.
type CurrentUser struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Avatar      string   `json:"avatar,omitempty"`
	Status      string   `json:"status,omitempty"`
	Permissions []string `json:"permissions"`
}

// PrimaryPermission returns the first permission code, or "" when there is none.
func (u *CurrentUser) PrimaryPermission() string {
	if u == nil || len(u.Permissions) == 0 {
		return ""
	}
	return u.Permissions[0]
}

// Clone returns a deep copy so callers cannot mutate shared state.
func (u *CurrentUser) Clone() *CurrentUser {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Permissions = slices.Clone(u.Permissions)
	return &cp
}

// SignUpInput carries the fields for account registration.
type SignUpInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Company  string `json:"company,omitempty"`
}

// ResetPasswordInput carries a password reset request.
type ResetPasswordInput struct {
	Token    string `json:"token,omitempty"`
	Password string `json:"password"`
}

// SignInResult is what the remote credential exchange returns.
type SignInResult struct {
	AccessToken string
	User        *CurrentUser
}
