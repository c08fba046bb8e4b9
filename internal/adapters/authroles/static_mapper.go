package authroles

import (
	"strings"

	domainauth "github.com/target/dash-console/internal/domain/auth"
)

// StaticRoleMapper maps permission codes to a role and sub-role by simple
// string membership. The first code naming a known role wins; any code naming
// a known sub-role sets the sub-role (first match wins).
// Aliases lets deployments map API-specific codes (e.g. "RRHH") onto roles or sub-roles.
type StaticRoleMapper struct {
	Aliases map[string]string
}

func (m StaticRoleMapper) Map(permissions []string) (domainauth.Role, domainauth.SubRole) {
	var (
		role domainauth.Role
		sub  domainauth.SubRole
	)
	for _, p := range permissions {
		code := m.Normalize(p)
		if role == "" && domainauth.Role(code).Valid() {
			role = domainauth.Role(code)
		}
		if sub == domainauth.SubRoleNone && domainauth.SubRole(code).Valid() {
			sub = domainauth.SubRole(code)
		}
	}
	return role, sub
}

// Normalize lowercases code and resolves it through Aliases.
func (m StaticRoleMapper) Normalize(code string) string {
	c := strings.ToLower(strings.TrimSpace(code))
	if alias, ok := m.Aliases[c]; ok {
		return strings.ToLower(alias)
	}
	return c
}
