package auth

import "strings"

// Role names carried by identities. Stored lower-case; the same strings act
// as authority values for policy checks.
const (
	RoleAdmin    = "admin"
	RoleSales    = "sales"
	RoleWorkshop = "workshop"
	RoleValet    = "valet"
)

var knownRoles = map[string]struct{}{
	RoleAdmin:    {},
	RoleSales:    {},
	RoleWorkshop: {},
	RoleValet:    {},
}

// KnownRole reports whether name is one of the recognized roles.
func KnownRole(name string) bool {
	_, ok := knownRoles[normalizeRole(name)]
	return ok
}

func normalizeRole(role string) string {
	return strings.TrimSpace(strings.ToLower(role))
}

// NormalizeRoles lower-cases, trims, and deduplicates a role list while
// preserving first-seen order.
func NormalizeRoles(roles []string) []string {
	if len(roles) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(roles))
	var normalized []string
	for _, role := range roles {
		role = normalizeRole(role)
		if role == "" {
			continue
		}
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		normalized = append(normalized, role)
	}
	return normalized
}

func sameRoleSet(a, b []string) bool {
	na, nb := NormalizeRoles(a), NormalizeRoles(b)
	if len(na) != len(nb) {
		return false
	}
	set := make(map[string]struct{}, len(na))
	for _, r := range na {
		set[r] = struct{}{}
	}
	for _, r := range nb {
		if _, ok := set[r]; !ok {
			return false
		}
	}
	return true
}
