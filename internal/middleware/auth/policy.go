package auth

import "github.com/mdalbakiakon/lms-backend/internal/models"

// Policy maps a resource operation to the roles allowed to perform it.
// An empty set admits any authenticated identity. Roles are flat: a
// role grants nothing beyond the operations that list it explicitly.
var Policy = map[string][]string{
	"profile:view":      {},
	"profile:update":    {},
	"category:list":     {},
	"category:create":   {models.RoleAdmin},
	"course:list":       {},
	"course:create":     {models.RoleInstructor},
	"course:search":     {},
	"enrollment:create": {models.RoleStudent},
	"dashboard:view":    {},
}

// Allowed is the guard predicate: the identity must be present and its
// role must belong to the required set.
func Allowed(role string, required []string) bool {
	if role == "" {
		return false
	}
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if r == role {
			return true
		}
	}
	return false
}
