package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Role names carried in the token's role claim.
const (
	RolePlatformAdmin = "platform-admin"
	RoleClinicAdmin   = "clinic-admin"
	RoleSpecialist    = "specialist"
	RoleReceptionist  = "receptionist"
)

// rank orders roles by authority. A request passes a role guard when
// its role ranks at or above the weakest role the guard names.
var rank = map[string]int{
	RoleReceptionist:  1,
	RoleSpecialist:    2,
	RoleClinicAdmin:   3,
	RolePlatformAdmin: 4,
}

// RequireRole returns middleware that admits exactly the named roles.
// A platform admin always passes.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := RoleFromContext(c.Request().Context())
			if role == RolePlatformAdmin {
				return next(c)
			}
			for _, required := range roles {
				if role == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// RequireAtLeast returns middleware that admits the named role and
// every role ranked above it.
func RequireAtLeast(role string) echo.MiddlewareFunc {
	floor := rank[role]
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			have := rank[RoleFromContext(c.Request().Context())]
			if have >= floor && floor > 0 {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s or higher", role))
		}
	}
}

// ValidRole reports whether s names a known role.
func ValidRole(s string) bool {
	_, ok := rank[s]
	return ok
}
