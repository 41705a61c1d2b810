package db

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinic-api/internal/platform/auth"
)

type contextKey string

const ClinicIDKey contextKey = "clinic_id"

// ClinicMiddleware resolves the clinic a request acts within and stores
// its id on the request context. Regular staff are pinned to the clinic
// in their token; a platform admin may address any clinic through the
// X-Clinic-ID header.
func ClinicMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if auth.IsPublicPath(c.Path()) {
				return next(c)
			}

			raw := extractClinicID(c)
			if raw == "" {
				// Platform admins may call registry endpoints that have no
				// clinic scope; tenant-scoped repos still refuse to run
				// without one.
				if role, _ := c.Get("jwt_role").(string); role == auth.RolePlatformAdmin {
					return next(c)
				}
				return echo.NewHTTPError(http.StatusBadRequest, "no clinic in token or X-Clinic-ID header")
			}

			clinicID, err := uuid.Parse(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid clinic identifier")
			}

			ctx := context.WithValue(c.Request().Context(), ClinicIDKey, clinicID)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("clinic_id", clinicID)

			return next(c)
		}
	}
}

func extractClinicID(c echo.Context) string {
	// 1. Clinic claim pinned by the auth middleware
	if cid, ok := c.Get("jwt_clinic_id").(string); ok && cid != "" {
		return cid
	}

	// 2. X-Clinic-ID header, honored for platform admins only
	if role, _ := c.Get("jwt_role").(string); role == auth.RolePlatformAdmin {
		if cid := c.Request().Header.Get("X-Clinic-ID"); cid != "" {
			return cid
		}
	}

	return ""
}

// ClinicFromContext retrieves the clinic id from context. The zero uuid
// means no clinic was resolved.
func ClinicFromContext(ctx context.Context) uuid.UUID {
	cid, _ := ctx.Value(ClinicIDKey).(uuid.UUID)
	return cid
}
