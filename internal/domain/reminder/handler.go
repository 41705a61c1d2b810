package reminder

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinic-api/internal/platform/auth"
	"github.com/clinicore/clinic-api/internal/platform/db"
	"github.com/clinicore/clinic-api/pkg/apperr"
	"github.com/clinicore/clinic-api/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/reminders", auth.RequireAtLeast(auth.RoleClinicAdmin))
	g.GET("", h.List)
	g.GET("/history", h.ListHistory)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *Handler) Create(c echo.Context) error {
	var s Schedule
	if err := c.Bind(&s); err != nil {
		return apperr.Validation("invalid request body")
	}
	s.ClinicID = db.ClinicFromContext(c.Request().Context())
	if err := h.svc.Create(c.Request().Context(), &s); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	ctx := c.Request().Context()
	s, err := h.svc.Get(ctx, db.ClinicFromContext(ctx), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	items, meta, err := h.svc.List(ctx, db.ClinicFromContext(ctx), c.QueryParams())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.Response{Data: items, Meta: meta})
}

func (h *Handler) ListHistory(c echo.Context) error {
	ctx := c.Request().Context()
	items, meta, err := h.svc.ListHistory(ctx, db.ClinicFromContext(ctx), c.QueryParams())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.Response{Data: items, Meta: meta})
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var s Schedule
	if err := c.Bind(&s); err != nil {
		return apperr.Validation("invalid request body")
	}
	ctx := c.Request().Context()
	s.ID = id
	s.ClinicID = db.ClinicFromContext(ctx)
	if err := h.svc.Update(ctx, &s); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	ctx := c.Request().Context()
	if err := h.svc.Delete(ctx, db.ClinicFromContext(ctx), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
