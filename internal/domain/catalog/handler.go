package catalog

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
	svc *Catalog
}

func NewHandler(svc *Catalog) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	admin := auth.RequireAtLeast(auth.RoleClinicAdmin)

	d := api.Group("/disciplines", auth.RequireAtLeast(auth.RoleReceptionist))
	d.GET("", h.ListDisciplines)
	d.GET("/:id", h.GetDiscipline)
	d.POST("", h.CreateDiscipline, admin)
	d.PUT("/:id", h.UpdateDiscipline, admin)
	d.DELETE("/:id", h.DeleteDiscipline, admin)

	s := api.Group("/services", auth.RequireAtLeast(auth.RoleReceptionist))
	s.GET("", h.ListServices)
	s.GET("/:id", h.GetService)
	s.POST("", h.CreateService, admin)
	s.PUT("/:id", h.UpdateService, admin)
	s.DELETE("/:id", h.DeleteService, admin)
}

func (h *Handler) CreateDiscipline(c echo.Context) error {
	var d Discipline
	if err := c.Bind(&d); err != nil {
		return apperr.Validation("invalid request body")
	}
	d.ClinicID = db.ClinicFromContext(c.Request().Context())
	if err := h.svc.CreateDiscipline(c.Request().Context(), &d); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) GetDiscipline(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	ctx := c.Request().Context()
	d, err := h.svc.GetDiscipline(ctx, db.ClinicFromContext(ctx), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListDisciplines(c echo.Context) error {
	ctx := c.Request().Context()
	items, meta, err := h.svc.ListDisciplines(ctx, db.ClinicFromContext(ctx), c.QueryParams())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.Response{Data: items, Meta: meta})
}

func (h *Handler) UpdateDiscipline(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var d Discipline
	if err := c.Bind(&d); err != nil {
		return apperr.Validation("invalid request body")
	}
	ctx := c.Request().Context()
	d.ID = id
	d.ClinicID = db.ClinicFromContext(ctx)
	if err := h.svc.UpdateDiscipline(ctx, &d); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDiscipline(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	ctx := c.Request().Context()
	if err := h.svc.DeleteDiscipline(ctx, db.ClinicFromContext(ctx), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateService(c echo.Context) error {
	var s Service
	if err := c.Bind(&s); err != nil {
		return apperr.Validation("invalid request body")
	}
	s.ClinicID = db.ClinicFromContext(c.Request().Context())
	if err := h.svc.CreateService(c.Request().Context(), &s); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *Handler) GetService(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	ctx := c.Request().Context()
	s, err := h.svc.GetService(ctx, db.ClinicFromContext(ctx), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) ListServices(c echo.Context) error {
	ctx := c.Request().Context()
	items, meta, err := h.svc.ListServices(ctx, db.ClinicFromContext(ctx), c.QueryParams())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.Response{Data: items, Meta: meta})
}

func (h *Handler) UpdateService(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var s Service
	if err := c.Bind(&s); err != nil {
		return apperr.Validation("invalid request body")
	}
	ctx := c.Request().Context()
	s.ID = id
	s.ClinicID = db.ClinicFromContext(ctx)
	if err := h.svc.UpdateService(ctx, &s); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) DeleteService(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	ctx := c.Request().Context()
	if err := h.svc.DeleteService(ctx, db.ClinicFromContext(ctx), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
