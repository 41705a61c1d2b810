package staff

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
	g := api.Group("/staff", auth.RequireAtLeast(auth.RoleReceptionist))
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.GET("/:id/holidays", h.ListHolidays)

	adm := api.Group("/staff", auth.RequireAtLeast(auth.RoleClinicAdmin))
	adm.POST("", h.Create)
	adm.PUT("/:id", h.Update)
	adm.DELETE("/:id", h.Delete)
	adm.POST("/:id/holidays", h.AddHoliday)
	adm.DELETE("/:id/holidays/:holidayID", h.RemoveHoliday)
}

func (h *Handler) Create(c echo.Context) error {
	var m Staff
	if err := c.Bind(&m); err != nil {
		return apperr.Validation("invalid request body")
	}
	ctx := c.Request().Context()
	m.ClinicID = db.ClinicFromContext(ctx)
	if err := h.svc.Create(ctx, &m); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	ctx := c.Request().Context()
	m, err := h.svc.Get(ctx, db.ClinicFromContext(ctx), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	items, meta, err := h.svc.List(ctx, db.ClinicFromContext(ctx), c.QueryParams())
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
	var m Staff
	if err := c.Bind(&m); err != nil {
		return apperr.Validation("invalid request body")
	}
	ctx := c.Request().Context()
	m.ID = id
	m.ClinicID = db.ClinicFromContext(ctx)
	if err := h.svc.Update(ctx, &m); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
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

func (h *Handler) AddHoliday(c echo.Context) error {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var hol Holiday
	if err := c.Bind(&hol); err != nil {
		return apperr.Validation("invalid request body")
	}
	ctx := c.Request().Context()
	hol.StaffID = staffID
	hol.ClinicID = db.ClinicFromContext(ctx)
	if err := h.svc.AddHoliday(ctx, &hol); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, hol)
}

func (h *Handler) RemoveHoliday(c echo.Context) error {
	id, err := uuid.Parse(c.Param("holidayID"))
	if err != nil {
		return apperr.Validation("invalid holiday id")
	}
	ctx := c.Request().Context()
	if err := h.svc.RemoveHoliday(ctx, db.ClinicFromContext(ctx), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListHolidays(c echo.Context) error {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	ctx := c.Request().Context()
	items, err := h.svc.ListHolidays(ctx, db.ClinicFromContext(ctx), staffID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}
