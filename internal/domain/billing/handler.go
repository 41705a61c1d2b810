package billing

import (
	"context"
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
	g := api.Group("/invoices", auth.RequireAtLeast(auth.RoleReceptionist))
	g.GET("", h.List)
	g.GET("/overview", h.Overview, auth.RequireAtLeast(auth.RoleClinicAdmin))
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.POST("/:id/issue", h.Issue)
	g.POST("/:id/void", h.Void)
	g.POST("/:id/payments", h.Pay)
	g.DELETE("/:id", h.Delete, auth.RequireAtLeast(auth.RoleClinicAdmin))
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	ctx := c.Request().Context()
	v, err := h.svc.Create(ctx, db.ClinicFromContext(ctx), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	ctx := c.Request().Context()
	v, err := h.svc.Get(ctx, db.ClinicFromContext(ctx), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
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
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	ctx := c.Request().Context()
	v, err := h.svc.Update(ctx, db.ClinicFromContext(ctx), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) Issue(c echo.Context) error {
	return h.mutate(c, h.svc.Issue)
}

func (h *Handler) Void(c echo.Context) error {
	return h.mutate(c, h.svc.Void)
}

func (h *Handler) mutate(c echo.Context, fn func(context.Context, uuid.UUID, uuid.UUID) (*Invoice, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	ctx := c.Request().Context()
	v, err := fn(ctx, db.ClinicFromContext(ctx), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) Pay(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var body struct {
		AmountCents int64 `json:"amount_cents"`
	}
	if err := c.Bind(&body); err != nil {
		return apperr.Validation("invalid request body")
	}
	ctx := c.Request().Context()
	v, err := h.svc.Pay(ctx, db.ClinicFromContext(ctx), id, body.AmountCents)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) Overview(c echo.Context) error {
	ctx := c.Request().Context()
	buckets, err := h.svc.Overview(ctx, db.ClinicFromContext(ctx), c.QueryParam("filterBy"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"buckets": buckets})
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
