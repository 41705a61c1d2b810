package appointment

import (
	"net/http"
	"strconv"

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
	g := api.Group("/appointments", auth.RequireAtLeast(auth.RoleReceptionist))
	g.GET("", h.List)
	g.GET("/availability", h.Availability)
	g.GET("/calendar", h.Calendar)
	g.GET("/overview", h.Overview)
	g.GET("/:id", h.Get)
	g.POST("", h.Book)
	g.PUT("/:id/status", h.SetStatus)
	g.DELETE("/:id", h.Delete, auth.RequireAtLeast(auth.RoleClinicAdmin))
}

func (h *Handler) Book(c echo.Context) error {
	var req BookingRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	ctx := c.Request().Context()
	a, err := h.svc.Book(ctx, db.ClinicFromContext(ctx), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Availability(c echo.Context) error {
	seq, err := strconv.Atoi(c.QueryParam("specialistId"))
	if err != nil {
		return apperr.Validation("specialistId is required")
	}
	req := AvailabilityRequest{
		SpecialistSeq: seq,
		Date:          c.QueryParam("date"),
		Timezone:      c.QueryParam("timezone"),
	}
	if raw := c.QueryParam("serviceId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return apperr.Validation("invalid serviceId")
		}
		req.ServiceID = &id
	}
	if raw := c.QueryParam("length"); raw != "" {
		length, err := strconv.Atoi(raw)
		if err != nil || length <= 0 {
			return apperr.Validation("length must be a positive number of minutes")
		}
		req.Length = length
	}

	ctx := c.Request().Context()
	slots, err := h.svc.Availability(ctx, db.ClinicFromContext(ctx), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"slots": slots})
}

func (h *Handler) Calendar(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.svc.Calendar(ctx, db.ClinicFromContext(ctx), c.QueryParam("date"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"appointments": items})
}

func (h *Handler) Overview(c echo.Context) error {
	ctx := c.Request().Context()
	buckets, err := h.svc.Overview(ctx, db.ClinicFromContext(ctx), c.QueryParam("filterBy"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"buckets": buckets})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	ctx := c.Request().Context()
	a, err := h.svc.Get(ctx, db.ClinicFromContext(ctx), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	items, meta, err := h.svc.List(ctx, db.ClinicFromContext(ctx), c.QueryParams())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.Response{Data: items, Meta: meta})
}

func (h *Handler) SetStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var body struct {
		Status string  `json:"status"`
		Reason *string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return apperr.Validation("invalid request body")
	}
	ctx := c.Request().Context()
	a, err := h.svc.Transition(ctx, db.ClinicFromContext(ctx), id, body.Status, body.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
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
