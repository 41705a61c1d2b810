// Package pagination extracts page/limit parameters from requests and
// shapes paginated list responses.
package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params holds normalized pagination parameters. Malformed input falls
// back to defaults rather than erroring; list reads favor availability.
type Params struct {
	Page  int
	Limit int
}

// FromContext extracts page and limit from the echo context.
func FromContext(c echo.Context) Params {
	return FromValues(c.QueryParam("page"), c.QueryParam("limit"))
}

// FromValues normalizes raw page/limit strings.
func FromValues(pageRaw, limitRaw string) Params {
	page, _ := strconv.Atoi(pageRaw)
	if page < 1 {
		page = DefaultPage
	}
	limit, _ := strconv.Atoi(limitRaw)
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

// Offset returns the number of rows to skip.
func (p Params) Offset() int { return (p.Page - 1) * p.Limit }

// Meta is the pagination metadata attached to list responses. It must be
// computed from the same predicate set as the page itself.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta computes metadata for a total row count.
func NewMeta(p Params, total int) Meta {
	pages := total / p.Limit
	if total%p.Limit != 0 {
		pages++
	}
	return Meta{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}

// Response wraps a page of records with its metadata.
type Response struct {
	Data interface{} `json:"data"`
	Meta Meta        `json:"meta"`
}

func NewResponse(data interface{}, p Params, total int) *Response {
	return &Response{Data: data, Meta: NewMeta(p, total)}
}
