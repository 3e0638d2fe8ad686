// Package rest exposes a crud service over HTTP with the conventions the
// admin client relies on: problem bodies with error keys, entity alert
// headers and paginated collections.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pharmascript/pharmascript/internal/platform/crud"
	"github.com/pharmascript/pharmascript/pkg/pagination"
	"github.com/pharmascript/pharmascript/pkg/problem"
)

const (
	AppName      = "pharmascriptApp"
	AlertHeader  = "X-PharmascriptApp-Alert"
	ErrorHeader  = "X-PharmascriptApp-Error"
	ParamsHeader = "X-PharmascriptApp-Params"

	MergePatchJSON = "application/merge-patch+json"
)

// Service is what a Handler needs from the layer below. *crud.Service
// implements it.
type Service[E any, P crud.Record[E]] interface {
	Entity() string
	Create(ctx context.Context, v P) (P, error)
	Update(ctx context.Context, v P) (P, error)
	PartialUpdate(ctx context.Context, patch P) (P, error)
	Get(ctx context.Context, id int64) (P, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, params pagination.Params) ([]P, int64, error)
	Delete(ctx context.Context, id int64) error
}

// Handler serves one entity collection.
type Handler[E any, P crud.Record[E]] struct {
	svc    Service[E, P]
	entity string
	path   string
}

// NewHandler serves svc under path, e.g. "/api/drugs".
func NewHandler[E any, P crud.Record[E]](svc Service[E, P], path string) *Handler[E, P] {
	return &Handler[E, P]{
		svc:    svc,
		entity: svc.Entity(),
		path:   "/" + strings.Trim(path, "/"),
	}
}

// RegisterRoutes mounts the collection on e. Extra middleware, typically
// role checks, applies to every route.
func (h *Handler[E, P]) RegisterRoutes(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	g := e.Group(h.path, mw...)
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id", h.PartialUpdate)
	g.DELETE("/:id", h.Delete)
}

func (h *Handler[E, P]) alert(c echo.Context, action string, id int64) {
	hdr := c.Response().Header()
	hdr.Set(AlertHeader, fmt.Sprintf("%s.%s.%s", AppName, h.entity, action))
	hdr.Set(ParamsHeader, strconv.FormatInt(id, 10))
}

// fail converts known service errors to problems. The central error
// handler renders whatever is returned.
func (h *Handler[E, P]) fail(err error) error {
	if p, ok := problemFor(h.entity, err); ok {
		return p
	}
	return err
}

func (h *Handler[E, P]) badRequest(title, key string) error {
	return BadRequest(h.entity, title, key)
}

func (h *Handler[E, P]) pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, h.badRequest("Invalid id", problem.KeyIDInvalid)
	}
	return id, nil
}

func (h *Handler[E, P]) decode(c echo.Context, allowMergePatch bool) (P, error) {
	req := c.Request()
	if ct := req.Header.Get(echo.HeaderContentType); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		ok := err == nil && (mt == echo.MIMEApplicationJSON || (allowMergePatch && mt == MergePatchJSON))
		if !ok {
			return nil, problem.New(http.StatusUnsupportedMediaType, "Unsupported Media Type", h.entity, problem.KeyBadRequest)
		}
	}

	v := P(new(E))
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return nil, he
		}
		detail := err.Error()
		if errors.Is(err, io.EOF) {
			detail = "request body is empty"
		}
		p := BadRequest(h.entity, "Malformed request body", problem.KeyBadRequest)
		p.Detail = detail
		return nil, p
	}
	return v, nil
}

// Create handles POST. A body that already carries an id is rejected.
func (h *Handler[E, P]) Create(c echo.Context) error {
	v, err := h.decode(c, false)
	if err != nil {
		return err
	}
	if _, ok := v.Identifier(); ok {
		return h.badRequest(fmt.Sprintf("A new %s cannot already have an ID", h.entity), problem.KeyIDExists)
	}

	out, err := h.svc.Create(c.Request().Context(), v)
	if err != nil {
		return h.fail(err)
	}
	id, _ := out.Identifier()
	h.alert(c, "created", id)
	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("%s/%d", h.path, id))
	return c.JSON(http.StatusCreated, out)
}

// checkTarget applies the id rules shared by PUT and PATCH.
func (h *Handler[E, P]) checkTarget(c echo.Context, v P) (int64, error) {
	id, err := h.pathID(c)
	if err != nil {
		return 0, err
	}
	bodyID, ok := v.Identifier()
	if !ok {
		return 0, h.badRequest("Invalid id", problem.KeyIDNull)
	}
	if bodyID != id {
		return 0, h.badRequest("Invalid ID", problem.KeyIDInvalid)
	}
	exists, err := h.svc.Exists(c.Request().Context(), id)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, h.badRequest("Entity not found", problem.KeyIDNotFound)
	}
	return id, nil
}

// Update handles PUT with full replacement semantics.
func (h *Handler[E, P]) Update(c echo.Context) error {
	v, err := h.decode(c, false)
	if err != nil {
		return err
	}
	id, err := h.checkTarget(c, v)
	if err != nil {
		return err
	}

	out, err := h.svc.Update(c.Request().Context(), v)
	if errors.Is(err, crud.ErrNotFound) {
		return h.badRequest("Entity not found", problem.KeyIDNotFound)
	}
	if err != nil {
		return h.fail(err)
	}
	h.alert(c, "updated", id)
	return c.JSON(http.StatusOK, out)
}

// PartialUpdate handles PATCH: fields absent or null in the body are kept.
func (h *Handler[E, P]) PartialUpdate(c echo.Context) error {
	v, err := h.decode(c, true)
	if err != nil {
		return err
	}
	id, err := h.checkTarget(c, v)
	if err != nil {
		return err
	}

	out, err := h.svc.PartialUpdate(c.Request().Context(), v)
	if err != nil {
		return h.fail(err)
	}
	h.alert(c, "updated", id)
	return c.JSON(http.StatusOK, out)
}

// List handles GET on the collection with page, size and sort.
func (h *Handler[E, P]) List(c echo.Context) error {
	params, err := pagination.FromContext(c)
	if err != nil {
		return h.fail(err)
	}

	items, total, err := h.svc.List(c.Request().Context(), params)
	if err != nil {
		return h.fail(err)
	}

	req := c.Request()
	base := *req.URL
	base.Scheme = c.Scheme()
	base.Host = req.Host
	params.SetHeaders(c.Response().Header(), &base, int(total))
	return c.JSON(http.StatusOK, items)
}

// Get handles GET by id.
func (h *Handler[E, P]) Get(c echo.Context) error {
	id, err := h.pathID(c)
	if err != nil {
		return err
	}
	v, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, v)
}

// Delete handles DELETE. Unknown ids are treated as already deleted.
func (h *Handler[E, P]) Delete(c echo.Context) error {
	id, err := h.pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return h.fail(err)
	}
	h.alert(c, "deleted", id)
	return c.NoContent(http.StatusNoContent)
}
