package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medrez/residency-api/internal/core/domain"
	"github.com/medrez/residency-api/internal/core/ports"
)

// ResourceHandler serves CRUD for every scheduling kind.
type ResourceHandler struct {
	service ports.ResourceService
	binder  echo.DefaultBinder
}

func NewResourceHandler(service ports.ResourceService) *ResourceHandler {
	return &ResourceHandler{service: service}
}

// Register mounts the CRUD routes for kind on g. Reads are open to any caller
// that passed g's middleware; writes additionally run through writeMW.
func (h *ResourceHandler) Register(g *echo.Group, kind domain.ResourceKind, writeMW ...echo.MiddlewareFunc) {
	g.GET("", h.list(kind))
	g.GET("/:id", h.get(kind))
	g.POST("", h.create(kind), writeMW...)
	g.PUT("/:id", h.update(kind), writeMW...)
	g.DELETE("/:id", h.delete(kind), writeMW...)
}

// list handles GET /api/{resource}.
//
// @Summary      List resources
// @Tags         resources
// @Produce      json
// @Security     BearerAuth
// @Param        resource  path      string  true  "residents | rotations | schedules | publishing-settings | shifts"
// @Success      200       {array}   object
// @Failure      401       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Router       /api/{resource} [get]
func (h *ResourceHandler) list(kind domain.ResourceKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		items, err := h.service.List(c.Request().Context(), kind)
		if err != nil {
			return err
		}
		out := make([]domain.Document, 0, len(items))
		for _, it := range items {
			out = append(out, it.View())
		}
		return c.JSON(http.StatusOK, out)
	}
}

// get handles GET /api/{resource}/:id.
//
// @Summary      Get a resource
// @Tags         resources
// @Produce      json
// @Security     BearerAuth
// @Param        resource  path      string  true  "Resource kind"
// @Param        id        path      string  true  "Resource id"
// @Success      200       {object}  object
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /api/{resource}/{id} [get]
func (h *ResourceHandler) get(kind domain.ResourceKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		res, err := h.service.Get(c.Request().Context(), kind, c.Param("id"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, res.View())
	}
}

// create handles POST /api/{resource}.
//
// @Summary      Create a resource (admin)
// @Tags         resources
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        resource         path      string  true   "Resource kind"
// @Param        Idempotency-Key  header    string  false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      object  true   "Resource document"
// @Success      201              {object}  object
// @Success      200              {object}  object  "Replayed from Idempotency-Key"
// @Failure      400              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Router       /api/{resource} [post]
func (h *ResourceHandler) create(kind domain.ResourceKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		doc, err := h.bindDocument(c)
		if err != nil {
			return err
		}

		result, err := h.service.Create(c.Request().Context(), ports.CreateResourceInput{
			Kind:           kind,
			Fields:         doc,
			IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
		})
		if err != nil {
			return err
		}

		status := http.StatusCreated
		if result.AlreadyExisted {
			status = http.StatusOK
		}
		return c.JSON(status, result.Resource.View())
	}
}

// update handles PUT /api/{resource}/:id.
//
// @Summary      Update a resource (admin)
// @Tags         resources
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        resource  path      string  true  "Resource kind"
// @Param        id        path      string  true  "Resource id"
// @Param        body      body      object  true  "Fields to set"
// @Success      200       {object}  object
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /api/{resource}/{id} [put]
func (h *ResourceHandler) update(kind domain.ResourceKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		doc, err := h.bindDocument(c)
		if err != nil {
			return err
		}
		res, err := h.service.Update(c.Request().Context(), kind, c.Param("id"), doc)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, res.View())
	}
}

// delete handles DELETE /api/{resource}/:id.
//
// @Summary      Delete a resource (admin)
// @Tags         resources
// @Security     BearerAuth
// @Param        resource  path  string  true  "Resource kind"
// @Param        id        path  string  true  "Resource id"
// @Success      204
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /api/{resource}/{id} [delete]
func (h *ResourceHandler) delete(kind domain.ResourceKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := h.service.Delete(c.Request().Context(), kind, c.Param("id")); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// bindDocument decodes the JSON body only; path params never leak into documents.
func (h *ResourceHandler) bindDocument(c echo.Context) (domain.Document, error) {
	var doc domain.Document
	if err := h.binder.BindBody(c, &doc); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return doc, nil
}
