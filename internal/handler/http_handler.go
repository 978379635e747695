package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-live/snowflake-service/internal/idgen"
	"github.com/weiawesome/wes-io-live/snowflake-service/internal/service"
	"github.com/weiawesome/wes-io-live/snowflake-service/internal/snowflake"
	"github.com/weiawesome/wes-io-live/snowflake-service/pkg/response"
)

// Handler handles HTTP requests for the id service.
type Handler struct {
	idService service.IDService
}

// NewHandler creates a new HTTP handler.
func NewHandler(idService service.IDService) *Handler {
	return &Handler{idService: idService}
}

type idQuery struct {
	Type string `form:"type"`
}

type batchQuery struct {
	Type  string `form:"type"`
	Count int    `form:"count" binding:"required"`
}

type encodingsQuery struct {
	From string `form:"from"`
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		ids := api.Group("/ids")
		{
			ids.GET("", h.Generate)
			ids.GET("/batch", h.GenerateBatch)
			ids.GET("/:id/validate", h.Validate)
			ids.GET("/:id/parse", h.Parse)
		}
		api.GET("/snowflake/:id/encodings", h.Encodings)
	}
}

// Generate issues one id.
func (h *Handler) Generate(c *gin.Context) {
	var q idQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	kind := idgen.ParseKind(q.Type)

	id, err := h.idService.Generate(c.Request.Context(), kind)
	if err != nil {
		h.fail(c, err, "failed to generate id")
		return
	}

	response.Success(c, gin.H{"type": kind, "id": id})
}

// GenerateBatch issues count ids.
func (h *Handler) GenerateBatch(c *gin.Context) {
	var q batchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	kind := idgen.ParseKind(q.Type)

	ids, err := h.idService.GenerateBatch(c.Request.Context(), kind, q.Count)
	if err != nil {
		h.fail(c, err, "failed to generate ids")
		return
	}

	response.Success(c, gin.H{"type": kind, "ids": ids})
}

// Validate reports whether an id is well formed for its type.
func (h *Handler) Validate(c *gin.Context) {
	var q idQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	kind := idgen.ParseKind(q.Type)

	result, err := h.idService.Validate(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to validate id")
		return
	}

	response.Success(c, result)
}

// Parse returns the fields encoded in an id.
func (h *Handler) Parse(c *gin.Context) {
	var q idQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	kind := idgen.ParseKind(q.Type)

	fields, err := h.idService.Parse(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to parse id")
		return
	}

	response.Success(c, fields)
}

// Encodings renders a snowflake id in every supported encoding.
func (h *Handler) Encodings(c *gin.Context) {
	var q encodingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	out, err := h.idService.Encodings(c.Request.Context(), c.Param("id"), q.From)
	if err != nil {
		h.fail(c, err, "failed to encode id")
		return
	}

	response.Success(c, out)
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, idgen.ErrUnknownType),
		errors.Is(err, service.ErrInvalidCount),
		errors.Is(err, service.ErrInvalidID):
		response.BadRequest(c, err.Error())
	case errors.Is(err, snowflake.ErrClockRegression):
		response.ServiceUnavailable(c, "CLOCK_REGRESSION", err.Error())
	default:
		// The service has already logged the cause.
		response.InternalError(c, msg)
	}
}
