package ui

import (
	"net/http"
	"strconv"

	"goldendash/domain/catalog"
	"goldendash/internal/errors"
	"goldendash/ports"
	"goldendash/ui/middleware"

	"github.com/gin-gonic/gin"
)

type exampleJSON struct {
	catalog.Example
	AverageMetrics *float64 `json:"average_metrics"`
}

type exampleRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type bulkUpsertRequest struct {
	Examples []catalog.Example `json:"examples"`
}

// newAPI builds the token-protected JSON API. It is mounted under /api on the page router.
func (s *Server) newAPI() *gin.Engine {
	if s.deps.GinMode != "" {
		gin.SetMode(s.deps.GinMode)
	}

	engine := gin.New()
	engine.Use(gin.LoggerWithWriter(s.log), gin.RecoveryWithWriter(s.log))

	api := engine.Group("/api", middleware.BearerToken(s.deps.APIToken, s.log))
	{
		api.GET("/examples", s.listExamples)
		api.POST("/examples/bulk_upsert", s.bulkUpsertExamples)
	}
	return engine
}

// listExamples answers GET /api/examples?status=&category=&limit=
func (s *Server) listExamples(c *gin.Context) {
	filter := ports.ListFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
	}

	examples := []catalog.Example{}
	if raw, ok := c.GetQuery("limit"); ok {
		// a present limit that is not a positive number selects nothing
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			s.respondExamples(c, examples)
			return
		}
		filter.Limit = limit
	}

	examples, err := s.deps.Examples.Repository().List(c.Request.Context(), filter)
	if err != nil {
		s.apiError(c, err)
		return
	}
	s.respondExamples(c, examples)
}

func (s *Server) respondExamples(c *gin.Context, examples []catalog.Example) {
	out := make([]exampleJSON, len(examples))
	for i, e := range examples {
		out[i] = exampleJSON{Example: e, AverageMetrics: e.AverageMetrics()}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"count":    len(out),
		"examples": out,
	})
}

// bulkUpsertExamples answers POST /api/examples/bulk_upsert. Nothing is written unless every row
// validates.
func (s *Server) bulkUpsertExamples(c *gin.Context) {
	var req bulkUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Examples == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "examples parameter is required"})
		return
	}

	result, err := s.deps.Examples.BulkUpsert(c.Request.Context(), req.Examples)
	if err != nil {
		s.apiError(c, err)
		return
	}
	if len(result.Errors) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "errors": result.Errors})
		return
	}

	s.log.Info().Int("created", len(result.Created)).Int("updated", len(result.Updated)).Msg("examples upserted through the API")
	c.JSON(http.StatusCreated, gin.H{
		"success":       true,
		"created_count": len(result.Created),
		"updated_count": len(result.Updated),
		"created":       refs(result.Created),
		"updated":       refs(result.Updated),
	})
}

func (s *Server) apiError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("API request failed")
		c.JSON(status, gin.H{"success": false, "error": "Internal server error"})
		return
	}
	message := err.Error()
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	c.JSON(status, gin.H{"success": false, "error": message})
}

func refs(examples []catalog.Example) []exampleRef {
	out := make([]exampleRef, len(examples))
	for i, e := range examples {
		out[i] = exampleRef{ID: e.ID, Name: e.Name}
	}
	return out
}
