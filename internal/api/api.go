package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pfrederiksen/uoft-courses/internal/course"
	"github.com/pfrederiksen/uoft-courses/internal/filter"
	"github.com/pfrederiksen/uoft-courses/internal/logger"
	"github.com/pfrederiksen/uoft-courses/internal/storage"
)

// Reader is the read side of the store.
type Reader interface {
	Courses(ctx context.Context) ([]*course.Course, error)
	Course(ctx context.Context, code string) (*course.Course, error)
	Offerings(ctx context.Context) ([]*course.Offering, error)
	Offering(ctx context.Context, code string) (*course.Offering, error)
	Ping(ctx context.Context) error
}

// Handler serves the read API.
type Handler struct {
	store Reader
}

// NewHandler creates a Handler.
func NewHandler(store Reader) *Handler {
	return &Handler{store: store}
}

// NewRouter wires every route onto a new engine.
func NewRouter(store Reader) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	h := NewHandler(store)
	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/courses", h.ListCourses)
		api.GET("/courses/:code", h.GetCourse)
		api.GET("/offerings", h.ListOfferings)
		api.GET("/offerings/:code", h.GetOffering)
	}
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("HTTP request", logger.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
	}
}

// Health reports whether the database is reachable.
// GET /api/health
func (h *Handler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		logger.Error("Health check failed", nil, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// filterKeys are the query parameters accepted by the list endpoints.
var filterKeys = []string{"dept", "level", "term", "q"}

// queryFilter builds a filter from the request's query parameters. Repeated
// parameters and comma-separated values are both accepted.
func queryFilter(c *gin.Context) (*filter.Filter, error) {
	f := filter.NewFilter()
	for _, key := range filterKeys {
		for _, value := range c.QueryArray(key) {
			if err := f.Add(key, value); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

// ListCourses returns every course matching the query filter.
// GET /api/courses?dept=CSC&level=100&q=intro
func (h *Handler) ListCourses(c *gin.Context) {
	f, err := queryFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	courses, err := h.store.Courses(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	courses = filter.Apply(f, courses)
	if courses == nil {
		courses = []*course.Course{}
	}
	c.JSON(http.StatusOK, courses)
}

// GetCourse returns one course by code.
// GET /api/courses/:code
func (h *Handler) GetCourse(c *gin.Context) {
	found, err := h.store.Course(c.Request.Context(), strings.ToUpper(c.Param("code")))
	if err != nil {
		lookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

// ListOfferings returns every timetable offering matching the query filter.
// GET /api/offerings?dept=CSC&term=F
func (h *Handler) ListOfferings(c *gin.Context) {
	f, err := queryFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	offerings, err := h.store.Offerings(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	offerings = filter.Apply(f, offerings)
	if offerings == nil {
		offerings = []*course.Offering{}
	}
	c.JSON(http.StatusOK, offerings)
}

// GetOffering returns one offering by code.
// GET /api/offerings/:code
func (h *Handler) GetOffering(c *gin.Context) {
	found, err := h.store.Offering(c.Request.Context(), strings.ToUpper(c.Param("code")))
	if err != nil {
		lookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func lookupError(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "code": c.Param("code")})
		return
	}
	internalError(c, err)
}

func internalError(c *gin.Context, err error) {
	logger.Error("Request failed", logger.Fields{"path": c.Request.URL.Path}, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
