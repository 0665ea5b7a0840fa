package httpx

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"items-api/backend/internal/items"
)

type Server struct {
	R     *gin.Engine
	Store items.Store
	Log   logrus.FieldLogger
}

type Options struct {
	// CORSOrigin enables CORS headers for one origin when set.
	CORSOrigin string
}

func NewServer(store items.Store, log logrus.FieldLogger, opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(RequestLogger(log), gin.Recovery())
	if opts.CORSOrigin != "" {
		r.Use(CORS(opts.CORSOrigin))
	}

	s := &Server{R: r, Store: store, Log: log}

	api := r.Group("/api")
	{
		api.GET("/health", s.health)

		api.GET("/items", s.listItems)
		api.POST("/items", s.createItem)
		api.GET("/items/:id", s.getItem)
		api.PUT("/items/:id", s.updateItem)
		api.DELETE("/items/:id", s.deleteItem)
	}

	return s
}

func (s *Server) health(c *gin.Context) {
	now, err := s.Store.ServerTime(c.Request.Context())
	if err != nil {
		s.Log.WithError(err).Warn("health check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "DOWN", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP", "time": now})
}

func (s *Server) listItems(c *gin.Context) {
	out, err := s.Store.List(c.Request.Context())
	if err != nil {
		s.fail(c, "list items", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createItem(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}
	it, err := s.Store.Create(c.Request.Context(), in)
	if err != nil {
		s.fail(c, "create item", err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

func (s *Server) getItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	it, err := s.Store.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, "get item", err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (s *Server) updateItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	in, ok := bindInput(c)
	if !ok {
		return
	}
	it, err := s.Store.Update(c.Request.Context(), id, in)
	if err != nil {
		s.fail(c, "update item", err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (s *Server) deleteItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	it, err := s.Store.Delete(c.Request.Context(), id)
	if err != nil {
		s.fail(c, "delete item", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully", "item": it})
}

// fail writes 404 for ErrNotFound and 500 with the driver message otherwise.
func (s *Server) fail(c *gin.Context, op string, err error) {
	if errors.Is(err, items.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": items.ErrNotFound.Error()})
		return
	}
	s.Log.WithError(err).WithField("op", op).Error("query failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func itemID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// bindInput decodes the request body. An empty body is the same as {}.
func bindInput(c *gin.Context) (items.Input, bool) {
	var in items.Input
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
		return items.Input{}, false
	}
	return in, true
}
