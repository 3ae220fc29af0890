// Package http serves the dev node's JSON API over gin: raw transactions
// and calls against the ledger, loupe and subscription reads through the
// typed client, decoded events and Prometheus metrics.
package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	diamond "github.com/hashleap/diamond"
	"github.com/hashleap/diamond/client"
	"github.com/hashleap/diamond/metrics"
)

// Server is the dev node API
type Server struct {
	ledger   Ledger
	diamond  *client.Diamond
	logger   logrus.FieldLogger
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	engine   *gin.Engine
}

// Option configures a Server
type Option func(*Server)

// WithLogger enables access logging
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics instruments requests and serves registry on /metrics
func WithMetrics(m *metrics.Metrics, registry *prometheus.Registry) Option {
	return func(s *Server) {
		s.metrics = m
		s.registry = registry
	}
}

// New builds the API over ledger for raw access and d for typed reads
func New(ledger Ledger, d *client.Diamond, opts ...Option) *Server {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Server{
		ledger:  ledger,
		diamond: d,
		logger:  discard,
	}
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), RequestID(), AccessLog(s.logger))
	if s.metrics != nil {
		engine.Use(Instrument(s.metrics))
	}
	s.engine = engine
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.registry != nil {
		s.engine.GET("/metrics", gin.WrapH(metrics.Handler(s.registry)))
	}

	v1 := s.engine.Group("/v1")
	v1.POST("/transactions", s.sendTransaction)
	v1.POST("/call", s.call)

	d := v1.Group("/diamond")
	d.GET("/facets", s.facets)
	d.GET("/facets/:address/selectors", s.facetSelectors)
	d.GET("/selectors/:selector", s.facetAddress)
	d.GET("/owner", s.owner)

	p := v1.Group("/plans")
	p.GET("/:id", s.plan)
	p.GET("/:id/subscribers", s.subscribers)
	p.GET("/:id/subscribers/:address", s.subscription)

	v1.GET("/events", s.events)
}

// Handler returns the root handler for an http.Server
func (s *Server) Handler() http.Handler {
	return s.engine
}

type errorResponse struct {
	Error  string         `json:"error"`
	Revert *diamond.Error `json:"revert,omitempty"`
}

func abort(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	resp := errorResponse{Error: err.Error()}
	var rev *diamond.Error
	if errors.As(err, &rev) {
		resp.Revert = rev
	}
	c.AbortWithStatusJSON(status, resp)
}
