// Package router assembles the gin engine and mounts the API handlers.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// RouteRegistrar mounts a handler's routes on the versioned API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// EngineOptions configures the middleware chain
type EngineOptions struct {
	Logger         *zap.Logger
	ServiceName    string
	TracingEnabled bool
	MaxBodySize    int64
	CORS           middleware.CORSConfig
}

// NewEngine creates a gin engine with the standard middleware chain:
// request logging, panic recovery, tracing, security headers, CORS and
// the body size limit, in that order.
func NewEngine(opts EngineOptions) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(
		logger.GinMiddleware(opts.Logger),
		logger.Recovery(opts.Logger),
		middleware.Tracing(opts.ServiceName, opts.TracingEnabled),
		middleware.SpanEnricher(),
		middleware.Secure(),
		middleware.CORS(opts.CORS),
		middleware.BodyLimit(opts.MaxBodySize),
	)
	return engine
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
		registrars: make([]RouteRegistrar, 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds registrars to be mounted by Setup
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup mounts every registrar under /api/<version>
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// Engine returns the underlying gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
