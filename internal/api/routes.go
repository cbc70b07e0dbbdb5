// routes.go - Server construction and route registration
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/KaramelBytes/dataqa-cli/internal/answer"
	"github.com/KaramelBytes/dataqa-cli/internal/ingest"
	"github.com/KaramelBytes/dataqa-cli/internal/observability"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Answerer answers one question about one table. *answer.Service implements it.
type Answerer interface {
	Answer(ctx context.Context, dt answer.DatasetType, t *ingest.Table, question string) answer.Result
	Ready() error
}

// Dependencies holds all handler dependencies
type Dependencies struct {
	Sessions    *SessionStore
	Answerer    Answerer
	Ingest      ingest.Options
	PreviewRows int
	Logger      *slog.Logger
	Version     string
}

// Handlers holds all handler instances
type Handlers struct {
	Health  *HealthHandler
	Dataset *DatasetHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(deps.Version, deps.Answerer),
		Dataset: NewDatasetHandler(deps),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	e.GET("/health", handlers.Health.HandleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	apiGroup := e.Group("/api")
	apiGroup.GET("/types", handlers.Dataset.HandleListTypes)

	sessionGroup := apiGroup.Group("/sessions")
	sessionGroup.POST("", handlers.Dataset.HandleCreateSession)
	sessionGroup.DELETE("/:id", handlers.Dataset.HandleDeleteSession)
	sessionGroup.POST("/:id/dataset", handlers.Dataset.HandleUploadDataset)
	sessionGroup.GET("/:id/dataset", handlers.Dataset.HandleGetDataset)
	sessionGroup.GET("/:id/profile", handlers.Dataset.HandleGetProfile)
	sessionGroup.POST("/:id/ask", handlers.Dataset.HandleAsk)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, deps *Dependencies) {
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			ctx := observability.ContextWithRequestID(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
		},
	}))
	e.Use(RequestLogger(deps.Logger))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			deps.Logger.Error("handler panic",
				slog.String("request_id", observability.RequestIDFromContext(c.Request().Context())),
				slog.String("error", err.Error()),
			)
			return err
		},
	}))
	e.Use(Metrics())

	// Leave headroom for multipart framing; ingest enforces the exact cap.
	if limit := deps.Ingest.MaxBytes; limit > 0 {
		e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", limit/1024+64)))
	}
}

// NewServer builds a fully wired echo instance.
func NewServer(deps *Dependencies) *echo.Echo {
	if deps.Logger == nil {
		deps.Logger = observability.Discard()
	}
	if deps.Sessions == nil {
		deps.Sessions = NewSessionStore(0)
	}
	if deps.PreviewRows <= 0 {
		deps.PreviewRows = 5
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	SetupMiddleware(e, deps)
	RegisterRoutes(e, NewHandlers(deps))
	return e
}

// RequestLogger logs one structured line per request.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req := c.Request()
			logger.InfoContext(req.Context(), "http_request",
				slog.String("request_id", observability.RequestIDFromContext(req.Context())),
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", c.Response().Status),
				slog.String("duration", time.Since(start).String()),
				slog.Int64("bytes", c.Response().Size),
			)
			return nil
		}
	}
}

// Metrics records request counts and latency by route pattern.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if ae, ok := err.(*APIError); ok {
					status = ae.Status
				} else {
					status = http.StatusInternalServerError
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			observability.ObserveHTTPRequest(c.Request().Method, route, fmt.Sprint(status), time.Since(start))
			return err
		}
	}
}
