package api

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/david/syncscout/internal/auth"
	"github.com/david/syncscout/internal/catalog"
	"github.com/david/syncscout/internal/logging"
	"github.com/david/syncscout/internal/models"
	"github.com/david/syncscout/internal/scheduler"
	"github.com/david/syncscout/internal/service"
)

// Refresher runs one cycle of the background tasks.
type Refresher interface {
	RunOnce(ctx context.Context) []scheduler.TaskResult
}

// SeedSink stores seeded opportunities.
type SeedSink interface {
	SaveOpportunities(ctx context.Context, opps []models.Opportunity) error
}

type Options struct {
	CORSOrigins []string
	AdminSecret string
	TokenSecret string
	TokenTTL    time.Duration
	Refresher   Refresher
	Seeder      catalog.Seeder
	SeedSink    SeedSink
}

type Server struct {
	Service *service.Service
	Echo    *echo.Echo

	refresher Refresher
	seeder    catalog.Seeder
	seedSink  SeedSink
	auth      *auth.Authenticator
	log       zerolog.Logger

	// Background job tracking
	jobMu      sync.Mutex
	runningJob *backgroundJob
}

type backgroundJob struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"` // running, completed, failed
	StartedAt time.Time          `json:"started_at"`
	EndedAt   time.Time          `json:"ended_at,omitempty"`
	Result    any                `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
	Cancel    context.CancelFunc `json:"-"`
}

func NewServer(svc *service.Service, opts Options) (*Server, error) {
	authn, err := auth.New(opts.AdminSecret, opts.TokenSecret, opts.TokenTTL)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = goJSONSerializer{}

	s := &Server{
		Service:   svc,
		Echo:      e,
		refresher: opts.Refresher,
		seeder:    opts.Seeder,
		seedSink:  opts.SeedSink,
		auth:      authn,
		log:       logging.Component("api"),
	}

	e.Use(middleware.RequestID())
	e.Use(requestContext)
	e.Use(s.requestLogger())
	e.Use(middleware.Recover())
	e.Use(recordMetrics)

	allowedOrigins := opts.CORSOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:4200"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, auth.HeaderAdminSecret},
	}))

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	s.Echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.Echo.Group("/api/v1")
	api.POST("/tracks/:id/analyze", s.handleAnalyze)
	api.GET("/tracks/:id/analysis", s.handleGetAnalysis)
	api.GET("/tracks/:id/matches", s.handleFindMatches)
	api.POST("/tracks/:id/submissions", s.handleSubmit)
	api.GET("/opportunities", s.handleListOpportunities)
	api.GET("/opportunities/:id", s.handleGetOpportunity)
	api.GET("/insights", s.handleInsights)
	api.GET("/submissions/stats", s.handleSubmissionStats)
	api.POST("/auth/token", s.handleIssueToken)

	admin := api.Group("/admin")
	admin.Use(s.auth.Middleware)
	admin.POST("/refresh", s.handleRefresh)
	admin.GET("/job/:id", s.handleJobStatus)
	admin.POST("/seed", s.handleSeed)
	admin.PATCH("/opportunities/:id/decision", s.handleDecision)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// Start serves on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	s.log.Info().Str("addr", addr).Msg("server starting")
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.jobMu.Lock()
	if s.runningJob != nil && s.runningJob.Cancel != nil {
		s.runningJob.Cancel()
	}
	s.jobMu.Unlock()
	return s.Echo.Shutdown(ctx)
}

func (s *Server) handleIssueToken(c echo.Context) error {
	tok, err := s.auth.IssueToken(c.Request().Header.Get(auth.HeaderAdminSecret))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid admin secret"})
	}
	return c.JSON(http.StatusOK, tok)
}
