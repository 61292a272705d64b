package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/Blanc-byte/gradingsystem/core"
	"github.com/Blanc-byte/gradingsystem/core/grade"
	"github.com/Blanc-byte/gradingsystem/core/roster"
	"github.com/Blanc-byte/gradingsystem/core/teacher"
)

type (
	// Deps holds the services the API is built on.
	Deps struct {
		TeacherSvc *teacher.Service
		RosterSvc  *roster.Service
		GradeSvc   *grade.Service
		Validate   *validator.Validate
		Translator ut.Translator
		Registerer prometheus.Registerer // defaults to a private registry
	}

	Server struct {
		conf     *core.Config
		app      *echo.Echo
		deps     *Deps
		tokens   tokenIssuer
		metrics  *metrics
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(conf *core.Config, logger core.Logger, deps *Deps) *Server {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.NewRegistry()
	}
	s := &Server{
		conf:     conf,
		app:      echo.New(),
		deps:     deps,
		tokens:   newTokenIssuer(conf),
		metrics:  newMetrics(deps.Registerer),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup(logger)
	return s
}

func (s *Server) setup(logger core.Logger) {
	s.app.HideBanner = true
	s.app.Debug = s.conf.Debug
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(logger, s.deps.Translator, s.SignalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !s.conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	s.app.Use(s.metrics.middleware())

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	jwt := s.tokens.middleware()

	registerTeacherAPI(v1, jwt, s.rateLimiter(), s.tokens, s.deps.TeacherSvc, s.deps.Validate)
	registerSectionAPI(v1, jwt, s.deps.RosterSvc)
	registerStudentAPI(v1, jwt, s.deps.RosterSvc)
	registerSubjectAPI(v1, jwt, s.deps.RosterSvc)
	registerGradeAPI(v1, jwt, s.deps.GradeSvc, s.metrics)
	registerReportAPI(v1, jwt, s.deps.GradeSvc)
}

// rateLimiter throttles the unauthenticated endpoints per client IP.
func (s *Server) rateLimiter() echo.MiddlewareFunc {
	if s.conf.Server.AuthRateLimit <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(s.conf.Server.AuthRateLimit),
		Burst:     10,
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiter(store)
}

// Start serves until the server is shut down. Failures are sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown asks the owner of the server to shut it down gracefully.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

// TokenFor returns a signed token authenticating t.
func (s *Server) TokenFor(t teacher.Teacher) (string, error) {
	return s.tokens.generate(s.tokens.claims(t))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.conf.AppName+" API!")
}
