package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academic"
	"github.com/trezcool/academia/core/grading"
)

type Server struct {
	conf     *core.Config
	app      *echo.Echo
	errors   chan error
	shutdown chan os.Signal
}

func NewServer(
	conf *core.Config,
	logger core.Logger,
	academicSvc *academic.Service,
	gradingSvc *grading.Service,
	validate *validator.Validate,
	translator ut.Translator,
) *Server {
	s := &Server{
		conf:     conf,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(logger, translator, s.signalShutdown)
	s.app.Debug = conf.Debug && !conf.TestMode
	s.app.HideBanner = true

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	registerAcademicAPI(v1, academicSvc, validate)
	registerGradingAPI(v1, gradingSvc)

	return s
}

// Start listens on the configured address; any failure other than a shutdown is sent to Errors.
func (s *Server) Start() {
	srv := &http.Server{
		Addr:         s.conf.Server.Address,
		ReadTimeout:  s.conf.Server.ReadTimeout,
		WriteTimeout: s.conf.Server.WriteTimeout,
	}
	if err := s.app.StartServer(srv); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.conf.AppName+" API!")
}
