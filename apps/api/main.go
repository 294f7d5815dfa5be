package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/dig"

	dig_container "github.com/trezcool/academia/apps/api/di/dig"
	echoapi "github.com/trezcool/academia/apps/api/echo"
	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academic"
)

type deps struct {
	dig.In

	Conf          *core.Config
	Logger        core.Logger
	DBLoggerParam dig_container.DBLoggerParam
	DB            *sqlx.DB
	Validate      *validator.Validate
	Translator    ut.Translator
	Server        *echoapi.Server
}

func main() {
	c := dig_container.New()
	must(c.Invoke(run))
}

func run(d deps) {
	conf, logger := d.Conf, d.Logger

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))

	core.InitValidators(d.Validate, d.Translator)
	academic.InitValidators(d.Validate, d.Translator)

	if d.DB != nil {
		dbLogger := d.DBLoggerParam.Logger
		defer func() {
			if err := d.DB.Close(); err != nil {
				dbLogger.Fatal("Failed to close", err)
			}
		}()
	}
	if f, ok := logger.(interface{ Flush() }); ok {
		defer f.Flush() // pending rollbar reports
	}
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("storage").Set(conf.Storage)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	go func() {
		d.Server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-d.Server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-d.Server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shut down and shed load
		if err := d.Server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = d.Server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
