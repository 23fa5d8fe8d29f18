package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof on http.DefaultServeMux

	dig_container "github.com/trezcool/brightspark/apps/api/di/dig"
	echoapi "github.com/trezcool/brightspark/apps/api/echo"
	"github.com/trezcool/brightspark/core"
	logsvc "github.com/trezcool/brightspark/services/logger"
	"github.com/trezcool/brightspark/storage/database"
)

func startWithDig() {
	c := dig_container.New()

	must(c.Invoke(func(
		conf *core.Config,
		loggerParam dig_container.LoggerParam,
		dbLoggerParam dig_container.DBLoggerParam,
		backend *database.Backend,
		server *echoapi.Server,
	) {
		// =========================================================================
		// Initialize App

		apiLogger := loggerParam.Logger
		apiLogger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build), map[string]interface{}{
			"env":   conf.Env,
			"store": conf.Store.Driver,
		})

		dbLogger := dbLoggerParam.Logger
		defer syncLoggers(apiLogger, dbLogger)
		defer func() {
			if err := backend.Close(); err != nil {
				dbLogger.Error("Failed to close", err)
			}
		}()
		defer apiLogger.Info("Application stopped")

		// =========================================================================
		// Start Debug Service
		//
		// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
		// /debug/vars - Added to the default mux by importing the expvar package.

		// Expose important info under /debug/vars.
		expvar.NewString("build").Set(conf.Build)
		expvar.NewString("env").Set(conf.Env)

		go func() {
			if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
				apiLogger.Error(fmt.Sprintf("debug server closed: %v", err), err)
			}
		}()

		// =========================================================================
		// Start API Service

		go func() {
			server.Start()
		}()

		// =========================================================================
		// Shutdown

		select {
		case err := <-server.Errors():
			apiLogger.Error(fmt.Sprintf("server error: %v", err), err)

		case sig := <-server.ShutdownSignal():
			apiLogger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

			// give outstanding requests a deadline for completion
			ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
			defer cancel()

			// asking listener to shut down and shed load
			if err := server.Shutdown(ctx); err != nil {
				apiLogger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

				if err = server.Close(); err != nil {
					apiLogger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
				}
			}
		}
	}))
}

func syncLoggers(loggers ...*logsvc.RollbarLogger) {
	for _, l := range loggers {
		l.Sync()
	}
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
