package dig_container

import (
	"context"
	"fmt"
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	echoapi "github.com/trezcool/brightspark/apps/api/echo"
	"github.com/trezcool/brightspark/core"
	"github.com/trezcool/brightspark/core/data"
	"github.com/trezcool/brightspark/core/policy"
	"github.com/trezcool/brightspark/core/session"
	emailsvc "github.com/trezcool/brightspark/services/email"
	logsvc "github.com/trezcool/brightspark/services/logger"
	"github.com/trezcool/brightspark/storage/database"
)

type DBLoggerParam struct {
	dig.In
	Logger *logsvc.RollbarLogger `name:"dbLogger"`
}

type LoggerParam struct {
	dig.In
	Logger *logsvc.RollbarLogger `name:"apiLogger"`
}

func newLocalLogger(conf *core.Config) *zap.Logger {
	local, err := logsvc.NewLocalLogger(conf)
	if err != nil {
		log.Fatalf("setting up logger: %v", err)
	}
	return local
}

func newLogger(local *zap.Logger, conf *core.Config) *logsvc.RollbarLogger {
	return logsvc.NewRollbarLogger(local.Named("api"), conf)
}

func newDBLogger(local *zap.Logger, conf *core.Config) *logsvc.RollbarLogger {
	return logsvc.NewRollbarLogger(local.Named("db"), conf)
}

func newCoreLogger(param LoggerParam) core.Logger {
	return param.Logger
}

func newBackend(conf *core.Config, loggerParam DBLoggerParam) *database.Backend {
	backend, err := database.OpenBackend(context.Background(), conf, loggerParam.Logger)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up %s store: %v", conf.Store.Driver, err), err)
	}
	return backend
}

func newStore(backend *database.Backend) data.Store {
	return backend.Store
}

func newTokenCodec(conf *core.Config) *session.TokenCodec {
	return session.NewTokenCodec(conf.SecretKey, conf.AppName, conf.Session.TTL)
}

type depsParam struct {
	dig.In
	Facade     *data.Facade
	Codec      *session.TokenCodec
	Validate   *validator.Validate
	Translator ut.Translator
	Logger     core.Logger
}

func newDeps(param depsParam) *echoapi.Deps {
	return &echoapi.Deps{
		Facade:     param.Facade,
		Codec:      param.Codec,
		Validate:   param.Validate,
		Translator: param.Translator,
		Logger:     param.Logger,
	}
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLocalLogger))
	must(c.Provide(newLogger, dig.Name("apiLogger")))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newCoreLogger))
	must(c.Provide(newBackend))
	must(c.Provide(newStore))
	must(c.Provide(emailsvc.NewService))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(data.NewValidator))
	must(c.Provide(policy.NewEngine))
	must(c.Provide(data.NewFacade))
	must(c.Provide(newTokenCodec))
	must(c.Provide(newDeps))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
