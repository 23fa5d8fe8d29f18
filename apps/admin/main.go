package main

import (
	"context"
	"fmt"
	"os"

	"github.com/trezcool/brightspark/core"
	"github.com/trezcool/brightspark/core/data"
	"github.com/trezcool/brightspark/core/policy"
	"github.com/trezcool/brightspark/core/session"
	emailsvc "github.com/trezcool/brightspark/services/email"
	logsvc "github.com/trezcool/brightspark/services/logger"
	"github.com/trezcool/brightspark/storage/database"
)

func main() {
	conf := core.NewConfig()

	local, err := logsvc.NewLocalLogger(conf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setting up logger: %v\n", err)
		os.Exit(1)
	}
	logger := logsvc.NewRollbarLogger(local.Named("admin"), conf)

	backend, err := database.OpenBackend(context.Background(), conf, logger)
	errAndDie(logger, err)

	translator := core.NewTranslator()
	facade := data.NewFacade(
		backend.Store,
		policy.NewEngine(),
		data.NewValidator(translator),
		translator,
		emailsvc.NewService(conf, logger),
		logger,
	)
	codec := session.NewTokenCodec(conf.SecretKey, conf.AppName, conf.Session.TTL)

	// start CLI
	cli := commandLine{
		backend: backend,
		facade:  facade,
		session: session.Open(facade.Directory(), session.NewFileSlot(conf.Session.Path), codec, logger),
		out:     os.Stdout,
	}
	err = cli.run(os.Args)
	_ = backend.Close()
	logger.Sync()
	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(logger core.Logger, err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
