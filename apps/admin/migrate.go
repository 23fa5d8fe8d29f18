package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/trezcool/brightspark/core/data"
	"github.com/trezcool/brightspark/storage/database"
	"github.com/trezcool/brightspark/storage/database/fixtures"
)

var (
	migrateFunc = database.Migrate // mockable

	errNoDatabase = errors.New("migrations need the postgres store driver")
)

func (cli *commandLine) migrate(args []string) error {
	if cli.backend.DB == nil {
		return errNoDatabase
	}
	return migrateFunc(cli.backend.DB.DB, args[0], args[1:]...)
}

// seed loads the demo dataset, keeping the demo identifiers.
func (cli *commandLine) seed() error {
	seeder, ok := cli.backend.Store.(data.Seeder)
	if !ok {
		return fmt.Errorf("%T cannot be seeded", cli.backend.Store)
	}
	records := fixtures.All()
	if err := seeder.Seed(context.Background(), records...); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cli.out, "Seeded %d records\n", len(records))
	return err
}
