package main

import (
	"errors"

	"github.com/trezcool/academia/storage/database"
)

var (
	gooseRunFunc = database.RunMigrations // mockable

	errNoDB = errors.New("migrations need the postgres storage")
)

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoDB
	}
	return gooseRunFunc(cli.db, args[0], args[1:]...)
}
