package main

import (
	"log"
	"os"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academic"
	"github.com/trezcool/academia/core/grading"
	"github.com/trezcool/academia/storage/database"
	"github.com/trezcool/academia/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)

	// start CLI
	repo := sqlxrepos.NewAcademicRepository(db)
	cli := commandLine{
		db:          db.DB,
		academicSvc: academic.NewService(repo),
		gradingSvc:  grading.NewService(grading.NewRepositoryStore(repo)),
		out:         os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
