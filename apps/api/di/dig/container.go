package dig_container

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/academia/apps/api/echo"
	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academic"
	"github.com/trezcool/academia/core/grading"
	logsvc "github.com/trezcool/academia/services/logger"
	"github.com/trezcool/academia/storage/database"
	inmemdb "github.com/trezcool/academia/storage/database/inmem"
	sqlxrepos "github.com/trezcool/academia/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Store is the academic repository along with its backing DB; DB is nil for the in-memory storage.
type Store struct {
	dig.Out
	Repo academic.Repository
	DB   *sqlx.DB
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newStore(conf *core.Config, loggerParam DBLoggerParam) Store {
	if conf.Storage == core.StorageMemory {
		loggerParam.Logger.Info("using the in-memory storage")
		return Store{Repo: inmemdb.NewAcademicRepository(inmemdb.Open())}
	}

	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db.DB); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return Store{Repo: sqlxrepos.NewAcademicRepository(db), DB: db}
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStore))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(academic.NewService))
	must(c.Provide(grading.NewRepositoryStore, dig.As(new(grading.Store))))
	must(c.Provide(grading.NewService))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
