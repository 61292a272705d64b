package dig_container

import (
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	echoapi "github.com/Blanc-byte/gradingsystem/apps/api/echo"
	"github.com/Blanc-byte/gradingsystem/core"
	"github.com/Blanc-byte/gradingsystem/core/grade"
	"github.com/Blanc-byte/gradingsystem/core/roster"
	"github.com/Blanc-byte/gradingsystem/core/teacher"
	logsvc "github.com/Blanc-byte/gradingsystem/services/logger"
	"github.com/Blanc-byte/gradingsystem/storage/database"
	sqlxrepos "github.com/Blanc-byte/gradingsystem/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, core.DB, core.DBExecutor) {
	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, db, db
}

// newValidator returns the validator with every custom validation and translation registered.
func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	teacher.InitValidators(validate, translator)
	roster.InitValidators(validate, translator)
	return validate
}

func newGradeService(db core.DB, repo grade.Repository, rosterSvc *roster.Service, teacherSvc *teacher.Service) *grade.Service {
	return grade.NewService(db, repo, rosterSvc, teacherSvc)
}

func newDeps(
	teacherSvc *teacher.Service,
	rosterSvc *roster.Service,
	gradeSvc *grade.Service,
	validate *validator.Validate,
	translator ut.Translator,
) *echoapi.Deps {
	return &echoapi.Deps{
		TeacherSvc: teacherSvc,
		RosterSvc:  rosterSvc,
		GradeSvc:   gradeSvc,
		Validate:   validate,
		Translator: translator,
		Registerer: prometheus.DefaultRegisterer,
	}
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(sqlxrepos.NewTeacherRepository, dig.As(new(teacher.Repository))))
	must(c.Provide(sqlxrepos.NewRosterRepository, dig.As(new(roster.Repository))))
	must(c.Provide(sqlxrepos.NewGradeRepository, dig.As(new(grade.Repository))))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(teacher.NewService))
	must(c.Provide(roster.NewService))
	must(c.Provide(newGradeService))
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
