package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/Blanc-byte/gradingsystem/core"
	"github.com/Blanc-byte/gradingsystem/core/roster"
	"github.com/Blanc-byte/gradingsystem/core/teacher"
	logsvc "github.com/Blanc-byte/gradingsystem/services/logger"
	"github.com/Blanc-byte/gradingsystem/storage/database"
	sqlxrepos "github.com/Blanc-byte/gradingsystem/storage/database/sqlx"
)

func ctx() context.Context {
	return context.Background()
}

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	defer logger.Close()

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal("creating database", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	teacher.InitValidators(validate, translator)
	roster.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db:         db,
		teacherSvc: teacher.NewService(sqlxrepos.NewTeacherRepository(db), validate),
		rosterSvc:  roster.NewService(sqlxrepos.NewRosterRepository(db), validate),
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		logger.Close()
		os.Exit(1)
	}
}
