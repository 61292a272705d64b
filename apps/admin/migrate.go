package main

import (
	"path"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/Blanc-byte/gradingsystem/fs"
)

var gooseRunFunc = goose.Run // mockable

func (cli *commandLine) migrate(args []string) error {
	dialect := cli.db.DriverName()
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return errors.Wrap(err, "setting migration dialect")
	}
	return gooseRunFunc(args[0], cli.db.DB, path.Join("migrations", dialect), args[1:]...)
}

func (cli *commandLine) seed() error {
	n, err := cli.rosterSvc.SeedSubjects(ctx())
	if err != nil {
		return err
	}
	cli.printf("%d subject(s) added\n", n)
	return nil
}
