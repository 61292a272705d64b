package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Blanc-byte/gradingsystem/core/roster"
)

type studentApi struct {
	svc *roster.Service
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *roster.Service) {
	api := studentApi{svc: svc}

	g.GET("/sections/:id/students", api.query, jwt)
	g.POST("/sections/:id/students", api.create, jwt)

	sg := g.Group("/students", jwt)
	sg.PATCH("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *studentApi) query(ctx echo.Context) error {
	teacherID, err := getContextTeacherID(ctx)
	if err != nil {
		return err
	}
	sectionID, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var subjectID int
	if err = echo.QueryParamsBinder(ctx).Int("subject_id", &subjectID).BindError(); err != nil {
		return errors.Wrap(err, "binding subject_id")
	}

	students, err := api.svc.ListStudentsBySection(ctx.Request().Context(), teacherID, sectionID, subjectID)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) create(ctx echo.Context) error {
	teacherID, err := getContextTeacherID(ctx)
	if err != nil {
		return err
	}
	sectionID, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data roster.NewStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	data.SectionID = sectionID

	st, err := api.svc.CreateStudent(ctx.Request().Context(), teacherID, data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, st)
}

func (api *studentApi) update(ctx echo.Context) error {
	teacherID, err := getContextTeacherID(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data roster.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}

	st, err := api.svc.UpdateStudent(ctx.Request().Context(), teacherID, id, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	teacherID, err := getContextTeacherID(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteStudent(ctx.Request().Context(), teacherID, id); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}
