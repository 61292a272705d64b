package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Blanc-byte/gradingsystem/core/roster"
)

type subjectApi struct {
	svc *roster.Service
}

func registerSubjectAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *roster.Service) {
	api := subjectApi{svc: svc}

	g.GET("/subjects", api.query, jwt)
	g.GET("/sections/:id/subjects", api.querySection, jwt)
}

// Handlers

func (api *subjectApi) query(ctx echo.Context) error {
	subjects, err := api.svc.ListSubjects(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *subjectApi) querySection(ctx echo.Context) error {
	teacherID, err := getContextTeacherID(ctx)
	if err != nil {
		return err
	}
	sectionID, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	subjects, err := api.svc.ListSubjectsUsedInSection(ctx.Request().Context(), teacherID, sectionID)
	if err != nil {
		return errors.Wrap(err, "querying section subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}
