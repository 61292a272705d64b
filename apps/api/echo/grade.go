package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Blanc-byte/gradingsystem/core/grade"
)

type gradeApi struct {
	svc     *grade.Service
	metrics *metrics
}

func registerGradeAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *grade.Service, m *metrics) {
	api := gradeApi{svc: svc, metrics: m}

	g.GET("/sections/:id/grades/exists", api.exists, jwt)
	g.POST("/sections/:id/grades", api.submit, jwt)
	g.GET("/dashboard", api.dashboard, jwt)
}

// Handlers

func (api *gradeApi) exists(ctx echo.Context) error {
	teacherID, err := getContextTeacherID(ctx)
	if err != nil {
		return err
	}
	sectionID, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var subjectID, quarter int
	err = echo.QueryParamsBinder(ctx).
		Int("subject_id", &subjectID).
		Int("quarter", &quarter).
		BindError()
	if err != nil {
		return errors.Wrap(err, "binding query params")
	}

	res, err := api.svc.GradesExist(ctx.Request().Context(), teacherID, sectionID, subjectID, quarter)
	if err != nil {
		return errors.Wrap(err, "checking grades")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *gradeApi) submit(ctx echo.Context) error {
	teacherID, err := getContextTeacherID(ctx)
	if err != nil {
		return err
	}
	sectionID, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data SubmitGradesRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitGradesRequest")
	}

	count, err := api.svc.SubmitGrades(ctx.Request().Context(), teacherID, sectionID, data.GradeItems())
	if err != nil {
		return errors.Wrap(err, "submitting grades")
	}
	api.metrics.observeSubmission(len(data.Items), count)
	return ctx.JSON(http.StatusOK, SubmitGradesResponse{Success: true, Count: count})
}

func (api *gradeApi) dashboard(ctx echo.Context) error {
	dash, err := api.svc.DashboardStats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing dashboard stats")
	}
	return ctx.JSON(http.StatusOK, dash)
}
