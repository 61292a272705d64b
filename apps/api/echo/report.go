package echoapi

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Blanc-byte/gradingsystem/core/grade"
	"github.com/Blanc-byte/gradingsystem/services/report"
)

type reportApi struct {
	svc *grade.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *grade.Service) {
	api := reportApi{svc: svc}

	sg := g.Group("/sections/:id", jwt)
	sg.GET("/report", api.section)
	sg.GET("/report.xlsx", api.sectionWorkbook)
	sg.GET("/students/:studentId/report", api.student)
}

// Handlers

func (api *reportApi) sectionReport(ctx echo.Context) (grade.SectionReport, error) {
	teacherID, err := getContextTeacherID(ctx)
	if err != nil {
		return grade.SectionReport{}, err
	}
	sectionID, err := pathID(ctx, "id")
	if err != nil {
		return grade.SectionReport{}, err
	}
	rep, err := api.svc.SectionReport(ctx.Request().Context(), teacherID, sectionID)
	return rep, errors.Wrap(err, "building section report")
}

func (api *reportApi) section(ctx echo.Context) error {
	rep, err := api.sectionReport(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *reportApi) sectionWorkbook(ctx echo.Context) error {
	rep, err := api.sectionReport(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err = reportsvc.WriteSectionReport(&buf, rep); err != nil {
		return errors.Wrap(err, "writing section workbook")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+reportsvc.FileName(rep)+`"`)
	return ctx.Blob(http.StatusOK, reportsvc.ContentType, buf.Bytes())
}

func (api *reportApi) student(ctx echo.Context) error {
	teacherID, err := getContextTeacherID(ctx)
	if err != nil {
		return err
	}
	sectionID, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	studentID, err := pathID(ctx, "studentId")
	if err != nil {
		return err
	}

	rep, err := api.svc.StudentReport(ctx.Request().Context(), teacherID, sectionID, studentID)
	if err != nil {
		return errors.Wrap(err, "building student report")
	}
	return ctx.JSON(http.StatusOK, rep)
}
