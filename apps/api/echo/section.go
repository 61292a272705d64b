package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Blanc-byte/gradingsystem/core/roster"
)

type sectionApi struct {
	svc *roster.Service
}

func registerSectionAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *roster.Service) {
	api := sectionApi{svc: svc}

	sg := g.Group("/sections", jwt)
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.GET("/stats", api.stats)

	// detail endpoints
	sg.GET("/:id", api.retrieve)
	sg.PATCH("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *sectionApi) query(ctx echo.Context) error {
	teacherID, err := getContextTeacherID(ctx)
	if err != nil {
		return err
	}
	sections, err := api.svc.ListSectionsByTeacher(ctx.Request().Context(), teacherID)
	if err != nil {
		return errors.Wrap(err, "querying sections")
	}
	return ctx.JSON(http.StatusOK, sections)
}

func (api *sectionApi) create(ctx echo.Context) error {
	teacherID, err := getContextTeacherID(ctx)
	if err != nil {
		return err
	}
	var data roster.NewSection
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSection")
	}

	sec, err := api.svc.CreateSection(ctx.Request().Context(), teacherID, data)
	if err != nil {
		return errors.Wrap(err, "creating section")
	}
	return ctx.JSON(http.StatusCreated, sec)
}

func (api *sectionApi) stats(ctx echo.Context) error {
	var filter roster.StatsFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to StatsFilter")
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	stats, err := api.svc.SectionStats(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying section stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *sectionApi) retrieve(ctx echo.Context) error {
	teacherID, err := getContextTeacherID(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	sec, err := api.svc.GetSection(ctx.Request().Context(), teacherID, id)
	if err != nil {
		return errors.Wrap(err, "getting section")
	}
	return ctx.JSON(http.StatusOK, sec)
}

func (api *sectionApi) update(ctx echo.Context) error {
	teacherID, err := getContextTeacherID(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data roster.UpdateSection
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSection")
	}

	sec, err := api.svc.UpdateSection(ctx.Request().Context(), teacherID, id, data)
	if err != nil {
		return errors.Wrap(err, "updating section")
	}
	return ctx.JSON(http.StatusOK, sec)
}

func (api *sectionApi) destroy(ctx echo.Context) error {
	teacherID, err := getContextTeacherID(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteSection(ctx.Request().Context(), teacherID, id); err != nil {
		return errors.Wrap(err, "deleting section")
	}
	return ctx.NoContent(http.StatusNoContent)
}
