package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/grading"
)

type reportApi struct {
	svc *grading.Service
}

func registerGradingAPI(g *echo.Group, svc *grading.Service) {
	api := reportApi{svc: svc}

	g.GET("/transcripts/students/:studentID/terms/:termID", api.transcript)
	g.GET("/rankings/terms/:termID", api.ranking)
	g.GET("/statistics/subjects/:id", api.subjectStatistics)
	g.GET("/statistics/terms/:id", api.termStatistics)
}

func (api *reportApi) transcript(ctx echo.Context) error {
	tr, err := api.svc.Transcript(ctx.Request().Context(), ctx.Param("studentID"), ctx.Param("termID"))
	if err != nil {
		return errors.Wrap(err, "computing transcript")
	}
	return ctx.JSON(http.StatusOK, tr)
}

func (api *reportApi) ranking(ctx echo.Context) error {
	var filter grading.CohortFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to CohortFilter")
	}
	filter.DepartmentID = core.CleanString(filter.DepartmentID)
	filter.Level = strings.ToUpper(core.CleanString(filter.Level))

	rk, err := api.svc.Ranking(ctx.Request().Context(), ctx.Param("termID"), filter)
	if err != nil {
		return errors.Wrap(err, "computing ranking")
	}
	return ctx.JSON(http.StatusOK, rk)
}

func (api *reportApi) subjectStatistics(ctx echo.Context) error {
	stats, err := api.svc.SubjectStatistics(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "computing subject statistics")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *reportApi) termStatistics(ctx echo.Context) error {
	stats, err := api.svc.TermStatistics(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "computing term statistics")
	}
	return ctx.JSON(http.StatusOK, stats)
}
