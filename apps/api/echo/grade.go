package echoapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studash/dashboard/core/grade"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type gradeApi struct {
	svc      *grade.Service
	validate *validator.Validate
}

func registerGradeAPI(
	g *echo.Group,
	jwt, active echo.MiddlewareFunc,
	svc *grade.Service,
	validate *validator.Validate,
) {
	api := gradeApi{svc: svc, validate: validate}

	gg := g.Group("/grades", jwt, active)
	gg.GET("", api.query)
	gg.POST("", api.create)
	gg.GET("/summary", api.summary)
	gg.GET("/export", api.export)
}

// Handlers

func (api *gradeApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	grades, err := api.svc.QueryForUser(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	return ctx.JSON(http.StatusOK, newGradeViews(grades))
}

func (api *gradeApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data grade.NewGrade
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	g, err := api.svc.Create(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating grade")
	}
	return ctx.JSON(http.StatusCreated, newGradeView(g))
}

func (api *gradeApi) summary(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	grades, sum, err := api.svc.Summary(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "summarizing grades")
	}
	return ctx.JSON(http.StatusOK, GradeSummaryResponse{Summary: sum, Grades: newGradeViews(grades)})
}

func (api *gradeApi) export(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	grades, sum, err := api.svc.Summary(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "summarizing grades")
	}

	var buf bytes.Buffer
	if err = grade.WriteSpreadsheet(&buf, grades, sum); err != nil {
		return errors.Wrap(err, "writing spreadsheet")
	}
	ctx.Response().Header().Set(
		echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", "grades-"+usr.Username+".xlsx"),
	)
	return ctx.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

type (
	// GradeView is a Grade with its presentation band.
	GradeView struct {
		grade.Grade
		Severity grade.Severity `json:"severity"`
	}

	GradeSummaryResponse struct {
		Summary grade.Summary `json:"summary"`
		Grades  []GradeView   `json:"grades"`
	}
)

func newGradeView(g grade.Grade) GradeView {
	return GradeView{Grade: g, Severity: g.Severity()}
}

func newGradeViews(grades []grade.Grade) []GradeView {
	views := make([]GradeView, 0, len(grades))
	for _, g := range grades {
		views = append(views, newGradeView(g))
	}
	return views
}
