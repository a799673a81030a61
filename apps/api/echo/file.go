package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studash/dashboard/core/file"
)

type fileApi struct {
	svc      *file.Service
	validate *validator.Validate
}

func registerFileAPI(
	g *echo.Group,
	jwt, active echo.MiddlewareFunc,
	svc *file.Service,
	validate *validator.Validate,
) {
	api := fileApi{svc: svc, validate: validate}

	fg := g.Group("/files", jwt, active)
	fg.GET("", api.query)
	fg.POST("", api.create)
	fg.GET("/stats", api.stats)
	fg.DELETE("/:id", api.delete)
}

// Handlers

func (api *fileApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	files, err := api.svc.Query(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying files")
	}
	return ctx.JSON(http.StatusOK, files)
}

func (api *fileApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data file.NewFile
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFile")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	f, err := api.svc.Create(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "recording file")
	}
	return ctx.JSON(http.StatusCreated, f)
}

func (api *fileApi) stats(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	stats, err := api.svc.Stats(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "counting files")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *fileApi) delete(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return errHttpNotFound
	}
	if err = api.svc.Delete(ctx.Request().Context(), id, usr.ID); err != nil {
		return errors.Wrap(err, "deleting file")
	}
	return ctx.NoContent(http.StatusNoContent)
}
