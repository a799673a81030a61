package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studash/dashboard/core"
	"github.com/studash/dashboard/core/blog"
)

type blogApi struct {
	svc      *blog.Service
	validate *validator.Validate
}

func registerBlogAPI(
	g *echo.Group,
	jwt, active echo.MiddlewareFunc,
	svc *blog.Service,
	validate *validator.Validate,
) {
	api := blogApi{svc: svc, validate: validate}

	bg := g.Group("/blog", jwt, active)
	bg.GET("", api.published)
	bg.POST("", api.create)
	bg.GET("/mine", api.mine)
	bg.PUT("/:id/status", api.updateStatus)
	bg.DELETE("/:id", api.delete)
}

type blogPostFilter struct {
	Status string `query:"status"`
}

func parsePostID(ctx echo.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}

// Handlers

func (api *blogApi) published(ctx echo.Context) error {
	posts, err := api.svc.Published(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying published posts")
	}
	return ctx.JSON(http.StatusOK, posts)
}

func (api *blogApi) mine(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var filter blogPostFilter
	if err = ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to blogPostFilter")
	}
	status := blog.Status(core.CleanString(filter.Status, true /* lower */))

	posts, err := api.svc.Mine(ctx.Request().Context(), usr.ID, status)
	if err != nil {
		return errors.Wrap(err, "querying own posts")
	}
	return ctx.JSON(http.StatusOK, posts)
}

func (api *blogApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data blog.NewPost
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPost")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.Create(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating post")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *blogApi) updateStatus(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := parsePostID(ctx)
	if err != nil {
		return err
	}

	var data blog.UpdateStatus
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStatus")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.UpdateStatus(ctx.Request().Context(), id, usr.ID, blog.Status(data.Status))
	if err != nil {
		return errors.Wrap(err, "updating post status")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *blogApi) delete(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	id, err := parsePostID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id, usr.ID); err != nil {
		return errors.Wrap(err, "deleting post")
	}
	return ctx.NoContent(http.StatusNoContent)
}
