package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/studash/dashboard/core"
	"github.com/studash/dashboard/core/audit"
	"github.com/studash/dashboard/core/grade"
	"github.com/studash/dashboard/core/task"
	"github.com/studash/dashboard/core/user"
)

type (
	adminDeps struct {
		userSvc  user.ServiceInterface
		gradeSvc *grade.Service
		taskSvc  *task.Service
		auditSvc *audit.Service
	}

	adminApi struct {
		adminDeps
	}
)

func registerAdminAPI(g *echo.Group, jwt, active echo.MiddlewareFunc, deps adminDeps) {
	api := adminApi{deps}

	ag := g.Group("/admin", jwt, active, adminMiddleware)
	ag.GET("/dashboard", api.dashboard)
	ag.GET("/users", api.queryUsers)
	ag.POST("/users/:id/:action", api.transition)
	ag.GET("/audit", api.queryAudit)
	ag.GET("/roles", api.queryRoles)
}

// Handlers

func (api *adminApi) dashboard(ctx echo.Context) error {
	var (
		data DashboardResponse
		c    = ctx.Request().Context()
	)

	g, c := errgroup.WithContext(c)
	g.Go(func() (err error) {
		data.Users, err = api.userSvc.Stats(c)
		return errors.Wrap(err, "counting users")
	})
	g.Go(func() (err error) {
		data.Pending, err = api.userSvc.Pending(c)
		return errors.Wrap(err, "querying pending users")
	})
	g.Go(func() (err error) {
		data.RecentApprovals, err = api.userSvc.RecentApprovals(c)
		return errors.Wrap(err, "querying recent approvals")
	})
	g.Go(func() (err error) {
		data.Grades, err = api.gradeSvc.Stats(c)
		return errors.Wrap(err, "computing grade stats")
	})
	g.Go(func() (err error) {
		data.Tasks, err = api.taskSvc.Stats(c, 0)
		return errors.Wrap(err, "counting tasks")
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if data.Pending == nil {
		data.Pending = []user.User{}
	}
	if data.RecentApprovals == nil {
		data.RecentApprovals = []user.Approval{}
	}
	return ctx.JSON(http.StatusOK, data)
}

func (api *adminApi) queryUsers(ctx echo.Context) error {
	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	users, err := api.userSvc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *adminApi) transition(ctx echo.Context) error {
	principal, err := getPrincipal(ctx)
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return errHttpNotFound
	}
	action, err := user.ParseAction(ctx.Param("action"))
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "action", Error: "unknown action"})
	}

	meta := audit.RequestMeta{
		IPAddress: ctx.RealIP(),
		RequestID: ctx.Response().Header().Get(echo.HeaderXRequestID),
	}
	usr, err := api.userSvc.Transition(ctx.Request().Context(), id, action, principal, meta)
	if err != nil {
		return errors.Wrap(err, "transitioning user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *adminApi) queryAudit(ctx echo.Context) error {
	var filter audit.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	entries, err := api.auditSvc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying audit log")
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *adminApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.Roles)
}

type DashboardResponse struct {
	Users           user.Stats      `json:"users"`
	Pending         []user.User     `json:"pending"`
	RecentApprovals []user.Approval `json:"recent_approvals"`
	Grades          grade.Stats     `json:"grades"`
	Tasks           task.Stats      `json:"tasks"`
}
