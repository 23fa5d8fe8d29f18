package echoapi

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/brightspark/core"
	"github.com/trezcool/brightspark/core/data"
	"github.com/trezcool/brightspark/core/lms"
	"github.com/trezcool/brightspark/core/user"
)

type resourceAPI struct {
	deps *Deps
}

func registerResourceAPI(g *echo.Group, auth echo.MiddlewareFunc, deps *Deps) {
	api := resourceAPI{deps: deps}

	// authed endpoints
	g.GET("/:type", api.list, auth)
	g.GET("/:type/:id", api.retrieve, auth)
	g.POST("/:type", api.create, auth)
	g.PATCH("/:type/:id", api.update, auth)
	g.DELETE("/:type/:id", api.destroy, auth)
}

// request resolves the signed in principal and the resource type named in the path.
func (api *resourceAPI) request(ctx echo.Context) (user.Principal, core.ResourceType, error) {
	p, err := contextPrincipal(ctx)
	if err != nil {
		return user.Principal{}, "", err
	}
	rt, err := lms.ParseType(ctx.Param("type"))
	if err != nil {
		return user.Principal{}, "", err
	}
	return p, rt, nil
}

func readBody(ctx echo.Context) ([]byte, error) {
	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return nil, core.NewValidationError(errors.Wrap(err, "reading payload"))
	}
	return body, nil
}

// Handlers

func (api *resourceAPI) list(ctx echo.Context) error {
	p, rt, err := api.request(ctx)
	if err != nil {
		return err
	}
	filters, err := data.ListFilters(rt, ctx.QueryParam("role"), ctx.QueryParam("subject_id"))
	if err != nil {
		return err
	}
	records, err := api.deps.Facade.List(ctx.Request().Context(), p, rt, filters...)
	if err != nil {
		return err
	}
	if records == nil {
		records = []core.Resource{}
	}

	var ord Ordering
	ord.Bind(ctx)
	if err = ord.Sort(records); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *resourceAPI) retrieve(ctx echo.Context) error {
	p, rt, err := api.request(ctx)
	if err != nil {
		return err
	}
	record, err := api.deps.Facade.Get(ctx.Request().Context(), p, rt, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, record)
}

func (api *resourceAPI) create(ctx echo.Context) error {
	p, rt, err := api.request(ctx)
	if err != nil {
		return err
	}
	body, err := readBody(ctx)
	if err != nil {
		return err
	}

	if rt == core.TypeUser {
		nu, err := lms.DecodeNewUser(body)
		if err != nil {
			return err
		}
		usr, err := api.deps.Facade.CreateUser(ctx.Request().Context(), p, nu)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusCreated, usr)
	}

	draft, err := lms.DecodeDraft(rt, body)
	if err != nil {
		return err
	}
	record, err := api.deps.Facade.Create(ctx.Request().Context(), p, rt, draft)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, record)
}

func (api *resourceAPI) update(ctx echo.Context) error {
	p, rt, err := api.request(ctx)
	if err != nil {
		return err
	}
	body, err := readBody(ctx)
	if err != nil {
		return err
	}
	patch, err := lms.DecodePatch(rt, body)
	if err != nil {
		return err
	}
	record, err := api.deps.Facade.Update(ctx.Request().Context(), p, rt, ctx.Param("id"), patch)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, record)
}

func (api *resourceAPI) destroy(ctx echo.Context) error {
	p, rt, err := api.request(ctx)
	if err != nil {
		return err
	}
	if err = api.deps.Facade.Delete(ctx.Request().Context(), p, rt, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
