package echoapi

import (
	"net/http"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/brightspark/core"
	"github.com/trezcool/brightspark/core/session"
	"github.com/trezcool/brightspark/core/user"
)

const (
	contextTokenKey     = "userToken"
	contextPrincipalKey = "principal"
)

// jwtConfig returns the JWT auth middleware config accepting the session tokens issued by codec.
func jwtConfig(codec *session.TokenCodec) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    codec.SigningKey(),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(session.Claims),
	}
}

// authMiddleware requires a valid session token and stores the principal it represents in the context.
func authMiddleware(codec *session.TokenCodec) echo.MiddlewareFunc {
	jwtMiddleware := middleware.JWTWithConfig(jwtConfig(codec))
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return jwtMiddleware(func(ctx echo.Context) error {
			token, ok := ctx.Get(contextTokenKey).(*jwt.Token)
			if !ok {
				return errUnauthorized
			}
			claims, ok := token.Claims.(*session.Claims)
			if !ok {
				return errUnauthorized
			}
			p, err := codec.Verify(claims)
			if err != nil {
				return err
			}
			ctx.Set(contextPrincipalKey, p)
			return next(ctx)
		})
	}
}

func contextPrincipal(ctx echo.Context) (user.Principal, error) {
	if p, ok := ctx.Get(contextPrincipalKey).(user.Principal); ok {
		return p, nil
	}
	return user.Principal{}, errors.Wrap(session.ErrInvalidToken, "no principal in context")
}

type (
	authAPI struct {
		deps *Deps
	}

	loginResponse struct {
		Token string   `json:"token"`
		User  userView `json:"user"`
	}

	userView struct {
		ID    string    `json:"id"`
		Name  string    `json:"name"`
		Role  user.Role `json:"role"`
		OrgID string    `json:"org_id,omitempty"`
	}
)

func viewOf(p user.Principal) userView {
	org, _ := p.OrgAffiliation()
	return userView{ID: p.ID(), Name: p.Name(), Role: p.Role(), OrgID: org}
}

func registerAuthAPI(g *echo.Group, auth echo.MiddlewareFunc, deps *Deps) {
	api := authAPI{deps: deps}

	// un-authed endpoints
	g.POST("/login", api.login)

	// authed endpoints
	g.GET("/me", api.me, auth)
	g.POST("/refresh-token", api.refreshToken, auth)
}

// Handlers

func (api *authAPI) login(ctx echo.Context) error {
	var creds session.Credentials
	if err := ctx.Bind(&creds); err != nil {
		return core.NewValidationError(errors.Wrap(err, "malformed credentials"))
	}
	if err := core.ValidateStruct(api.deps.Validate, api.deps.Translator, creds); err != nil {
		return err
	}

	p, err := session.Authenticate(ctx.Request().Context(), api.deps.Facade.Directory(), creds)
	if err != nil {
		return err
	}
	token, err := api.deps.Codec.Issue(p)
	if err != nil {
		return errors.Wrap(err, "issuing token")
	}
	return ctx.JSON(http.StatusOK, loginResponse{Token: token, User: viewOf(p)})
}

func (api *authAPI) me(ctx echo.Context) error {
	p, err := contextPrincipal(ctx)
	if err != nil {
		return err
	}
	usr, err := api.deps.Facade.Directory().FindByID(ctx.Request().Context(), p.ID())
	if err != nil {
		return errors.Wrap(err, "finding signed in user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

// refreshToken issues a new token from the current state of the signed in account,
// so that role and affiliation changes take effect.
func (api *authAPI) refreshToken(ctx echo.Context) error {
	p, err := contextPrincipal(ctx)
	if err != nil {
		return err
	}
	usr, err := api.deps.Facade.Directory().FindByID(ctx.Request().Context(), p.ID())
	if errors.Is(err, core.ErrNotFound) {
		return errors.Wrap(session.ErrInvalidToken, "account no longer exists")
	} else if err != nil {
		return errors.Wrap(err, "finding signed in user")
	}
	if p, err = usr.Principal(); err != nil {
		return errors.Wrapf(err, "user %s", usr.ID)
	}
	token, err := api.deps.Codec.Issue(p)
	if err != nil {
		return errors.Wrap(err, "issuing token")
	}
	return ctx.JSON(http.StatusOK, loginResponse{Token: token, User: viewOf(p)})
}
