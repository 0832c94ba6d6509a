package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/clawdhub/clawdhub/internal/domain"
	"github.com/clawdhub/clawdhub/internal/present/rest/presenter"
	"github.com/clawdhub/clawdhub/internal/service"
	"github.com/clawdhub/clawdhub/internal/usecase"
)

var tracer = otel.Tracer("auth")

// SessionCookieName carries the session token for browser callers. Bearer
// headers take precedence when both are present.
const SessionCookieName = "clawdhub_auth"

type AuthMiddleware struct {
	auth     *service.AuthService
	identity *usecase.IdentityUsecase
	config   domain.Config
}

func NewAuthMiddleware(
	auth *service.AuthService,
	identity *usecase.IdentityUsecase,
	config domain.Config,
) *AuthMiddleware {
	return &AuthMiddleware{
		auth:     auth,
		identity: identity,
		config:   config,
	}
}

// IdentifyIdentity resolves the caller's session token and reputation token
// into request-scoped identity. Resolution failures leave the request
// anonymous; handlers decide whether anonymous is acceptable.
func (s *AuthMiddleware) IdentifyIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifyIdentity")
		defer span.End()

		token := ""
		authHeader := c.Request().Header.Get("authorization")

		if authHeader != "" {
			split := strings.Split(authHeader, " ")
			if len(split) != 2 {
				span.RecordError(fmt.Errorf("invalid authentication header"))
				goto skipCheckAuthorization
			}

			authType, headerToken := split[0], split[1]
			if authType != "Bearer" {
				span.RecordError(fmt.Errorf("only Bearer is acceptable"))
				goto skipCheckAuthorization
			}
			token = headerToken
		} else {
			cookie, err := c.Cookie(SessionCookieName)
			if err == nil && cookie.Value != "" {
				token = cookie.Value
			}
		}

		if token != "" {
			result, err := s.auth.AuthSession(ctx, token)
			if err != nil {
				span.RecordError(errors.Wrap(err, "AuthMiddleware.IdentifyIdentity: s.auth.AuthSession failed"))
				goto skipCheckAuthorization
			}

			ctx = context.WithValue(ctx, domain.RequesterUserCtxKey, result.UserID)
			ctx = context.WithValue(ctx, domain.RequesterAddressCtxKey, result.Address)
			span.SetAttributes(attribute.String("RequesterUserId", result.UserID))

			if result.AgentID != "" {
				ctx = context.WithValue(ctx, domain.RequesterAgentCtxKey, result.AgentID)
				span.SetAttributes(attribute.String("RequesterAgentId", result.AgentID))
			}
		}

	skipCheckAuthorization:
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// IdentifyAgent resolves an X-Moltbook-Identity token into an agent,
// syncing the agent's profile snapshot as a side effect. Authorization
// failures from the oracle abort the request.
func (s *AuthMiddleware) IdentifyAgent(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifyAgent")
		defer span.End()

		identityToken := c.Request().Header.Get("X-Moltbook-Identity")
		if identityToken != "" {
			userID, _ := ctx.Value(domain.RequesterUserCtxKey).(string)
			agent, err := s.identity.VerifyAgent(ctx, identityToken, userID)
			if err != nil {
				span.RecordError(errors.Wrap(err, "AuthMiddleware.IdentifyAgent: s.identity.VerifyAgent failed"))
				return presenter.Resolve(c, err)
			}

			ctx = context.WithValue(ctx, domain.RequesterAgentCtxKey, agent.ID)
			span.SetAttributes(attribute.String("RequesterAgentId", agent.ID))
		}

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
