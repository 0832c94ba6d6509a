package service

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/clawdhub/clawdhub"
	"github.com/clawdhub/clawdhub/internal/domain"
	"github.com/clawdhub/clawdhub/internal/usecase"
	"github.com/clawdhub/clawdhub/jwt"
)

var tracer = otel.Tracer("auth")

// AuthService resolves a bearer session token into the caller's
// authorization context: wallet address, user id and primary linked agent.
type AuthService struct {
	conf  domain.Config
	users usecase.UserRepository
	links usecase.LinkRepository
}

func NewAuthService(
	conf domain.Config,
	users usecase.UserRepository,
	links usecase.LinkRepository,
) *AuthService {
	return &AuthService{
		conf:  conf,
		users: users,
		links: links,
	}
}

type AuthResult struct {
	Address string
	UserID  string
	AgentID string
	Claims  *jwt.Claims
}

// AuthSession validates a session token and resolves the subject wallet to
// a user row and its primary linked agent. Any failure is returned as an
// error; callers that allow anonymous access degrade instead of refusing.
func (s *AuthService) AuthSession(ctx context.Context, token string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.AuthSession")
	defer span.End()

	_, claims, err := jwt.Validate(token)
	if err != nil {
		span.RecordError(errors.Wrap(err, "session validation failed"))
		return nil, err
	}

	if s.conf.FQDN != "" && claims.Audience != s.conf.FQDN {
		err := fmt.Errorf("session audience mismatch: expected %s, got %s", s.conf.FQDN, claims.Audience)
		span.RecordError(err)
		return nil, err
	}

	address := clawdhub.NormalizeAddress(claims.Subject)
	if !clawdhub.IsWalletAddress(address) {
		err := fmt.Errorf("session subject is not a wallet address")
		span.RecordError(err)
		return nil, err
	}

	// Never fabricate a user: the subject must already exist.
	user, err := s.users.GetByWallet(ctx, address)
	if err != nil {
		span.RecordError(errors.Wrap(err, "subject has no user row"))
		return nil, err
	}

	result := &AuthResult{
		Address: address,
		UserID:  user.ID,
		Claims:  claims,
	}

	agentID, err := s.links.PrimaryAgent(ctx, user.ID)
	if err != nil {
		// storage failure, not "no link"; abort rather than degrade silently
		span.RecordError(errors.Wrap(err, "primary agent lookup failed"))
		return nil, err
	}
	result.AgentID = agentID

	return result, nil
}
