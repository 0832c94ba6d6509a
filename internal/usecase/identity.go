package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/clawdhub/clawdhub"
	"github.com/clawdhub/clawdhub/internal/domain"
	"github.com/clawdhub/clawdhub/jwt"
)

// Sessions stay valid for a fixed window; there is no server-side revocation
// list, so logout is client-side-only token discard.
const sessionValidity = 7 * 24 * time.Hour

type IdentityUsecase struct {
	conf   domain.Config
	oracle IdentityOracle
	users  UserRepository
	agents AgentRepository
	links  LinkRepository
}

func NewIdentityUsecase(
	conf domain.Config,
	oracle IdentityOracle,
	users UserRepository,
	agents AgentRepository,
	links LinkRepository,
) *IdentityUsecase {
	return &IdentityUsecase{
		conf:   conf,
		oracle: oracle,
		users:  users,
		agents: agents,
		links:  links,
	}
}

// Challenge requests a login challenge for the wallet address.
func (uc *IdentityUsecase) Challenge(ctx context.Context, address string, chainID *int64) (clawdhub.LoginPayload, error) {
	if address == "" {
		return clawdhub.LoginPayload{}, domain.BadRequestError{Code: "missing_address"}
	}
	return uc.oracle.GenerateLoginPayload(ctx, address, chainID)
}

// Login verifies a signed challenge, upserts the user row and issues a
// session token bound to the wallet address.
func (uc *IdentityUsecase) Login(ctx context.Context, payload clawdhub.LoginPayload, signature string) (string, string, error) {
	address, err := uc.oracle.VerifyLoginPayload(ctx, payload, signature)
	if err != nil {
		return "", "", err
	}

	if _, err := uc.users.Upsert(ctx, address); err != nil {
		return "", "", errors.Wrap(err, "user upsert failed")
	}

	now := time.Now()
	token, err := jwt.Create(jwt.Claims{
		Issuer:         uc.conf.Address,
		Subject:        address,
		Audience:       uc.conf.FQDN,
		IssuedAt:       strconv.FormatInt(now.Unix(), 10),
		ExpirationTime: strconv.FormatInt(now.Add(sessionValidity).Unix(), 10),
	}, uc.conf.PrivateKey)
	if err != nil {
		return "", "", errors.Wrap(err, "session issuance failed")
	}

	return token, address, nil
}

// VerifyAgent verifies an identity token against the reputation oracle and
// synchronizes the returned profile snapshot. When userID is non-empty the
// verified agent is linked to that user; the link is idempotent and never
// replaces an earlier link as primary.
func (uc *IdentityUsecase) VerifyAgent(ctx context.Context, token, userID string) (domain.Agent, error) {
	if token == "" {
		return domain.Agent{}, domain.UnauthenticatedError{Code: "missing_identity_token"}
	}

	profile, err := uc.oracle.VerifyIdentity(ctx, token)
	if err != nil {
		return domain.Agent{}, err
	}

	agent := AgentFromProfile(profile)
	if err := uc.agents.Upsert(ctx, agent); err != nil {
		return domain.Agent{}, errors.Wrap(err, "agent upsert failed")
	}

	if userID != "" {
		if err := uc.links.Link(ctx, userID, agent.ID); err != nil {
			return domain.Agent{}, errors.Wrap(err, "agent link failed")
		}
	}

	return agent, nil
}

// AgentFromProfile maps an oracle profile to the stored agent shape. The raw
// payload is carried verbatim.
func AgentFromProfile(profile clawdhub.AgentProfile) domain.Agent {
	agent := domain.Agent{
		ID:         profile.ID,
		Name:       profile.Name,
		Karma:      profile.Karma,
		KarmaTier:  domain.TierForKarma(profile.Karma),
		AvatarURL:  profile.AvatarURL,
		IsClaimed:  profile.IsClaimed,
		RawProfile: profile.Raw,
	}
	if profile.Owner != nil {
		agent.OwnerXHandle = profile.Owner.XHandle
		agent.OwnerXVerified = profile.Owner.XVerified
	}
	return agent
}
