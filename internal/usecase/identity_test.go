package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/clawdhub/clawdhub"
	"github.com/clawdhub/clawdhub/internal/domain"
	"github.com/clawdhub/clawdhub/jwt"
)

const testPrivKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func testConf(t *testing.T) domain.Config {
	t.Helper()
	address, err := clawdhub.PrivKeyToAddr(testPrivKey)
	if err != nil {
		t.Fatalf("failed to derive address: %v", err)
	}
	return domain.Config{
		FQDN:       "hub.example.com",
		PrivateKey: testPrivKey,
		Address:    address,
	}
}

func TestLoginIssuesSessionAndUpsertsUser(t *testing.T) {
	users := newMemUserRepo()
	oracle := &stubOracle{verifiedAddress: "0xabc0000000000000000000000000000000000001"}
	uc := NewIdentityUsecase(testConf(t), oracle, users, newMemAgentRepo(), newMemLinkRepo())

	token, address, err := uc.Login(context.Background(), clawdhub.LoginPayload{}, "0xsig")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if address != "0xabc0000000000000000000000000000000000001" {
		t.Fatalf("unexpected address: %s", address)
	}

	_, claims, err := jwt.Validate(token)
	if err != nil {
		t.Fatalf("issued session did not validate: %v", err)
	}
	if claims.Subject != address {
		t.Fatalf("session subject %s, want %s", claims.Subject, address)
	}
	if claims.Audience != "hub.example.com" {
		t.Fatalf("session audience %s", claims.Audience)
	}

	if len(users.users) != 1 {
		t.Fatalf("expected one user row, got %d", len(users.users))
	}
}

func TestLoginIsIdempotentPerWallet(t *testing.T) {
	users := newMemUserRepo()
	oracle := &stubOracle{verifiedAddress: "0xabc0000000000000000000000000000000000001"}
	uc := NewIdentityUsecase(testConf(t), oracle, users, newMemAgentRepo(), newMemLinkRepo())

	for i := 0; i < 2; i++ {
		if _, _, err := uc.Login(context.Background(), clawdhub.LoginPayload{}, "0xsig"); err != nil {
			t.Fatalf("login %d failed: %v", i, err)
		}
	}

	if len(users.users) != 1 {
		t.Fatalf("expected exactly one user row after repeated logins, got %d", len(users.users))
	}
	if users.upsertCalls != 2 {
		t.Fatalf("expected 2 upsert calls, got %d", users.upsertCalls)
	}
}

func TestLoginFailsClosed(t *testing.T) {
	users := newMemUserRepo()
	oracle := &stubOracle{verifyErr: domain.UnauthenticatedError{Code: "invalid_signature"}}
	uc := NewIdentityUsecase(testConf(t), oracle, users, newMemAgentRepo(), newMemLinkRepo())

	_, _, err := uc.Login(context.Background(), clawdhub.LoginPayload{}, "0xsig")
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
	if len(users.users) != 0 {
		t.Fatal("no user row may be created for a failed login")
	}
}

func TestChallengeRequiresAddress(t *testing.T) {
	uc := NewIdentityUsecase(testConf(t), &stubOracle{}, newMemUserRepo(), newMemAgentRepo(), newMemLinkRepo())

	_, err := uc.Challenge(context.Background(), "", nil)
	if !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("expected BadRequest, got %v", err)
	}
}

func TestVerifyAgentSynchronizesProfile(t *testing.T) {
	agents := newMemAgentRepo()
	raw := json.RawMessage(`{"id":"agent-1","name":"Clawd","karma":750,"extra":"kept"}`)
	handle := "clawd"
	oracle := &stubOracle{profile: clawdhub.AgentProfile{
		ID:        "agent-1",
		Name:      "Clawd",
		Karma:     750,
		IsClaimed: true,
		Owner:     &clawdhub.AgentOwner{XHandle: &handle},
		Raw:       raw,
	}}
	uc := NewIdentityUsecase(testConf(t), oracle, newMemUserRepo(), agents, newMemLinkRepo())

	agent, err := uc.VerifyAgent(context.Background(), "tok", "")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if agent.KarmaTier != domain.TierTrusted {
		t.Fatalf("expected trusted tier for karma 750, got %s", agent.KarmaTier)
	}

	stored, ok := agents.agents["agent-1"]
	if !ok {
		t.Fatal("agent was not upserted")
	}
	if stored.OwnerXHandle == nil || *stored.OwnerXHandle != "clawd" {
		t.Fatal("owner metadata was not carried over")
	}
	if string(stored.RawProfile) != string(raw) {
		t.Fatal("raw provider payload must be stored verbatim")
	}
}

func TestVerifyAgentLinksSessionUser(t *testing.T) {
	links := newMemLinkRepo()
	oracle := &stubOracle{profile: clawdhub.AgentProfile{ID: "agent-1", Name: "Clawd", Karma: 10}}
	uc := NewIdentityUsecase(testConf(t), oracle, newMemUserRepo(), newMemAgentRepo(), links)

	// repeated verification must not duplicate the link
	for i := 0; i < 2; i++ {
		if _, err := uc.VerifyAgent(context.Background(), "tok", "user-1"); err != nil {
			t.Fatalf("verify %d failed: %v", i, err)
		}
	}

	if len(links.links["user-1"]) != 1 {
		t.Fatalf("expected one link, got %d", len(links.links["user-1"]))
	}

	agentID, err := links.PrimaryAgent(context.Background(), "user-1")
	if err != nil || agentID != "agent-1" {
		t.Fatalf("primary agent = %q, %v", agentID, err)
	}
}

func TestVerifyAgentMissingToken(t *testing.T) {
	uc := NewIdentityUsecase(testConf(t), &stubOracle{}, newMemUserRepo(), newMemAgentRepo(), newMemLinkRepo())

	_, err := uc.VerifyAgent(context.Background(), "", "")
	var unauthErr domain.UnauthenticatedError
	if !errors.As(err, &unauthErr) || unauthErr.Code != "missing_identity_token" {
		t.Fatalf("expected missing_identity_token, got %v", err)
	}
}

func TestVerifyAgentOracleErrorsPassThrough(t *testing.T) {
	oracle := &stubOracle{profileErr: domain.MisconfiguredError{Code: "invalid_app_key"}}
	uc := NewIdentityUsecase(testConf(t), oracle, newMemUserRepo(), newMemAgentRepo(), newMemLinkRepo())

	_, err := uc.VerifyAgent(context.Background(), "tok", "")
	if !errors.Is(err, domain.ErrMisconfigured) {
		t.Fatalf("expected Misconfigured to pass through, got %v", err)
	}
}
