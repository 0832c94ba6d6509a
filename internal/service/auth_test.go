package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/clawdhub/clawdhub"
	"github.com/clawdhub/clawdhub/internal/domain"
	"github.com/clawdhub/clawdhub/jwt"
)

const testPrivKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

const testWallet = "0xabc0000000000000000000000000000000000001"

type mockUserRepo struct {
	users map[string]domain.User
}

func (m *mockUserRepo) Upsert(ctx context.Context, walletAddress string) (domain.User, error) {
	u := domain.User{ID: "user-" + walletAddress, WalletAddress: walletAddress}
	m.users[walletAddress] = u
	return u, nil
}

func (m *mockUserRepo) GetByWallet(ctx context.Context, walletAddress string) (domain.User, error) {
	u, ok := m.users[walletAddress]
	if !ok {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	return u, nil
}

type mockLinkRepo struct {
	links map[string][]domain.LinkedAgent
}

func (m *mockLinkRepo) PrimaryAgent(ctx context.Context, userID string) (string, error) {
	agentID, _ := domain.PrimaryLink(m.links[userID])
	return agentID, nil
}

func (m *mockLinkRepo) Link(ctx context.Context, userID, agentID string) error {
	m.links[userID] = append(m.links[userID], domain.LinkedAgent{
		UserID:  userID,
		AgentID: agentID,
	})
	return nil
}

func testService(t *testing.T) (*AuthService, *mockUserRepo, *mockLinkRepo, domain.Config) {
	t.Helper()
	address, err := clawdhub.PrivKeyToAddr(testPrivKey)
	if err != nil {
		t.Fatalf("failed to derive address: %v", err)
	}
	conf := domain.Config{
		FQDN:       "hub.example.com",
		PrivateKey: testPrivKey,
		Address:    address,
	}
	users := &mockUserRepo{users: map[string]domain.User{}}
	links := &mockLinkRepo{links: map[string][]domain.LinkedAgent{}}
	return NewAuthService(conf, users, links), users, links, conf
}

func issueToken(t *testing.T, conf domain.Config, subject string) string {
	t.Helper()
	now := time.Now()
	token, err := jwt.Create(jwt.Claims{
		Issuer:         conf.Address,
		Subject:        subject,
		Audience:       conf.FQDN,
		IssuedAt:       strconv.FormatInt(now.Unix(), 10),
		ExpirationTime: strconv.FormatInt(now.Add(time.Hour).Unix(), 10),
	}, conf.PrivateKey)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return token
}

func TestAuthSessionResolvesUserAndPrimaryAgent(t *testing.T) {
	svc, users, links, conf := testService(t)
	users.users[testWallet] = domain.User{ID: "user-1", WalletAddress: testWallet}

	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	links.links["user-1"] = []domain.LinkedAgent{
		{UserID: "user-1", AgentID: "second", LinkedAt: t1.Add(time.Hour)},
		{UserID: "user-1", AgentID: "first", LinkedAt: t1},
	}

	token := issueToken(t, conf, testWallet)

	for i := 0; i < 3; i++ {
		result, err := svc.AuthSession(context.Background(), token)
		if err != nil {
			t.Fatalf("auth failed: %v", err)
		}
		if result.UserID != "user-1" {
			t.Fatalf("user = %s", result.UserID)
		}
		if result.AgentID != "first" {
			t.Fatalf("primary agent = %s, want first (earliest link)", result.AgentID)
		}
	}
}

func TestAuthSessionNoLinkedAgent(t *testing.T) {
	svc, users, _, conf := testService(t)
	users.users[testWallet] = domain.User{ID: "user-1", WalletAddress: testWallet}

	result, err := svc.AuthSession(context.Background(), issueToken(t, conf, testWallet))
	if err != nil {
		t.Fatalf("auth failed: %v", err)
	}
	if result.AgentID != "" {
		t.Fatalf("expected no agent, got %s", result.AgentID)
	}
}

func TestAuthSessionUnknownUser(t *testing.T) {
	svc, _, _, conf := testService(t)

	// valid token, but no user row: the resolver must not fabricate one
	if _, err := svc.AuthSession(context.Background(), issueToken(t, conf, testWallet)); err == nil {
		t.Fatal("expected error for unknown user")
	}
}

func TestAuthSessionAudienceMismatch(t *testing.T) {
	svc, users, _, conf := testService(t)
	users.users[testWallet] = domain.User{ID: "user-1", WalletAddress: testWallet}

	other := conf
	other.FQDN = "other.example.com"
	if _, err := svc.AuthSession(context.Background(), issueToken(t, other, testWallet)); err == nil {
		t.Fatal("expected audience mismatch to fail")
	}
}

func TestAuthSessionGarbageToken(t *testing.T) {
	svc, _, _, _ := testService(t)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := svc.AuthSession(context.Background(), token); err == nil {
			t.Fatalf("expected token %q to fail", token)
		}
	}
}
