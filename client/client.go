package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"

	"github.com/clawdhub/clawdhub"
	"github.com/clawdhub/clawdhub/internal/domain"
)

const (
	defaultTimeout   = 3 * time.Second
	identityCacheTTL = 5 * time.Minute
)

// Config holds the endpoints and secrets for the two identity oracles.
type Config struct {
	WalletAuthURL    string
	WalletAuthSecret string
	MoltbookURL      string
	MoltbookAppKey   string
}

// Client talks to the wallet-auth provider and the reputation oracle and
// normalizes their responses into typed results. It never persists anything.
type Client struct {
	client *http.Client
	cache  *cache.Cache
	conf   Config
}

func New(conf Config) *Client {
	return &Client{
		client: &http.Client{Timeout: defaultTimeout},
		cache:  cache.New(identityCacheTTL, 2*identityCacheTTL),
		conf:   conf,
	}
}

func (c *Client) postJSON(ctx context.Context, url string, headers map[string]string, body any, response any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(response)
}

// GenerateLoginPayload requests a login challenge for the given wallet
// address from the wallet-auth provider.
func (c *Client) GenerateLoginPayload(ctx context.Context, address string, chainID *int64) (clawdhub.LoginPayload, error) {
	if c.conf.WalletAuthSecret == "" {
		return clawdhub.LoginPayload{}, domain.MisconfiguredError{
			Code: "payload_error",
			Hint: "wallet auth secret is not configured",
		}
	}

	request := map[string]any{"address": address}
	if chainID != nil {
		request["chainId"] = *chainID
	}

	var payload clawdhub.LoginPayload
	err := c.postJSON(ctx, c.conf.WalletAuthURL+"/payload", map[string]string{
		"X-Secret-Key": c.conf.WalletAuthSecret,
	}, request, &payload)
	if err != nil {
		return clawdhub.LoginPayload{}, domain.UpstreamError{
			Code: "payload_error",
			Err:  errors.Wrap(err, "wallet auth payload request failed"),
		}
	}

	return payload, nil
}

// VerifyLoginPayload submits a signed challenge to the wallet-auth provider
// and returns the normalized wallet address. It fails closed: any provider
// error, malformed response, or valid:false is an authentication failure.
func (c *Client) VerifyLoginPayload(ctx context.Context, payload clawdhub.LoginPayload, signature string) (string, error) {
	if c.conf.WalletAuthSecret == "" {
		return "", domain.MisconfiguredError{
			Code: "login_failed",
			Hint: "wallet auth secret is not configured",
		}
	}

	request := map[string]any{
		"payload":   payload,
		"signature": signature,
	}

	var result clawdhub.VerifyLoginResponse
	err := c.postJSON(ctx, c.conf.WalletAuthURL+"/verify", map[string]string{
		"X-Secret-Key": c.conf.WalletAuthSecret,
	}, request, &result)
	if err != nil {
		return "", domain.UnauthenticatedError{Code: "invalid_signature"}
	}

	if !result.Valid {
		return "", domain.UnauthenticatedError{Code: "invalid_signature"}
	}

	address := result.Address
	if address == "" {
		address = payload.Address
	}
	if !clawdhub.IsWalletAddress(address) {
		return "", domain.UnauthenticatedError{Code: "invalid_signature"}
	}

	return clawdhub.NormalizeAddress(address), nil
}

func identityCacheKey(token string) string {
	return "identity:" + strconv.FormatUint(xxh3.HashString(token), 16)
}

// VerifyIdentity posts the caller-supplied identity token plus the server's
// application key to the reputation oracle and returns the agent profile.
//
// Failure kinds are kept distinct: invalid_app_key is an operator problem
// (Misconfigured) even when the oracle responds 200 OK, invalid_token and
// identity_token_expired are caller problems (Unauthenticated), and anything
// else is UpstreamError.
func (c *Client) VerifyIdentity(ctx context.Context, token string) (clawdhub.AgentProfile, error) {
	if c.conf.MoltbookAppKey == "" {
		return clawdhub.AgentProfile{}, domain.MisconfiguredError{
			Code: "invalid_app_key",
			Hint: "moltbook app key is not configured",
		}
	}

	cacheKey := identityCacheKey(token)
	if x, found := c.cache.Get(cacheKey); found {
		return x.(clawdhub.AgentProfile), nil
	}

	var result clawdhub.VerifyIdentityResponse
	err := c.postJSON(ctx, c.conf.MoltbookURL+"/api/v1/agents/verify-identity", map[string]string{
		"X-Moltbook-App-Key": c.conf.MoltbookAppKey,
	}, map[string]string{"token": token}, &result)
	if err != nil {
		return clawdhub.AgentProfile{}, domain.UpstreamError{
			Code: "verification_failed",
			Err:  errors.Wrap(err, "moltbook verify request failed"),
		}
	}

	if !result.Valid {
		switch result.Error {
		case "invalid_app_key":
			// Operator misconfiguration surfaced inside a 200 OK body.
			return clawdhub.AgentProfile{}, domain.MisconfiguredError{
				Code: "invalid_app_key",
				Hint: "check the moltbook app key",
			}
		case "":
			return clawdhub.AgentProfile{}, domain.UnauthenticatedError{Code: "invalid_token"}
		default:
			return clawdhub.AgentProfile{}, domain.UnauthenticatedError{Code: result.Error}
		}
	}

	if len(result.Agent) == 0 {
		return clawdhub.AgentProfile{}, domain.UpstreamError{Code: "invalid_response"}
	}

	var profile clawdhub.AgentProfile
	if err := json.Unmarshal(result.Agent, &profile); err != nil || profile.ID == "" {
		return clawdhub.AgentProfile{}, domain.UpstreamError{Code: "invalid_response"}
	}
	profile.Raw = result.Agent

	c.cache.Set(cacheKey, profile, cache.DefaultExpiration)

	return profile, nil
}
