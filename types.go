package clawdhub

import (
	"encoding/json"
)

// AgentOwner is the optional owner-linkage metadata attached to an agent
// profile by the reputation provider.
type AgentOwner struct {
	XHandle        *string `json:"x_handle,omitempty"`
	XName          *string `json:"x_name,omitempty"`
	XVerified      *bool   `json:"x_verified,omitempty"`
	XFollowerCount *int    `json:"x_follower_count,omitempty"`
}

// AgentStats is auxiliary activity data reported by the reputation provider.
type AgentStats struct {
	Posts    *int `json:"posts,omitempty"`
	Comments *int `json:"comments,omitempty"`
}

// AgentProfile is an agent identity as reported by the reputation oracle.
// Raw preserves the provider payload verbatim for forward compatibility
// with provider schema changes.
type AgentProfile struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Description   *string     `json:"description,omitempty"`
	Karma         int         `json:"karma"`
	AvatarURL     *string     `json:"avatar_url,omitempty"`
	IsClaimed     bool        `json:"is_claimed"`
	CreatedAt     *string     `json:"created_at,omitempty"`
	FollowerCount *int        `json:"follower_count,omitempty"`
	Stats         *AgentStats `json:"stats,omitempty"`
	Owner         *AgentOwner `json:"owner,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// VerifyIdentityResponse is the reputation oracle's verify-identity envelope.
// Error codes observed from the provider: identity_token_expired,
// invalid_token, invalid_app_key.
type VerifyIdentityResponse struct {
	Success *bool           `json:"success,omitempty"`
	Valid   bool            `json:"valid"`
	Agent   json.RawMessage `json:"agent,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// LoginPayload is the challenge issued by the wallet-auth provider. The
// server only reads Address; the payload is round-tripped back to the
// provider for verification.
type LoginPayload struct {
	Domain         string  `json:"domain"`
	Address        string  `json:"address"`
	Statement      string  `json:"statement,omitempty"`
	URI            string  `json:"uri,omitempty"`
	Version        string  `json:"version"`
	ChainID        *int64  `json:"chain_id,omitempty"`
	Nonce          string  `json:"nonce"`
	IssuedAt       string  `json:"issued_at"`
	ExpirationTime string  `json:"expiration_time"`
	InvalidBefore  *string `json:"invalid_before,omitempty"`
}

// VerifyLoginResponse is the wallet-auth provider's verify envelope.
type VerifyLoginResponse struct {
	Valid   bool   `json:"valid"`
	Address string `json:"address,omitempty"`
	Error   string `json:"error,omitempty"`
}
