package jwt

type Header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
	KeyID     string `json:"kid,omitempty"`
}

type Claims struct {
	Issuer         string `json:"iss,omitempty"` // server key address
	Subject        string `json:"sub,omitempty"` // wallet address
	Audience       string `json:"aud,omitempty"` // server fqdn
	ExpirationTime string `json:"exp,omitempty"` // unix seconds
	IssuedAt       string `json:"iat,omitempty"` // unix seconds
	JWTID          string `json:"jti,omitempty"`
}
