package jwt

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/clawdhub/clawdhub"
)

// Create creates a server-signed JWT
func Create(claims Claims, privatekey string) (string, error) {
	header := Header{
		Type:      "JWT",
		Algorithm: "ETH",
	}
	headerStr, err := json.Marshal(header)
	if err != nil {
		return "", err
	}

	payloadStr, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	headerB64 := base64.RawURLEncoding.EncodeToString([]byte(headerStr))
	payloadB64 := base64.RawURLEncoding.EncodeToString([]byte(payloadStr))
	target := headerB64 + "." + payloadB64

	signatureBytes, err := clawdhub.SignBytes([]byte(target), privatekey)
	if err != nil {
		return "", err
	}
	signatureB64 := base64.RawURLEncoding.EncodeToString(signatureBytes)

	return target + "." + signatureB64, nil
}

// Validate checks the jwt signature and expiry. Malformed tokens return an
// error just like forged ones; callers treat any error as an invalid session.
func Validate(jwt string) (*Header, *Claims, error) {

	split := strings.Split(jwt, ".")
	if len(split) != 3 {
		return nil, nil, fmt.Errorf("invalid jwt format")
	}

	var header Header
	headerBytes, err := base64.RawURLEncoding.DecodeString(split[0])
	if err != nil {
		return nil, nil, err
	}
	err = json.Unmarshal(headerBytes, &header)
	if err != nil {
		return nil, nil, err
	}

	// check jwt type
	if header.Type != "JWT" || header.Algorithm != "ETH" {
		return nil, nil, fmt.Errorf("unsupported JWT type")
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(split[1])
	if err != nil {
		return nil, nil, err
	}

	var claims Claims
	err = json.Unmarshal(payloadBytes, &claims)
	if err != nil {
		return nil, nil, err
	}

	// check exp
	if claims.ExpirationTime != "" {
		exp, err := strconv.ParseInt(claims.ExpirationTime, 10, 64)
		if err != nil {
			return nil, nil, err
		}
		now := time.Now().Unix()
		if exp < now {
			return nil, nil, fmt.Errorf("jwt is already expired")
		}
	}

	// check signature
	signatureBytes, err := base64.RawURLEncoding.DecodeString(split[2])
	if err != nil {
		return nil, nil, err
	}

	keyID := header.KeyID
	if keyID == "" {
		keyID = claims.Issuer
	}

	err = clawdhub.VerifySignature([]byte(split[0]+"."+split[1]), signatureBytes, keyID)
	if err != nil {
		return nil, nil, err
	}

	// all checks passed
	return &header, &claims, nil
}
