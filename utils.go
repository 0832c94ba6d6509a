package clawdhub

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NormalizeAddress lowercases a wallet address. Users are keyed by the
// normalized form.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// IsWalletAddress reports whether s looks like a hex wallet address.
func IsWalletAddress(s string) bool {
	return common.IsHexAddress(s)
}
