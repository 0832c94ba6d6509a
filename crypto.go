package clawdhub

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// GetHash returns the keccak256 digest of data.
func GetHash(data []byte) []byte {
	return crypto.Keccak256(data)
}

// SignBytes signs the keccak256 digest of data with a hex-encoded secp256k1
// private key and returns the 65-byte recoverable signature.
func SignBytes(data []byte, privatekey string) ([]byte, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privatekey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %v", err)
	}

	digest := crypto.Keccak256(data)
	signature, err := crypto.Sign(digest, key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %v", err)
	}

	return signature, nil
}

// VerifySignature checks that signature over message recovers the given
// wallet address.
func VerifySignature(message []byte, signature []byte, address string) error {
	if len(signature) != 65 {
		return fmt.Errorf("invalid signature length: %d", len(signature))
	}

	digest := crypto.Keccak256(message)
	pubkey, err := crypto.SigToPub(digest, signature)
	if err != nil {
		return fmt.Errorf("failed to recover pubkey: %v", err)
	}

	recovered := strings.ToLower(crypto.PubkeyToAddress(*pubkey).Hex())
	if recovered != NormalizeAddress(address) {
		return fmt.Errorf("signature does not match address")
	}

	return nil
}

// PrivKeyToAddr derives the lowercase wallet address for a hex-encoded
// secp256k1 private key.
func PrivKeyToAddr(privatekey string) (string, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privatekey, "0x"))
	if err != nil {
		return "", fmt.Errorf("invalid private key: %v", err)
	}
	return strings.ToLower(crypto.PubkeyToAddress(key.PublicKey).Hex()), nil
}
