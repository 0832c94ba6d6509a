package clawdhub

import (
	"testing"
)

const testPrivKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func TestSignAndVerify(t *testing.T) {
	message := []byte("hello world")

	signature, err := SignBytes(message, testPrivKey)
	if err != nil {
		t.Fatalf("SignBytes: %v", err)
	}

	address, err := PrivKeyToAddr(testPrivKey)
	if err != nil {
		t.Fatalf("PrivKeyToAddr: %v", err)
	}

	if err := VerifySignature(message, signature, address); err != nil {
		t.Errorf("signature must verify against the signer address: %v", err)
	}

	if err := VerifySignature([]byte("tampered"), signature, address); err == nil {
		t.Error("tampered message must not verify")
	}

	other := "0x0000000000000000000000000000000000000001"
	if err := VerifySignature(message, signature, other); err == nil {
		t.Error("signature must not verify against a different address")
	}
}

func TestNormalizeAddress(t *testing.T) {
	normalized := NormalizeAddress("  0xAbC9b2055D370f73eC7d8A03e965129118dc8f5B ")
	if normalized != "0xabc9b2055d370f73ec7d8a03e965129118dc8f5b" {
		t.Errorf("unexpected normalization: %s", normalized)
	}
}

func TestIsWalletAddress(t *testing.T) {
	cases := []struct {
		address string
		valid   bool
	}{
		{"0x9b2055d370f73ec7d8a03e965129118dc8f5bf83", true},
		{"0x9B2055D370f73Ec7d8a03E965129118Dc8F5Bf83", true},
		{"9b2055d370f73ec7d8a03e965129118dc8f5bf83", true},
		{"0x9b2055", false},
		{"person@example.com", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsWalletAddress(tc.address); got != tc.valid {
			t.Errorf("IsWalletAddress(%q) = %v, want %v", tc.address, got, tc.valid)
		}
	}
}
