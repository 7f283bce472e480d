package stellar

import (
	"context"
	"regexp"
	"testing"
)

func TestMockPublicKey_Format(t *testing.T) {
	keyPattern := regexp.MustCompile(`^G[A-Z2-7]{55}$`)

	for i := 0; i < 10; i++ {
		key := MockPublicKey()
		if !keyPattern.MatchString(key) {
			t.Errorf("Mock public key %q does not look like a Stellar address", key)
		}
	}
}

func TestSimulatedTxHash_Format(t *testing.T) {
	hashPattern := regexp.MustCompile(`^[0-9A-F]{64}$`)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		hash := SimulatedTxHash()
		if !hashPattern.MatchString(hash) {
			t.Errorf("Simulated hash %q is not 64 uppercase hex chars", hash)
		}
		if seen[hash] {
			t.Errorf("Simulated hash %q repeated", hash)
		}
		seen[hash] = true
	}
}

func TestMockGateway_CreateAccount(t *testing.T) {
	gateway := NewMockGateway("TESTNET")

	account, err := gateway.CreateAccount(context.Background())
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	if account.PublicKey[0] != 'G' {
		t.Errorf("Expected public key starting with G, got %q", account.PublicKey)
	}
	if account.SecretKey[0] != 'S' {
		t.Errorf("Expected secret key starting with S, got %q", account.SecretKey)
	}
	if !account.Funded {
		t.Error("Mock accounts should report funded")
	}
}

func TestMockGateway_Health(t *testing.T) {
	gateway := NewMockGateway("TESTNET")

	health, err := gateway.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if !health.Connected {
		t.Error("Mock gateway should always report connected")
	}
	if health.Network != "TESTNET" {
		t.Errorf("Expected TESTNET, got %s", health.Network)
	}
	if health.LatestLedger == 0 {
		t.Error("Expected a synthetic ledger sequence")
	}
}

func TestTruncateMemo(t *testing.T) {
	if got := truncateMemo("short"); got != "short" {
		t.Errorf("Expected short memo unchanged, got %q", got)
	}

	long := "BNPL-1700000000000-abcdef12-extra"
	got := truncateMemo(long)
	if len(got) != maxMemoLength {
		t.Errorf("Expected memo truncated to %d bytes, got %d", maxMemoLength, len(got))
	}
}
