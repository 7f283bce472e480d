package stellar

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"bnpl/internal/models"
)

// base32Alphabet matches the strkey character set so mock keys look like
// real Stellar addresses
const base32Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// MockGateway implements Gateway without any network access. It backs the
// offline demo mode and serves as the degradation target when Horizon is
// unreachable.
type MockGateway struct {
	networkName string
}

// NewMockGateway creates an offline gateway
func NewMockGateway(networkName string) *MockGateway {
	return &MockGateway{networkName: networkName}
}

// Health always reports a connected network with a synthetic ledger sequence
func (g *MockGateway) Health(ctx context.Context) (*HealthInfo, error) {
	return &HealthInfo{
		Connected:    true,
		Network:      g.networkName,
		LatestLedger: uint32(time.Now().Unix() / 5),
	}, nil
}

// CreateAccount generates mock keys with a canned starting balance
func (g *MockGateway) CreateAccount(ctx context.Context) (*Account, error) {
	return &Account{
		PublicKey: MockPublicKey(),
		SecretKey: mockKey('S'),
		Funded:    true,
	}, nil
}

// AccountDetail returns a canned balance for any public key
func (g *MockGateway) AccountDetail(ctx context.Context, publicKey string) (*AccountInfo, error) {
	return &AccountInfo{
		PublicKey: publicKey,
		Balance:   "10000.0000000",
		Sequence:  strconv.FormatInt(time.Now().Unix(), 10),
	}, nil
}

// SubmitPayment fabricates a transaction hash without touching the network
func (g *MockGateway) SubmitPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	return &PaymentResult{
		TxHash: SimulatedTxHash(),
		Ledger: int32(time.Now().Unix() / 5),
	}, nil
}

// Transactions returns an empty history
func (g *MockGateway) Transactions(ctx context.Context, accountID string) ([]models.TransactionInfo, error) {
	return []models.TransactionInfo{}, nil
}

// MockPublicKey generates a Stellar-shaped public key (G + 55 chars).
// Not a valid strkey; for display and local storage only.
func MockPublicKey() string {
	return mockKey('G')
}

func mockKey(prefix byte) string {
	buf := make([]byte, 55)
	rand.Read(buf)

	var b strings.Builder
	b.Grow(56)
	b.WriteByte(prefix)
	for _, c := range buf {
		b.WriteByte(base32Alphabet[int(c)%len(base32Alphabet)])
	}
	return b.String()
}

// SimulatedTxHash generates a 64-character uppercase hex hash, the shape of
// a real transaction hash. Used when payment submission degrades to a
// local-only result.
func SimulatedTxHash() string {
	buf := make([]byte, 32)
	rand.Read(buf)
	return strings.ToUpper(hex.EncodeToString(buf))
}
