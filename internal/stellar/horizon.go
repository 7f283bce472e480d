package stellar

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"bnpl/internal/models"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
)

// Text memos are capped by the protocol
const maxMemoLength = 28

// paymentTimeout bounds how long a submitted transaction stays valid
const paymentTimeout = 300

// HorizonGateway implements Gateway against a Horizon instance.
// Account creation uses friendbot and is therefore testnet-only.
type HorizonGateway struct {
	client            *horizonclient.Client
	horizonURL        string
	friendbotURL      string
	networkName       string
	networkPassphrase string
	httpClient        *http.Client
}

// NewHorizonGateway creates a gateway for the given Horizon endpoint
func NewHorizonGateway(horizonURL, friendbotURL, networkName, networkPassphrase string) *HorizonGateway {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	return &HorizonGateway{
		client: &horizonclient.Client{
			HorizonURL: horizonURL,
			HTTP:       httpClient,
		},
		horizonURL:        horizonURL,
		friendbotURL:      friendbotURL,
		networkName:       networkName,
		networkPassphrase: networkPassphrase,
		httpClient:        httpClient,
	}
}

// Health queries the latest closed ledger
func (g *HorizonGateway) Health(ctx context.Context) (*HealthInfo, error) {
	page, err := g.client.Ledgers(horizonclient.LedgerRequest{
		Order: horizonclient.OrderDesc,
		Limit: 1,
	})
	if err != nil {
		return nil, &GatewayError{Op: "health", Err: err}
	}

	info := &HealthInfo{
		Connected:  true,
		Network:    g.networkName,
		HorizonURL: g.horizonURL,
	}
	if len(page.Embedded.Records) > 0 {
		info.LatestLedger = uint32(page.Embedded.Records[0].Sequence)
	}
	return info, nil
}

// CreateAccount generates a random keypair and funds it through friendbot.
// Funding failure is not an error: the keypair is still usable locally.
func (g *HorizonGateway) CreateAccount(ctx context.Context) (*Account, error) {
	kp, err := keypair.Random()
	if err != nil {
		return nil, &GatewayError{Op: "create-account", Err: err}
	}

	account := &Account{
		PublicKey: kp.Address(),
		SecretKey: kp.Seed(),
	}

	if err := g.fundAccount(ctx, kp.Address()); err != nil {
		slog.Warn("Friendbot funding failed, returning unfunded account",
			"public_key", kp.Address(),
			"error", err,
		)
		return account, nil
	}

	account.Funded = true
	return account, nil
}

func (g *HorizonGateway) fundAccount(ctx context.Context, publicKey string) error {
	fundURL := fmt.Sprintf("%s?addr=%s", g.friendbotURL, url.QueryEscape(publicKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fundURL, nil)
	if err != nil {
		return err
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("friendbot returned status %d", resp.StatusCode)
	}
	return nil
}

// AccountDetail loads an account's native balance and sequence number
func (g *HorizonGateway) AccountDetail(ctx context.Context, publicKey string) (*AccountInfo, error) {
	account, err := g.client.AccountDetail(horizonclient.AccountRequest{AccountID: publicKey})
	if err != nil {
		if horizonclient.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, publicKey)
		}
		return nil, &GatewayError{Op: "account-detail", Err: err}
	}

	balance, err := account.GetNativeBalance()
	if err != nil {
		return nil, &GatewayError{Op: "account-detail", Err: err}
	}

	return &AccountInfo{
		PublicKey: publicKey,
		Balance:   balance,
		Sequence:  strconv.FormatInt(account.Sequence, 10),
	}, nil
}

// SubmitPayment builds, signs, and submits a native-asset payment
func (g *HorizonGateway) SubmitPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	kp, err := keypair.ParseFull(req.SourceSecret)
	if err != nil {
		return nil, &GatewayError{Op: "submit-payment", Err: fmt.Errorf("invalid source secret: %w", err)}
	}

	sourceAccount, err := g.client.AccountDetail(horizonclient.AccountRequest{AccountID: kp.Address()})
	if err != nil {
		return nil, &GatewayError{Op: "submit-payment", Err: err}
	}

	params := txnbuild.TransactionParams{
		SourceAccount:        &sourceAccount,
		IncrementSequenceNum: true,
		Operations: []txnbuild.Operation{
			&txnbuild.Payment{
				Destination: req.Destination,
				Amount:      req.Amount,
				Asset:       txnbuild.NativeAsset{},
			},
		},
		BaseFee:       txnbuild.MinBaseFee,
		Preconditions: txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(paymentTimeout)},
	}
	if req.Memo != "" {
		params.Memo = txnbuild.MemoText(truncateMemo(req.Memo))
	}

	tx, err := txnbuild.NewTransaction(params)
	if err != nil {
		return nil, &GatewayError{Op: "submit-payment", Err: err}
	}

	tx, err = tx.Sign(g.networkPassphrase, kp)
	if err != nil {
		return nil, &GatewayError{Op: "submit-payment", Err: err}
	}

	resp, err := g.client.SubmitTransaction(tx)
	if err != nil {
		return nil, &GatewayError{Op: "submit-payment", Err: err}
	}

	return &PaymentResult{
		TxHash: resp.Hash,
		Ledger: resp.Ledger,
	}, nil
}

// Transactions returns the ten most recent transactions for an account
func (g *HorizonGateway) Transactions(ctx context.Context, accountID string) ([]models.TransactionInfo, error) {
	page, err := g.client.Transactions(horizonclient.TransactionRequest{
		ForAccount: accountID,
		Order:      horizonclient.OrderDesc,
		Limit:      10,
	})
	if err != nil {
		if horizonclient.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
		}
		return nil, &GatewayError{Op: "transactions", Err: err}
	}

	transactions := make([]models.TransactionInfo, 0, len(page.Embedded.Records))
	for _, record := range page.Embedded.Records {
		transactions = append(transactions, models.TransactionInfo{
			Hash:      record.Hash,
			Ledger:    record.Ledger,
			Memo:      record.Memo,
			CreatedAt: record.LedgerCloseTime,
		})
	}
	return transactions, nil
}

func truncateMemo(memo string) string {
	if len(memo) > maxMemoLength {
		return memo[:maxMemoLength]
	}
	return memo
}
