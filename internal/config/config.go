package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/stellar/go/network"
)

// Storage driver selection
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Ledger gateway selection
const (
	StellarModeHorizon = "horizon"
	StellarModeMock    = "mock"
)

type Config struct {
	// HTTP listen port
	Port int

	// development or production; development reveals account secret keys
	// and error details in responses
	Environment string

	// Log level ( debug, info, warn, error )
	LogLevel string

	// Storage driver ( memory, sqlite, postgres )
	StorageDriver string

	// Path of the SQLite database file
	SQLitePath string

	// Postgres connection string
	DatabaseURL string

	// Ledger gateway mode ( horizon or mock )
	StellarMode string

	// Horizon API URL
	HorizonURL string

	// Friendbot URL for testnet account funding
	FriendbotURL string

	// Network name ( TESTNET or PUBLIC )
	Network string

	// Secret key of the demo account payments are drawn from; when empty,
	// payment submission degrades to simulated results
	PaymentSourceSecret string

	// Currency code used in quotations
	Currency string
}

// Load returns the configuration from environment variables
func Load() *Config {
	return &Config{
		Port:                envInt("PORT", 3000),
		Environment:         envString("ENVIRONMENT", "development"),
		LogLevel:            envString("LOG_LEVEL", "info"),
		StorageDriver:       envString("STORAGE_DRIVER", StorageMemory),
		SQLitePath:          envString("SQLITE_PATH", "bnpl.sqlite"),
		DatabaseURL:         envString("DATABASE_URL", ""),
		StellarMode:         envString("STELLAR_MODE", StellarModeMock),
		HorizonURL:          envString("HORIZON_URL", "https://horizon-testnet.stellar.org"),
		FriendbotURL:        envString("FRIENDBOT_URL", "https://friendbot.stellar.org"),
		Network:             envString("STELLAR_NETWORK", "TESTNET"),
		PaymentSourceSecret: envString("PAYMENT_SOURCE_SECRET", ""),
		Currency:            envString("CURRENCY", "XLM"),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}

	switch c.StellarMode {
	case StellarModeHorizon:
		if c.HorizonURL == "" {
			return fmt.Errorf("HORIZON_URL is required for horizon mode")
		}
	case StellarModeMock:
	default:
		return fmt.Errorf("unknown stellar mode %q", c.StellarMode)
	}

	if c.Network != "TESTNET" && c.Network != "PUBLIC" {
		return fmt.Errorf("STELLAR_NETWORK must be TESTNET or PUBLIC, got %q", c.Network)
	}

	return nil
}

// Development reports whether the service runs in development mode
func (c *Config) Development() bool {
	return c.Environment == "development"
}

// NetworkPassphrase maps the network name to its passphrase
func (c *Config) NetworkPassphrase() string {
	if c.Network == "PUBLIC" {
		return network.PublicNetworkPassphrase
	}
	return network.TestNetworkPassphrase
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
