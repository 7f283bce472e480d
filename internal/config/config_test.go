package config

import "testing"

func TestValidate_Defaults(t *testing.T) {
	cfg := Load()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default configuration should validate, got: %v", err)
	}
	if !cfg.Development() {
		t.Error("Default environment should be development")
	}
}

func TestValidate_StorageDrivers(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"memory", func(c *Config) { c.StorageDriver = StorageMemory }, false},
		{"sqlite", func(c *Config) { c.StorageDriver = StorageSQLite }, false},
		{"sqlite without path", func(c *Config) {
			c.StorageDriver = StorageSQLite
			c.SQLitePath = ""
		}, true},
		{"postgres without url", func(c *Config) { c.StorageDriver = StoragePostgres }, true},
		{"postgres with url", func(c *Config) {
			c.StorageDriver = StoragePostgres
			c.DatabaseURL = "postgres://localhost/bnpl"
		}, false},
		{"unknown driver", func(c *Config) { c.StorageDriver = "etcd" }, true},
		{"unknown stellar mode", func(c *Config) { c.StellarMode = "soroban" }, true},
		{"bad network", func(c *Config) { c.Network = "STAGENET" }, true},
	}

	for _, tc := range cases {
		cfg := Load()
		tc.mutate(cfg)

		err := cfg.Validate()
		if tc.wantErr && err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
		}
	}
}

func TestNetworkPassphrase(t *testing.T) {
	cfg := Load()

	cfg.Network = "TESTNET"
	testnet := cfg.NetworkPassphrase()

	cfg.Network = "PUBLIC"
	public := cfg.NetworkPassphrase()

	if testnet == public {
		t.Error("Testnet and public passphrases must differ")
	}
	if testnet == "" || public == "" {
		t.Error("Passphrases must not be empty")
	}
}
