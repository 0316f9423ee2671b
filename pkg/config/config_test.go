// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sessionforge/starkdeploy/pkg/models"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testConfig = `
environments:
  dev:
    name: Development
    network: sepolia
    rpc_url: https://rpc.sepolia.example
    explorer: https://sepolia.explorer.example
    chain_id: SN_SEPOLIA
    account: deployer
    contracts:
      nft:
        base_uri: https://meta.dev.example/
      marketplace:
        purchase_timeout_seconds: 3600
        payment_token_address: "0xfeed"
      registry:
        verifier_address: "0xbeef"
    deployment_settings:
      max_poll_attempts: 12
      poll_interval_seconds: 2
      strict_verification: true
  prod:
    name: Production
    network: mainnet
    rpc_url: https://rpc.mainnet.example
    account: deployer
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deployment-config.yml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	require := require.New(t)

	cfg, err := Load(writeTestConfig(t))
	require.NoError(err)
	require.Equal([]string{"dev", "prod"}, cfg.AvailableEnvironments())

	env, err := cfg.Environment("dev")
	require.NoError(err)
	require.Equal("sepolia", env.Network)
	require.Equal("https://rpc.sepolia.example", env.RPCURL)
	require.Equal("deployer", env.Account)
	require.Equal(12, env.Settings.MaxPollAttempts)
	require.Equal(2*time.Second, env.Settings.PollInterval())
	require.True(env.Settings.StrictVerification)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestEnvironmentDefaults(t *testing.T) {
	require := require.New(t)

	cfg, err := Load(writeTestConfig(t))
	require.NoError(err)

	env, err := cfg.Environment("prod")
	require.NoError(err)
	require.Equal(60, env.Settings.MaxPollAttempts)
	require.Equal(5*time.Second, env.Settings.PollInterval())
	require.False(env.Settings.StrictVerification)
}

func TestEnvironmentNotFound(t *testing.T) {
	cfg, err := Load(writeTestConfig(t))
	require.NoError(t, err)

	_, err = cfg.Environment("staging")
	require.Error(t, err)
	require.Contains(t, err.Error(), "staging")
}

func TestContractSpecsOverlay(t *testing.T) {
	require := require.New(t)

	cfg, err := Load(writeTestConfig(t))
	require.NoError(err)
	env, err := cfg.Environment("dev")
	require.NoError(err)

	registry := ContractSpecs(env)

	nft, err := registry.Get(models.NFT)
	require.NoError(err)
	require.Equal("https://meta.dev.example/", nft.BaseURI)
	require.Equal("SessionNFT", nft.Name)

	marketplace, err := registry.Get(models.Marketplace)
	require.NoError(err)
	require.Equal(uint64(3600), marketplace.PurchaseTimeoutSeconds)

	// untouched specs keep their static shape
	tokensCore, err := registry.Get(models.TokensCore)
	require.NoError(err)
	require.Equal("SessionTokensCore", tokensCore.Name)
}

func TestLoadGeneratedConfig(t *testing.T) {
	require := require.New(t)

	raw, err := yaml.Marshal(map[string]any{
		"environments": map[string]any{
			"local": map[string]any{
				"name":    "Local devnet",
				"network": "devnet",
				"rpc_url": "http://127.0.0.1:5050",
				"account": "devnet-deployer",
				"contracts": map[string]any{
					"marketplace": map[string]any{
						"purchase_timeout_seconds": 60,
					},
				},
			},
		},
	})
	require.NoError(err)

	path := filepath.Join(t.TempDir(), "deployment-config.yml")
	require.NoError(os.WriteFile(path, raw, 0o644))

	cfg, err := Load(path)
	require.NoError(err)
	env, err := cfg.Environment("local")
	require.NoError(err)
	require.Equal("devnet", env.Network)
	require.Equal(uint64(60), env.Contracts["marketplace"].PurchaseTimeoutSeconds)
}

func TestConfiguredAddresses(t *testing.T) {
	require := require.New(t)

	cfg, err := Load(writeTestConfig(t))
	require.NoError(err)
	env, err := cfg.Environment("dev")
	require.NoError(err)

	resolved := ConfiguredAddresses(env)
	require.Equal("0xbeef", resolved["verifier"])
	require.Equal("0xfeed", resolved["payment_token"])
}
