// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package models

import (
	"time"

	"github.com/sessionforge/starkdeploy/pkg/constants"
)

// NetworkConfig holds the per-environment network parameters.
type NetworkConfig struct {
	Name        string `mapstructure:"name"`
	Network     string `mapstructure:"network"`
	RPCURL      string `mapstructure:"rpc_url"`
	Explorer    string `mapstructure:"explorer"`
	ChainID     string `mapstructure:"chain_id"`
	Description string `mapstructure:"description"`
	Account     string `mapstructure:"account"`
}

// ContractParams are the per-environment, per-contract configuration
// values overlaid onto the static contract shapes.
type ContractParams struct {
	Name                   string `mapstructure:"name"`
	BaseURI                string `mapstructure:"base_uri"`
	VerifierAddress        string `mapstructure:"verifier_address"`
	PaymentTokenAddress    string `mapstructure:"payment_token_address"`
	PurchaseTimeoutSeconds uint64 `mapstructure:"purchase_timeout_seconds"`
}

// DeploymentSettings bound every transaction wait; there is no
// unbounded wait anywhere in the deployment flow.
type DeploymentSettings struct {
	MaxPollAttempts     int  `mapstructure:"max_poll_attempts"`
	PollIntervalSeconds int  `mapstructure:"poll_interval_seconds"`
	StrictVerification  bool `mapstructure:"strict_verification"`
	SkipLivenessProbe   bool `mapstructure:"skip_liveness_probe"`
}

func (s DeploymentSettings) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalSeconds) * time.Second
}

// WithDefaults fills unset settings with the package defaults.
func (s DeploymentSettings) WithDefaults() DeploymentSettings {
	if s.MaxPollAttempts <= 0 {
		s.MaxPollAttempts = constants.DefaultMaxPollAttempts
	}
	if s.PollIntervalSeconds <= 0 {
		s.PollIntervalSeconds = int(constants.DefaultPollInterval / time.Second)
	}
	return s
}

// Environment ties together one deployment target: network parameters,
// per-contract parameters and deployment settings.
type Environment struct {
	NetworkConfig `mapstructure:",squash"`

	Contracts map[string]ContractParams `mapstructure:"contracts"`
	Settings  DeploymentSettings        `mapstructure:"deployment_settings"`
}
