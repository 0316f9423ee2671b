// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package config

import (
	"fmt"
	"sort"

	"github.com/sessionforge/starkdeploy/pkg/models"
	"github.com/spf13/viper"
)

// Config is the parsed deployment configuration file: a set of named
// environments, each with network parameters, per-contract parameters
// and deployment settings.
type Config struct {
	path         string
	environments map[string]models.Environment
}

// Load reads and parses the deployment configuration at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read deployment config %s: %w", path, err)
	}

	environments := map[string]models.Environment{}
	if err := v.UnmarshalKey("environments", &environments); err != nil {
		return nil, fmt.Errorf("failed to parse deployment config %s: %w", path, err)
	}
	if len(environments) == 0 {
		return nil, fmt.Errorf("deployment config %s defines no environments", path)
	}

	return &Config{path: path, environments: environments}, nil
}

func (c *Config) Path() string {
	return c.path
}

// Environment returns the named environment with deployment settings
// defaulted.
func (c *Config) Environment(name string) (models.Environment, error) {
	env, ok := c.environments[name]
	if !ok {
		return models.Environment{}, fmt.Errorf(
			"environment %q not found in %s (available: %v)",
			name,
			c.path,
			c.AvailableEnvironments(),
		)
	}
	env.Settings = env.Settings.WithDefaults()
	return env, nil
}

// AvailableEnvironments lists the configured environment names in
// sorted order.
func (c *Config) AvailableEnvironments() []string {
	names := make([]string, 0, len(c.environments))
	for name := range c.environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ContractSpecs overlays the environment's per-contract parameters onto
// the static contract shapes and returns the resulting registry.
func ContractSpecs(env models.Environment) models.SpecRegistry {
	registry := models.NewSpecRegistry()
	for contractType, spec := range registry {
		params, ok := env.Contracts[string(contractType)]
		if !ok {
			continue
		}
		if params.Name != "" {
			spec.Name = params.Name
		}
		if spec.TakesBaseURI && params.BaseURI != "" {
			spec.BaseURI = params.BaseURI
		}
		if spec.TakesPurchaseTimeout && params.PurchaseTimeoutSeconds != 0 {
			spec.PurchaseTimeoutSeconds = params.PurchaseTimeoutSeconds
		}
		registry[contractType] = spec
	}
	return registry
}

// ConfiguredAddresses collects the dependency addresses pinned in the
// environment's contract parameters, keyed by dependency role.
func ConfiguredAddresses(env models.Environment) map[string]string {
	resolved := map[string]string{}
	for _, params := range env.Contracts {
		if params.VerifierAddress != "" {
			resolved["verifier"] = params.VerifierAddress
		}
		if params.PaymentTokenAddress != "" {
			resolved["payment_token"] = params.PaymentTokenAddress
		}
	}
	return resolved
}
