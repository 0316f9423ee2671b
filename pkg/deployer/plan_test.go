// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package deployer

import (
	"testing"

	"github.com/sessionforge/starkdeploy/pkg/models"
	"github.com/stretchr/testify/require"
)

func indexOf(order []models.ContractType, t models.ContractType) int {
	for i, e := range order {
		if e == t {
			return i
		}
	}
	return -1
}

func TestPlanOrderFullRegistry(t *testing.T) {
	require := require.New(t)

	registry := models.NewSpecRegistry()
	order, err := PlanOrder(registry)
	require.NoError(err)
	require.Len(order, len(registry))

	require.Less(indexOf(order, models.NFT), indexOf(order, models.Registry))
	require.Less(indexOf(order, models.TokensCore), indexOf(order, models.Registry))
	require.Less(indexOf(order, models.Registry), indexOf(order, models.SessionMint))
	require.Less(indexOf(order, models.SessionMint), indexOf(order, models.Marketplace))
	require.Less(indexOf(order, models.PaymentToken), indexOf(order, models.Marketplace))
}

func TestPlanOrderDeterministic(t *testing.T) {
	require := require.New(t)

	registry := models.NewSpecRegistry()
	first, err := PlanOrder(registry)
	require.NoError(err)
	for i := 0; i < 16; i++ {
		again, err := PlanOrder(registry)
		require.NoError(err)
		require.Equal(first, again)
	}
}

func TestPlanOrderCycle(t *testing.T) {
	require := require.New(t)

	registry := models.SpecRegistry{
		models.NFT: {
			Type:         models.NFT,
			Dependencies: []models.DependencyRole{{Role: "registry", Type: models.Registry}},
		},
		models.Registry: {
			Type:         models.Registry,
			Dependencies: []models.DependencyRole{{Role: "nft", Type: models.NFT}},
		},
	}

	_, err := PlanOrder(registry)
	var confErr *ConfigurationError
	require.ErrorAs(err, &confErr)
	require.Contains(confErr.Error(), "cycle")
}

func TestPlanOrderUnknownDependency(t *testing.T) {
	require := require.New(t)

	registry := models.SpecRegistry{
		models.SessionMint: {
			Type:         models.SessionMint,
			Dependencies: []models.DependencyRole{{Role: "registry", Type: models.Registry}},
		},
	}

	_, err := PlanOrder(registry)
	var confErr *ConfigurationError
	require.ErrorAs(err, &confErr)
	require.Contains(confErr.Error(), "unknown contract type")
}

func TestPlanOrderIgnoresExternalRoles(t *testing.T) {
	require := require.New(t)

	// roles with no contract type are satisfied from configuration
	registry := models.SpecRegistry{
		models.Registry: {
			Type:         models.Registry,
			Dependencies: []models.DependencyRole{{Role: "verifier", Optional: true}},
		},
	}

	order, err := PlanOrder(registry)
	require.NoError(err)
	require.Equal([]models.ContractType{models.Registry}, order)
}
