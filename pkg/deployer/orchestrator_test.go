// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package deployer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sessionforge/starkdeploy/pkg/application"
	"github.com/sessionforge/starkdeploy/pkg/models"
	"github.com/sessionforge/starkdeploy/pkg/starknet"
	"github.com/sessionforge/starkdeploy/pkg/txwaiter"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestOrchestrator(t *testing.T, gateway *fakeGateway, registry models.SpecRegistry) (*Orchestrator, *application.Starkdeploy) {
	t.Helper()
	app := application.New()
	app.Setup(t.TempDir(), zap.NewNop().Sugar(), nil, nil)

	env := testEnv()
	waiter, err := txwaiter.New(gateway, env.Settings.MaxPollAttempts, time.Millisecond, zap.NewNop())
	require.NoError(t, err)

	d := NewContractDeployer(app, gateway, waiter, "dev", env)
	d.now = func() time.Time { return time.Unix(1735689600, 0) }
	d.probeTimeout = time.Millisecond

	linker := NewConfigurationLinker(gateway, waiter, env.Settings.StrictVerification, app.Log)
	return NewOrchestrator(app, d, linker, registry), app
}

func fullTestRegistry() models.SpecRegistry {
	registry := models.NewSpecRegistry()
	for _, contractType := range []models.ContractType{models.NFT, models.TokensCore} {
		spec := registry[contractType]
		spec.BaseURI = "ipfs://base/"
		registry[contractType] = spec
	}
	marketplace := registry[models.Marketplace]
	marketplace.PurchaseTimeoutSeconds = 3600
	registry[models.Marketplace] = marketplace
	return registry
}

func TestRunFullPlan(t *testing.T) {
	require := require.New(t)
	gateway := newFakeGateway()
	orchestrator, app := newTestOrchestrator(t, gateway, fullTestRegistry())

	result, err := orchestrator.Run(context.Background(), "0xbeef", nil)
	require.NoError(err)
	require.Len(result.Records, 6)
	require.Len(result.Order, 6)

	// every contract type was declared exactly once
	require.Len(gateway.declares, 6)
	require.Len(gateway.deploys, 6)

	// the registry constructor received the freshly deployed nft and
	// tokens_core addresses, not placeholders
	registryRecord := result.Records[models.Registry]
	nftRecord := result.Records[models.NFT]
	tokensRecord := result.Records[models.TokensCore]
	require.Equal(nftRecord.ContractAddress, registryRecord.Dependencies["nft"])
	require.Equal(tokensRecord.ContractAddress, registryRecord.Dependencies["tokens_core"])

	// wiring: verifier step skipped (unconfigured), the other five ran
	require.Len(result.Wiring, 5)
	for _, op := range result.Wiring {
		require.Equal(models.Verified, op.Outcome)
	}

	// wiring outcomes were persisted back into the records
	persisted, err := app.LoadDeploymentRecords("sepolia")
	require.NoError(err)
	wired := 0
	for _, record := range persisted {
		wired += len(record.PostDeployment)
	}
	require.Equal(5, wired)
}

func TestRunFullPlanWithVerifier(t *testing.T) {
	require := require.New(t)
	gateway := newFakeGateway()
	orchestrator, _ := newTestOrchestrator(t, gateway, fullTestRegistry())

	result, err := orchestrator.Run(context.Background(), "0xbeef", map[string]string{
		"verifier": "0xfeed",
	})
	require.NoError(err)
	require.Len(result.Wiring, 6)

	registryRecord := result.Records[models.Registry]
	require.Equal("0xfeed", registryRecord.Dependencies["verifier"])
}

func TestRunStopsOnUnconfirmedWiring(t *testing.T) {
	require := require.New(t)
	gateway := newFakeGateway()
	// declare and deploy transactions confirm, wiring invocations
	// stay pending past the poll budget
	gateway.statusFor = func(txHash string) starknet.TxStatus {
		if strings.HasPrefix(txHash, "0xe") {
			return starknet.TxStatusPending
		}
		return starknet.TxStatusSucceeded
	}
	orchestrator, _ := newTestOrchestrator(t, gateway, fullTestRegistry())

	result, err := orchestrator.Run(context.Background(), "0xbeef", nil)
	var timeout *ConfirmationTimeoutError
	require.ErrorAs(err, &timeout)
	require.Equal("set_registry_address", timeout.Phase)

	// every contract deployed, but the run stopped at the first
	// wiring call and attempted no further setters
	require.Len(result.Records, 6)
	require.Len(gateway.invokes, 1)
	require.Len(result.Wiring, 1)
	require.Equal(models.Unconfirmed, result.Wiring[0].Outcome)
}

func TestRunPartialFailure(t *testing.T) {
	require := require.New(t)

	// three-node chain a -> b -> c, failing at b
	const (
		typeA = models.ContractType("alpha")
		typeB = models.ContractType("beta")
		typeC = models.ContractType("gamma")
	)
	registry := models.SpecRegistry{
		typeA: {Type: typeA, Name: "Alpha"},
		typeB: {
			Type:         typeB,
			Name:         "Beta",
			Dependencies: []models.DependencyRole{{Role: "alpha", Type: typeA}},
		},
		typeC: {
			Type:         typeC,
			Name:         "Gamma",
			Dependencies: []models.DependencyRole{{Role: "beta", Type: typeB}},
		},
	}

	gateway := newFakeGateway()
	orchestrator, app := newTestOrchestrator(t, gateway, registry)

	// alpha deploys fine, beta's deploy blows up
	deploys := 0
	origErr := errors.New("insufficient funds")
	gateway.deployHook = func() error {
		deploys++
		if deploys == 2 {
			return origErr
		}
		return nil
	}

	result, err := orchestrator.Run(context.Background(), "", nil)
	var partial *PartialFailureError
	require.ErrorAs(err, &partial)
	require.Equal([]models.ContractType{typeA}, partial.Completed)
	require.Equal(typeB, partial.FailedAt)
	require.ErrorIs(partial, origErr)

	// gamma was never attempted
	require.Len(gateway.declares, 2)
	require.Len(result.Records, 1)

	// the completed contract's record survives on disk
	persisted, loadErr := app.LoadDeploymentRecords("sepolia")
	require.NoError(loadErr)
	require.Len(persisted, 1)
	require.Equal(typeA, persisted[0].ContractType)
}

func TestDeploySingleResolvesFromRecords(t *testing.T) {
	require := require.New(t)
	gateway := newFakeGateway()
	orchestrator, app := newTestOrchestrator(t, gateway, fullTestRegistry())

	for i, contractType := range []models.ContractType{models.NFT, models.TokensCore} {
		record := models.DeploymentRecord{
			Network:         "sepolia",
			ContractType:    contractType,
			ContractAddress: []string{"0x111", "0x222"}[i],
			Timestamp:       int64(1000 + i),
		}
		_, err := app.WriteDeploymentRecord(&record)
		require.NoError(err)
	}

	record, err := orchestrator.DeploySingle(context.Background(), models.Registry, "0xbeef", nil)
	require.NoError(err)
	require.Equal("0x111", record.Dependencies["nft"])
	require.Equal("0x222", record.Dependencies["tokens_core"])
}

func TestDeploySingleOverridesWinOverRecords(t *testing.T) {
	require := require.New(t)
	gateway := newFakeGateway()
	orchestrator, app := newTestOrchestrator(t, gateway, fullTestRegistry())

	stale := models.DeploymentRecord{
		Network:         "sepolia",
		ContractType:    models.NFT,
		ContractAddress: "0x111",
		Timestamp:       1000,
	}
	_, err := app.WriteDeploymentRecord(&stale)
	require.NoError(err)

	record, err := orchestrator.DeploySingle(context.Background(), models.Registry, "0xbeef", map[string]string{
		"nft":         "0x999",
		"tokens_core": "0x222",
	})
	require.NoError(err)
	require.Equal("0x999", record.Dependencies["nft"])
}

func TestDeploySingleUnknownType(t *testing.T) {
	gateway := newFakeGateway()
	orchestrator, _ := newTestOrchestrator(t, gateway, fullTestRegistry())

	_, err := orchestrator.DeploySingle(context.Background(), "bogus", "", nil)
	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)
}
