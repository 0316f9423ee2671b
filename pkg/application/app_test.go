// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package application

import (
	"testing"

	"github.com/sessionforge/starkdeploy/pkg/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) *Starkdeploy {
	t.Helper()
	app := New()
	app.Setup(t.TempDir(), zap.NewNop().Sugar(), nil, nil)
	return app
}

func TestWriteAndLoadDeploymentRecords(t *testing.T) {
	require := require.New(t)
	app := newTestApp(t)

	first := models.DeploymentRecord{
		Network:         "sepolia",
		ContractType:    models.NFT,
		ContractAddress: "0x111",
		Timestamp:       1000,
	}
	second := models.DeploymentRecord{
		Network:         "sepolia",
		ContractType:    models.Registry,
		ContractAddress: "0x222",
		Timestamp:       2000,
	}
	other := models.DeploymentRecord{
		Network:         "mainnet",
		ContractType:    models.NFT,
		ContractAddress: "0x333",
		Timestamp:       3000,
	}

	for _, record := range []models.DeploymentRecord{second, first, other} {
		record := record
		_, err := app.WriteDeploymentRecord(&record)
		require.NoError(err)
	}

	records, err := app.LoadDeploymentRecords("sepolia")
	require.NoError(err)
	require.Len(records, 2)
	// oldest first
	require.Equal(models.NFT, records[0].ContractType)
	require.Equal(models.Registry, records[1].ContractType)
}

func TestLoadDeploymentRecordsEmpty(t *testing.T) {
	app := newTestApp(t)

	records, err := app.LoadDeploymentRecords("sepolia")
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestLatestRecordsPicksNewest(t *testing.T) {
	require := require.New(t)
	app := newTestApp(t)

	stale := models.DeploymentRecord{
		Network:         "sepolia",
		ContractType:    models.NFT,
		ContractAddress: "0xold",
		Timestamp:       1000,
	}
	fresh := models.DeploymentRecord{
		Network:         "sepolia",
		ContractType:    models.NFT,
		ContractAddress: "0xnew",
		Timestamp:       2000,
	}
	for _, record := range []models.DeploymentRecord{stale, fresh} {
		record := record
		_, err := app.WriteDeploymentRecord(&record)
		require.NoError(err)
	}

	latest, err := app.LatestRecords("sepolia")
	require.NoError(err)
	require.Equal("0xnew", latest[models.NFT].ContractAddress)
}

func TestUpdateDeploymentRecord(t *testing.T) {
	require := require.New(t)
	app := newTestApp(t)

	record := models.DeploymentRecord{
		Network:      "sepolia",
		ContractType: models.TokensCore,
		Timestamp:    1000,
	}
	_, err := app.WriteDeploymentRecord(&record)
	require.NoError(err)

	record.PostDeployment = append(record.PostDeployment, models.PostDeploymentOperation{
		Method:  "set_registry_address",
		Outcome: models.Verified,
	})
	require.NoError(app.UpdateDeploymentRecord(&record))

	records, err := app.LoadDeploymentRecords("sepolia")
	require.NoError(err)
	require.Len(records, 1)
	require.Len(records[0].PostDeployment, 1)
	require.Equal(models.Verified, records[0].PostDeployment[0].Outcome)
}
