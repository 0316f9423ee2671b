// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package deployer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sessionforge/starkdeploy/pkg/application"
	"github.com/sessionforge/starkdeploy/pkg/constants"
	"github.com/sessionforge/starkdeploy/pkg/models"
	"github.com/sessionforge/starkdeploy/pkg/starknet"
	"github.com/sessionforge/starkdeploy/pkg/statemachine"
	"github.com/sessionforge/starkdeploy/pkg/txwaiter"
	"github.com/sessionforge/starkdeploy/pkg/utils"
)

const (
	stateDependencyCheck = "checking dependencies"
	stateDeclare         = "declaring class"
	stateDeploy          = "deploying contract"
	stateConfirm         = "awaiting confirmation"
	stateRecorded        = "recording deployment"
)

func deploymentStates() []string {
	return []string{
		stateDependencyCheck,
		stateDeclare,
		stateDeploy,
		stateConfirm,
		stateRecorded,
	}
}

// ContractDeployer drives a single contract through its deployment
// lifecycle: dependency check, idempotent declare, deploy, transaction
// confirmation and record persistence. One instance serves a whole
// run; Deploy is called once per contract.
type ContractDeployer struct {
	app      *application.Starkdeploy
	gateway  starknet.Gateway
	waiter   *txwaiter.Waiter
	envName  string
	network  models.NetworkConfig
	settings models.DeploymentSettings

	// now and probeTimeout are swapped out in tests
	now          func() time.Time
	probeTimeout time.Duration
}

func NewContractDeployer(
	app *application.Starkdeploy,
	gateway starknet.Gateway,
	waiter *txwaiter.Waiter,
	envName string,
	env models.Environment,
) *ContractDeployer {
	return &ContractDeployer{
		app:      app,
		gateway:  gateway,
		waiter:   waiter,
		envName:  envName,
		network:  env.NetworkConfig,
		settings: env.Settings,
		now:      time.Now,

		probeTimeout: constants.DependencyProbeTimeout,
	}
}

// Deploy runs the full lifecycle for one contract. The resolved map
// carries dependency role -> address for every role the contract
// requires. On success the persisted record is returned; on any
// failure the state machine aborts and no record is written.
func (d *ContractDeployer) Deploy(
	ctx context.Context,
	spec models.ContractSpec,
	owner string,
	resolved map[string]string,
) (*models.DeploymentRecord, error) {
	machine, err := statemachine.New(deploymentStates())
	if err != nil {
		return nil, err
	}

	var (
		declared  starknet.DeclareResult
		deployed  starknet.DeployResult
		calldata  []string
		record    *models.DeploymentRecord
		deployErr error
	)

	for machine.Running() {
		switch machine.CurrentState() {
		case stateDependencyCheck:
			deployErr = d.checkDependencies(ctx, spec, resolved)
		case stateDeclare:
			declared, deployErr = d.declare(ctx, spec)
		case stateDeploy:
			calldata, deployErr = spec.ConstructorCalldata(owner, resolved)
			if deployErr == nil {
				deployed, deployErr = d.deploy(ctx, spec, declared.ClassHash, calldata)
			}
		case stateConfirm:
			deployErr = d.confirm(ctx, spec.Type, "deploy", deployed.TransactionHash)
		case stateRecorded:
			record, deployErr = d.record(spec, owner, resolved, declared, deployed, calldata)
		}
		if deployErr != nil {
			machine.Next(statemachine.Stop)
			break
		}
		machine.Next(statemachine.Forward)
	}
	if machine.Aborted() {
		return nil, fmt.Errorf("deployment of %s aborted: %w", spec.Type, deployErr)
	}
	return record, nil
}

// checkDependencies resolves every dependency role and probes the
// target contract's well-known read method so a bad address fails the
// run before any mutating call.
func (d *ContractDeployer) checkDependencies(
	ctx context.Context,
	spec models.ContractSpec,
	resolved map[string]string,
) error {
	for _, dep := range spec.Dependencies {
		addr, ok := resolved[dep.Role]
		if !ok || addr == "" {
			if dep.Optional {
				resolved[dep.Role] = constants.DefaultVerifierAddress
				continue
			}
			return &DependencyError{
				Contract: spec.Type,
				Role:     dep.Role,
				Err:      errors.New("no address resolved"),
			}
		}
		if dep.Optional && starknet.IsZeroAddress(addr) {
			continue
		}
		if !starknet.IsValidAddress(addr) {
			return &DependencyError{
				Contract: spec.Type,
				Role:     dep.Role,
				Err:      fmt.Errorf("invalid address %q", addr),
			}
		}
		if d.settings.SkipLivenessProbe || dep.ProbeMethod == "" {
			continue
		}
		if err := d.probe(ctx, addr, dep.ProbeMethod, dep.ProbeCalldata); err != nil {
			return &DependencyError{
				Contract: spec.Type,
				Role:     dep.Role,
				Err:      fmt.Errorf("liveness probe %s on %s failed: %w", dep.ProbeMethod, addr, err),
			}
		}
		d.app.Log.Debugf("dependency %s of %s live at %s", dep.Role, spec.Type, addr)
	}
	return nil
}

func (d *ContractDeployer) probe(ctx context.Context, addr, method string, calldata []string) error {
	_, err := utils.Retry(
		func(probeCtx context.Context) (string, error) {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			return d.gateway.Call(probeCtx, addr, method, calldata)
		},
		d.probeTimeout,
		2,
		fmt.Sprintf("probe %s", method),
	)
	return err
}

// declare registers the artifact, tolerating the already-declared
// steady state of repeated runs. Only a fresh declaration submits a
// transaction and therefore only a fresh declaration waits.
func (d *ContractDeployer) declare(ctx context.Context, spec models.ContractSpec) (starknet.DeclareResult, error) {
	result, err := d.gateway.Declare(ctx, spec.Name)
	if err != nil {
		return starknet.DeclareResult{}, err
	}
	if result.AlreadyDeclared {
		d.app.Log.Infof("class %s already declared as %s, skipping declaration", spec.Name, result.ClassHash)
		return result, nil
	}
	d.app.Log.Infof("declared %s as class %s (tx %s)", spec.Name, result.ClassHash, result.TransactionHash)
	if result.TransactionHash == "" {
		return result, nil
	}
	return result, d.confirm(ctx, spec.Type, "declare", result.TransactionHash)
}

func (d *ContractDeployer) deploy(
	ctx context.Context,
	spec models.ContractSpec,
	classHash string,
	calldata []string,
) (starknet.DeployResult, error) {
	d.app.Log.Infof("deploying %s with %d constructor args", spec.Name, len(calldata))
	return d.gateway.Deploy(ctx, classHash, calldata)
}

func (d *ContractDeployer) confirm(ctx context.Context, contract models.ContractType, phase, txHash string) error {
	state, err := d.waiter.AwaitConfirmation(ctx, txHash)
	if err != nil {
		return err
	}
	switch state {
	case txwaiter.Confirmed:
		return nil
	case txwaiter.Failed:
		return &TransactionFailedError{
			Contract:        contract,
			Phase:           phase,
			TransactionHash: txHash,
		}
	default:
		return &ConfirmationTimeoutError{
			Contract:        contract,
			Phase:           phase,
			TransactionHash: txHash,
			Attempts:        d.settings.MaxPollAttempts,
		}
	}
}

func (d *ContractDeployer) record(
	spec models.ContractSpec,
	owner string,
	resolved map[string]string,
	declared starknet.DeclareResult,
	deployed starknet.DeployResult,
	calldata []string,
) (*models.DeploymentRecord, error) {
	deployedAt := d.now()
	dependencies := map[string]string{}
	for _, dep := range spec.Dependencies {
		dependencies[dep.Role] = resolved[dep.Role]
	}

	record := &models.DeploymentRecord{
		Environment:     d.envName,
		Network:         d.network.Network,
		Account:         d.network.Account,
		ContractType:    spec.Type,
		ContractName:    spec.Name,
		ClassHash:       declared.ClassHash,
		ContractAddress: deployed.ContractAddress,
		OwnerAddress:    owner,
		ConstructorArgs: calldata,
		Dependencies:    dependencies,
		TransactionHash: deployed.TransactionHash,
		Timestamp:       deployedAt.Unix(),
		DeployedAt:      deployedAt.UTC().Format(time.RFC3339),
		ExplorerLinks:   d.explorerLinks(declared.ClassHash, deployed.ContractAddress),
	}

	recordPath, err := d.app.WriteDeploymentRecord(record)
	if err != nil {
		return nil, fmt.Errorf("failed to persist deployment record for %s: %w", spec.Type, err)
	}
	d.app.Log.Infof("recorded %s deployment at %s", spec.Type, recordPath)
	return record, nil
}

func (d *ContractDeployer) explorerLinks(classHash, contractAddress string) models.ExplorerLinks {
	if d.network.Explorer == "" {
		return models.ExplorerLinks{}
	}
	return models.ExplorerLinks{
		Contract: d.network.Explorer + "/contract/" + contractAddress,
		Class:    d.network.Explorer + "/class/" + classHash,
	}
}
