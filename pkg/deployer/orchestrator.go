// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package deployer

import (
	"context"
	"fmt"

	"github.com/sessionforge/starkdeploy/pkg/application"
	"github.com/sessionforge/starkdeploy/pkg/models"
	"github.com/sessionforge/starkdeploy/pkg/starknet"
)

// WireStep is one post-deployment wiring call: point Target's
// SetMethod at the address resolved for SourceRole (or at the
// marketplace purchase timeout when Timeout is set) and verify through
// GetMethod.
type WireStep struct {
	Target     models.ContractType
	SetMethod  string
	GetMethod  string
	SourceRole string
	Timeout    bool
	Optional   bool
}

// DefaultWiring is the full wiring plan applied after a complete
// deployment run, in order.
func DefaultWiring() []WireStep {
	return []WireStep{
		{Target: models.TokensCore, SetMethod: "set_registry_address", GetMethod: "get_registry_address", SourceRole: "registry"},
		{Target: models.Registry, SetMethod: "set_session_mint_address", GetMethod: "get_session_mint_address", SourceRole: "session_mint"},
		{Target: models.Registry, SetMethod: "set_verifier_address", GetMethod: "get_verifier_address", SourceRole: "verifier", Optional: true},
		{Target: models.Marketplace, SetMethod: "set_payment_token_address", GetMethod: "get_payment_token_address", SourceRole: "payment_token"},
		{Target: models.Marketplace, SetMethod: "set_session_mint_address", GetMethod: "get_session_mint_address", SourceRole: "session_mint"},
		{Target: models.Marketplace, SetMethod: "set_purchase_timeout", GetMethod: "get_purchase_timeout", Timeout: true},
	}
}

// RunResult is the outcome of a full-plan run: one record per deployed
// contract plus the wiring operations that were applied.
type RunResult struct {
	Order   []models.ContractType
	Records map[models.ContractType]*models.DeploymentRecord
	Wiring  []models.PostDeploymentOperation
}

// Orchestrator deploys the whole contract family in dependency order
// and wires the deployed contracts together. Strictly sequential; the
// first failure stops the run and everything already deployed stays
// recorded on disk.
type Orchestrator struct {
	app      *application.Starkdeploy
	deployer *ContractDeployer
	linker   *ConfigurationLinker
	registry models.SpecRegistry
	wiring   []WireStep
}

func NewOrchestrator(
	app *application.Starkdeploy,
	contractDeployer *ContractDeployer,
	linker *ConfigurationLinker,
	registry models.SpecRegistry,
) *Orchestrator {
	return &Orchestrator{
		app:      app,
		deployer: contractDeployer,
		linker:   linker,
		registry: registry,
		wiring:   DefaultWiring(),
	}
}

// Run deploys every contract in the registry in topological order,
// then applies the wiring plan. The overrides map pins dependency
// roles (verifier, an externally deployed payment token) to addresses;
// addresses of contracts deployed during the run always win over
// overrides for later contracts.
func (o *Orchestrator) Run(ctx context.Context, owner string, overrides map[string]string) (*RunResult, error) {
	order, err := PlanOrder(o.registry)
	if err != nil {
		return nil, err
	}

	addresses := map[string]string{}
	for role, addr := range overrides {
		addresses[role] = addr
	}

	result := &RunResult{
		Order:   order,
		Records: map[models.ContractType]*models.DeploymentRecord{},
	}
	var completed []models.ContractType

	for _, contractType := range order {
		spec := o.registry[contractType]
		resolved := map[string]string{}
		for _, dep := range spec.Dependencies {
			resolved[dep.Role] = addresses[dep.Role]
		}

		record, err := o.deployer.Deploy(ctx, spec, owner, resolved)
		if err != nil {
			return result, &PartialFailureError{
				Completed: completed,
				FailedAt:  contractType,
				Err:       err,
			}
		}
		result.Records[contractType] = record
		completed = append(completed, contractType)
		addresses[string(contractType)] = record.ContractAddress
	}

	if err := o.applyWiring(ctx, result, addresses); err != nil {
		return result, err
	}
	return result, nil
}

func (o *Orchestrator) applyWiring(ctx context.Context, result *RunResult, addresses map[string]string) error {
	for _, step := range o.wiring {
		record, ok := result.Records[step.Target]
		if !ok {
			continue
		}

		var value string
		switch {
		case step.Timeout:
			spec := o.registry[step.Target]
			if spec.PurchaseTimeoutSeconds == 0 {
				continue
			}
			value = starknet.Uint64Calldata(spec.PurchaseTimeoutSeconds)
		default:
			value = addresses[step.SourceRole]
			if value == "" || starknet.IsZeroAddress(value) {
				if step.Optional {
					o.app.Log.Infof("skipping %s on %s, no %s configured",
						step.SetMethod, step.Target, step.SourceRole)
					continue
				}
				return &ConfigurationError{
					Reason: fmt.Sprintf("no %s address available for %s", step.SourceRole, step.SetMethod),
				}
			}
		}

		op, err := o.linker.SetAndVerify(ctx, record.ContractAddress, step.SetMethod, step.GetMethod, value)
		record.PostDeployment = append(record.PostDeployment, op)
		result.Wiring = append(result.Wiring, op)
		if updateErr := o.app.UpdateDeploymentRecord(record); updateErr != nil {
			o.app.Log.Warnf("failed to update record for %s: %v", step.Target, updateErr)
		}
		if err != nil {
			return fmt.Errorf("wiring %s on %s failed: %w", step.SetMethod, step.Target, err)
		}
	}
	return nil
}

// DeploySingle deploys one contract, resolving its dependency
// addresses from explicit overrides first, then from the latest
// persisted record per contract type on this network.
func (o *Orchestrator) DeploySingle(
	ctx context.Context,
	contractType models.ContractType,
	owner string,
	overrides map[string]string,
) (*models.DeploymentRecord, error) {
	spec, err := o.registry.Get(contractType)
	if err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}

	latest, err := o.app.LatestRecords(o.deployer.network.Network)
	if err != nil {
		return nil, err
	}

	resolved := map[string]string{}
	for _, dep := range spec.Dependencies {
		if addr, ok := overrides[dep.Role]; ok && addr != "" {
			resolved[dep.Role] = addr
			continue
		}
		if dep.Type != "" {
			if record, ok := latest[dep.Type]; ok {
				resolved[dep.Role] = record.ContractAddress
			}
		}
	}

	return o.deployer.Deploy(ctx, spec, owner, resolved)
}
