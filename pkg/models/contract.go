// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package models

import (
	"fmt"
	"sort"

	"github.com/sessionforge/starkdeploy/pkg/starknet"
)

type ContractType string

const (
	NFT          ContractType = "nft"
	TokensCore   ContractType = "tokens_core"
	Registry     ContractType = "registry"
	SessionMint  ContractType = "session_mint"
	Marketplace  ContractType = "marketplace"
	PaymentToken ContractType = "payment_token"
)

// DependencyRole is one address-typed constructor slot of a contract.
// Type names the contract type that fills the slot when deploying the
// full plan; roles with an empty Type are satisfied from configuration
// or operator flags only (e.g. an externally deployed verifier).
type DependencyRole struct {
	Role          string
	Type          ContractType
	ProbeMethod   string
	ProbeCalldata []string
	// Optional roles may resolve to the zero address, meaning "not wired yet"
	Optional bool
}

// ContractSpec is the immutable description of a contract type: its
// artifact name, required dependency roles in constructor order, and
// scalar constructor parameters. Built once per run from configuration
// and never mutated.
type ContractSpec struct {
	Type ContractType
	// Name is the on-chain artifact identifier passed to declare
	Name string

	TakesOwner   bool
	Dependencies []DependencyRole

	// scalar constructor parameters, in constructor order after the
	// dependency addresses
	TakesBaseURI bool
	BaseURI      string

	TakesPurchaseTimeout   bool
	PurchaseTimeoutSeconds uint64

	// ProbeMethod is the well-known read method used to check this
	// contract is live when it appears as someone else's dependency
	ProbeMethod   string
	ProbeCalldata []string
}

// ConstructorCalldata assembles the constructor argument list in the
// fixed contract-type-specific order: owner first, then dependency
// addresses in declaration order, then scalar parameters. The order
// must exactly match the on-chain constructor.
func (spec *ContractSpec) ConstructorCalldata(owner string, resolved map[string]string) ([]string, error) {
	var calldata []string
	if spec.TakesOwner {
		if owner == "" {
			return nil, fmt.Errorf("contract %s requires an owner address", spec.Type)
		}
		calldata = append(calldata, owner)
	}
	for _, dep := range spec.Dependencies {
		addr, ok := resolved[dep.Role]
		if !ok || addr == "" {
			return nil, fmt.Errorf("contract %s requires a %s address", spec.Type, dep.Role)
		}
		calldata = append(calldata, addr)
	}
	if spec.TakesBaseURI {
		calldata = append(calldata, starknet.ByteArrayCalldata(spec.BaseURI)...)
	}
	if spec.TakesPurchaseTimeout {
		if spec.PurchaseTimeoutSeconds == 0 {
			return nil, fmt.Errorf("contract %s requires a non-zero purchase timeout", spec.Type)
		}
		calldata = append(calldata, starknet.Uint64Calldata(spec.PurchaseTimeoutSeconds))
	}
	return calldata, nil
}

// SpecRegistry maps contract types to their specs. It is an explicit
// value built once per run and passed around, never process-global
// state.
type SpecRegistry map[ContractType]ContractSpec

func (r SpecRegistry) Get(t ContractType) (ContractSpec, error) {
	spec, ok := r[t]
	if !ok {
		return ContractSpec{}, fmt.Errorf("unknown contract type %q", t)
	}
	return spec, nil
}

// Types returns the registry's contract types in deterministic
// deployment-plan declaration order. Types outside the standard plan
// follow in lexical order.
func (r SpecRegistry) Types() []ContractType {
	var out []ContractType
	seen := map[ContractType]bool{}
	for _, t := range planOrder {
		if _, ok := r[t]; ok {
			out = append(out, t)
			seen[t] = true
		}
	}
	var extra []ContractType
	for t := range r {
		if !seen[t] {
			extra = append(extra, t)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

// planOrder fixes the declaration order of the full plan; the
// orchestrator still topologically sorts it against the actual
// dependency edges.
var planOrder = []ContractType{
	NFT,
	TokensCore,
	PaymentToken,
	Registry,
	SessionMint,
	Marketplace,
}

// balanceOfProbeCalldata is a dummy holder and token id, the probe only
// cares that the method answers.
var balanceOfProbeCalldata = []string{"0x0", "0x1"}

// baseSpecs describes the shape of every known contract type. Per-run
// scalar values (base URIs, timeouts, configured addresses) are filled
// in from configuration by the config loader.
func baseSpecs() map[ContractType]ContractSpec {
	return map[ContractType]ContractSpec{
		NFT: {
			Type:         NFT,
			Name:         "SessionNFT",
			TakesOwner:   true,
			TakesBaseURI: true,
			ProbeMethod:  "name",
		},
		TokensCore: {
			Type:          TokensCore,
			Name:          "SessionTokensCore",
			TakesOwner:    true,
			TakesBaseURI:  true,
			ProbeMethod:   "balance_of",
			ProbeCalldata: balanceOfProbeCalldata,
		},
		PaymentToken: {
			Type:        PaymentToken,
			Name:        "SimpleERC20",
			ProbeMethod: "name",
		},
		Registry: {
			Type:       Registry,
			Name:       "SessionRegistry",
			TakesOwner: true,
			Dependencies: []DependencyRole{
				{Role: "nft", Type: NFT, ProbeMethod: "name"},
				{Role: "tokens_core", Type: TokensCore, ProbeMethod: "balance_of", ProbeCalldata: balanceOfProbeCalldata},
				{Role: "verifier", Optional: true},
			},
			ProbeMethod: "get_owner",
		},
		SessionMint: {
			Type: SessionMint,
			Name: "SessionMint",
			Dependencies: []DependencyRole{
				{Role: "registry", Type: Registry, ProbeMethod: "get_owner"},
			},
		},
		Marketplace: {
			Type: Marketplace,
			Name: "SessionsMarketplace",
			Dependencies: []DependencyRole{
				{Role: "session_mint", Type: SessionMint},
				{Role: "verifier", Optional: true},
				{Role: "payment_token", Type: PaymentToken, ProbeMethod: "name"},
			},
			TakesPurchaseTimeout: true,
		},
	}
}

// NewSpecRegistry builds the explicit per-run registry from the static
// shapes. The caller overlays per-environment parameters afterwards.
func NewSpecRegistry() SpecRegistry {
	return baseSpecs()
}
