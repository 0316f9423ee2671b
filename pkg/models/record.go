// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package models

import (
	"fmt"
	"time"
)

// VerificationOutcome is the result of a post-deployment set-and-verify
// step.
type VerificationOutcome string

const (
	Verified    VerificationOutcome = "Verified"
	Mismatch    VerificationOutcome = "Mismatch"
	Unconfirmed VerificationOutcome = "Unconfirmed"
)

// PostDeploymentOperation records one wiring call applied to a deployed
// contract after its deployment was confirmed.
type PostDeploymentOperation struct {
	Method          string              `json:"method"`
	Calldata        []string            `json:"calldata"`
	TransactionHash string              `json:"transaction_hash"`
	Outcome         VerificationOutcome `json:"outcome"`
}

// ExplorerLinks point the operator at the block explorer pages for a
// deployment.
type ExplorerLinks struct {
	Contract string `json:"contract,omitempty"`
	Class    string `json:"class,omitempty"`
}

// DeploymentRecord is the durable result of one successful contract
// deployment. It is never mutated after creation except to append
// post-deployment operations.
type DeploymentRecord struct {
	Environment     string            `json:"environment"`
	Network         string            `json:"network"`
	Account         string            `json:"account"`
	ContractType    ContractType      `json:"contract_type"`
	ContractName    string            `json:"contract_name"`
	ClassHash       string            `json:"class_hash"`
	ContractAddress string            `json:"contract_address"`
	OwnerAddress    string            `json:"owner_address,omitempty"`
	ConstructorArgs []string          `json:"constructor_args"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	TransactionHash string            `json:"transaction_hash,omitempty"`
	Timestamp       int64             `json:"deployment_timestamp"`
	DeployedAt      string            `json:"deployment_date"`
	ExplorerLinks   ExplorerLinks     `json:"explorer_links"`

	PostDeployment []PostDeploymentOperation `json:"post_deployment,omitempty"`
}

// RecordFileName builds the deterministic record file name from
// network, contract type and deployment time, so repeated runs never
// collide.
func RecordFileName(network string, contractType ContractType, ts time.Time) string {
	return fmt.Sprintf("deployment_%s_%s_%d.json", network, contractType, ts.Unix())
}
