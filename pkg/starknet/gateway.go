// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package starknet

import (
	"context"
	"fmt"
)

// TxStatus is the raw status a chain status query reports for a
// transaction. Anything that is neither success nor rejection is
// still pending from the caller's point of view.
type TxStatus int

const (
	TxStatusPending TxStatus = iota
	TxStatusSucceeded
	TxStatusRejected
)

func (s TxStatus) String() string {
	switch s {
	case TxStatusSucceeded:
		return "Succeeded"
	case TxStatusRejected:
		return "Rejected"
	default:
		return "Pending"
	}
}

// DeclareResult is the tagged outcome of a declare operation.
// AlreadyDeclared means the artifact was registered on-chain by a
// previous run; the existing class hash is reported and no transaction
// was submitted. This is the expected steady state on repeated runs,
// not a failure.
type DeclareResult struct {
	ClassHash       string
	TransactionHash string
	AlreadyDeclared bool
}

// DeployResult holds the address and transaction of a deploy operation.
type DeployResult struct {
	ContractAddress string
	TransactionHash string
}

// InvokeResult holds the transaction of a state-changing call.
type InvokeResult struct {
	TransactionHash string
}

// Gateway is the synchronous boundary to the chain tooling. Every
// operation blocks until the underlying command returns; none of them
// retries on its own, retry policy belongs to the caller.
type Gateway interface {
	// Declare registers a contract artifact on-chain. An artifact that
	// is already declared is reported via DeclareResult.AlreadyDeclared,
	// never as an error.
	Declare(ctx context.Context, contractName string) (DeclareResult, error)
	// Deploy instantiates a declared class with the given constructor
	// calldata.
	Deploy(ctx context.Context, classHash string, constructorCalldata []string) (DeployResult, error)
	// Invoke submits a state-changing call to a deployed contract.
	Invoke(ctx context.Context, contractAddress, method string, calldata []string) (InvokeResult, error)
	// Call performs a read-only query and returns the raw response.
	Call(ctx context.Context, contractAddress, method string, calldata []string) (string, error)
	// TransactionStatus queries the current status of a transaction.
	TransactionStatus(ctx context.Context, txHash string) (TxStatus, error)
}

// OperationError is a hard on-chain rejection of a declare, deploy,
// invoke or call. It carries the raw tool output for the operator.
type OperationError struct {
	Op     string
	Output string
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("chain operation %s failed: %s", e.Op, e.Output)
}
