// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package deployer

import (
	"fmt"

	"github.com/sessionforge/starkdeploy/pkg/models"
)

// ConfigurationError is a problem with the deployment plan or its
// inputs, detected before any chain call is made.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// DependencyError means a required dependency address was missing or
// its liveness probe failed; the deployment aborts before any mutating
// call.
type DependencyError struct {
	Contract models.ContractType
	Role     string
	Err      error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency %s of %s: %v", e.Role, e.Contract, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// ConfirmationTimeoutError means a submitted transaction never reached
// a terminal state within the poll budget. The transaction may still
// land later; the record of what was submitted is in the error.
type ConfirmationTimeoutError struct {
	Contract        models.ContractType
	Phase           string
	TransactionHash string
	Attempts        int
}

func (e *ConfirmationTimeoutError) Error() string {
	subject := e.Phase
	if e.Contract != "" {
		subject = fmt.Sprintf("%s of %s", e.Phase, e.Contract)
	}
	return fmt.Sprintf(
		"%s not confirmed after %d attempts (tx %s)",
		subject, e.Attempts, e.TransactionHash,
	)
}

// TransactionFailedError means the chain rejected a submitted
// transaction.
type TransactionFailedError struct {
	Contract        models.ContractType
	Phase           string
	TransactionHash string
}

func (e *TransactionFailedError) Error() string {
	subject := e.Phase
	if e.Contract != "" {
		subject = fmt.Sprintf("%s of %s", e.Phase, e.Contract)
	}
	return fmt.Sprintf("%s rejected on-chain (tx %s)", subject, e.TransactionHash)
}

// VerificationMismatchError is returned by the linker in strict mode
// when a wiring read-back does not match the value that was set.
type VerificationMismatchError struct {
	ContractAddress string
	Method          string
	Expected        string
	Actual          string
}

func (e *VerificationMismatchError) Error() string {
	return fmt.Sprintf(
		"verification of %s on %s failed: set %s, read back %s",
		e.Method, e.ContractAddress, e.Expected, e.Actual,
	)
}

// PartialFailureError reports a full-plan run that stopped mid-way:
// every contract in Completed has a persisted record, FailedAt is the
// contract whose deployment failed, everything after it was not
// attempted.
type PartialFailureError struct {
	Completed []models.ContractType
	FailedAt  models.ContractType
	Err       error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf(
		"deployment stopped at %s after %d completed contract(s): %v",
		e.FailedAt, len(e.Completed), e.Err,
	)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}
