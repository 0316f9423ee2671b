// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package deployer

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/sessionforge/starkdeploy/pkg/models"
	"github.com/sessionforge/starkdeploy/pkg/starknet"
	"github.com/sessionforge/starkdeploy/pkg/txwaiter"
	"go.uber.org/zap"
)

// ConfigurationLinker applies post-deployment wiring calls: invoke a
// setter, wait for confirmation, read the value back through the
// matching getter and compare. In strict mode a mismatch is an error;
// otherwise it is reported in the outcome and the run continues.
type ConfigurationLinker struct {
	gateway starknet.Gateway
	waiter  *txwaiter.Waiter
	strict  bool
	log     *zap.SugaredLogger
}

func NewConfigurationLinker(
	gateway starknet.Gateway,
	waiter *txwaiter.Waiter,
	strict bool,
	log *zap.SugaredLogger,
) *ConfigurationLinker {
	return &ConfigurationLinker{
		gateway: gateway,
		waiter:  waiter,
		strict:  strict,
		log:     log,
	}
}

// SetAndVerify invokes setMethod(value) on the contract, awaits the
// transaction, then reads getMethod back and compares modulo address
// normalization. The returned operation always describes what
// happened. A setter that is rejected, times out waiting for
// confirmation, or cannot be read back is an error; only a confirmed
// setter whose read-back differs is downgraded to a warning, unless
// strict mode makes that an error too.
func (l *ConfigurationLinker) SetAndVerify(
	ctx context.Context,
	contractAddress, setMethod, getMethod, value string,
) (models.PostDeploymentOperation, error) {
	op := models.PostDeploymentOperation{
		Method:   setMethod,
		Calldata: []string{value},
	}

	invoked, err := l.gateway.Invoke(ctx, contractAddress, setMethod, op.Calldata)
	if err != nil {
		return op, err
	}
	op.TransactionHash = invoked.TransactionHash

	state, err := l.waiter.AwaitConfirmation(ctx, invoked.TransactionHash)
	if err != nil {
		return op, err
	}
	switch state {
	case txwaiter.Confirmed:
	case txwaiter.Failed:
		return op, &TransactionFailedError{
			Phase:           setMethod,
			TransactionHash: invoked.TransactionHash,
		}
	default:
		// the setter may still land later, but an unconfirmed wiring
		// call leaves the contract in an unknown state and must stop
		// the run
		op.Outcome = models.Unconfirmed
		return op, &ConfirmationTimeoutError{
			Phase:           setMethod,
			TransactionHash: invoked.TransactionHash,
			Attempts:        l.waiter.MaxAttempts(),
		}
	}

	raw, err := l.gateway.Call(ctx, contractAddress, getMethod, nil)
	if err != nil {
		op.Outcome = models.Unconfirmed
		return op, fmt.Errorf("read-back %s on %s failed: %w", getMethod, contractAddress, err)
	}

	actual := raw
	if hex, ok := starknet.FirstHexValue(raw); ok {
		actual = hex
	}
	if valuesEqual(actual, value) {
		op.Outcome = models.Verified
		return op, nil
	}

	op.Outcome = models.Mismatch
	if l.strict {
		return op, &VerificationMismatchError{
			ContractAddress: contractAddress,
			Method:          setMethod,
			Expected:        value,
			Actual:          actual,
		}
	}
	l.log.Warnf("%s on %s reads back %s, expected %s",
		getMethod, contractAddress, actual, value)
	return op, nil
}

// valuesEqual compares a read-back value with the value that was set:
// numerically when both parse as numbers (hex addresses with differing
// padding, decimal vs hex scalars), string-equal otherwise.
func valuesEqual(actual, expected string) bool {
	a, okA := parseNumeric(actual)
	b, okB := parseNumeric(expected)
	if okA && okB {
		return a.Cmp(b) == 0
	}
	return actual == expected
}

func parseNumeric(value string) (*big.Int, bool) {
	v := strings.TrimSpace(strings.ToLower(value))
	if strings.HasPrefix(v, "0x") {
		return new(big.Int).SetString(v[2:], 16)
	}
	return new(big.Int).SetString(v, 10)
}
