// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package starknet

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/sessionforge/starkdeploy/pkg/constants"
	"go.uber.org/zap"
)

// SncastGateway implements Gateway by shelling out to the Starknet
// Foundry sncast binary. All identifiers travel as hex strings, parsing
// of the tool output is the only interpretation performed here.
var _ Gateway = (*SncastGateway)(nil)

type SncastGateway struct {
	account string
	rpcURL  string
	log     *zap.Logger
	// runCommand is replaced in tests to avoid spawning processes
	runCommand func(ctx context.Context, args ...string) (string, error)
}

func NewSncastGateway(account, rpcURL string, log *zap.Logger) *SncastGateway {
	g := &SncastGateway{
		account: account,
		rpcURL:  rpcURL,
		log:     log,
	}
	g.runCommand = g.runSncast
	return g
}

// CheckSncastInstalled verifies the chain tooling prerequisite before
// any deployment work starts.
func CheckSncastInstalled() error {
	if _, err := exec.LookPath(constants.SncastBinName); err != nil {
		return fmt.Errorf("%s not found in PATH, install Starknet Foundry first: %w", constants.SncastBinName, err)
	}
	return nil
}

// runSncast executes one sncast invocation and returns the combined
// stdout and stderr. sncast reports some recoverable conditions (like
// an already declared class) on stderr with a non-zero exit code, so
// the combined output is returned together with the error and callers
// decide what the condition means.
func (g *SncastGateway) runSncast(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"--account", g.account}, args...)
	cmd := exec.CommandContext(ctx, constants.SncastBinName, full...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	combined := stdout.String() + stderr.String()
	g.log.Debug("sncast",
		zap.Strings("args", args),
		zap.Bool("success", err == nil),
	)
	if err != nil {
		return combined, fmt.Errorf("sncast %s: %w", args[0], err)
	}
	return combined, nil
}

func (g *SncastGateway) Declare(ctx context.Context, contractName string) (DeclareResult, error) {
	output, err := g.runCommand(ctx,
		"declare",
		"--contract-name", contractName,
		"--url", g.rpcURL,
	)
	// already declared surfaces as a command failure, check the output
	// before treating err as fatal
	if classHash, ok := ParseAlreadyDeclared(output); ok {
		return DeclareResult{ClassHash: classHash, AlreadyDeclared: true}, nil
	}
	if err != nil {
		return DeclareResult{}, &OperationError{Op: "declare", Output: strings.TrimSpace(output)}
	}
	classHash, err := ParseClassHash(output)
	if err != nil {
		return DeclareResult{}, &OperationError{Op: "declare", Output: strings.TrimSpace(output)}
	}
	res := DeclareResult{ClassHash: classHash}
	// a fresh declaration carries a transaction to wait on; an already
	// registered one may not
	if txHash, err := ParseTransactionHash(output); err == nil {
		res.TransactionHash = txHash
	}
	return res, nil
}

func (g *SncastGateway) Deploy(ctx context.Context, classHash string, constructorCalldata []string) (DeployResult, error) {
	args := []string{
		"deploy",
		"--class-hash", classHash,
	}
	if len(constructorCalldata) > 0 {
		args = append(args, "--constructor-calldata")
		args = append(args, constructorCalldata...)
	}
	args = append(args, "--url", g.rpcURL)
	output, err := g.runCommand(ctx, args...)
	if err != nil {
		return DeployResult{}, &OperationError{Op: "deploy", Output: strings.TrimSpace(output)}
	}
	address, err := ParseContractAddress(output)
	if err != nil {
		return DeployResult{}, &OperationError{Op: "deploy", Output: strings.TrimSpace(output)}
	}
	txHash, err := ParseTransactionHash(output)
	if err != nil {
		return DeployResult{}, &OperationError{Op: "deploy", Output: strings.TrimSpace(output)}
	}
	return DeployResult{ContractAddress: address, TransactionHash: txHash}, nil
}

func (g *SncastGateway) Invoke(ctx context.Context, contractAddress, method string, calldata []string) (InvokeResult, error) {
	args := []string{
		"invoke",
		"--contract-address", contractAddress,
		"--function", method,
	}
	if len(calldata) > 0 {
		args = append(args, "--calldata")
		args = append(args, calldata...)
	}
	args = append(args, "--url", g.rpcURL)
	output, err := g.runCommand(ctx, args...)
	if err != nil {
		return InvokeResult{}, &OperationError{Op: "invoke " + method, Output: strings.TrimSpace(output)}
	}
	txHash, err := ParseTransactionHash(output)
	if err != nil {
		return InvokeResult{}, &OperationError{Op: "invoke " + method, Output: strings.TrimSpace(output)}
	}
	return InvokeResult{TransactionHash: txHash}, nil
}

func (g *SncastGateway) Call(ctx context.Context, contractAddress, method string, calldata []string) (string, error) {
	args := []string{
		"call",
		"--contract-address", contractAddress,
		"--function", method,
	}
	if len(calldata) > 0 {
		args = append(args, "--calldata")
		args = append(args, calldata...)
	}
	args = append(args, "--url", g.rpcURL)
	output, err := g.runCommand(ctx, args...)
	if err != nil {
		return "", &OperationError{Op: "call " + method, Output: strings.TrimSpace(output)}
	}
	return ParseCallResponse(output), nil
}

func (g *SncastGateway) TransactionStatus(ctx context.Context, txHash string) (TxStatus, error) {
	output, err := g.runCommand(ctx,
		"tx-status",
		txHash,
		"--url", g.rpcURL,
	)
	if err != nil {
		return TxStatusPending, fmt.Errorf("transaction status query: %w", err)
	}
	switch {
	case strings.Contains(output, "AcceptedOnL2") || strings.Contains(output, "Succeeded"):
		return TxStatusSucceeded, nil
	case strings.Contains(output, "Rejected") || strings.Contains(output, "Reverted"):
		return TxStatusRejected, nil
	default:
		return TxStatusPending, nil
	}
}

var accountAddressPattern = regexp.MustCompile(`address:\s*(0x[a-fA-F0-9]+)`)

// AccountAddress resolves the configured account's on-chain address
// from sncast account list output. Used as the default owner when the
// operator does not pass one.
func (g *SncastGateway) AccountAddress(ctx context.Context) (string, error) {
	output, err := g.runCommand(ctx, "account", "list")
	if err != nil {
		return "", fmt.Errorf("could not list accounts: %w", err)
	}
	idx := strings.Index(output, g.account+":")
	if idx == -1 {
		return "", fmt.Errorf("account %q not found in sncast account list", g.account)
	}
	if m := accountAddressPattern.FindStringSubmatch(output[idx:]); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("could not parse address for account %q", g.account)
}
