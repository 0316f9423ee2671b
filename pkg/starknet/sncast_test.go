// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package starknet

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGateway(output string, cmdErr error) (*SncastGateway, *[][]string) {
	g := NewSncastGateway("deployer", "http://localhost:5050", zap.NewNop())
	var calls [][]string
	g.runCommand = func(_ context.Context, args ...string) (string, error) {
		calls = append(calls, args)
		return output, cmdErr
	}
	return g, &calls
}

func TestDeclareFresh(t *testing.T) {
	require := require.New(t)

	g, _ := newTestGateway("class_hash: 0xc1a55\ntransaction_hash: 0x71", nil)
	res, err := g.Declare(context.Background(), "SessionRegistry")
	require.NoError(err)
	require.False(res.AlreadyDeclared)
	require.Equal("0xc1a55", res.ClassHash)
	require.Equal("0x71", res.TransactionHash)
}

func TestDeclareAlreadyDeclared(t *testing.T) {
	require := require.New(t)

	// sncast exits non-zero for this condition, it must still be
	// recovered as a tagged result
	g, _ := newTestGateway("error: Class with hash 0xc1a55 is already declared", errors.New("exit status 1"))
	res, err := g.Declare(context.Background(), "SessionRegistry")
	require.NoError(err)
	require.True(res.AlreadyDeclared)
	require.Equal("0xc1a55", res.ClassHash)
	require.Empty(res.TransactionHash)
}

func TestDeclareHardFailure(t *testing.T) {
	require := require.New(t)

	g, _ := newTestGateway("error: insufficient account balance", errors.New("exit status 1"))
	_, err := g.Declare(context.Background(), "SessionRegistry")
	var opErr *OperationError
	require.ErrorAs(err, &opErr)
	require.Equal("declare", opErr.Op)
}

func TestDeployArgsAndParsing(t *testing.T) {
	require := require.New(t)

	g, calls := newTestGateway("contract_address: 0xadd\ntransaction_hash: 0x72", nil)
	res, err := g.Deploy(context.Background(), "0xc1a55", []string{"0x1", "0x2"})
	require.NoError(err)
	require.Equal("0xadd", res.ContractAddress)
	require.Equal("0x72", res.TransactionHash)

	require.Len(*calls, 1)
	args := (*calls)[0]
	require.Equal("deploy", args[0])
	require.Contains(args, "--constructor-calldata")
	require.Contains(args, "0x1")
	require.Contains(args, "0x2")
}

func TestDeployNoCalldataOmitsFlag(t *testing.T) {
	require := require.New(t)

	g, calls := newTestGateway("contract_address: 0xadd\ntransaction_hash: 0x72", nil)
	_, err := g.Deploy(context.Background(), "0xc1a55", nil)
	require.NoError(err)
	require.NotContains((*calls)[0], "--constructor-calldata")
}

func TestInvokeAndCall(t *testing.T) {
	require := require.New(t)

	g, _ := newTestGateway("transaction_hash: 0x73", nil)
	inv, err := g.Invoke(context.Background(), "0xadd", "set_registry_address", []string{"0x9"})
	require.NoError(err)
	require.Equal("0x73", inv.TransactionHash)

	g2, _ := newTestGateway("response: 0x9", nil)
	raw, err := g2.Call(context.Background(), "0xadd", "get_registry_address", nil)
	require.NoError(err)
	require.Equal("0x9", raw)
}

func TestTransactionStatus(t *testing.T) {
	require := require.New(t)

	g, _ := newTestGateway("status: AcceptedOnL2", nil)
	st, err := g.TransactionStatus(context.Background(), "0x71")
	require.NoError(err)
	require.Equal(TxStatusSucceeded, st)

	g, _ = newTestGateway("status: Rejected", nil)
	st, err = g.TransactionStatus(context.Background(), "0x71")
	require.NoError(err)
	require.Equal(TxStatusRejected, st)

	g, _ = newTestGateway("status: Received", nil)
	st, err = g.TransactionStatus(context.Background(), "0x71")
	require.NoError(err)
	require.Equal(TxStatusPending, st)

	// transport failure is an error, the waiter decides what it means
	g, _ = newTestGateway("", errors.New("connection refused"))
	_, err = g.TransactionStatus(context.Background(), "0x71")
	require.Error(err)
}

func TestAccountAddress(t *testing.T) {
	require := require.New(t)

	out := "Available accounts:\nother: something\n  address: 0x111\ndeployer:\n  address: 0x222\n"
	g, _ := newTestGateway(out, nil)
	addr, err := g.AccountAddress(context.Background())
	require.NoError(err)
	require.Equal("0x222", addr)

	g, _ = newTestGateway("Available accounts:\nsomeoneelse:\n  address: 0x111\n", nil)
	_, err = g.AccountAddress(context.Background())
	require.Error(err)
}
