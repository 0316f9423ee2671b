// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package configurecmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sessionforge/starkdeploy/pkg/application"
	"github.com/sessionforge/starkdeploy/pkg/deployer"
	"github.com/sessionforge/starkdeploy/pkg/models"
	"github.com/sessionforge/starkdeploy/pkg/starknet"
	"github.com/sessionforge/starkdeploy/pkg/txwaiter"
	"github.com/sessionforge/starkdeploy/pkg/ux"
	"github.com/spf13/cobra"
)

var app *application.Starkdeploy

var (
	environment   string
	targetAddress string
	value         string
	invokeData    string
)

// setStep describes one configuration subcommand: which deployed
// contract it targets and which setter/getter pair it drives.
type setStep struct {
	use       string
	short     string
	target    models.ContractType
	setMethod string
	getMethod string
	// valueRole resolves the default value from the latest record of
	// that contract type
	valueRole models.ContractType
	// scalar values are captured as plain numbers, not addresses
	scalar bool
}

var setSteps = []setStep{
	{
		use:       "set-registry",
		short:     "Point tokens_core at the registry",
		target:    models.TokensCore,
		setMethod: "set_registry_address",
		getMethod: "get_registry_address",
		valueRole: models.Registry,
	},
	{
		use:       "set-session-mint",
		short:     "Point the registry at session_mint",
		target:    models.Registry,
		setMethod: "set_session_mint_address",
		getMethod: "get_session_mint_address",
		valueRole: models.SessionMint,
	},
	{
		use:       "set-verifier",
		short:     "Point the registry at a verifier",
		target:    models.Registry,
		setMethod: "set_verifier_address",
		getMethod: "get_verifier_address",
	},
	{
		use:       "set-payment-token",
		short:     "Point the marketplace at the payment token",
		target:    models.Marketplace,
		setMethod: "set_payment_token_address",
		getMethod: "get_payment_token_address",
		valueRole: models.PaymentToken,
	},
	{
		use:       "set-timeout",
		short:     "Set the marketplace purchase timeout in seconds",
		target:    models.Marketplace,
		setMethod: "set_purchase_timeout",
		getMethod: "get_purchase_timeout",
		scalar:    true,
	},
}

// starkdeploy configure
func NewConfigureCmd(injectedApp *application.Starkdeploy) *cobra.Command {
	app = injectedApp

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Wire deployed contracts together",
		Long: `The configure command suite applies individual wiring calls to already
deployed contracts: every setter is invoked, awaited, and read back
through the matching getter to verify the value stuck.

Target and value addresses default to the latest deployment records on
the configured network; pass --address and --value to override.`,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				fmt.Println(err)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&environment, "environment", "e", "", "environment from the deployment config")
	cmd.PersistentFlags().StringVar(&targetAddress, "address", "", "target contract address (default: latest record)")

	for _, step := range setSteps {
		cmd.AddCommand(newSetCmd(step))
	}
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newInvokeCmd())
	return cmd
}

func newSetCmd(step setStep) *cobra.Command {
	cmd := &cobra.Command{
		Use:          step.use,
		Short:        step.short,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSet(cmd, step)
		},
	}
	cmd.Flags().StringVar(&value, "value", "", "value to set (default: latest record / config)")
	return cmd
}

// chainStack is everything a configure subcommand needs to talk to the
// network.
type chainStack struct {
	env     models.Environment
	gateway *starknet.SncastGateway
	linker  *deployer.ConfigurationLinker
	latest  map[models.ContractType]models.DeploymentRecord
}

func newChainStack() (*chainStack, error) {
	conf, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	if environment == "" {
		return nil, errors.New("an environment is required, pass --environment")
	}
	env, err := conf.Environment(environment)
	if err != nil {
		return nil, err
	}
	if err := starknet.CheckSncastInstalled(); err != nil {
		return nil, err
	}

	gateway := starknet.NewSncastGateway(env.Account, env.RPCURL, app.Log.Desugar())
	waiter, err := txwaiter.New(gateway, env.Settings.MaxPollAttempts, env.Settings.PollInterval(), app.Log.Desugar())
	if err != nil {
		return nil, err
	}
	latest, err := app.LatestRecords(env.Network)
	if err != nil {
		return nil, err
	}
	return &chainStack{
		env:     env,
		gateway: gateway,
		linker:  deployer.NewConfigurationLinker(gateway, waiter, env.Settings.StrictVerification, app.Log),
		latest:  latest,
	}, nil
}

func (s *chainStack) resolveTarget(target models.ContractType) (string, error) {
	if targetAddress != "" {
		return targetAddress, nil
	}
	if record, ok := s.latest[target]; ok {
		return record.ContractAddress, nil
	}
	return "", fmt.Errorf("no deployment record for %s on %s, pass --address", target, s.env.Network)
}

func (s *chainStack) resolveValue(step setStep) (string, error) {
	if value != "" {
		return value, nil
	}
	if step.valueRole != "" {
		if record, ok := s.latest[step.valueRole]; ok {
			return record.ContractAddress, nil
		}
		return "", fmt.Errorf("no deployment record for %s on %s, pass --value", step.valueRole, s.env.Network)
	}
	if step.scalar {
		seconds, err := app.Prompt.CaptureUint64(step.short)
		if err != nil {
			return "", err
		}
		return starknet.Uint64Calldata(seconds), nil
	}
	return app.Prompt.CaptureAddress(fmt.Sprintf("Value for %s", step.setMethod))
}

func runSet(cmd *cobra.Command, step setStep) error {
	stack, err := newChainStack()
	if err != nil {
		return err
	}
	target, err := stack.resolveTarget(step.target)
	if err != nil {
		return err
	}
	wireValue, err := stack.resolveValue(step)
	if err != nil {
		return err
	}

	op, err := stack.linker.SetAndVerify(cmd.Context(), target, step.setMethod, step.getMethod, wireValue)
	if err != nil {
		var timeout *deployer.ConfirmationTimeoutError
		if errors.As(err, &timeout) {
			ux.Logger.YellowWarnToUser("%s submitted but not confirmed (tx %s), re-run once it lands", step.setMethod, op.TransactionHash)
		}
		return err
	}
	if op.Outcome == models.Mismatch {
		ux.Logger.RedXToUser("%s set but read-back mismatched", step.setMethod)
		return nil
	}
	ux.Logger.GreenCheckmarkToUser("%s on %s verified", step.setMethod, starknet.FormatAddress(target))
	return nil
}

// starkdeploy configure get <contract-address> <method>
func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "get [contract-address] [method]",
		Short:        "Read a value from a deployed contract",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := newChainStack()
			if err != nil {
				return err
			}
			response, err := stack.gateway.Call(cmd.Context(), args[0], args[1], nil)
			if err != nil {
				return err
			}
			ux.Logger.PrintToUser("%s", response)
			return nil
		},
	}
}

// starkdeploy configure invoke <contract-address> <method>
func newInvokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "invoke [contract-address] [method]",
		Short:        "Invoke a method on a deployed contract",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := newChainStack()
			if err != nil {
				return err
			}
			var calldata []string
			if invokeData != "" {
				calldata = strings.Split(invokeData, ",")
			}
			result, err := stack.gateway.Invoke(cmd.Context(), args[0], args[1], calldata)
			if err != nil {
				return err
			}
			ux.Logger.GreenCheckmarkToUser("Submitted %s (tx %s)", args[1], result.TransactionHash)
			return nil
		},
	}
	cmd.Flags().StringVar(&invokeData, "calldata", "", "comma separated calldata values")
	return cmd
}
