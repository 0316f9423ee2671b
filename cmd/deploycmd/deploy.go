// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package deploycmd

import (
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sessionforge/starkdeploy/pkg/application"
	"github.com/sessionforge/starkdeploy/pkg/config"
	"github.com/sessionforge/starkdeploy/pkg/deployer"
	"github.com/sessionforge/starkdeploy/pkg/models"
	"github.com/sessionforge/starkdeploy/pkg/starknet"
	"github.com/sessionforge/starkdeploy/pkg/txwaiter"
	"github.com/sessionforge/starkdeploy/pkg/ux"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var app *application.Starkdeploy

var (
	environment string
	contract    string
	owner       string
	baseURI     string
	interactive bool

	nftAddress          string
	tokensCoreAddress   string
	registryAddress     string
	sessionMintAddress  string
	paymentTokenAddress string
	verifierAddress     string
)

// starkdeploy deploy
func NewDeployCmd(injectedApp *application.Starkdeploy) *cobra.Command {
	app = injectedApp

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the contract family or a single contract",
		Long: `The deploy command declares and deploys contracts on the configured
network. By default it runs the full plan: every contract in dependency
order, followed by the wiring calls that point the deployed contracts at
each other.

With --contract <type> only that contract is deployed; its dependency
addresses come from flags or from the latest persisted records on the
same network. Re-running deploy is safe: classes that are already
declared are detected and reused.`,
		SilenceUsage: true,
		RunE:         runDeploy,
		Args:         cobra.NoArgs,
	}

	cmd.Flags().StringVarP(&environment, "environment", "e", "", "environment from the deployment config")
	cmd.Flags().StringVarP(&contract, "contract", "c", "all", "contract type to deploy, or \"all\"")
	cmd.Flags().StringVar(&owner, "owner", "", "owner address for owned contracts (default: the sncast account address)")
	cmd.Flags().StringVar(&baseURI, "base-uri", "", "metadata base URI override for contracts that take one")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "walk through the deployment with prompts")

	addAddressFlags(cmd.Flags())
	return cmd
}

func addAddressFlags(flags *pflag.FlagSet) {
	flags.StringVar(&nftAddress, "nft-address", "", "use an existing nft contract")
	flags.StringVar(&tokensCoreAddress, "tokens-core-address", "", "use an existing tokens_core contract")
	flags.StringVar(&registryAddress, "registry-address", "", "use an existing registry contract")
	flags.StringVar(&sessionMintAddress, "session-mint-address", "", "use an existing session_mint contract")
	flags.StringVar(&paymentTokenAddress, "payment-token-address", "", "use an existing payment token contract")
	flags.StringVar(&verifierAddress, "verifier-address", "", "use an externally deployed verifier")
}

func flagOverrides() map[string]string {
	flagged := map[string]string{
		"nft":           nftAddress,
		"tokens_core":   tokensCoreAddress,
		"registry":      registryAddress,
		"session_mint":  sessionMintAddress,
		"payment_token": paymentTokenAddress,
		"verifier":      verifierAddress,
	}
	overrides := map[string]string{}
	for role, value := range flagged {
		if value != "" {
			overrides[role] = value
		}
	}
	return overrides
}

func runDeploy(cmd *cobra.Command, _ []string) error {
	conf, err := app.LoadConfig()
	if err != nil {
		return err
	}

	if interactive {
		if err := runWizard(conf); err != nil {
			return err
		}
	}
	if environment == "" {
		return errors.New("an environment is required, pass --environment or use --interactive")
	}
	env, err := conf.Environment(environment)
	if err != nil {
		return err
	}

	if err := starknet.CheckSncastInstalled(); err != nil {
		return err
	}

	ctx := cmd.Context()
	registry := config.ContractSpecs(env)
	if baseURI != "" {
		for _, contractType := range registry.Types() {
			spec := registry[contractType]
			if spec.TakesBaseURI {
				spec.BaseURI = baseURI
				registry[contractType] = spec
			}
		}
	}
	gateway := starknet.NewSncastGateway(env.Account, env.RPCURL, app.Log.Desugar())
	waiter, err := txwaiter.New(gateway, env.Settings.MaxPollAttempts, env.Settings.PollInterval(), app.Log.Desugar())
	if err != nil {
		return err
	}

	resolvedOwner := owner
	if resolvedOwner == "" {
		resolvedOwner, err = gateway.AccountAddress(ctx)
		if err != nil {
			return fmt.Errorf("could not resolve the deployer account address, pass --owner: %w", err)
		}
		ux.Logger.PrintToUser("Using account address %s as owner", starknet.FormatAddress(resolvedOwner))
	}

	overrides := config.ConfiguredAddresses(env)
	for role, addr := range flagOverrides() {
		overrides[role] = addr
	}

	contractDeployer := deployer.NewContractDeployer(app, gateway, waiter, environment, env)
	linker := deployer.NewConfigurationLinker(gateway, waiter, env.Settings.StrictVerification, app.Log)
	orchestrator := deployer.NewOrchestrator(app, contractDeployer, linker, registry)

	if contract == "all" {
		return deployAll(cmd, orchestrator, resolvedOwner, overrides, env)
	}
	return deploySingle(cmd, orchestrator, resolvedOwner, overrides)
}

func deployAll(
	cmd *cobra.Command,
	orchestrator *deployer.Orchestrator,
	resolvedOwner string,
	overrides map[string]string,
	env models.Environment,
) error {
	ux.Logger.PrintToUser("Deploying all contracts to %s as %s", env.Network, starknet.FormatAddress(resolvedOwner))

	spinner := ux.NewUserSpinner()
	spinSession := spinner.SpinToUser("Deploying and wiring contracts on %s", env.Network)
	result, err := orchestrator.Run(cmd.Context(), resolvedOwner, overrides)
	if err != nil {
		ux.SpinFailWithError(spinSession, err)
		spinner.Stop()
		var partial *deployer.PartialFailureError
		if errors.As(err, &partial) {
			ux.Logger.RedXToUser("Deployment stopped at %s; %d contract(s) already recorded", partial.FailedAt, len(partial.Completed))
		}
		return err
	}
	ux.SpinComplete(spinSession)
	spinner.Stop()

	printSummary(result)
	ux.Logger.GreenCheckmarkToUser("Deployed %d contracts", len(result.Records))
	return nil
}

func deploySingle(
	cmd *cobra.Command,
	orchestrator *deployer.Orchestrator,
	resolvedOwner string,
	overrides map[string]string,
) error {
	contractType := models.ContractType(contract)
	record, err := orchestrator.DeploySingle(cmd.Context(), contractType, resolvedOwner, overrides)
	if err != nil {
		return err
	}
	ux.Logger.GreenCheckmarkToUser("Deployed %s at %s (class %s)",
		record.ContractType,
		record.ContractAddress,
		starknet.FormatAddress(record.ClassHash),
	)
	if record.ExplorerLinks.Contract != "" {
		ux.Logger.PrintToUser("Explorer: %s", record.ExplorerLinks.Contract)
	}
	return nil
}

func printSummary(result *deployer.RunResult) {
	t := ux.DefaultTable("deployment summary", table.Row{"Contract", "Address", "Class", "Wiring"})
	for _, contractType := range result.Order {
		record := result.Records[contractType]
		wired := ""
		for _, op := range record.PostDeployment {
			if wired != "" {
				wired += "\n"
			}
			wired += fmt.Sprintf("%s: %s", op.Method, op.Outcome)
		}
		t.AppendRow(table.Row{
			record.ContractType,
			record.ContractAddress,
			starknet.FormatAddress(record.ClassHash),
			wired,
		})
	}
	ux.Logger.PrintToUser("%s", t.Render())
}

// runWizard fills the deploy parameters interactively.
func runWizard(conf *config.Config) error {
	var err error
	if environment == "" {
		environment, err = app.Prompt.CaptureList("Choose an environment", conf.AvailableEnvironments())
		if err != nil {
			return err
		}
	}

	env, err := conf.Environment(environment)
	if err != nil {
		return err
	}
	registry := config.ContractSpecs(env)

	options := []string{"all"}
	for _, contractType := range registry.Types() {
		options = append(options, string(contractType))
	}
	contract, err = app.Prompt.CaptureList("Deploy the full plan or a single contract?", options)
	if err != nil {
		return err
	}

	useAccount, err := app.Prompt.CaptureYesNo("Use the sncast account address as owner?")
	if err != nil {
		return err
	}
	if !useAccount {
		owner, err = app.Prompt.CaptureAddress("Owner address")
		if err != nil {
			return err
		}
	}

	if baseURI == "" {
		needsURI := false
		for _, contractType := range registry.Types() {
			spec := registry[contractType]
			if spec.TakesBaseURI && spec.BaseURI == "" {
				needsURI = true
			}
		}
		if needsURI {
			baseURI, err = app.Prompt.CaptureStringAllowEmpty("Metadata base URI (leave empty for none)")
			if err != nil {
				return err
			}
		}
	}

	if contract == "all" {
		return nil
	}

	// single contract: capture dependency addresses not already pinned
	spec, err := registry.Get(models.ContractType(contract))
	if err != nil {
		return err
	}
	latest, err := app.LatestRecords(env.Network)
	if err != nil {
		return err
	}
	pinned := flagOverrides()
	for _, dep := range spec.Dependencies {
		if _, ok := pinned[dep.Role]; ok {
			continue
		}
		if dep.Type != "" {
			if _, ok := latest[dep.Type]; ok {
				continue
			}
		}
		if dep.Optional {
			wanted, err := app.Prompt.CaptureNoYes(fmt.Sprintf("Configure a %s address?", dep.Role))
			if err != nil {
				return err
			}
			if !wanted {
				continue
			}
		}
		addr, err := app.Prompt.CaptureAddress(fmt.Sprintf("Address for %s", dep.Role))
		if err != nil {
			return err
		}
		setFlagOverride(dep.Role, addr)
	}
	return nil
}

func setFlagOverride(role, addr string) {
	switch role {
	case "nft":
		nftAddress = addr
	case "tokens_core":
		tokensCoreAddress = addr
	case "registry":
		registryAddress = addr
	case "session_mint":
		sessionMintAddress = addr
	case "payment_token":
		paymentTokenAddress = addr
	case "verifier":
		verifierAddress = addr
	}
}
