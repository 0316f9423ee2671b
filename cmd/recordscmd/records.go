// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package recordscmd

import (
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sessionforge/starkdeploy/pkg/application"
	"github.com/sessionforge/starkdeploy/pkg/models"
	"github.com/sessionforge/starkdeploy/pkg/starknet"
	"github.com/sessionforge/starkdeploy/pkg/ux"
	"github.com/spf13/cobra"
)

var app *application.Starkdeploy

var environment string

// starkdeploy records
func NewRecordsCmd(injectedApp *application.Starkdeploy) *cobra.Command {
	app = injectedApp

	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect persisted deployment records",
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				fmt.Println(err)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&environment, "environment", "e", "", "environment from the deployment config")

	cmd.AddCommand(newListCmd())
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "list",
		Short:        "List every recorded deployment for the environment's network",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         listRecords,
	}
}

func listRecords(_ *cobra.Command, _ []string) error {
	conf, err := app.LoadConfig()
	if err != nil {
		return err
	}
	if environment == "" {
		return errors.New("an environment is required, pass --environment")
	}
	env, err := conf.Environment(environment)
	if err != nil {
		return err
	}

	records, err := app.LoadDeploymentRecords(env.Network)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		ux.Logger.PrintToUser("No deployments recorded for %s", env.Network)
		return nil
	}

	t := ux.DefaultTable(fmt.Sprintf("deployments on %s", env.Network), table.Row{
		"Contract", "Address", "Class", "Deployed", "Wiring",
	})
	for _, record := range records {
		t.AppendRow(table.Row{
			record.ContractType,
			record.ContractAddress,
			starknet.FormatAddress(record.ClassHash),
			record.DeployedAt,
			wiringSummary(record),
		})
	}
	ux.Logger.PrintToUser("%s", t.Render())
	return nil
}

func wiringSummary(record models.DeploymentRecord) string {
	if len(record.PostDeployment) == 0 {
		return "-"
	}
	verified := 0
	for _, op := range record.PostDeployment {
		if op.Outcome == models.Verified {
			verified++
		}
	}
	return fmt.Sprintf("%d/%d verified", verified, len(record.PostDeployment))
}
