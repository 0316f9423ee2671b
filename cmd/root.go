// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package cmd

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/sessionforge/starkdeploy/cmd/configurecmd"
	"github.com/sessionforge/starkdeploy/cmd/deploycmd"
	"github.com/sessionforge/starkdeploy/cmd/recordscmd"
	"github.com/sessionforge/starkdeploy/pkg/application"
	"github.com/sessionforge/starkdeploy/pkg/constants"
	"github.com/sessionforge/starkdeploy/pkg/prompts"
	"github.com/sessionforge/starkdeploy/pkg/ux"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	baseDir    string
	logLevel   string
	configPath string

	Version = ""

	app = application.New()

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use: "starkdeploy",
		Long: `starkdeploy deploys and wires a family of interdependent Starknet
contracts: it declares classes, deploys instances in dependency order,
waits for transaction confirmation, persists a deployment record per
contract, and points the deployed contracts at each other with verified
configuration calls.

To get started, describe your environments in deployment-config.yml and
run starkdeploy deploy --environment <name>.`,
		PersistentPreRunE: setupLogging,
		Version:           Version,
	}
)

func setupLogging(_ *cobra.Command, _ []string) error {
	level, err := zapcore.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		return fmt.Errorf("invalid log level configured: %s", logLevel)
	}

	logDir := filepath.Join(baseDir, constants.LogDir)
	if err := os.MkdirAll(logDir, constants.DefaultPerms755); err != nil {
		return fmt.Errorf("failed creating log directory: %w", err)
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{filepath.Join(logDir, constants.LogFileName)}
	config.ErrorOutputPaths = config.OutputPaths

	logger, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed setting up logging, exiting: %w", err)
	}
	log := logger.Sugar()

	app.Setup(baseDir, log, nil, prompts.NewPrompter())
	app.ConfigPath = configPath

	// create the user facing logger as a global var
	ux.NewUserLog(log, os.Stdout)
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	usr, err := user.Current()
	if err != nil {
		// no logger here yet
		fmt.Printf("unable to get system user %s\n", err)
		os.Exit(1)
	}
	baseDir = filepath.Join(usr.HomeDir, constants.BaseDirName)

	if err := os.MkdirAll(baseDir, os.ModePerm); err != nil {
		// no logger here yet
		fmt.Printf("failed creating the basedir %s: %s\n", baseDir, err)
		os.Exit(1)
	}

	// Disable printing the completion command
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level for the log file")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", constants.DefaultConfigName, "path to the deployment config")

	rootCmd.AddCommand(deploycmd.NewDeployCmd(app))
	rootCmd.AddCommand(configurecmd.NewConfigureCmd(app))
	rootCmd.AddCommand(recordscmd.NewRecordsCmd(app))
}
