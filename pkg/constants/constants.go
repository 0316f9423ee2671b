// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package constants

import "time"

const (
	DefaultPerms755    = 0o755
	WriteReadReadPerms = 0o644

	BaseDirName       = ".starkdeploy"
	LogDir            = "logs"
	RecordsDirName    = "deployments"
	DefaultConfigName = "deployment-config.yml"

	LogFileName = "starkdeploy.log"

	// sncast is the Starknet Foundry binary every chain operation goes through.
	SncastBinName = "sncast"

	DefaultMaxPollAttempts = 60
	DefaultPollInterval    = 5 * time.Second

	DependencyProbeTimeout = 30 * time.Second

	DefaultVerifierAddress = "0x0"
)
