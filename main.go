// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package main

import (
	"github.com/sessionforge/starkdeploy/cmd"
)

func main() {
	cmd.Execute()
}
