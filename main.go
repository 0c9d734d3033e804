// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for Clientbook.
//
// Usage:
//
//	go run . [flags]
//	./clientbook [flags]
//
// Without a subcommand this starts the interactive console. See --help for
// the other commands.
package main

import (
	"fmt"
	"os"

	"github.com/toeirei/clientbook/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
