// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the command-line interface for Clientbook using Cobra.
// It wires configuration, logging, translations and the store, and provides
// commands that delegate to the store and to the `core` facades. Running
// without a subcommand starts the interactive console.
package cli
