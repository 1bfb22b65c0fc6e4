// Package cmd implements the CLI commands for the client.
package cmd

import (
	"github.com/SeppPenner/needham-schroeder/cli"
)

// RootCmd represents the base "nsclient" command when called without any subcommands.
var RootCmd = cli.NewRootCommand("nsclient",
	"Needham-Schroeder client",
	`Needham-Schroeder client.

The client asks the key server for a session key for a peer and proves
to the peer's daemon that it holds it.`)
