// Package cmd implements the CLI commands for the peer daemon.
package cmd

import (
	"github.com/SeppPenner/needham-schroeder/cli"
)

// RootCmd represents the base "nsdaemon" command when called without any subcommands.
var RootCmd = cli.NewRootCommand("nsdaemon",
	"Needham-Schroeder peer daemon",
	`Needham-Schroeder peer daemon.

The daemon accepts tickets issued by the key server, challenges the
client presenting them and stores the session key once the client has
answered the challenge.`)
