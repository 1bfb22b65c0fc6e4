// Package cmd implements the CLI commands for the key server.
package cmd

import (
	"github.com/SeppPenner/needham-schroeder/cli"
)

// RootCmd represents the base "nsserver" command when called without any subcommands.
var RootCmd = cli.NewRootCommand("nsserver",
	"Needham-Schroeder key server",
	`Needham-Schroeder key server.

The server keeps a directory of identities and their long-term keys and
answers key requests with a fresh session key and a ticket for the peer.`)
