package cmd

import (
	"github.com/SeppPenner/needham-schroeder/cli"
)

var versionCmd = cli.NewVersionCommand("nsdaemon")

func init() {
	RootCmd.AddCommand(versionCmd)
}
