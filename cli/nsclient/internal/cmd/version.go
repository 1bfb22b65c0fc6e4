package cmd

import (
	"github.com/SeppPenner/needham-schroeder/cli"
)

var versionCmd = cli.NewVersionCommand("nsclient")

func init() {
	RootCmd.AddCommand(versionCmd)
}
