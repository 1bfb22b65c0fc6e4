package cmd

import (
	"github.com/SeppPenner/needham-schroeder/cli"
)

var versionCmd = cli.NewVersionCommand("nsserver")

func init() {
	RootCmd.AddCommand(versionCmd)
}
