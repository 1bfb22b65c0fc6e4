package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/SeppPenner/needham-schroeder/application"
	"github.com/SeppPenner/needham-schroeder/application/server"
	"github.com/SeppPenner/needham-schroeder/cli"
	"github.com/spf13/cobra"
)

var initCmd = cli.NewInitCommand("the key server", initRunFunc)

func init() {
	RootCmd.AddCommand(initCmd)
	initCmd.Flags().StringP("dir", "d", ".", "Location of directory for storing generated files")
	initCmd.Flags().StringP("address", "a", "udp://0.0.0.0:7000", "Address to listen on")
}

func initRunFunc(cmd *cobra.Command, args []string) {
	dir := cmd.Flag("dir").Value.String()
	addr := cmd.Flag("address").Value.String()

	logger := application.NewLoggerConfig()
	logger.Path = "nsserver.log"
	conf := server.NewConfig(filepath.Join(dir, "config.toml"), "toml",
		addr, "directory", logger)
	if err := conf.Save(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
