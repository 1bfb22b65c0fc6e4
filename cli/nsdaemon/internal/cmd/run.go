package cmd

import (
	"log"

	"github.com/SeppPenner/needham-schroeder/application/daemon"
	"github.com/SeppPenner/needham-schroeder/cli"
	"github.com/pion/transport/v3/stdnet"
	"github.com/spf13/cobra"
)

var runCmd = cli.NewRunCommand("daemon", run)

func init() {
	RootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("config", "c", "config.toml", "Path to daemon configuration file")
}

func run(cmd *cobra.Command, args []string) {
	conf := &daemon.Config{}
	if err := conf.Load(cmd.Flag("config").Value.String(), "toml"); err != nil {
		log.Fatal(err)
	}
	nw, err := stdnet.NewNet()
	if err != nil {
		log.Fatal(err)
	}
	d, err := daemon.New(conf, nw)
	if err != nil {
		log.Fatal(err)
	}

	// run the daemon until receiving an interrupt signal
	if err := d.Run(); err != nil {
		d.Shutdown()
		log.Fatal(err)
	}
	cli.WaitForInterrupt()
	d.Shutdown()
}
