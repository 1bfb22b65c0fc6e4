package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/SeppPenner/needham-schroeder/application/server"
	"github.com/SeppPenner/needham-schroeder/cli"
	"github.com/pion/transport/v3/stdnet"
	"github.com/spf13/cobra"
)

var runCmd = cli.NewRunCommand("key server", run)

func init() {
	RootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("config", "c", "config.toml", "Path to server configuration file")
	runCmd.Flags().BoolP("pid", "p", false, "Write down the process id to nsserver.pid in the current working directory")
}

func run(cmd *cobra.Command, args []string) {
	confPath := cmd.Flag("config").Value.String()
	// ignore the error here since it is handled by the flag parser.
	pid, _ := strconv.ParseBool(cmd.Flag("pid").Value.String())
	if pid {
		writePID()
	}

	conf := &server.Config{}
	if err := conf.Load(confPath, "toml"); err != nil {
		log.Fatal(err)
	}
	nw, err := stdnet.NewNet()
	if err != nil {
		log.Fatal(err)
	}
	serv, err := server.New(conf, nw)
	if err != nil {
		log.Fatal(err)
	}

	// run the server until receiving an interrupt signal
	if err := serv.Run(); err != nil {
		serv.Shutdown()
		log.Fatal(err)
	}
	cli.WaitForInterrupt()
	serv.Shutdown()
}

func writePID() {
	pidf, err := os.OpenFile(filepath.Join(".", "nsserver.pid"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		log.Printf("Cannot create nsserver.pid: %v", err)
		return
	}
	defer pidf.Close()
	if _, err := fmt.Fprint(pidf, os.Getpid()); err != nil {
		log.Printf("Cannot write to pid file: %v", err)
	}
}
