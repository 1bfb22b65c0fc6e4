package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/SeppPenner/needham-schroeder/application"
	"github.com/SeppPenner/needham-schroeder/application/client"
	"github.com/SeppPenner/needham-schroeder/cli"
	"github.com/SeppPenner/needham-schroeder/crypto"
	"github.com/SeppPenner/needham-schroeder/protocol"
	"github.com/pion/transport/v3/stdnet"
	"github.com/spf13/cobra"
)

var runCmd = cli.NewRunCommand("client", run)

func init() {
	RootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("config", "c", "config.toml",
		"Config file for the client (.toml)")
}

func run(cmd *cobra.Command, args []string) {
	conf := loadConfigOrExit(cmd)
	os.Exit(getKey(conf))
}

// getKey runs one exchange and returns the process exit status.
func getKey(conf *client.Config) int {
	logger := application.NewLogger(conf.Logger)
	defer logger.Sync()

	store, err := application.OpenKeyStore(conf.KeystorePath, conf.Path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer store.Close()
	nw, err := stdnet.NewNet()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	res, err := client.GetKey(ctx, conf, nw, store, logger, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	fmt.Println(res.Code.String())
	if res.Code != protocol.StateFinished {
		return 1
	}
	fmt.Println(crypto.Fingerprint(res.SessionKey[:]))
	return 0
}
