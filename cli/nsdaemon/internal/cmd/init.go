package cmd

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/SeppPenner/needham-schroeder/application"
	"github.com/SeppPenner/needham-schroeder/application/daemon"
	"github.com/SeppPenner/needham-schroeder/cli"
	"github.com/SeppPenner/needham-schroeder/crypto"
	"github.com/SeppPenner/needham-schroeder/protocol"
	"github.com/spf13/cobra"
)

var initCmd = cli.NewInitCommand("the daemon", initRunFunc)

func init() {
	RootCmd.AddCommand(initCmd)
	initCmd.Flags().StringP("dir", "d", ".", "Location of directory for storing generated files")
	initCmd.Flags().StringP("address", "a", "udp://0.0.0.0:7001", "Address to listen on")
	initCmd.Flags().StringP("identity", "i", "", "Identity the daemon is registered under at the key server")
	cli.AddKeyFlags(initCmd)
	initCmd.MarkFlagRequired("identity")
}

func initRunFunc(cmd *cobra.Command, args []string) {
	dir := cmd.Flag("dir").Value.String()
	id, err := protocol.NewIdentity(cmd.Flag("identity").Value.String())
	if err != nil {
		log.Fatal(err)
	}
	if cmd.Flag("key").Value.String() == "" {
		cmd.Flags().Set("key", filepath.Join(dir, "daemon.key"))
	}
	key, err := cli.LongTermKey(cmd, id)
	if err != nil {
		log.Fatal(err)
	}
	keyPath, err := filepath.Abs(cmd.Flag("key").Value.String())
	if err != nil {
		log.Fatal(err)
	}

	logger := application.NewLoggerConfig()
	logger.Path = "nsdaemon.log"
	conf := daemon.NewConfig(filepath.Join(dir, "config.toml"), "toml",
		cmd.Flag("address").Value.String(), keyPath, logger)
	conf.KeystorePath = "sessions"
	if cmd.Flag("passphrase").Value.String() != "" {
		// the key is derived, keep a copy next to the config
		if err := application.SaveLongTermKey(keyPath, key); err != nil {
			log.Fatal(err)
		}
	}
	if err := conf.Save(); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Register with: nsserver register", id.String(), "--key", keyPath)
	fmt.Println("Key fingerprint:", crypto.Fingerprint(key[:]))
}
