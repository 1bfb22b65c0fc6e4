package cmd

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/SeppPenner/needham-schroeder/application"
	"github.com/SeppPenner/needham-schroeder/application/client"
	"github.com/SeppPenner/needham-schroeder/cli"
	"github.com/SeppPenner/needham-schroeder/crypto"
	"github.com/SeppPenner/needham-schroeder/protocol"
	"github.com/spf13/cobra"
)

var initCmd = cli.NewInitCommand("the client", mkConfigOrExit)

func init() {
	RootCmd.AddCommand(initCmd)
	initCmd.Flags().StringP("dir", "d", ".",
		"Location of directory for storing generated files")
	initCmd.Flags().StringP("identity", "i", "", "The client's identity")
	initCmd.Flags().StringP("peer", "P", "", "The peer's identity")
	cli.AddKeyFlags(initCmd)
	initCmd.MarkFlagRequired("identity")
	initCmd.MarkFlagRequired("peer")
}

func mkConfigOrExit(cmd *cobra.Command, args []string) {
	dir := cmd.Flag("dir").Value.String()
	id, err := protocol.NewIdentity(cmd.Flag("identity").Value.String())
	if err != nil {
		log.Fatal(err)
	}
	peer, err := protocol.NewIdentity(cmd.Flag("peer").Value.String())
	if err != nil {
		log.Fatal(err)
	}
	if peer == id {
		log.Fatal(client.ErrSelfPeer)
	}
	if cmd.Flag("key").Value.String() == "" {
		cmd.Flags().Set("key", filepath.Join(dir, "client.key"))
	}
	key, err := cli.LongTermKey(cmd, id)
	if err != nil {
		log.Fatal(err)
	}
	keyPath, err := filepath.Abs(cmd.Flag("key").Value.String())
	if err != nil {
		log.Fatal(err)
	}
	if cmd.Flag("passphrase").Value.String() != "" {
		if err := application.SaveLongTermKey(keyPath, key); err != nil {
			log.Fatal(err)
		}
	}

	conf := client.NewConfig(filepath.Join(dir, "config.toml"), "toml",
		id.String(), peer.String(), keyPath)
	if err := conf.Save(); err != nil {
		log.Fatal("Couldn't save config. Error message: [" + err.Error() + "]")
	}
	fmt.Println("Key fingerprint:", crypto.Fingerprint(key[:]))
}
