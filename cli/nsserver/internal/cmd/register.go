package cmd

import (
	"fmt"
	"log"

	"github.com/SeppPenner/needham-schroeder/application/server"
	"github.com/SeppPenner/needham-schroeder/cli"
	"github.com/SeppPenner/needham-schroeder/crypto"
	"github.com/SeppPenner/needham-schroeder/protocol"
	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register <identity>",
	Short: "Register an identity and its long-term key.",
	Long: `Register an identity and its long-term key in the directory.

The key is read from --key, derived from --passphrase, or generated and
written to --key if that file does not exist yet. An identity that is
already registered gets the new key. The server must not be running.`,
	Args: cobra.ExactArgs(1),
	Run:  register,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the registered identities.",
	Long: `List the registered identities with the fingerprints of their keys.
The server must not be running.`,
	Args: cobra.NoArgs,
	Run:  list,
}

func init() {
	RootCmd.AddCommand(registerCmd)
	RootCmd.AddCommand(listCmd)
	for _, c := range []*cobra.Command{registerCmd, listCmd} {
		c.Flags().StringP("config", "c", "config.toml", "Path to server configuration file")
	}
	cli.AddKeyFlags(registerCmd)
	registerCmd.Flags().BoolP("delete", "D", false, "Remove the identity instead")
}

func openDirectory(cmd *cobra.Command) *server.Directory {
	conf := &server.Config{}
	if err := conf.Load(cmd.Flag("config").Value.String(), "toml"); err != nil {
		log.Fatal(err)
	}
	dir, err := server.OpenDirectory(conf)
	if err != nil {
		log.Fatal(err)
	}
	return dir
}

func register(cmd *cobra.Command, args []string) {
	id, err := protocol.NewIdentity(args[0])
	if err != nil {
		log.Fatal(err)
	}
	dir := openDirectory(cmd)
	defer dir.Close()

	if del, _ := cmd.Flags().GetBool("delete"); del {
		if err := dir.Delete(id); err != nil {
			log.Fatal(err)
		}
		fmt.Println("Removed", id.String())
		return
	}

	key, err := cli.LongTermKey(cmd, id)
	if err != nil {
		log.Fatal(err)
	}
	if err := dir.StoreKey(id, key); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Registered", id.String(), crypto.Fingerprint(key[:]))
}

func list(cmd *cobra.Command, args []string) {
	dir := openDirectory(cmd)
	defer dir.Close()

	ids, err := dir.Identities()
	if err != nil {
		log.Fatal(err)
	}
	for _, id := range ids {
		key, err := dir.GetKey(id)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%-16s %s\n", id.String(), crypto.Fingerprint(key[:]))
	}
}
