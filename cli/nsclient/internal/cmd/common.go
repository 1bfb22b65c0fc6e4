package cmd

import (
	"fmt"
	"os"

	"github.com/SeppPenner/needham-schroeder/application/client"
	"github.com/spf13/cobra"
)

const configMissingUsage = `
Couldn't load client's config-file.

To create a valid config, run
  nsclient init --identity <you> --peer <peer>
and register the generated key with the key server:
  nsserver register <you> --key client.key

The client looks for a file called 'config.toml' in its current working directory.
If you prefer the config-file to be named or stored somewhere different you can
specify where to look for the config with the --config flag. For example:
  nsclient run --config /etc/ns/client.toml
`

func loadConfigOrExit(cmd *cobra.Command) *client.Config {
	config := cmd.Flag("config").Value.String()
	conf := &client.Config{}
	if err := conf.Load(config, "toml"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, configMissingUsage)
		os.Exit(1)
	}
	return conf
}
