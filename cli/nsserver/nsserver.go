// Executable Needham-Schroeder key server. It holds the long-term keys
// of all identities and hands out session keys with tickets.
package main

import (
	"github.com/SeppPenner/needham-schroeder/cli"
	"github.com/SeppPenner/needham-schroeder/cli/nsserver/internal/cmd"
)

func main() {
	cli.ExecuteRoot(cmd.RootCmd)
}
