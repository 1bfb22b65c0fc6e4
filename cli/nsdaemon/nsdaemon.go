// Executable Needham-Schroeder peer daemon. It accepts tickets from
// clients, challenges them and stores the session keys they prove to
// hold.
package main

import (
	"github.com/SeppPenner/needham-schroeder/cli"
	"github.com/SeppPenner/needham-schroeder/cli/nsdaemon/internal/cmd"
)

func main() {
	cli.ExecuteRoot(cmd.RootCmd)
}
