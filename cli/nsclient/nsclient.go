// Executable Needham-Schroeder client. It obtains a session key for a
// peer from the key server and hands it to the peer's daemon.
package main

import (
	"github.com/SeppPenner/needham-schroeder/cli"
	"github.com/SeppPenner/needham-schroeder/cli/nsclient/internal/cmd"
)

func main() {
	cli.ExecuteRoot(cmd.RootCmd)
}
