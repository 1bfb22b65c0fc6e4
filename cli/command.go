package cli

import (
	"github.com/spf13/cobra"
)

// cobraCommand is used to implement any type of cobra command
// for any of the key server, daemon and client executables.
type cobraCommand interface {
	Build() *cobra.Command
}
