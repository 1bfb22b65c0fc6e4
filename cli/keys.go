package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/SeppPenner/needham-schroeder/application"
	"github.com/SeppPenner/needham-schroeder/crypto"
	"github.com/SeppPenner/needham-schroeder/protocol"
	"github.com/spf13/cobra"
)

// AddKeyFlags adds the flags selecting where a long-term key comes from.
func AddKeyFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("key", "k", "",
		"Raw 16-byte key file; a random key is written to it if it does not exist")
	cmd.Flags().StringP("passphrase", "p", "",
		"Derive the key from this passphrase and the identity instead")
}

// LongTermKey returns the long-term key of id selected by the flags of
// AddKeyFlags. With a passphrase the key is derived with argon2, salted
// with the padded identity, so every role derives the same key from the
// same passphrase. Otherwise the key file is read, or created with a
// fresh random key if it does not exist yet.
func LongTermKey(cmd *cobra.Command, id protocol.Identity) (protocol.Key, error) {
	keyFile := cmd.Flag("key").Value.String()
	passphrase := cmd.Flag("passphrase").Value.String()
	switch {
	case passphrase != "":
		return protocol.NewKey(crypto.DeriveKey(passphrase, id[:]))
	case keyFile == "":
		return protocol.Key{}, fmt.Errorf("Either --key or --passphrase is required")
	}
	if _, err := os.Stat(keyFile); err == nil {
		return application.LoadLongTermKey(keyFile, "")
	}
	buf, err := crypto.MakeRand(protocol.KeySize)
	if err != nil {
		return protocol.Key{}, err
	}
	key, err := protocol.NewKey(buf)
	if err != nil {
		return protocol.Key{}, err
	}
	if err := application.SaveLongTermKey(keyFile, key); err != nil {
		return protocol.Key{}, err
	}
	return key, nil
}

// WaitForInterrupt blocks until the process receives SIGINT or SIGTERM.
func WaitForInterrupt() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch
	signal.Stop(ch)
}
