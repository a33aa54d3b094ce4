package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"olmkit/internal/crypto"
	"olmkit/internal/domain"
	"olmkit/internal/utility"
)

func sha256Cmd() *cobra.Command {
	return &cobra.Command{
		Use:         "sha256 <input>",
		Short:       "Print the unpadded base64 SHA-256 of input",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{skipWire: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			u := utility.New(crypto.New())
			fmt.Fprintln(cmd.OutOrStdout(), u.SHA256Base64([]byte(args[0])))
			return nil
		},
	}
}

// verify <key> <message> <signature>: key and signature are base64.
func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "verify <ed25519-key> <message> <signature>",
		Short:       "Check an Ed25519 signature",
		Args:        cobra.ExactArgs(3),
		Annotations: map[string]string{skipWire: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := domain.DecodeKey(args[0])
			if err != nil {
				return err
			}
			sig, err := domain.DecodeKey(args[2])
			if err != nil {
				return err
			}
			if err := utility.New(crypto.New()).Ed25519Verify(key, []byte(args[1]), sig); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
}
