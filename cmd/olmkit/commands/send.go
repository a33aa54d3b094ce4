package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"olmkit/internal/domain"
)

// send <peer> <message>: encrypt and send a message to <peer>.
func sendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <peer> <message>",
		Short: "Encrypt and send a message to a peer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			peer := domain.Username(args[0])
			msg := []byte(args[1])

			if err := wire.Messages.SendMessage(cmd.Context(), passphrase, domain.Username(username), peer, msg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "sent")
			return nil
		},
	}
	usernameFlag(cmd)
	return cmd
}
