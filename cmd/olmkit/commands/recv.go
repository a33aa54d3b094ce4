package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"olmkit/internal/domain"
)

// recv: fetch and decrypt queued messages for --username.
func recvCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recv",
		Short: "Fetch and decrypt your queued messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			msgs, err := wire.Messages.ReceiveMessages(cmd.Context(), passphrase, domain.Username(username), limit)
			for _, m := range msgs {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", m.From, string(m.Plaintext))
			}
			return err
		},
	}
	usernameFlag(cmd)
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum messages to fetch (0 = all)")
	return cmd
}
