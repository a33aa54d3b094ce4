package commands

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"olmkit/internal/crypto"
	"olmkit/internal/domain"
)

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the local account",
	}
	cmd.AddCommand(
		accountCreateCmd(),
		accountKeysCmd(),
		accountGenerateCmd(),
		accountPublishCmd(),
		accountFingerprintCmd(),
	)
	return cmd
}

func accountCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Generate identity keys and store them securely",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			_, fp, err := wire.Accounts.Create(passphrase)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account created.\nFingerprint: %s\n", fp)
			return nil
		},
	}
}

func accountKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Print identity and unused one-time keys as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			ids, err := wire.Accounts.IdentityKeys(passphrase)
			if err != nil {
				return err
			}
			otks, err := wire.Accounts.OneTimeKeys(passphrase)
			if err != nil {
				return err
			}
			keyIDs := make([]domain.KeyID, 0, len(otks))
			for id := range otks {
				keyIDs = append(keyIDs, id)
			}
			sort.Slice(keyIDs, func(i, j int) bool { return keyIDs[i] < keyIDs[j] })
			curve := make(map[string]string, len(otks))
			for _, id := range keyIDs {
				pub := otks[id]
				curve[id.String()] = domain.EncodeKey(pub.Slice())
			}

			out := struct {
				Identity    domain.IdentityKeys          `json:"identity_keys"`
				OneTimeKeys map[string]map[string]string `json:"one_time_keys"`
			}{ids, map[string]map[string]string{"curve25519": curve}}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}

func accountGenerateCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Add one-time keys to the pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			if err := wire.Accounts.GenerateOneTimeKeys(passphrase, count); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d one-time keys.\n", count)
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of keys to generate")
	return cmd
}

func accountPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish identity keys and unpublished one-time keys to the relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			n, err := wire.Accounts.Publish(cmd.Context(), passphrase, domain.Username(username))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published %d one-time keys for %s.\n", n, username)
			return nil
		},
	}
	usernameFlag(cmd)
	return cmd
}

func accountFingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print identity fingerprint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			keys, err := wire.Accounts.IdentityKeys(passphrase)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fingerprint: %s\n", crypto.Fingerprint(keys.Curve25519.Slice()))
			return nil
		},
	}
}
