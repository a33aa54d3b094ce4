package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"olmkit/internal/app"
)

const skipWire = "olmkit/skip-wire"

var (
	home       string
	configPath string
	passphrase string
	relayURL   string
	username   string

	wire *app.Wire
)

// Execute runs the CLI with os.Args.
func Execute() error { return NewRootCmd().Execute() }

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	home, configPath, passphrase, relayURL, username = "", "", "", "", ""
	wire = nil

	root := &cobra.Command{
		Use:          "olmkit",
		Short:        "Pairwise end-to-end encryption sessions over a relay",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipWire] != "" {
				return nil
			}
			cfg, err := app.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if home != "" {
				cfg.Home = home
			}
			if relayURL != "" {
				cfg.RelayURL = relayURL
			}
			wire, err = app.NewWire(cfg)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if wire == nil {
				return nil
			}
			return wire.Close()
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "data dir (default ~/.olmkit)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (.toml, .yaml)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting pickled state")
	root.PersistentFlags().StringVar(&relayURL, "relay", "", "relay base URL (e.g. http://127.0.0.1:8080)")

	root.AddCommand(versionCmd(), accountCmd(), sendCmd(), recvCmd(), sha256Cmd(), verifyCmd())
	return root
}

func requirePassphrase() error {
	if passphrase == "" {
		return fmt.Errorf("passphrase required (-p)")
	}
	return nil
}

func usernameFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&username, "username", "u", "", "your username on the relay")
	_ = cmd.MarkFlagRequired("username")
}
