package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"olmkit/internal/bridge"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the library version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipWire: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			major, minor, patch := bridge.Version()
			fmt.Fprintf(cmd.OutOrStdout(), "olmkit %d.%d.%d\n", major, minor, patch)
			return nil
		},
	}
}
