package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/datavault/internal/crypto"
	"github.com/illarion/datavault/internal/storage"
)

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "datavault %s\n", Version)
			fmt.Fprintf(out, "  container format %s v%d (XChaCha20-Poly1305)\n", crypto.Magic, crypto.FormatVersion)
			fmt.Fprintf(out, "  index format v%d\n", storage.Version)
			return nil
		},
	}
}
