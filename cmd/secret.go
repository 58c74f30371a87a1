package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/datavault/internal/crypto"
)

func (a *app) secretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "secret",
		Short: "Print a newly generated secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := crypto.GenerateSecret()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
}
