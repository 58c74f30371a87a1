package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/datavault/internal/core"
	"github.com/illarion/datavault/internal/ui"
	"github.com/illarion/datavault/internal/vault"
)

func (a *app) clearCmd() *cobra.Command {
	return a.newClearCmd(
		"clear [dir]",
		"Delete all plaintext files of each vault",
		vault.PlainDir,
	)
}

func (a *app) clearEncryptedCmd() *cobra.Command {
	return a.newClearCmd(
		"clear-encrypted [dir]",
		"Delete all encrypted files of each vault",
		vault.EncryptedDir,
	)
}

// newClearCmd builds clear or clear-encrypted. The service only exists once
// the command runs, so the operation is picked inside RunE.
func (a *app) newClearCmd(use, short, side string) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  short + ". The other side of the vault is not touched.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vaults, err := a.discover(args)
			if err != nil {
				return err
			}

			clear := a.svc.Clear
			if side == vault.EncryptedDir {
				clear = a.svc.ClearEncrypted
			}

			return a.runVaults(cmd, vaults, "", func(ctx context.Context, v vault.Vault) (*core.Report, error) {
				if !yes {
					ok, err := a.confirm(cmd, fmt.Sprintf("  Delete every file under %s?", ui.Path.Sprint(side+"/")))
					if err != nil || !ok {
						return nil, err
					}
				}
				return clear(ctx, v)
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
