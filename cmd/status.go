package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/illarion/datavault/internal/core"
	"github.com/illarion/datavault/internal/ui"
	"github.com/illarion/datavault/internal/vault"
)

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [dir]",
		Short: "Show what changed on the encrypted side since the last sync (no secret needed)",
		Long: `Status compares each vault's encrypted files with the vault index written
by the last encrypt or decrypt:

  synced     unchanged since the last sync
  changed    replaced since the last sync, for example by a pull
  untracked  never synced on this machine
  missing    synced before, deleted since
  pending    plaintext file that was never encrypted

It also warns about plaintext files that git tracks or does not ignore.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vaults, err := a.discover(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			return a.runVaults(cmd, vaults, "Checking...", func(ctx context.Context, v vault.Vault) (*core.Report, error) {
				status, err := a.svc.Status(ctx, v)
				if err != nil {
					return nil, err
				}
				ui.RenderStatus(out, status, a.verbose)
				return nil, nil
			})
		},
	}
}
