package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/illarion/datavault/internal/core"
	"github.com/illarion/datavault/internal/crypto"
	"github.com/illarion/datavault/internal/vault"
)

func (a *app) decryptCmd() *cobra.Command {
	var (
		interactive bool
		opts        core.Options
	)

	cmd := &cobra.Command{
		Use:   "decrypt [dir]",
		Short: "Decrypt the encrypted side of each vault into its plaintext side",
		Long: `Decrypt writes every encrypted file to the plaintext side.

If that would overwrite a plaintext file with different content, or delete a
plaintext file that has no encrypted counterpart, decrypt stops and changes
nothing. Use -i to review and confirm the changes, or -f to apply them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vaults, err := a.discover(args)
			if err != nil {
				return err
			}

			message := "Decrypting..."
			if interactive {
				message = ""
			}
			return a.runVaults(cmd, vaults, message, a.withSecret(
				func(ctx context.Context, v vault.Vault, s *crypto.Secret) (*core.Report, error) {
					run := opts
					if interactive && !opts.DryRun {
						ok, err := a.preview(cmd, func(dry core.Options) (*core.Report, error) {
							return a.svc.Decrypt(ctx, v, s, dry)
						}, opts)
						if err != nil || !ok {
							return nil, err
						}
						// The user saw and accepted the overwrites.
						run.Force = true
					}
					return a.svc.Decrypt(ctx, v, s, run)
				}))
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "show changes and ask before applying them")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "overwrite and delete differing plaintext files")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report changes without writing")
	cmd.MarkFlagsMutuallyExclusive("interactive", "force")
	return cmd
}
