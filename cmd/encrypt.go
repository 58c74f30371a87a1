package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/datavault/internal/core"
	"github.com/illarion/datavault/internal/crypto"
	"github.com/illarion/datavault/internal/ui"
	"github.com/illarion/datavault/internal/vault"
)

func (a *app) encryptCmd() *cobra.Command {
	var (
		interactive bool
		opts        core.Options
	)

	cmd := &cobra.Command{
		Use:   "encrypt [dir]",
		Short: "Encrypt the plaintext side of each vault into its encrypted side",
		Long: `Encrypt writes every new or changed plaintext file to the encrypted side
and deletes encrypted files whose plaintext is gone.

Encrypted files that cannot be decrypted with the current secret are left
alone unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vaults, err := a.discover(args)
			if err != nil {
				return err
			}

			message := "Encrypting..."
			if interactive {
				message = ""
			}
			return a.runVaults(cmd, vaults, message, a.withSecret(
				func(ctx context.Context, v vault.Vault, s *crypto.Secret) (*core.Report, error) {
					if interactive && !opts.DryRun {
						ok, err := a.preview(cmd, func(dry core.Options) (*core.Report, error) {
							return a.svc.Encrypt(ctx, v, s, dry)
						}, opts)
						if err != nil || !ok {
							return nil, err
						}
					}
					return a.svc.Encrypt(ctx, v, s, opts)
				}))
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "show changes and ask before applying them")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite encrypted files that cannot be decrypted")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report changes without writing")
	return cmd
}

// preview runs a dry run, prints it and asks for confirmation. It returns
// false when there is nothing to do or the user declined.
func (a *app) preview(cmd *cobra.Command, run func(core.Options) (*core.Report, error), opts core.Options) (bool, error) {
	dry := opts
	dry.DryRun = true
	report, err := run(dry)
	if err != nil {
		return false, err
	}

	out := cmd.OutOrStdout()
	ui.RenderReport(out, report, a.verbose)
	if !report.HasChanges() {
		return false, nil
	}

	ok, err := a.confirm(cmd, "Apply these changes?")
	if err != nil {
		return false, err
	}
	if !ok {
		fmt.Fprintf(out, "  %s\n", ui.Muted.Sprint("skipped"))
	}
	return ok, nil
}
