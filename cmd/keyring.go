package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	derrors "github.com/illarion/datavault/internal/errors"
	"github.com/illarion/datavault/internal/keyring"
	"github.com/illarion/datavault/internal/secret"
	"github.com/illarion/datavault/internal/ui"
	"github.com/illarion/datavault/internal/vault"
)

func (a *app) keyringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keyring",
		Short: "Manage vault secrets stored in the OS keyring",
	}
	cmd.AddCommand(a.keyringSaveCmd(), a.keyringDeleteCmd(), a.keyringStatusCmd())
	return cmd
}

// singleVault resolves the one vault a keyring command acts on.
func (a *app) singleVault(args []string) (vault.Vault, string, error) {
	vaults, err := a.discover(args)
	if err != nil {
		return vault.Vault{}, "", err
	}
	if len(vaults) != 1 {
		return vault.Vault{}, "", fmt.Errorf("found %d vaults under %s; name one", len(vaults), startDir(args))
	}
	id, err := secret.VaultID(vaults[0])
	if err != nil {
		return vault.Vault{}, "", err
	}
	return vaults[0], id, nil
}

func (a *app) keyringSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save [dir]",
		Short: "Save the vault secret to the OS keyring",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, id, err := a.singleVault(args)
			if err != nil {
				return err
			}

			// The keyring itself is not a source here.
			r := *a.resolver
			r.UseKeyring = false
			r.Ask = true
			s, _, err := r.Resolve(v)
			if err != nil {
				return err
			}
			if s == nil {
				return derrors.ErrMissingSecret
			}
			defer s.Destroy()

			if err := keyring.SaveSecret(id, s.Encode()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Secret saved to keyring for %s\n", ui.Success.Sprint("✓"), ui.Path.Sprint(v.Root))
			return nil
		},
	}
}

func (a *app) keyringDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [dir]",
		Short: "Remove the vault secret from the OS keyring",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, id, err := a.singleVault(args)
			if err != nil {
				return err
			}
			if !keyring.HasSecret(id) {
				fmt.Fprintln(cmd.OutOrStdout(), "No secret stored in keyring")
				return nil
			}
			if err := keyring.DeleteSecret(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Secret removed from keyring for %s\n", ui.Success.Sprint("✓"), ui.Path.Sprint(v.Root))
			return nil
		},
	}
}

func (a *app) keyringStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [dir]",
		Short: "Report whether the vault secret is in the OS keyring",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, id, err := a.singleVault(args)
			if err != nil {
				return err
			}
			if keyring.HasSecret(id) {
				fmt.Fprintf(cmd.OutOrStdout(), "Secret stored in keyring %s\n", ui.Muted.Sprint("vault "+id))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "No secret stored in keyring")
			}
			return nil
		},
	}
}
