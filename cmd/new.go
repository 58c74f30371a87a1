package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/illarion/datavault/internal/crypto"
	"github.com/illarion/datavault/internal/keyring"
	"github.com/illarion/datavault/internal/secret"
	"github.com/illarion/datavault/internal/storage"
	"github.com/illarion/datavault/internal/ui"
	"github.com/illarion/datavault/internal/vault"
)

func (a *app) newCmd() *cobra.Command {
	var saveKeyring bool

	cmd := &cobra.Command{
		Use:   "new <path>",
		Short: "Create a new vault and print a fresh secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			v, err := vault.Create(args[0])
			if err != nil {
				printVaultError(out, err)
				return errAlreadyReported{err}
			}
			a.log.Info().Str("vault", v.Root).Msg("vault created")

			s, err := crypto.GenerateSecret()
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "%s Created vault %s\n", ui.Success.Sprint("✓"), ui.Path.Sprint(v.Root))
			fmt.Fprintf(out, "  put plaintext files in %s\n", ui.Path.Sprint(v.PlainPath()))
			fmt.Fprintf(out, "  commit %s, %s and %s\n", ui.Path.Sprint(vault.EncryptedDir+"/"), ui.Path.Sprint(vault.GitIgnore), ui.Path.Sprint(storage.FileName))
			fmt.Fprintf(out, "  the vault's %s keeps these out of git:\n", vault.GitIgnore)
			for _, l := range strings.Split(strings.TrimSpace(vault.GitIgnoreLines()), "\n") {
				fmt.Fprintf(out, "      %s\n", l)
			}

			fmt.Fprintf(out, "\nSecret (store it somewhere safe, it is not saved in the vault):\n  %s\n", ui.Highlight.Sprint(s))

			if saveKeyring {
				id, err := secret.VaultID(v)
				if err != nil {
					return err
				}
				if err := keyring.SaveSecret(id, s); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s Secret saved to keyring\n", ui.Success.Sprint("✓"))
			} else {
				fmt.Fprintf(out, "%s Export it as DATAVAULT_SECRET or run %s\n", ui.Info.Sprint("→"), ui.Code.Sprint("datavault keyring save"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&saveKeyring, "save-keyring", false, "store the new secret in the OS keyring")
	return cmd
}
