package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/datavault/internal/core"
	"github.com/illarion/datavault/internal/crypto"
	"github.com/illarion/datavault/internal/diff"
	"github.com/illarion/datavault/internal/ui"
	"github.com/illarion/datavault/internal/vault"
)

func (a *app) inspectCmd() *cobra.Command {
	var showDiff bool

	cmd := &cobra.Command{
		Use:   "inspect [dir]",
		Short: "Show what encrypt would change, without changing anything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vaults, err := a.discover(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			return a.runVaults(cmd, vaults, "Comparing...", a.withSecret(
				func(ctx context.Context, v vault.Vault, s *crypto.Secret) (*core.Report, error) {
					result, err := a.svc.Inspect(ctx, v, s)
					if err != nil {
						return nil, err
					}
					ui.RenderResult(out, result, a.verbose)

					if showDiff {
						for _, e := range result.Filter(diff.Modified) {
							text, err := a.svc.ContentDiff(ctx, v, s, e)
							if err != nil {
								fmt.Fprintf(out, "  %s %v\n", ui.Warning.Sprint("⚠"), err)
								continue
							}
							fmt.Fprint(out, text)
						}
					}
					return nil, nil
				}))
		},
	}

	cmd.Flags().BoolVar(&showDiff, "diff", false, "print line diffs of updated text files")
	return cmd
}
