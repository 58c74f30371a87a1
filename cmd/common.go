package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/illarion/datavault/internal/core"
	"github.com/illarion/datavault/internal/crypto"
	derrors "github.com/illarion/datavault/internal/errors"
	"github.com/illarion/datavault/internal/ui"
	"github.com/illarion/datavault/internal/vault"
)

// startDir returns the directory argument, defaulting to the working directory.
func startDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

func (a *app) discover(args []string) ([]vault.Vault, error) {
	vaults, err := vault.Discover(startDir(args), a.cfg.DiscoverOptions())
	if err != nil {
		return nil, err
	}
	a.log.Info().Int("count", len(vaults)).Msg("vaults found")
	return vaults, nil
}

// secretFunc runs one operation with the secret resolved for the vault.
type secretFunc func(ctx context.Context, v vault.Vault, s *crypto.Secret) (*core.Report, error)

// withSecret resolves the secret for each vault, destroying it afterwards.
// A missing secret is passed through as nil so the operation reports it.
func (a *app) withSecret(fn secretFunc) core.VaultFunc {
	return func(ctx context.Context, v vault.Vault) (*core.Report, error) {
		s, src, err := a.resolver.Resolve(v)
		if err != nil {
			return nil, err
		}
		if s != nil {
			defer s.Destroy()
			a.log.Debug().Str("vault", v.Root).Str("source", string(src)).Msg("secret resolved")
		}
		return fn(ctx, v, s)
	}
}

// runVaults runs fn on every vault, printing a header and the rendered
// report for each one. A spinner shows message while fn runs; an empty
// message means fn may prompt, so no spinner is drawn.
func (a *app) runVaults(cmd *cobra.Command, vaults []vault.Vault, message string, fn core.VaultFunc) error {
	out := cmd.OutOrStdout()
	batch := core.RunBatch(cmd.Context(), vaults, func(ctx context.Context, v vault.Vault) (*core.Report, error) {
		ui.VaultHeader(out, v.Root)
		sp := ui.StartSpinner(cmd.ErrOrStderr(), message, message != "" && a.spinnerEnabled(cmd.ErrOrStderr()))
		report, err := fn(ctx, v)
		sp.Stop("")

		if report != nil {
			ui.RenderReport(out, report, a.verbose)
		}
		if err != nil {
			printVaultError(out, err)
		}
		return report, err
	})
	ui.RenderBatchFooter(out, batch)
	return batchError(batch)
}

// batchError turns per-vault failures into the command error. The details
// were already printed per vault.
func batchError(b *core.BatchReport) error {
	if err := b.Err(); err != nil {
		if len(b.Results) == 1 {
			return errAlreadyReported{err}
		}
		return errAlreadyReported{fmt.Errorf("%d of %d vaults failed", b.Failed(), len(b.Results))}
	}
	return nil
}

// errAlreadyReported marks an error whose details were printed; main only
// sets the exit code.
type errAlreadyReported struct{ err error }

func (e errAlreadyReported) Error() string { return e.err.Error() }
func (e errAlreadyReported) Unwrap() error { return e.err }

// IsReported reports whether err was already printed to the user.
func IsReported(err error) bool {
	var r errAlreadyReported
	return errors.As(err, &r)
}

// printVaultError prints err with a hint for the errors users can fix.
func printVaultError(w io.Writer, err error) {
	fmt.Fprintf(w, "  %s %v\n", ui.Error.Sprint("✗"), err)
	if hint := errorHint(err); hint != "" {
		fmt.Fprintf(w, "  %s %s\n", ui.Info.Sprint("→"), hint)
	}
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, derrors.ErrMissingSecret):
		return "Set DATAVAULT_SECRET, pass " + ui.Code.Sprint("--secret") + " or use " + ui.Code.Sprint("--ask-secret")
	case errors.Is(err, derrors.ErrInvalidSecret):
		return "A secret is 44 characters of URL-safe base64; create one with " + ui.Code.Sprint("datavault secret")
	case errors.Is(err, derrors.ErrLocalChanges):
		return "Review with " + ui.Code.Sprint("datavault decrypt -i") + " or overwrite with " + ui.Code.Sprint("datavault decrypt -f")
	case errors.Is(err, derrors.ErrVaultBusy):
		return "Another datavault command is using this vault; try again when it finishes"
	case errors.Is(err, derrors.ErrNoVaultFound):
		return "Create one with " + ui.Code.Sprint("datavault new <path>")
	}
	return ""
}

// confirm asks a yes/no question on the command's input. Anything but
// y or yes is a no.
func (a *app) confirm(cmd *cobra.Command, question string) (bool, error) {
	if a.in == nil {
		a.in = bufio.NewReader(cmd.InOrStdin())
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
