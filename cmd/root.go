// Package cmd implements the datavault command line.
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/illarion/datavault/internal/config"
	"github.com/illarion/datavault/internal/core"
	"github.com/illarion/datavault/internal/logger"
	"github.com/illarion/datavault/internal/secret"
	"github.com/illarion/datavault/internal/ui"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

// app holds the state shared by all subcommands of one invocation.
type app struct {
	verbose   bool
	debug     bool
	secret    string
	askSecret bool
	noKeyring bool
	logFormat string

	cfg      *config.Config
	log      *logger.Logger
	svc      *core.Service
	resolver *secret.Resolver
	in       *bufio.Reader
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "datavault",
		Short: "Keep a plaintext directory and its encrypted twin in sync",
		Long: `datavault keeps secrets next to your code.

A vault is a directory with two sides: decrypted/ holds plaintext files and
is never committed, encrypted/ holds one encrypted file per plaintext file
and is safe to commit. Commands act on the vault in the given directory, or
on every vault below it.

The secret is read from --secret, DATAVAULT_SECRET, the OS keyring
(see "datavault keyring"), or a prompt with --ask-secret.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&a.debug, "debug", "d", false, "enable debug output")
	flags.StringVar(&a.secret, "secret", "", "vault secret (prefer DATAVAULT_SECRET)")
	flags.BoolVar(&a.askSecret, "ask-secret", false, "prompt for the secret when no other source has it")
	flags.BoolVar(&a.noKeyring, "no-keyring", false, "do not read secrets from the OS keyring")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: console or json (default from DATAVAULT_LOG_FORMAT)")

	root.AddCommand(
		a.newCmd(),
		a.secretCmd(),
		a.versionCmd(),
		a.inspectCmd(),
		a.encryptCmd(),
		a.decryptCmd(),
		a.clearCmd(),
		a.clearEncryptedCmd(),
		a.statusCmd(),
		a.keyringCmd(),
	)
	return root
}

// Execute runs the root command with ctx and prints any error that was not
// already reported. The returned error only decides the exit code.
func Execute(ctx context.Context) error {
	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	if err != nil && !IsReported(err) {
		w := root.ErrOrStderr()
		fmt.Fprintf(w, "Error: %s\n", err)
		if hint := errorHint(err); hint != "" {
			fmt.Fprintf(w, "%s %s\n", ui.Info.Sprint("→"), hint)
		}
	}
	return err
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	switch {
	case a.debug:
		level = zerolog.DebugLevel
	case a.verbose:
		level = min(level, zerolog.InfoLevel)
	}
	format := cfg.LogFormat
	if a.logFormat != "" {
		format = a.logFormat
	}
	if a.log, err = logger.NewFormat(cmd.ErrOrStderr(), level, format); err != nil {
		return err
	}

	mapper, err := cfg.Mapper()
	if err != nil {
		return err
	}
	if a.svc, err = core.New(mapper, a.log); err != nil {
		return err
	}

	a.resolver = &secret.Resolver{
		Flag:       a.secret,
		Env:        cfg.Secret,
		UseKeyring: !a.noKeyring && !cfg.NoKeyring,
		Ask:        a.askSecret,
		Log:        a.log,
	}
	a.log.Debug().Int("max_depth", cfg.MaxDepth).Strs("ignore", cfg.Ignore).Msg("configuration loaded")
	return nil
}

// spinnerEnabled reports whether a spinner may be drawn on w.
func (a *app) spinnerEnabled(w io.Writer) bool {
	if a.verbose || a.debug {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
