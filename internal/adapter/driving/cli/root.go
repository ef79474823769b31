// Package cli implements speeddialctl, a terminal view of the configured
// Linkwarden collection.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ericfisherdev/speeddial/internal/adapter/driven/memcache"
	"github.com/ericfisherdev/speeddial/internal/application"
	"github.com/ericfisherdev/speeddial/internal/config"
	"github.com/ericfisherdev/speeddial/internal/domain/port/driven"
)

// Options wires the CLI to its environment. Zero fields fall back to the
// process defaults.
type Options struct {
	Version string
	Out     io.Writer
	Err     io.Writer

	LoadConfig   func() (*config.Config, error)
	NewGateway   func(logger *slog.Logger) driven.LinkwardenGateway
	ReadPassword func(fd int) ([]byte, error)
	Logger       *slog.Logger
}

// app is the state shared by all subcommands of one invocation.
type app struct {
	opts  Options
	cfg   *config.Config
	links *application.LinkService
}

// NewRootCmd builds the speeddialctl command tree.
func NewRootCmd(opts Options) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.LoadConfig == nil {
		opts.LoadConfig = config.Load
	}
	if opts.ReadPassword == nil {
		opts.ReadPassword = term.ReadPassword
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	a := &app{opts: opts}

	root := &cobra.Command{
		Use:           "speeddialctl",
		Short:         "Inspect the Linkwarden collection behind the speed-dial page",
		Long:          "speeddialctl reads the same environment as the speeddial server (fixed mode) and prints collections and tiles.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	root.AddCommand(a.collectionsCmd())
	root.AddCommand(a.tilesCmd())
	root.AddCommand(a.versionCmd())
	return root
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, opts Options, args []string) int {
	root := NewRootCmd(opts)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), errorStyle.Render("error: ")+err.Error())
		return 1
	}
	return 0
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "speeddialctl %s\n", a.opts.Version)
		},
	}
}

// connect loads configuration and builds the link service. It prompts for the
// Linkwarden password when only a username is configured.
func (a *app) connect(cmd *cobra.Command, _ []string) error {
	cfg, err := a.opts.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	lw := cfg.Linkwarden
	if lw.Token == "" && lw.Username != "" && lw.Password == "" {
		pw, err := a.promptPassword(cmd.ErrOrStderr(), lw.Username)
		if err != nil {
			return err
		}
		cfg.Linkwarden.Password = pw
	}
	if missing := cfg.Linkwarden.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: set %s", driven.ErrConfiguration, strings.Join(missing, ", "))
	}

	if a.opts.NewGateway == nil {
		return errors.New("no linkwarden gateway configured")
	}
	gateway := a.opts.NewGateway(a.opts.Logger)
	cache := memcache.New(memcache.WithDefaultTTL(cfg.CacheTTL))
	resolver := application.NewFixedResolver(gateway, cache, application.FixedCredentials{
		BaseURL:  cfg.Linkwarden.BaseURL,
		Token:    cfg.Linkwarden.Token,
		Username: cfg.Linkwarden.Username,
		Password: cfg.Linkwarden.Password,
	}, a.opts.Logger)

	a.cfg = cfg
	a.links = application.NewLinkService(gateway, cache, resolver, cfg.CacheTTL, a.opts.Logger)
	return nil
}

func (a *app) promptPassword(w io.Writer, username string) (string, error) {
	if _, err := fmt.Fprintf(w, "Linkwarden password for %s: ", username); err != nil {
		return "", err
	}
	pw, err := a.opts.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	if len(pw) == 0 {
		return "", fmt.Errorf("%w: empty password", driven.ErrConfiguration)
	}
	return string(pw), nil
}
