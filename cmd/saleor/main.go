// Package main is the entry point for the saleor cloud CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/szaher/saleor-cli/internal/browser"
	"github.com/szaher/saleor-cli/internal/clierr"
	"github.com/szaher/saleor-cli/internal/config"
)

// Version information set at build time.
var version = "0.4.0"

// Global flags.
var (
	configPath    string
	outputFormat  string
	jsonOutput    bool
	verbose       bool
	organization  string
	environment   string
	correlationID string
)

// Overridden in tests.
var (
	systemBrowser browser.Opener = browser.System{}
	stdin         io.Reader      = os.Stdin
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "saleor",
		Short: "Manage Saleor Cloud organizations, environments and backups",
		Long: `saleor is the command-line client for Saleor Cloud. It logs in through
your browser, manages environments and backups, and follows long-running
cloud jobs until they finish.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return migrateCredentialFile(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to the credential file (default $SALEOR_CLI_CONFIG or ~/.config/saleor/config.json)")
	root.PersistentFlags().StringVarP(&outputFormat, "format", "f", "table", "Output format: table, json or yaml")
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Shorthand for --format json")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&organization, "organization", "", "Organization slug (default: the selected organization)")
	root.PersistentFlags().StringVar(&environment, "environment", "", "Environment key (default: the selected environment)")
	root.PersistentFlags().StringVar(&correlationID, "correlation-id", "", "Set explicit correlation ID")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newLoginCmd())
	root.AddCommand(newLogoutCmd())
	root.AddCommand(newConfigureCmd())
	root.AddCommand(newWhoamiCmd())
	root.AddCommand(newOrganizationCmd())
	root.AddCommand(newEnvironmentCmd())
	root.AddCommand(newBackupCmd())
	root.AddCommand(newJobCmd())
	root.AddCommand(newTelemetryCmd())
	root.AddCommand(newGitHubCmd())
	root.AddCommand(newVercelCmd())

	return root
}

// migrateCredentialFile moves ~/.saleor-cli.json to the current location
// when the user has not chosen a custom path.
func migrateCredentialFile(w io.Writer) error {
	if configPath != "" || os.Getenv("SALEOR_CLI_CONFIG") != "" {
		return nil
	}
	if err := config.MigrateLegacy(config.LegacyPath(), config.DefaultPath(), w); err != nil {
		return clierr.Configuration("%w", err)
	}
	return nil
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if hint := clierr.HintOf(err); hint != "" {
			fmt.Fprintf(stderr, "Hint: %s\n", hint)
		}
		return clierr.ExitCode(err)
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
