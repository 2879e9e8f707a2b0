package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/szaher/saleor-cli/internal/auth"
	"github.com/szaher/saleor-cli/internal/clierr"
)

func newLoginCmd() *cobra.Command {
	var (
		headless bool
		token    string
		port     int
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to Saleor Cloud",
		Long: `Log in to Saleor Cloud through your browser. The CLI listens on a local
port for the identity provider's redirect, so the browser must run on the
same machine. Use --headless on remote machines and paste a token created
in the dashboard instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if headless || token != "" {
				if token == "" {
					if token, err = promptSecret(a.errOut, "Token: "); err != nil {
						return err
					}
				}
				a.redact.AddSecret(token)
				if err := auth.Headless(ctx, a.store, auth.CloudVerifier{Client: a.client(nil)}, token); err != nil {
					return err
				}
				fmt.Fprintln(a.out, "Logged in.")
				return nil
			}

			if cmd.Flags().Changed("port") {
				a.settings.LoginPort = port
			}
			if cmd.Flags().Changed("timeout") {
				a.settings.LoginTimeout = timeout
			}
			if err := a.settings.Validate(); err != nil {
				return clierr.Validation("%w", err)
			}

			flow := &auth.Flow{
				Provider: auth.SaleorProvider(a.settings),
				Store:    a.store,
				Browser:  systemBrowser,
				Finalize: auth.SaleorFinalizer(a.client(nil)),
				Timeout:  a.settings.LoginTimeout,
				Out:      a.errOut,
				Logger:   a.logger,
			}
			if err := flow.Run(ctx); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged in.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&headless, "headless", false, "Log in with a token instead of a browser")
	cmd.Flags().StringVar(&token, "token", "", "Cloud API token (implies --headless)")
	cmd.Flags().IntVar(&port, "port", 0, "Local port for the login redirect (default $SALEOR_LOGIN_PORT or 3000)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "How long to wait for the browser (0 waits until interrupted)")

	return cmd
}

// promptSecret reads one line from stdin without echo when stdin is a terminal.
func promptSecret(w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return "", clierr.Validation("reading token: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && line == "" {
		if err == io.EOF {
			return "", clierr.Validation("no token provided on stdin")
		}
		return "", clierr.Validation("reading token: %w", err)
	}
	return strings.TrimSpace(line), nil
}
