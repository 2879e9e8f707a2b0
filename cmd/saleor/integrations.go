package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/szaher/saleor-cli/internal/auth"
	"github.com/szaher/saleor-cli/internal/clierr"
)

func newGitHubCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "github",
		Short: "Connect the CLI to GitHub",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "login",
		Short: "Authorize the CLI to access your GitHub repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			flow := &auth.DeviceFlow{
				ClientID: a.settings.GitHubClientID,
				Scopes:   []string{"repo"},
				Store:    a.store,
				Browser:  systemBrowser,
				Out:      a.errOut,
				Logger:   a.logger,
			}
			login, err := flow.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Logged in to GitHub as %s.\n", login)
			return nil
		},
	})

	return cmd
}

func newVercelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vercel",
		Short: "Connect the CLI to Vercel",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "login",
		Short: "Install the Saleor integration in your Vercel account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if a.settings.VercelClientID == "" {
				return clierr.Configuration("Vercel login is not configured").
					WithHint("set SALEOR_VERCEL_CLIENT_ID and SALEOR_VERCEL_CLIENT_SECRET")
			}
			flow := &auth.Flow{
				Provider: auth.VercelProvider(a.settings),
				Store:    a.store,
				Browser:  systemBrowser,
				Finalize: auth.VercelFinalizer(),
				Timeout:  a.settings.LoginTimeout,
				Out:      a.errOut,
				Logger:   a.logger,
			}
			if err := flow.Run(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged in to Vercel.")
			return nil
		},
	})

	return cmd
}
