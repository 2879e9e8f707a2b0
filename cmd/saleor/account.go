package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/szaher/saleor-cli/internal/auth"
	"github.com/szaher/saleor-cli/internal/clierr"
	"github.com/szaher/saleor-cli/internal/cloud"
	"github.com/szaher/saleor-cli/internal/config"
	"github.com/szaher/saleor-cli/internal/output"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := a.store.Reset(); err != nil {
				return clierr.Configuration("removing credentials: %w", err)
			}
			fmt.Fprintln(a.out, "Logged out.")
			return nil
		},
	}
}

func newConfigureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure [token]",
		Short: "Store a Cloud API token and select a default organization",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			token := ""
			if len(args) == 1 {
				token = args[0]
			} else if token, err = promptSecret(a.errOut, "Token: "); err != nil {
				return err
			}
			a.redact.AddSecret(token)

			ctx := cmd.Context()
			client := a.client(nil)
			if err := auth.Headless(ctx, a.store, auth.CloudVerifier{Client: client}, token); err != nil {
				return err
			}

			orgs, err := client.WithToken(token).Organizations(ctx)
			if err != nil {
				return err
			}
			switch {
			case organization != "":
				if err := a.store.Set(config.FieldOrganizationSlug, organization); err != nil {
					return clierr.Configuration("saving organization: %w", err)
				}
				fmt.Fprintf(a.out, "Configured. Using organization %s.\n", organization)
			case len(orgs) == 1:
				if err := a.store.Set(config.FieldOrganizationSlug, orgs[0].Slug); err != nil {
					return clierr.Configuration("saving organization: %w", err)
				}
				fmt.Fprintf(a.out, "Configured. Using organization %s.\n", orgs[0].Slug)
			default:
				fmt.Fprintln(a.out, "Configured. Run `saleor organization switch <slug>` to pick an organization.")
			}
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "whoami",
		Aliases: []string{"info"},
		Short:   "Show the logged-in account",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			rec, err := a.record()
			if err != nil {
				return err
			}
			user, err := a.client(rec).User(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(user, func() output.Table {
				t := output.Table{Headers: []string{"EMAIL", "ORGANIZATION", "ENVIRONMENT"}}
				t.Append(user.Email, rec.OrganizationSlug(), rec.EnvironmentID())
				return t
			})
		},
	}
}

func newOrganizationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "organization",
		Aliases: []string{"org"},
		Short:   "List and select organizations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List organizations you belong to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			rec, err := a.record()
			if err != nil {
				return err
			}
			orgs, err := a.client(rec).Organizations(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(orgs, func() output.Table {
				t := output.Table{Headers: []string{"SLUG", "NAME", "CREATED", "SELECTED"}}
				for _, o := range orgs {
					selected := ""
					if o.Slug == rec.OrganizationSlug() {
						selected = "*"
					}
					t.Append(o.Slug, o.Name, formatTime(o.Created), selected)
				}
				return t
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "switch <slug>",
		Short: "Select the default organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			rec, err := a.record()
			if err != nil {
				return err
			}
			orgs, err := a.client(rec).Organizations(cmd.Context())
			if err != nil {
				return err
			}
			if !hasOrganization(orgs, args[0]) {
				return clierr.Validation("organization %q not found", args[0]).
					WithHint("run `saleor organization list` to see available organizations")
			}
			// Environments belong to an organization; drop the old selection.
			if err := a.store.Update(map[string]string{
				config.FieldOrganizationSlug: args[0],
				config.FieldEnvironmentID:    "",
			}); err != nil {
				return clierr.Configuration("saving organization: %w", err)
			}
			fmt.Fprintf(a.out, "Using organization %s.\n", args[0])
			return nil
		},
	})

	return cmd
}

func hasOrganization(orgs []cloud.Organization, slug string) bool {
	for _, o := range orgs {
		if o.Slug == slug {
			return true
		}
	}
	return false
}
