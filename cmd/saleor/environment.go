package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/szaher/saleor-cli/internal/clierr"
	"github.com/szaher/saleor-cli/internal/cloud"
	"github.com/szaher/saleor-cli/internal/config"
	"github.com/szaher/saleor-cli/internal/job"
	"github.com/szaher/saleor-cli/internal/output"
)

func newEnvironmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "environment",
		Aliases: []string{"env"},
		Short:   "Manage Saleor Cloud environments",
	}

	cmd.AddCommand(newEnvironmentListCmd())
	cmd.AddCommand(newEnvironmentShowCmd())
	cmd.AddCommand(newEnvironmentCreateCmd())
	cmd.AddCommand(newEnvironmentSwitchCmd())
	cmd.AddCommand(newEnvironmentRemoveCmd())
	cmd.AddCommand(newEnvironmentPopulateCmd())

	return cmd
}

func environmentTable(envs []cloud.Environment, selected string) func() output.Table {
	return func() output.Table {
		t := output.Table{Headers: []string{"KEY", "NAME", "DOMAIN", "VERSION", "CREATED", "SELECTED"}}
		for _, e := range envs {
			mark := ""
			if e.Key == selected {
				mark = "*"
			}
			t.Append(e.Key, e.Name, e.Domain, e.Service.Version, formatTime(e.Created), mark)
		}
		return t
	}
}

func newEnvironmentListCmd() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List environments of the organization",
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
			org, err := a.organization(rec)
			if err != nil {
				return err
			}
			envs, err := a.client(rec).Environments(cmd.Context(), org)
			if err != nil {
				return err
			}
			if envs, err = output.Filter(envs, filter); err != nil {
				return clierr.Validation("%w", err)
			}
			return a.render(envs, environmentTable(envs, rec.EnvironmentID()))
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Only show environments matching an expression, e.g. 'service.version startsWith \"3.20\"'")
	return cmd
}

func newEnvironmentShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [key]",
		Short: "Show environment details",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			rec, err := a.record()
			if err != nil {
				return err
			}
			org, err := a.organization(rec)
			if err != nil {
				return err
			}
			key, err := a.environment(rec, args)
			if err != nil {
				return err
			}
			env, err := a.client(rec).Environment(cmd.Context(), org, key)
			if err != nil {
				return err
			}
			return a.render(env, environmentTable([]cloud.Environment{*env}, rec.EnvironmentID()))
		},
	}
}

func newEnvironmentCreateCmd() *cobra.Command {
	var (
		req    cloud.CreateEnvironmentRequest
		noWait bool
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an environment and wait until it is ready",
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
			org, err := a.organization(rec)
			if err != nil {
				return err
			}
			req.Name = args[0]
			if req.DomainLabel == "" {
				req.DomainLabel = req.Name
			}
			if req.Project == "" || req.Service == "" {
				return clierr.Validation("--project and --service are required")
			}

			client := a.client(rec)
			env, err := client.CreateEnvironment(cmd.Context(), org, req)
			if err != nil {
				return err
			}
			err = a.waitForTask(cmd, client, env.TaskID, noWait, job.Labels{
				InProgress: fmt.Sprintf("Creating environment %s", env.Name),
				Success:    fmt.Sprintf("Environment %s is ready at https://%s/", env.Name, env.Domain),
			})
			if err != nil {
				return err
			}
			if rec.EnvironmentID() == "" {
				if err := a.store.Set(config.FieldEnvironmentID, env.Key); err != nil {
					return clierr.Configuration("saving environment: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Project, "project", "", "Project slug")
	cmd.Flags().StringVar(&req.Service, "service", "", "Saleor service (release) to deploy")
	cmd.Flags().StringVar(&req.DomainLabel, "domain", "", "Domain label (default: the name)")
	cmd.Flags().StringVar(&req.DatabasePopulation, "database", "", "Initial database: sample or blank")
	cmd.Flags().StringVar(&req.AdminEmail, "email", "", "Dashboard admin email")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Return as soon as the job is started")
	return cmd
}

func newEnvironmentSwitchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <key>",
		Short: "Select the default environment",
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
			org, err := a.organization(rec)
			if err != nil {
				return err
			}
			env, err := a.client(rec).Environment(cmd.Context(), org, args[0])
			if err != nil {
				return err
			}
			if err := a.store.Update(map[string]string{
				config.FieldOrganizationSlug: org,
				config.FieldEnvironmentID:    env.Key,
			}); err != nil {
				return clierr.Configuration("saving environment: %w", err)
			}
			fmt.Fprintf(a.out, "Using environment %s (%s).\n", env.Name, env.Key)
			return nil
		},
	}
}

func newEnvironmentRemoveCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "remove <key>",
		Short: "Delete an environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return clierr.Validation("refusing to remove environment %s without --force", args[0])
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			rec, err := a.record()
			if err != nil {
				return err
			}
			org, err := a.organization(rec)
			if err != nil {
				return err
			}
			if err := a.client(rec).RemoveEnvironment(cmd.Context(), org, args[0]); err != nil {
				return err
			}
			if rec.EnvironmentID() == args[0] {
				if err := a.store.Remove(config.FieldEnvironmentID); err != nil {
					return clierr.Configuration("clearing environment: %w", err)
				}
			}
			fmt.Fprintf(a.out, "Environment %s removed.\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Confirm the removal")
	return cmd
}

func newEnvironmentPopulateCmd() *cobra.Command {
	var noWait bool

	cmd := &cobra.Command{
		Use:   "populate [key]",
		Short: "Replace the environment's database with sample data",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			rec, err := a.record()
			if err != nil {
				return err
			}
			org, err := a.organization(rec)
			if err != nil {
				return err
			}
			key, err := a.environment(rec, args)
			if err != nil {
				return err
			}
			client := a.client(rec)
			task, err := client.PopulateDatabase(cmd.Context(), org, key)
			if err != nil {
				return err
			}
			return a.waitForTask(cmd, client, task.TaskID, noWait, job.Labels{
				InProgress: fmt.Sprintf("Populating database of %s", key),
				Success:    fmt.Sprintf("Database of %s populated", key),
			})
		},
	}

	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Return as soon as the job is started")
	return cmd
}
