package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/szaher/saleor-cli/internal/clierr"
	"github.com/szaher/saleor-cli/internal/job"
	"github.com/szaher/saleor-cli/internal/output"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create, list and restore environment backups",
	}

	cmd.AddCommand(newBackupListCmd())
	cmd.AddCommand(newBackupCreateCmd())
	cmd.AddCommand(newBackupRestoreCmd())

	return cmd
}

func newBackupListCmd() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list [environment]",
		Short: "List backups of an environment",
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
			env, err := a.environment(rec, args)
			if err != nil {
				return err
			}
			backups, err := a.client(rec).Backups(cmd.Context(), org, env)
			if err != nil {
				return err
			}
			if backups, err = output.Filter(backups, filter); err != nil {
				return clierr.Validation("%w", err)
			}
			return a.render(backups, func() output.Table {
				t := output.Table{Headers: []string{"KEY", "NAME", "VERSION", "CREATED"}}
				for _, b := range backups {
					t.Append(b.Key, b.Name, b.Version, formatTime(b.Created))
				}
				return t
			})
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Only show backups matching an expression")
	return cmd
}

func newBackupCreateCmd() *cobra.Command {
	var noWait bool

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Snapshot the selected environment's database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
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
			env, err := a.environment(rec, nil)
			if err != nil {
				return err
			}
			client := a.client(rec)
			backup, err := client.CreateBackup(cmd.Context(), org, env, name)
			if err != nil {
				return err
			}
			return a.waitForTask(cmd, client, backup.TaskID, noWait, job.Labels{
				InProgress: fmt.Sprintf("Creating backup %s", name),
				Success:    fmt.Sprintf("Backup %s created (%s)", name, backup.Key),
			})
		},
	}

	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Return as soon as the job is started")
	return cmd
}

func newBackupRestoreCmd() *cobra.Command {
	var noWait bool

	cmd := &cobra.Command{
		Use:   "restore <backup-key>",
		Short: "Restore the selected environment from a backup",
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
			env, err := a.environment(rec, nil)
			if err != nil {
				return err
			}
			client := a.client(rec)
			task, err := client.RestoreBackup(cmd.Context(), org, env, args[0])
			if err != nil {
				return err
			}
			return a.waitForTask(cmd, client, task.TaskID, noWait, job.Labels{
				InProgress: fmt.Sprintf("Restoring %s from backup %s", env, args[0]),
				Success:    fmt.Sprintf("Environment %s restored", env),
			})
		},
	}

	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Return as soon as the job is started")
	return cmd
}
