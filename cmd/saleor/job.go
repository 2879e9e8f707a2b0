package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/szaher/saleor-cli/internal/clierr"
	"github.com/szaher/saleor-cli/internal/cloud"
	"github.com/szaher/saleor-cli/internal/job"
	"github.com/szaher/saleor-cli/internal/output"
)

func newJobCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "job",
		Aliases: []string{"task"},
		Short:   "Inspect and follow background cloud jobs",
	}

	cmd.AddCommand(newJobListCmd())
	cmd.AddCommand(newJobWaitCmd())

	return cmd
}

func newJobListCmd() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list [environment]",
		Short: "List recent jobs of an environment",
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
			tasks, err := a.client(rec).Tasks(cmd.Context(), org, env)
			if err != nil {
				return err
			}
			jobs, err := output.Filter(cloud.Jobs(tasks), filter)
			if err != nil {
				return clierr.Validation("%w", err)
			}
			return a.render(jobs, func() output.Table {
				t := output.Table{Headers: []string{"ID", "JOB", "STATUS", "CREATED"}}
				for i := range jobs {
					t.Append(jobs[i].ID, jobs[i].Kind().String(), string(jobs[i].Status), formatTime(jobs[i].CreatedAt))
				}
				return t
			})
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Only show jobs matching an expression, e.g. 'status == \"FAILED\"'")
	return cmd
}

func newJobWaitCmd() *cobra.Command {
	var maxWait time.Duration

	cmd := &cobra.Command{
		Use:   "wait <job-id>",
		Short: "Wait for a job to finish",
		Long: `Wait for a job to finish. Interrupting or timing out only stops the CLI;
the job keeps running in Saleor Cloud and can be waited on again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			rec, err := a.record()
			if err != nil {
				return err
			}
			id := args[0]
			j, err := a.poller(a.client(rec), maxWait).Wait(cmd.Context(), id, job.Labels{
				InProgress: fmt.Sprintf("Waiting for job %s", id),
				Success:    fmt.Sprintf("Job %s succeeded", id),
			})
			if err != nil {
				return err
			}
			if a.format != output.FormatTable {
				return a.render(j, nil)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&maxWait, "max-wait", 0, "Give up after this long (default $SALEOR_POLL_MAX_WAIT, 0 waits indefinitely)")
	return cmd
}
