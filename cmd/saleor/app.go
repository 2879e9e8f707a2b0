package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/szaher/saleor-cli/internal/clierr"
	"github.com/szaher/saleor-cli/internal/cloud"
	"github.com/szaher/saleor-cli/internal/config"
	"github.com/szaher/saleor-cli/internal/job"
	"github.com/szaher/saleor-cli/internal/output"
	"github.com/szaher/saleor-cli/internal/progress"
	"github.com/szaher/saleor-cli/internal/telemetry"
)

// app bundles what a command needs at run time.
type app struct {
	settings *config.Settings
	store    config.Store
	logger   *slog.Logger
	redact   *telemetry.RedactFilter
	format   output.Format
	out      io.Writer
	errOut   io.Writer
}

// newApp loads settings and the credential store and scopes the context
// and logger to cmd.
func newApp(cmd *cobra.Command) (*app, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, clierr.Configuration("%w", err)
	}
	format := output.FormatJSON
	if !jsonOutput {
		if format, err = output.ParseFormat(outputFormat); err != nil {
			return nil, clierr.Validation("%w", err)
		}
	}

	level := settings.LogLevel
	if verbose {
		level = slog.LevelDebug
	}
	logger, redact := telemetry.NewLogger(cmd.ErrOrStderr(), level)

	ctx := telemetry.WithCorrelationID(cmd.Context(), correlationID)
	cmd.SetContext(ctx)
	logger = telemetry.CommandLogger(logger, ctx, cmd.CommandPath())

	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	logger.Debug("loaded settings", "api", settings.CloudAPIURL, "config", path)

	return &app{
		settings: settings,
		store:    config.NewFileStore(path),
		logger:   logger,
		redact:   redact,
		format:   format,
		out:      cmd.OutOrStdout(),
		errOut:   cmd.ErrOrStderr(),
	}, nil
}

// record reads the credential record. A corrupt or unreadable file reads
// as logged out.
func (a *app) record() (config.Record, error) {
	rec, err := a.store.Get()
	if err != nil {
		if errors.Is(err, config.ErrCorrupt) || errors.Is(err, config.ErrUnreadable) {
			a.logger.Warn("ignoring unreadable credential file", "error", err, "hint", clierr.HintOf(err))
			return rec, nil
		}
		return nil, clierr.Configuration("reading credentials: %w", err)
	}
	for _, k := range rec.Keys() {
		switch k {
		case config.FieldOrganizationSlug, config.FieldEnvironmentID, config.FieldTelemetry, config.FieldVercelTeamID:
		default:
			a.redact.AddSecret(rec[k])
		}
	}
	return rec, nil
}

// client returns an API client authenticated with the stored token.
func (a *app) client(rec config.Record) *cloud.Client {
	return cloud.NewClient(a.settings.CloudAPIURL, rec.Token(),
		cloud.WithLogger(a.logger),
		cloud.WithUserAgent("saleor-cli/"+version),
	)
}

// organization resolves --organization, falling back to the selected one.
func (a *app) organization(rec config.Record) (string, error) {
	if organization != "" {
		return organization, nil
	}
	if slug := rec.OrganizationSlug(); slug != "" {
		return slug, nil
	}
	return "", clierr.Validation("no organization selected").
		WithHint("pass --organization or run `saleor organization switch <slug>`")
}

// environment resolves an explicit argument, then --environment, then the
// selected environment.
func (a *app) environment(rec config.Record, args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if environment != "" {
		return environment, nil
	}
	if key := rec.EnvironmentID(); key != "" {
		return key, nil
	}
	return "", clierr.Validation("no environment selected").
		WithHint("pass --environment or run `saleor environment switch <key>`")
}

// poller builds a job poller reporting progress on stderr.
func (a *app) poller(c *cloud.Client, maxWait time.Duration) *job.Poller {
	retries := a.settings.PollMaxRetries
	if retries == 0 {
		retries = -1
	}
	if maxWait == 0 {
		maxWait = a.settings.PollMaxWait
	}
	return &job.Poller{
		Fetcher:    c,
		Interval:   a.settings.PollInterval,
		MaxWait:    maxWait,
		MaxRetries: retries,
		Progress:   progress.NewSpinner(a.errOut),
		Logger:     a.logger,
	}
}

// waitForTask follows a task started by the previous call, unless the user
// asked not to wait.
func (a *app) waitForTask(cmd *cobra.Command, c *cloud.Client, taskID string, noWait bool, labels job.Labels) error {
	if taskID == "" {
		fmt.Fprintln(a.out, labels.Success)
		return nil
	}
	if noWait {
		fmt.Fprintf(a.out, "Started job %s\n", taskID)
		fmt.Fprintf(a.out, "Run `saleor job wait %s` to follow it.\n", taskID)
		return nil
	}
	_, err := a.poller(c, 0).Wait(cmd.Context(), taskID, labels)
	return err
}

func (a *app) render(v any, table func() output.Table) error {
	return output.Render(a.out, a.format, v, table)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}
