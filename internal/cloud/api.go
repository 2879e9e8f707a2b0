package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/szaher/saleor-cli/internal/clierr"
	"github.com/szaher/saleor-cli/internal/job"
)

// Organizations lists the organizations the user belongs to.
func (c *Client) Organizations(ctx context.Context) ([]Organization, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var out []Organization
	if err := c.Do(ctx, http.MethodGet, "/organizations/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Environments lists the environments of an organization.
func (c *Client) Environments(ctx context.Context, org string) ([]Environment, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var out []Environment
	if err := c.Do(ctx, http.MethodGet, envPath(org, ""), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Environment fetches a single environment.
func (c *Client) Environment(ctx context.Context, org, env string) (*Environment, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var out Environment
	if err := c.Do(ctx, http.MethodGet, envPath(org, env), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateEnvironment starts provisioning an environment. The returned
// environment carries the task id to poll.
func (c *Client) CreateEnvironment(ctx context.Context, org string, req CreateEnvironmentRequest) (*Environment, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var out Environment
	if err := c.Do(ctx, http.MethodPost, envPath(org, ""), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveEnvironment deletes an environment.
func (c *Client) RemoveEnvironment(ctx context.Context, org, env string) error {
	if err := c.requireToken(); err != nil {
		return err
	}
	return c.Do(ctx, http.MethodDelete, envPath(org, env), nil, nil)
}

// PopulateDatabase loads sample data into an environment.
func (c *Client) PopulateDatabase(ctx context.Context, org, env string) (*TaskRef, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var out TaskRef
	if err := c.Do(ctx, http.MethodPost, envPath(org, env)+"populate-database/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Backups lists the backups of an organization, optionally narrowed to one environment.
func (c *Client) Backups(ctx context.Context, org, env string) ([]Backup, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/organizations/%s/backups/", url.PathEscape(org))
	if env != "" {
		path += "?" + url.Values{"environment": {env}}.Encode()
	}
	var out []Backup
	if err := c.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateBackup snapshots an environment's database.
func (c *Client) CreateBackup(ctx context.Context, org, env, name string) (*Backup, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var out Backup
	body := map[string]string{"name": name}
	if err := c.Do(ctx, http.MethodPost, envPath(org, env)+"backups/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RestoreBackup restores an environment from a backup.
func (c *Client) RestoreBackup(ctx context.Context, org, env, backupKey string) (*TaskRef, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var out TaskRef
	body := map[string]string{"restore_from": backupKey}
	if err := c.Do(ctx, http.MethodPut, envPath(org, env)+"restore/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Tasks lists recent background tasks of an environment.
func (c *Client) Tasks(ctx context.Context, org, env string) ([]TaskStatus, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var out []TaskStatus
	if err := c.Do(ctx, http.MethodGet, envPath(org, env)+"tasks/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TaskStatus fetches the raw status of a background task.
func (c *Client) TaskStatus(ctx context.Context, id string) (*TaskStatus, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var out TaskStatus
	path := fmt.Sprintf("/service/task-status/%s/", url.PathEscape(id))
	if err := c.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchJob implements job.StatusFetcher.
func (c *Client) FetchJob(ctx context.Context, id string) (*job.Job, error) {
	status, err := c.TaskStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	return toJob(id, status)
}

func toJob(id string, s *TaskStatus) (*job.Job, error) {
	st, err := job.ParseStatus(s.Status)
	if err != nil {
		return nil, clierr.Configuration("task %s: %w", id, err)
	}
	if s.TaskID != "" {
		id = s.TaskID
	}
	return &job.Job{
		ID:        id,
		Name:      s.JobName,
		Status:    st,
		CreatedAt: s.Created,
		Detail:    s.ErrorDetail(),
	}, nil
}

// Jobs converts listed tasks into jobs, skipping entries with an unknown status.
func Jobs(tasks []TaskStatus) []job.Job {
	out := make([]job.Job, 0, len(tasks))
	for i := range tasks {
		j, err := toJob(tasks[i].TaskID, &tasks[i])
		if err != nil {
			continue
		}
		out = append(out, *j)
	}
	return out
}

// User returns the account that owns the client's token.
func (c *Client) User(ctx context.Context) (*User, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var out User
	if err := c.Do(ctx, http.MethodGet, "/user/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Secrets verifies the client's token and returns the CLI secrets bound to
// the account. Every value must be a string; any other shape is rejected.
func (c *Client) Secrets(ctx context.Context) (map[string]string, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := c.Do(ctx, http.MethodGet, "/cli/secrets/", nil, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, clierr.Configuration("secrets response is not an object")
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, clierr.Configuration("secrets response field %q is not a string", k)
		}
		out[k] = s
	}
	return out, nil
}

// ExchangeIDToken trades an identity-provider id token for a cloud API token.
func (c *Client) ExchangeIDToken(ctx context.Context, idToken string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]string{"id_token": idToken}
	if err := c.Do(ctx, http.MethodPost, "/auth/token/", body, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", clierr.Authentication("token exchange returned no token")
	}
	return out.Token, nil
}

func envPath(org, env string) string {
	p := fmt.Sprintf("/organizations/%s/environments/", url.PathEscape(org))
	if env != "" {
		p += url.PathEscape(env) + "/"
	}
	return p
}
