package cloud

import (
	"encoding/json"
	"strings"
	"time"
)

// Organization is a cloud organization.
type Organization struct {
	Slug    string    `json:"slug" yaml:"slug"`
	Name    string    `json:"name" yaml:"name"`
	Created time.Time `json:"created" yaml:"created"`
}

// Service describes the Saleor release an environment runs.
type Service struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
	Region  string `json:"region,omitempty" yaml:"region,omitempty"`
}

// Environment is a deployed Saleor instance.
type Environment struct {
	Key         string    `json:"key" yaml:"key"`
	Name        string    `json:"name" yaml:"name"`
	Domain      string    `json:"domain" yaml:"domain"`
	Project     string    `json:"project" yaml:"project"`
	Service     Service   `json:"service" yaml:"service"`
	Maintenance bool      `json:"maintenance" yaml:"maintenance"`
	Created     time.Time `json:"created" yaml:"created"`
	TaskID      string    `json:"task_id,omitempty" yaml:"task_id,omitempty"`
}

// CreateEnvironmentRequest is the body for environment creation.
type CreateEnvironmentRequest struct {
	Name               string `json:"name"`
	DomainLabel        string `json:"domain_label"`
	Project            string `json:"project"`
	Service            string `json:"service"`
	DatabasePopulation string `json:"database_population,omitempty"`
	AdminEmail         string `json:"admin_email,omitempty"`
}

// Backup is a database snapshot of an environment.
type Backup struct {
	Key         string    `json:"key" yaml:"key"`
	Name        string    `json:"name" yaml:"name"`
	Environment string    `json:"environment" yaml:"environment"`
	Version     string    `json:"saleor_version" yaml:"saleor_version"`
	Created     time.Time `json:"created" yaml:"created"`
	TaskID      string    `json:"task_id,omitempty" yaml:"task_id,omitempty"`
}

// TaskRef is returned by endpoints that start a background task.
type TaskRef struct {
	TaskID string `json:"task_id"`
}

// TaskStatus is the status endpoint payload.
type TaskStatus struct {
	TaskID  string          `json:"task_id"`
	Status  string          `json:"status"`
	JobName string          `json:"job_name"`
	Created time.Time       `json:"created"`
	Error   json.RawMessage `json:"error,omitempty"`
}

// ErrorDetail renders the failure payload as an opaque diagnostic string.
func (t TaskStatus) ErrorDetail() string {
	raw := strings.TrimSpace(string(t.Error))
	if raw == "" || raw == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(t.Error, &s); err == nil {
		return s
	}
	return raw
}

// User is the account behind the token.
type User struct {
	Email     string `json:"email" yaml:"email"`
	FirstName string `json:"first_name" yaml:"first_name"`
	LastName  string `json:"last_name" yaml:"last_name"`
}
