// Package config holds the persisted credential record and the
// environment-driven settings the CLI runs with.
package config

import (
	"errors"
	"sort"
)

// Well-known credential record fields.
const (
	FieldToken            = "token"
	FieldOrganizationSlug = "organization_slug"
	FieldEnvironmentID    = "environment_id"
	FieldGitHubToken      = "github_token"
	FieldVercelToken      = "vercel_token"
	FieldVercelTeamID     = "vercel_team_id"
	FieldTelemetry        = "telemetry"
)

// TelemetryDisabled is the value of FieldTelemetry when the user opted out.
const TelemetryDisabled = "disabled"

// ErrCorrupt is returned when the credential file exists but cannot be parsed.
// Callers treat it as "not logged in".
var ErrCorrupt = errors.New("credential file is corrupt")

// ErrUnreadable is returned when the credential file exists but cannot be
// read, for example because of its permissions or because the path is a
// directory. Callers treat it as "not logged in".
var ErrUnreadable = errors.New("credential file is unreadable")

// Record is the flat credential mapping. A missing key means the value is
// not configured; stores never keep empty strings.
type Record map[string]string

// Token returns the cloud API token, or "" when not logged in.
func (r Record) Token() string { return r[FieldToken] }

// OrganizationSlug returns the default organization.
func (r Record) OrganizationSlug() string { return r[FieldOrganizationSlug] }

// EnvironmentID returns the default environment.
func (r Record) EnvironmentID() string { return r[FieldEnvironmentID] }

// ProviderToken returns the stored token for a third-party provider such as
// "github" or "vercel".
func (r Record) ProviderToken(provider string) string {
	return r[provider+"_token"]
}

// TelemetryOptOut reports whether the user disabled telemetry.
func (r Record) TelemetryOptOut() bool { return r[FieldTelemetry] == TelemetryDisabled }

// Keys returns the record's keys in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// apply merges fields into r. Empty values delete the key.
func (r Record) apply(fields map[string]string) {
	for k, v := range fields {
		if v == "" {
			delete(r, k)
			continue
		}
		r[k] = v
	}
}

// Store persists the credential record.
type Store interface {
	// Get returns the current record. A missing backing file yields an
	// empty record and no error.
	Get() (Record, error)

	// Set stores a single field. An empty value removes the field.
	Set(field, value string) error

	// Remove deletes a single field. Removing an absent field is not an error.
	Remove(field string) error

	// Update applies several fields in one write so a partially written
	// credential set is never observable.
	Update(fields map[string]string) error

	// Reset discards the whole record. Resetting an empty store is not an error.
	Reset() error
}
