// Package job models server-side background tasks and waits for them to
// finish.
package job

import (
	"fmt"
	"strings"
	"time"
)

// Status is the server-reported state of a job.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusActive    Status = "ACTIVE"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

// ParseStatus validates a status string from the server.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusActive, StatusSucceeded, StatusFailed:
		return st, nil
	default:
		return "", fmt.Errorf("unknown job status %q", s)
	}
}

// Terminal reports whether no further transitions can happen.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// rank orders statuses along PENDING → ACTIVE → terminal.
func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 1
	case StatusActive:
		return 2
	case StatusSucceeded, StatusFailed:
		return 3
	default:
		return 0
	}
}

// Job is a snapshot of a background task.
type Job struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name,omitempty" yaml:"name,omitempty"`
	Status    Status    `json:"status" yaml:"status"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	// Detail is the server's failure diagnostic, kept opaque.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Kind returns the parsed job name.
func (j *Job) Kind() Kind { return ParseName(j.Name) }

// Kind is the structured form of a job name:
// <operation>-<environment>-<suffix>.
type Kind struct {
	Operation   string
	Environment string
	Suffix      string
	Raw         string
}

// Known reports whether the name was parsed.
func (k Kind) Known() bool { return k.Operation != "" }

func (k Kind) String() string {
	if !k.Known() {
		return k.Raw
	}
	return k.Operation + " " + k.Environment
}

// Operations that may prefix a job name. Longer entries come first so that
// multi-word operations win over their prefixes.
var operations = []string{
	"populate-database",
	"backup",
	"restore",
	"create",
	"populate",
	"upgrade",
	"clear",
	"promote",
	"remove",
}

// ParseName splits a job name into operation, environment and random
// suffix. Names that do not follow the encoding return a Kind with only
// Raw set.
func ParseName(name string) Kind {
	k := Kind{Raw: name}
	for _, op := range operations {
		rest, ok := strings.CutPrefix(name, op+"-")
		if !ok {
			continue
		}
		i := strings.LastIndex(rest, "-")
		if i <= 0 || i == len(rest)-1 {
			return k
		}
		k.Operation = op
		k.Environment = rest[:i]
		k.Suffix = rest[i+1:]
		return k
	}
	return k
}
