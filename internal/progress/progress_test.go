package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestSpinner_NonTerminalPrintsDistinctLines(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf)

	s.Start("Creating backup")
	s.Update("Creating backup (pending)")
	s.Update("Creating backup (pending)")
	s.Update("Creating backup (active)")
	s.Succeed("Backup created")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[3], "Backup created") || !strings.Contains(lines[3], "✔") {
		t.Errorf("last line = %q", lines[3])
	}
	if strings.Contains(buf.String(), "\r") {
		t.Error("non-terminal output contains carriage returns")
	}
}

func TestSpinner_Fail(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf)

	s.Start("Restoring")
	s.Fail("Restore failed")

	if !strings.Contains(buf.String(), "✖ Restore failed") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestSpinner_FinishWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf)
	s.Succeed("done")
	s.Succeed("done again")
	if strings.Count(buf.String(), "\n") != 2 {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Start("a")
	r.Update("b")
	r.Update("c")
	r.Succeed("d")

	if got := r.Count("update"); got != 2 {
		t.Errorf("Count(update) = %d, want 2", got)
	}
	if last := r.Last(); last.Kind != "succeed" || last.Text != "d" {
		t.Errorf("Last() = %+v", last)
	}
}
