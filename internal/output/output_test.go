package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/szaher/saleor-cli/internal/job"
)

// ---------------------------------------------------------------------------
// Render
// ---------------------------------------------------------------------------

func sampleTable() Table {
	t := Table{Headers: []string{"ID", "STATUS"}}
	t.Append("a1", "ACTIVE")
	t.Append("b", "")
	return t
}

func TestRender_Table(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatTable, nil, sampleTable); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "ID  STATUS\n----------\na1  ACTIVE\nb   -\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestRender_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, FormatTable, nil, func() Table { return Table{Headers: []string{"ID"}} })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "No results.\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestRender_JSONAndYAML(t *testing.T) {
	j := job.Job{ID: "t1", Status: job.StatusSucceeded}

	var js bytes.Buffer
	if err := Render(&js, FormatJSON, j, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(js.String(), `"status": "SUCCEEDED"`) {
		t.Errorf("json output:\n%s", js.String())
	}

	var ys bytes.Buffer
	if err := Render(&ys, FormatYAML, j, sampleTable); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(ys.String(), "status: SUCCEEDED") {
		t.Errorf("yaml output:\n%s", ys.String())
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatTable, "JSON": FormatJSON, " yaml ": FormatYAML} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}

// ---------------------------------------------------------------------------
// Filter
// ---------------------------------------------------------------------------

func TestFilter_Jobs(t *testing.T) {
	jobs := []job.Job{
		{ID: "1", Name: "backup-shop-abc", Status: job.StatusFailed},
		{ID: "2", Name: "restore-shop-def", Status: job.StatusSucceeded},
		{ID: "3", Name: "backup-blog-ghi", Status: job.StatusFailed},
	}
	got, err := Filter(jobs, `status == "FAILED" && name startsWith "backup-shop"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("got %+v", got)
	}
}

func TestFilter_EmptyKeepsAll(t *testing.T) {
	in := []job.Job{{ID: "1"}, {ID: "2"}}
	got, err := Filter(in, "")
	if err != nil || len(got) != 2 {
		t.Errorf("got %d items, err %v", len(got), err)
	}
}

func TestCompileFilter_Invalid(t *testing.T) {
	if _, err := CompileFilter(`status ==`); err == nil {
		t.Error("expected syntax error")
	}
	if _, err := CompileFilter(""); err == nil {
		t.Error("expected error for empty filter")
	}
}

func TestFilter_NonBoolean(t *testing.T) {
	if _, err := Filter([]job.Job{{ID: "1"}}, `id + "x"`); err == nil {
		t.Error("expected error for non-boolean filter")
	}
}
