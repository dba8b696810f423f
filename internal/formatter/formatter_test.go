package formatter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/cfx/internal/models"
	"github.com/desertthunder/cfx/internal/shared"
	"github.com/desertthunder/cfx/internal/tasks"
	th "github.com/desertthunder/cfx/internal/testing"
)

func sampleResult() *tasks.RunResult {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &tasks.RunResult{
		ID:         "run-1",
		Account:    &models.Account{ID: 42, UserCode: "creator"},
		UserCode:   "creator",
		OutputDir:  "creator",
		Extensions: []string{"mp4"},
		Pages:      1,
		Posts:      2,
		References: []string{"/u/a.mp4", "/u/a.jpg", "/u/b.mp4"},
		Outcomes: []tasks.Outcome{
			{Index: 0, Reference: "/u/a.mp4", Kind: tasks.Saved, File: "creator/u_a.mp4", Position: 2},
			{Index: 1, Reference: "/u/a.jpg", Kind: tasks.Skipped, Position: 1},
			{Index: 2, Reference: "/u/b.mp4", Kind: tasks.Failed, Position: 3,
				Err: &shared.TransportError{Op: "status", URL: "https://video.candfans.jp/u/b.mp4", StatusCode: 403}},
		},
		StartedAt:  start,
		FinishedAt: start.Add(2 * time.Second),
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(sampleResult())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var manifest Manifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}

		if manifest.Summary.RunID != "run-1" || manifest.Summary.Saved != 1 || manifest.Summary.Failed != 1 {
			t.Errorf("unexpected summary %+v", manifest.Summary)
		}
		if len(manifest.Entries) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(manifest.Entries))
		}
		if e := manifest.Entries[2]; e.Outcome != "failed" || e.ErrorKind != "transport" {
			t.Errorf("unexpected failed entry %+v", e)
		}
		if !strings.Contains(string(data), "\n  ") {
			t.Error("expected indented JSON")
		}
	})

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleResult())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("invalid CSV: %v", err)
		}

		if len(records) != 4 {
			t.Fatalf("expected header and 3 rows, got %d", len(records))
		}
		if strings.Join(records[0], ",") != "Index,Reference,Outcome,File,ErrorKind,Error" {
			t.Errorf("CSV missing headers, got: %v", records[0])
		}
		if records[1][2] != "saved" || records[1][3] != "creator/u_a.mp4" {
			t.Errorf("unexpected saved row %v", records[1])
		}
		if records[3][4] != "transport" || !strings.Contains(records[3][5], "403") {
			t.Errorf("unexpected failed row %v", records[3])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleResult())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "# creator") {
			t.Errorf("Markdown missing title")
		}
		if !strings.Contains(output, "1 saved, 1 skipped, 1 failed") {
			t.Errorf("Markdown missing counts, got: %s", output)
		}
		if !strings.Contains(output, "| 2 | `/u/b.mp4` | transport |") {
			t.Errorf("Markdown missing failed row, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown without failures", func(t *testing.T) {
		result := sampleResult()
		result.Outcomes = result.Outcomes[:2]

		data, err := ExportToMarkdown(result)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		if strings.Contains(string(data), "## Failed") {
			t.Error("expected no failed section")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleResult())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected 3 lines, got %d", len(lines))
		}
		if !strings.HasPrefix(lines[1], "skipped /u/a.jpg") {
			t.Errorf("unexpected line %q", lines[1])
		}
	})
}

func TestWriteManifest(t *testing.T) {
	for _, name := range []string{"out.json", "out.csv", "out.md", "out.txt", "nested/dir/out.JSON"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			if err := WriteManifest(sampleResult(), path); err != nil {
				t.Fatalf("WriteManifest failed: %v", err)
			}
			th.AssertFileExists(t, path)
			if !strings.Contains(th.MustReadFile(t, path), "/u/b.mp4") {
				t.Error("manifest missing reference")
			}
		})
	}

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.xml")

		err := WriteManifest(sampleResult(), path)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
		th.AssertNoFile(t, path)
	})
}

func TestRunsToText(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	runs := []*models.ArchiveRun{
		{Sequence: 2, UserCode: "creator", References: 8, Saved: 4, Skipped: 3, Failed: 1, StartedAt: start, FinishedAt: start.Add(time.Minute)},
		{Sequence: 1, UserCode: "other", StartedAt: start, FinishedAt: start},
	}

	output := string(RunsToText(runs))
	lines := strings.Split(strings.TrimSpace(output), "\n")

	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[1], "2 ") || !strings.Contains(lines[1], "creator") || !strings.Contains(lines[1], "1m0s") {
		t.Errorf("unexpected row %q", lines[1])
	}
}
