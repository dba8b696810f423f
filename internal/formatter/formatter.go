// package formatter renders archive run outcomes as manifests (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/cfx/internal/models"
	"github.com/desertthunder/cfx/internal/shared"
	"github.com/desertthunder/cfx/internal/tasks"
)

// ManifestEntry is one reference's row in a manifest.
type ManifestEntry struct {
	Index     int    `json:"index"`
	Reference string `json:"reference"`
	Outcome   string `json:"outcome"`
	File      string `json:"file,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Manifest is the JSON document written for a run.
type Manifest struct {
	Summary tasks.Summary   `json:"summary"`
	Entries []ManifestEntry `json:"entries"`
}

// Entries flattens the outcomes of result in reference order.
func Entries(result *tasks.RunResult) []ManifestEntry {
	entries := make([]ManifestEntry, len(result.Outcomes))
	for i, out := range result.Outcomes {
		entries[i] = ManifestEntry{
			Index:     out.Index,
			Reference: out.Reference,
			Outcome:   out.Kind.String(),
			File:      out.File,
		}
		if out.Err != nil {
			entries[i].ErrorKind = shared.ErrorKind(out.Err)
			entries[i].Error = out.Err.Error()
		}
	}
	return entries
}

// ExportToJSON renders the summary and every entry as indented JSON.
func ExportToJSON(result *tasks.RunResult) ([]byte, error) {
	return shared.MarshalJSON(Manifest{Summary: result.Summary(), Entries: Entries(result)}, true)
}

// ExportToCSV renders one row per reference with columns: Index, Reference, Outcome, File, ErrorKind, Error
func ExportToCSV(result *tasks.RunResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Index", "Reference", "Outcome", "File", "ErrorKind", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, e := range Entries(result) {
		record := []string{strconv.Itoa(e.Index), e.Reference, e.Outcome, e.File, e.ErrorKind, e.Error}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a summary header and a table of failed references.
func ExportToMarkdown(result *tasks.RunResult) ([]byte, error) {
	var buf bytes.Buffer
	s := result.Summary()

	fmt.Fprintf(&buf, "# %s\n\n", s.UserCode)
	fmt.Fprintf(&buf, "**Run**: %s\n", s.RunID)
	fmt.Fprintf(&buf, "**Output**: %s\n", s.OutputDir)
	fmt.Fprintf(&buf, "**Extensions**: %s\n", strings.Join(s.Extensions, ", "))
	fmt.Fprintf(&buf, "**Pages**: %d (%d posts)\n", s.Pages, s.Posts)
	fmt.Fprintf(&buf, "**References**: %d (%d saved, %d skipped, %d failed)\n\n", s.References, s.Saved, s.Skipped, s.Failed)

	failed := result.Failed()
	if len(failed) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("## Failed\n\n")
	buf.WriteString("| # | Reference | Kind | Error |\n")
	buf.WriteString("|---|-----------|------|-------|\n")
	for _, out := range failed {
		fmt.Fprintf(&buf, "| %d | `%s` | %s | %s |\n", out.Index, out.Reference, shared.ErrorKind(out.Err),
			strings.ReplaceAll(out.Err.Error(), "|", `\|`))
	}

	return buf.Bytes(), nil
}

// ExportToText renders one "outcome reference" line per entry.
func ExportToText(result *tasks.RunResult) ([]byte, error) {
	var buf bytes.Buffer

	for _, e := range Entries(result) {
		fmt.Fprintf(&buf, "%-7s %s", e.Outcome, e.Reference)
		if e.Error != "" {
			fmt.Fprintf(&buf, " (%s)", e.Error)
		}
		buf.WriteByte('\n')
	}

	return buf.Bytes(), nil
}

// WriteManifest writes result to path in the format implied by its extension.
//
// Supported extensions are .json, .csv, .md and .txt.
func WriteManifest(result *tasks.RunResult, path string) error {
	var (
		data []byte
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = ExportToJSON(result)
	case ".csv":
		data, err = ExportToCSV(result)
	case ".md", ".markdown":
		data, err = ExportToMarkdown(result)
	case ".txt":
		data, err = ExportToText(result)
	default:
		return fmt.Errorf("%w: unsupported manifest extension %q", shared.ErrInvalidArgument, ext)
	}
	if err != nil {
		return fmt.Errorf("failed to render manifest: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &shared.IOError{Path: dir, Err: err}
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &shared.IOError{Path: path, Err: err}
	}

	return nil
}

// RunsToText renders ledger runs as an aligned table, newest first as given.
func RunsToText(runs []*models.ArchiveRun) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%-4s %-20s %-16s %6s %6s %6s %6s %9s\n", "#", "started", "user", "refs", "saved", "skip", "fail", "duration")
	for _, r := range runs {
		fmt.Fprintf(&buf, "%-4d %-20s %-16s %6d %6d %6d %6d %9s\n",
			r.Sequence, r.StartedAt.Local().Format(time.DateTime), r.UserCode,
			r.References, r.Saved, r.Skipped, r.Failed, r.Duration().Round(time.Second))
	}

	return buf.Bytes()
}
