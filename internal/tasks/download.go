package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/desertthunder/cfx/internal/shared"
	"golang.org/x/sync/errgroup"
)

// OutcomeKind classifies how a single reference was handled.
type OutcomeKind int

const (
	Saved OutcomeKind = iota
	Skipped
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Saved:
		return "saved"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

// Outcome is the result of processing one reference.
type Outcome struct {
	Index     int         // Position of the reference in the input
	Reference string      // Reference as extracted from the post
	Kind      OutcomeKind // Saved, Skipped or Failed
	File      string      // Written path, set when Saved
	Err       error       // Cause, set when Failed
	Position  int         // Completion counter value, 1-based
}

// ExtensionSet is the set of accepted extensions, compared case-sensitively.
type ExtensionSet map[string]struct{}

// NewExtensionSet builds a set from exts. A leading "." is ignored and empty values are dropped.
func NewExtensionSet(exts ...string) ExtensionSet {
	set := make(ExtensionSet, len(exts))
	for _, ext := range exts {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext != "" {
			set[ext] = struct{}{}
		}
	}
	return set
}

func (s ExtensionSet) Has(ext string) bool {
	_, ok := s[ext]
	return ok
}

// List returns the extensions in sorted order.
func (s ExtensionSet) List() []string {
	exts := make([]string, 0, len(s))
	for ext := range s {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// ParseReference derives the final path segment of ref and its extension.
//
// The segment is the text after the last "/", or all of ref when there is none.
// A missing segment or extension wraps [shared.ErrMalformedReference].
func ParseReference(ref string) (segment, ext string, err error) {
	segment = ref[strings.LastIndex(ref, "/")+1:]
	dot := strings.LastIndex(segment, ".")
	if segment == "" || dot < 0 || dot == len(segment)-1 {
		return "", "", fmt.Errorf("%w: %q", shared.ErrMalformedReference, ref)
	}
	return segment, segment[dot+1:], nil
}

// fileNameEscaper percent-escapes "%" and "_" before "/" becomes "_", so every
// "_" in a file name stands for a separator and the mapping is reversible.
var fileNameEscaper = strings.NewReplacer("%", "%25", "_", "%5F", "/", "_")

// FileName flattens ref into a single file name. Distinct references map to
// distinct names: "/u/1/a.mp4" becomes "u_1_a.mp4" and "/u_1/a.mp4" becomes "u%5F1_a.mp4".
//
// The leading "/" is dropped, matching the media URL join.
func FileName(ref string) string {
	return fileNameEscaper.Replace(strings.TrimPrefix(ref, "/"))
}

// DownloadAll processes every reference concurrently and returns one outcome per reference, in input order.
//
// A reference's failure never cancels or blocks the others.
func (e *ArchiveEngine) DownloadAll(ctx context.Context, progress chan<- ProgressUpdate, refs []string, dir string, exts ExtensionSet) []Outcome {
	total := len(refs)
	outcomes := make([]Outcome, total)
	if total == 0 {
		return outcomes
	}

	e.sendProgress(progress, downloadStartUpdate(total))

	var (
		g    errgroup.Group
		done atomic.Int64
	)
	for i, ref := range refs {
		g.Go(func() error {
			out := e.processOne(ctx, ref, dir, exts)
			out.Index = i
			out.Position = int(done.Add(1))
			outcomes[i] = out

			e.logOutcome(out, total)
			e.sendProgress(progress, outcomeUpdate(out, total))
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (e *ArchiveEngine) processOne(ctx context.Context, ref, dir string, exts ExtensionSet) Outcome {
	out := Outcome{Reference: ref}

	_, ext, err := ParseReference(ref)
	if err != nil {
		out.Kind, out.Err = Failed, err
		return out
	}
	if !exts.Has(ext) {
		out.Kind = Skipped
		return out
	}

	body, err := e.media.Fetch(ctx, ref)
	if err != nil {
		out.Kind, out.Err = Failed, err
		return out
	}

	path := filepath.Join(dir, FileName(ref))
	if err := os.WriteFile(path, body, 0644); err != nil {
		out.Kind, out.Err = Failed, &shared.IOError{Path: path, Err: err}
		return out
	}

	out.Kind, out.File = Saved, path
	return out
}

func (e *ArchiveEngine) logOutcome(out Outcome, total int) {
	kv := []any{"position", out.Position, "total", total, "reference", out.Reference}
	switch out.Kind {
	case Failed:
		e.logger.Warn(out.Kind.String(), append(kv, "kind", shared.ErrorKind(out.Err), "error", out.Err)...)
	case Skipped:
		e.logger.Info(out.Kind.String(), kv...)
	default:
		e.logger.Info(out.Kind.String(), append(kv, "file", out.File)...)
	}
}
