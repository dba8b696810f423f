package tasks

import (
	"fmt"

	"github.com/desertthunder/cfx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ResolveAccount Phase = iota
	FetchPages
	ExtractRefs
	DownloadAssets
	Complete
)

func (p Phase) String() string {
	switch p {
	case ResolveAccount:
		return "resolve_account"
	case FetchPages:
		return "fetch_pages"
	case ExtractRefs:
		return "extract_references"
	case DownloadAssets:
		return "download_assets"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func resolvingAccountUpdate(userCode string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveAccount,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Resolving %s...", userCode),
	}
}

func resolvedAccountUpdate(account *models.Account, pages int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveAccount,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %s (%d posts, %d pages)", account.Username, account.PostCount, pages),
		Data:    account,
	}
}

func fetchPageUpdate(step, total, page, posts int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPages,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] page %d: %d posts", step, total, page, posts),
	}
}

func extractedUpdate(posts, refs int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExtractRefs,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Extracted %d references from %d posts", refs, posts),
	}
}

func downloadStartUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadAssets,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Downloading %d references...", total),
	}
}

func outcomeUpdate(out Outcome, total int) ProgressUpdate {
	msg := fmt.Sprintf("[%d/%d] %s %s", out.Position, total, out.Kind, out.Reference)
	if out.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, out.Err)
	}
	return ProgressUpdate{
		Phase:   DownloadAssets,
		Step:    out.Position,
		Total:   total,
		Message: msg,
		Data:    out,
	}
}

func completeUpdate(result *RunResult) ProgressUpdate {
	saved, skipped, failed := result.Counts()
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Done: %d saved, %d skipped, %d failed", saved, skipped, failed),
		Data:    result,
	}
}
