package tasks

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cfx/internal/models"
	"github.com/desertthunder/cfx/internal/services"
	"github.com/desertthunder/cfx/internal/shared"
)

// CrawlOpts controls which pages a crawl requests.
type CrawlOpts struct {
	Offset    int  // First page index
	PageLimit *int // Maximum pages to fetch; nil means [MaxPages]
}

// CrawlResult contains the resolved account and every post fetched, in page order.
type CrawlResult struct {
	Account *models.Account
	Posts   []models.Post
	Pages   int // Number of pages requested
}

// RunOpts configures a full archive run.
type RunOpts struct {
	UserCode   string
	Offset     int
	PageLimit  *int
	OutputDir  string   // Defaults to the user code
	Extensions []string // Accepted extensions, matched exactly
}

// RunResult contains all data from a full archive run.
type RunResult struct {
	ID         string
	Account    *models.Account
	UserCode   string
	OutputDir  string
	Extensions []string
	StartPage  int
	Pages      int
	Posts      int
	References []string
	Outcomes   []Outcome
	StartedAt  time.Time
	FinishedAt time.Time
}

// OutcomeRecorder persists a finished run.
type OutcomeRecorder interface {
	RecordRun(ctx context.Context, run *models.ArchiveRun, outcomes []models.OutcomeRecord) error
}

// ArchiveEngine runs the crawl and download phases against a feed and a media host.
type ArchiveEngine struct {
	feed     services.FeedService
	media    services.MediaFetcher
	logger   *log.Logger
	recorder OutcomeRecorder
}

// NewArchiveEngine creates an engine. A nil logger writes to stderr.
func NewArchiveEngine(feed services.FeedService, media services.MediaFetcher, logger *log.Logger) *ArchiveEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ArchiveEngine{feed: feed, media: media, logger: logger}
}

// WithRecorder sets the recorder that receives each finished run.
func (e *ArchiveEngine) WithRecorder(r OutcomeRecorder) *ArchiveEngine {
	e.recorder = r
	return e
}

// MaxPages is the page bound for postCount posts.
//
// It over-counts by one when postCount is a multiple of [models.PageSize].
func MaxPages(postCount int) int {
	return postCount/models.PageSize + 1
}

// PagesToFetch clamps limit to [MaxPages]. A nil limit fetches every page.
func PagesToFetch(postCount int, limit *int) int {
	pages := MaxPages(postCount)
	if limit != nil {
		pages = max(min(*limit, pages), 0)
	}
	return pages
}

// sendProgress sends a progress update through the channel without blocking.
func (e *ArchiveEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Crawl resolves userCode and fetches its timeline pages in order.
//
// Any error aborts the crawl and no partial result is returned.
func (e *ArchiveEngine) Crawl(ctx context.Context, progress chan<- ProgressUpdate, userCode string, opts CrawlOpts) (*CrawlResult, error) {
	if userCode == "" {
		return nil, fmt.Errorf("%w: user code", shared.ErrMissingArgument)
	}
	if opts.Offset < 0 {
		return nil, fmt.Errorf("%w: negative page offset %d", shared.ErrInvalidArgument, opts.Offset)
	}

	e.sendProgress(progress, resolvingAccountUpdate(userCode))

	account, err := e.feed.GetUser(ctx, userCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", userCode, err)
	}

	pages := PagesToFetch(account.PostCount, opts.PageLimit)
	e.logger.Info("resolved account",
		"user_code", userCode, "id", account.ID, "post_cnt", account.PostCount,
		"max_pages", MaxPages(account.PostCount), "pages", pages, "offset", opts.Offset)
	e.sendProgress(progress, resolvedAccountUpdate(account, pages))

	result := &CrawlResult{Account: account, Posts: []models.Post{}, Pages: pages}
	for i := range pages {
		page := opts.Offset + i

		posts, err := e.feed.GetTimeline(ctx, account.ID, page)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}

		e.logger.Info("fetched page", "page", page, "posts", len(posts))
		e.sendProgress(progress, fetchPageUpdate(i+1, pages, page, len(posts)))

		result.Posts = append(result.Posts, posts...)
	}

	return result, nil
}

// ExtractReferences collects the non-empty asset paths of posts. Duplicates are kept.
func ExtractReferences(posts []models.Post) []string {
	refs := make([]string, 0, len(posts))
	for _, p := range posts {
		refs = append(refs, p.Paths()...)
	}
	return refs
}

// Run crawls opts.UserCode, downloads every wanted reference into opts.OutputDir and records the run.
//
// Only crawl and directory errors are returned. Download failures are reported through [RunResult.Failed].
func (e *ArchiveEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts RunOpts) (*RunResult, error) {
	started := time.Now()

	crawl, err := e.Crawl(ctx, progress, opts.UserCode, CrawlOpts{Offset: opts.Offset, PageLimit: opts.PageLimit})
	if err != nil {
		return nil, err
	}

	refs := ExtractReferences(crawl.Posts)
	e.logger.Info("extracted references", "posts", len(crawl.Posts), "references", len(refs))
	e.sendProgress(progress, extractedUpdate(len(crawl.Posts), len(refs)))

	dir := opts.OutputDir
	if dir == "" {
		dir = opts.UserCode
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &shared.IOError{Path: dir, Err: err}
	}

	exts := NewExtensionSet(opts.Extensions...)
	outcomes := e.DownloadAll(ctx, progress, refs, dir, exts)

	result := &RunResult{
		ID:         shared.GenerateID(),
		Account:    crawl.Account,
		UserCode:   opts.UserCode,
		OutputDir:  dir,
		Extensions: exts.List(),
		StartPage:  opts.Offset,
		Pages:      crawl.Pages,
		Posts:      len(crawl.Posts),
		References: refs,
		Outcomes:   outcomes,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}

	if failed := result.Failed(); len(failed) > 0 {
		for _, out := range failed {
			e.logger.Warn("failed reference", "reference", out.Reference, "error", out.Err)
		}
	}

	if e.recorder != nil {
		run, records := result.Ledger()
		if err := e.recorder.RecordRun(ctx, run, records); err != nil {
			e.logger.Warn("failed to record run", "run", result.ID, "error", err)
		}
	}

	e.sendProgress(progress, completeUpdate(result))
	return result, nil
}

// Counts tallies outcomes by kind.
func (r *RunResult) Counts() (saved, skipped, failed int) {
	for _, out := range r.Outcomes {
		switch out.Kind {
		case Saved:
			saved++
		case Skipped:
			skipped++
		case Failed:
			failed++
		}
	}
	return saved, skipped, failed
}

// Failed returns the failed outcomes in input order.
func (r *RunResult) Failed() []Outcome {
	failed := []Outcome{}
	for _, out := range r.Outcomes {
		if out.Kind == Failed {
			failed = append(failed, out)
		}
	}
	return failed
}

// Ledger converts the result into its persisted form.
func (r *RunResult) Ledger() (*models.ArchiveRun, []models.OutcomeRecord) {
	saved, skipped, failed := r.Counts()

	run := &models.ArchiveRun{
		UserCode:   r.UserCode,
		OutputDir:  r.OutputDir,
		Extensions: r.Extensions,
		StartPage:  r.StartPage,
		Pages:      r.Pages,
		Posts:      r.Posts,
		References: len(r.Outcomes),
		Saved:      saved,
		Skipped:    skipped,
		Failed:     failed,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
	run.SetID(r.ID)
	if r.Account != nil {
		run.AccountID = r.Account.ID
	}

	records := make([]models.OutcomeRecord, len(r.Outcomes))
	for i, out := range r.Outcomes {
		records[i] = models.OutcomeRecord{
			RunID:     r.ID,
			Index:     out.Index,
			Reference: out.Reference,
			Kind:      out.Kind.String(),
			File:      out.File,
		}
		if out.Err != nil {
			records[i].ErrorKind = shared.ErrorKind(out.Err)
			records[i].Error = out.Err.Error()
		}
	}
	return run, records
}

// Summary is the JSON form of a run printed by `archive --json`.
type Summary struct {
	RunID      string   `json:"run_id"`
	UserCode   string   `json:"user_code"`
	AccountID  int      `json:"account_id"`
	OutputDir  string   `json:"output_dir"`
	Extensions []string `json:"extensions"`
	Pages      int      `json:"pages"`
	Posts      int      `json:"posts"`
	References int      `json:"references"`
	Saved      int      `json:"saved"`
	Skipped    int      `json:"skipped"`
	Failed     int      `json:"failed"`
	FailedRefs []string `json:"failed_references"`
	Duration   string   `json:"duration"`
}

// Summary builds the printable summary of r.
func (r *RunResult) Summary() Summary {
	saved, skipped, failed := r.Counts()
	s := Summary{
		RunID:      r.ID,
		UserCode:   r.UserCode,
		OutputDir:  r.OutputDir,
		Extensions: r.Extensions,
		Pages:      r.Pages,
		Posts:      r.Posts,
		References: len(r.Outcomes),
		Saved:      saved,
		Skipped:    skipped,
		Failed:     failed,
		FailedRefs: []string{},
		Duration:   r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String(),
	}
	if r.Account != nil {
		s.AccountID = r.Account.ID
	}
	for _, out := range r.Failed() {
		s.FailedRefs = append(s.FailedRefs, out.Reference)
	}
	return s
}
