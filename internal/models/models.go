package models

import (
	"fmt"
	"time"
)

// PageSize is the number of posts the timeline endpoint returns per page.
const PageSize = 20

// Account is a user resolved from a user code.
type Account struct {
	ID         int    `json:"id"`
	UserCode   string `json:"user_code"`
	Username   string `json:"username"`
	PostCount  int    `json:"post_cnt"`
	MovieCount int    `json:"movie_cnt"`
}

// Plan is an access plan attached to a post.
type Plan struct {
	PlanID       int    `json:"plan_id"`
	PlanName     string `json:"plan_name"`
	PlanDetail   string `json:"plan_detail"`
	IsJoinedPlan bool   `json:"is_joined_plan"`
}

// Post is a single timeline entry.
type Post struct {
	PostID        int    `json:"post_id"`
	PostType      int    `json:"post_type"`
	UserID        int    `json:"user_id"`
	ContentsPath1 string `json:"contents_path1"`
	ContentsPath2 string `json:"contents_path2"`
	ContentsPath3 string `json:"contents_path3"`
	ContentsPath4 string `json:"contents_path4"`
	Plans         []Plan `json:"plans"`
}

// Paths returns the non-empty asset paths in slot order.
func (p Post) Paths() []string {
	paths := make([]string, 0, 4)
	for _, path := range [...]string{p.ContentsPath1, p.ContentsPath2, p.ContentsPath3, p.ContentsPath4} {
		if path != "" {
			paths = append(paths, path)
		}
	}
	return paths
}

// Model defines the base interface for ledger entities.
type Model interface {
	ID() string      // ID returns the unique identifier for this model
	Validate() error // Validate checks if the model's data is valid and returns an error if not
}

// ArchiveRun summarizes one archive run.
type ArchiveRun struct {
	id         string
	Sequence   int
	UserCode   string
	AccountID  int
	OutputDir  string
	Extensions []string
	StartPage  int
	Pages      int
	Posts      int
	References int
	Saved      int
	Skipped    int
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
}

var _ Model = (*ArchiveRun)(nil)

func (r *ArchiveRun) ID() string      { return r.id }
func (r *ArchiveRun) SetID(id string) { r.id = id }

// Duration is the wall time between start and finish.
func (r *ArchiveRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Validate checks that the run is attributable and its counters add up.
func (r *ArchiveRun) Validate() error {
	if r.UserCode == "" {
		return fmt.Errorf("user code is required")
	}
	if r.Saved+r.Skipped+r.Failed != r.References {
		return fmt.Errorf("outcome counts %d+%d+%d do not match %d references", r.Saved, r.Skipped, r.Failed, r.References)
	}
	if r.FinishedAt.Before(r.StartedAt) {
		return fmt.Errorf("run finished before it started")
	}
	return nil
}

// OutcomeRecord is the persisted form of one reference's outcome.
type OutcomeRecord struct {
	id        string
	RunID     string
	Index     int
	Reference string
	Kind      string
	File      string
	ErrorKind string
	Error     string
}

var _ Model = (*OutcomeRecord)(nil)

func (o *OutcomeRecord) ID() string      { return o.id }
func (o *OutcomeRecord) SetID(id string) { o.id = id }

func (o *OutcomeRecord) Validate() error {
	if o.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	switch o.Kind {
	case "saved", "skipped", "failed":
		return nil
	default:
		return fmt.Errorf("unknown outcome kind %q", o.Kind)
	}
}
