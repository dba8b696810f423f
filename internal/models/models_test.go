package models

import (
	"reflect"
	"testing"
	"time"
)

func TestPostPaths(t *testing.T) {
	tt := []struct {
		name string
		post Post
		want []string
	}{
		{
			name: "drops empty slots and keeps order",
			post: Post{ContentsPath1: "/a.mp4", ContentsPath3: "/b.jpg"},
			want: []string{"/a.mp4", "/b.jpg"},
		},
		{
			name: "all slots",
			post: Post{ContentsPath1: "/1", ContentsPath2: "/2", ContentsPath3: "/3", ContentsPath4: "/4"},
			want: []string{"/1", "/2", "/3", "/4"},
		},
		{
			name: "keeps duplicates",
			post: Post{ContentsPath2: "/x.mp4", ContentsPath4: "/x.mp4"},
			want: []string{"/x.mp4", "/x.mp4"},
		},
		{
			name: "empty post",
			post: Post{},
			want: []string{},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.post.Paths(); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Paths() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestArchiveRun(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("Validate", func(t *testing.T) {
		run := &ArchiveRun{UserCode: "abc", References: 3, Saved: 1, Skipped: 1, Failed: 1, StartedAt: start, FinishedAt: start.Add(time.Second)}
		if err := run.Validate(); err != nil {
			t.Errorf("expected valid run, got %v", err)
		}
		if run.Duration() != time.Second {
			t.Errorf("expected 1s duration, got %v", run.Duration())
		}
	})

	t.Run("Validate rejects mismatched counts", func(t *testing.T) {
		run := &ArchiveRun{UserCode: "abc", References: 3, Saved: 1, StartedAt: start, FinishedAt: start}
		if err := run.Validate(); err == nil {
			t.Error("expected count mismatch error")
		}
	})

	t.Run("Validate rejects missing user code", func(t *testing.T) {
		run := &ArchiveRun{StartedAt: start, FinishedAt: start}
		if err := run.Validate(); err == nil {
			t.Error("expected missing user code error")
		}
	})

	t.Run("SetID", func(t *testing.T) {
		run := &ArchiveRun{}
		run.SetID("run-1")
		if run.ID() != "run-1" {
			t.Errorf("expected id run-1, got %s", run.ID())
		}
	})
}

func TestOutcomeRecordValidate(t *testing.T) {
	if err := (&OutcomeRecord{RunID: "r", Kind: "saved"}).Validate(); err != nil {
		t.Errorf("expected valid record, got %v", err)
	}
	if err := (&OutcomeRecord{RunID: "r", Kind: "lost"}).Validate(); err == nil {
		t.Error("expected unknown kind error")
	}
	if err := (&OutcomeRecord{Kind: "saved"}).Validate(); err == nil {
		t.Error("expected missing run id error")
	}
}
