package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cfx/internal/tasks"
)

type fakeRunner struct {
	updates []tasks.ProgressUpdate
	result  *tasks.RunResult
	err     error
}

func (f *fakeRunner) Run(ctx context.Context, progress chan<- tasks.ProgressUpdate, opts tasks.RunOpts) (*tasks.RunResult, error) {
	for _, u := range f.updates {
		progress <- u
	}
	return f.result, f.err
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drive feeds messages from the running archive into m until it reaches the result view.
func drive(t *testing.T, m *Model) {
	t.Helper()
	for range 100 {
		if m.view == ResultView {
			return
		}
		m.Update(waitForProgress(m.progressChan, m.done)())
	}
	t.Fatal("archive did not complete")
}

func sampleRun() *tasks.RunResult {
	return &tasks.RunResult{
		ID:       "run-1",
		UserCode: "creator",
		Outcomes: []tasks.Outcome{
			{Index: 0, Reference: "/u/a.mp4", Kind: tasks.Saved, File: "creator/u_a.mp4", Position: 1},
			{Index: 1, Reference: "/u/b.jpg", Kind: tasks.Skipped, Position: 2},
			{Index: 2, Reference: "/u/c.mp4", Kind: tasks.Failed, Err: errors.New("status 404"), Position: 3},
		},
	}
}

func TestModel(t *testing.T) {
	opts := tasks.RunOpts{UserCode: "creator", Extensions: []string{"mp4"}}

	t.Run("confirm view", func(t *testing.T) {
		m := NewModel(context.Background(), &fakeRunner{}, opts)

		view := m.View()
		if !strings.Contains(view, "Archive creator?") || !strings.Contains(view, "mp4") {
			t.Errorf("unexpected confirm view: %s", view)
		}
	})

	t.Run("declining quits", func(t *testing.T) {
		m := NewModel(context.Background(), &fakeRunner{}, opts)

		_, cmd := m.Update(keyPress("n"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})

	t.Run("runs archive and shows result", func(t *testing.T) {
		result := sampleRun()
		runner := &fakeRunner{
			updates: []tasks.ProgressUpdate{
				{Phase: tasks.ResolveAccount, Message: "Resolving creator..."},
				{Phase: tasks.DownloadAssets, Step: 1, Total: 3, Data: result.Outcomes[0]},
				{Phase: tasks.DownloadAssets, Step: 3, Total: 3, Data: result.Outcomes[2]},
			},
			result: result,
		}
		m := NewModel(context.Background(), runner, opts)
		m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

		m.Update(keyPress("y"))
		if m.view != ArchiveView {
			t.Fatalf("expected archive view, got %d", m.view)
		}

		drive(t, m)

		got, err := m.Result()
		if err != nil || got != result {
			t.Fatalf("unexpected result %v, %v", got, err)
		}
		if len(m.recent) != 2 {
			t.Errorf("expected 2 recent outcomes, got %d", len(m.recent))
		}
		if n := len(m.outcomeList.Items()); n != 3 {
			t.Errorf("expected 3 list items, got %d", n)
		}

		view := m.View()
		if !strings.Contains(view, "1 saved") || !strings.Contains(view, "/u/c.mp4") {
			t.Errorf("unexpected result view: %s", view)
		}
	})

	t.Run("filter and restart", func(t *testing.T) {
		m := NewModel(context.Background(), &fakeRunner{result: sampleRun()}, opts)
		m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
		m.Update(keyPress("y"))
		drive(t, m)

		m.Update(keyPress("f"))
		if n := len(m.outcomeList.Items()); n != 1 {
			t.Errorf("expected 1 failed item, got %d", n)
		}

		m.Update(keyPress("r"))
		if m.view != ConfirmView {
			t.Errorf("expected confirm view after restart, got %d", m.view)
		}
		if res, _ := m.Result(); res != nil {
			t.Error("expected result to be cleared")
		}
	})

	t.Run("archive error", func(t *testing.T) {
		m := NewModel(context.Background(), &fakeRunner{err: errors.New("user not found")}, opts)
		m.Update(keyPress("y"))
		drive(t, m)

		if !strings.Contains(m.View(), "Archive failed: user not found") {
			t.Errorf("unexpected view: %s", m.View())
		}
	})
}

func TestApplyProgress(t *testing.T) {
	opts := tasks.RunOpts{UserCode: "creator", Extensions: []string{"mp4"}}

	t.Run("download step never moves backwards", func(t *testing.T) {
		m := NewModel(context.Background(), &fakeRunner{}, opts)

		m.applyProgress(tasks.ProgressUpdate{Phase: tasks.DownloadAssets, Step: 0, Total: 3})
		m.applyProgress(tasks.ProgressUpdate{Phase: tasks.DownloadAssets, Step: 3, Total: 3, Data: tasks.Outcome{Position: 3}})
		m.applyProgress(tasks.ProgressUpdate{Phase: tasks.DownloadAssets, Step: 1, Total: 3, Data: tasks.Outcome{Position: 1}})

		if m.progress.Step != 3 {
			t.Errorf("expected step 3, got %d", m.progress.Step)
		}
		if len(m.recent) != 2 {
			t.Errorf("expected both outcomes to be listed, got %d", len(m.recent))
		}
	})

	t.Run("a new phase resets the step", func(t *testing.T) {
		m := NewModel(context.Background(), &fakeRunner{}, opts)

		m.applyProgress(tasks.ProgressUpdate{Phase: tasks.FetchPages, Step: 4, Total: 4})
		m.applyProgress(tasks.ProgressUpdate{Phase: tasks.DownloadAssets, Step: 0, Total: 9})

		if m.progress.Step != 0 || m.progress.Total != 9 {
			t.Errorf("unexpected progress %+v", m.progress)
		}
	})
}

func TestRenderSummary(t *testing.T) {
	output := RenderSummary(sampleRun())

	for _, want := range []string{"creator", "1 saved", "1 skipped", "1 failed", "/u/c.mp4"} {
		if !strings.Contains(output, want) {
			t.Errorf("summary missing %q: %s", want, output)
		}
	}
}
