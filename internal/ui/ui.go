package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/cfx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ConfirmView ViewState = iota
	ArchiveView
	ResultView
)

const recentOutcomes = 6

// Runner is the part of [tasks.ArchiveEngine] the TUI drives.
type Runner interface {
	Run(ctx context.Context, progress chan<- tasks.ProgressUpdate, opts tasks.RunOpts) (*tasks.RunResult, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       Runner
	opts         tasks.RunOpts
	width        int
	height       int
	spinner      spinner.Model
	bar          progress.Model
	outcomeList  list.Model
	failedOnly   bool
	progressChan chan tasks.ProgressUpdate
	done         chan archiveCompleteData
	progress     tasks.ProgressUpdate
	recent       []tasks.Outcome
	result       *tasks.RunResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model that archives with opts when confirmed.
func NewModel(ctx context.Context, engine Runner, opts tasks.RunOpts) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.title.UnsetMarginBottom()

	return &Model{
		ctx:     ctx,
		view:    ConfirmView,
		engine:  engine,
		opts:    opts,
		spinner: s,
		bar:     progress.New(progress.WithDefaultGradient()),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Result returns the last completed run and its error, if any.
func (m *Model) Result() (*tasks.RunResult, error) {
	return m.result, m.err
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(max(msg.Width-4, 10), 80)
		if m.view == ResultView {
			m.outcomeList.SetSize(msg.Width-4, msg.Height-12)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ArchiveView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case spinner.TickMsg:
		if m.view != ArchiveView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			m.applyProgress(msg.data.(tasks.ProgressUpdate))
			return m, waitForProgress(m.progressChan, m.done)
		case MsgArchiveComplete:
			data := msg.data.(archiveCompleteData)
			m.result, m.err = data.result, data.err
			m.progressChan, m.done = nil, nil
			m.view = ResultView
			m.buildOutcomeList()
			return m, nil
		}
	}

	if m.view == ResultView {
		var cmd tea.Cmd
		m.outcomeList, cmd = m.outcomeList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case ConfirmView:
		return m.renderConfirm()
	case ArchiveView:
		return m.renderArchive()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.no):
		return m, tea.Quit
	case key.Matches(msg, m.keys.yes):
		return m, m.startArchive()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.outcomeList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.outcomeList, cmd = m.outcomeList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = ConfirmView
		m.result, m.err = nil, nil
		m.recent = nil
		m.progress = tasks.ProgressUpdate{}
		return m, nil
	case key.Matches(msg, m.keys.filter):
		m.failedOnly = !m.failedOnly
		m.buildOutcomeList()
		return m, nil
	}

	var cmd tea.Cmd
	m.outcomeList, cmd = m.outcomeList.Update(msg)
	return m, cmd
}

// applyProgress records update. Outcome updates race each other, so the
// download step only moves forward.
func (m *Model) applyProgress(update tasks.ProgressUpdate) {
	if update.Phase == tasks.DownloadAssets && m.progress.Phase == tasks.DownloadAssets {
		update.Step = max(m.progress.Step, update.Step)
	}
	m.progress = update
	if out, ok := update.Data.(tasks.Outcome); ok {
		m.recent = append(m.recent, out)
		if len(m.recent) > recentOutcomes {
			m.recent = m.recent[len(m.recent)-recentOutcomes:]
		}
	}
}

func (m *Model) buildOutcomeList() {
	var outcomes []tasks.Outcome
	if m.result != nil {
		outcomes = m.result.Outcomes
	}

	m.outcomeList = list.New(outcomeItems(outcomes, m.failedOnly), list.NewDefaultDelegate(), 0, 0)
	m.outcomeList.Title = "Outcomes"
	if m.failedOnly {
		m.outcomeList.Title = "Failed references"
	}
	m.outcomeList.SetShowHelp(false)
	m.outcomeList.SetSize(max(m.width-4, 20), max(m.height-12, 5))
}

func (m *Model) startArchive() tea.Cmd {
	progressChan := make(chan tasks.ProgressUpdate, 64)
	done := make(chan archiveCompleteData, 1)
	m.progressChan, m.done = progressChan, done
	m.view = ArchiveView

	go func() {
		result, err := m.engine.Run(m.ctx, progressChan, m.opts)
		done <- archiveCompleteData{result: result, err: err}
		close(progressChan)
	}()

	return tea.Batch(m.spinner.Tick, waitForProgress(progressChan, done))
}

func waitForProgress(progressChan <-chan tasks.ProgressUpdate, done <-chan archiveCompleteData) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-progressChan
		if !ok {
			data := <-done
			return archiveCompleteMsg(data.result, data.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Archive %s?", m.opts.UserCode))

	output := m.opts.OutputDir
	if output == "" {
		output = m.opts.UserCode
	}
	pages := "all"
	if m.opts.PageLimit != nil {
		pages = fmt.Sprintf("%d", *m.opts.PageLimit)
	}

	info := strings.Join([]string{
		styles.label.Render("Output") + output,
		styles.label.Render("Extensions") + strings.Join(m.opts.Extensions, ", "),
		styles.label.Render("Pages") + fmt.Sprintf("%s from %d", pages, m.opts.Offset),
	}, "\n")

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}

func (m *Model) renderArchive() string {
	title := styles.title.Render(fmt.Sprintf("Archiving %s", m.opts.UserCode))

	var b strings.Builder
	switch m.progress.Phase {
	case tasks.DownloadAssets:
		percent := 0.0
		if m.progress.Total > 0 {
			percent = float64(m.progress.Step) / float64(m.progress.Total)
		}
		fmt.Fprintf(&b, "%s\n%d/%d references\n", m.bar.ViewAs(percent), m.progress.Step, m.progress.Total)
		for _, out := range m.recent {
			b.WriteString("\n" + renderOutcomeLine(out))
		}
	default:
		fmt.Fprintf(&b, "%s %s", m.spinner.View(), m.progress.Message)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, b.String(), helpView)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Archive failed: %v", m.err)), helpView)
	}
	if m.result == nil {
		return styles.err.Render("No result available")
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.filter, m.keys.restart, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", RenderSummary(m.result), m.outcomeList.View(), helpView)
}

func renderOutcomeLine(out tasks.Outcome) string {
	switch out.Kind {
	case tasks.Saved:
		return styles.ok.Render("✓ ") + out.Reference
	case tasks.Failed:
		return styles.err.Render("✗ ") + out.Reference + styles.help.Render(fmt.Sprintf("  %v", out.Err))
	default:
		return styles.help.Render("- " + out.Reference)
	}
}

// RenderSummary styles the counts and failed references of a finished run.
func RenderSummary(result *tasks.RunResult) string {
	s := result.Summary()

	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("✓ Archived %s", s.UserCode)) + "\n")
	b.WriteString(styles.label.Render("Output") + s.OutputDir + "\n")
	b.WriteString(styles.label.Render("Pages") + fmt.Sprintf("%d (%d posts)", s.Pages, s.Posts) + "\n")
	b.WriteString(styles.label.Render("References") + fmt.Sprintf("%d in %s", s.References, s.Duration) + "\n")
	b.WriteString(styles.label.Render("Outcomes") +
		styles.ok.Render(fmt.Sprintf("%d saved", s.Saved)) + ", " +
		styles.help.Render(fmt.Sprintf("%d skipped", s.Skipped)) + ", " +
		failedStyle(s.Failed).Render(fmt.Sprintf("%d failed", s.Failed)) + "\n")

	for _, ref := range s.FailedRefs {
		b.WriteString(styles.warn.Render("  • "+ref) + "\n")
	}
	return b.String()
}

func failedStyle(n int) lipgloss.Style {
	if n > 0 {
		return styles.err
	}
	return styles.help
}
