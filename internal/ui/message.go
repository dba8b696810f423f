package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cfx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProgressUpdate MsgKind = iota
	MsgArchiveComplete
)

type archiveCompleteData struct {
	result *tasks.RunResult
	err    error
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// archiveCompleteMsg is the constructor for [MsgArchiveComplete]
func archiveCompleteMsg(result *tasks.RunResult, err error) Msg {
	return Msg{kind: MsgArchiveComplete, data: archiveCompleteData{result, err}}
}
