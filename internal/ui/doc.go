// Package ui implements a terminal progress view for archive runs using bubbletea's Elm architecture.
//
// The TUI walks through three views:
//  1. [ConfirmView] : Review target, output directory and extensions
//  2. [ArchiveView] : Spinner during the crawl, progress bar during downloads
//  3. [ResultView] : Counts plus a browsable, filterable list of outcomes
//
// Progress updates flow through a channel from the ArchiveEngine. [RenderSummary] reuses the palette for the plain CLI.
package ui
