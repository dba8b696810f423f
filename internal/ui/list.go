package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/cfx/internal/tasks"
)

var _ list.Item = outcomeItem{}

// outcomeItem wraps [tasks.Outcome] to implement [list.Item].
type outcomeItem struct {
	outcome tasks.Outcome
}

func (i outcomeItem) FilterValue() string { return i.outcome.Reference }
func (i outcomeItem) Title() string       { return i.outcome.Reference }
func (i outcomeItem) Description() string {
	switch i.outcome.Kind {
	case tasks.Saved:
		return fmt.Sprintf("saved • %s", i.outcome.File)
	case tasks.Failed:
		return fmt.Sprintf("failed • %v", i.outcome.Err)
	default:
		return i.outcome.Kind.String()
	}
}

// outcomeItems converts outcomes to list items, keeping only failures when failedOnly is set.
func outcomeItems(outcomes []tasks.Outcome, failedOnly bool) []list.Item {
	items := make([]list.Item, 0, len(outcomes))
	for _, out := range outcomes {
		if failedOnly && out.Kind != tasks.Failed {
			continue
		}
		items = append(items, outcomeItem{outcome: out})
	}
	return items
}
