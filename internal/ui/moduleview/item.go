package moduleview

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/modulesync/internal/modulelist"
	"github.com/nhle/modulesync/internal/theme"
)

// RowItem wraps a projected row so it can be used in a bubbles/list.
type RowItem struct {
	Row modulelist.Row
}

// FilterValue returns the string used for fuzzy filtering.
func (i RowItem) FilterValue() string {
	switch i.Row.Kind {
	case modulelist.RowModule:
		return i.Row.Module.Name
	case modulelist.RowItem, modulelist.RowSubHeader:
		return i.Row.Item.Title
	}
	return ""
}

// RowDelegate implements list.ItemDelegate for module list rows.
type RowDelegate struct{}

// Height returns the number of lines each row takes.
func (d RowDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between rows.
func (d RowDelegate) Spacing() int { return 0 }

// Update handles per-row messages (unused).
func (d RowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single row.
func (d RowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ri, ok := item.(RowItem)
	if !ok {
		return
	}

	line := RenderRow(ri.Row, m.Width())
	if index == m.Index() && ri.Row.Selectable() {
		line = theme.SelectedRowStyle.Render(line)
	} else {
		line = lipgloss.NewStyle().PaddingLeft(1).Render(line)
	}
	fmt.Fprint(w, line)
}

// RenderRow renders a row without selection decoration.
func RenderRow(r modulelist.Row, width int) string {
	switch r.Kind {
	case modulelist.RowModule:
		return renderModule(r)
	case modulelist.RowItem:
		return renderItem(r)
	case modulelist.RowSubHeader:
		return strings.Repeat(" ", r.Indent) + theme.DimmedStyle.Bold(true).Render(r.Item.Title)
	case modulelist.RowEmptyModule:
		return theme.DimmedStyle.Italic(true).Render("  No items in this module")
	case modulelist.RowFullError:
		msg := "Could not load modules"
		if r.Err != nil {
			msg += ": " + r.Err.Message
		}
		return lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.ErrorStyle.Render(msg)+"  "+theme.HelpStyle.Render("press r to retry"))
	case modulelist.RowInlineError:
		msg := "Could not load more modules"
		if r.Err != nil {
			msg += ": " + r.Err.Message
		}
		return theme.ErrorStyle.Render(msg) + "  " + theme.HelpStyle.Render("r to retry")
	case modulelist.RowEmpty:
		return theme.DimmedStyle.Render("This course has no modules")
	case modulelist.RowLoading:
		return theme.DimmedStyle.Render("Loading more modules…")
	}
	return ""
}

func renderModule(r modulelist.Row) string {
	arrow := "▾"
	if r.Collapsed {
		arrow = "▸"
	}

	parts := []string{
		arrow,
		publishMark(r.Module.Published),
		theme.ModuleHeaderStyle.Render(r.Module.Name),
		theme.DimmedStyle.Render(fmt.Sprintf("(%d)", r.Module.ItemCount)),
	}
	parts = append(parts, statusMarks(r)...)
	return strings.Join(parts, " ")
}

func renderItem(r modulelist.Row) string {
	parts := []string{
		strings.Repeat(" ", r.Indent+2) + publishMark(r.Item.Published),
		theme.ItemTypeStyle(string(r.Item.Type)).Render(fmt.Sprintf("%-10s", r.Item.Type)),
		r.Item.Title,
	}
	parts = append(parts, statusMarks(r)...)
	return strings.Join(parts, " ")
}

func publishMark(published bool) string {
	if published {
		return theme.PublishedStyle(true).Render("●")
	}
	return theme.PublishedStyle(false).Render("○")
}

func statusMarks(r modulelist.Row) []string {
	var marks []string
	if r.Loading {
		marks = append(marks, theme.DimmedStyle.Render("⟳"))
	}
	if r.Failed {
		marks = append(marks, theme.ErrorStyle.Render("!"))
	}
	return marks
}
