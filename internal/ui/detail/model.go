package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/modulesync/internal/keys"
	"github.com/nhle/modulesync/internal/model"
	"github.com/nhle/modulesync/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// Model is the module item detail view component.
type Model struct {
	course   model.Course
	item     *model.ModuleItem
	baseURL  string
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new detail view model. baseURL is used to show a link to
// the item in the browser.
func New(k *keys.KeyMap, baseURL string, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		baseURL:  strings.TrimRight(baseURL, "/"),
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Back) {
		return m, func() tea.Msg {
			return BackMsg{}
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.item == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No item selected")
	}

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(m.viewport.View())
}

// SetItem updates the item being displayed and re-renders the content.
func (m *Model) SetItem(course model.Course, item model.ModuleItem) {
	m.course = course
	m.item = &item
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Item returns the displayed item.
func (m Model) Item() (model.ModuleItem, bool) {
	if m.item == nil {
		return model.ModuleItem{}, false
	}
	return *m.item, true
}

func (m Model) renderContent() string {
	item := m.item
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(item.Title))

	status := "Unpublished"
	if item.Published {
		status = "Published"
	}
	badgeLine := lipgloss.JoinHorizontal(
		lipgloss.Top,
		theme.ItemTypeStyle(string(item.Type)).Bold(true).Render(string(item.Type)),
		"  ",
		theme.PublishedStyle(item.Published).Bold(true).Render(status),
	)
	sections = append(sections, badgeLine, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	row := func(label, value string) {
		sections = append(sections, fmt.Sprintf("%-14s %s", metaStyle.Render(label), valStyle.Render(value)))
	}

	row("Course:", m.course.Name)
	row("Module:", fmt.Sprintf("%d", item.ModuleID))
	row("Item:", fmt.Sprintf("%d", item.ID))
	if item.ContentID != 0 {
		row("Content:", fmt.Sprintf("%d", item.ContentID))
	}
	if item.PageURL != "" {
		row("Page:", item.PageURL)
	}
	if !item.Unpublishable {
		row("Note:", "cannot be unpublished")
	}
	if link := m.itemURL(); link != "" {
		row("URL:", link)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) itemURL() string {
	if m.baseURL == "" || m.item == nil {
		return ""
	}
	return fmt.Sprintf("%s/courses/%d/modules/items/%d", m.baseURL, m.course.ID, m.item.ID)
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width - 8
	m.viewport.Height = height - 4
}
