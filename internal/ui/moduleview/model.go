package moduleview

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/modulesync/internal/keys"
	"github.com/nhle/modulesync/internal/model"
	"github.com/nhle/modulesync/internal/modulelist"
	"github.com/nhle/modulesync/internal/theme"
)

// EventMsg asks the parent to dispatch an event to the controller.
type EventMsg struct {
	Event modulelist.Event
}

// AnnounceEditMsg asks the parent to announce that an item's content was
// edited elsewhere.
type AnnounceEditMsg struct {
	Item model.ModuleItem
}

// Model is the module list view component. It renders the projection of
// the latest controller snapshot and turns key presses into events.
type Model struct {
	list        list.Model
	keys        *keys.KeyMap
	state       modulelist.Model
	collapsed   model.IDSet
	indentWidth int

	// skipContentTags is passed along with bulk requests.
	skipContentTags bool

	width  int
	height int
}

// New creates a new module list view.
func New(k *keys.KeyMap, indentWidth, width, height int) Model {
	l := list.New([]list.Item{}, RowDelegate{}, width, height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:        l,
		keys:        k,
		indentWidth: indentWidth,
		width:       width,
		height:      height,
	}
}

// SetState replaces the displayed snapshot.
func (m *Model) SetState(state modulelist.Model) tea.Cmd {
	m.state = state
	return m.refresh()
}

// State returns the displayed snapshot.
func (m Model) State() modulelist.Model {
	return m.state
}

// SetCollapsed replaces the set of collapsed modules.
func (m *Model) SetCollapsed(ids model.IDSet) tea.Cmd {
	m.collapsed = ids
	return m.refresh()
}

// SkipContentTags reports whether bulk requests leave items untouched.
func (m Model) SkipContentTags() bool {
	return m.skipContentTags
}

func (m *Model) refresh() tea.Cmd {
	rows := modulelist.Project(m.state, m.collapsed, m.indentWidth)
	items := make([]list.Item, len(rows))
	for i, r := range rows {
		items[i] = RowItem{Row: r}
	}
	return m.list.SetItems(items)
}

// ScrollTo selects the row of the given item. It reports whether the item
// is currently displayed.
func (m *Model) ScrollTo(itemID int64) bool {
	for i, it := range m.list.Items() {
		ri := it.(RowItem)
		if (ri.Row.Kind == modulelist.RowItem || ri.Row.Kind == modulelist.RowSubHeader) && ri.Row.Item.ID == itemID {
			m.list.Select(i)
			return true
		}
	}
	return false
}

// SelectedRow returns the focused row.
func (m Model) SelectedRow() (modulelist.Row, bool) {
	ri, ok := m.list.SelectedItem().(RowItem)
	if !ok {
		return modulelist.Row{}, false
	}
	return ri.Row, true
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the module list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, tea.Batch(cmd, m.nextPageIfAtEnd())
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	row, hasRow := m.SelectedRow()

	switch {
	case key.Matches(msg, m.keys.Refresh):
		return dispatch(modulelist.PullToRefresh{}), true

	case key.Matches(msg, m.keys.Select):
		if hasRow && row.Kind == modulelist.RowItem {
			return dispatch(modulelist.ModuleItemClicked{ItemID: row.Item.ID}), true
		}
		if hasRow && row.Kind == modulelist.RowModule {
			return m.toggleCollapse(row.ModuleID), true
		}
		return nil, true

	case key.Matches(msg, m.keys.Toggle):
		if hasRow && row.Selectable() {
			return m.toggleCollapse(row.ModuleID), true
		}
		return nil, true

	case key.Matches(msg, m.keys.TogglePublish):
		if hasRow && row.Kind == modulelist.RowItem {
			return dispatch(modulelist.UpdateModuleItem{ItemID: row.Item.ID, Published: !row.Item.Published}), true
		}
		return nil, true

	case key.Matches(msg, m.keys.PublishModule), key.Matches(msg, m.keys.UnpublishModule):
		if !hasRow || !row.Selectable() {
			return nil, true
		}
		action := modulelist.ActionPublish
		if key.Matches(msg, m.keys.UnpublishModule) {
			action = modulelist.ActionUnpublish
		}
		return dispatch(modulelist.BulkUpdateModule{
			ModuleID:        row.ModuleID,
			Action:          action,
			SkipContentTags: m.skipContentTags,
		}), true

	case key.Matches(msg, m.keys.PublishAll), key.Matches(msg, m.keys.UnpublishAll):
		action := modulelist.ActionPublish
		if key.Matches(msg, m.keys.UnpublishAll) {
			action = modulelist.ActionUnpublish
		}
		return dispatch(modulelist.BulkUpdateAllModules{Action: action, SkipContentTags: m.skipContentTags}), true

	case key.Matches(msg, m.keys.CancelBulk):
		if m.state.BulkInProgress {
			return dispatch(modulelist.BulkUpdateCancelled{}), true
		}
		return nil, true

	case key.Matches(msg, m.keys.SkipContentTags):
		m.skipContentTags = !m.skipContentTags
		return nil, true

	case key.Matches(msg, m.keys.AnnounceEdit):
		if hasRow && row.Kind == modulelist.RowItem {
			item := row.Item
			return func() tea.Msg { return AnnounceEditMsg{Item: item} }, true
		}
		return nil, true
	}

	return nil, false
}

func (m *Model) toggleCollapse(moduleID int64) tea.Cmd {
	collapsed := !m.collapsed.Has(moduleID)
	if collapsed {
		m.collapsed = m.collapsed.With(moduleID)
	} else {
		m.collapsed = m.collapsed.Without(moduleID)
	}

	return tea.Batch(
		m.refresh(),
		dispatch(modulelist.ModuleExpanded{ModuleID: moduleID, Expanded: !collapsed}),
	)
}

// nextPageIfAtEnd requests more modules once the last row is focused.
func (m Model) nextPageIfAtEnd() tea.Cmd {
	n := len(m.list.Items())
	if n == 0 || m.list.Index() < n-1 {
		return nil
	}
	if m.state.IsLoading || !m.state.Cursor.HasMore() {
		return nil
	}
	return dispatch(modulelist.NextPageRequested{})
}

func dispatch(ev modulelist.Event) tea.Cmd {
	return func() tea.Msg { return EventMsg{Event: ev} }
}

// View renders the module list.
func (m Model) View() string {
	return m.list.View()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}
