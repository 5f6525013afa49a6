package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/modulesync/internal/editsource"
	"github.com/nhle/modulesync/internal/keys"
	"github.com/nhle/modulesync/internal/model"
	"github.com/nhle/modulesync/internal/modulelist"
	"github.com/nhle/modulesync/internal/store"
	appsync "github.com/nhle/modulesync/internal/sync"
	"github.com/nhle/modulesync/internal/ui"
	"github.com/nhle/modulesync/internal/ui/detail"
	helpview "github.com/nhle/modulesync/internal/ui/help"
	"github.com/nhle/modulesync/internal/ui/moduleview"
)

// collapsedLoadedMsg carries the persisted collapse state. When scrollTo
// is set the list scrolls to that item once the state is applied.
type collapsedLoadedMsg struct {
	ids      model.IDSet
	scrollTo int64
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewHelp
)

// Options configures the root model.
type Options struct {
	Course      model.Course
	Controller  *appsync.Controller
	Bus         *editsource.Bus
	Store       store.CollapseStore
	BaseURL     string
	IndentWidth int
	Logger      *zap.SugaredLogger
}

// Model is the root Bubble Tea model that routes between views and
// bridges the controller's outputs into messages.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap

	course     model.Course
	controller *appsync.Controller
	bus        *editsource.Bus
	store      store.CollapseStore
	log        *zap.SugaredLogger

	list     moduleview.Model
	detail   detail.Model
	helpView helpview.Model

	// pendingScroll is an item to select once its row is displayed.
	pendingScroll int64

	message string
	ready   bool
}

// New creates the root model. The controller must already be started.
func New(opts Options) Model {
	k := keys.DefaultKeyMap()
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return Model{
		currentView: ViewList,
		keys:        k,
		course:      opts.Course,
		controller:  opts.Controller,
		bus:         opts.Bus,
		store:       opts.Store,
		log:         log,
		list:        moduleview.New(k, opts.IndentWidth, 80, 24),
		detail:      detail.New(k, opts.BaseURL, 80, 24),
		helpView:    helpview.New(k, 80, 24),
	}
}

// Init loads the collapse state and starts listening to the controller.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadCollapsed(0),
		m.controller.WaitForState(),
		m.controller.WaitForSignal(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.list.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.helpView.SetSize(w, h)
		return m, nil

	case appsync.StateMsg:
		cmd := m.list.SetState(msg.Model)
		m.tryScroll()
		return m, tea.Batch(cmd, m.controller.WaitForState())

	case appsync.SignalMsg:
		cmd := m.handleSignal(msg.Effect)
		return m, tea.Batch(cmd, m.controller.WaitForSignal())

	case collapsedLoadedMsg:
		cmd := m.list.SetCollapsed(msg.ids)
		if msg.scrollTo != 0 {
			m.pendingScroll = msg.scrollTo
		}
		m.tryScroll()
		return m, cmd

	case moduleview.EventMsg:
		if !m.controller.Dispatch(msg.Event) {
			m.log.Warnw("event dropped, controller stopped", "event", fmt.Sprintf("%T", msg.Event))
		}
		return m, nil

	case moduleview.AnnounceEditMsg:
		m.announceEdit(msg.Item)
		return m, nil

	case detail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case tea.KeyMsg:
		m.message = ""

		switch {
		case msg.String() == "ctrl+c":
			return m, tea.Quit

		case key.Matches(msg, m.keys.Quit) && m.currentView == ViewList:
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case key.Matches(msg, m.keys.Back) && m.currentView == ViewHelp:
			m.currentView = m.previousView
			return m, nil
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

func (m *Model) handleSignal(eff modulelist.Effect) tea.Cmd {
	switch e := eff.(type) {
	case modulelist.ScrollToItem:
		// The search may have expanded the target's module in the store.
		return m.loadCollapsed(e.ItemID)
	case modulelist.ShowModuleItemDetail:
		m.detail.SetItem(e.Course, e.Item)
		m.previousView = m.currentView
		m.currentView = ViewDetail
	case modulelist.ShowMessage:
		m.message = e.Message.Text()
	}
	return nil
}

// tryScroll selects the pending scroll target if its row is displayed. The
// scroll signal and the snapshot holding the target arrive independently.
func (m *Model) tryScroll() {
	if m.pendingScroll != 0 && m.list.ScrollTo(m.pendingScroll) {
		m.pendingScroll = 0
	}
}

func (m *Model) announceEdit(item model.ModuleItem) {
	if m.bus == nil {
		return
	}
	ct, ok := model.ContentTypeOf(item.Type)
	if !ok {
		m.message = "This item has no content to refresh"
		return
	}
	if ct == model.ContentPage {
		m.bus.PublishPageUpdated(item.PageURL)
		return
	}
	m.bus.PublishUpdated(ct, item.ContentID)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.list, cmd = m.list.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(m.course.Name, m.syncStatus())
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, m.renderContent(), m.layout.RenderMessage(m.message), statusBar)
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewDetail:
		return m.detail.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return m.list.View()
	}
}

// syncStatus returns a short string describing the controller state.
func (m Model) syncStatus() string {
	state := m.list.State()
	switch {
	case state.BulkInProgress:
		return fmt.Sprintf("%sing… (%d left, x to cancel)", state.Bulk.Action, len(state.Bulk.Pending))
	case state.IsLoading:
		return "loading"
	case state.LoadErr != nil:
		return "⚠ " + string(state.LoadErr.Kind)
	default:
		return fmt.Sprintf("%d modules", len(state.Modules))
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewDetail:
		return "esc back | j/k scroll"
	default:
		hints := "q quit | ? help | space expand | r refresh | p publish | P/U module"
		if m.list.SkipContentTags() {
			hints += " | modules only"
		}
		return hints
	}
}

// loadCollapsed returns a command that reads the persisted collapse state.
func (m Model) loadCollapsed(scrollTo int64) tea.Cmd {
	s := m.store
	course := m.course
	log := m.log
	return func() tea.Msg {
		ids, err := s.GetCollapsedIDs(context.Background(), course)
		if err != nil {
			log.Warnw("loading collapse state failed", "error", err)
		}
		return collapsedLoadedMsg{ids: ids, scrollTo: scrollTo}
	}
}
