package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/modulesync/internal/model"
	"github.com/nhle/modulesync/internal/theme"
)

// Result is what the user entered in the login form.
type Result struct {
	Config model.AppConfig
	Token  string
}

// Model is the login form. It edits a copy of the app config plus the
// access token and quits the program when the form completes or aborts.
type Model struct {
	form *huh.Form
	cfg  model.AppConfig

	// values is shared by every copy of the model since the form writes
	// through pointers into it.
	values *formValues

	width   int
	done    bool
	aborted bool
}

type formValues struct {
	baseURL string
	token   string
	perPage string
	theme   string
}

// New creates a login form seeded from cfg.
func New(cfg model.AppConfig) Model {
	m := Model{
		cfg: cfg,
		values: &formValues{
			baseURL: cfg.Canvas.BaseURL,
			perPage: strconv.Itoa(cfg.Canvas.PerPage),
			theme:   cfg.Display.Theme,
		},
		width: 80,
	}
	if m.values.theme != "dark" && m.values.theme != "light" {
		m.values.theme = "auto"
	}
	m.form = m.buildForm()
	return m
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Canvas URL").
				Description("Your institution's Canvas address").
				Placeholder("https://canvas.example.edu").
				Value(&m.values.baseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Access Token").
				Description("Generated under Account > Settings > New Access Token").
				EchoMode(huh.EchoModePassword).
				Value(&m.values.token).
				Validate(validateRequired("Token")),
			huh.NewInput().
				Title("Modules per page").
				Value(&m.values.perPage).
				Validate(validatePerPage),
			huh.NewSelect[string]().
				Title("Theme").
				Options(
					huh.NewOption("Follow terminal", "auto"),
					huh.NewOption("Dark", "dark"),
					huh.NewOption("Light", "light"),
				).
				Value(&m.values.theme),
		),
	).WithWidth(m.formWidth())
}

func (m Model) formWidth() int {
	w := m.width - 8
	if w < 40 {
		return 40
	}
	if w > 100 {
		return 100
	}
	return w
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update forwards messages to the form and quits once it is finished.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.aborted = true
			return m, tea.Quit
		}
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.done = true
		return m, tea.Quit
	case huh.StateAborted:
		m.aborted = true
		return m, tea.Quit
	}

	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	if m.done || m.aborted {
		return ""
	}
	title := theme.HeaderStyle.Render("modulesync login")
	return lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
}

// Result returns the entered values. ok is false when the form was aborted.
func (m Model) Result() (Result, bool) {
	if !m.done {
		return Result{}, false
	}

	cfg := m.cfg
	cfg.Canvas.BaseURL = strings.TrimRight(strings.TrimSpace(m.values.baseURL), "/")
	if n, err := strconv.Atoi(strings.TrimSpace(m.values.perPage)); err == nil {
		cfg.Canvas.PerPage = n
	}
	cfg.Display.Theme = m.values.theme

	return Result{Config: cfg, Token: strings.TrimSpace(m.values.token)}, true
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., https://canvas.example.edu)")
	}
	return nil
}

func validatePerPage(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if n < 1 || n > 100 {
		return fmt.Errorf("must be between 1 and 100")
	}
	return nil
}
