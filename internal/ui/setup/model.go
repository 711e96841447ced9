// Package setup is the connection form: the service base URL and the API
// token, checked against the service before they are saved.
package setup

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notifeed/internal/credential"
	"github.com/nhle/notifeed/internal/keys"
	"github.com/nhle/notifeed/internal/model"
	"github.com/nhle/notifeed/internal/remote"
	"github.com/nhle/notifeed/internal/theme"
)

const probeTimeout = 10 * time.Second

// Mode is the current state of the setup view.
type Mode int

const (
	ModeForm    Mode = iota // Editing
	ModeProbing             // Checking the service
	ModeFailed              // Check or save failed
)

// Settings are the values the form collects.
type Settings struct {
	BaseURL string
	Token   string
}

// SaveFunc persists settings once the service has accepted them.
type SaveFunc func(Settings) error

// ProbeFunc checks that the service at s.BaseURL accepts s.Token.
type ProbeFunc func(ctx context.Context, s Settings) error

// SavedMsg is sent after settings were checked and saved.
type SavedMsg struct {
	Settings Settings
}

// DoneMsg signals the setup view closed without saving.
type DoneMsg struct{}

type resultMsg struct {
	err error
}

// Model is the Bubble Tea model for the setup form.
type Model struct {
	mode    Mode
	form    *huh.Form
	spinner spinner.Model
	err     error

	baseURL string
	token   string

	save  SaveFunc
	probe ProbeFunc

	keys          *keys.KeyMap
	width, height int
}

// New creates the setup view prefilled with baseURL.
func New(baseURL string, save SaveFunc, k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		mode:    ModeForm,
		spinner: sp,
		baseURL: baseURL,
		save:    save,
		probe:   ProbeService,
		keys:    k,
		width:   width,
		height:  height,
	}
	m.form = m.buildForm()
	return m
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the setup view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		if msg.err != nil {
			m.mode = ModeFailed
			m.err = msg.err
			return m, nil
		}
		s := m.settings()
		return m, func() tea.Msg { return SavedMsg{Settings: s} }

	case spinner.TickMsg:
		if m.mode != ModeProbing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case ModeProbing:
			return m, nil
		case ModeFailed:
			return m.handleFailedKeys(msg)
		}
	}

	return m.updateForm(msg)
}

func (m Model) handleFailedKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return DoneMsg{} }
	case key.Matches(msg, m.keys.Select):
		m.mode = ModeForm
		m.err = nil
		m.form = m.buildForm()
		return m, m.form.Init()
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.submit()
	case huh.StateAborted:
		return m, func() tea.Msg { return DoneMsg{} }
	}
	return m, cmd
}

// submit checks the settings against the service and saves them.
func (m Model) submit() (Model, tea.Cmd) {
	m.mode = ModeProbing
	s := m.settings()
	probe, save := m.probe, m.save
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()

		if err := probe(ctx, s); err != nil {
			return resultMsg{err: err}
		}
		if err := save(s); err != nil {
			return resultMsg{err: fmt.Errorf("service OK but saving failed: %w", err)}
		}
		return resultMsg{}
	})
}

func (m Model) settings() Settings {
	return Settings{
		BaseURL: strings.TrimRight(strings.TrimSpace(m.baseURL), "/"),
		Token:   strings.TrimSpace(m.token),
	}
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Service URL").
				Description("Root URL of the notifications service").
				Placeholder("http://localhost:8080").
				Value(&m.baseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("API Token").
				Description("Sent as a bearer token; stored in the system keyring").
				EchoMode(huh.EchoModePassword).
				Value(&m.token).
				Validate(validateRequired("Token")),
		),
	).WithWidth(m.formWidth()).WithShowHelp(true)
}

// View renders the setup view.
func (m Model) View() string {
	title := theme.HeaderStyle.Render("Connection Setup")

	var body string
	switch m.mode {
	case ModeProbing:
		body = m.spinner.View() + " Checking " + m.settings().BaseURL + "…"
	case ModeFailed:
		body = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Foreground(theme.ColorRed).Render(describe(m.err)),
			"",
			theme.HelpStyle.Render("enter: edit again • esc: cancel"),
		)
	default:
		body = m.form.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, "", body)
}

// SetSize updates the setup view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.form = m.form.WithWidth(m.formWidth())
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

// ProbeService lists the full roster once to prove the URL and token work.
func ProbeService(ctx context.Context, s Settings) error {
	client := remote.NewClient(s.BaseURL, credential.Static(s.Token), remote.WithTimeout(probeTimeout))
	if _, err := client.List(ctx, model.QueryTarget{Kind: model.TargetAll}); err != nil {
		return err
	}
	return nil
}

func describe(err error) string {
	var authErr *remote.AuthError
	if errors.As(err, &authErr) {
		return "The service rejected the token."
	}
	return "Could not reach the service: " + err.Error()
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
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL must start with http:// or https://")
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL must include a host (e.g., http://localhost:8080)")
	}
	return nil
}
