package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/notifeed/internal/credential"
	"github.com/nhle/notifeed/internal/feed"
	"github.com/nhle/notifeed/internal/keys"
	"github.com/nhle/notifeed/internal/model"
	"github.com/nhle/notifeed/internal/remote"
	"github.com/nhle/notifeed/internal/ui"
	"github.com/nhle/notifeed/internal/ui/command"
	"github.com/nhle/notifeed/internal/ui/detail"
	"github.com/nhle/notifeed/internal/ui/feedlist"
	helpview "github.com/nhle/notifeed/internal/ui/help"
	"github.com/nhle/notifeed/internal/ui/setup"
)

// noticeTTL is how long a notice stays in the status bar.
var noticeTTL = 4 * time.Second

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewFeed ViewState = iota
	ViewDetail
	ViewHelp
	ViewCommand
	ViewSetup
)

// clearNoticeMsg expires the notice with the given sequence number.
type clearNoticeMsg struct {
	seq int
}

// Deps are the collaborators the application is built from.
type Deps struct {
	Config     *model.AppConfig
	ConfigPath string

	// Creds persists the token entered in the setup form. It may be nil
	// when no keyring backend is available.
	Creds *credential.Store

	Auth   credential.Authenticator
	Logger *zap.Logger
}

// Model is the root Bubble Tea model. It routes messages between the feed
// page and the secondary views and draws the frame around them.
type Model struct {
	deps         Deps
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap

	feedList    feedlist.Model
	detail      detail.Model
	helpView    helpview.Model
	commandView command.Model
	setupView   setup.Model

	notice        feed.Notice
	noticeSeq     int
	setupPrompted bool
	ready         bool
}

// New creates the root model. The first fetch starts in Init.
func New(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	k := keys.DefaultKeyMap()

	m := Model{
		deps:        deps,
		currentView: ViewFeed,
		layout:      ui.NewLayout(80, 24),
		keys:        k,
		detail:      detail.New(k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
	}
	m.feedList = m.newFeedList(deps.Config.Server.BaseURL)
	m.setupView = setup.New(deps.Config.Server.BaseURL, m.saveSettings, k, 80, 24)
	return m
}

// newFeedList builds a controller against baseURL and a page over it.
func (m Model) newFeedList(baseURL string) feedlist.Model {
	srv := m.deps.Config.Server
	client := remote.NewClient(baseURL, m.deps.Auth,
		remote.WithTimeout(srv.Timeout()),
		remote.WithMaxRetries(srv.MaxRetries),
		remote.WithLogger(m.deps.Logger),
	)
	ctrl := feed.New(client, feed.WithLogger(m.deps.Logger))
	return feedlist.New(ctrl, m.keys, srv.Timeout(), m.layout.Width, m.layout.ContentHeight())
}

// saveSettings writes the base URL to the config file and the token to
// the keyring.
func (m Model) saveSettings(s setup.Settings) error {
	if m.deps.Creds == nil {
		return errors.New("no keyring available to store the token")
	}
	if err := m.deps.Creds.Set(credential.TokenKey, s.Token); err != nil {
		return err
	}

	cfg := *m.deps.Config
	cfg.Server.BaseURL = s.BaseURL
	return model.SaveConfig(m.deps.ConfigPath, &cfg)
}

// Init starts the first fetch.
func (m Model) Init() tea.Cmd {
	return m.feedList.Init()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.Width, m.layout.ContentHeight()
		m.feedList.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.setupView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case feedlist.FetchedMsg:
		var cmd tea.Cmd
		m.feedList, cmd = m.feedList.Update(msg)
		m.detail.Sync(m.feedList.Snapshot().Roster)
		if errors.Is(msg.Err, credential.ErrNoCredential) && !m.setupPrompted {
			m.setupPrompted = true
			return m.openSetup()
		}
		return m, cmd

	case feedlist.NoticeMsg:
		var cmd tea.Cmd
		m.feedList, cmd = m.feedList.Update(msg)
		m.detail.Sync(m.feedList.Snapshot().Roster)
		return m, tea.Batch(cmd, m.showNotice(msg.Notice))

	case spinner.TickMsg:
		var cmd, setupCmd tea.Cmd
		m.feedList, cmd = m.feedList.Update(msg)
		m.setupView, setupCmd = m.setupView.Update(msg)
		return m, tea.Batch(cmd, setupCmd)

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = feed.Notice{}
		}
		return m, nil

	case feedlist.SelectedMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detail.SetNotification(msg.Notification)
		return m, nil

	case detail.MarkReadMsg:
		return m, m.feedList.MarkRead(msg.ID)

	case detail.BackMsg:
		m.currentView = ViewFeed
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m.executeCommand(string(msg))

	case setup.SavedMsg:
		m.deps.Config.Server.BaseURL = msg.Settings.BaseURL
		m.feedList = m.newFeedList(msg.Settings.BaseURL)
		m.currentView = ViewFeed
		return m, tea.Batch(
			m.feedList.Init(),
			m.showNotice(feed.Notice{Kind: feed.NoticeSuccess, Text: "Connection saved"}),
		)

	case setup.DoneMsg:
		m.currentView = ViewFeed
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// Text inputs own every other key while they are open.
		switch m.currentView {
		case ViewSetup:
			return m.updateActiveView(msg)
		case ViewCommand:
			if msg.String() == "esc" {
				m.currentView = m.previousView
				return m, nil
			}
			return m.updateActiveView(msg)
		}

		switch msg.String() {
		case "q":
			if m.currentView == ViewFeed {
				return m, tea.Quit
			}

		case "?":
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case ":":
			m.previousView = m.currentView
			m.currentView = ViewCommand
			return m, m.commandView.Focus()

		case "esc":
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
		}
	}

	return m.updateActiveView(msg)
}

func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewFeed:
		m.feedList, cmd = m.feedList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewSetup:
		m.setupView, cmd = m.setupView.Update(msg)
	}

	return m, cmd
}

func (m Model) openSetup() (tea.Model, tea.Cmd) {
	m.previousView = ViewFeed
	m.currentView = ViewSetup
	m.setupView = setup.New(m.deps.Config.Server.BaseURL, m.saveSettings, m.keys, m.layout.Width, m.layout.ContentHeight())
	return m, m.setupView.Init()
}

// showNotice puts n in the status bar and schedules its removal.
func (m *Model) showNotice(n feed.Notice) tea.Cmd {
	if n.IsZero() {
		return nil
	}
	m.noticeSeq++
	m.notice = n
	seq := m.noticeSeq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}

// executeCommand runs a command palette entry.
func (m Model) executeCommand(line string) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	f := m.feedList.Snapshot().Filter

	name, arg, _ := strings.Cut(line, " ")
	switch name {
	case "refresh":
		m.feedList, cmd = m.feedList.Refresh()
	case "read-all":
		cmd = m.feedList.MarkAllRead()
	case "generate":
		m.feedList, cmd = m.feedList.StartGenerate()
	case "unread":
		f.UnreadOnly = true
		m.feedList, cmd = m.feedList.ApplyFilter(f)
	case "all":
		m.feedList, cmd = m.feedList.ApplyFilter(model.Filter{})
	case "type":
		f.Type = model.Type(arg)
		if arg == "all" {
			f.Type = ""
		}
		if err := f.Validate(); err != nil {
			cmd = m.showNotice(feed.Notice{Kind: feed.NoticeError, Text: fmt.Sprintf("Unknown type %q", arg)})
			return m, cmd
		}
		m.feedList, cmd = m.feedList.ApplyFilter(f)
	case "setup":
		return m.openSetup()
	case "quit":
		return m, tea.Quit
	default:
		cmd = m.showNotice(feed.Notice{Kind: feed.NoticeError, Text: fmt.Sprintf("Unknown command %q", line)})
	}
	return m, cmd
}

// View renders the frame and the active view.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("notifeed", m.feedList.Snapshot().UnreadCount())
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.notice.Text, m.notice.Kind == feed.NoticeError)
	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewDetail:
		return m.detail.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewSetup:
		return m.setupView.View()
	default:
		return m.feedList.View()
	}
}

func (m Model) keyHints() string {
	switch m.currentView {
	case ViewDetail:
		return "esc: back • m: mark read • ?: help"
	case ViewHelp:
		return "?/esc: close help"
	case ViewCommand:
		return "enter: run • esc: close"
	case ViewSetup:
		return "enter: next • esc: cancel"
	default:
		return "m: read • M: read all • tab: type • u: unread • g: generate • r: refresh • :: command • ?: help • q: quit"
	}
}
