package tui

import (
	"fmt"

	"codeberg.org/boomline/server/internal/config"
	"codeberg.org/boomline/server/internal/ledger"
	tea "github.com/charmbracelet/bubbletea"
)

// builds the app with a file-backed local ledger and a client for the server
func NewApp(flags config.Flags) (*Model, error) {
	store, err := ledger.NewFileStore(flags.LedgerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local ledger: %w", err)
	}

	l := ledger.New(store, ledger.Options{DailyQuota: flags.Quota, UpgradeURL: config.DefaultUpgradeURL})
	session := NewSession(NewClient(flags.Endpoint, flags.ClientID), l, flags.ContentType, flags.Language)

	return newModel(session), nil
}

func newModel(session *Session) *Model {
	return &Model{
		state:   StateWelcome,
		session: session,
		welcome: NewWelcome(session.ContentType()),
		editor:  NewEditor(session),
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// only quit from welcome screen, not from editor
		if msg.String() == "ctrl+c" && m.state == StateWelcome {
			return m, tea.Quit
		}

		// in editor, ctrl+c goes back to the picker
		if msg.String() == "ctrl+c" && m.state == StateEditor {
			m.state = StateWelcome
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor, _ = m.editor.Update(msg)

		return m, nil

	case ErrorMsg:
		m.err = msg.err
		return m, nil

	case SelectTypeMsg:
		if err := m.session.SetContentType(msg.tag); err != nil {
			m.err = err
			return m, nil
		}

		m.state = StateEditor

		return m, m.editor.Init()
	}

	switch m.state {
	case StateWelcome:
		return m.updateWelcome(msg)

	case StateEditor:
		return m.updateEditor(msg)

	default:
		return m, nil
	}
}

func (m *Model) View() string {
	if m.err != nil {
		return errorView(m.err)
	}

	switch m.state {
	case StateWelcome:
		return m.welcome.View()

	case StateEditor:
		return m.editor.View()

	default:
		return "Unknown state"
	}
}

func (m *Model) updateWelcome(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.welcome, cmd = m.welcome.Update(msg)

	return m, cmd
}

func (m *Model) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)

	return m, cmd
}

func errorView(err error) string {
	return fmt.Sprintf("\n  Error: %v\n\n  Press Ctrl+C to exit\n", err)
}
