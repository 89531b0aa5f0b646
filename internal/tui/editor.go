package tui

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/boomline/server/internal/logger"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// rows taken by the header, input box and status line
const chromeHeight = 8

// returns a new prompt editor
func NewEditor(session *Session) *EditorModel {
	ti := textinput.New()
	ti.Placeholder = "describe your post, or /help..."
	ti.Focus()
	ti.CharLimit = 0
	ti.Width = 80
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(colorLightGray)
	ti.TextStyle = lipgloss.NewStyle().Foreground(colorWhite)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPink)

	return &EditorModel{
		session: session,
		input:   ti,
		spinner: sp,
		output:  "_ready! type a prompt below and press enter._",
	}
}

func (m *EditorModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m *EditorModel) Update(msg tea.Msg) (*EditorModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if m.isFetching {
				return m, nil
			}

			line := m.input.Value()
			if strings.TrimSpace(line) == "" {
				return m, nil
			}

			m.input.SetValue("")

			return m, m.submit(line)

		case "ctrl+l":
			m.input.SetValue("")
			m.setOutput("")
			m.status = ""

			return m, nil

		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)

			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case GeneratedMsg:
		m.isFetching = false
		m.status = m.quotaStatus(msg.outcome)
		m.setOutput(formatOutcome(msg.outcome))

		return m, nil

	case TranslatedMsg:
		m.isFetching = false
		m.setOutput(formatTranslation(msg.resp))

		return m, nil

	case InfoMsg:
		m.isFetching = false
		m.setOutput(msg.markdown)

		return m, nil

	case FailedMsg:
		m.isFetching = false
		m.setOutput(formatError(msg.err, m.session.UpgradeURL()))

		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

// runs a slash command or sends the line as a prompt
func (m *EditorModel) submit(line string) tea.Cmd {
	name, arg, isCommand := parseInput(line)
	if !isCommand {
		m.isFetching = true
		return generateCmd(m.session, arg)
	}

	if _, ok := lookupCommand(name); !ok {
		return info(fmt.Sprintf("unknown command `/%s`, try `/help`", name))
	}

	switch name {
	case "quit":
		return tea.Quit

	case "help":
		return info(formatHelp())

	case "types":
		return info(formatTypes(m.session.ContentType()))

	case "type":
		if err := m.session.SetContentType(arg); err != nil {
			return failed(err)
		}

		return info(fmt.Sprintf("content type set to **%s**", m.session.ContentType()))

	case "translate":
		m.isFetching = true
		return translateCmd(m.session, arg)

	case "share":
		links, err := m.session.Share(arg)
		if err != nil {
			return failed(err)
		}

		return info(formatShare(links))

	case "history":
		return withSession(func(ctx context.Context) (string, error) {
			entries, err := m.session.History(ctx)
			return formatHistory(entries), err
		})

	case "usage":
		return withSession(func(ctx context.Context) (string, error) {
			q, err := m.session.Usage(ctx)
			return formatUsage(q, m.session.UpgradeURL()), err
		})

	case "clear":
		return withSession(func(ctx context.Context) (string, error) {
			n, err := m.session.Clear(ctx)
			return fmt.Sprintf("cleared %d entries, today's usage is kept", n), err
		})

	case "export":
		return exportCmd(m.session, arg)
	}

	return nil
}

func (m *EditorModel) quotaStatus(o *Outcome) string {
	if o.Quota.Remaining < 0 {
		return ""
	}

	return fmt.Sprintf("%d left today", o.Quota.Remaining)
}

func (m *EditorModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(10, width-10)

	vpHeight := max(3, height-chromeHeight)

	if !m.ready {
		m.viewport = viewport.New(width-4, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width - 4
		m.viewport.Height = vpHeight
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(20, width-8)),
	)
	if err != nil {
		logger.WarnErr(err, "failed to create markdown renderer")
	} else {
		m.glamourRenderer = renderer
	}

	m.setOutput(m.output)
}

func (m *EditorModel) setOutput(markdown string) {
	m.output = markdown

	if !m.ready {
		return
	}

	rendered := markdown
	if m.glamourRenderer != nil {
		if out, err := m.glamourRenderer.Render(markdown); err == nil {
			rendered = out
		}
	}

	m.viewport.SetContent(rendered)
	m.viewport.GotoTop()
}

func (m *EditorModel) View() string {
	var b strings.Builder

	header := headerStyle.Render("BOOMLINE · " + m.session.ContentType())
	help := infoStyle.Render("[Enter: Send] [/help] [Ctrl+L: Clear] [Ctrl+C: Back]")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Left,
		header,
		strings.Repeat(" ", max(1, m.width-lipgloss.Width(header)-lipgloss.Width(help))),
		help,
	))
	b.WriteString("\n\n")

	if m.ready {
		b.WriteString(m.viewport.View())
	} else {
		b.WriteString(m.output)
	}

	b.WriteString("\n")
	b.WriteString(borderStyle.Width(max(10, m.width-4)).Render(m.input.View()))
	b.WriteString("\n")

	switch {
	case m.isFetching:
		b.WriteString(m.spinner.View() + infoStyle.Render(" working..."))
	case m.status != "":
		b.WriteString(warningStyle.Render(m.status))
	}

	return b.String()
}

func info(markdown string) tea.Cmd {
	return func() tea.Msg { return InfoMsg{markdown: markdown} }
}

func failed(err error) tea.Cmd {
	return func() tea.Msg { return FailedMsg{err: err} }
}

// runs a local ledger operation off the update loop
func withSession(fn func(ctx context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		markdown, err := fn(ctx)
		if err != nil {
			return FailedMsg{err: err}
		}

		return InfoMsg{markdown: markdown}
	}
}

func generateCmd(session *Session, prompt string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		outcome, err := session.Generate(ctx, prompt)
		if err != nil {
			return FailedMsg{err: err}
		}

		return GeneratedMsg{prompt: prompt, outcome: outcome}
	}
}

func translateCmd(session *Session, language string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		resp, err := session.Translate(ctx, language)
		if err != nil {
			return FailedMsg{err: err}
		}

		return TranslatedMsg{resp: resp}
	}
}

func exportCmd(session *Session, path string) tea.Cmd {
	if path == "" {
		path = "boomline-history.pdf"
	}

	return withSession(func(ctx context.Context) (string, error) {
		var buf bytes.Buffer
		if err := session.Export(ctx, &buf); err != nil {
			return "", err
		}

		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return "", fmt.Errorf("failed to create export folder: %w", err)
			}
		}

		if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
			return "", fmt.Errorf("failed to write export: %w", err)
		}

		return fmt.Sprintf("history exported to `%s`", path), nil
	})
}
