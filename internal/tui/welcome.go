package tui

import (
	"fmt"
	"strings"

	"codeberg.org/boomline/server/internal/content"
	tea "github.com/charmbracelet/bubbletea"
)

// returns a new welcome screen with the cursor on the initial content type
func NewWelcome(initial string) *Welcome {
	entries := content.Catalogue()
	tags := make([]string, 0, len(entries))

	w := &Welcome{}

	for i, e := range entries {
		tags = append(tags, e.Tag)

		if strings.EqualFold(e.Tag, initial) {
			w.cursor = i
		}
	}

	w.tags = tags

	return w
}

func (m *Welcome) Update(msg tea.Msg) (*Welcome, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.tags)-1 {
			m.cursor++
		}
	case "enter":
		tag := m.tags[m.cursor]
		return m, func() tea.Msg { return SelectTypeMsg{tag: tag} }
	case "q":
		return m, tea.Quit
	}

	return m, nil
}

func (m *Welcome) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(logo))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("social posts from a single prompt"))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("pick a content type:"))
	b.WriteString("\n\n")

	for i, tag := range m.tags {
		family := familyStyle.Render(fmt.Sprintf("(%s)", content.Lookup(tag).Family()))

		if i == m.cursor {
			b.WriteString(menuItemSelectedStyle.Render("> "+tag) + family)
		} else {
			b.WriteString(menuItemStyle.Render("  "+tag) + family)
		}

		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("↑/↓ to move, enter to select, q or ctrl+c to quit."))

	return b.String()
}
