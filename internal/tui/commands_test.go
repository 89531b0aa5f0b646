package tui

import (
	"testing"
	"time"

	"codeberg.org/boomline/server/internal/ledger"
	"codeberg.org/boomline/server/internal/result"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestParseInput(t *testing.T) {
	name, arg, ok := parseInput("  /Translate  Brazilian Portuguese ")
	assert.True(t, ok)
	assert.Equal(t, "translate", name)
	assert.Equal(t, "Brazilian Portuguese", arg)

	name, arg, ok = parseInput("/usage")
	assert.True(t, ok)
	assert.Equal(t, "usage", name)
	assert.Empty(t, arg)

	_, arg, ok = parseInput("summer sale on sneakers")
	assert.False(t, ok)
	assert.Equal(t, "summer sale on sneakers", arg)
}

func TestLookupCommand(t *testing.T) {
	_, ok := lookupCommand("export")
	assert.True(t, ok)

	_, ok = lookupCommand("dance")
	assert.False(t, ok)
}

func TestFormatters(t *testing.T) {
	assert.Contains(t, formatUsage(ledger.Quota{Allowed: true, Remaining: 3, Limit: 5}, ""), "3 of 5")
	assert.Contains(t, formatUsage(ledger.Quota{Allowed: false, Remaining: 0, Limit: 5}, "https://up"), "https://up")
	assert.Contains(t, formatUsage(ledger.Quota{Allowed: true, Remaining: -1, Count: 9}, ""), "no daily limit")

	assert.Equal(t, "_no history yet_", formatHistory(nil))
	assert.Contains(t, formatHistory([]ledger.Entry{{ContentType: "Tweet", Result: result.Text("hi"), CreatedAt: time.Now()}}), "**Tweet**")

	assert.Contains(t, formatOutcome(&Outcome{Result: result.Image("https://img/x.png")}), "![generated image](https://img/x.png)")
	assert.Contains(t, formatOutcome(&Outcome{Result: result.Text("t"), Warning: "not saved"}), "not saved")

	assert.Contains(t, formatTypes("Twitter Post"), "Twitter Post _(text)_ ← current")
	assert.Contains(t, formatHelp(), "/translate <language>")
}

func TestModel_PickTypeThenQuitFromEditorGoesBack(t *testing.T) {
	s := newSession(t, &fakeAPI{}, 5)
	m := newModel(s)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Nil(t, cmd)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if assert.NotNil(t, cmd) {
		msg := cmd()
		assert.Equal(t, SelectTypeMsg{tag: "Product Description"}, msg)

		m.Update(msg)
	}

	assert.Equal(t, StateEditor, m.state)
	assert.Equal(t, "Product Description", s.ContentType())

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Equal(t, StateWelcome, m.state)
}
