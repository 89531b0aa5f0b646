package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
)

// represents the current state of the TUI
type AppState int

const (
	StateWelcome AppState = iota
	StateEditor
)

// main TUI application model
type Model struct {
	state   AppState
	width   int
	height  int
	err     error
	session *Session
	welcome *Welcome
	editor  *EditorModel
}

// sent when an error occurs that the app cannot recover from
type ErrorMsg struct {
	err error
}

// sent when a content type was picked on the welcome screen
type SelectTypeMsg struct {
	tag string
}

// prompt and result editor
type EditorModel struct {
	session            *Session
	input              textinput.Model
	viewport           viewport.Model
	spinner            spinner.Model
	glamourRenderer    *glamour.TermRenderer
	width              int
	height             int
	output             string
	status             string
	isFetching         bool
	ready              bool
	shouldScrollBottom bool
}

// sent when a generation completes
type GeneratedMsg struct {
	prompt  string
	outcome *Outcome
}

// sent when a translation completes
type TranslatedMsg struct {
	resp *TranslateResponse
}

// markdown produced by a local command
type InfoMsg struct {
	markdown string
}

// sent when a request or command fails
type FailedMsg struct {
	err error
}

// content type picker
type Welcome struct {
	tags   []string
	cursor int
}
