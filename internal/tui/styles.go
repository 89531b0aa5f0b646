package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorWhite     = lipgloss.Color("#FFFFFF")
	colorLightGray = lipgloss.Color("#CCCCCC")
	colorGray      = lipgloss.Color("#888888")
	colorDarkGray  = lipgloss.Color("#444444")
	colorPink      = lipgloss.Color("#E1306C")
	colorYellow    = lipgloss.Color("#FFD166")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPink).
			Align(lipgloss.Center).
			MarginTop(1).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorLightGray).
			Align(lipgloss.Center).
			MarginBottom(2)

	menuItemStyle = lipgloss.NewStyle().
			Foreground(colorLightGray).
			PaddingLeft(2)

	menuItemSelectedStyle = lipgloss.NewStyle().
				Foreground(colorWhite).
				Bold(true).
				PaddingLeft(2)

	familyStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			PaddingLeft(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Italic(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDarkGray).
			Italic(true).
			MarginTop(1)
)

const logo = `
  ██████╗  ██████╗  ██████╗ ███╗   ███╗██╗     ██╗███╗   ██╗███████╗
  ██╔══██╗██╔═══██╗██╔═══██╗████╗ ████║██║     ██║████╗  ██║██╔════╝
  ██████╔╝██║   ██║██║   ██║██╔████╔██║██║     ██║██╔██╗ ██║█████╗
  ██╔══██╗██║   ██║██║   ██║██║╚██╔╝██║██║     ██║██║╚██╗██║██╔══╝
  ██████╔╝╚██████╔╝╚██████╔╝██║ ╚═╝ ██║███████╗██║██║ ╚████║███████╗
  ╚═════╝  ╚═════╝  ╚═════╝ ╚═╝     ╚═╝╚══════╝╚═╝╚═╝  ╚═══╝╚══════╝
`
