package main

import (
	"fmt"
	"os"

	"codeberg.org/boomline/server/internal/config"
	"codeberg.org/boomline/server/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	flags := config.ParseClientFlags()

	app, err := tui.NewApp(flags)
	if err != nil {
		fmt.Printf("error starting boomline: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		fmt.Printf("error running boomline: %v\n", err)
		os.Exit(1)
	}
}
