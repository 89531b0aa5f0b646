package tui

import "strings"

// represents an available slash command
type Command struct {
	Name        string
	Usage       string
	Description string
}

var commands = []Command{
	{Name: "help", Usage: "/help", Description: "show this list"},
	{Name: "type", Usage: "/type <content type>", Description: "switch content type"},
	{Name: "types", Usage: "/types", Description: "list content types"},
	{Name: "translate", Usage: "/translate <language>", Description: "translate the last result"},
	{Name: "share", Usage: "/share [platform]", Description: "share links for the last result"},
	{Name: "history", Usage: "/history", Description: "show local history"},
	{Name: "usage", Usage: "/usage", Description: "show today's remaining generations"},
	{Name: "clear", Usage: "/clear", Description: "clear local history"},
	{Name: "export", Usage: "/export <file.pdf>", Description: "export local history as PDF"},
	{Name: "quit", Usage: "/quit", Description: "exit boomline"},
}

// splits "/name rest of line"; anything without a leading slash is a prompt
func parseInput(line string) (name, arg string, isCommand bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return "", line, false
	}

	name, arg, _ = strings.Cut(strings.TrimPrefix(line, "/"), " ")

	return strings.ToLower(name), strings.TrimSpace(arg), true
}

func lookupCommand(name string) (Command, bool) {
	for _, c := range commands {
		if c.Name == name {
			return c, true
		}
	}

	return Command{}, false
}
