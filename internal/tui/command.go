package tui

import "strings"

// Command is a parsed command-bar input.
type Command struct {
	Name string
	Args string
}

// ParseCommand splits a command-bar input (leading ':' already stripped)
// into a lowercase name and its argument remainder.
func ParseCommand(input string) Command {
	name, args, _ := strings.Cut(strings.TrimSpace(input), " ")
	return Command{
		Name: strings.ToLower(name),
		Args: strings.TrimSpace(args),
	}
}
