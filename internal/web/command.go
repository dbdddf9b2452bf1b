package web

import (
	"regexp"
	"strings"
)

// CommandType is a game action sent over the websocket
type CommandType string

const (
	CommandChoose  CommandType = "choose"
	CommandUse     CommandType = "use"
	CommandSave    CommandType = "save"
	CommandLoad    CommandType = "load"
	CommandRestart CommandType = "restart"
	CommandNone    CommandType = "none"
)

// ParsedCommand is one parsed client line, e.g. "/choose 1" or "/use potion_health_1"
type ParsedCommand struct {
	Type    CommandType
	Arg     string
	RawText string
}

// CommandParser turns websocket text frames into commands
type CommandParser struct {
	pattern *regexp.Regexp
}

func NewCommandParser() *CommandParser {
	return &CommandParser{
		pattern: regexp.MustCompile(`^/(\w+)(?:\s+(\S+))?$`),
	}
}

// Parse reads a single command; anything unrecognized is CommandNone
func (p *CommandParser) Parse(text string) ParsedCommand {
	trimmed := strings.TrimSpace(text)
	result := ParsedCommand{Type: CommandNone, RawText: trimmed}

	match := p.pattern.FindStringSubmatch(trimmed)
	if match == nil {
		return result
	}

	arg := match[2]
	switch strings.ToLower(match[1]) {
	case "choose", "choice":
		if arg != "" {
			result.Type, result.Arg = CommandChoose, arg
		}
	case "use":
		if arg != "" {
			result.Type, result.Arg = CommandUse, arg
		}
	case "save":
		result.Type = CommandSave
	case "load":
		result.Type = CommandLoad
	case "restart":
		result.Type = CommandRestart
	}
	return result
}
