package models

import "strings"

// CommandType enumerates supported chat command categories.
type CommandType string

const (
	CommandSale    CommandType = "sale"
	CommandExpense CommandType = "expense"
	CommandToday   CommandType = "today"
	CommandReport  CommandType = "report"
	CommandHelp    CommandType = "help"
	CommandUnknown CommandType = "unknown"
)

// Command represents a parsed shop instruction extracted from a chat message.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command instance from free-form text messages.
// The command word is case-insensitive; arguments keep their original case.
func ParseCommand(message string) Command {
	tokens := strings.Fields(strings.TrimSpace(message))
	cmd := Command{Raw: message}

	if len(tokens) == 0 {
		cmd.Type = CommandUnknown
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	switch head {
	case string(CommandSale), "sales", "sold":
		cmd.Type = CommandSale
	case string(CommandExpense), "expenses", "spent":
		cmd.Type = CommandExpense
	case string(CommandToday), "summary":
		cmd.Type = CommandToday
	case string(CommandReport), "reports":
		cmd.Type = CommandReport
	case string(CommandHelp), "start":
		cmd.Type = CommandHelp
	default:
		cmd.Type = CommandUnknown
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
