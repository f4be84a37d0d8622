package session

import (
	"strings"
	"unicode"
)

// CommandKind classifies one line of player input.
type CommandKind int

const (
	CommandNone CommandKind = iota // empty input
	CommandMessage
	CommandApproach
	CommandEnd
)

func (k CommandKind) String() string {
	switch k {
	case CommandMessage:
		return "message"
	case CommandApproach:
		return "approach"
	case CommandEnd:
		return "end"
	default:
		return "none"
	}
}

// Command is parsed player input. Target is set for approach, Text for
// message (the raw input, untrimmed).
type Command struct {
	Kind   CommandKind
	Target string
	Text   string
}

const (
	approachWord  = "approach"
	approachShort = "靠近"
)

var endPhrases = map[string]struct{}{
	"exit":             {},
	"end conversation": {},
	"结束对话":             {},
}

// ParseCommand classifies input. Commands are matched case-insensitively
// on the trimmed input; anything else is a message.
func ParseCommand(input string) Command {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Command{Kind: CommandNone}
	}

	normalized := strings.ToLower(strings.Join(strings.Fields(trimmed), " "))
	if _, ok := endPhrases[normalized]; ok {
		return Command{Kind: CommandEnd}
	}

	head, rest := trimmed, ""
	if idx := strings.IndexFunc(trimmed, unicode.IsSpace); idx >= 0 {
		head, rest = trimmed[:idx], trimmed[idx:]
	}
	if strings.EqualFold(head, approachWord) {
		return Command{Kind: CommandApproach, Target: strings.TrimSpace(rest)}
	}
	if strings.HasPrefix(trimmed, approachShort) {
		return Command{Kind: CommandApproach, Target: strings.TrimSpace(strings.TrimPrefix(trimmed, approachShort))}
	}

	return Command{Kind: CommandMessage, Text: input}
}
