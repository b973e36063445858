package voice

import "strings"

// Command is the navigation interpreter's verdict for one transcript.
type Command int

const (
	CommandUnrecognized Command = iota
	CommandShowProducts
	CommandDeals
	CommandHelp
	CommandHome
	CommandContact
)

// Phrase tables for the navigation interpreter. Matching is substring
// containment over the lower-cased transcript, checked in declaration
// order; the first table with a hit wins.
var (
	showProductsPhrases = []string{
		"products",
		"show products",
		"show me the products",
		"show me products",
		"take me to products",
		"go to products",
		"browse products",
		"view products",
		"see products",
		"display products",
		"open products",
		"navigate me to products",
		"navigate to products",
		"take me to the products",
		"go to the products",
		"show me all products",
		"display all products",
		"let me see the products",
		"i want to see products",
		"i want to browse products",
	}
	dealsPhrases = []string{
		"deals",
		"best deals",
		"show deals",
		"today deals",
		"special offers",
	}
	helpPhrases = []string{
		"help",
		"what can you do",
		"your capabilities",
		"how can you help",
	}
	homePhrases = []string{
		"home",
		"go home",
		"back to home",
	}
	contactPhrases = []string{
		"contact",
		"support",
		"help me",
	}
)

// Interpret maps a transcript onto a navigation command.
func Interpret(transcript string) Command {
	lowered := strings.ToLower(transcript)
	switch {
	case containsAny(lowered, showProductsPhrases):
		return CommandShowProducts
	case containsAny(lowered, dealsPhrases):
		return CommandDeals
	case containsAny(lowered, helpPhrases):
		return CommandHelp
	case containsAny(lowered, homePhrases):
		return CommandHome
	case containsAny(lowered, contactPhrases):
		return CommandContact
	default:
		return CommandUnrecognized
	}
}

func containsAny(transcript string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(transcript, phrase) {
			return true
		}
	}
	return false
}
