package llm

import "strings"

// Kind classifies a remote failure by cause. It is used only to select
// fallback text and labels, never surfaced as a structured API code.
type Kind string

const (
	KindQuota   Kind = "quota"
	KindAuth    Kind = "auth"
	KindNetwork Kind = "network"
	KindGeneral Kind = "general"
)

// classifyRule is one entry of the ordered classification table. The first
// rule whose phrase appears in the error text wins.
type classifyRule struct {
	phrases []string
	kind    Kind
}

var classifyRules = []classifyRule{
	{phrases: []string{"quota", "429"}, kind: KindQuota},
	{phrases: []string{"api key", "authentication"}, kind: KindAuth},
	{phrases: []string{"network", "connection", "timeout"}, kind: KindNetwork},
}

// Classify maps a remote error message to a failure kind using
// case-insensitive substring matching in priority order.
func Classify(errMessage string) Kind {
	msg := strings.ToLower(errMessage)
	for _, rule := range classifyRules {
		for _, phrase := range rule.phrases {
			if strings.Contains(msg, phrase) {
				return rule.kind
			}
		}
	}
	return KindGeneral
}

var fallbackMessages = map[Kind]string{
	KindQuota:   "I've reached my daily conversation limit. Please try again tomorrow, or consider upgrading for unlimited conversations!",
	KindAuth:    "I'm having authentication issues right now. Please try again in a few moments.",
	KindNetwork: "I'm having trouble connecting to my AI brain right now. Please try again in a moment!",
	KindGeneral: "I'm experiencing some technical difficulties right now. Please try asking your question again!",
}

// FallbackText returns the canned user-facing message for a failure kind.
// It is a pure lookup: the same kind always yields the same text.
func FallbackText(kind Kind) string {
	if msg, ok := fallbackMessages[kind]; ok {
		return msg
	}
	return fallbackMessages[KindGeneral]
}
