// Package flows implements the step-based conversational flows:
// case intake for letter recipients and guided document drafting.
//
// Each flow first tries smart mode (the extraction gateway) and
// degrades to a deterministic rule-based fallback whenever the gateway
// fails or returns something unusable. Advance never fails: every turn
// produces a reply and a valid transition.
package flows

import (
	"context"
	"math/rand/v2"
	"strings"

	"openlaw-backend/models"
)

// Result is the outcome of one flow turn. Done signals flow
// completion; DocumentContent/DocumentType are only set by the
// drafting flow when a document was produced.
type Result struct {
	Reply             string
	Done              bool
	CompletionMessage string
	DocumentContent   string
	DocumentType      string
}

// Flow is the shared contract for step-based conversational flows.
// Advance mutates the flow context (step and accumulated data) and
// returns the reply for this turn.
type Flow interface {
	Name() string
	Advance(ctx context.Context, fctx *models.FlowContext, userInput string, history []models.Turn) *Result
}

// exitPhrases abort the flow when present anywhere in the input. The
// step resets to 0 but collected data is preserved for resumption.
var exitPhrases = []string{"exit", "stop", "cancel", "quit", "no thanks", "not now", "later"}

// diversionPhrases are small-talk markers that get a witty redirect
// instead of advancing the flow.
var diversionPhrases = []string{"weather", "joke", "how are you", "what time", "unrelated"}

var wittyRedirects = []string{
	"I appreciate the small talk, but let's focus on your legal case! ",
	"While I'd love to chat about that, your case needs attention! ",
	"Interesting topic, but your legal matter is more pressing! ",
}

func containsAnyPhrase(input string, phrases []string) bool {
	lower := strings.ToLower(input)
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func isExitRequest(input string) bool {
	return containsAnyPhrase(input, exitPhrases)
}

func isDiversion(input string) bool {
	return containsAnyPhrase(input, diversionPhrases)
}

func wittyRedirect() string {
	return wittyRedirects[rand.IntN(len(wittyRedirects))]
}
