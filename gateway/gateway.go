package gateway

import (
	"context"
	"errors"

	"openlaw-backend/models"
)

// Gateway errors. Callers treat every gateway error the same way:
// switch to the deterministic fallback for the current turn. The next
// turn tries the gateway again.
var (
	ErrMalformedResponse = errors.New("gateway returned malformed response")
	ErrEmptyResponse     = errors.New("gateway returned empty response")
)

// Classification is the structured intent extracted from the latest
// user message. When Intent is empty the message is a lawyer search
// and Filters carries the raw extracted filter object.
type Classification struct {
	Intent        string
	Response      string                 // general_question answer
	WittyResponse string                 // out-of-scope redirect
	Filters       map[string]interface{} // search criteria, loosely typed
}

// Intent values produced by classification.
const (
	IntentGreeting     = "greeting"
	IntentGeneral      = "general_question"
	IntentOutOfScope   = "out-of-scope"
	IntentOutOfArea    = "out-of-area"
	IntentNearMe       = "near_me"
	IntentGotLetter    = "got-letter"
	IntentDocumentHelp = "document_help"
	IntentDraft        = "draft_document"
	IntentGoodbye      = "goodbye"
)

// FlowStepResult is the validated outcome of a smart-mode flow step.
type FlowStepResult struct {
	Reply             string
	NextStep          int
	Extracted         map[string]string
	Done              bool
	CompletionMessage string
}

// DocumentRequirements seeds the drafting flow: the classified
// document type and the first targeted question.
type DocumentRequirements struct {
	DocumentType string
	RequiredInfo []string
	NextQuestion string
	Extracted    map[string]string
}

// DocumentInfoResult is one gathering turn of the drafting flow.
type DocumentInfoResult struct {
	Extracted         map[string]string
	NextQuestion      string
	HasSufficientInfo bool
	MissingInfo       []string
}

// Gateway is the boundary to the external language-inference service.
// Implementations must return an error (never a partially-typed
// result) when the upstream response is missing required fields, so
// callers can fall back deterministically.
type Gateway interface {
	// Classify extracts the intent and any search filters from the
	// latest user message, given the conversation history.
	Classify(ctx context.Context, history []models.Turn) (*Classification, error)

	// AdvanceFlowStep runs one smart-mode turn of a step-based flow.
	AdvanceFlowStep(ctx context.Context, flowName string, step int, data map[string]string, userInput string, history []models.Turn) (*FlowStepResult, error)

	// DetermineDocumentRequirements classifies the document type and
	// seeds the required-field list for the drafting flow.
	DetermineDocumentRequirements(ctx context.Context, userInput string, history []models.Turn) (*DocumentRequirements, error)

	// GatherDocumentInfo extracts fields from one drafting-flow answer
	// and decides whether enough information has been collected.
	GatherDocumentInfo(ctx context.Context, documentType string, data map[string]string, userInput string) (*DocumentInfoResult, error)

	// GenerateDocument synthesizes the final document text from the
	// accumulated data and recent history.
	GenerateDocument(ctx context.Context, data map[string]string, history []models.Turn) (string, error)

	// ExplainMatch writes the one-line explanation attached to a match.
	ExplainMatch(ctx context.Context, userQuery string, match models.Attorney, filters models.FilterSet) (string, error)

	// Goodbye writes a personalized farewell from the history.
	Goodbye(ctx context.Context, history []models.Turn) (string, error)

	// GenerateTitle names a conversation for the chat list.
	GenerateTitle(ctx context.Context, conversation string) (string, error)

	// AnalyzeDocument summarizes an uploaded PDF, or reports that it
	// does not look like a legal document.
	AnalyzeDocument(ctx context.Context, pdf []byte) (string, error)
}
