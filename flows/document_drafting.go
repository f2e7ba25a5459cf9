package flows

import (
	"context"
	"log"
	"strconv"
	"strings"

	"openlaw-backend/gateway"
	"openlaw-backend/models"
)

// Drafting flow steps. Step 2 loops until enough information has been
// gathered; step 3 is terminal.
const (
	stepClassify = 1
	stepGather   = 2
	stepDone     = 3
)

// maxQuestions bounds the total number of gathering questions so the
// flow terminates even when smart mode keeps asking.
const maxQuestions = 12

// questionsAskedKey tracks the gathering-question count inside the
// flow data so it survives across turns.
const questionsAskedKey = "questions_asked"

const genericDocumentType = "legal document"
const genericTypeQuestion = "What type of legal document do you need to create? (e.g., contract, letter, notice, agreement)"

// standardTermsPhrases short-circuit gathering: the user wants the
// document drafted with default terms.
var standardTermsPhrases = []string{"standard", "use standard", "default", "no, not really", "not really"}

// DraftGateway is the slice of the extraction gateway the drafting
// flow needs for smart mode and final synthesis.
type DraftGateway interface {
	DetermineDocumentRequirements(ctx context.Context, userInput string, history []models.Turn) (*gateway.DocumentRequirements, error)
	GatherDocumentInfo(ctx context.Context, documentType string, data map[string]string, userInput string) (*gateway.DocumentInfoResult, error)
	GenerateDocument(ctx context.Context, data map[string]string, history []models.Turn) (string, error)
}

// DocumentDraftingFlow gathers the details needed to draft a legal
// document, then hands the accumulated data to the document generator.
type DocumentDraftingFlow struct {
	gw DraftGateway
}

// NewDocumentDraftingFlow creates the drafting flow. A nil gateway
// means fallback mode only (no document synthesis).
func NewDocumentDraftingFlow(gw DraftGateway) *DocumentDraftingFlow {
	return &DocumentDraftingFlow{gw: gw}
}

// Name returns the flow name stored in FlowContext.
func (f *DocumentDraftingFlow) Name() string {
	return models.FlowDocumentDrafting
}

// Advance processes one turn of the drafting flow.
func (f *DocumentDraftingFlow) Advance(ctx context.Context, fctx *models.FlowContext, userInput string, history []models.Turn) *Result {
	if isExitRequest(userInput) {
		fctx.Step = 0
		return &Result{Reply: "No problem, we can pick this up whenever you're ready. Your details so far are saved. Anything else I can help you with?"}
	}

	// Standard/default terms end gathering at any point, including
	// before a document type has been classified.
	if wantsStandardTerms(userInput) {
		return f.finish(ctx, fctx, history, "Perfect! I've drafted your document using standard terms and conditions. You can download it below:")
	}

	switch fctx.Step {
	case stepClassify:
		return f.classify(ctx, fctx, userInput, history)
	case stepGather:
		return f.gather(ctx, fctx, userInput, history)
	default:
		return f.finish(ctx, fctx, history, "Here's your generated document!")
	}
}

// classify determines the document type and the first question.
func (f *DocumentDraftingFlow) classify(ctx context.Context, fctx *models.FlowContext, userInput string, history []models.Turn) *Result {
	if f.gw != nil {
		reqs, err := f.gw.DetermineDocumentRequirements(ctx, userInput, history)
		if err == nil {
			fctx.Merge(reqs.Extracted)
			fctx.Merge(map[string]string{"document_type": reqs.DocumentType})
			fctx.Step = stepGather
			return &Result{Reply: f.countQuestion(fctx, reqs.NextQuestion)}
		}
		log.Printf("Warning: document requirements unavailable, using generic intake: %v", err)
	}

	// The user's own words are the best available type; otherwise a
	// generic placeholder keeps the flow moving.
	docType := strings.TrimSpace(userInput)
	if docType == "" {
		docType = genericDocumentType
	}
	fctx.Merge(map[string]string{"document_type": docType})
	fctx.Step = stepGather
	return &Result{Reply: f.countQuestion(fctx, "Great! Now I need some key details. What is the purpose of this document? Who are the parties involved?")}
}

// gather merges newly extracted fields and either asks the next
// question or finishes the flow.
func (f *DocumentDraftingFlow) gather(ctx context.Context, fctx *models.FlowContext, userInput string, history []models.Turn) *Result {
	if questionsAsked(fctx) >= maxQuestions {
		return f.finish(ctx, fctx, history, "I have enough to work with. Let me draft your document now.")
	}

	if f.gw != nil {
		info, err := f.gw.GatherDocumentInfo(ctx, fctx.Data["document_type"], fctx.Data, userInput)
		if err == nil {
			fctx.Merge(info.Extracted)
			if info.HasSufficientInfo {
				return f.finish(ctx, fctx, history, "Perfect! I have enough information to create your document. You can download it below:")
			}
			return &Result{Reply: f.countQuestion(fctx, info.NextQuestion)}
		}
		log.Printf("Warning: drafting flow falling back for this turn: %v", err)
	}

	return f.gatherFallback(fctx, userInput)
}

// gatherFallback is the deterministic gathering path: purpose, then
// terms, then generation. It keys off which fields are already
// collected rather than a separate sub-step counter.
func (f *DocumentDraftingFlow) gatherFallback(fctx *models.FlowContext, userInput string) *Result {
	switch {
	case fctx.Data["purpose"] == "":
		fctx.Merge(map[string]string{"purpose": userInput})
		return &Result{Reply: f.countQuestion(fctx, "Now let me ask about the specific terms or conditions you want to include in this document. You can say 'standard' if you want to use default terms.")}
	case fctx.Data["terms"] == "":
		fctx.Merge(map[string]string{"terms": userInput})
		return &Result{Reply: f.countQuestion(fctx, "Is there anything else the document should cover, or shall I draft it with what we have? You can say 'standard' to proceed.")}
	default:
		fctx.Merge(map[string]string{"additional_details": userInput})
		return &Result{Reply: f.countQuestion(fctx, "Anything else to add? Say 'standard' when you're ready for the draft.")}
	}
}

// finish triggers document synthesis and moves to the terminal step.
// A synthesis failure keeps the flow at the gathering step so the
// user can try again.
func (f *DocumentDraftingFlow) finish(ctx context.Context, fctx *models.FlowContext, history []models.Turn, reply string) *Result {
	docType := fctx.Data["document_type"]
	if docType == "" {
		docType = genericDocumentType
	}

	if f.gw == nil {
		fctx.Step = stepDone
		return &Result{
			Reply: "I've collected everything I need, but document generation is unavailable right now. Please try again shortly.",
			Done:  true,
		}
	}

	content, err := f.gw.GenerateDocument(ctx, fctx.Data, history)
	if err != nil {
		log.Printf("Warning: document generation failed: %v", err)
		return &Result{Reply: "I have everything I need, but I couldn't generate the document just now. Say 'standard' again in a moment and I'll retry."}
	}

	fctx.Step = stepDone
	return &Result{
		Reply:           reply,
		Done:            true,
		DocumentContent: content,
		DocumentType:    docType,
	}
}

// countQuestion increments the question counter and returns the
// question unchanged.
func (f *DocumentDraftingFlow) countQuestion(fctx *models.FlowContext, question string) string {
	fctx.Merge(map[string]string{questionsAskedKey: strconv.Itoa(questionsAsked(fctx) + 1)})
	return question
}

func questionsAsked(fctx *models.FlowContext) int {
	n, _ := strconv.Atoi(fctx.Data[questionsAskedKey])
	return n
}

func wantsStandardTerms(input string) bool {
	return containsAnyPhrase(input, standardTermsPhrases)
}
