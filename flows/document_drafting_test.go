package flows

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"openlaw-backend/gateway"
	"openlaw-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDraftGateway is a canned DraftGateway for drafting-flow tests.
type stubDraftGateway struct {
	requirements    *gateway.DocumentRequirements
	requirementsErr error
	info            *gateway.DocumentInfoResult
	infoErr         error
	document        string
	documentErr     error
	generateCalls   int
}

func (s *stubDraftGateway) DetermineDocumentRequirements(ctx context.Context, userInput string, history []models.Turn) (*gateway.DocumentRequirements, error) {
	return s.requirements, s.requirementsErr
}

func (s *stubDraftGateway) GatherDocumentInfo(ctx context.Context, documentType string, data map[string]string, userInput string) (*gateway.DocumentInfoResult, error) {
	return s.info, s.infoErr
}

func (s *stubDraftGateway) GenerateDocument(ctx context.Context, data map[string]string, history []models.Turn) (string, error) {
	s.generateCalls++
	return s.document, s.documentErr
}

func TestDrafting_ClassifySmart(t *testing.T) {
	gw := &stubDraftGateway{requirements: &gateway.DocumentRequirements{
		DocumentType: "rental agreement",
		NextQuestion: "Who are the landlord and the tenant?",
		Extracted:    map[string]string{"purpose": "renting an apartment"},
	}}
	flow := NewDocumentDraftingFlow(gw)
	fctx := models.NewFlowContext(models.FlowDocumentDrafting)

	res := flow.Advance(context.Background(), fctx, "I need a rental agreement", nil)

	assert.Equal(t, "Who are the landlord and the tenant?", res.Reply)
	assert.Equal(t, stepGather, fctx.Step)
	assert.Equal(t, "rental agreement", fctx.Data["document_type"])
	assert.Equal(t, "renting an apartment", fctx.Data["purpose"])
	assert.Equal(t, "1", fctx.Data[questionsAskedKey])
}

func TestDrafting_ClassifyFallbackUsesUserWords(t *testing.T) {
	gw := &stubDraftGateway{requirementsErr: gateway.ErrMalformedResponse}
	flow := NewDocumentDraftingFlow(gw)
	fctx := models.NewFlowContext(models.FlowDocumentDrafting)

	res := flow.Advance(context.Background(), fctx, "a demand letter", nil)

	assert.NotEmpty(t, res.Reply)
	assert.Equal(t, stepGather, fctx.Step)
	assert.Equal(t, "a demand letter", fctx.Data["document_type"])
}

func TestDrafting_GatherSmartAsksNextQuestion(t *testing.T) {
	gw := &stubDraftGateway{info: &gateway.DocumentInfoResult{
		Extracted:    map[string]string{"parties": "Alice and Bob"},
		NextQuestion: "What is the effective date?",
	}}
	flow := NewDocumentDraftingFlow(gw)
	fctx := models.NewFlowContext(models.FlowDocumentDrafting)
	fctx.Step = stepGather
	fctx.Data["document_type"] = "contract"

	res := flow.Advance(context.Background(), fctx, "It's between Alice and Bob", nil)

	assert.Equal(t, "What is the effective date?", res.Reply)
	assert.Equal(t, "Alice and Bob", fctx.Data["parties"])
	assert.Equal(t, stepGather, fctx.Step)
	assert.False(t, res.Done)
}

func TestDrafting_GatherSufficientGenerates(t *testing.T) {
	gw := &stubDraftGateway{
		info:     &gateway.DocumentInfoResult{HasSufficientInfo: true},
		document: "# CONTRACT\n\nTerms follow.",
	}
	flow := NewDocumentDraftingFlow(gw)
	fctx := models.NewFlowContext(models.FlowDocumentDrafting)
	fctx.Step = stepGather
	fctx.Data["document_type"] = "contract"

	res := flow.Advance(context.Background(), fctx, "That's everything", nil)

	assert.True(t, res.Done)
	assert.Equal(t, "# CONTRACT\n\nTerms follow.", res.DocumentContent)
	assert.Equal(t, "contract", res.DocumentType)
	assert.Equal(t, stepDone, fctx.Step)
}

func TestDrafting_GatherFallbackNeverStalls(t *testing.T) {
	gw := &stubDraftGateway{infoErr: errors.New("upstream unavailable")}
	flow := NewDocumentDraftingFlow(gw)
	fctx := models.NewFlowContext(models.FlowDocumentDrafting)
	fctx.Step = stepGather
	fctx.Data["document_type"] = "contract"

	res := flow.Advance(context.Background(), fctx, "For hiring a contractor", nil)

	require.NotNil(t, res)
	assert.NotEmpty(t, res.Reply)
	assert.False(t, res.Done)
	assert.Equal(t, "For hiring a contractor", fctx.Data["purpose"])

	res = flow.Advance(context.Background(), fctx, "Payment due in 30 days", nil)

	assert.NotEmpty(t, res.Reply)
	assert.Equal(t, "Payment due in 30 days", fctx.Data["terms"])
}

func TestDrafting_StandardTermsShortCircuit(t *testing.T) {
	gw := &stubDraftGateway{document: "AGREEMENT TEXT"}
	flow := NewDocumentDraftingFlow(gw)
	fctx := models.NewFlowContext(models.FlowDocumentDrafting)
	fctx.Step = stepGather
	fctx.Data["document_type"] = "service agreement"

	res := flow.Advance(context.Background(), fctx, "just use standard terms", nil)

	assert.True(t, res.Done)
	assert.Equal(t, 1, gw.generateCalls)
	assert.Equal(t, "AGREEMENT TEXT", res.DocumentContent)
	assert.Equal(t, "service agreement", res.DocumentType)
}

func TestDrafting_StandardTermsBeforeClassify(t *testing.T) {
	gw := &stubDraftGateway{document: "GENERIC TEXT"}
	flow := NewDocumentDraftingFlow(gw)
	fctx := models.NewFlowContext(models.FlowDocumentDrafting)

	res := flow.Advance(context.Background(), fctx, "just use standard terms", nil)

	assert.True(t, res.Done)
	assert.Equal(t, "GENERIC TEXT", res.DocumentContent)
	assert.Equal(t, genericDocumentType, res.DocumentType)
}

func TestDrafting_GenerationFailureRetriable(t *testing.T) {
	gw := &stubDraftGateway{documentErr: errors.New("model overloaded")}
	flow := NewDocumentDraftingFlow(gw)
	fctx := models.NewFlowContext(models.FlowDocumentDrafting)
	fctx.Step = stepGather
	fctx.Data["document_type"] = "contract"

	res := flow.Advance(context.Background(), fctx, "standard", nil)

	assert.False(t, res.Done)
	assert.Empty(t, res.DocumentContent)
	assert.NotEmpty(t, res.Reply)
	assert.Equal(t, stepGather, fctx.Step)

	// The next attempt succeeds.
	gw.documentErr = nil
	gw.document = "DONE"
	res = flow.Advance(context.Background(), fctx, "standard", nil)

	assert.True(t, res.Done)
	assert.Equal(t, "DONE", res.DocumentContent)
}

func TestDrafting_QuestionCeiling(t *testing.T) {
	gw := &stubDraftGateway{
		info:     &gateway.DocumentInfoResult{NextQuestion: "And another thing?"},
		document: "FINAL TEXT",
	}
	flow := NewDocumentDraftingFlow(gw)
	fctx := models.NewFlowContext(models.FlowDocumentDrafting)
	fctx.Step = stepGather
	fctx.Data["document_type"] = "contract"
	fctx.Data[questionsAskedKey] = strconv.Itoa(maxQuestions)

	res := flow.Advance(context.Background(), fctx, "some more detail", nil)

	assert.True(t, res.Done)
	assert.Equal(t, "FINAL TEXT", res.DocumentContent)
	assert.Equal(t, 1, gw.generateCalls)
}

func TestDrafting_ExitPreservesData(t *testing.T) {
	flow := NewDocumentDraftingFlow(nil)
	fctx := models.NewFlowContext(models.FlowDocumentDrafting)
	fctx.Step = stepGather
	fctx.Data["document_type"] = "contract"
	fctx.Data["purpose"] = "freelance work"

	res := flow.Advance(context.Background(), fctx, "not now, thanks", nil)

	assert.Equal(t, 0, fctx.Step)
	assert.False(t, res.Done)
	assert.Equal(t, "contract", fctx.Data["document_type"])
	assert.Equal(t, "freelance work", fctx.Data["purpose"])
}

func TestDrafting_NilGatewayStillTerminates(t *testing.T) {
	flow := NewDocumentDraftingFlow(nil)
	fctx := models.NewFlowContext(models.FlowDocumentDrafting)

	res := flow.Advance(context.Background(), fctx, "an NDA", nil)
	assert.Equal(t, stepGather, fctx.Step)
	assert.NotEmpty(t, res.Reply)

	res = flow.Advance(context.Background(), fctx, "standard", nil)
	assert.True(t, res.Done)
	assert.Empty(t, res.DocumentContent)
	assert.NotEmpty(t, res.Reply)
}
