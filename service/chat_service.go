package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"openlaw-backend/flows"
	"openlaw-backend/gateway"
	"openlaw-backend/models"
	"openlaw-backend/repository"

	"github.com/google/uuid"
)

var (
	ErrNoQuery        = errors.New("no query or file provided")
	ErrAnalysisFailed = errors.New("failed to analyze file")
)

const (
	fallbackExplanation = "This lawyer is a good match for your needs."
	fallbackGoodbye     = "Thank you for using OpenLaw! If you need any further assistance with legal matters, please don't hesitate to reach out. Take care!"
	fallbackClassify    = "I'm having trouble understanding that right now. Could you rephrase? I can help you find a lawyer or answer legal questions."

	gotLetterIntro = "I can help you with your OpenLaw case! To get started, could you please provide the reference number from your letter? You can find it in the URL, like this: https://olaw.io/YOUR_REFERENCE_NUMBER."
	draftIntro     = "I can help you draft a legal document! To create the most appropriate document for your needs, I'll need some details. What type of legal document are you looking to create? (e.g., contract, letter, notice, agreement, etc.)"
)

// ChatService is the per-turn dispatcher: it loads the session,
// routes to the active flow or to intent handling, runs matching, and
// persists the updated conversation. Each turn is processed
// synchronously end to end; the only shared state across turns is the
// read-only catalog inside the match service.
type ChatService struct {
	store        repository.ConversationStore
	gw           gateway.Gateway
	matcher      *MatchService
	intakeFlow   flows.Flow
	draftingFlow flows.Flow
}

// ChatServiceOption is a functional option for ChatService
type ChatServiceOption func(*ChatService)

// ChatWithStore sets the conversation store
func ChatWithStore(store repository.ConversationStore) ChatServiceOption {
	return func(s *ChatService) {
		s.store = store
	}
}

// ChatWithGateway sets the extraction gateway
func ChatWithGateway(gw gateway.Gateway) ChatServiceOption {
	return func(s *ChatService) {
		s.gw = gw
	}
}

// ChatWithMatcher sets the matching engine
func ChatWithMatcher(m *MatchService) ChatServiceOption {
	return func(s *ChatService) {
		s.matcher = m
	}
}

// ChatWithFlows sets the case intake and document drafting flows
func ChatWithFlows(intake, drafting flows.Flow) ChatServiceOption {
	return func(s *ChatService) {
		s.intakeFlow = intake
		s.draftingFlow = drafting
	}
}

// NewChatService creates a new chat service
func NewChatService(opts ...ChatServiceOption) *ChatService {
	s := &ChatService{}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryConversationRepository()
	}
	if s.matcher == nil {
		s.matcher = NewMatchService()
	}
	return s
}

// ChatRequest is one inbound conversational turn.
type ChatRequest struct {
	Query    string
	ChatID   string
	PDF      []byte // optional uploaded document for analysis
	Filename string
}

// ChatResponse is the structured reply to the caller. Answer and
// ChatID are always set; the remaining fields depend on the handled
// intent.
type ChatResponse struct {
	ChatID            string               `json:"chat_id"`
	Answer            string               `json:"answer"`
	Intent            string               `json:"intent,omitempty"`
	Message           string               `json:"message,omitempty"`
	Disclaimer        string               `json:"disclaimer,omitempty"`
	EncourageUpload   string               `json:"encourage_upload,omitempty"`
	ShowForm          bool                 `json:"show_form,omitempty"`
	CompletionMessage string               `json:"completion_message,omitempty"`
	FiltersApplied    *models.FilterSet    `json:"filters_applied,omitempty"`
	Matches           []models.MatchResult `json:"matches,omitempty"`
	DocumentContent   string               `json:"document_content,omitempty"`
	DocumentType      string               `json:"document_type,omitempty"`
	DownloadFilename  string               `json:"download_filename,omitempty"`
}

// ProcessTurn handles one conversational turn end to end.
func (s *ChatService) ProcessTurn(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	conv := s.loadConversation(ctx, req.ChatID)

	// File uploads are document analysis regardless of flow state.
	if len(req.PDF) > 0 {
		return s.handleUpload(ctx, conv, req)
	}

	if strings.TrimSpace(req.Query) == "" {
		return nil, ErrNoQuery
	}

	// Route to the active flow, if any.
	if conv.Flow != nil && conv.Flow.Step >= 1 {
		return s.advanceFlow(ctx, conv, req.Query)
	}

	conv.Append(models.RoleUser, req.Query)

	cls, err := s.classify(ctx, conv)
	if err != nil {
		log.Printf("Warning: classification unavailable: %v", err)
		return s.respond(ctx, conv, &ChatResponse{Answer: fallbackClassify})
	}

	switch cls.Intent {
	case gateway.IntentGotLetter:
		return s.startCaseIntake(ctx, conv, req.Query)

	case gateway.IntentDraft:
		conv.Flow = s.resumeOrNewFlow(conv, models.FlowDocumentDrafting)
		return s.respond(ctx, conv, &ChatResponse{Answer: draftIntro})

	case gateway.IntentNearMe:
		return s.respond(ctx, conv, &ChatResponse{
			Intent: gateway.IntentNearMe,
			Answer: "Happy to find someone close by! Share your city or ZIP code and I'll take it from there.",
		})

	case gateway.IntentGeneral:
		return s.respond(ctx, conv, &ChatResponse{
			Answer:  cls.Response,
			Message: "That sounds like a legal question. I can help you find a lawyer. Can you describe your case or what kind of lawyer you need and where?",
		})

	case gateway.IntentOutOfScope:
		answer := cls.WittyResponse
		if answer == "" {
			answer = "I am having trouble understanding that, can you please rephrase? But I can help you with legal matters!"
		}
		return s.respond(ctx, conv, &ChatResponse{Answer: answer})

	case gateway.IntentGreeting:
		return s.respond(ctx, conv, &ChatResponse{Answer: "Hi there! How can I help you?"})

	case gateway.IntentOutOfArea:
		return s.respond(ctx, conv, &ChatResponse{
			Answer:   "We're sorry, but we don't currently operate in your state. We're expanding and hope to be available in your area soon!",
			ShowForm: true,
		})

	case gateway.IntentDocumentHelp:
		return s.respond(ctx, conv, &ChatResponse{
			Answer:          "I understand you need help understanding a legal document. While I can provide general information and help you understand the document's content, it's important to note that for specific legal advice, you should consult with a qualified attorney who can review your unique situation.",
			Disclaimer:      "Important: This assistance is for informational purposes only and should not be considered legal advice. For specific legal guidance, please consult with a qualified attorney.",
			EncourageUpload: "To help you better, please upload your legal document using the file upload feature. I can then analyze the document and provide a general explanation of its contents, key terms, and what it might mean in plain language.",
		})

	case gateway.IntentGoodbye:
		answer := fallbackGoodbye
		if msg, err := s.gw.Goodbye(ctx, conv.History); err == nil {
			answer = msg
		}
		return s.respond(ctx, conv, &ChatResponse{Answer: answer})

	default:
		return s.handleMatching(ctx, conv, req.Query, cls.Filters)
	}
}

// Title generates a short name for a conversation.
func (s *ChatService) Title(ctx context.Context, conversation string) (string, error) {
	if s.gw == nil {
		return "", errors.New("extraction gateway not set")
	}
	return s.gw.GenerateTitle(ctx, conversation)
}

// classify wraps the gateway call with a nil guard.
func (s *ChatService) classify(ctx context.Context, conv *models.Conversation) (*gateway.Classification, error) {
	if s.gw == nil {
		return nil, errors.New("extraction gateway not set")
	}
	return s.gw.Classify(ctx, conv.History)
}

// loadConversation fetches the session or starts a fresh one. A
// missing session identifier gets a generated one; an unknown
// identifier is treated as a fresh session under that identifier.
func (s *ChatService) loadConversation(ctx context.Context, chatID string) *models.Conversation {
	if chatID == "" {
		return &models.Conversation{ChatID: uuid.NewString()}
	}
	conv, err := s.store.Get(ctx, chatID)
	if err != nil {
		if !errors.Is(err, repository.ErrConversationNotFound) {
			log.Printf("Warning: failed to load conversation %s: %v", chatID, err)
		}
		return &models.Conversation{ChatID: chatID}
	}
	return conv
}

// resumeOrNewFlow restores a previously exited flow of the same name
// so partially collected data survives, otherwise starts fresh.
func (s *ChatService) resumeOrNewFlow(conv *models.Conversation, name string) *models.FlowContext {
	if conv.Flow != nil && conv.Flow.Name == name && len(conv.Flow.Data) > 0 {
		conv.Flow.Step = 1
		return conv.Flow
	}
	return models.NewFlowContext(name)
}

// startCaseIntake begins the got-letter flow. When the trigger
// message itself carries a reference, the first step runs on it
// immediately; otherwise the user is asked for the reference number.
func (s *ChatService) startCaseIntake(ctx context.Context, conv *models.Conversation, query string) (*ChatResponse, error) {
	conv.Flow = s.resumeOrNewFlow(conv, models.FlowCaseIntake)

	lower := strings.ToLower(query)
	for _, marker := range []string{"ref", "reference", "olaw.io", "https://"} {
		if strings.Contains(lower, marker) {
			result := s.intakeFlow.Advance(ctx, conv.Flow, query, conv.History)
			return s.finishFlowTurn(ctx, conv, result)
		}
	}
	return s.respond(ctx, conv, &ChatResponse{Answer: gotLetterIntro})
}

// advanceFlow runs one turn of the active flow.
func (s *ChatService) advanceFlow(ctx context.Context, conv *models.Conversation, query string) (*ChatResponse, error) {
	var flow flows.Flow
	switch conv.Flow.Name {
	case models.FlowCaseIntake:
		flow = s.intakeFlow
	case models.FlowDocumentDrafting:
		flow = s.draftingFlow
	default:
		// Unknown flow state, drop it and reclassify next turn.
		conv.Flow = nil
		return s.respond(ctx, conv, &ChatResponse{Answer: fallbackClassify})
	}

	conv.Append(models.RoleUser, query)
	result := flow.Advance(ctx, conv.Flow, query, conv.History)
	return s.finishFlowTurn(ctx, conv, result)
}

// finishFlowTurn turns a flow result into a response, clearing the
// flow context on completion.
func (s *ChatService) finishFlowTurn(ctx context.Context, conv *models.Conversation, result *flows.Result) (*ChatResponse, error) {
	resp := &ChatResponse{Answer: result.Reply}

	if result.CompletionMessage != "" {
		resp.CompletionMessage = result.CompletionMessage
	}
	if result.DocumentContent != "" {
		resp.DocumentContent = result.DocumentContent
		resp.DocumentType = result.DocumentType
		resp.DownloadFilename = strings.ReplaceAll(result.DocumentType, " ", "_") + ".docx"
		resp.Answer = "Perfect! I've drafted your document. You can download it below:"
	}
	if result.Done {
		conv.Flow = nil
	}

	conv.Append(models.RoleAssistant, resp.Answer)
	if resp.CompletionMessage != "" {
		conv.Append(models.RoleAssistant, resp.CompletionMessage)
	}
	s.save(ctx, conv)

	resp.ChatID = conv.ChatID
	return resp, nil
}

// handleMatching runs the matching engine over the extracted filters
// and attaches explanations.
func (s *ChatService) handleMatching(ctx context.Context, conv *models.Conversation, query string, rawFilters map[string]interface{}) (*ChatResponse, error) {
	filters := models.ParseFilterSet(rawFilters)
	attorneys := s.matcher.FindBestMatches(&filters)

	matches := make([]models.MatchResult, 0, len(attorneys))
	for _, a := range attorneys {
		explanation := fallbackExplanation
		if s.gw != nil {
			if text, err := s.gw.ExplainMatch(ctx, query, a, filters); err == nil {
				explanation = text
			}
		}
		matches = append(matches, models.MatchResult{Attorney: a, Explanation: explanation})
	}

	answer := "I couldn't find attorneys matching your criteria. Try broadening the search with a different specialty, location, or language."
	if len(matches) > 0 {
		answer = "Here are the best matches I found for you:"
		if filters.FallbackApplied && len(filters.OriginalSpecialties) > 0 {
			answer = "I couldn't find an exact match for " + filters.OriginalSpecialties[0] + ", but here are attorneys in closely related fields:"
		}
	}

	return s.respond(ctx, conv, &ChatResponse{
		Answer:         answer,
		FiltersApplied: &filters,
		Matches:        matches,
	})
}

// handleUpload analyzes an uploaded PDF document.
func (s *ChatService) handleUpload(ctx context.Context, conv *models.Conversation, req ChatRequest) (*ChatResponse, error) {
	if s.gw == nil {
		return nil, ErrAnalysisFailed
	}
	analysis, err := s.gw.AnalyzeDocument(ctx, req.PDF)
	if err != nil {
		return nil, ErrAnalysisFailed
	}

	label := req.Filename
	if label == "" {
		label = "document"
	}
	conv.Append(models.RoleUser, "Uploaded document: "+label)
	return s.respond(ctx, conv, &ChatResponse{Answer: analysis})
}

// respond appends the assistant turn, persists the conversation, and
// stamps the chat identifier.
func (s *ChatService) respond(ctx context.Context, conv *models.Conversation, resp *ChatResponse) (*ChatResponse, error) {
	conv.Append(models.RoleAssistant, resp.Answer)
	s.save(ctx, conv)
	resp.ChatID = conv.ChatID
	return resp, nil
}

// save persists the conversation; persistence failures are logged but
// never fail the turn.
func (s *ChatService) save(ctx context.Context, conv *models.Conversation) {
	if err := s.store.Save(ctx, conv); err != nil {
		log.Printf("Warning: failed to save conversation %s: %v", conv.ChatID, err)
	}
}
