package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"openlaw-backend/models"

	"github.com/google/generative-ai-go/genai"
)

const (
	defaultTextModel   = "gemini-2.0-flash"
	defaultVisionModel = "gemini-2.5-flash"
	defaultCallTimeout = 20 * time.Second
)

// GeminiGateway implements Gateway on top of the Gemini API. Every
// call carries a turn-scoped timeout and is attempted exactly once;
// retrying is the caller's business (in practice callers fall back
// instead).
type GeminiGateway struct {
	client      *genai.Client
	textModel   string
	visionModel string
	timeout     time.Duration
	specialties []string
}

// GeminiOption is a functional option for GeminiGateway
type GeminiOption func(*GeminiGateway)

// GeminiWithTimeout sets the per-call timeout
func GeminiWithTimeout(d time.Duration) GeminiOption {
	return func(g *GeminiGateway) {
		g.timeout = d
	}
}

// GeminiWithSpecialties sets the specialty vocabulary offered to the
// classification prompt
func GeminiWithSpecialties(specialties []string) GeminiOption {
	return func(g *GeminiGateway) {
		g.specialties = specialties
	}
}

// GeminiWithModels overrides the text and vision model names
func GeminiWithModels(textModel, visionModel string) GeminiOption {
	return func(g *GeminiGateway) {
		g.textModel = textModel
		g.visionModel = visionModel
	}
}

// NewGeminiGateway creates a Gemini-backed extraction gateway
func NewGeminiGateway(client *genai.Client, opts ...GeminiOption) *GeminiGateway {
	g := &GeminiGateway{
		client:      client,
		textModel:   defaultTextModel,
		visionModel: defaultVisionModel,
		timeout:     defaultCallTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// generate runs one prompt against the named model and returns the
// concatenated text parts.
func (g *GeminiGateway) generate(ctx context.Context, modelName string, temperature float32, parts ...genai.Part) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	model := g.client.GenerativeModel(modelName)
	model.SetTemperature(temperature)

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				builder.WriteString(string(text))
			}
		}
	}

	result := strings.TrimSpace(builder.String())
	if result == "" {
		return "", ErrEmptyResponse
	}
	return result, nil
}

// formatHistory renders up to the last n turns as "role: text" lines.
func formatHistory(history []models.Turn, n int) string {
	if n > 0 && len(history) > n {
		history = history[len(history)-n:]
	}
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, turn.Role+": "+turn.Text)
	}
	return strings.Join(lines, "\n")
}

// Classify extracts intent and filters from the latest user message.
func (g *GeminiGateway) Classify(ctx context.Context, history []models.Turn) (*Classification, error) {
	if len(history) == 0 {
		return nil, ErrMalformedResponse
	}
	query := history[len(history)-1].Text

	prompt := fmt.Sprintf(`You support both English and Spanish. You are extracting filters from a legal query. Use only the following options:
- specialties: Choose one or more from this dynamic list: %s
- meetingTypes: "Virtual" or "In-person"
- hasCalendarConnected: true or false
- firm: name of the law firm
- languages: list of languages spoken
- review_keywords: a list of descriptive words from the user query (e.g., "patient", "aggressive", "responsive")
- licenseState: full U.S. state name only; We only support Texas, Florida, California, and Arizona, any other state mentioned, pass: {"intent": "out-of-area"}
- If query is in English, "languages": English, or if its in Spanish, "languages": Spanish
- rating: a number between 1 and 5 (e.g., 4.5 means "4.5 stars and above"). If user says things like "highly rated", "4 or above", or "only 5-star", return a number like 4.0, 4.5, or 5
- If you think user only typed a name of a person, parse it as "name": the full name, or "firstName": the first name or "lastName": the last name
- location: can be a city, ZIP code, or full state name (e.g., "Miami", "90210", "Florida"). Use only city name or ZIP when state is not mentioned.

Return a plain JSON object. Do NOT format as code, markdown, or include backticks.

-- If the user asks for a lawyer "near me", "nearby", or similar, respond with: {"intent": "near_me"}
-- If the query is just a legal question or not about finding a lawyer, respond with: {"intent": "general_question", "response": "<brief 2-5 sentence answer to the question>"}
-- If user prompt is a greeting of some kind: {"intent": "greeting"}
-- If question is too random or out of legal scope, respond with: {"intent": "out-of-scope", "witty_response": "Please provide a fun/witty reply that redirects the conversation back to legal matters/questions/finding lawyers."}
-- If the user says that they received a letter from OpenLaw or something along the same lines: {"intent": "got-letter"}
-- If the user wants to understand, analyze, or get help with a legal document: {"intent": "document_help"}
-- If the user wants to draft, create, or write a legal document: {"intent": "draft_document"}
-- If the user says goodbye, bye, see you, take care, or similar farewell messages: {"intent": "goodbye"}
-- Your name is "Ola", so if user asks your name, give a fun/witty response and tell them how you can help.

Here is the full conversation history for context:
%s

Query: "%s"`, strings.Join(g.specialties, ", "), formatHistory(history, 0), query)

	raw, err := g.generate(ctx, g.textModel, 0.2, genai.Text(prompt))
	if err != nil {
		return nil, err
	}

	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	result := &Classification{
		Intent:        stringField(obj, "intent"),
		Response:      stringField(obj, "response"),
		WittyResponse: stringField(obj, "witty_response"),
	}
	if result.Intent == "" {
		// No intent means the object is a filter set for matching.
		result.Filters = obj
	}
	return result, nil
}

// AdvanceFlowStep runs one smart-mode turn of a step-based flow and
// validates the model output strictly; anything missing or wrong-typed
// is a gateway failure, never a partial result.
func (g *GeminiGateway) AdvanceFlowStep(ctx context.Context, flowName string, step int, data map[string]string, userInput string, history []models.Turn) (*FlowStepResult, error) {
	dataJSON, _ := json.Marshal(data)

	prompt := fmt.Sprintf(`You are handling a legal case intake flow for someone who received a letter from OpenLaw.

Current step: %d
Current data collected: %s
User's latest message: "%s"

Flow steps:
1. Reference number (from URL like https://olaw.io/REF123)
2. Ideal outcome for the case
3. Urgency level (high/medium/low)
4. Preferred language (English/Spanish)
5. Contact details (name, email, phone)
6. Mobile OTP verification (accept any 4-6 digit code)
7. Completion.

Rules:
- If user wants to exit the flow, set next_step to 0, keep should_end_flow false, and acknowledge gracefully
- If the user goes off-topic, answer politely but briefly and then redirect them back to the flow
- If user provides multiple pieces of information at once, extract all details that you can and only ask for remaining details
- Be conversational, professional, and slightly witty
- Validate inputs appropriately (email format, phone format, etc.)
- For OTP step, accept any 4-6 digit number as valid
- After OTP verification, end the flow with a completion message
- IMPORTANT: If user clearly states their desired outcome (like "dismissal", "win", "settlement", etc.), accept it and move to next step
- IMPORTANT: If user provides case number in any format, extract and accept it
- IMPORTANT: If user provides personal details (name, language preference), extract and store them

Recent conversation:
%s

IMPORTANT: You must respond with ONLY a valid JSON object. No additional text before or after the JSON.

Respond with this exact JSON format:
{
    "response": "your response to the user",
    "next_step": next_step_number,
    "extracted_data": {"field": "value"},
    "should_end_flow": true/false,
    "completion_message": "final message if ending flow"
}`, step, dataJSON, userInput, formatHistory(history, 10))

	raw, err := g.generate(ctx, g.textModel, 0.3, genai.Text(prompt))
	if err != nil {
		return nil, err
	}

	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	reply := stringField(obj, "response")
	nextStep, ok := intField(obj, "next_step")
	if reply == "" || !ok || nextStep < 0 {
		return nil, ErrMalformedResponse
	}

	return &FlowStepResult{
		Reply:             reply,
		NextStep:          nextStep,
		Extracted:         stringMapField(obj, "extracted_data"),
		Done:              boolField(obj, "should_end_flow"),
		CompletionMessage: stringField(obj, "completion_message"),
	}, nil
}

// DetermineDocumentRequirements classifies the needed document and
// seeds the drafting flow.
func (g *GeminiGateway) DetermineDocumentRequirements(ctx context.Context, userInput string, history []models.Turn) (*DocumentRequirements, error) {
	prompt := fmt.Sprintf(`You are a legal assistant helping a user create a legal document. Analyze the user's request and determine what information is needed.

User Query: "%s"

Conversation Context:
%s

Your task:
1. Determine what type of legal document the user needs
2. Identify what specific information is required to create this document
3. Ask intelligent, targeted questions to gather the necessary details
4. Be conversational but professional
5. If the user provides multiple pieces of information, extract what you can and ask for the remaining details

Respond with a JSON object in this exact format:
{
    "document_type": "type of document (e.g., rental agreement, employment contract, cease and desist letter)",
    "required_info": ["list of specific information needed"],
    "next_question": "your next question to the user",
    "extracted_data": {"field": "value"},
    "confidence": "high/medium/low"
}

Be specific about what information is needed for the document type.`, userInput, formatHistory(history, 20))

	raw, err := g.generate(ctx, g.textModel, 0.3, genai.Text(prompt))
	if err != nil {
		return nil, err
	}

	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	docType := stringField(obj, "document_type")
	question := stringField(obj, "next_question")
	if docType == "" || question == "" {
		return nil, ErrMalformedResponse
	}

	return &DocumentRequirements{
		DocumentType: docType,
		RequiredInfo: stringListField(obj, "required_info"),
		NextQuestion: question,
		Extracted:    stringMapField(obj, "extracted_data"),
	}, nil
}

// GatherDocumentInfo extracts fields from a drafting-flow answer and
// decides whether enough has been collected to generate the document.
func (g *GeminiGateway) GatherDocumentInfo(ctx context.Context, documentType string, data map[string]string, userInput string) (*DocumentInfoResult, error) {
	dataJSON, _ := json.MarshalIndent(data, "", "  ")

	prompt := fmt.Sprintf(`You are helping gather information for a legal document.

Document Type: %s
Current Data: %s
User's Response: "%s"

Analyze the user's response and:
1. Extract any relevant information provided
2. Determine what additional information is still needed
3. Ask the next most important question
4. Wrap up the flow in at most 12 questions; these questions should give you enough information to generate the document
5. Follow standard legal document drafting practices and formats
6. If the user provides multiple pieces of information, extract all you can
7. If user wants a blueprint to get started, make it using whatever information you have
8. Before giving the user the document, always include a caution that the document is not legal advice and is for informational purposes only

Respond with JSON:
{
    "extracted_data": {"field": "value"},
    "next_question": "your next question",
    "has_sufficient_info": true/false,
    "missing_info": ["list of still needed information"]
}

Be conversational and professional.`, documentType, dataJSON, userInput)

	raw, err := g.generate(ctx, g.textModel, 0.3, genai.Text(prompt))
	if err != nil {
		return nil, err
	}

	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	result := &DocumentInfoResult{
		Extracted:         stringMapField(obj, "extracted_data"),
		NextQuestion:      stringField(obj, "next_question"),
		HasSufficientInfo: boolField(obj, "has_sufficient_info"),
		MissingInfo:       stringListField(obj, "missing_info"),
	}
	if !result.HasSufficientInfo && result.NextQuestion == "" {
		return nil, ErrMalformedResponse
	}
	return result, nil
}

// GenerateDocument synthesizes the final document text.
func (g *GeminiGateway) GenerateDocument(ctx context.Context, data map[string]string, history []models.Turn) (string, error) {
	dataJSON, _ := json.MarshalIndent(data, "", "  ")

	prompt := fmt.Sprintf(`You are a legal document drafting expert. Generate a professional, legally sound document based on the provided information.

Document Data: %s

Conversation Context:
%s

Instructions:
1. Analyze the document type and requirements from the data and conversation
2. Determine what type of legal document is needed (contract, agreement, letter, notice, etc.)
3. Identify all parties involved and their roles
4. Extract all relevant details, terms, conditions, and requirements
5. Generate a complete, professional legal document that includes:
   - Proper legal formatting and structure
   - Clear, unambiguous language
   - All necessary sections and clauses for the document type
   - Appropriate legal disclaimers and boilerplate
   - All parties' information and signatures
   - Date, jurisdiction, and legal references

Document Requirements:
- Make it ready for immediate use as a legal document
- Include all standard clauses and sections for the document type
- Use proper legal formatting and structure
- Ensure all terms are clear and enforceable
- Include appropriate legal disclaimers

Generate the complete legal document:`, dataJSON, formatHistory(history, 25))

	return g.generate(ctx, g.textModel, 0.4, genai.Text(prompt))
}

// ExplainMatch writes the short explanation shown next to a match.
func (g *GeminiGateway) ExplainMatch(ctx context.Context, userQuery string, match models.Attorney, filters models.FilterSet) (string, error) {
	var prompt string
	if filters.FallbackApplied {
		original := "the requested field"
		if len(filters.OriginalSpecialties) > 0 {
			original = filters.OriginalSpecialties[0]
		}
		fallback := "a related field"
		if len(filters.Specialties) > 0 {
			fallback = filters.Specialties[0]
		}
		prompt = fmt.Sprintf(`A user wrote: "%s"
No exact matches were found for "%s". Explain why a lawyer who specializes in the related field of "%s" is a good alternative.
You matched this lawyer:
Name: %s, State: %s, Specialty: %s, Rating: %.1f
Explain in 1-2 sentences why this lawyer is a good alternative match. Emphasize the connection between the original query and the lawyer's actual specialty. Be helpful and natural.`,
			userQuery, original, fallback,
			match.Name, strings.Join(match.LicenseState, ", "), strings.Join(match.Specialties, ", "), match.Rating)
	} else {
		prompt = fmt.Sprintf(`A user wrote: "%s"
You matched this lawyer:
Name: %s, State: %s, Specialty: %s, Rating: %.1f
Explain in 1 sentence why this lawyer is the best match for the user query. Don't repeat exact attributes. Be helpful and natural. Don't mention "user", talk in 2nd person.`,
			userQuery,
			match.Name, strings.Join(match.LicenseState, ", "), strings.Join(match.Specialties, ", "), match.Rating)
	}

	raw, err := g.generate(ctx, g.textModel, 0.5, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return strings.Trim(raw, "`"), nil
}

// Goodbye writes a personalized farewell based on recent history.
func (g *GeminiGateway) Goodbye(ctx context.Context, history []models.Turn) (string, error) {
	prompt := fmt.Sprintf(`You are a professional legal assistant for OpenLaw. The user is saying goodbye. Generate a warm, professional, and personalized goodbye message based on the conversation context.

Guidelines:
- Be warm and appreciative of their time
- Mention that you're here if they need further assistance
- Reference any specific legal matters they discussed (if any)
- Keep it professional but friendly
- End with a positive note
- Keep it concise (2-3 sentences)

Conversation context:
%s

Generate a natural, conversational goodbye message:`, formatHistory(history, 6))

	return g.generate(ctx, g.textModel, 0.7, genai.Text(prompt))
}

// GenerateTitle names a conversation for the chat list, capped at 50
// characters.
func (g *GeminiGateway) GenerateTitle(ctx context.Context, conversation string) (string, error) {
	prompt := fmt.Sprintf(`Based on this conversation, generate a short, descriptive title (maximum 50 characters) that captures the main topic or legal issue being discussed. The title should be clear and helpful for identifying the chat later.

Conversation:
%s

Generate only the title, nothing else:`, conversation)

	raw, err := g.generate(ctx, g.textModel, 0.5, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	return truncateTitle(strings.Trim(strings.TrimSpace(raw), `"'`)), nil
}

// truncateTitle caps a title at 50 characters, counting runes so a
// multibyte boundary never produces invalid UTF-8.
func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= 50 {
		return title
	}
	return string(runes[:47]) + "..."
}

// AnalyzeDocument summarizes an uploaded PDF.
func (g *GeminiGateway) AnalyzeDocument(ctx context.Context, pdf []byte) (string, error) {
	prompt := `You are a legal assistant and are here to give legal advice. Do not say you're an AI model. Read the document and determine:
- Is it a legal document (contract, notice, policy, court order, etc)? If yes, explain the document in 2-5 sentences.

If it is clearly not a legal document, respond only with:
"That does not look like a legal document, please upload a legal document."`

	raw, err := g.generate(ctx, g.visionModel, 0.2,
		genai.Blob{MIMEType: "application/pdf", Data: pdf},
		genai.Text(prompt),
	)
	if err != nil {
		return "", err
	}
	return strings.Trim(raw, "`"), nil
}
