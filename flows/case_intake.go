package flows

import (
	"context"
	"log"
	"regexp"
	"strings"

	"openlaw-backend/gateway"
	"openlaw-backend/models"
)

// Case intake steps. Step 0 is "no active flow"; step 7 is terminal.
const (
	stepReference = 1
	stepOutcome   = 2
	stepUrgency   = 3
	stepLanguage  = 4
	stepContact   = 5
	stepOTP       = 6
	stepComplete  = 7
)

// referencePattern matches case reference tokens like AYU166 or
// REF12345, checked against the uppercased input.
var referencePattern = regexp.MustCompile(`\b[A-Z]{2,4}\d{3,6}\b|\bREF\d{3,6}\b`)

// otpPattern accepts any 4-6 digit numeric token. No external
// verification is performed.
var otpPattern = regexp.MustCompile(`^\d{4,6}$`)

// outcomeKeywords is the fixed vocabulary for the desired-outcome
// step; input containing one of these is stored as the outcome.
var outcomeKeywords = []string{"dismissal", "dismiss", "settlement", "settle", "withdraw", "resolve", "drop", "win"}

// intakeQuestions are the fixed per-step prompts used by fallback
// mode and by witty redirects.
var intakeQuestions = map[int]string{
	stepReference: "Could you please provide the reference number from your OpenLaw letter?",
	stepOutcome:   "What's the ideal outcome you want to achieve for your case?",
	stepUrgency:   "What is the level of urgency for your case (e.g., high, medium, low)?",
	stepLanguage:  "What is your preferred language, English or Spanish?",
	stepContact:   "Could you please provide your full name, email, and phone number?",
	stepOTP:       "Please enter the 4-6 digit code sent to your mobile number:",
}

const intakeCompletionMessage = "Welcome to OpenLaw! Your case profile has been created successfully. Our team will review your information and get back to you within 24 hours. You can track your case status in your profile dashboard."

// StepExtractor is the slice of the extraction gateway the intake
// flow needs for smart mode.
type StepExtractor interface {
	AdvanceFlowStep(ctx context.Context, flowName string, step int, data map[string]string, userInput string, history []models.Turn) (*gateway.FlowStepResult, error)
}

// CaseIntakeFlow walks a letter recipient through case registration:
// reference number, desired outcome, urgency, language, contact
// details, and a one-time code.
type CaseIntakeFlow struct {
	extractor StepExtractor
}

// NewCaseIntakeFlow creates the intake flow. A nil extractor means
// fallback mode only.
func NewCaseIntakeFlow(extractor StepExtractor) *CaseIntakeFlow {
	return &CaseIntakeFlow{extractor: extractor}
}

// Name returns the flow name stored in FlowContext.
func (f *CaseIntakeFlow) Name() string {
	return models.FlowCaseIntake
}

// Advance processes one turn, smart mode first.
func (f *CaseIntakeFlow) Advance(ctx context.Context, fctx *models.FlowContext, userInput string, history []models.Turn) *Result {
	if f.extractor != nil {
		res, err := f.extractor.AdvanceFlowStep(ctx, f.Name(), fctx.Step, fctx.Data, userInput, history)
		if err == nil && res.NextStep <= stepComplete {
			fctx.Merge(res.Extracted)
			fctx.Step = res.NextStep
			return &Result{
				Reply:             res.Reply,
				Done:              res.Done,
				CompletionMessage: res.CompletionMessage,
			}
		}
		if err != nil {
			log.Printf("Warning: intake flow falling back for this turn: %v", err)
		}
	}
	return f.fallback(fctx, userInput)
}

// fallback is the deterministic rule-based handler. It always
// produces a valid transition.
func (f *CaseIntakeFlow) fallback(fctx *models.FlowContext, userInput string) *Result {
	if isExitRequest(userInput) {
		// Collected data stays in place so the flow can be resumed.
		fctx.Step = 0
		return &Result{Reply: "No problem! You can always come back to complete your case setup later. Is there anything else I can help you with regarding legal matters?"}
	}

	if isDiversion(userInput) {
		question, ok := intakeQuestions[fctx.Step]
		if !ok {
			question = intakeQuestions[stepReference]
		}
		return &Result{Reply: wittyRedirect() + question}
	}

	switch fctx.Step {
	case stepReference:
		if ref := referencePattern.FindString(strings.ToUpper(userInput)); ref != "" {
			fctx.Merge(map[string]string{"reference_number": ref})
		} else {
			fctx.Merge(map[string]string{"reference_number": userInput})
		}
		// The reference message sometimes carries the outcome too.
		if outcome := matchOutcomeKeyword(userInput); outcome != "" {
			fctx.Merge(map[string]string{"outcome": outcome})
			fctx.Step = stepUrgency
			return &Result{Reply: intakeQuestions[stepUrgency]}
		}
		fctx.Step = stepOutcome
		return &Result{Reply: intakeQuestions[stepOutcome]}

	case stepOutcome:
		outcome := matchOutcomeKeyword(userInput)
		if outcome == "" {
			outcome = userInput
		}
		fctx.Merge(map[string]string{"outcome": outcome})
		fctx.Step = stepUrgency
		return &Result{Reply: intakeQuestions[stepUrgency]}

	case stepUrgency:
		fctx.Merge(map[string]string{"urgency": userInput})
		fctx.Step = stepLanguage
		return &Result{Reply: intakeQuestions[stepLanguage]}

	case stepLanguage:
		fctx.Merge(map[string]string{"language": userInput})
		fctx.Step = stepContact
		return &Result{Reply: intakeQuestions[stepContact]}

	case stepContact:
		// An email marker plus a digit means the message carries the
		// full contact details, so skip straight to verification.
		if !hasContactHeuristic(userInput) {
			return &Result{Reply: "I'll need your full name, an email address, and a phone number all together. " + intakeQuestions[stepContact]}
		}
		fctx.Merge(map[string]string{"contact_details": userInput})
		fctx.Step = stepOTP
		return &Result{Reply: intakeQuestions[stepOTP]}

	case stepOTP:
		token := strings.TrimSpace(userInput)
		if !otpPattern.MatchString(token) {
			return &Result{Reply: "That code doesn't look right. " + intakeQuestions[stepOTP]}
		}
		fctx.Merge(map[string]string{"otp": token})
		fctx.Step = stepComplete
		return &Result{
			Reply:             "Perfect! Your case has been successfully registered. Click here to check your newly created profile.",
			Done:              true,
			CompletionMessage: intakeCompletionMessage,
		}

	default:
		// Unknown step, restart from the reference question.
		fctx.Step = stepReference
		return &Result{Reply: intakeQuestions[stepReference]}
	}
}

// matchOutcomeKeyword returns the first outcome keyword present in
// the input, or "".
func matchOutcomeKeyword(input string) string {
	lower := strings.ToLower(input)
	for _, kw := range outcomeKeywords {
		if strings.Contains(lower, kw) {
			return kw
		}
	}
	return ""
}

// hasContactHeuristic reports whether a message plausibly contains
// full contact details: an email marker plus at least one digit.
func hasContactHeuristic(input string) bool {
	if !strings.Contains(input, "@") {
		return false
	}
	for _, r := range input {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
