package onboarding

// Step is one stage of the onboarding wizard.
type Step struct {
	ID                int    `json:"id"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	RequiresSignature bool   `json:"requires_signature"`
}

// StepState describes how a step relates to the current position, which drives the indicator row.
type StepState string

const (
	StepComplete StepState = "complete"
	StepCurrent  StepState = "current"
	StepUpcoming StepState = "upcoming"
)

// DefaultSteps returns the four stage client onboarding sequence.
func DefaultSteps() []Step {
	return []Step{
		{ID: 1, Title: "Client Details", Description: "Basic information about your client"},
		{ID: 2, Title: "Project Information", Description: "Details about the project scope"},
		{ID: 3, Title: "Sign Agreement", Description: "Review and sign the service agreement", RequiresSignature: true},
		{ID: 4, Title: "Complete", Description: "Onboarding complete!"},
	}
}
