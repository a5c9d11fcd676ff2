package models

// Step is one stage of the booking workflow.
type Step string

const (
	StepClientInfo   Step = "client-info"
	StepFlights      Step = "flights"
	StepHotels       Step = "hotels"
	StepConfirmation Step = "confirmation"
)

// WorkflowSteps is the strict forward order of the booking workflow.
// No skipping forward; back navigation may jump to any visited step.
func WorkflowSteps() []Step {
	return []Step{StepClientInfo, StepFlights, StepHotels, StepConfirmation}
}
