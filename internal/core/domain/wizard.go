package domain

// WizardStep is a business-setup stage. Steps only move forward.
type WizardStep int

const (
	StepInfo WizardStep = iota
	StepCategories
	StepProducts
	StepServices
	StepDone
)

func (s WizardStep) String() string {
	switch s {
	case StepInfo:
		return "info"
	case StepCategories:
		return "categories"
	case StepProducts:
		return "products"
	case StepServices:
		return "services"
	default:
		return "done"
	}
}

// WizardState is the progress of one wizard instance.
type WizardState struct {
	CurrentStep WizardStep `json:"current_step"`
	Completed   bool       `json:"completed"`
	// Payloads holds the acknowledged result of each finished step, in order.
	Payloads []StepPayload `json:"payloads"`
}

// StepPayload records what a step persisted.
type StepPayload struct {
	Step       WizardStep    `json:"step"`
	Info       *BusinessInfo `json:"info,omitempty"`
	Categories []string      `json:"categories,omitempty"`
	Products   []Product     `json:"products,omitempty"`
	Services   []Service     `json:"services,omitempty"`
}

// Terminal reports whether no further transitions are possible.
func (w WizardState) Terminal() bool {
	return w.Completed || w.CurrentStep >= StepDone
}
