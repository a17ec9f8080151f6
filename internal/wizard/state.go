// Package wizard owns the try-on flow: step sequencing, asset selection,
// generation, retry and history-driven restoration. Transitions are computed
// by a pure reducer; side effects (image resolution, gateway calls, the
// deferred step advance) are carried out by Machine.
package wizard

// Step is the wizard position. Transitions are a function of the current step
// and explicit events, never implicit.
type Step int

const (
	StepSelectPerson Step = iota + 1
	StepSelectCloth
	StepGenerateResult
)

func (s Step) Valid() bool {
	return s >= StepSelectPerson && s <= StepGenerateResult
}

type Role int

const (
	RolePerson Role = iota
	RoleCloth
)

// State is the complete transient wizard state. It is a value: the reducer
// takes a State and returns a new one, so torn updates are never observable.
type State struct {
	Step Step

	SelectedPersonID string
	SelectedClothID  string

	// Resolved data URLs for the two selected inputs and the composite.
	PersonImage string
	ClothImage  string
	ResultImage string

	ClothPrompt      string
	GeneratingCloth  bool
	GeneratingResult bool
	ErrorMessage     string

	// Request sequence numbers per role. A completion is applied only when
	// its sequence matches the latest issued one, so a late response from a
	// superseded call can never overwrite fresher state.
	personSeq   uint64
	clothSeq    uint64
	clothGenSeq uint64
	resultSeq   uint64

	// Target of the scheduled auto-advance, zero when none is pending.
	pendingAdvance Step

	// Result from before the current try-on attempt, restored on failure.
	priorResult string
}

func initialState() State {
	return State{Step: StepSelectPerson}
}
