package tts

// StateType represents the current state of a preview session.
type StateType int

const (
	// StateIdle indicates no preview is active and no resource is held.
	StateIdle StateType = iota
	// StateRequesting indicates a preview request is in flight.
	StateRequesting
	// StatePlaying indicates preview audio is playing.
	StatePlaying
)

// String returns the string representation of the state.
func (s StateType) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// IsActive returns true if a preview session is live in this state.
func (s StateType) IsActive() bool {
	return s == StateRequesting || s == StatePlaying
}

// StateMachine manages preview state transitions. The normal path is
// Idle -> Requesting -> Playing -> Idle; both active states short-circuit
// back to Idle on stop, invalidation, failure, or teardown.
type StateMachine struct {
	current     StateType
	transitions map[StateType][]StateType
	onEnter     map[StateType]func()
	onExit      map[StateType]func()
}

// NewStateMachine creates a state machine with the valid preview
// transitions.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StateIdle,
		transitions: map[StateType][]StateType{
			StateIdle:       {StateRequesting},
			StateRequesting: {StatePlaying, StateIdle},
			StatePlaying:    {StateIdle},
		},
		onEnter: make(map[StateType]func()),
		onExit:  make(map[StateType]func()),
	}
}

// Transition attempts to transition to the specified state and reports
// whether the transition was valid.
func (sm *StateMachine) Transition(to StateType) bool {
	valid := false
	for _, state := range sm.transitions[sm.current] {
		if state == to {
			valid = true
			break
		}
	}
	if !valid {
		return false
	}

	if exitFn, ok := sm.onExit[sm.current]; ok && exitFn != nil {
		exitFn()
	}

	sm.current = to

	if enterFn, ok := sm.onEnter[to]; ok && enterFn != nil {
		enterFn()
	}

	return true
}

// Current returns the current state.
func (sm *StateMachine) Current() StateType {
	return sm.current
}

// OnEnter registers a callback for entering a state.
func (sm *StateMachine) OnEnter(state StateType, fn func()) {
	sm.onEnter[state] = fn
}

// OnExit registers a callback for exiting a state. Exit callbacks are where
// resource cleanup lives: every path out of Requesting and Playing runs
// them, so no invalidation trigger can skip a release.
func (sm *StateMachine) OnExit(state StateType, fn func()) {
	sm.onExit[state] = fn
}
