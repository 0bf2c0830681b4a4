package tts

import "testing"

// TestStateMachineTransitions tests valid and invalid transitions.
func TestStateMachineTransitions(t *testing.T) {
	tests := []struct {
		name  string
		path  []StateType
		from  StateType
		to    StateType
		valid bool
	}{
		{"idle to requesting", nil, StateIdle, StateRequesting, true},
		{"idle to playing", nil, StateIdle, StatePlaying, false},
		{"idle to idle", nil, StateIdle, StateIdle, false},
		{"requesting to playing", []StateType{StateRequesting}, StateRequesting, StatePlaying, true},
		{"requesting to idle", []StateType{StateRequesting}, StateRequesting, StateIdle, true},
		{"playing to idle", []StateType{StateRequesting, StatePlaying}, StatePlaying, StateIdle, true},
		{"playing to requesting", []StateType{StateRequesting, StatePlaying}, StatePlaying, StateRequesting, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewStateMachine()
			for _, s := range tt.path {
				if !sm.Transition(s) {
					t.Fatalf("setup transition to %v failed", s)
				}
			}
			if sm.Current() != tt.from {
				t.Fatalf("setup ended in %v, want %v", sm.Current(), tt.from)
			}

			got := sm.Transition(tt.to)
			if got != tt.valid {
				t.Errorf("Transition(%v) = %v, want %v", tt.to, got, tt.valid)
			}

			want := tt.from
			if tt.valid {
				want = tt.to
			}
			if sm.Current() != want {
				t.Errorf("Current() = %v, want %v", sm.Current(), want)
			}
		})
	}
}

// TestStateMachineRejectedTransitionKeepsState tests that an invalid
// transition leaves the machine untouched.
func TestStateMachineRejectedTransitionKeepsState(t *testing.T) {
	sm := NewStateMachine()

	if sm.Transition(StatePlaying) {
		t.Fatal("idle -> playing should be invalid")
	}
	if sm.Current() != StateIdle {
		t.Errorf("Current() = %v, want %v", sm.Current(), StateIdle)
	}
}

// TestStateMachineHooks tests enter and exit callback ordering.
func TestStateMachineHooks(t *testing.T) {
	sm := NewStateMachine()

	var calls []string
	sm.OnExit(StateIdle, func() { calls = append(calls, "exit-idle") })
	sm.OnEnter(StateRequesting, func() { calls = append(calls, "enter-requesting") })
	sm.OnEnter(StateIdle, func() { calls = append(calls, "enter-idle") })

	sm.Transition(StateRequesting)
	sm.Transition(StateIdle)

	want := []string{"exit-idle", "enter-requesting", "enter-idle"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, calls[i], want[i])
		}
	}
}

// TestStateMachineHooksNotFiredOnInvalidTransition tests that a rejected
// transition runs no hooks.
func TestStateMachineHooksNotFiredOnInvalidTransition(t *testing.T) {
	sm := NewStateMachine()

	fired := false
	sm.OnEnter(StatePlaying, func() { fired = true })

	sm.Transition(StatePlaying)
	if fired {
		t.Error("enter hook fired on invalid transition")
	}
}

// TestStateTypeString tests the string representations.
func TestStateTypeString(t *testing.T) {
	tests := []struct {
		state    StateType
		expected string
	}{
		{StateIdle, "idle"},
		{StateRequesting, "requesting"},
		{StatePlaying, "playing"},
		{StateType(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("String() = %q, want %q", got, tt.expected)
		}
	}
}

// TestStateTypeIsActive tests the active-state predicate.
func TestStateTypeIsActive(t *testing.T) {
	if StateIdle.IsActive() {
		t.Error("idle should not be active")
	}
	if !StateRequesting.IsActive() {
		t.Error("requesting should be active")
	}
	if !StatePlaying.IsActive() {
		t.Error("playing should be active")
	}
}
