package link

// StateName names a link state.
type StateName string

// Link states. Only Prod and Setup can be set.
const (
	Prod    StateName = "prod"
	Setup   StateName = "setup"
	L3      StateName = "l3"
	Unknown StateName = "unknown"
)

// Settable reports whether a config can be pushed for the state.
func (n StateName) Settable() bool {
	return n == Prod || n == Setup
}

// State is the result of reconciling a device's config.
type State struct {
	Name StateName
	// Detail describes the actual config of an unknown state.
	Detail string
}

func (s State) String() string {
	if s.Detail == "" {
		return string(s.Name)
	}
	return string(s.Name) + ": " + s.Detail
}

// DesiredState pairs a settable state with the config that realises it.
type DesiredState struct {
	Name   StateName
	Config LinkConfig
}

// DesiredStates is consulted in order; the first match wins.
type DesiredStates []DesiredState

// Lookup returns the config for name.
func (d DesiredStates) Lookup(name StateName) (LinkConfig, bool) {
	for _, s := range d {
		if s.Name == name {
			return s.Config, true
		}
	}
	return LinkConfig{}, false
}

// Reconcile names the actual config. Routed ports are l3 regardless of the
// desired states.
func Reconcile(desired DesiredStates, actual LinkConfig) State {
	if actual.L2Disabled {
		return State{Name: L3}
	}
	for _, s := range desired {
		if s.Config.Equal(actual) {
			return State{Name: s.Name}
		}
	}
	return State{Name: Unknown, Detail: actual.Describe()}
}
