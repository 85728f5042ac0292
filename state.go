package lazyroute

// State is the load state of a Bundle.
type State uint8

const (
	// Idle means no load has been started.
	Idle State = iota
	// Pending means the current loader has been invoked and has not settled.
	Pending
	// Loaded means the current loader resolved; Snapshot.Value holds the
	// unwrapped module value.
	Loaded
	// Failed means the current loader returned an error; Snapshot.Err
	// holds it.
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Snapshot is a consistent read of a Bundle's state. At most one of Err and
// Value is set.
type Snapshot struct {
	State State
	Err   error
	Value any
}

// Settled reports whether the load finished, successfully or not.
func (s Snapshot) Settled() bool {
	return s.State == Loaded || s.State == Failed
}
