package player

// State is the player's lifecycle state for its active sequence.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Disposed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Disposed:
		return "disposed"
	default:
		return "unknown"
	}
}
