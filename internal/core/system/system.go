package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain network messages
	PhasePreUpdate               // 1: deliver last tick's events
	PhaseUpdate                  // 2: production + unit pipeline
	PhasePostUpdate              // 3: physics, status effects
	PhaseOutput                  // 4: flush outbound broadcasts
	PhasePersist                 // 5: snapshots + destruction log
	PhaseCleanup                 // 6: discard removed units
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseOutput:
		return "output"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
