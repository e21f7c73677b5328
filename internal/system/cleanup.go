package system

import (
	"time"

	coresys "github.com/l1jgo/unitsim/internal/core/system"
	"github.com/l1jgo/unitsim/internal/world"
)

// CleanupSystem drops units removed during the tick from the store.
// Phase 6 (Cleanup).
type CleanupSystem struct {
	world *world.State
}

func NewCleanupSystem(ws *world.State) *CleanupSystem {
	return &CleanupSystem{world: ws}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.world.Flush()
}
