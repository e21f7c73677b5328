package system

import (
	"context"
	"time"

	"github.com/l1jgo/unitsim/internal/core/event"
	coresys "github.com/l1jgo/unitsim/internal/core/system"
	"github.com/l1jgo/unitsim/internal/persist"
	"github.com/l1jgo/unitsim/internal/unit"
	"github.com/l1jgo/unitsim/internal/world"
	"go.uber.org/zap"
)

// SnapshotStore persists the full unit set.
type SnapshotStore interface {
	SaveAll(ctx context.Context, snaps []unit.Snapshot) error
}

// DestructionStore appends destroyed-unit records.
type DestructionStore interface {
	Append(ctx context.Context, entries []persist.DestructionEntry) error
}

// maxPendingDestructions bounds the entries held while the destruction log
// is unreachable. The oldest are dropped first.
const maxPendingDestructions = 4096

// PersistenceSystem snapshots every unit on an interval and flushes the
// destruction log each tick. Authority only. Phase 5 (Persist).
type PersistenceSystem struct {
	world      *world.State
	units      SnapshotStore
	destroyed  DestructionStore
	log        *zap.Logger
	interval   int // save every N ticks
	tickCount  int
	ticks      uint64
	pending    []persist.DestructionEntry
	maxPending int
	dropped    int
}

func NewPersistenceSystem(ws *world.State, units SnapshotStore, destroyed DestructionStore, log *zap.Logger, intervalTicks int) *PersistenceSystem {
	s := &PersistenceSystem{
		world:      ws,
		units:      units,
		destroyed:  destroyed,
		log:        log,
		interval:   intervalTicks,
		maxPending: maxPendingDestructions,
	}
	if bus := ws.Sim().Bus; bus != nil {
		event.Subscribe(bus, s.onDestroyed)
	}
	return s
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) onDestroyed(e event.UnitDestroyed) {
	if len(s.pending) >= s.maxPending {
		drop := len(s.pending) - s.maxPending + 1
		s.pending = append(s.pending[:0], s.pending[drop:]...)
		if s.dropped == 0 {
			s.log.Warn("destruction log backlog full, dropping oldest entries", zap.Int("limit", s.maxPending))
		}
		s.dropped += drop
	}
	s.pending = append(s.pending, persist.DestructionEntry{
		UnitID:        e.UnitID,
		Team:          e.Team,
		Type:          e.Type,
		X:             e.X,
		Y:             e.Y,
		Explosiveness: e.Explosiveness,
		Flying:        e.Flying,
		Tick:          s.ticks,
	})
}

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.ticks++
	s.flushDestroyed()

	if s.interval <= 0 {
		return
	}
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.SaveAll()
}

// SaveAll writes a snapshot of every active unit immediately. Called on
// the interval and once more on shutdown.
func (s *PersistenceSystem) SaveAll() {
	if s.units == nil {
		return
	}
	units := s.world.Units()
	snaps := make([]unit.Snapshot, 0, len(units))
	for _, u := range units {
		snaps = append(snaps, u.Snapshot())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.units.SaveAll(ctx, snaps); err != nil {
		s.log.Error("unit snapshot failed", zap.Int("units", len(snaps)), zap.Error(err))
		return
	}
	s.log.Info("unit snapshot saved", zap.Int("units", len(snaps)))
}

func (s *PersistenceSystem) flushDestroyed() {
	if len(s.pending) == 0 || s.destroyed == nil {
		s.pending = s.pending[:0]
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.destroyed.Append(ctx, s.pending); err != nil {
		s.log.Error("destruction log failed", zap.Int("entries", len(s.pending)), zap.Error(err))
		return
	}
	if s.dropped > 0 {
		s.log.Warn("destruction log caught up", zap.Int("dropped", s.dropped))
		s.dropped = 0
	}
	s.pending = s.pending[:0]
}
