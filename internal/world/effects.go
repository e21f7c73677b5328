package world

import "go.uber.org/zap"

// EffectLog is the effect sink of a headless context: it counts effects and
// traces them at debug level. Nothing here feeds back into the simulation.
type EffectLog struct {
	log    *zap.Logger
	counts map[string]int
	shakes int
	decals int
}

func NewEffectLog(log *zap.Logger) *EffectLog {
	return &EffectLog{log: log, counts: make(map[string]int)}
}

func (e *EffectLog) Effect(name string, x, y, rotation float64) {
	if name == "" {
		return
	}
	e.counts[name]++
	e.log.Debug("effect", zap.String("name", name), zap.Float64("x", x), zap.Float64("y", y))
}

func (e *EffectLog) Shake(intensity, duration, x, y float64) {
	e.shakes++
}

func (e *EffectLog) Sound(name string, x, y float64) {
	if name == "" {
		return
	}
	e.counts["sound:"+name]++
}

func (e *EffectLog) Scorch(x, y float64, size int) {
	e.counts["scorch"]++
}

func (e *EffectLog) Decal(region string, x, y, rotation float64) {
	e.decals++
}

// Count returns how often the named effect fired.
func (e *EffectLog) Count(name string) int { return e.counts[name] }

func (e *EffectLog) Shakes() int { return e.shakes }
func (e *EffectLog) Decals() int { return e.decals }
