package world

import "go.uber.org/zap"

// The Apply methods carry out decisions broadcast by the authority. Every
// node, the authority included, changes unit state only through them.

func (ws *State) ApplyDeath(id int32) {
	u := ws.Unit(id)
	if u == nil {
		ws.log.Debug("death for unknown unit", zap.Int32("unit", id))
		return
	}
	ws.sim.MarkDead(u)
}

func (ws *State) ApplyCapDeath(id int32) {
	if u := ws.Unit(id); u != nil {
		ws.sim.CapKill(u)
	}
}

func (ws *State) ApplyDespawn(id int32) {
	if u := ws.Unit(id); u != nil {
		ws.sim.Despawn(u)
	}
}

func (ws *State) ApplyFactorySpawn(factoryID int32, spawned int) {
	f := ws.Factory(factoryID)
	if f == nil {
		ws.log.Debug("spawn for unknown factory", zap.Int32("factory", factoryID))
		return
	}
	f.ApplySpawned(spawned)
}
