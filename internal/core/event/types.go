package event

// Unit lifecycle notifications. Payloads are plain values so listeners never
// hold a reference to a unit that may already be discarded.

type UnitCreated struct {
	UnitID  int32
	Team    int
	Type    string
	Factory int32 // 0 when not produced by a block
}

type UnitDestroyed struct {
	UnitID        int32
	Team          int
	Type          string
	X, Y          float64
	Explosiveness float64
	Flying        bool
}

// SelfDestruct fires when a locally controlled unit dies carrying enough
// explosive cargo to count as a deliberate detonation.
type SelfDestruct struct {
	UnitID        int32
	Explosiveness float64
}

type UnitCapKilled struct {
	UnitID int32
	Team   int
	Type   string
}

type UnitDespawned struct {
	UnitID int32
	Team   int
	Type   string
}

type UnitLanded struct {
	UnitID int32
}
