package unit

// Sensor names a value external logic may read from a unit.
type Sensor int

const (
	SenseTotalItems Sensor = iota
	SenseItemCapacity
	SenseRotation
	SenseHealth
	SenseMaxHealth
	SenseX
	SenseY
	SenseTeam
	SenseShooting
	SenseShootX
	SenseShootY
	SenseFlag
	SenseAmmo
	SenseAmmoCapacity
	SenseElevation
	SenseDead
	SenseType // object
	SenseName // object
)

var sensorNames = map[Sensor]string{
	SenseTotalItems:   "total_items",
	SenseItemCapacity: "item_capacity",
	SenseRotation:     "rotation",
	SenseHealth:       "health",
	SenseMaxHealth:    "max_health",
	SenseX:            "x",
	SenseY:            "y",
	SenseTeam:         "team",
	SenseShooting:     "shooting",
	SenseShootX:       "shoot_x",
	SenseShootY:       "shoot_y",
	SenseFlag:         "flag",
	SenseAmmo:         "ammo",
	SenseAmmoCapacity: "ammo_capacity",
	SenseElevation:    "elevation",
	SenseDead:         "dead",
	SenseType:         "type",
	SenseName:         "name",
}

func (s Sensor) String() string {
	if n, ok := sensorNames[s]; ok {
		return n
	}
	return "unknown"
}

// NumericSensors lists every sensor with a numeric reading, in a stable order.
func NumericSensors() []Sensor {
	out := make([]Sensor, 0, int(SenseDead)+1)
	for s := SenseTotalItems; s <= SenseDead; s++ {
		out = append(out, s)
	}
	return out
}

// Sense returns a numeric reading. Object sensors and unknown sensors read 0.
func (u *Unit) Sense(s Sensor) float64 {
	switch s {
	case SenseTotalItems:
		return float64(u.Stack.Amount)
	case SenseItemCapacity:
		return float64(u.typ.ItemCapacity)
	case SenseRotation:
		return u.Rotation
	case SenseHealth:
		return u.Health
	case SenseMaxHealth:
		return u.MaxHealth
	case SenseX:
		return u.X
	case SenseY:
		return u.Y
	case SenseTeam:
		return float64(u.Team)
	case SenseShooting:
		return boolNum(u.IsShooting())
	case SenseShootX:
		return u.AimX()
	case SenseShootY:
		return u.AimY()
	case SenseFlag:
		return u.Flag
	case SenseAmmo:
		return u.Ammo
	case SenseAmmoCapacity:
		return u.typ.AmmoCapacity
	case SenseElevation:
		return u.Elevation
	case SenseDead:
		return boolNum(u.Dead)
	default:
		return 0
	}
}

// SenseObject returns an object reading. ok is false when the sensor has no
// object form; a player-name query on an AI unit returns (nil, true).
func (u *Unit) SenseObject(s Sensor) (any, bool) {
	switch s {
	case SenseType:
		return u.typ, true
	case SenseName:
		if p := u.Player(); p != nil {
			return p.PlayerName(), true
		}
		return nil, true
	default:
		return nil, false
	}
}

// SenseItem returns how much of the named item the unit carries.
func (u *Unit) SenseItem(name string) float64 {
	if u.Stack.Empty() || u.Stack.Item.Name != name {
		return 0
	}
	return float64(u.Stack.Amount)
}

func boolNum(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
