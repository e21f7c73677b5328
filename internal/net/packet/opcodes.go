package packet

// Replica → authority.
const (
	C_KILL_REQUEST    byte = 1
	C_DESPAWN_REQUEST byte = 2
	C_HELLO           byte = 3
	C_PLAYER_JOIN     byte = 4
	C_PLAYER_INPUT    byte = 5
	C_PLAYER_LEAVE    byte = 6
)

// Authority → replicas.
const (
	S_UNIT_DEATH     byte = 64
	S_UNIT_CAP_DEATH byte = 65
	S_UNIT_DESPAWN   byte = 66
	S_UNIT_SPAWN     byte = 67
	S_FACTORY_SPAWN  byte = 68
	S_WELCOME        byte = 69
)
