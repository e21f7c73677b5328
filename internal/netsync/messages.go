package netsync

import (
	"fmt"

	"github.com/l1jgo/unitsim/internal/control"
	"github.com/l1jgo/unitsim/internal/net/packet"
	"github.com/l1jgo/unitsim/internal/unit"
	"github.com/l1jgo/unitsim/internal/world"
)

// encodeID builds the messages whose only field is a unit ID: kill and
// despawn requests, and death, cap death and despawn decisions.
func encodeID(opcode byte, id int32) []byte {
	w := packet.NewWriterWithOpcode(opcode)
	w.WriteD(id)
	return w.Bytes()
}

func decodeID(r *packet.Reader) (int32, error) {
	id := r.ReadD()
	if r.Overflow() {
		return 0, fmt.Errorf("opcode %d: truncated", r.Opcode())
	}
	return id, nil
}

func encodeSpawn(info world.SpawnInfo) []byte {
	w := packet.NewWriterWithOpcode(packet.S_UNIT_SPAWN)
	w.WriteD(info.ID)
	w.WriteS(info.Type)
	w.WriteD(int32(info.Team))
	w.WriteF(info.X)
	w.WriteF(info.Y)
	w.WriteF(info.Rotation)
	w.WriteF(info.VelX)
	w.WriteF(info.VelY)
	w.WriteD(info.FactoryID)
	w.WriteBool(info.SpawnedByCore)
	w.WriteS(info.Player)
	return w.Bytes()
}

func decodeSpawn(r *packet.Reader) (world.SpawnInfo, error) {
	info := world.SpawnInfo{
		ID:            r.ReadD(),
		Type:          r.ReadS(),
		Team:          unit.Team(r.ReadD()),
		X:             r.ReadF(),
		Y:             r.ReadF(),
		Rotation:      r.ReadF(),
		VelX:          r.ReadF(),
		VelY:          r.ReadF(),
		FactoryID:     r.ReadD(),
		SpawnedByCore: r.ReadBool(),
		Player:        r.ReadS(),
	}
	if r.Overflow() {
		return world.SpawnInfo{}, fmt.Errorf("unit spawn: truncated")
	}
	return info, nil
}

func encodeFactorySpawn(factory int32, spawned int) []byte {
	w := packet.NewWriterWithOpcode(packet.S_FACTORY_SPAWN)
	w.WriteD(factory)
	w.WriteD(int32(spawned))
	return w.Bytes()
}

func decodeFactorySpawn(r *packet.Reader) (int32, int, error) {
	factory := r.ReadD()
	spawned := int(r.ReadD())
	if r.Overflow() {
		return 0, 0, fmt.Errorf("factory spawn: truncated")
	}
	return factory, spawned, nil
}

func encodeHello(name string) []byte {
	w := packet.NewWriterWithOpcode(packet.C_HELLO)
	w.WriteS(name)
	return w.Bytes()
}

func encodeWelcome(units int) []byte {
	w := packet.NewWriterWithOpcode(packet.S_WELCOME)
	w.WriteD(int32(units))
	return w.Bytes()
}

func encodePlayerJoin(name, typeName string, team unit.Team) []byte {
	w := packet.NewWriterWithOpcode(packet.C_PLAYER_JOIN)
	w.WriteS(name)
	w.WriteS(typeName)
	w.WriteD(int32(team))
	return w.Bytes()
}

func decodePlayerJoin(r *packet.Reader) (name, typeName string, team unit.Team, err error) {
	name = r.ReadS()
	typeName = r.ReadS()
	team = unit.Team(r.ReadD())
	if r.Overflow() || name == "" {
		return "", "", 0, fmt.Errorf("player join: truncated")
	}
	return name, typeName, team, nil
}

func encodePlayerInput(name string, in control.Input) []byte {
	w := packet.NewWriterWithOpcode(packet.C_PLAYER_INPUT)
	w.WriteS(name)
	w.WriteF(in.Move.X)
	w.WriteF(in.Move.Y)
	w.WriteF(in.AimX)
	w.WriteF(in.AimY)
	w.WriteBool(in.Shooting)
	w.WriteBool(in.Boost)
	return w.Bytes()
}

func decodePlayerInput(r *packet.Reader) (string, control.Input, error) {
	name := r.ReadS()
	var in control.Input
	in.Move.X = r.ReadF()
	in.Move.Y = r.ReadF()
	in.AimX = r.ReadF()
	in.AimY = r.ReadF()
	in.Shooting = r.ReadBool()
	in.Boost = r.ReadBool()
	if r.Overflow() {
		return "", control.Input{}, fmt.Errorf("player input: truncated")
	}
	return name, in, nil
}

func encodePlayerLeave(name string) []byte {
	w := packet.NewWriterWithOpcode(packet.C_PLAYER_LEAVE)
	w.WriteS(name)
	return w.Bytes()
}
