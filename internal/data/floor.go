package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Floor is the ground layer of a tile.
type Floor struct {
	Name           string  `yaml:"name"`
	DragMultiplier float64 `yaml:"drag_multiplier"`
	DamageTaken    float64 `yaml:"damage_taken"` // per time unit, continuous
	Solid          bool    `yaml:"solid"`
}

// StatusEffect is a timed modifier applied to units.
type StatusEffect struct {
	Name             string  `yaml:"name"`
	SpeedMultiplier  float64 `yaml:"speed_multiplier"`
	HealthMultiplier float64 `yaml:"health_multiplier"`
	Damage           float64 `yaml:"damage"` // per time unit
}

type floorListFile struct {
	Floors   []Floor        `yaml:"floors"`
	Statuses []StatusEffect `yaml:"statuses"`
}

// EnvTable holds floors and status effects; both are small and ship in one file.
type EnvTable struct {
	floors   map[string]*Floor
	statuses map[string]*StatusEffect
}

func LoadEnvTable(path string) (*EnvTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	var f floorListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return NewEnvTable(f.Floors, f.Statuses), nil
}

func NewEnvTable(floors []Floor, statuses []StatusEffect) *EnvTable {
	t := &EnvTable{
		floors:   make(map[string]*Floor, len(floors)),
		statuses: make(map[string]*StatusEffect, len(statuses)),
	}
	for i := range floors {
		fl := floors[i]
		if fl.DragMultiplier == 0 {
			fl.DragMultiplier = 1
		}
		t.floors[fl.Name] = &fl
	}
	for i := range statuses {
		st := statuses[i]
		if st.SpeedMultiplier == 0 {
			st.SpeedMultiplier = 1
		}
		if st.HealthMultiplier == 0 {
			st.HealthMultiplier = 1
		}
		t.statuses[st.Name] = &st
	}
	return t
}

func (t *EnvTable) Floor(name string) *Floor { return t.floors[name] }

func (t *EnvTable) Status(name string) *StatusEffect { return t.statuses[name] }

func (t *EnvTable) FloorCount() int { return len(t.floors) }

func (t *EnvTable) StatusCount() int { return len(t.statuses) }
