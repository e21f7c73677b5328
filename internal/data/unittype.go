package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// UnitTemplate holds the static stats of one unit kind as loaded from YAML.
// The content package turns it into a runtime blueprint.
type UnitTemplate struct {
	Name                  string            `yaml:"name"`
	Health                float64           `yaml:"health"`
	Armor                 float64           `yaml:"armor"`
	HitSize               float64           `yaml:"hit_size"`
	Drag                  float64           `yaml:"drag"`
	Speed                 float64           `yaml:"speed"`
	Accel                 float64           `yaml:"accel"`
	RotateSpeed           float64           `yaml:"rotate_speed"`
	Range                 float64           `yaml:"range"`
	FallSpeed             float64           `yaml:"fall_speed"`
	RiseSpeed             float64           `yaml:"rise_speed"`
	Flying                bool              `yaml:"flying"`
	CanBoost              bool              `yaml:"can_boost"`
	Hovering              bool              `yaml:"hovering"`
	AmmoCapacity          float64           `yaml:"ammo_capacity"`
	Ammo                  AmmoTemplate      `yaml:"ammo"`
	ItemCapacity          int               `yaml:"item_capacity"`
	Immunities            []string          `yaml:"immunities"`
	Weapons               []WeaponTemplate  `yaml:"weapons"`
	Abilities             []AbilityTemplate `yaml:"abilities"`
	Controller            string            `yaml:"controller"` // ground, flying
	Script                string            `yaml:"script"`     // Lua behaviour prefix, optional
	CrashDamageMultiplier float64           `yaml:"crash_damage_multiplier"`
	LandShake             float64           `yaml:"land_shake"`
	EngineOffset          float64           `yaml:"engine_offset"`
	EngineSize            float64           `yaml:"engine_size"`
	WreckRegions          int               `yaml:"wreck_regions"`
	FallEffect            string            `yaml:"fall_effect"`
	FallThrusterEffect    string            `yaml:"fall_thruster_effect"`
	DeathSound            string            `yaml:"death_sound"`
}

// AmmoTemplate selects how a unit kind resupplies ammunition.
// Kind "item" pulls Item from the closest allied core within Range;
// kind "script" delegates to the unit's Lua script.
type AmmoTemplate struct {
	Kind       string  `yaml:"kind"`
	Item       string  `yaml:"item"`
	Multiplier float64 `yaml:"multiplier"`
	Range      float64 `yaml:"range"`
}

type WeaponTemplate struct {
	Name   string  `yaml:"name"`
	Reload float64 `yaml:"reload"`
}

// AbilityTemplate is a tagged union; Kind picks which params apply.
type AbilityTemplate struct {
	Kind     string  `yaml:"kind"` // regen, status_field
	Amount   float64 `yaml:"amount"`
	Reload   float64 `yaml:"reload"`
	Range    float64 `yaml:"range"`
	Status   string  `yaml:"status"`
	Duration float64 `yaml:"duration"`
}

type unitTypeFile struct {
	Units []UnitTemplate `yaml:"units"`
}

// UnitTable holds all unit templates indexed by name, plus load order.
type UnitTable struct {
	templates map[string]*UnitTemplate
	order     []string
}

// LoadUnitTable loads unit templates from a YAML file.
func LoadUnitTable(path string) (*UnitTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read unit_types: %w", err)
	}
	return ParseUnitTable(raw)
}

// ParseUnitTable decodes unit templates and fills defaults.
func ParseUnitTable(raw []byte) (*UnitTable, error) {
	var f unitTypeFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse unit_types: %w", err)
	}
	t := &UnitTable{templates: make(map[string]*UnitTemplate, len(f.Units))}
	for i := range f.Units {
		u := &f.Units[i]
		if u.Name == "" {
			return nil, fmt.Errorf("unit_types: entry %d has no name", i)
		}
		if _, dup := t.templates[u.Name]; dup {
			return nil, fmt.Errorf("unit_types: duplicate unit %q", u.Name)
		}
		applyUnitDefaults(u)
		t.templates[u.Name] = u
		t.order = append(t.order, u.Name)
	}
	return t, nil
}

func applyUnitDefaults(u *UnitTemplate) {
	if u.Health <= 0 {
		u.Health = 200
	}
	if u.HitSize <= 0 {
		u.HitSize = 6
	}
	if u.Drag == 0 {
		u.Drag = 0.3
	}
	if u.Accel == 0 {
		u.Accel = 0.5
	}
	if u.RotateSpeed == 0 {
		u.RotateSpeed = 5
	}
	if u.FallSpeed == 0 {
		u.FallSpeed = 0.018
	}
	if u.RiseSpeed == 0 {
		u.RiseSpeed = 0.08
	}
	if u.CrashDamageMultiplier == 0 {
		u.CrashDamageMultiplier = 1
	}
	if u.Controller == "" {
		if u.Flying {
			u.Controller = "flying"
		} else {
			u.Controller = "ground"
		}
	}
	if u.FallEffect == "" {
		u.FallEffect = "fall-smoke"
	}
	if u.FallThrusterEffect == "" {
		u.FallThrusterEffect = "fall-thruster"
	}
	if u.DeathSound == "" {
		u.DeathSound = "bang"
	}
	if u.Ammo.Multiplier == 0 {
		u.Ammo.Multiplier = 1
	}
	if u.Ammo.Kind == "" {
		u.Ammo.Kind = "item"
	}
	if u.Ammo.Item == "" {
		u.Ammo.Item = "copper"
	}
	if u.Ammo.Range == 0 {
		u.Ammo.Range = 220
	}
}

// Get returns a unit template by name, or nil if not found.
func (t *UnitTable) Get(name string) *UnitTemplate {
	return t.templates[name]
}

// All returns templates in file order.
func (t *UnitTable) All() []*UnitTemplate {
	out := make([]*UnitTemplate, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.templates[name])
	}
	return out
}

// Count returns the number of loaded templates.
func (t *UnitTable) Count() int {
	return len(t.templates)
}
