package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MapLayout describes the playfield: floor layout, walls, wave spawn points,
// team cores and production blocks. Coordinates are in tiles.
type MapLayout struct {
	Width        int            `yaml:"width"`
	Height       int            `yaml:"height"`
	TileSize     float64        `yaml:"tile_size"`
	DefaultFloor string         `yaml:"default_floor"`
	Regions      []FloorRegion  `yaml:"regions"`
	Walls        []TilePos      `yaml:"walls"`
	Spawns       []TilePos      `yaml:"spawns"`
	Cores        []CoreSpawn    `yaml:"cores"`
	Factories    []FactorySpawn `yaml:"factories"`
}

type TilePos struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// FloorRegion paints a rectangle of tiles with one floor.
type FloorRegion struct {
	Floor string `yaml:"floor"`
	X     int    `yaml:"x"`
	Y     int    `yaml:"y"`
	W     int    `yaml:"w"`
	H     int    `yaml:"h"`
}

type CoreSpawn struct {
	Team     int            `yaml:"team"`
	X        int            `yaml:"x"`
	Y        int            `yaml:"y"`
	CapBonus int            `yaml:"cap_bonus"`
	Items    map[string]int `yaml:"items"`
}

type FactorySpawn struct {
	Block string `yaml:"block"`
	Team  int    `yaml:"team"`
	X     int    `yaml:"x"`
	Y     int    `yaml:"y"`
}

func LoadMapLayout(path string) (*MapLayout, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map: %w", err)
	}
	var m MapLayout
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse map: %w", err)
	}
	if m.Width <= 0 || m.Height <= 0 {
		return nil, fmt.Errorf("map: invalid size %dx%d", m.Width, m.Height)
	}
	if m.TileSize <= 0 {
		m.TileSize = 8
	}
	return &m, nil
}
