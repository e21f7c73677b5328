package world

import (
	"fmt"
	"math"

	"github.com/l1jgo/unitsim/internal/data"
	"github.com/l1jgo/unitsim/internal/unit"
)

// Grid is the static tile map. Implements unit.Terrain.
type Grid struct {
	width    int
	height   int
	tileSize float64
	tiles    []unit.Tile
}

// NewGrid paints the layout's floors and walls. Floors not present in env
// are an error.
func NewGrid(layout *data.MapLayout, env *data.EnvTable) (*Grid, error) {
	g := &Grid{
		width:    layout.Width,
		height:   layout.Height,
		tileSize: layout.TileSize,
		tiles:    make([]unit.Tile, layout.Width*layout.Height),
	}
	if layout.DefaultFloor != "" {
		fl := env.Floor(layout.DefaultFloor)
		if fl == nil {
			return nil, fmt.Errorf("map: unknown default floor %q", layout.DefaultFloor)
		}
		for i := range g.tiles {
			g.tiles[i].Floor = fl
		}
	}
	for _, r := range layout.Regions {
		fl := env.Floor(r.Floor)
		if fl == nil {
			return nil, fmt.Errorf("map: unknown floor %q", r.Floor)
		}
		for x := r.X; x < r.X+r.W; x++ {
			for y := r.Y; y < r.Y+r.H; y++ {
				if t := g.tile(x, y); t != nil {
					t.Floor = fl
				}
			}
		}
	}
	for _, w := range layout.Walls {
		if t := g.tile(w.X, w.Y); t != nil {
			t.Solid = true
		}
	}
	return g, nil
}

func (g *Grid) tile(tx, ty int) *unit.Tile {
	if tx < 0 || ty < 0 || tx >= g.width || ty >= g.height {
		return nil
	}
	return &g.tiles[ty*g.width+tx]
}

// TileAt returns the tile under a world position, nil off the map.
func (g *Grid) TileAt(x, y float64) *unit.Tile {
	return g.tile(int(math.Floor(x/g.tileSize)), int(math.Floor(y/g.tileSize)))
}

// WorldPos returns the centre of a tile in world units.
func (g *Grid) WorldPos(p data.TilePos) unit.Vec2 {
	return unit.Vec2{
		X: (float64(p.X) + 0.5) * g.tileSize,
		Y: (float64(p.Y) + 0.5) * g.tileSize,
	}
}

func (g *Grid) setBuild(p data.TilePos, b unit.Building) {
	if t := g.tile(p.X, p.Y); t != nil {
		t.Build = b
	}
}

func (g *Grid) TileSize() float64 { return g.tileSize }
