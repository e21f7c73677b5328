package world

import "math"

// AOIGrid is a cell-based spatial index over unit positions. Range queries
// return candidates from every cell the query circle touches; callers do the
// exact distance check.
// Accessed only from the game loop goroutine, no locks.

const cellSize = 64.0

type cellKey struct {
	cx int32
	cy int32
}

func toCellCoord(v float64) int32 {
	return int32(math.Floor(v / cellSize))
}

type AOIGrid struct {
	cells map[cellKey]map[int32]struct{}
	where map[int32]cellKey
}

func NewAOIGrid() *AOIGrid {
	return &AOIGrid{
		cells: make(map[cellKey]map[int32]struct{}),
		where: make(map[int32]cellKey),
	}
}

func (g *AOIGrid) key(x, y float64) cellKey {
	return cellKey{cx: toCellCoord(x), cy: toCellCoord(y)}
}

// Add places a unit into the grid. Adding an indexed unit moves it.
func (g *AOIGrid) Add(id int32, x, y float64) {
	if _, ok := g.where[id]; ok {
		g.Move(id, x, y)
		return
	}
	k := g.key(x, y)
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[int32]struct{})
		g.cells[k] = cell
	}
	cell[id] = struct{}{}
	g.where[id] = k
}

func (g *AOIGrid) Remove(id int32) {
	k, ok := g.where[id]
	if !ok {
		return
	}
	delete(g.where, id)
	cell := g.cells[k]
	delete(cell, id)
	if len(cell) == 0 {
		delete(g.cells, k)
	}
}

// Move updates a unit's cell when its position changes.
func (g *AOIGrid) Move(id int32, x, y float64) {
	old, ok := g.where[id]
	if !ok {
		return
	}
	k := g.key(x, y)
	if old == k {
		return
	}
	g.Remove(id)
	g.Add(id, x, y)
}

func (g *AOIGrid) Len() int { return len(g.where) }

// Nearby returns the IDs in all cells overlapping the square around (x, y)
// with half-size r.
func (g *AOIGrid) Nearby(x, y, r float64) []int32 {
	x0, x1 := toCellCoord(x-r), toCellCoord(x+r)
	y0, y1 := toCellCoord(y-r), toCellCoord(y+r)
	var result []int32
	for cx := x0; cx <= x1; cx++ {
		for cy := y0; cy <= y1; cy++ {
			for id := range g.cells[cellKey{cx: cx, cy: cy}] {
				result = append(result, id)
			}
		}
	}
	return result
}
