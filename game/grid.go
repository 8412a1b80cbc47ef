package game

import "math"

// grid is a uniform spatial hash over food, rebuilt each tick, so a player
// only checks food in the cells its circle overlaps instead of every item.
type grid struct {
	cell  float64
	cells map[[2]int][]*Food
}

func newGrid(cell float64) *grid {
	if cell <= 0 {
		cell = 128
	}
	return &grid{cell: cell, cells: make(map[[2]int][]*Food)}
}

func (g *grid) key(x, y float64) [2]int {
	return [2]int{int(math.Floor(x / g.cell)), int(math.Floor(y / g.cell))}
}

func (g *grid) insert(f *Food) {
	k := g.key(f.X, f.Y)
	g.cells[k] = append(g.cells[k], f)
}

// nearby returns all food whose cell overlaps the circle's bounding box.
// Callers still do the exact circle test; this only prunes candidates.
func (g *grid) nearby(x, y, r float64) []*Food {
	lo := g.key(x-r, y-r)
	hi := g.key(x+r, y+r)
	var out []*Food
	for cx := lo[0]; cx <= hi[0]; cx++ {
		for cy := lo[1]; cy <= hi[1]; cy++ {
			out = append(out, g.cells[[2]int{cx, cy}]...)
		}
	}
	return out
}
