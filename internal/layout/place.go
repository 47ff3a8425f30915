package layout

import (
	"math"

	"combc/internal/ir"
)

type grid struct {
	occupied map[[2]int]bool
}

func newGrid() *grid { return &grid{occupied: make(map[[2]int]bool)} }

func (g *grid) free(x, y int) bool { return !reserved(x, y) && !g.occupied[[2]int{x, y}] }

func (g *grid) occupy(x, y int) { g.occupied[[2]int{x, y}] = true }

// boustrophedonCursor yields the next candidate cell for non-I/O
// placement: each row scanned in alternating direction across a fixed
// width centered at -width/2.
type boustrophedonCursor struct {
	width       int
	row         int
	col         int
	leftToRight bool
}

func (c *boustrophedonCursor) next() (int, int) {
	if c.col >= c.width {
		c.row++
		c.leftToRight = !c.leftToRight
		c.col = 0
	}
	x := -c.width/2 + c.col
	if !c.leftToRight {
		x = c.width/2 - c.col
	}
	y := c.row
	c.col++
	return x, y
}

func approxWidth(nonIOCount int) int {
	w := int(math.Ceil(math.Sqrt(float64(nonIOCount))))
	if w < 4 {
		w = 4
	}
	return w * 2
}

// Place performs the initial placement pass: Inputs fill row y=1 first,
// then Outputs after a one-cell separator, then every other placeable
// node fills rows y=2,3,… boustrophedon.
func Place(m *ir.Module) {
	g := newGrid()
	var inputs, outputs, others []int
	for i, n := range m.Nodes {
		if n.IsRemoved() || n.Kind == ir.KindMultiDriver || n.Kind == ir.KindPlaceHolder {
			continue
		}
		switch n.Kind {
		case ir.KindInput:
			inputs = append(inputs, i)
		case ir.KindOutput:
			outputs = append(outputs, i)
		default:
			others = append(others, i)
		}
	}

	x, y := -m.PortCount/2, 1
	for _, idx := range inputs {
		for !g.free(x, y) {
			x++
		}
		m.Nodes[idx].Pos = &ir.Pos{X: x, Y: y}
		g.occupy(x, y)
		x++
	}

	x++ // separator cell between inputs and outputs
	for _, idx := range outputs {
		for !g.free(x, y) {
			x++
		}
		m.Nodes[idx].Pos = &ir.Pos{X: x, Y: y}
		g.occupy(x, y)
		x++
	}

	cur := &boustrophedonCursor{width: approxWidth(len(others)), row: 2, leftToRight: true}
	for _, idx := range others {
		for {
			cx, cy := cur.next()
			if g.free(cx, cy) {
				m.Nodes[idx].Pos = &ir.Pos{X: cx, Y: cy}
				g.occupy(cx, cy)
				break
			}
		}
	}
}
