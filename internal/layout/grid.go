// Package layout places every placeable IR node on an infinite integer
// grid and routes wire links between them.
package layout

import "combc/internal/ir"

const (
	poleSpacingX = 18
	poleSpacingY = 9
	maxDist2     = 81 // MAX_DIST = 9.0, squared
)

// emod is Euclidean mod: always non-negative, as the reserved-cell
// rule requires.
func emod(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

// reserved reports whether grid cell (x, y) is set aside for power poles.
func reserved(x, y int) bool {
	return (emod(x, poleSpacingX) == 0 || emod(x, poleSpacingX) == 1) && emod(y, poleSpacingY) == 0
}

// isCombinator reports whether a node kind occupies a half-cell offset.
func isCombinator(k ir.Kind) bool {
	switch k {
	case ir.KindBinOp, ir.KindBinOpSame, ir.KindBinOpCmpGate:
		return true
	default:
		return false
	}
}

// truePos computes a node's emission position: (grid_x, grid_y*2+offset_y).
func truePos(n ir.Node) (float64, float64) {
	offsetY := 0.0
	if isCombinator(n.Kind) {
		offsetY = 0.5
	}
	return float64(n.Pos.X), float64(n.Pos.Y)*2 + offsetY
}

// TruePos exports truePos for the blueprint emitter, which needs the
// same half-cell-aligned coordinates the router used for distance checks.
func TruePos(n ir.Node) (float64, float64) { return truePos(n) }

func dist2(ax, ay, bx, by float64) float64 {
	dx, dy := ax-bx, ay-by
	return dx*dx + dy*dy
}
