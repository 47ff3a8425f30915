package layout

import (
	"math"
	"math/rand"

	"combc/internal/errors"
	"combc/internal/ir"
)

// MaxPasses bounds the outer correct/retry loop: termination is not
// otherwise guaranteed, so a pathological layout fails loudly instead
// of spinning forever.
const MaxPasses = 64

// Route runs the outer link-generation/correct loop until every net
// connects or MaxPasses is exhausted. seed makes the correct step's
// randomized repair reproducible.
//
// A pass never commits to m.Links until every net in nets — not just
// the ones it set out to fix — has generated links successfully: a net
// that resolved cleanly in an earlier pass can still be pushed out of
// range by a later correct() repairing a different net, so "already
// good" is re-checked every pass rather than trusted. The nets that
// failed last pass are checked first as a cheap early-exit: if any of
// them is still bad, there is no point regenerating the whole net list
// before the next correct() round.
func Route(m *ir.Module, nets []*Net, seed int64) error {
	rng := rand.New(rand.NewSource(seed))
	var priority []*Net

	for pass := 0; pass < MaxPasses; pass++ {
		var bad []*Net
		for _, nt := range priority {
			if _, ok := generateLinks(m, nt); !ok {
				bad = append(bad, nt)
			}
		}
		if len(bad) > 0 {
			for _, nt := range bad {
				correct(m, nt, rng)
			}
			priority = bad
			continue
		}

		var links []ir.WireLink
		for _, nt := range nets {
			ls, ok := generateLinks(m, nt)
			if !ok {
				bad = append(bad, nt)
				continue
			}
			links = append(links, ls...)
		}
		if len(bad) == 0 {
			m.Links = links
			return nil
		}
		for _, nt := range bad {
			correct(m, nt, rng)
		}
		priority = bad
	}
	return errors.New(errors.PlacementConflict, m.Name, "", "%d net(s) failed to route after %d passes", len(priority), MaxPasses)
}

// generateLinks connects one net's endpoints pairwise, unioning
// subnets whenever two endpoints' true positions are within MAX_DIST²
// of each other, until one subnet remains (success) or a full scan
// adds nothing (failure).
func generateLinks(m *ir.Module, nt *Net) ([]ir.WireLink, bool) {
	n := len(nt.Endpoints)
	if n <= 1 {
		return nil, true
	}
	uf := newLocalUF(n)
	var links []ir.WireLink

	for {
		added := false
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if uf.find(i) == uf.find(j) {
					continue
				}
				ax, ay := truePos(m.Nodes[nt.Endpoints[i].Node])
				bx, by := truePos(m.Nodes[nt.Endpoints[j].Node])
				if dist2(ax, ay, bx, by) <= maxDist2 {
					uf.union(i, j)
					links = append(links, ir.WireLink{Color: nt.Color, A: nt.Endpoints[i], B: nt.Endpoints[j]})
					added = true
				}
			}
		}
		if uf.singleSet(n) {
			return links, true
		}
		if !added {
			return nil, false
		}
	}
}

// correct implements the repair step: interpolate each movable
// endpoint's position toward the net's centroid by a random fraction,
// skipping reserved targets and swapping with any movable occupant.
func correct(m *ir.Module, nt *Net, rng *rand.Rand) {
	var sx, sy float64
	var movable []int
	for i, ep := range nt.Endpoints {
		n := m.Nodes[ep.Node]
		sx += float64(n.Pos.X)
		sy += float64(n.Pos.Y)
		if n.Kind != ir.KindInput && n.Kind != ir.KindOutput {
			movable = append(movable, i)
		}
	}
	count := float64(len(nt.Endpoints))
	cx := int(math.Round(sx / count))
	cy := int(math.Round(sy / count))

	for _, i := range movable {
		ep := nt.Endpoints[i]
		n := &m.Nodes[ep.Node]
		frac := 0.1 + rng.Float64()*0.8
		nx := int(math.Round(float64(n.Pos.X) + frac*float64(cx-n.Pos.X)))
		ny := int(math.Round(float64(n.Pos.Y) + frac*float64(cy-n.Pos.Y)))
		if reserved(nx, ny) {
			continue
		}
		if occupant := findNodeAt(m, nx, ny, ep.Node); occupant >= 0 {
			occ := &m.Nodes[occupant]
			if occ.Kind == ir.KindInput || occ.Kind == ir.KindOutput {
				continue
			}
			occ.Pos, n.Pos = n.Pos, occ.Pos
		} else {
			n.Pos = &ir.Pos{X: nx, Y: ny}
		}
	}
}

func findNodeAt(m *ir.Module, x, y, exclude int) int {
	for i := range m.Nodes {
		if i == exclude || m.Nodes[i].Pos == nil {
			continue
		}
		if m.Nodes[i].Pos.X == x && m.Nodes[i].Pos.Y == y {
			return i
		}
	}
	return -1
}

// localUF is a throwaway union-find scoped to one net's endpoint
// indices; internal/symbols has its own copy sized to a whole module's
// node count; the two are intentionally not shared since they key off
// different index spaces (node index vs. endpoint position in a net).
type localUF struct{ parent []int }

func newLocalUF(n int) *localUF {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &localUF{parent: p}
}

func (u *localUF) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *localUF) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

func (u *localUF) singleSet(n int) bool {
	if n == 0 {
		return true
	}
	root := u.find(0)
	for i := 1; i < n; i++ {
		if u.find(i) != root {
			return false
		}
	}
	return true
}
