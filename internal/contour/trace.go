package contour

import (
	"maps"
	"math"
	"slices"
	"sort"

	"github.com/njchilds90/dimplot/internal/diag"
)

// refineSteps is the number of bisections that place a crossing on its edge.
const refineSteps = 40

// Point is a position in data coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polyline is one connected piece of a level set.
type Polyline struct {
	Points []Point `json:"points"`
	Closed bool    `json:"closed"`
}

func (pl *Polyline) add(p Point) {
	if n := len(pl.Points); n > 0 && pl.Points[n-1] == p {
		return
	}
	pl.Points = append(pl.Points, p)
}

// Trace samples f and returns the polylines of f(x, y) = opts.Level.
func Trace(f Field, opts Options) ([]Polyline, error) {
	g, err := Sample(f, opts)
	if err != nil {
		return nil, err
	}
	return TraceGrid(g, opts.Level)
}

// TraceGrid extracts the level set from an already sampled grid with
// marching squares. Cells with a non-finite corner draw nothing, and an
// edge whose sign change is a pole or a jump carries no crossing. A grid
// that never reaches level yields no polylines.
func TraceGrid(g *Grid, level float64) ([]Polyline, error) {
	if g.Finite() == 0 {
		return nil, diag.Backend("no finite samples in the plotted region", nil)
	}
	if !g.Brackets(level) {
		return nil, nil
	}
	t := &tracer{g: g, level: level, edges: map[int]crossing{}, links: map[int][]int{}}
	cols, rows := g.Dims()
	for r := range rows - 1 {
		for c := range cols - 1 {
			t.cell(c, r)
		}
	}
	lines := t.polylines()
	sort.Slice(lines, func(i, j int) bool {
		pi, pj := lines[i].Points[0], lines[j].Points[0]
		if pi.X != pj.X {
			return pi.X < pj.X
		}
		return pi.Y < pj.Y
	})
	return lines, nil
}

type crossing struct {
	at Point
	ok bool
}

// tracer joins edge crossings cell by cell. An edge borders at most two
// cells and ends at most one segment in each, so a crossing has at most two
// neighbours and every chain is a simple path or loop.
type tracer struct {
	g     *Grid
	level float64
	edges map[int]crossing
	links map[int][]int
}

// corners lists cell corner offsets counter-clockwise from the bottom left.
// Edge k runs from corner k to corner k+1.
var corners = [4][2]int{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// edgeID numbers edge k of cell (c, r) by its lower or left vertex:
// horizontal edges are even, vertical edges odd.
func (t *tracer) edgeID(c, r, k int) int {
	cols, _ := t.g.Dims()
	switch k {
	case 0:
		return 2 * (r*cols + c)
	case 1:
		return 2*(r*cols+c+1) + 1
	case 2:
		return 2 * ((r+1)*cols + c)
	}
	return 2*(r*cols+c) + 1
}

func (t *tracer) cell(c, r int) {
	var (
		h     [4]float64
		pts   [4]Point
		above [4]bool
	)
	for k, off := range corners {
		v := t.g.Z(c+off[0], r+off[1])
		if math.IsNaN(v) {
			return
		}
		h[k] = v - t.level
		above[k] = h[k] >= 0
		pts[k] = Point{X: t.g.X(c + off[0]), Y: t.g.Y(r + off[1])}
	}
	edge := func(k int) int {
		id := t.edgeID(c, r, k)
		if _, done := t.edges[id]; !done {
			j := (k + 1) % 4
			t.edges[id] = t.locate(pts[k], pts[j], h[k], h[j])
		}
		return id
	}

	var crossed []int
	for k := range 4 {
		if above[k] != above[(k+1)%4] {
			crossed = append(crossed, k)
		}
	}
	switch len(crossed) {
	case 2:
		t.link(edge(crossed[0]), edge(crossed[1]))
	case 4:
		// Saddle: corners on the other side from the centre are cut off.
		centre := (h[0]+h[1]+h[2]+h[3])/4 >= 0
		for k := range 4 {
			if above[k] != centre {
				t.link(edge((k+3)%4), edge(k))
			}
		}
	}
}

func (t *tracer) link(a, b int) {
	if !t.edges[a].ok || !t.edges[b].ok {
		return
	}
	t.links[a] = append(t.links[a], b)
	t.links[b] = append(t.links[b], a)
}

// locate places the crossing on the edge from a to b, whose samples ha and
// hb straddle the level. It reports no crossing when bisection closes in on
// a pole or a jump instead of a root.
func (t *tracer) locate(a, b Point, ha, hb float64) crossing {
	switch {
	case ha == 0:
		return crossing{at: a, ok: true}
	case hb == 0:
		return crossing{at: b, ok: true}
	}
	along := func(s float64) Point {
		return Point{X: a.X + s*(b.X-a.X), Y: a.Y + s*(b.Y-a.Y)}
	}
	lo, hi, vlo, vhi := 0.0, 1.0, ha, hb
	for range refineSteps {
		mid := (lo + hi) / 2
		p := along(mid)
		v := t.g.field(p.X, p.Y) - t.level
		if math.IsNaN(v) {
			return crossing{}
		}
		if (v >= 0) == (ha >= 0) {
			lo, vlo = mid, v
		} else {
			hi, vhi = mid, v
		}
	}
	if math.Abs(vlo)+math.Abs(vhi) >= math.Abs(ha)+math.Abs(hb) {
		return crossing{}
	}
	return crossing{at: along(lo + (hi-lo)*vlo/(vlo-vhi)), ok: true}
}

// polylines walks open chains from their ends first; what is left over is
// closed loops.
func (t *tracer) polylines() []Polyline {
	seen := make(map[int]bool, len(t.links))
	ids := slices.Sorted(maps.Keys(t.links))
	var out []Polyline
	for _, open := range []bool{true, false} {
		for _, id := range ids {
			if seen[id] || (open && len(t.links[id]) != 1) {
				continue
			}
			if pl := t.walk(id, seen); len(pl.Points) > 1 {
				out = append(out, pl)
			}
		}
	}
	return out
}

func (t *tracer) walk(start int, seen map[int]bool) Polyline {
	var pl Polyline
	for cur := start; cur >= 0; {
		seen[cur] = true
		pl.add(t.edges[cur].at)
		next := -1
		for _, n := range t.links[cur] {
			if !seen[n] {
				next = n
				break
			}
		}
		if next < 0 && cur != start && len(t.links[start]) == 2 && slices.Contains(t.links[cur], start) {
			pl.Points = append(pl.Points, pl.Points[0])
			pl.Closed = true
		}
		cur = next
	}
	return pl
}
