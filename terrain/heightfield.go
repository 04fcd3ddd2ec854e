// Package terrain answers downward intersection queries against a sampled
// heightfield plus optional flat surfaces (bridges, roofs) layered on top.
package terrain

import (
	"errors"
	"math"

	"github.com/automoto/deadreckoning/shared/leveldata"
	"github.com/automoto/deadreckoning/tags"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/solarlune/resolv"
)

// resolv maps an object onto the cells covering [X, X+W-1], so objects are
// widened by one unit to cover their closed extent and the probe is one unit
// wide to land in exactly one cell.
const boundsPad = 1.0

var logger = log.WithPrefix("terrain")

var ErrEmptyTerrain = errors.New("terrain has no samples")

// facet is a heightfield quad between sample (col, row) and (col+1, row+1).
type facet struct {
	col, row int
}

// surface is a flat horizontal rectangle at height top.
type surface struct {
	x, y, w, d float64
	top        float64
}

// Heightfield is the terrain collaborator used for ground clamping. Facets and
// surfaces are resolv objects so a query only touches nearby geometry.
type Heightfield struct {
	data          *leveldata.TerrainData
	space         *resolv.Space
	probe         *resolv.Object
	width, height float64
}

// New builds a heightfield from elevation samples. Facets touching a hole are
// left out, so queries over them miss.
func New(data *leveldata.TerrainData) (*Heightfield, error) {
	if data == nil || data.Columns < 2 || data.Rows < 2 {
		return nil, ErrEmptyTerrain
	}

	cs := data.CellSize
	spaceW := int(math.Ceil(float64(data.Columns-1) * cs))
	spaceH := int(math.Ceil(float64(data.Rows-1) * cs))
	cell := max(1, int(math.Ceil(cs)))

	h := &Heightfield{
		data:   data,
		space:  resolv.NewSpace(max(spaceW, cell)+cell, max(spaceH, cell)+cell, cell, cell),
		width:  float64(data.Columns-1) * cs,
		height: float64(data.Rows-1) * cs,
	}

	holes := 0
	for row := 0; row < data.Rows-1; row++ {
		for col := 0; col < data.Columns-1; col++ {
			if h.hasHole(col, row) {
				holes++
				continue
			}
			h.addObject(float64(col)*cs, float64(row)*cs, cs, cs, facet{col: col, row: row})
		}
	}

	h.probe = resolv.NewObject(0, 0, boundsPad, boundsPad, tags.ResolvProbe)
	h.space.Add(h.probe)

	logger.Debug("built heightfield", "columns", data.Columns, "rows", data.Rows, "cellSize", cs, "holeFacets", holes)
	return h, nil
}

// AddSurface layers a flat rectangle at height top over the heightfield. The
// part of the rectangle outside the heightfield bounds is never hit.
func (h *Heightfield) AddSurface(x, y, w, d, top float64) {
	h.addObject(x, y, w, d, surface{x: x, y: y, w: w, d: d, top: top})
}

func (h *Heightfield) addObject(x, y, w, d float64, geom any) {
	obj := resolv.NewObject(x, y, w+boundsPad, d+boundsPad, tags.ResolvTerrain)
	obj.SetShape(resolv.NewRectangle(0, 0, w+boundsPad, d+boundsPad))
	obj.Data = geom
	h.space.Add(obj)
}

func (h *Heightfield) hasHole(col, row int) bool {
	return math.IsNaN(h.data.At(col, row)) ||
		math.IsNaN(h.data.At(col+1, row)) ||
		math.IsNaN(h.data.At(col, row+1)) ||
		math.IsNaN(h.data.At(col+1, row+1))
}

// IntersectDownward casts a ray straight down from p and returns the first
// surface it meets with that surface's normal.
func (h *Heightfield) IntersectDownward(p mgl64.Vec3) (hit, normal mgl64.Vec3, ok bool) {
	if p.X() < 0 || p.Y() < 0 || p.X() > h.width || p.Y() > h.height {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}

	h.probe.X = p.X()
	h.probe.Y = p.Y()
	h.probe.Update()

	check := h.probe.Check(0, 0, tags.ResolvTerrain)
	if check == nil {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}

	best := math.Inf(-1)
	for _, obj := range check.ObjectsByTags(tags.ResolvTerrain) {
		var z float64
		var n mgl64.Vec3
		switch geom := obj.Data.(type) {
		case facet:
			if !h.facetContains(geom, p.X(), p.Y()) {
				continue
			}
			z, n = h.facetHeight(geom, p.X(), p.Y())
		case surface:
			if !geom.contains(p.X(), p.Y()) {
				continue
			}
			z, n = geom.top, mgl64.Vec3{0, 0, 1}
		default:
			continue
		}

		if z > p.Z() || z <= best {
			continue
		}
		best = z
		hit = mgl64.Vec3{p.X(), p.Y(), z}
		normal = n
		ok = true
	}
	return hit, normal, ok
}

// HeightAt is IntersectDownward from infinitely high.
func (h *Heightfield) HeightAt(x, y float64) (float64, bool) {
	hit, _, ok := h.IntersectDownward(mgl64.Vec3{x, y, math.MaxFloat64})
	return hit.Z(), ok
}

func (s surface) contains(x, y float64) bool {
	return x >= s.x && x <= s.x+s.w && y >= s.y && y <= s.y+s.d
}

func (h *Heightfield) facetContains(f facet, x, y float64) bool {
	cs := h.data.CellSize
	x0, y0 := float64(f.col)*cs, float64(f.row)*cs
	return x >= x0 && x <= x0+cs && y >= y0 && y <= y0+cs
}

// facetHeight splits the quad along its (col+1,row)-(col,row+1) diagonal and
// interpolates on the triangle containing (x, y).
func (h *Heightfield) facetHeight(f facet, x, y float64) (float64, mgl64.Vec3) {
	cs := h.data.CellSize
	u := x/cs - float64(f.col)
	v := y/cs - float64(f.row)

	h00 := h.data.At(f.col, f.row)
	h10 := h.data.At(f.col+1, f.row)
	h01 := h.data.At(f.col, f.row+1)
	h11 := h.data.At(f.col+1, f.row+1)

	var z, dzdx, dzdy float64
	if u+v <= 1 {
		z = h00 + (h10-h00)*u + (h01-h00)*v
		dzdx = (h10 - h00) / cs
		dzdy = (h01 - h00) / cs
	} else {
		z = h11 + (h01-h11)*(1-u) + (h10-h11)*(1-v)
		dzdx = (h11 - h01) / cs
		dzdy = (h11 - h10) / cs
	}
	return z, mgl64.Vec3{-dzdx, -dzdy, 1}.Normalize()
}
