package gpurender

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/bsundman/nodle"
)

// vertexBuf accumulates vertices and indices for one DrawTriangles32 call,
// mirroring the teacher's batchVerts/batchInds accumulation in batch.go
// (appendSpriteQuad / flushSpriteBatch).
type vertexBuf struct {
	verts []ebiten.Vertex
	inds  []uint32
}

func (b *vertexBuf) reset() {
	b.verts = b.verts[:0]
	b.inds = b.inds[:0]
}

func colorComponents(c nodle.Color) (r, g, b, a float32) {
	a = float32(c.A)
	r = float32(c.R) * a
	g = float32(c.G) * a
	b = float32(c.B) * a
	return
}

// appendQuad appends an axis-aligned screen-space quad filled with a solid
// color, sampling the whitePixel source image at (0,0) so DrawTriangles32
// can be used for flat-shaded geometry.
func (b *vertexBuf) appendQuad(x, y, w, h float32, c nodle.Color) {
	r, g, bl, a := colorComponents(c)
	base := uint32(len(b.verts))
	v := func(dx, dy float32) ebiten.Vertex {
		return ebiten.Vertex{DstX: x + dx, DstY: y + dy, SrcX: 0, SrcY: 0, ColorR: r, ColorG: g, ColorB: bl, ColorA: a}
	}
	b.verts = append(b.verts, v(0, 0), v(w, 0), v(0, h), v(w, h))
	b.inds = append(b.inds, base+0, base+1, base+2, base+1, base+3, base+2)
}

// appendRoundedRect approximates a rounded rectangle as a filled polygon fan
// with rounded-corner tessellation, matching the conceptual "three
// concentric rounded rectangles" layering of spec.md §4.10, simplified to
// one solid color per call. The Renderer calls this once per node for the
// border layer and appendRoundedRectGradient for the inset bevel and
// background layers.
func (b *vertexBuf) appendRoundedRect(x, y, w, h, radius float32, c nodle.Color) {
	if radius <= 0 || radius > w/2 || radius > h/2 {
		b.appendQuad(x, y, w, h, c)
		return
	}
	const segs = 6 // quarter-circle tessellation per corner

	r, g, bl, a := colorComponents(c)
	cx, cy := x+w/2, y+h/2
	center := ebiten.Vertex{DstX: cx, DstY: cy, SrcX: 0, SrcY: 0, ColorR: r, ColorG: g, ColorB: bl, ColorA: a}
	base := uint32(len(b.verts))
	b.verts = append(b.verts, center)

	corners := [4]struct{ cx, cy, a0 float32 }{
		{x + w - radius, y + radius, -1.5708},     // top-right, start at -90deg
		{x + w - radius, y + h - radius, 0},       // bottom-right, start at 0deg
		{x + radius, y + h - radius, 1.5708},      // bottom-left, start at 90deg
		{x + radius, y + radius, 3.14159},         // top-left, start at 180deg
	}

	ringStart := uint32(len(b.verts))
	for _, corner := range corners {
		for i := 0; i <= segs; i++ {
			theta := corner.a0 + float32(i)/float32(segs)*1.5708
			vx := corner.cx + radius*cos32(theta)
			vy := corner.cy + radius*sin32(theta)
			b.verts = append(b.verts, ebiten.Vertex{DstX: vx, DstY: vy, SrcX: 0, SrcY: 0, ColorR: r, ColorG: g, ColorB: bl, ColorA: a})
		}
	}
	ringEnd := uint32(len(b.verts))

	for i := ringStart; i < ringEnd; i++ {
		next := i + 1
		if next == ringEnd {
			next = ringStart
		}
		b.inds = append(b.inds, base, i, next)
	}
}

// appendRoundedRectGradient is appendRoundedRect with per-vertex color
// interpolated linearly between top and bottom by each vertex's Y fraction
// within [y, y+h], used for the node's bevel and background layers (spec.md
// §4.9 NodeInstance.BevelTop/BevelBottom, BGTop/BGBottom).
func (b *vertexBuf) appendRoundedRectGradient(x, y, w, h, radius float32, top, bottom nodle.Color) {
	if radius <= 0 || radius > w/2 || radius > h/2 {
		b.appendGradientQuad(x, y, w, h, top, bottom)
		return
	}
	const segs = 6

	lerp := func(fy float32) (r, g, bl, a float32) {
		frac := (fy - y) / h
		if frac < 0 {
			frac = 0
		} else if frac > 1 {
			frac = 1
		}
		tr, tg, tb, ta := colorComponents(top)
		br, bg, bb, ba := colorComponents(bottom)
		return tr + (br-tr)*frac, tg + (bg-tg)*frac, tb + (bb-tb)*frac, ta + (ba-ta)*frac
	}

	cx, cy := x+w/2, y+h/2
	cr, cg, cb, ca := lerp(cy)
	base := uint32(len(b.verts))
	b.verts = append(b.verts, ebiten.Vertex{DstX: cx, DstY: cy, SrcX: 0, SrcY: 0, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca})

	corners := [4]struct{ cx, cy, a0 float32 }{
		{x + w - radius, y + radius, -1.5708},
		{x + w - radius, y + h - radius, 0},
		{x + radius, y + h - radius, 1.5708},
		{x + radius, y + radius, 3.14159},
	}

	ringStart := uint32(len(b.verts))
	for _, corner := range corners {
		for i := 0; i <= segs; i++ {
			theta := corner.a0 + float32(i)/float32(segs)*1.5708
			vx := corner.cx + radius*cos32(theta)
			vy := corner.cy + radius*sin32(theta)
			vr, vg, vb, va := lerp(vy)
			b.verts = append(b.verts, ebiten.Vertex{DstX: vx, DstY: vy, SrcX: 0, SrcY: 0, ColorR: vr, ColorG: vg, ColorB: vb, ColorA: va})
		}
	}
	ringEnd := uint32(len(b.verts))

	for i := ringStart; i < ringEnd; i++ {
		next := i + 1
		if next == ringEnd {
			next = ringStart
		}
		b.inds = append(b.inds, base, i, next)
	}
}

func (b *vertexBuf) appendGradientQuad(x, y, w, h float32, top, bottom nodle.Color) {
	tr, tg, tb, ta := colorComponents(top)
	br, bg, bb, ba := colorComponents(bottom)
	base := uint32(len(b.verts))
	b.verts = append(b.verts,
		ebiten.Vertex{DstX: x, DstY: y, SrcX: 0, SrcY: 0, ColorR: tr, ColorG: tg, ColorB: tb, ColorA: ta},
		ebiten.Vertex{DstX: x + w, DstY: y, SrcX: 0, SrcY: 0, ColorR: tr, ColorG: tg, ColorB: tb, ColorA: ta},
		ebiten.Vertex{DstX: x, DstY: y + h, SrcX: 0, SrcY: 0, ColorR: br, ColorG: bg, ColorB: bb, ColorA: ba},
		ebiten.Vertex{DstX: x + w, DstY: y + h, SrcX: 0, SrcY: 0, ColorR: br, ColorG: bg, ColorB: bb, ColorA: ba},
	)
	b.inds = append(b.inds, base+0, base+1, base+2, base+1, base+3, base+2)
}

// appendDisk approximates a filled circle as a triangle fan, used for port
// instances (spec.md §4.10 "ports are rendered as three concentric disks").
func (b *vertexBuf) appendDisk(cx, cy, radius float32, c nodle.Color) {
	const segs = 16
	r, g, bl, a := colorComponents(c)
	base := uint32(len(b.verts))
	b.verts = append(b.verts, ebiten.Vertex{DstX: cx, DstY: cy, SrcX: 0, SrcY: 0, ColorR: r, ColorG: g, ColorB: bl, ColorA: a})
	ringStart := uint32(len(b.verts))
	for i := 0; i <= segs; i++ {
		theta := float32(i) / float32(segs) * 6.28318
		vx := cx + radius*cos32(theta)
		vy := cy + radius*sin32(theta)
		b.verts = append(b.verts, ebiten.Vertex{DstX: vx, DstY: vy, SrcX: 0, SrcY: 0, ColorR: r, ColorG: g, ColorB: bl, ColorA: a})
	}
	ringEnd := uint32(len(b.verts))
	for i := ringStart; i < ringEnd-1; i++ {
		b.inds = append(b.inds, base, i, i+1)
	}
}

// appendBezierQuad draws a cubic bezier curve as a swept quad of constant
// screen-space thickness following the sampled curve points (spec.md §4.10
// "connections are rendered as cubic beziers using a swept-quad or
// equivalent technique").
func (b *vertexBuf) appendBezierQuad(points []nodle.Vec2, thickness float32, c nodle.Color) {
	if len(points) < 2 {
		return
	}
	r, g, bl, a := colorComponents(c)
	half := thickness / 2
	for i := 0; i < len(points)-1; i++ {
		p0 := points[i]
		p1 := points[i+1]
		dx := float32(p1.X - p0.X)
		dy := float32(p1.Y - p0.Y)
		length := sqrt32(dx*dx + dy*dy)
		if length == 0 {
			continue
		}
		nx, ny := -dy/length*half, dx/length*half

		base := uint32(len(b.verts))
		v := func(px, py float32) ebiten.Vertex {
			return ebiten.Vertex{DstX: px, DstY: py, SrcX: 0, SrcY: 0, ColorR: r, ColorG: g, ColorB: bl, ColorA: a}
		}
		b.verts = append(b.verts,
			v(float32(p0.X)+nx, float32(p0.Y)+ny),
			v(float32(p0.X)-nx, float32(p0.Y)-ny),
			v(float32(p1.X)+nx, float32(p1.Y)+ny),
			v(float32(p1.X)-nx, float32(p1.Y)-ny),
		)
		b.inds = append(b.inds, base+0, base+1, base+2, base+1, base+3, base+2)
	}
}

// cubicBezierScreen evaluates a cubic bezier with screen-space control
// points at n+1 evenly spaced t values, mirroring nodle's internal
// sampleBezier (bezier.go) since that helper is unexported and the renderer
// lives in a separate package.
func cubicBezierScreen(p0, p1, p2, p3 nodle.Vec2, n int) []nodle.Vec2 {
	pts := make([]nodle.Vec2, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		mt := 1 - t
		x := mt*mt*mt*p0.X + 3*mt*mt*t*p1.X + 3*mt*t*t*p2.X + t*t*t*p3.X
		y := mt*mt*mt*p0.Y + 3*mt*mt*t*p1.Y + 3*mt*t*t*p2.Y + t*t*t*p3.Y
		pts = append(pts, nodle.Vec2{X: x, Y: y})
	}
	return pts
}

func cos32(x float32) float32  { return float32(math.Cos(float64(x))) }
func sin32(x float32) float32  { return float32(math.Sin(float64(x))) }
func sqrt32(x float32) float32 { return float32(math.Sqrt(float64(x))) }
