// Package gpurender implements the GPU Renderer & Callback (spec.md §4.10):
// a single paint-callback entry point that consumes the core's instance
// arrays (nodle.InstanceBuilder) and draws them with Ebitengine's
// DrawTriangles32, grounded on the teacher's sprite-batching approach in
// batch.go (appendSpriteQuad / flushSpriteBatch).
package gpurender

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/bsundman/nodle"
)

// Theme supplies the colors the renderer does not get from instance data
// directly — the preview spline while connecting, the box-select rectangle,
// and the cut-tool trail.
type Theme struct {
	PreviewConnection nodle.Color
	BoxSelectFill     nodle.Color
	BoxSelectBorder   nodle.Color
	CutTrail          nodle.Color
}

// DefaultTheme returns a reasonable built-in theme.
func DefaultTheme() Theme {
	return Theme{
		PreviewConnection: nodle.Color{R: 1, G: 1, B: 1, A: 0.6},
		BoxSelectFill:     nodle.Color{R: 0.3, G: 0.5, B: 1, A: 0.15},
		BoxSelectBorder:   nodle.Color{R: 0.3, G: 0.5, B: 1, A: 0.9},
		CutTrail:          nodle.Color{R: 1, G: 0.2, B: 0.2, A: 0.9},
	}
}

// Renderer holds the GPU resources the paint callback needs across frames: a
// single opaque white pixel used as the source image for every flat-shaded
// triangle draw, since ebiten.DrawTriangles32 always samples a source image
// even for solid color geometry (mirroring the teacher's page-atlas lookup
// in flushSpriteBatch, simplified to one constant page).
type Renderer struct {
	white *ebiten.Image
	theme Theme

	node vertexBuf
	port vertexBuf
	conn vertexBuf
	flag vertexBuf
}

// NewRenderer creates a Renderer with the given theme. The backing white
// pixel image is allocated lazily on the first RenderCanvas call, since
// ebiten.NewImage requires the graphics driver to already be running
// (spec.md §9 "created on first paint callback").
func NewRenderer(theme Theme) *Renderer {
	return &Renderer{theme: theme}
}

func (r *Renderer) ensureWhitePixel() {
	if r.white != nil {
		return
	}
	r.white = ebiten.NewImage(1, 1)
	r.white.Fill(color.White)
}

// drawOpts returns the DrawTrianglesOptions used for every pipeline, matching
// the teacher's flushSpriteBatch triOp setup (default blend, premultiplied
// alpha color scale).
func drawOpts() *ebiten.DrawTrianglesOptions {
	var opts ebiten.DrawTrianglesOptions
	opts.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	return &opts
}

func (r *Renderer) flush(dst *ebiten.Image, b *vertexBuf) {
	if len(b.inds) == 0 {
		return
	}
	dst.DrawTriangles32(b.verts, b.inds, r.white, drawOpts())
	b.reset()
}

// RenderCanvas is the core's single paint-callback entry point (spec.md
// §4.10 "the core exposes one function render_canvas(view, screen_rect,
// screen_size)"). screenSize is the full window size, never the paint
// sub-rectangle passed to an ebiten Draw/Layout callback. RenderCanvas does
// not read screenRect or screenSize: every vertex is placed with
// view.WorldToScreen directly in dst's pixel space.
func (r *Renderer) RenderCanvas(
	dst *ebiten.Image,
	builder *nodle.InstanceBuilder,
	view *nodle.View,
	in *nodle.Interaction,
	screenRect nodle.Rect,
	screenSize nodle.Vec2,
) {
	r.ensureWhitePixel()

	r.node.reset()
	r.port.reset()
	r.conn.reset()
	r.flag.reset()

	r.buildConnections(builder, view)
	r.buildNodes(builder, view)
	r.buildPorts(builder, view)
	r.buildFlags(builder, view)
	r.buildOverlays(in, view)

	// Painter's order: connections under nodes, nodes under ports, flags on
	// top, matching the teacher's back-to-front layer submission order in
	// submitBatches.
	r.flush(dst, &r.conn)
	r.flush(dst, &r.node)
	r.flush(dst, &r.port)
	r.flush(dst, &r.flag)
}

func (r *Renderer) buildNodes(builder *nodle.InstanceBuilder, view *nodle.View) {
	for _, n := range builder.Nodes {
		topLeft := view.WorldToScreen(n.Position)
		size := Vec2scale(n.Size, view.Zoom)
		radius := float32(n.CornerRadius * view.Zoom)

		// Three concentric rounded rectangles: border, bevel inset, background
		// inset (spec.md §4.10).
		r.node.appendRoundedRect(float32(topLeft.X), float32(topLeft.Y), float32(size.X), float32(size.Y), radius, n.BorderColor)
		inset1 := float32(2 * view.Zoom)
		r.node.appendRoundedRectGradient(float32(topLeft.X)+inset1, float32(topLeft.Y)+inset1, float32(size.X)-2*inset1, float32(size.Y)-2*inset1, radius-inset1, n.BevelTop, n.BevelBottom)
		inset2 := float32(4 * view.Zoom)
		r.node.appendRoundedRectGradient(float32(topLeft.X)+inset2, float32(topLeft.Y)+inset2, float32(size.X)-2*inset2, float32(size.Y)-2*inset2, radius-inset2, n.BGTop, n.BGBottom)
	}
}

func (r *Renderer) buildPorts(builder *nodle.InstanceBuilder, view *nodle.View) {
	for _, p := range builder.Ports {
		center := view.WorldToScreen(p.Position)
		radius := float32(p.Radius * view.Zoom)

		// Three concentric disks: border, bevel, background (spec.md §4.10).
		r.port.appendDisk(float32(center.X), float32(center.Y), radius, p.Border)
		r.port.appendDisk(float32(center.X), float32(center.Y), radius*0.7, p.Bevel)
		r.port.appendDisk(float32(center.X), float32(center.Y), radius*0.45, p.BG)
	}
}

func (r *Renderer) buildConnections(builder *nodle.InstanceBuilder, view *nodle.View) {
	for _, c := range builder.Connections {
		p0 := view.WorldToScreen(c.P0)
		p1 := view.WorldToScreen(c.P1)
		p2 := view.WorldToScreen(c.P2)
		p3 := view.WorldToScreen(c.P3)
		points := cubicBezierScreen(p0, p1, p2, p3, 24)
		thickness := float32(2.0 * view.Zoom)
		if c.Selected || c.Hover {
			thickness = float32(3.0 * view.Zoom)
		}
		r.conn.appendBezierQuad(points, thickness, c.Color)
	}
}

func (r *Renderer) buildFlags(builder *nodle.InstanceBuilder, view *nodle.View) {
	for _, f := range builder.Flags {
		center := view.WorldToScreen(f.Position)
		r.flag.appendDisk(float32(center.X)-6, float32(center.Y)-6, 4, f.Color)
	}
}

// buildOverlays draws the in-progress preview spline, box-select rectangle,
// and cut trail that Interaction exposes but the Graph Store never does
// (spec.md §4.6, §4.10's "the preview spline, box-select rectangle, and cut
// trail are drawn directly from Interaction state, not from the instance
// arrays").
func (r *Renderer) buildOverlays(in *nodle.Interaction, view *nodle.View) {
	if in == nil {
		return
	}

	if rect, ok := in.BoxSelectRect(); ok {
		topLeft := view.WorldToScreen(nodle.Vec2{X: rect.X, Y: rect.Y})
		size := Vec2scale(nodle.Vec2{X: rect.Width, Y: rect.Height}, view.Zoom)
		r.conn.appendQuad(float32(topLeft.X), float32(topLeft.Y), float32(size.X), float32(size.Y), r.theme.BoxSelectFill)
	}

	if trail, ok := in.CutTrail(); ok && len(trail) >= 2 {
		r.conn.appendBezierQuad(trail, 2, r.theme.CutTrail)
	}

	if from, cursor, ok := in.ConnectingPreview(); ok {
		if origin, found := in.PortWorldPosition(from.Node, from.Direction, from.Port); found {
			p0 := view.WorldToScreen(origin)
			offset := Vec2scale(nodle.Vec2{X: nodle.MinBezierOffset, Y: 0}, view.Zoom)
			if from.Direction == nodle.DirectionInput {
				offset.X = -offset.X
			}
			p1 := nodle.Vec2{X: p0.X + offset.X, Y: p0.Y}
			p3 := cursor
			p2 := nodle.Vec2{X: p3.X - offset.X, Y: p3.Y}
			points := cubicBezierScreen(p0, p1, p2, p3, 24)
			r.conn.appendBezierQuad(points, float32(2*view.Zoom), r.theme.PreviewConnection)
		}
	}
}

// Vec2scale multiplies both components of v by s.
func Vec2scale(v nodle.Vec2, s float64) nodle.Vec2 {
	return nodle.Vec2{X: v.X * s, Y: v.Y * s}
}
