package gpurender

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/bsundman/nodle"
)

// Canvas adapts RenderCanvas to Ebitengine's Draw/Layout callback shape
// (spec.md §4.10, §9), mirroring the teacher's gameShell.Draw/Layout
// (scene.go) which always returns a fixed logical size rather than echoing
// back whatever Layout's outsideWidth/outsideHeight arguments are — doing
// the latter is exactly the screen_size mistake the spec calls out.
type Canvas struct {
	Renderer *Renderer
	Builder  *nodle.InstanceBuilder
	View     *nodle.View
	Input    *nodle.Interaction

	width, height int
}

// NewCanvas creates a Canvas with a fixed logical window size. width/height
// must be the full window size; Draw is always handed the one full-size
// *ebiten.Image, never a sub-rectangle, so RenderCanvas's screenSize
// argument is never out of sync with what was actually drawn to.
func NewCanvas(renderer *Renderer, builder *nodle.InstanceBuilder, view *nodle.View, input *nodle.Interaction, width, height int) *Canvas {
	return &Canvas{Renderer: renderer, Builder: builder, View: view, Input: input, width: width, height: height}
}

// Draw rebuilds the instance arrays if needed and paints the full canvas.
func (c *Canvas) Draw(screen *ebiten.Image, portColor nodle.PortColorFunc, store *nodle.Store, sel nodle.Selection) {
	c.Builder.Rebuild(store, c.View, sel, portColor)

	screenSize := nodle.Vec2{X: float64(c.width), Y: float64(c.height)}
	screenRect := nodle.Rect{X: 0, Y: 0, Width: screenSize.X, Height: screenSize.Y}
	c.Renderer.RenderCanvas(screen, c.Builder, c.View, c.Input, screenRect, screenSize)
}

// Layout returns the fixed logical size regardless of outsideWidth/Height,
// matching the teacher's gameShell.Layout (scene.go).
func (c *Canvas) Layout(outsideWidth, outsideHeight int) (int, int) {
	return c.width, c.height
}

// Resize changes the fixed logical size, e.g. on a host window resize event.
func (c *Canvas) Resize(width, height int) {
	c.width, c.height = width, height
	c.Builder.MarkDirty()
}
