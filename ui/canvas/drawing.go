package canvas

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"phase-analyzer/internal/capillary"
	"phase-analyzer/internal/units"
)

// Overlay colors as RGB triples for gg.
var (
	ceilingColor = [3]float64{1, 0, 0} // Red
	floorColor   = [3]float64{0, 1, 0} // Green
	ghostColor   = [3]float64{1, 1, 1} // White, drawn dashed
	markerColor  = [3]float64{1, 0, 0}
)

// drawOverlays paints the reference lines, wall ghosts, and particle
// markers over the rendered image. Everything here works in canvas
// (zoomed) coordinates.
func (mc *MicrographCanvas) drawOverlays(output *image.RGBA, w int) {
	if mc.frame == nil {
		return
	}

	dc := gg.NewContextForRGBA(output)
	dc.SetFontFace(basicfont.Face7x13)

	markerScale := mc.micrograph.ScaleFactor() * mc.labelScale

	if mc.frame.CeilingY != nil {
		mc.strokeLine(dc, *mc.frame.CeilingY, w, ceilingColor, nil)
	}
	if mc.frame.FloorY != nil {
		mc.strokeLine(dc, *mc.frame.FloorY, w, floorColor, nil)
	}

	// Ghost lines show where the wall-adjusted channel really is. The
	// two reference lines share a slope, so the inset is constant in x.
	if inset := mc.frame.WallInsetAt(0); inset > 0 {
		dash := []float64{6, 4}
		mc.strokeLine(dc, *mc.frame.CeilingY+inset, w, ghostColor, dash)
		mc.strokeLine(dc, *mc.frame.FloorY-inset, w, ghostColor, dash)
	}

	for _, p := range mc.particles {
		mc.drawParticle(dc, p, markerScale)
	}
}

// strokeLine draws a tilted reference line anchored at x=0.
func (mc *MicrographCanvas) strokeLine(dc *gg.Context, anchorY float64, w int, rgb [3]float64, dash []float64) {
	slope := mc.frame.Ceiling().Slope // Same slope for every line
	endX := float64(w) / mc.zoom

	dc.SetRGB(rgb[0], rgb[1], rgb[2])
	dc.SetLineWidth(2)
	if dash != nil {
		dc.SetDash(dash...)
	}
	dc.DrawLine(0, anchorY*mc.zoom, float64(w), (anchorY+endX*slope)*mc.zoom)
	dc.Stroke()
	dc.SetDash()
}

// drawParticle draws the marker dot, the label box with name and
// height, and the dashed connector between them.
func (mc *MicrographCanvas) drawParticle(dc *gg.Context, p *capillary.Particle, scale float64) {
	x := p.X * mc.zoom
	y := p.Y * mc.zoom

	radius := 4 * scale * mc.zoom
	if radius < 2 {
		radius = 2
	}

	anchor := p.LabelAnchor()
	lx := anchor.X * mc.zoom
	ly := anchor.Y * mc.zoom

	// Connector from marker to label
	dc.SetRGBA(1, 1, 1, 0.7)
	dc.SetLineWidth(1)
	dc.SetDash(4, 3)
	dc.DrawLine(x, y, lx, ly)
	dc.Stroke()
	dc.SetDash()

	// Marker dot
	dc.SetRGB(markerColor[0], markerColor[1], markerColor[2])
	dc.DrawCircle(x, y, radius)
	dc.Fill()

	// Label box
	text := fmt.Sprintf("%s: %s", p.Name, units.FormatMicrometers(p.HeightUM))
	tw, th := dc.MeasureString(text)
	pad := 4 * scale
	if pad < 3 {
		pad = 3
	}

	dc.SetRGBA(0.17, 0.24, 0.31, 0.85) // Slate, slightly translucent
	dc.DrawRoundedRectangle(lx-pad, ly-th-pad, tw+2*pad, th+2*pad, 4)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	dc.DrawString(text, lx, ly)
}
