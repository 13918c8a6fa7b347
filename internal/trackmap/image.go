package trackmap

import (
	"fmt"
	"io"
	"os"

	"github.com/fogleman/gg"

	"github.com/verte-zerg/lapview/internal/lapsync"
	"github.com/verte-zerg/lapview/internal/model"
)

const (
	backgroundColor = "#111827"
	borderColor     = "#282828"
	dotOutlineColor = "#FFFFFF"
	pathWidth       = 3
	dotRadius       = 7
)

// ImageOptions configures PNG export.
type ImageOptions struct {
	// Size is the side of the square image in pixels.
	Size int
}

// RenderPNG draws lap paths and cursor dots into a square PNG.
func RenderPNG(w io.Writer, p lapsync.Projection, laps []*model.Lap, dots []lapsync.Dot, opts ImageOptions) error {
	ctx := renderImage(p, laps, dots, opts)
	return ctx.EncodePNG(w)
}

// SavePNG writes the map image to path.
func SavePNG(path string, p lapsync.Projection, laps []*model.Lap, dots []lapsync.Dot, opts ImageOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := RenderPNG(f, p, laps, dots, opts); err != nil {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close after a failed encode.
			_ = cerr
		}
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func renderImage(p lapsync.Projection, laps []*model.Lap, dots []lapsync.Dot, opts ImageOptions) *gg.Context {
	size := opts.Size
	if size <= 0 {
		size = int(p.Size())
	}
	fitted := p.Resized(float64(size), float64(size))

	ctx := gg.NewContext(size, size)
	ctx.SetHexColor(backgroundColor)
	ctx.Clear()

	for i := len(laps) - 1; i >= 0; i-- {
		if laps[i] != nil {
			drawPath(ctx, fitted, laps[i].Frames, lapsync.StyleForLap(i))
		}
	}
	for _, d := range dots {
		if !validDot(d, laps) {
			continue
		}
		pt := fitted.ProjectFrame(laps[d.Lap].Frames[d.FrameIndex])
		ctx.Push()
		ctx.DrawCircle(pt.X, pt.Y, dotRadius)
		ctx.SetHexColor(lapsync.StyleForLap(d.Lap).Color)
		ctx.FillPreserve()
		ctx.SetHexColor(dotOutlineColor)
		ctx.SetLineWidth(2)
		ctx.Stroke()
		ctx.Pop()
	}
	return ctx
}

// drawPath strokes frames in surface coordinates under the projection's
// rotation and scale, so only the path points are transformed and line
// widths and dashes stay in pixels.
func drawPath(ctx *gg.Context, p lapsync.Projection, frames []model.Frame, style lapsync.LapStyle) {
	ctx.Push()
	ctx.Scale(p.ScaleFactor(), p.ScaleFactor())
	if rot := p.Rotation(); rot != 0 {
		ctx.RotateAbout(gg.Radians(rot), p.Size()/2, p.Size()/2)
	}
	ctx.NewSubPath()
	for _, f := range frames {
		if !finite(f.CarX) || !finite(f.CarZ) {
			ctx.NewSubPath()
			continue
		}
		pt := p.Surface(f.CarX, f.CarZ)
		ctx.LineTo(pt.X, pt.Y)
	}
	ctx.SetHexColor(borderColor)
	ctx.SetLineWidth(pathWidth + 4)
	ctx.StrokePreserve()
	if style.Line == lapsync.Dashed {
		ctx.SetDash(10, 6)
	}
	ctx.SetHexColor(style.Color)
	ctx.SetLineWidth(pathWidth)
	ctx.Stroke()
	ctx.Pop()
}
