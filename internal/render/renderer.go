// Package render replays a command sequence onto a pixel surface.
//
// Replay is deterministic: the same sequence rendered onto two
// identically-sized fresh surfaces yields pixel-identical output. Rendering
// the empty sequence leaves the surface untouched; this is the documented
// choice (rather than clearing) so a failed or empty run never disturbs the
// previously displayed image.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"gnartgen/internal/domain/model/command"
)

// Renderer paints command sequences. It is stateless between invocations;
// all turtle state lives on the stack of one Render call.
type Renderer struct{}

// New creates a renderer.
func New() *Renderer {
	return &Renderer{}
}

// turtle is the replay cursor state.
type turtle struct {
	x, y    float64
	heading float64 // degrees in [0,360); 0 points along +x
	penDown bool
	color   color.RGBA
}

// Render replays seq onto dst. The cursor starts at the surface center with
// heading 0, pen down, color black. Drawing outside the surface bounds is
// clipped, never an error. Render never fails for a valid sequence.
func (r *Renderer) Render(dst draw.Image, seq command.Sequence) {
	b := dst.Bounds()
	t := turtle{
		x:       float64(b.Min.X) + float64(b.Dx())/2,
		y:       float64(b.Min.Y) + float64(b.Dy())/2,
		penDown: true,
		color:   color.RGBA{A: 255},
	}
	replay(dst, &t, seq)
}

func replay(dst draw.Image, t *turtle, seq command.Sequence) {
	for _, cmd := range seq {
		switch cmd.Kind {
		case command.KindMoveForward:
			rad := t.heading * math.Pi / 180
			nx := t.x + cmd.Distance*math.Cos(rad)
			// Image y grows downward; positive angles turn counter-clockwise
			// in the usual math orientation.
			ny := t.y - cmd.Distance*math.Sin(rad)
			if t.penDown {
				drawSegment(dst, t.x, t.y, nx, ny, t.color)
			}
			t.x, t.y = nx, ny
		case command.KindTurn:
			t.heading = wrapDegrees(t.heading + cmd.Angle)
		case command.KindPenUp:
			t.penDown = false
		case command.KindPenDown:
			t.penDown = true
		case command.KindSetColor:
			t.color = color.RGBA{R: cmd.Color.R, G: cmd.Color.G, B: cmd.Color.B, A: 255}
		case command.KindRepeat:
			for i := 0; i < cmd.Count; i++ {
				replay(dst, t, cmd.Body)
			}
		}
	}
}

// wrapDegrees normalizes an angle into [0,360).
func wrapDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// drawSegment rasterizes a line with Bresenham's algorithm, setting only
// pixels inside dst's bounds. The segment is clipped to the bounds first so
// the pixel walk is bounded by the surface size, not the raw coordinates; a
// script-supplied distance can be arbitrarily large or non-finite.
func drawSegment(dst draw.Image, x0f, y0f, x1f, y1f float64, c color.RGBA) {
	if !isFinite(x0f) || !isFinite(y0f) || !isFinite(x1f) || !isFinite(y1f) {
		return
	}
	b := dst.Bounds()
	x0f, y0f, x1f, y1f, visible := clipSegment(x0f, y0f, x1f, y1f, b)
	if !visible {
		return
	}

	x0, y0 := int(math.Round(x0f)), int(math.Round(y0f))
	x1, y1 := int(math.Round(x1f)), int(math.Round(y1f))

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		if image.Pt(x0, y0).In(b) {
			dst.Set(x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// clipSegment clips the segment to the rectangle's pixel range with the
// Liang-Barsky parametric test. It returns the clipped endpoints and whether
// any part of the segment lies inside b.
func clipSegment(x0, y0, x1, y1 float64, b image.Rectangle) (float64, float64, float64, float64, bool) {
	xmin, xmax := float64(b.Min.X), float64(b.Max.X-1)
	ymin, ymax := float64(b.Min.Y), float64(b.Max.Y-1)
	dx, dy := x1-x0, y1-y0

	t0, t1 := 0.0, 1.0
	p := [4]float64{-dx, dx, -dy, dy}
	q := [4]float64{x0 - xmin, xmax - x0, y0 - ymin, ymax - y0}
	for i := 0; i < 4; i++ {
		if p[i] == 0 {
			if q[i] < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q[i] / p[i]
		if p[i] < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			if r < t1 {
				t1 = r
			}
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

// Thumbnail renders seq onto a fresh white surface of the given size and
// returns it PNG-encoded.
func (r *Renderer) Thumbnail(seq command.Sequence, width, height int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	r.Render(img, seq)

	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return out.Bytes(), nil
}
