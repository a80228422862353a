package compose

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Op is one entry of the display list produced by Layout. Ops are painted in
// order, later ops on top.
type Op interface {
	Paint(dst draw.Image)
}

// FillOp fills Rect with a solid color.
type FillOp struct {
	Rect  image.Rectangle
	Color color.Color
}

func (o FillOp) Paint(dst draw.Image) {
	draw.Draw(dst, o.Rect, image.NewUniform(o.Color), image.Point{}, draw.Over)
}

// ImageOp scales the Src sub-rectangle of Image into Rect.
type ImageOp struct {
	Rect  image.Rectangle
	Image image.Image
	Src   image.Rectangle
}

func (o ImageOp) Paint(dst draw.Image) {
	src := o.Src
	if src.Empty() {
		src = o.Image.Bounds()
	}
	xdraw.CatmullRom.Scale(dst, o.Rect, o.Image, src, xdraw.Over, nil)
}

// TextOp draws Text with its baseline starting at Dot.
type TextOp struct {
	Text  string
	Face  font.Face
	Color color.Color
	Dot   fixed.Point26_6
}

func (o TextOp) Paint(dst draw.Image) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(o.Color),
		Face: o.Face,
		Dot:  o.Dot,
	}
	d.DrawString(o.Text)
}

// Rasterize paints ops onto a fresh CANVAS_SIZE square canvas.
func Rasterize(ops []Op) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, CANVAS_SIZE, CANVAS_SIZE))
	for _, op := range ops {
		op.Paint(dst)
	}
	return dst
}
